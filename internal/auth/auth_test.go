package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

func TestJWTTokenHasBearerPrefixAndParsesWithSameSecret(t *testing.T) {
	signer := NewJWTSigner("access-key-1", "super-secret")

	token, err := signer.Token("")
	if err != nil {
		t.Fatalf("Token returned error: %v", err)
	}
	if !strings.HasPrefix(token, "Bearer ") {
		t.Fatalf("token = %q, want Bearer prefix", token)
	}
	raw := strings.TrimPrefix(token, "Bearer ")

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("super-secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("failed to parse token with same secret: %v", err)
	}

	if claims["access_key"] != "access-key-1" {
		t.Fatalf("access_key claim = %v, want access-key-1", claims["access_key"])
	}
	if _, ok := claims["nonce"]; !ok {
		t.Fatal("expected nonce claim")
	}
	if _, ok := claims["timestamp"]; !ok {
		t.Fatal("expected timestamp claim")
	}
	if _, ok := claims["query_hash"]; ok {
		t.Fatal("did not expect query_hash claim for an empty query string")
	}
}

func TestJWTTokenIncludesQueryHashWhenQueryStringPresent(t *testing.T) {
	signer := NewJWTSigner("access-key-1", "super-secret")
	query := "market=KRW-XRP&side=bid"

	token, err := signer.Token(query)
	if err != nil {
		t.Fatalf("Token returned error: %v", err)
	}
	raw := strings.TrimPrefix(token, "Bearer ")

	claims := jwt.MapClaims{}
	if _, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("super-secret"), nil
	}); err != nil {
		t.Fatalf("failed to parse token: %v", err)
	}

	want := Sha512Hex([]byte(query))
	if claims["query_hash"] != want {
		t.Fatalf("query_hash = %v, want %v", claims["query_hash"], want)
	}
	if claims["query_hash_alg"] != "SHA512" {
		t.Fatalf("query_hash_alg = %v, want SHA512", claims["query_hash_alg"])
	}
}

func TestJWTTokenRejectedWithWrongSecret(t *testing.T) {
	signer := NewJWTSigner("access-key-1", "super-secret")
	token, err := signer.Token("")
	if err != nil {
		t.Fatalf("Token returned error: %v", err)
	}
	raw := strings.TrimPrefix(token, "Bearer ")

	_, err = jwt.Parse(raw, func(*jwt.Token) (interface{}, error) {
		return []byte("wrong-secret"), nil
	})
	if err == nil {
		t.Fatal("expected parse error with mismatched secret")
	}
}

func TestHMACSignQueryAppendsTimestampAndVerifiableSignature(t *testing.T) {
	signer := NewHMACSigner("mexc-key", "mexc-secret")
	params := url.Values{"symbol": {"XRPUSDT"}, "side": {"BUY"}}

	signed := signer.SignQuery(params)

	parts := strings.Split(signed, "&signature=")
	if len(parts) != 2 {
		t.Fatalf("signed query %q missing signature suffix", signed)
	}
	payload, gotSig := parts[0], parts[1]

	values, err := url.ParseQuery(payload)
	if err != nil {
		t.Fatalf("failed to parse signed payload: %v", err)
	}
	if _, err := strconv.ParseInt(values.Get("timestamp"), 10, 64); err != nil {
		t.Fatalf("timestamp parameter not a valid integer: %v", err)
	}

	mac := hmac.New(sha256.New, []byte("mexc-secret"))
	mac.Write([]byte(payload))
	wantSig := hex.EncodeToString(mac.Sum(nil))
	if gotSig != wantSig {
		t.Fatalf("signature = %q, want %q", gotSig, wantSig)
	}
}

func TestHMACSignQueryDoesNotMutateCallerValues(t *testing.T) {
	signer := NewHMACSigner("mexc-key", "mexc-secret")
	params := url.Values{"symbol": {"XRPUSDT"}}

	signer.SignQuery(params)

	if _, ok := params["timestamp"]; ok {
		t.Fatal("SignQuery must not mutate the caller's url.Values")
	}
}

func TestHMACAccessKeyReturnsConfiguredKey(t *testing.T) {
	signer := NewHMACSigner("mexc-key", "mexc-secret")
	if signer.AccessKey() != "mexc-key" {
		t.Fatalf("AccessKey() = %q, want mexc-key", signer.AccessKey())
	}
}
