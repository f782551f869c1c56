// Package auth implements the two REST authentication styles SPEC_FULL.md
// §6 requires: Upbit/Bithumb-style JWT-per-request bearer tokens, and
// Binance/MEXC-style key plus HMAC-signed query string.
package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// JWTSigner builds the Authorization bearer token Upbit/Bithumb-style
// venues expect: access_key, a random nonce, a millisecond timestamp,
// and — when the request carries a query string — a SHA-512
// query_hash, all signed HS256 with the account's secret key.
type JWTSigner struct {
	accessKey string
	secretKey []byte
}

// NewJWTSigner builds a signer for the given API credentials.
func NewJWTSigner(accessKey, secretKey string) *JWTSigner {
	return &JWTSigner{accessKey: accessKey, secretKey: []byte(secretKey)}
}

// Token returns a signed "Bearer <jwt>" value for the given URL query
// string (empty for requests with no query parameters).
func (s *JWTSigner) Token(queryString string) (string, error) {
	claims := jwt.MapClaims{
		"access_key": s.accessKey,
		"nonce":      NewNonce(),
		"timestamp":  NowMillis(),
	}
	if queryString != "" {
		claims["query_hash"] = Sha512Hex([]byte(queryString))
		claims["query_hash_alg"] = "SHA512"
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", err
	}
	return "Bearer " + signed, nil
}
