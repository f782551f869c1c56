package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// HmacSHA256Hex signs payload with key and returns the hex-encoded MAC.
func HmacSHA256Hex(key, payload []byte) string {
	mac := hmac.New(sha256.New, key)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// HmacSHA256Base64 signs payload with key and returns the base64
// encoded MAC, the form Bitget-style venues expect.
func HmacSHA256Base64(key, payload []byte) string {
	mac := hmac.New(sha256.New, key)
	mac.Write(payload)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// HmacSHA512Hex signs payload with key and returns the hex-encoded MAC.
func HmacSHA512Hex(key, payload []byte) string {
	mac := hmac.New(sha512.New, key)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// Sha256Hex returns the hex-encoded SHA-256 digest of data.
func Sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Sha512Hex returns the hex-encoded SHA-512 digest of data, the form
// Upbit-style venues use for a request's query_hash.
func Sha512Hex(data []byte) string {
	sum := sha512.Sum512(data)
	return hex.EncodeToString(sum[:])
}

// Base64URLEncode encodes data with unpadded URL-safe base64, the JWT
// header/payload encoding.
func Base64URLEncode(data []byte) string {
	return base64.RawURLEncoding.EncodeToString(data)
}

// NewNonce returns a fresh random v4 UUID, used as a JWT nonce claim.
func NewNonce() string { return uuid.NewString() }

// NowMillis returns the current Unix time in milliseconds.
func NowMillis() int64 { return time.Now().UnixMilli() }

// NowMicros returns the current Unix time in microseconds.
func NowMicros() int64 { return time.Now().UnixMicro() }
