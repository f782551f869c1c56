package auth

import (
	"fmt"
	"net/url"
	"strconv"
)

// HMACSigner implements the key+signed-querystring authentication
// style: the request's query string gets a "timestamp" parameter
// appended, the whole string is HMAC-SHA256 signed with the account's
// secret key, and the signature is appended as a final "signature"
// parameter. The access key travels in an X-MBX-APIKEY header.
type HMACSigner struct {
	accessKey string
	secretKey []byte
}

// NewHMACSigner builds a signer for the given API credentials.
func NewHMACSigner(accessKey, secretKey string) *HMACSigner {
	return &HMACSigner{accessKey: accessKey, secretKey: []byte(secretKey)}
}

// AccessKey returns the key to send in the X-MBX-APIKEY header.
func (s *HMACSigner) AccessKey() string { return s.accessKey }

// SignQuery appends a millisecond timestamp and a signature parameter
// to params, returning the fully signed query string.
func (s *HMACSigner) SignQuery(params url.Values) string {
	signed := cloneValues(params)
	signed.Set("timestamp", strconv.FormatInt(NowMillis(), 10))

	payload := signed.Encode()
	signature := HmacSHA256Hex(s.secretKey, []byte(payload))

	return fmt.Sprintf("%s&signature=%s", payload, signature)
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}
	return out
}
