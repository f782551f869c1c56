// Package wire implements the per-venue message decoders: three
// JSON venues plus the MEXC length-delimited binary protocol. Every
// decoder is pure, allocation-light on the steady-state path, and
// never panics — malformed input always returns a ParseError.
package wire

import (
	"strings"

	"github.com/s2ungeda/kac/internal/domain"
	"github.com/s2ungeda/kac/internal/errkind"
	"github.com/s2ungeda/kac/pkg/kac"
)

// RecordKind tags which field of a Record is populated.
type RecordKind uint8

const (
	KindNone RecordKind = iota
	KindTicker
	KindOrderBook
	KindTrade
)

// Record is the normalized sum-type output of a venue decoder: exactly
// one of Ticker/Book/Trade is valid, selected by Kind.
type Record struct {
	Kind   RecordKind
	Ticker domain.Ticker
	Book   domain.OrderBook
	Trade  domain.Trade
}

// parseError builds a ParseError-kind failure, the only error kind any
// decoder in this package returns.
func parseError(msg string, cause error) error {
	return errkind.Parse(msg, cause)
}

// IsParseError reports whether err is a decode failure from this
// package.
func IsParseError(err error) bool {
	return kac.Is(err, kac.ParseError)
}

// normalizeKRWSymbol maps a venue-specific KRW market code to the
// inline base-asset symbol used internally, e.g. "KRW-XRP" (Upbit) or
// "XRP_KRW" (Bithumb) both become "XRP".
func normalizeKRWSymbol(raw string) string {
	if i := strings.IndexByte(raw, '-'); i >= 0 {
		// "KRW-XRP" -> "XRP"
		return raw[i+1:]
	}
	if i := strings.LastIndexByte(raw, '_'); i >= 0 {
		// "XRP_KRW" -> "XRP"
		return raw[:i]
	}
	return raw
}
