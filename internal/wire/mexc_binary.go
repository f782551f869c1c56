package wire

import (
	"strconv"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/s2ungeda/kac/internal/domain"
	"github.com/s2ungeda/kac/pkg/quant"
)

// MEXC's push envelope is a protobuf message whose field 1 is the
// channel name, field 3 is the symbol, field 313 carries a nested depth
// (order book) payload and field 314 a nested deals (trade) payload.
const (
	mexcFieldChannel = 1
	mexcFieldSymbol  = 3
	mexcFieldDepth   = 313
	mexcFieldDeals   = 314
)

// field is one decoded (tag, wire-type, value) triple from a protobuf
// buffer, mirroring the original source's ProtobufParser::Field. varint
// and fixed-width values decode straight to u64; length-delimited
// values keep their raw bytes in data.
type field struct {
	num  protowire.Number
	typ  protowire.Type
	u64  uint64
	data []byte
}

// scanFields walks buf top-to-bottom, decoding each (tag,wire_type)
// pair and its value, without recursing into length-delimited children
// (callers recurse explicitly where the schema calls for it). Returns a
// ParseError on truncated or malformed input; never panics.
func scanFields(buf []byte) ([]field, error) {
	var fields []field
	for len(buf) > 0 {
		num, typ, n := protowire.ConsumeTag(buf)
		if n < 0 {
			return nil, parseError("mexc: malformed tag", protowire.ParseError(n))
		}
		buf = buf[n:]

		f := field{num: num, typ: typ}
		var consumed int
		switch typ {
		case protowire.VarintType:
			v, vn := protowire.ConsumeVarint(buf)
			if vn < 0 {
				return nil, parseError("mexc: malformed varint", protowire.ParseError(vn))
			}
			f.u64, consumed = v, vn
		case protowire.Fixed32Type:
			v, vn := protowire.ConsumeFixed32(buf)
			if vn < 0 {
				return nil, parseError("mexc: malformed fixed32", protowire.ParseError(vn))
			}
			f.u64, consumed = uint64(v), vn
		case protowire.Fixed64Type:
			v, vn := protowire.ConsumeFixed64(buf)
			if vn < 0 {
				return nil, parseError("mexc: malformed fixed64", protowire.ParseError(vn))
			}
			f.u64, consumed = v, vn
		case protowire.BytesType:
			v, vn := protowire.ConsumeBytes(buf)
			if vn < 0 {
				return nil, parseError("mexc: malformed length-delimited field", protowire.ParseError(vn))
			}
			f.data, consumed = v, vn
		default:
			return nil, parseError("mexc: unsupported wire type", nil)
		}
		fields = append(fields, f)
		buf = buf[consumed:]
	}
	return fields, nil
}

func fieldString(f field) (string, error) {
	if f.typ != protowire.BytesType {
		return "", parseError("mexc: expected length-delimited field", nil)
	}
	return string(f.data), nil
}

func fieldDouble(f field) (float64, error) {
	s, err := fieldString(f)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, parseError("mexc: bad numeric field", err)
	}
	return v, nil
}

// DecodeMexc parses a single MEXC push-envelope frame into a Record.
// The symbol is taken from the outer envelope, because the depth
// payload's inner message omits it.
func DecodeMexc(frame []byte) (Record, error) {
	fields, err := scanFields(frame)
	if err != nil {
		return Record{}, err
	}

	var symbol string
	var depthPayload, dealsPayload []byte
	for _, f := range fields {
		switch f.num {
		case mexcFieldSymbol:
			symbol, err = fieldString(f)
			if err != nil {
				return Record{}, err
			}
		case mexcFieldDepth:
			depthPayload = f.data
		case mexcFieldDeals:
			dealsPayload = f.data
		}
	}

	switch {
	case depthPayload != nil:
		ob, err := decodeMexcDepth(depthPayload, symbol)
		if err != nil {
			return Record{}, err
		}
		return Record{Kind: KindOrderBook, Book: ob}, nil
	case dealsPayload != nil:
		trades, err := decodeMexcDeals(dealsPayload, symbol)
		if err != nil {
			return Record{}, err
		}
		if len(trades) == 0 {
			return Record{}, parseError("mexc: deals payload carried no entries", nil)
		}
		// MEXC batches one or more prints per push; callers only act on
		// the latest, so surface the last entry in arrival order.
		return Record{Kind: KindTrade, Trade: trades[len(trades)-1]}, nil
	default:
		return Record{}, parseError("mexc: envelope carries no recognized payload", nil)
	}
}

// decodeMexcDepth decodes the field-313 nested message: field 1 entries
// are ask levels, field 2 entries are bid levels, each a
// {1:price_str, 2:qty_str} pair; field 3 is a version varint we discard
// (no version field on OrderBook).
func decodeMexcDepth(data []byte, symbol string) (domain.OrderBook, error) {
	fields, err := scanFields(data)
	if err != nil {
		return domain.OrderBook{}, err
	}

	var ob domain.OrderBook
	ob.Venue = domain.Mexc
	ob.SetSymbol(symbol)

	for _, f := range fields {
		switch f.num {
		case 1: // ask level
			lvl, lerr := scanFields(f.data)
			if lerr != nil {
				return domain.OrderBook{}, lerr
			}
			level, lerr := decodeMexcLevel(lvl)
			if lerr != nil {
				return domain.OrderBook{}, lerr
			}
			if ob.AskCount < domain.MaxBookLevels && level.Quantity > 0 {
				ob.Asks[ob.AskCount] = level
				ob.AskCount++
			}
		case 2: // bid level
			lvl, lerr := scanFields(f.data)
			if lerr != nil {
				return domain.OrderBook{}, lerr
			}
			level, lerr := decodeMexcLevel(lvl)
			if lerr != nil {
				return domain.OrderBook{}, lerr
			}
			if ob.BidCount < domain.MaxBookLevels && level.Quantity > 0 {
				ob.Bids[ob.BidCount] = level
				ob.BidCount++
			}
		}
	}
	return ob, nil
}

func decodeMexcLevel(fields []field) (domain.PriceLevel, error) {
	var lvl domain.PriceLevel
	for _, f := range fields {
		switch f.num {
		case 1:
			v, err := fieldDouble(f)
			if err != nil {
				return lvl, err
			}
			lvl.Price = v
		case 2:
			v, err := fieldDouble(f)
			if err != nil {
				return lvl, err
			}
			lvl.Quantity = v
		}
	}
	return lvl, nil
}

// decodeMexcDeals decodes the field-314 nested message: field 1 entries
// are repeated deal records (mirroring decodeMexcDepth's ask/bid level
// split), each a nested {1:price_str, 2:qty_str, 3:trade_type,
// 4:timestamp_ms} message in its own right.
func decodeMexcDeals(data []byte, symbol string) ([]domain.Trade, error) {
	fields, err := scanFields(data)
	if err != nil {
		return nil, err
	}

	var trades []domain.Trade
	for _, f := range fields {
		if f.num != 1 {
			continue
		}
		dealFields, derr := scanFields(f.data)
		if derr != nil {
			return nil, derr
		}
		t, derr := decodeMexcDealFields(dealFields, symbol)
		if derr != nil {
			return nil, derr
		}
		trades = append(trades, t)
	}
	return trades, nil
}

func decodeMexcDealFields(fields []field, symbol string) (domain.Trade, error) {
	var price, qty float64
	var tradeType uint64
	var tsMs uint64
	var err error
	for _, f := range fields {
		switch f.num {
		case 1:
			price, err = fieldDouble(f)
		case 2:
			qty, err = fieldDouble(f)
		case 3:
			tradeType = f.u64
		case 4:
			tsMs = f.u64
		}
		if err != nil {
			return domain.Trade{}, err
		}
	}
	return domain.NewTrade(domain.Mexc, symbol, price, qty, tradeType == 1, quant.TimeStamp(tsMs*1000)), nil
}
