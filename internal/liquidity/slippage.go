package liquidity

import "github.com/s2ungeda/kac/internal/domain"

// TakerSlippage walks the opposite side of book from the best price
// inward to fill qty at market, greedily consuming levels. For a Buy it
// walks the asks; for a Sell it walks the bids.
func TakerSlippage(book domain.OrderBook, side domain.OrderSide, qty float64) domain.SlippageEstimate {
	levels, best := takerLevels(book, side)

	est := domain.SlippageEstimate{
		Side:      side,
		TargetQty: qty,
		BestPrice: best,
	}
	if qty <= 0 || best == 0 {
		return est
	}

	var filledQty, notional float64
	for _, lvl := range levels {
		if filledQty >= qty {
			break
		}
		take := lvl.Quantity
		if remaining := qty - filledQty; take > remaining {
			take = remaining
		}
		filledQty += take
		notional += take * lvl.Price
		est.Path = append(est.Path, domain.ExecutionStep{Price: lvl.Price, Quantity: take})
		est.WorstPrice = lvl.Price
		est.LevelsConsumed++
	}

	est.FillableQty = filledQty
	if qty > 0 {
		est.FillRatio = filledQty / qty
		if est.FillRatio > 1 {
			est.FillRatio = 1
		}
	}
	est.FullyFillable = est.FillRatio >= 1

	if filledQty > 0 {
		est.ExpectedAvgPrice = notional / filledQty
	}

	if best > 0 {
		// Signed so adverse motion (worse fill than best) is positive for
		// both sides: a Buy fills higher than best, a Sell fills lower.
		var adverse float64
		if side == domain.Buy {
			adverse = est.ExpectedAvgPrice - best
		} else {
			adverse = best - est.ExpectedAvgPrice
		}
		est.SlippageBps = adverse / best * 10000
		est.SlippageNotional = adverse * filledQty
	}

	return est
}

// takerLevels returns the side of the book a taker order walks (asks
// for a Buy, bids for a Sell) and its best price.
func takerLevels(book domain.OrderBook, side domain.OrderSide) ([]domain.PriceLevel, float64) {
	if side == domain.Buy {
		return book.Asks[:book.AskCount], book.BestAsk()
	}
	return book.Bids[:book.BidCount], book.BestBid()
}

// MakerQuote is the recommended maker-side order derived from the
// fill-probability heuristic.
type MakerQuote struct {
	Price              float64
	DistanceBps        float64
	EstimatedFillProb  float64
	EstimatedWaitSec   float64
}

// MakerParams configures the maker heuristic.
type MakerParams struct {
	FillTimePerLevel float64 // seconds
	MaxWaitSec       float64
}

// MakerSlippage places a maker order at distance (1-p)*spread inside the
// book from the best price on side, where p is the target fill
// probability: p=0.8 sits close to best, p=0.5 sits near mid.
func MakerSlippage(book domain.OrderBook, side domain.OrderSide, fillProb float64, p MakerParams) MakerQuote {
	if fillProb < 0 {
		fillProb = 0
	}
	if fillProb > 1 {
		fillProb = 1
	}
	spread := book.BestAsk() - book.BestBid()
	distance := (1 - fillProb) * spread

	var price float64
	var levels []domain.PriceLevel
	switch side {
	case domain.Buy:
		price = book.BestBid() + distance
		levels = book.Bids[:book.BidCount]
	case domain.Sell:
		price = book.BestAsk() - distance
		levels = book.Asks[:book.AskCount]
	}

	levelsToCross := 0
	for _, lvl := range levels {
		if side == domain.Buy && lvl.Price >= price {
			levelsToCross++
		} else if side == domain.Sell && lvl.Price <= price {
			levelsToCross++
		}
	}

	wait := float64(levelsToCross) * p.FillTimePerLevel
	if p.MaxWaitSec > 0 && wait > p.MaxWaitSec {
		wait = p.MaxWaitSec
	}

	var distanceBps float64
	mid := book.MidPrice()
	if mid > 0 {
		distanceBps = distance / mid * 10000
	}

	return MakerQuote{
		Price:             price,
		DistanceBps:       distanceBps,
		EstimatedFillProb: fillProb,
		EstimatedWaitSec:  wait,
	}
}
