package domain

// LiquidityMetrics summarizes one venue's order-book depth and balance
// near the best bid and ask, refreshed on each book update.
type LiquidityMetrics struct {
	Venue          Venue
	BestBid        float64
	BestAsk        float64
	SpreadAbs      float64
	SpreadBps      float64
	BidDepthQty    float64 // within 1% below the best bid (ask side: 1% above the best ask)
	BidDepthNotional float64
	AskDepthQty    float64
	AskDepthNotional float64
	Imbalance      float64 // (bid-ask)/(bid+ask), in [-1,1]
	BidLevelsUsed  int
	AskLevelsUsed  int
}

// ExecutionStep is one level consumed while walking a book during
// slippage estimation.
type ExecutionStep struct {
	Price    float64
	Quantity float64
}

// SlippageEstimate is the result of walking an order book to fill a
// target quantity on one side. Invariants: for a Buy, ExpectedAvgPrice
// >= BestPrice; for a Sell, ExpectedAvgPrice <= BestPrice; SlippageBps
// >= 0.
type SlippageEstimate struct {
	Side             OrderSide
	TargetQty        float64
	BestPrice        float64
	ExpectedAvgPrice float64
	WorstPrice       float64
	SlippageBps      float64
	SlippageNotional float64
	LevelsConsumed   int
	FillableQty      float64
	FillRatio        float64
	FullyFillable    bool
	Path             []ExecutionStep
}

// DualOrderPlan is the maker/taker plan produced by the liquidity
// planner for one candidate buy/sell pair.
type DualOrderPlan struct {
	MakerVenue        Venue // usually the foreign venue
	TakerVenue        Venue // usually the domestic venue
	MakerPrice        float64
	TakerPrice        float64
	MakerFeeRate      float64
	TakerFeeRate      float64
	TakerSlippage     SlippageEstimate
	TotalFeeNotional  float64
	GrossPremiumPct   float64
	NetPremiumPct     float64
	ExpectedProfit    float64
	Quantity          float64
}

// IsProfitable reports whether the plan clears a positive net premium.
// Testable property: IsProfitable() <=> NetPremiumPct>0 <=>
// ExpectedProfit>0, up to rounding.
func (p DualOrderPlan) IsProfitable() bool {
	return p.NetPremiumPct > 0
}

// IsValid reports whether the plan has a usable quantity and distinct
// venues.
func (p DualOrderPlan) IsValid() bool {
	return p.Quantity > 0 && p.MakerVenue != p.TakerVenue
}
