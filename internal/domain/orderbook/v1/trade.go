package orderbookv1

// TradeEvent is an immutable record of one match between a resting (maker)
// order and an incoming (taker) order.
//
// Price is always the resting order's price; price-time priority gives any
// price improvement to the taker. Events are produced by Submit, handed to
// the caller, and consumed exactly once by settlement.
type TradeEvent struct {
	MakerOrderID uint64 `json:"makerOrderID"`
	MakerUserID  uint64 `json:"makerUserID"`
	TakerOrderID uint64 `json:"takerOrderID"`
	TakerUserID  uint64 `json:"takerUserID"`
	Price        uint64 `json:"price"`
	Quantity     uint64 `json:"quantity"`
}
