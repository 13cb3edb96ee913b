package orderbookv1

import "time"

// Order represents a single limit order in the order book.
//
// ID is caller-assigned and immutable; Quantity is the only field mutated in
// place while the order rests, decremented on each partial fill.
type Order struct {
	ID        uint64 `json:"id"`
	UserID    uint64 `json:"userID"`
	Price     uint64 `json:"price"`
	Quantity  uint64 `json:"quantity"`
	Bid       bool   `json:"bid"`
	Level     *Level `json:"-"`
	Timestamp int64  `json:"timestamp"`
}

// NewOrder creates a new order with the given parameters.
func NewOrder(id, userID, price, quantity uint64, bid bool) *Order {
	return &Order{
		ID:        id,
		UserID:    userID,
		Price:     price,
		Quantity:  quantity,
		Bid:       bid,
		Timestamp: time.Now().UnixNano(),
	}
}

// IsBid checks if the order is a bid (buy) order.
func (o *Order) IsBid() bool {
	return o.Bid
}

// IsAsk checks if the order is an ask (sell) order.
func (o *Order) IsAsk() bool {
	return !o.Bid
}

// IsFilled checks if the order is filled (quantity is zero).
func (o *Order) IsFilled() bool {
	return o.Quantity == 0
}
