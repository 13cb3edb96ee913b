package orderbookv1

import (
	"errors"
	"fmt"
)

var (
	ErrNilOrder         = errors.New("order cannot be nil")
	ErrInvalidPrice     = errors.New("price must be positive")
	ErrInvalidQuantity  = errors.New("quantity must be positive")
	ErrOrderNotFound    = errors.New("order not found in level")
	ErrDuplicateOrderID = errors.New("order id already resting")
)

// Level represents one price level on one side of the book: a FIFO sequence
// of resting orders at exactly this price. Orders are kept in arrival order;
// the book removes a level the instant it becomes empty.
type Level struct {
	Price       uint64   `json:"price"`
	Orders      []*Order `json:"orders"`
	TotalVolume uint64   `json:"totalVolume"`
}

// NewLevel creates a new Level with the specified price.
func NewLevel(price uint64) *Level {
	return &Level{
		Price:  price,
		Orders: make([]*Order, 0),
	}
}

// Add appends an order to the back of the level and updates the total volume.
func (l *Level) Add(order *Order) error {
	if order == nil {
		return ErrNilOrder
	}
	if order.Quantity == 0 {
		return fmt.Errorf("%w: got 0", ErrInvalidQuantity)
	}

	order.Level = l
	l.Orders = append(l.Orders, order)
	l.TotalVolume += order.Quantity

	return nil
}

// Remove removes an order from the level and updates the total volume.
func (l *Level) Remove(order *Order) error {
	if order == nil {
		return ErrNilOrder
	}

	for i, o := range l.Orders {
		if o == order {
			l.Orders = append(l.Orders[:i], l.Orders[i+1:]...)
			l.TotalVolume -= order.Quantity
			order.Level = nil
			return nil
		}
	}

	return ErrOrderNotFound
}

// Fill drains the level from its front against the incoming taker order,
// oldest maker first, and returns one trade event per maker touched. Each
// event carries this level's price. Draining stops once the taker's
// remaining quantity hits zero or the level empties; fully filled makers
// are removed from the queue.
func (l *Level) Fill(taker *Order) []TradeEvent {
	if taker == nil {
		return nil
	}

	var trades []TradeEvent

	for len(l.Orders) > 0 && taker.Quantity > 0 {
		maker := l.Orders[0]

		quantity := min(taker.Quantity, maker.Quantity)
		taker.Quantity -= quantity
		maker.Quantity -= quantity
		l.TotalVolume -= quantity

		trades = append(trades, TradeEvent{
			MakerOrderID: maker.ID,
			MakerUserID:  maker.UserID,
			TakerOrderID: taker.ID,
			TakerUserID:  taker.UserID,
			Price:        l.Price,
			Quantity:     quantity,
		})

		if maker.Quantity > 0 {
			break
		}

		maker.Level = nil
		l.Orders = l.Orders[1:]
	}

	return trades
}

// IsEmpty checks if the level has no orders.
func (l *Level) IsEmpty() bool {
	return len(l.Orders) == 0
}

// OrderCount returns the number of orders at this level.
func (l *Level) OrderCount() int {
	return len(l.Orders)
}

// Validate performs basic consistency checks on the level's state.
func (l *Level) Validate() error {
	if l.Price == 0 {
		return fmt.Errorf("%w: level price 0", ErrInvalidPrice)
	}

	var volume uint64
	for _, order := range l.Orders {
		if order == nil {
			return fmt.Errorf("nil order found in level")
		}
		if order.Quantity == 0 {
			return fmt.Errorf("%w: resting order %d has zero quantity", ErrInvalidQuantity, order.ID)
		}
		volume += order.Quantity
	}

	if volume != l.TotalVolume {
		return fmt.Errorf("volume mismatch: calculated %d, stored %d", volume, l.TotalVolume)
	}

	return nil
}
