package orderbook

import (
	"fmt"
	"sync"

	orderbookv1 "github.com/muhammadchandra19/exchange-core/internal/domain/orderbook/v1"
	snapshotv1 "github.com/muhammadchandra19/exchange-core/internal/domain/snapshot/v1"
	"github.com/tidwall/btree"
)

const btreeDegree = 64

// Book is an order book for one trading pair, matching incoming limit orders
// against resting orders under price-time priority.
//
// Both sides are ordered maps from price to price level, so the best ask
// (lowest) and best bid (highest) are O(log n) lookups. The orders index maps
// every resting order id to its order; an id is present in the index exactly
// when the order sits in one price-level queue.
type Book struct {
	mu     sync.RWMutex
	asks   *btree.Map[uint64, *orderbookv1.Level]
	bids   *btree.Map[uint64, *orderbookv1.Level]
	orders map[uint64]*orderbookv1.Order
}

// NewBook creates an empty order book.
func NewBook() *Book {
	return &Book{
		asks:   btree.NewMap[uint64, *orderbookv1.Level](btreeDegree),
		bids:   btree.NewMap[uint64, *orderbookv1.Level](btreeDegree),
		orders: make(map[uint64]*orderbookv1.Order),
	}
}

// Submit matches the incoming order and rests any remainder.
//
// The opposing side is drained level by level from the best price while the
// incoming order still crosses: oldest maker first within a level, one trade
// event per maker touched, execution price always the maker's. Emptied levels
// are removed immediately. Whatever quantity survives the loop is appended to
// the back of its own side's level and registered in the index.
func (b *Book) Submit(order *orderbookv1.Order) ([]orderbookv1.TradeEvent, error) {
	if order == nil {
		return nil, orderbookv1.ErrNilOrder
	}
	if order.Price == 0 {
		return nil, fmt.Errorf("%w: got 0", orderbookv1.ErrInvalidPrice)
	}
	if order.Quantity == 0 {
		return nil, fmt.Errorf("%w: got 0", orderbookv1.ErrInvalidQuantity)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.orders[order.ID]; exists {
		return nil, fmt.Errorf("%w: %d", orderbookv1.ErrDuplicateOrderID, order.ID)
	}

	var trades []orderbookv1.TradeEvent

	for order.Quantity > 0 {
		var price uint64
		var level *orderbookv1.Level
		var ok bool

		if order.IsBid() {
			price, level, ok = b.asks.Min()
			if !ok || order.Price < price {
				break
			}
		} else {
			price, level, ok = b.bids.Max()
			if !ok || order.Price > price {
				break
			}
		}

		filled := level.Fill(order)
		trades = append(trades, filled...)

		// Fully filled makers left the queue; drop them from the index too.
		for _, trade := range filled {
			if maker, exists := b.orders[trade.MakerOrderID]; exists && maker.IsFilled() {
				delete(b.orders, trade.MakerOrderID)
			}
		}

		if level.IsEmpty() {
			if order.IsBid() {
				b.asks.Delete(price)
			} else {
				b.bids.Delete(price)
			}
		}
	}

	if order.Quantity > 0 {
		side := b.bids
		if order.IsAsk() {
			side = b.asks
		}

		level, exists := side.Get(order.Price)
		if !exists {
			level = orderbookv1.NewLevel(order.Price)
			side.Set(order.Price, level)
		}

		if err := level.Add(order); err != nil {
			return trades, err
		}
		b.orders[order.ID] = order
	}

	return trades, nil
}

// Cancel removes a resting order and returns it with its remaining quantity.
// The bool is false when the id is unknown or already filled.
func (b *Book) Cancel(orderID uint64) (*orderbookv1.Order, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	order, exists := b.orders[orderID]
	if !exists {
		return nil, false
	}

	// Level backpointer is cleared by Remove, keep it for the empty check.
	level := order.Level
	if level != nil {
		if err := level.Remove(order); err != nil {
			// The index pointed at a level that no longer holds the order.
			// Drop the stale entry so the id frees up again.
			delete(b.orders, orderID)
			return nil, false
		}

		if level.IsEmpty() {
			if order.IsBid() {
				b.bids.Delete(level.Price)
			} else {
				b.asks.Delete(level.Price)
			}
		}
	}

	delete(b.orders, orderID)

	return order, true
}

// BestAsk returns the lowest ask price, or false when the ask side is empty.
func (b *Book) BestAsk() (uint64, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	price, _, ok := b.asks.Min()
	return price, ok
}

// BestBid returns the highest bid price, or false when the bid side is empty.
func (b *Book) BestBid() (uint64, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	price, _, ok := b.bids.Max()
	return price, ok
}

// Asks returns ask levels sorted by price (ascending).
func (b *Book) Asks() []*orderbookv1.Level {
	b.mu.RLock()
	defer b.mu.RUnlock()

	levels := make([]*orderbookv1.Level, 0, b.asks.Len())
	b.asks.Scan(func(_ uint64, level *orderbookv1.Level) bool {
		levels = append(levels, level)
		return true
	})
	return levels
}

// Bids returns bid levels sorted by price (descending).
func (b *Book) Bids() []*orderbookv1.Level {
	b.mu.RLock()
	defer b.mu.RUnlock()

	levels := make([]*orderbookv1.Level, 0, b.bids.Len())
	b.bids.Reverse(func(_ uint64, level *orderbookv1.Level) bool {
		levels = append(levels, level)
		return true
	})
	return levels
}

// AskTotalVolume returns total resting quantity on the ask side.
func (b *Book) AskTotalVolume() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var total uint64
	b.asks.Scan(func(_ uint64, level *orderbookv1.Level) bool {
		total += level.TotalVolume
		return true
	})
	return total
}

// BidTotalVolume returns total resting quantity on the bid side.
func (b *Book) BidTotalVolume() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var total uint64
	b.bids.Scan(func(_ uint64, level *orderbookv1.Level) bool {
		total += level.TotalVolume
		return true
	})
	return total
}

// OrderCount returns the number of resting orders across both sides.
func (b *Book) OrderCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.orders)
}

// CreateSnapshot captures every resting order of the book.
func (b *Book) CreateSnapshot() *snapshotv1.Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var bookOrders []snapshotv1.BookOrder

	collect := func(_ uint64, level *orderbookv1.Level) bool {
		for _, order := range level.Orders {
			bookOrders = append(bookOrders, snapshotv1.BookOrder{
				OrderID:   order.ID,
				UserID:    order.UserID,
				Price:     order.Price,
				Quantity:  order.Quantity,
				Bid:       order.Bid,
				Timestamp: order.Timestamp,
			})
		}
		return true
	}

	b.asks.Scan(collect)
	b.bids.Scan(collect)

	return &snapshotv1.Snapshot{
		OrderOffset: 0, // set by the engine
		Book: snapshotv1.BookSnapshot{
			Orders: bookOrders,
		},
	}
}

// Restore replaces the book's state with the orders from a snapshot.
// Queue order within a level follows the snapshot's order, which
// CreateSnapshot wrote in arrival order.
func (b *Book) Restore(snapshot *snapshotv1.Snapshot) error {
	if snapshot == nil {
		return fmt.Errorf("snapshot cannot be nil")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.asks = btree.NewMap[uint64, *orderbookv1.Level](btreeDegree)
	b.bids = btree.NewMap[uint64, *orderbookv1.Level](btreeDegree)
	b.orders = make(map[uint64]*orderbookv1.Order)

	for _, bookOrder := range snapshot.Book.Orders {
		order := &orderbookv1.Order{
			ID:        bookOrder.OrderID,
			UserID:    bookOrder.UserID,
			Price:     bookOrder.Price,
			Quantity:  bookOrder.Quantity,
			Bid:       bookOrder.Bid,
			Timestamp: bookOrder.Timestamp,
		}

		side := b.bids
		if order.IsAsk() {
			side = b.asks
		}

		level, exists := side.Get(order.Price)
		if !exists {
			level = orderbookv1.NewLevel(order.Price)
			side.Set(order.Price, level)
		}

		if err := level.Add(order); err != nil {
			return fmt.Errorf("failed to restore order %d: %w", bookOrder.OrderID, err)
		}
		b.orders[order.ID] = order
	}

	return nil
}
