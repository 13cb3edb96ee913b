package orderbookv1

import snapshotv1 "github.com/muhammadchandra19/exchange-core/internal/domain/snapshot/v1"

// Book defines the interface for one trading pair's order book.
//
// A Book instance is exclusively owned by whatever serializes access to it:
// one matching engine per pair, requests delivered through an ordered queue,
// so that order of arrival equals order of processing.
type Book interface {
	// Submit matches the incoming order against the opposing side under
	// price-time priority and rests any remainder. It returns the trade
	// events in the order trades occurred; an empty slice means no crossing
	// happened and the order (or its remainder) was added to the book.
	// Structurally invalid input, including an id that is already resting,
	// is rejected with an error before any state changes.
	Submit(order *Order) ([]TradeEvent, error)
	// Cancel removes a resting order and returns it with whatever quantity
	// remained at cancellation time. The second return is false when the id
	// is unknown or already filled, which is a normal outcome, not an error.
	Cancel(orderID uint64) (*Order, bool)

	Asks() []*Level
	Bids() []*Level
	AskTotalVolume() uint64
	BidTotalVolume() uint64

	CreateSnapshot() *snapshotv1.Snapshot
	Restore(snapshot *snapshotv1.Snapshot) error
}
