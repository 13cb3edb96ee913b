package snapshotv1

// BookOrder is one resting order captured in a snapshot.
type BookOrder struct {
	OrderID   uint64 `json:"orderID"`
	UserID    uint64 `json:"userID"`
	Price     uint64 `json:"price"`
	Quantity  uint64 `json:"quantity"`
	Bid       bool   `json:"bid"`
	Timestamp int64  `json:"timestamp"`
}

// BookSnapshot captures every resting order of one book.
type BookSnapshot struct {
	Orders []BookOrder `json:"orders"`
}

// BalanceEntry is one (user, asset) balance captured in a snapshot.
type BalanceEntry struct {
	UserID    uint64 `json:"userID"`
	Asset     string `json:"asset"`
	Available uint64 `json:"available"`
	Frozen    uint64 `json:"frozen"`
}

// LedgerSnapshot captures every balance record of the ledger. Restoring the
// book without it would leave resting orders with no frozen funds behind
// them, so the two are always captured and restored together.
type LedgerSnapshot struct {
	Balances []BalanceEntry `json:"balances"`
}

// Snapshot ties the book and ledger state to the order stream offset they
// reflect.
type Snapshot struct {
	OrderOffset int64          `json:"orderOffset"`
	Book        BookSnapshot   `json:"book"`
	Ledger      LedgerSnapshot `json:"ledger"`
}
