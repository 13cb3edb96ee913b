package ledgerv1

import snapshotv1 "github.com/muhammadchandra19/exchange-core/internal/domain/snapshot/v1"

// Ledger defines the balance state machine shared by the matching core.
//
// All mutations use checked unsigned arithmetic and return a typed failure
// instead of corrupting state. A Ledger instance may be shared across books;
// implementations serialize their own mutations.
//
//go:generate mockgen -source interface.go -destination=mock/interface_mock.go -package=ledgerv1_mock
type Ledger interface {
	// Deposit credits amount to the user's available balance, creating the
	// (user, asset) record on first use.
	Deposit(userID uint64, asset Asset, amount uint64) error
	// Freeze moves amount from available to frozen ahead of order placement.
	Freeze(userID uint64, asset Asset, amount uint64) error
	// Unlock reverses a freeze, moving amount from frozen back to available.
	Unlock(userID uint64, asset Asset, amount uint64) error
	// Settle permanently removes amount from frozen after a trade executed.
	// Crediting the counterparty is a separate Deposit call.
	Settle(userID uint64, asset Asset, amount uint64) error
	// BalanceOf returns the balance for (user, asset). Unknown users or
	// assets read as the zero balance rather than failing; callers must not
	// mistake that for a real zero balance.
	BalanceOf(userID uint64, asset Asset) Balance

	// CreateSnapshot captures every balance record of the ledger.
	CreateSnapshot() *snapshotv1.LedgerSnapshot
	// Restore replaces the ledger's state with the balances from a snapshot.
	Restore(snapshot *snapshotv1.LedgerSnapshot) error
}
