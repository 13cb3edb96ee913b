package ledger

import (
	"fmt"
	"math"
	"sort"
	"sync"

	ledgerv1 "github.com/muhammadchandra19/exchange-core/internal/domain/ledger/v1"
	snapshotv1 "github.com/muhammadchandra19/exchange-core/internal/domain/snapshot/v1"
	"github.com/muhammadchandra19/exchange-core/pkg/errors"
)

// Ledger holds per-user, per-asset balances split into available and frozen.
//
// Every mutation runs under one exclusive lock; operations are O(1) and
// short-lived, so a single lock is enough even when the ledger is shared
// across several matching engines. Callers must never clone balances for
// later unsynchronized mutation.
type Ledger struct {
	mu       sync.Mutex
	accounts map[uint64]map[ledgerv1.Asset]*ledgerv1.Balance
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		accounts: make(map[uint64]map[ledgerv1.Asset]*ledgerv1.Balance),
	}
}

// balance returns the balance record for (user, asset), failing with the
// user_not_found or asset_not_found code when no record exists.
func (l *Ledger) balance(userID uint64, asset ledgerv1.Asset) (*ledgerv1.Balance, error) {
	assets, ok := l.accounts[userID]
	if !ok {
		return nil, errors.NewErrorDetails(
			fmt.Sprintf("user %d has no balance records", userID),
			string(errors.LedgerUserNotFound),
			"userID",
		)
	}

	balance, ok := assets[asset]
	if !ok {
		return nil, errors.NewErrorDetails(
			fmt.Sprintf("user %d has no %s balance", userID, asset),
			string(errors.LedgerAssetNotFound),
			"asset",
		)
	}

	return balance, nil
}

// Deposit credits amount to the user's available balance, creating the
// (user, asset) record on first use.
func (l *Ledger) Deposit(userID uint64, asset ledgerv1.Asset, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	assets, ok := l.accounts[userID]
	if !ok {
		assets = make(map[ledgerv1.Asset]*ledgerv1.Balance)
		l.accounts[userID] = assets
	}

	balance, ok := assets[asset]
	if !ok {
		balance = &ledgerv1.Balance{}
		assets[asset] = balance
	}

	if amount > math.MaxUint64-balance.Available {
		return overflowError(userID, asset, "available")
	}
	balance.Available += amount

	return nil
}

// Freeze moves amount from available to frozen ahead of order placement.
func (l *Ledger) Freeze(userID uint64, asset ledgerv1.Asset, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	balance, err := l.balance(userID, asset)
	if err != nil {
		return err
	}

	if balance.Available < amount {
		return errors.NewErrorDetails(
			fmt.Sprintf("user %d has %d %s available, need %d", userID, balance.Available, asset, amount),
			string(errors.LedgerInsufficientAvailable),
			"amount",
		)
	}

	if amount > math.MaxUint64-balance.Frozen {
		return overflowError(userID, asset, "frozen")
	}

	balance.Available -= amount
	balance.Frozen += amount

	return nil
}

// Unlock reverses a freeze, moving amount from frozen back to available.
// Used on cancellation or when releasing the unused remainder of a
// partially filled reservation.
func (l *Ledger) Unlock(userID uint64, asset ledgerv1.Asset, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	balance, err := l.balance(userID, asset)
	if err != nil {
		return err
	}

	if balance.Frozen < amount {
		return insufficientFrozenError(userID, asset, balance.Frozen, amount)
	}

	if amount > math.MaxUint64-balance.Available {
		return overflowError(userID, asset, "available")
	}

	balance.Frozen -= amount
	balance.Available += amount

	return nil
}

// Settle permanently removes amount from frozen after a trade executed.
// Crediting the counterparty is a separate Deposit call; Settle never
// itself credits anyone.
func (l *Ledger) Settle(userID uint64, asset ledgerv1.Asset, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	balance, err := l.balance(userID, asset)
	if err != nil {
		return err
	}

	if balance.Frozen < amount {
		return insufficientFrozenError(userID, asset, balance.Frozen, amount)
	}

	balance.Frozen -= amount

	return nil
}

// BalanceOf returns the balance for (user, asset). Unknown users or assets
// read as the zero balance; callers must not mistake that for a real zero
// balance record.
func (l *Ledger) BalanceOf(userID uint64, asset ledgerv1.Asset) ledgerv1.Balance {
	l.mu.Lock()
	defer l.mu.Unlock()

	balance, err := l.balance(userID, asset)
	if err != nil {
		return ledgerv1.Balance{}
	}

	return *balance
}

// CreateSnapshot captures every balance record of the ledger, sorted by
// user id then asset for stable output.
func (l *Ledger) CreateSnapshot() *snapshotv1.LedgerSnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	var balances []snapshotv1.BalanceEntry
	for userID, assets := range l.accounts {
		for asset, balance := range assets {
			balances = append(balances, snapshotv1.BalanceEntry{
				UserID:    userID,
				Asset:     asset.String(),
				Available: balance.Available,
				Frozen:    balance.Frozen,
			})
		}
	}

	sort.Slice(balances, func(i, j int) bool {
		if balances[i].UserID != balances[j].UserID {
			return balances[i].UserID < balances[j].UserID
		}
		return balances[i].Asset < balances[j].Asset
	})

	return &snapshotv1.LedgerSnapshot{Balances: balances}
}

// Restore replaces the ledger's state with the balances from a snapshot.
func (l *Ledger) Restore(snapshot *snapshotv1.LedgerSnapshot) error {
	if snapshot == nil {
		return fmt.Errorf("ledger snapshot cannot be nil")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.accounts = make(map[uint64]map[ledgerv1.Asset]*ledgerv1.Balance)

	for _, entry := range snapshot.Balances {
		assets, ok := l.accounts[entry.UserID]
		if !ok {
			assets = make(map[ledgerv1.Asset]*ledgerv1.Balance)
			l.accounts[entry.UserID] = assets
		}

		assets[ledgerv1.NewAsset(entry.Asset)] = &ledgerv1.Balance{
			Available: entry.Available,
			Frozen:    entry.Frozen,
		}
	}

	return nil
}

func overflowError(userID uint64, asset ledgerv1.Asset, field string) error {
	return errors.NewErrorDetails(
		fmt.Sprintf("user %d %s balance would overflow", userID, asset),
		string(errors.LedgerOverflow),
		field,
	)
}

func insufficientFrozenError(userID uint64, asset ledgerv1.Asset, frozen, amount uint64) error {
	return errors.NewErrorDetails(
		fmt.Sprintf("user %d has %d %s frozen, need %d", userID, frozen, asset, amount),
		string(errors.LedgerInsufficientFrozen),
		"amount",
	)
}
