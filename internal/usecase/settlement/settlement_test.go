package settlement

import (
	"context"
	"testing"

	ledgerv1 "github.com/muhammadchandra19/exchange-core/internal/domain/ledger/v1"
	orderbookv1 "github.com/muhammadchandra19/exchange-core/internal/domain/orderbook/v1"
	"github.com/muhammadchandra19/exchange-core/internal/usecase/ledger"
	"github.com/muhammadchandra19/exchange-core/internal/usecase/orderbook"
	"github.com/muhammadchandra19/exchange-core/pkg/errors"
	"github.com/muhammadchandra19/exchange-core/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	btc  = ledgerv1.NewAsset("BTC")
	usdt = ledgerv1.NewAsset("USDT")
)

type testFixture struct {
	ledger      *ledger.Ledger
	book        *orderbook.Book
	coordinator *Coordinator
}

func setupTestFixture(t *testing.T) *testFixture {
	log, err := logger.NewLogger()
	require.NoError(t, err)

	accounts := ledger.NewLedger()
	return &testFixture{
		ledger:      accounts,
		book:        orderbook.NewBook(),
		coordinator: NewCoordinator(accounts, btc, usdt, log),
	}
}

// place reserves funds for the order and submits it, mirroring the caller
// contract: freeze first, book second, settlement last.
func (f *testFixture) place(t *testing.T, order *orderbookv1.Order) []orderbookv1.TradeEvent {
	require.NoError(t, f.coordinator.Reserve(order))
	trades, err := f.book.Submit(order)
	require.NoError(t, err)
	if len(trades) > 0 {
		require.NoError(t, f.coordinator.Apply(context.Background(), order, trades))
	}
	return trades
}

func TestCoordinator_FullMatchHappyPath(t *testing.T) {
	f := setupTestFixture(t)

	// User 1 deposits 10 BTC and asks 1 @ 100; user 2 deposits 1000 USDT
	// and bids 1 @ 100.
	require.NoError(t, f.ledger.Deposit(1, btc, 10))
	require.NoError(t, f.ledger.Deposit(2, usdt, 1000))

	trades := f.place(t, orderbookv1.NewOrder(1, 1, 100, 1, false))
	assert.Empty(t, trades)

	trades = f.place(t, orderbookv1.NewOrder(2, 2, 100, 1, true))
	require.Len(t, trades, 1)
	assert.Equal(t, uint64(1), trades[0].MakerOrderID)
	assert.Equal(t, uint64(2), trades[0].TakerOrderID)
	assert.Equal(t, uint64(100), trades[0].Price)
	assert.Equal(t, uint64(1), trades[0].Quantity)

	assert.Equal(t, ledgerv1.Balance{Available: 9}, f.ledger.BalanceOf(1, btc))
	assert.Equal(t, ledgerv1.Balance{Available: 100}, f.ledger.BalanceOf(1, usdt))
	assert.Equal(t, ledgerv1.Balance{Available: 900}, f.ledger.BalanceOf(2, usdt))
	assert.Equal(t, ledgerv1.Balance{Available: 1}, f.ledger.BalanceOf(2, btc))
}

func TestCoordinator_PartialFillMakerRemains(t *testing.T) {
	f := setupTestFixture(t)

	require.NoError(t, f.ledger.Deposit(1, btc, 20))
	require.NoError(t, f.ledger.Deposit(2, usdt, 20000))

	f.place(t, orderbookv1.NewOrder(1, 1, 100, 10, false))

	trades := f.place(t, orderbookv1.NewOrder(2, 2, 100, 2, true))
	require.Len(t, trades, 1)
	assert.Equal(t, uint64(2), trades[0].Quantity)

	// Maker sold 2 of 10; the remaining 8 stay frozen behind the resting ask.
	assert.Equal(t, ledgerv1.Balance{Available: 10, Frozen: 8}, f.ledger.BalanceOf(1, btc))
	assert.Equal(t, ledgerv1.Balance{Available: 200}, f.ledger.BalanceOf(1, usdt))
}

func TestCoordinator_TakerSweepsWithPriceImprovement(t *testing.T) {
	f := setupTestFixture(t)

	require.NoError(t, f.ledger.Deposit(1, btc, 10))
	require.NoError(t, f.ledger.Deposit(2, btc, 10))
	require.NoError(t, f.ledger.Deposit(3, usdt, 1000))

	f.place(t, orderbookv1.NewOrder(1, 1, 100, 1, false))
	f.place(t, orderbookv1.NewOrder(2, 2, 101, 1, false))

	// User 3 bids 3 @ 105: 2 fill at 100 and 101, 1 rests at 105.
	trades := f.place(t, orderbookv1.NewOrder(3, 3, 105, 3, true))
	require.Len(t, trades, 2)

	assert.Equal(t, uint64(2), f.ledger.BalanceOf(3, btc).Available)

	// Reserved 3*105=315; spent 100+101=201; improvement 5+4=9 unlocked;
	// the resting 1@105 keeps exactly 105 frozen.
	balance := f.ledger.BalanceOf(3, usdt)
	assert.Equal(t, uint64(105), balance.Frozen)
	assert.Equal(t, uint64(1000-201-105), balance.Available)
}

func TestCoordinator_PriceMismatchNoTrade(t *testing.T) {
	f := setupTestFixture(t)

	require.NoError(t, f.ledger.Deposit(1, btc, 1))
	require.NoError(t, f.ledger.Deposit(2, usdt, 100))

	f.place(t, orderbookv1.NewOrder(1, 1, 200, 1, false))
	trades := f.place(t, orderbookv1.NewOrder(2, 2, 100, 1, true))

	assert.Empty(t, trades)
	assert.Equal(t, ledgerv1.Balance{Frozen: 1}, f.ledger.BalanceOf(1, btc))
	assert.Equal(t, ledgerv1.Balance{Frozen: 100}, f.ledger.BalanceOf(2, usdt))
}

func TestCoordinator_ReserveInsufficientFunds(t *testing.T) {
	f := setupTestFixture(t)

	require.NoError(t, f.ledger.Deposit(1, usdt, 10))

	err := f.coordinator.Reserve(orderbookv1.NewOrder(1, 1, 100, 1, true))

	assert.True(t, errors.ErrorCodeEquals(err, errors.LedgerInsufficientAvailable))
	assert.Equal(t, ledgerv1.Balance{Available: 10}, f.ledger.BalanceOf(1, usdt))
}

func TestCoordinator_ReserveOverflow(t *testing.T) {
	f := setupTestFixture(t)

	err := f.coordinator.Reserve(orderbookv1.NewOrder(1, 1, 1<<40, 1<<40, true))

	assert.True(t, errors.ErrorCodeEquals(err, errors.LedgerOverflow))
}

func TestCoordinator_CancelReleasesFunds(t *testing.T) {
	f := setupTestFixture(t)

	require.NoError(t, f.ledger.Deposit(1, usdt, 1000))

	// Bid 5 @ 100 reserves 500.
	f.place(t, orderbookv1.NewOrder(101, 1, 100, 5, true))
	assert.Equal(t, ledgerv1.Balance{Available: 500, Frozen: 500}, f.ledger.BalanceOf(1, usdt))

	cancelled, found := f.book.Cancel(101)
	require.True(t, found)
	require.NoError(t, f.coordinator.Release(cancelled))

	assert.Equal(t, ledgerv1.Balance{Available: 1000}, f.ledger.BalanceOf(1, usdt))
}

func TestCoordinator_CancelAfterPartialFill(t *testing.T) {
	f := setupTestFixture(t)

	require.NoError(t, f.ledger.Deposit(1, usdt, 1000))
	require.NoError(t, f.ledger.Deposit(2, btc, 10))

	// Bid 5 @ 100 rests; an ask fills 2 of it.
	f.place(t, orderbookv1.NewOrder(101, 1, 100, 5, true))
	trades := f.place(t, orderbookv1.NewOrder(102, 2, 100, 2, false))
	require.Len(t, trades, 1)

	// Release must use the remaining 3, not the original 5.
	cancelled, found := f.book.Cancel(101)
	require.True(t, found)
	assert.Equal(t, uint64(3), cancelled.Quantity)
	require.NoError(t, f.coordinator.Release(cancelled))

	assert.Equal(t, ledgerv1.Balance{Available: 800}, f.ledger.BalanceOf(1, usdt))
	assert.Equal(t, ledgerv1.Balance{Available: 2}, f.ledger.BalanceOf(1, btc))
}

func TestCoordinator_ConservationAcrossTrades(t *testing.T) {
	f := setupTestFixture(t)

	require.NoError(t, f.ledger.Deposit(1, btc, 10))
	require.NoError(t, f.ledger.Deposit(2, btc, 10))
	require.NoError(t, f.ledger.Deposit(3, usdt, 1000))

	f.place(t, orderbookv1.NewOrder(1, 1, 100, 2, false))
	f.place(t, orderbookv1.NewOrder(2, 2, 101, 2, false))
	f.place(t, orderbookv1.NewOrder(3, 3, 105, 3, true))

	var btcTotal, usdtTotal uint64
	for user := uint64(1); user <= 3; user++ {
		btcTotal += f.ledger.BalanceOf(user, btc).Total()
		usdtTotal += f.ledger.BalanceOf(user, usdt).Total()
	}

	// No trade creates or destroys value on either asset.
	assert.Equal(t, uint64(20), btcTotal)
	assert.Equal(t, uint64(1000), usdtTotal)
}
