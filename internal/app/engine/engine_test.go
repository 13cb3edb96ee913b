package engine

import (
	"context"
	"testing"

	"go.uber.org/mock/gomock"

	ledgerv1 "github.com/muhammadchandra19/exchange-core/internal/domain/ledger/v1"
	orderreaderv1 "github.com/muhammadchandra19/exchange-core/internal/domain/order-reader/v1"
	orderreadermock "github.com/muhammadchandra19/exchange-core/internal/domain/order-reader/v1/mock"
	snapshotv1 "github.com/muhammadchandra19/exchange-core/internal/domain/snapshot/v1"
	snapshotmock "github.com/muhammadchandra19/exchange-core/internal/domain/snapshot/v1/mock"
	tradepublishermock "github.com/muhammadchandra19/exchange-core/internal/domain/trade-publisher/v1/mock"
	"github.com/muhammadchandra19/exchange-core/internal/usecase/ledger"
	"github.com/muhammadchandra19/exchange-core/internal/usecase/orderbook"
	"github.com/muhammadchandra19/exchange-core/internal/usecase/settlement"
	"github.com/muhammadchandra19/exchange-core/pkg/config"
	"github.com/muhammadchandra19/exchange-core/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type engineFixture struct {
	engine    *Engine
	ledger    *ledger.Ledger
	book      *orderbook.Book
	reader    *orderreadermock.MockOrderReader
	store     *snapshotmock.MockStore
	publisher *tradepublishermock.MockTradePublisher
}

func setupTestEngine(t *testing.T, snapshot *snapshotv1.Snapshot) *engineFixture {
	ctrl := gomock.NewController(t)

	mockOrderReader := orderreadermock.NewMockOrderReader(ctrl)
	mockStore := snapshotmock.NewMockStore(ctrl)
	mockPublisher := tradepublishermock.NewMockTradePublisher(ctrl)

	mockStore.EXPECT().
		Load(gomock.Any()).
		Return(snapshot, nil).
		Times(1)

	book := orderbook.NewBook()
	accounts := ledger.NewLedger()

	log, err := logger.NewLogger()
	require.NoError(t, err)

	cfg := &config.Config{
		Pair:       "BTC/USDT",
		BaseAsset:  "BTC",
		QuoteAsset: "USDT",
	}

	coordinator := settlement.NewCoordinator(
		accounts,
		ledgerv1.NewAsset(cfg.BaseAsset),
		ledgerv1.NewAsset(cfg.QuoteAsset),
		log,
	)

	engine := NewEngine(book, accounts, coordinator, mockOrderReader, mockPublisher, mockStore, log, cfg)
	engine.ctx = context.Background()

	return &engineFixture{
		engine:    engine,
		ledger:    accounts,
		book:      book,
		reader:    mockOrderReader,
		store:     mockStore,
		publisher: mockPublisher,
	}
}

func limitRequest(orderID, userID, price, quantity uint64, bid bool) *orderreaderv1.OrderRequest {
	return &orderreaderv1.OrderRequest{
		OrderID:  orderID,
		UserID:   userID,
		Type:     orderreaderv1.RequestTypeLimit,
		Bid:      bid,
		Price:    price,
		Quantity: quantity,
	}
}

func TestEngine_DepositFundsAccount(t *testing.T) {
	f := setupTestEngine(t, nil)
	btc := ledgerv1.NewAsset("BTC")

	err := f.engine.processRequest(context.Background(), &orderreaderv1.OrderRequest{
		UserID:   1,
		Type:     orderreaderv1.RequestTypeDeposit,
		Asset:    "BTC",
		Quantity: 10,
	})

	require.NoError(t, err)
	assert.Equal(t, ledgerv1.Balance{Available: 10}, f.ledger.BalanceOf(1, btc))

	// The deposited funds back an order through the same stream.
	require.NoError(t, f.engine.processRequest(context.Background(), limitRequest(1, 1, 100, 5, false)))
	assert.Equal(t, 1, f.book.OrderCount())
	assert.Equal(t, ledgerv1.Balance{Available: 5, Frozen: 5}, f.ledger.BalanceOf(1, btc))
}

func TestEngine_DepositWithoutAssetIgnored(t *testing.T) {
	f := setupTestEngine(t, nil)

	err := f.engine.processRequest(context.Background(), &orderreaderv1.OrderRequest{
		UserID:   1,
		Type:     orderreaderv1.RequestTypeDeposit,
		Quantity: 10,
	})

	require.NoError(t, err)
	assert.Equal(t, ledgerv1.Balance{}, f.ledger.BalanceOf(1, ledgerv1.NewAsset("BTC")))
}

func TestEngine_PlaceLimitOrder(t *testing.T) {
	f := setupTestEngine(t, nil)
	btc := ledgerv1.NewAsset("BTC")

	require.NoError(t, f.ledger.Deposit(1, btc, 10))

	err := f.engine.processRequest(context.Background(), limitRequest(1, 1, 100, 5, false))

	require.NoError(t, err)
	assert.Equal(t, 1, f.book.OrderCount())
	assert.Equal(t, ledgerv1.Balance{Available: 5, Frozen: 5}, f.ledger.BalanceOf(1, btc))
}

func TestEngine_MatchPublishesTrades(t *testing.T) {
	f := setupTestEngine(t, nil)
	btc := ledgerv1.NewAsset("BTC")
	usdt := ledgerv1.NewAsset("USDT")

	require.NoError(t, f.ledger.Deposit(1, btc, 10))
	require.NoError(t, f.ledger.Deposit(2, usdt, 1000))

	f.publisher.EXPECT().
		PublishTrade(gomock.Any(), gomock.Any()).
		Return(nil).
		Times(1)

	require.NoError(t, f.engine.processRequest(context.Background(), limitRequest(1, 1, 100, 1, false)))
	require.NoError(t, f.engine.processRequest(context.Background(), limitRequest(2, 2, 100, 1, true)))

	assert.Equal(t, int64(1), f.engine.GetTotalTrades())
	assert.Equal(t, 0, f.book.OrderCount())
	assert.Equal(t, ledgerv1.Balance{Available: 100}, f.ledger.BalanceOf(1, usdt))
	assert.Equal(t, ledgerv1.Balance{Available: 1}, f.ledger.BalanceOf(2, btc))
}

func TestEngine_RejectsUnfundedOrder(t *testing.T) {
	f := setupTestEngine(t, nil)
	usdt := ledgerv1.NewAsset("USDT")

	require.NoError(t, f.ledger.Deposit(2, usdt, 50))

	// Bid 1 @ 100 needs 100 USDT but only 50 are available; the rejection
	// is a normal outcome and must leave the book untouched.
	err := f.engine.processRequest(context.Background(), limitRequest(2, 2, 100, 1, true))

	require.NoError(t, err)
	assert.Equal(t, 0, f.book.OrderCount())
	assert.Equal(t, ledgerv1.Balance{Available: 50}, f.ledger.BalanceOf(2, usdt))
}

func TestEngine_RejectsUnknownUser(t *testing.T) {
	f := setupTestEngine(t, nil)

	err := f.engine.processRequest(context.Background(), limitRequest(1, 99, 100, 1, true))

	require.NoError(t, err)
	assert.Equal(t, 0, f.book.OrderCount())
}

func TestEngine_DuplicateOrderReleasesReservation(t *testing.T) {
	f := setupTestEngine(t, nil)
	btc := ledgerv1.NewAsset("BTC")

	require.NoError(t, f.ledger.Deposit(1, btc, 10))

	require.NoError(t, f.engine.processRequest(context.Background(), limitRequest(1, 1, 100, 2, false)))

	// Same id again: the book refuses it after the freeze, so the second
	// reservation must be unwound in full.
	err := f.engine.processRequest(context.Background(), limitRequest(1, 1, 100, 2, false))

	require.Error(t, err)
	assert.Equal(t, 1, f.book.OrderCount())
	assert.Equal(t, ledgerv1.Balance{Available: 8, Frozen: 2}, f.ledger.BalanceOf(1, btc))
}

func TestEngine_CancelOrder(t *testing.T) {
	f := setupTestEngine(t, nil)
	usdt := ledgerv1.NewAsset("USDT")

	require.NoError(t, f.ledger.Deposit(2, usdt, 1000))
	require.NoError(t, f.engine.processRequest(context.Background(), limitRequest(7, 2, 100, 5, true)))

	err := f.engine.processRequest(context.Background(), &orderreaderv1.OrderRequest{
		OrderID: 7,
		Type:    orderreaderv1.RequestTypeCancel,
	})

	require.NoError(t, err)
	assert.Equal(t, 0, f.book.OrderCount())
	assert.Equal(t, ledgerv1.Balance{Available: 1000}, f.ledger.BalanceOf(2, usdt))
}

func TestEngine_CancelUnknownOrder(t *testing.T) {
	f := setupTestEngine(t, nil)

	err := f.engine.processRequest(context.Background(), &orderreaderv1.OrderRequest{
		OrderID: 42,
		Type:    orderreaderv1.RequestTypeCancel,
	})

	assert.NoError(t, err)
}

func TestEngine_SnapshotRestoreOnStartup(t *testing.T) {
	f := setupTestEngine(t, &snapshotv1.Snapshot{
		OrderOffset: 500,
		Book: snapshotv1.BookSnapshot{
			Orders: []snapshotv1.BookOrder{
				{OrderID: 1, UserID: 1, Price: 100, Quantity: 3, Bid: false, Timestamp: 1},
				{OrderID: 2, UserID: 2, Price: 90, Quantity: 2, Bid: true, Timestamp: 2},
			},
		},
		Ledger: snapshotv1.LedgerSnapshot{
			Balances: []snapshotv1.BalanceEntry{
				{UserID: 1, Asset: "BTC", Available: 7, Frozen: 3},
				{UserID: 2, Asset: "USDT", Available: 820, Frozen: 180},
			},
		},
	})

	assert.Equal(t, int64(500), f.engine.GetOrderOffset())
	assert.Equal(t, int64(500), f.engine.GetLastSnapshotOffset())
	assert.Equal(t, 2, f.book.OrderCount())

	bestAsk, ok := f.book.BestAsk()
	require.True(t, ok)
	assert.Equal(t, uint64(100), bestAsk)

	// Ledger state came back with the book, so the restored resting orders
	// still have frozen funds behind them and a cancel releases them.
	btc := ledgerv1.NewAsset("BTC")
	assert.Equal(t, ledgerv1.Balance{Available: 7, Frozen: 3}, f.ledger.BalanceOf(1, btc))

	err := f.engine.processRequest(context.Background(), &orderreaderv1.OrderRequest{
		OrderID: 1,
		Type:    orderreaderv1.RequestTypeCancel,
	})
	require.NoError(t, err)
	assert.Equal(t, ledgerv1.Balance{Available: 10}, f.ledger.BalanceOf(1, btc))
}

func TestEngine_ResumeOffset(t *testing.T) {
	f := setupTestEngine(t, nil)

	// Nothing processed yet: the -1 sentinel passes through so the reader
	// seeks to the end of the topic.
	assert.Equal(t, int64(-1), f.engine.resumeOffset())

	// Offset 0 was processed; resuming must not replay it.
	f.engine.setOrderOffset(0)
	assert.Equal(t, int64(1), f.engine.resumeOffset())

	f.engine.setOrderOffset(500)
	assert.Equal(t, int64(501), f.engine.resumeOffset())
}

func TestEngine_SnapshotTrigger(t *testing.T) {
	f := setupTestEngine(t, nil)

	// Fresh engine, no processed orders: nothing to snapshot.
	assert.False(t, f.engine.shouldCreateSnapshot())

	f.engine.setOrderOffset(999)
	assert.False(t, f.engine.shouldCreateSnapshot())

	f.engine.setOrderOffset(1000)
	assert.True(t, f.engine.shouldCreateSnapshot())

	require.NoError(t, f.ledger.Deposit(1, ledgerv1.NewAsset("BTC"), 10))

	f.store.EXPECT().
		Store(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, snapshot *snapshotv1.Snapshot) error {
			assert.Equal(t, int64(1000), snapshot.OrderOffset)
			assert.Equal(t, []snapshotv1.BalanceEntry{
				{UserID: 1, Asset: "BTC", Available: 10},
			}, snapshot.Ledger.Balances)
			return nil
		}).
		Times(1)

	f.engine.createAndStoreSnapshot()

	assert.Equal(t, int64(1000), f.engine.GetLastSnapshotOffset())
	assert.False(t, f.engine.shouldCreateSnapshot())
}
