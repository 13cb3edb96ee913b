package engine

import (
	"context"
	"sync"
	"time"

	ledgerv1 "github.com/muhammadchandra19/exchange-core/internal/domain/ledger/v1"
	orderreaderv1 "github.com/muhammadchandra19/exchange-core/internal/domain/order-reader/v1"
	orderbookv1 "github.com/muhammadchandra19/exchange-core/internal/domain/orderbook/v1"
	snapshotv1 "github.com/muhammadchandra19/exchange-core/internal/domain/snapshot/v1"
	tradepublisherv1 "github.com/muhammadchandra19/exchange-core/internal/domain/trade-publisher/v1"
	"github.com/muhammadchandra19/exchange-core/internal/usecase/settlement"
	"github.com/muhammadchandra19/exchange-core/pkg/config"
	"github.com/muhammadchandra19/exchange-core/pkg/errors"
	"github.com/muhammadchandra19/exchange-core/pkg/logger"
	"github.com/muhammadchandra19/exchange-core/pkg/util"
	"go.uber.org/zap/zapcore"
)

// Engine owns one trading pair's book and drives the ledger around it.
//
// A single order processor goroutine serializes every submit and cancel, so
// the book needs no external synchronization and order of arrival equals
// order of processing. Each limit request runs freeze -> submit -> settle ->
// publish; each cancel runs remove -> unlock; deposits fund accounts through
// the same stream so they order correctly against the orders they back.
type Engine struct {
	book        orderbookv1.Book
	ledger      ledgerv1.Ledger
	coordinator *settlement.Coordinator
	orderReader orderreaderv1.OrderReader
	publisher   tradepublisherv1.TradePublisher
	store       snapshotv1.Store
	logger      logger.Interface
	config      *config.Config

	mu                 sync.RWMutex
	orderOffset        int64
	lastSnapshotOffset int64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	snapshotInterval    time.Duration
	snapshotOffsetDelta int64

	totalTrades int64
	tradesMutex sync.RWMutex
}

// NewEngine creates a new Engine with default options.
func NewEngine(
	book orderbookv1.Book,
	ledger ledgerv1.Ledger,
	coordinator *settlement.Coordinator,
	orderReader orderreaderv1.OrderReader,
	publisher tradepublisherv1.TradePublisher,
	store snapshotv1.Store,
	log logger.Interface,
	cfg *config.Config,
) *Engine {
	return NewEngineWithOptions(book, ledger, coordinator, orderReader, publisher, store, log, cfg, DefaultEngineOptions())
}

// NewEngineWithOptions creates a new engine with custom options.
func NewEngineWithOptions(
	book orderbookv1.Book,
	ledger ledgerv1.Ledger,
	coordinator *settlement.Coordinator,
	orderReader orderreaderv1.OrderReader,
	publisher tradepublisherv1.TradePublisher,
	store snapshotv1.Store,
	log logger.Interface,
	cfg *config.Config,
	options *Options,
) *Engine {
	e := &Engine{
		book:        book,
		ledger:      ledger,
		coordinator: coordinator,
		orderReader: orderReader,
		publisher:   publisher,
		store:       store,
		logger:      log,
		config:      cfg,

		snapshotInterval:    options.SnapshotInterval,
		snapshotOffsetDelta: options.SnapshotOffsetDelta,
		orderOffset:         -1,
	}

	if err := e.loadSnapshot(context.Background()); err != nil {
		e.logger.GetZap().Fatal("Failed to load snapshot", zapcore.Field{
			Key:       "error",
			Interface: err,
		})
	}

	return e
}

// Start launches the order processor and snapshot manager routines.
func (e *Engine) Start(ctx context.Context) error {
	e.ctx, e.cancel = context.WithCancel(ctx)

	e.wg.Add(2)
	go e.runOrderProcessor()
	go e.runSnapshotManager()

	e.logger.Info("Matching engine started", logger.Field{
		Key:   "pair",
		Value: e.config.Pair,
	})

	return nil
}

// Stop gracefully shuts down the engine.
func (e *Engine) Stop(ctx context.Context) error {
	if e.cancel != nil {
		e.cancel()
	}

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		e.logger.Info("Matching engine stopped gracefully")
		return nil
	case <-ctx.Done():
		e.logger.Warn("Engine stop timeout exceeded")
		return ctx.Err()
	}
}

// runOrderProcessor reads and processes order requests in a single goroutine.
func (e *Engine) runOrderProcessor() {
	defer e.wg.Done()

	e.logger.Info("Starting order processor", logger.Field{
		Key:   "pair",
		Value: e.config.Pair,
	})

	if err := e.orderReader.SetOffset(e.resumeOffset()); err != nil {
		e.logger.GetZap().Fatal("Failed to set offset for order reader", zapcore.Field{
			Key:       "error",
			Interface: err,
		})
	}

	for {
		select {
		case <-e.ctx.Done():
			e.logger.Info("Order processor shutting down")
			e.orderReader.Close()
			return
		default:
			msg, request, err := e.orderReader.ReadMessage(e.ctx)
			if err != nil {
				e.logger.ErrorContext(e.ctx, err, logger.Field{
					Key:   "action",
					Value: "read_order_message",
				})
				time.Sleep(100 * time.Millisecond)
				continue
			}

			// One request id per consumed message, carried through every
			// log line the request produces.
			ctx := util.WithRequestID(e.ctx, "")

			if err := e.orderReader.CommitMessages(ctx, msg); err != nil {
				e.logger.ErrorContext(ctx, err, logger.Field{
					Key:   "action",
					Value: "commit_order_message",
				})
			}

			if err := e.processRequest(ctx, request); err != nil {
				e.logger.ErrorContext(ctx, err, logger.Field{
					Key:   "action",
					Value: "process_order_request",
				})
				continue
			}

			e.setOrderOffset(msg.Offset)
		}
	}
}

// runSnapshotManager handles periodic snapshots.
func (e *Engine) runSnapshotManager() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.snapshotInterval)
	defer ticker.Stop()

	e.logger.Info("Starting snapshot manager")

	for {
		select {
		case <-e.ctx.Done():
			e.logger.Info("Snapshot manager shutting down")
			return
		case <-ticker.C:
			if e.shouldCreateSnapshot() {
				e.createAndStoreSnapshot()
			}
		}
	}
}

// processRequest applies a single order request to the ledger and the book.
func (e *Engine) processRequest(ctx context.Context, request *orderreaderv1.OrderRequest) error {
	switch request.Type {
	case orderreaderv1.RequestTypeLimit:
		return e.placeLimitOrder(ctx, request)
	case orderreaderv1.RequestTypeCancel:
		return e.cancelOrder(ctx, request.OrderID)
	case orderreaderv1.RequestTypeDeposit:
		return e.deposit(ctx, request)
	}
	return nil
}

// deposit credits a user's available balance from a funding request.
func (e *Engine) deposit(ctx context.Context, request *orderreaderv1.OrderRequest) error {
	if request.Asset == "" || request.Quantity == 0 {
		e.logger.WarnContext(ctx, "Deposit with no asset or amount",
			logger.Field{Key: "userID", Value: request.UserID},
		)
		return nil
	}

	asset := ledgerv1.NewAsset(request.Asset)
	if err := e.ledger.Deposit(request.UserID, asset, request.Quantity); err != nil {
		return err
	}

	e.logger.InfoContext(ctx, "Deposit applied",
		logger.Field{Key: "userID", Value: request.UserID},
		logger.Field{Key: "asset", Value: asset.String()},
		logger.Field{Key: "amount", Value: request.Quantity},
	)
	return nil
}

// placeLimitOrder runs the freeze -> submit -> settle -> publish sequence.
// A failed freeze is an order rejection, reported before the book is
// touched; a rejected order has zero effect on book state.
func (e *Engine) placeLimitOrder(ctx context.Context, request *orderreaderv1.OrderRequest) error {
	order := orderbookv1.NewOrder(request.OrderID, request.UserID, request.Price, request.Quantity, request.Bid)

	if err := e.coordinator.Reserve(order); err != nil {
		if isRejection(err) {
			e.logger.InfoContext(ctx, "Order rejected",
				logger.Field{Key: "orderID", Value: order.ID},
				logger.Field{Key: "userID", Value: order.UserID},
				logger.Field{Key: "reason", Value: err.Error()},
			)
			return nil
		}
		return err
	}

	trades, err := e.book.Submit(order)
	if err != nil {
		// The book refused the order after funds were reserved; the order
		// never rested, so the full reservation goes back.
		if unlockErr := e.coordinator.Release(order); unlockErr != nil {
			e.logger.ErrorContext(ctx, unlockErr, logger.Field{
				Key:   "action",
				Value: "release_rejected_order",
			})
		}
		return err
	}

	if len(trades) > 0 {
		if err := e.coordinator.Apply(ctx, order, trades); err != nil {
			return err
		}
		e.publishTrades(ctx, trades)
	}

	return nil
}

// cancelOrder removes a resting order and releases its reservation. An
// unknown id is a normal outcome: the order may have been filled already.
func (e *Engine) cancelOrder(ctx context.Context, orderID uint64) error {
	order, found := e.book.Cancel(orderID)
	if !found {
		e.logger.DebugContext(ctx, "Cancel for unknown order", logger.Field{
			Key:   "orderID",
			Value: orderID,
		})
		return nil
	}

	return e.coordinator.Release(order)
}

// publishTrades publishes the trades and updates statistics.
func (e *Engine) publishTrades(ctx context.Context, trades []orderbookv1.TradeEvent) {
	e.tradesMutex.Lock()
	e.totalTrades += int64(len(trades))
	currentTotal := e.totalTrades
	e.tradesMutex.Unlock()

	e.logger.Info("Trades executed",
		logger.Field{Key: "tradeCount", Value: len(trades)},
		logger.Field{Key: "totalTrades", Value: currentTotal},
	)

	for _, trade := range trades {
		payload := tradepublisherv1.CreateFromTrade(e.config.Pair, trade)
		if err := e.publisher.PublishTrade(ctx, payload); err != nil {
			e.logger.ErrorContext(ctx, err, logger.Field{
				Key:   "action",
				Value: "publish_trade",
			})
		}
	}
}

// isRejection reports whether a reserve failure is a normal order rejection
// rather than an internal fault.
func isRejection(err error) bool {
	return errors.ErrorCodeEquals(err, errors.LedgerInsufficientAvailable) ||
		errors.ErrorCodeEquals(err, errors.LedgerUserNotFound) ||
		errors.ErrorCodeEquals(err, errors.LedgerAssetNotFound)
}

// shouldCreateSnapshot checks if a snapshot should be created.
func (e *Engine) shouldCreateSnapshot() bool {
	e.mu.RLock()
	currentOffset := e.orderOffset
	lastSnapshotOffset := e.lastSnapshotOffset
	e.mu.RUnlock()

	if currentOffset <= 0 {
		return false
	}

	return currentOffset-lastSnapshotOffset >= e.snapshotOffsetDelta
}

// createAndStoreSnapshot creates and stores a snapshot.
func (e *Engine) createAndStoreSnapshot() {
	currentOffset := e.getOrderOffset()

	snapshot := e.book.CreateSnapshot()
	snapshot.OrderOffset = currentOffset
	snapshot.Ledger = *e.ledger.CreateSnapshot()

	if err := e.store.Store(e.ctx, snapshot); err != nil {
		e.logger.ErrorContext(e.ctx, err, logger.Field{
			Key:   "action",
			Value: "store_snapshot",
		})
		return
	}

	e.setLastSnapshotOffset(currentOffset)
	e.logger.Info("Snapshot stored",
		logger.Field{Key: "pair", Value: e.config.Pair},
		logger.Field{Key: "offset", Value: currentOffset},
	)
}

// resumeOffset is where the reader should continue after a restart: one
// past the last processed offset, including offset 0. With nothing
// processed yet the -1 sentinel passes through and the reader seeks to
// the end of the topic.
func (e *Engine) resumeOffset() int64 {
	offset := e.getOrderOffset()
	if offset >= 0 {
		return offset + 1
	}
	return offset
}

func (e *Engine) getOrderOffset() int64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.orderOffset
}

func (e *Engine) setOrderOffset(offset int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.orderOffset = offset
}

func (e *Engine) getLastSnapshotOffset() int64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lastSnapshotOffset
}

func (e *Engine) setLastSnapshotOffset(offset int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastSnapshotOffset = offset
}

// loadSnapshot restores the book from the latest stored snapshot, if any.
func (e *Engine) loadSnapshot(ctx context.Context) error {
	snapshot, err := e.store.Load(ctx)
	if err != nil {
		return err
	}

	if snapshot != nil {
		if err := e.book.Restore(snapshot); err != nil {
			return err
		}

		// The book's resting orders are only valid together with the frozen
		// funds backing them.
		if err := e.ledger.Restore(&snapshot.Ledger); err != nil {
			return err
		}

		e.mu.Lock()
		e.orderOffset = snapshot.OrderOffset
		e.lastSnapshotOffset = snapshot.OrderOffset
		e.mu.Unlock()

		e.logger.Info("Book restored from snapshot", logger.Field{
			Key:   "orderOffset",
			Value: snapshot.OrderOffset,
		})
	}

	return nil
}

// GetOrderOffset returns the current order offset.
func (e *Engine) GetOrderOffset() int64 {
	return e.getOrderOffset()
}

// GetLastSnapshotOffset returns the last snapshot offset.
func (e *Engine) GetLastSnapshotOffset() int64 {
	return e.getLastSnapshotOffset()
}

// GetTotalTrades returns the total number of trades processed.
func (e *Engine) GetTotalTrades() int64 {
	e.tradesMutex.RLock()
	defer e.tradesMutex.RUnlock()
	return e.totalTrades
}
