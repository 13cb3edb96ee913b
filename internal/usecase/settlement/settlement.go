package settlement

import (
	"context"
	"fmt"

	ledgerv1 "github.com/muhammadchandra19/exchange-core/internal/domain/ledger/v1"
	orderbookv1 "github.com/muhammadchandra19/exchange-core/internal/domain/orderbook/v1"
	"github.com/muhammadchandra19/exchange-core/pkg/errors"
	"github.com/muhammadchandra19/exchange-core/pkg/logger"
)

// Coordinator wires the ledger around the order book for one trading pair.
//
// The contract it enforces: funds are reserved before an order can reach the
// book, moved only when a trade actually executed, and released when a
// resting order is cancelled. A bid reserves quantity*price of the quote
// asset (its worst-case cost); an ask reserves quantity of the base asset.
type Coordinator struct {
	ledger ledgerv1.Ledger
	base   ledgerv1.Asset
	quote  ledgerv1.Asset
	logger logger.Interface
}

// NewCoordinator creates a settlement coordinator for one pair.
func NewCoordinator(ledger ledgerv1.Ledger, base, quote ledgerv1.Asset, log logger.Interface) *Coordinator {
	return &Coordinator{
		ledger: ledger,
		base:   base,
		quote:  quote,
		logger: log,
	}
}

// Reserve freezes the funds the order could consume at worst. A failed
// reserve means the order must not be submitted; the book stays untouched.
func (c *Coordinator) Reserve(order *orderbookv1.Order) error {
	asset, amount, err := c.reservation(order)
	if err != nil {
		return err
	}
	return c.ledger.Freeze(order.UserID, asset, amount)
}

// Release unlocks the reservation backing a cancelled order. The order must
// carry its remaining quantity at cancellation time, which is exactly what
// the book's Cancel returns; fills that happened before cancellation have
// already consumed their share of the reservation.
func (c *Coordinator) Release(order *orderbookv1.Order) error {
	asset, amount, err := c.reservation(order)
	if err != nil {
		return err
	}
	return c.ledger.Unlock(order.UserID, asset, amount)
}

// Apply settles every trade event against both counterparties: each side's
// frozen give-asset is spent and the receive-asset deposited. taker is the
// incoming order the events came from; its side decides who gave base and
// who gave quote. Events are applied in order, all-or-nothing per event.
//
// An insufficient_frozen failure here means a caller-side accounting bug:
// it is logged as an anomaly and returned, but the process keeps running.
func (c *Coordinator) Apply(ctx context.Context, taker *orderbookv1.Order, trades []orderbookv1.TradeEvent) error {
	if taker == nil {
		return orderbookv1.ErrNilOrder
	}

	for _, trade := range trades {
		quoteAmount, err := mulChecked(trade.Price, trade.Quantity)
		if err != nil {
			return err
		}

		buyer := trade.TakerUserID
		seller := trade.MakerUserID
		if taker.IsAsk() {
			buyer = trade.MakerUserID
			seller = trade.TakerUserID
		}

		if err := c.settleTrade(buyer, seller, trade.Quantity, quoteAmount); err != nil {
			c.logger.ErrorContext(ctx, err,
				logger.Field{Key: "makerOrderID", Value: trade.MakerOrderID},
				logger.Field{Key: "takerOrderID", Value: trade.TakerOrderID},
				logger.Field{Key: "price", Value: trade.Price},
				logger.Field{Key: "quantity", Value: trade.Quantity},
			)
			return err
		}

		// A bid taker reserved quantity*limit but executed at the maker's
		// better price; the improvement delta goes back to available.
		if taker.IsBid() && taker.Price > trade.Price {
			refund, err := mulChecked(taker.Price-trade.Price, trade.Quantity)
			if err != nil {
				return err
			}
			if err := c.ledger.Unlock(trade.TakerUserID, c.quote, refund); err != nil {
				c.logger.ErrorContext(ctx, err,
					logger.Field{Key: "takerOrderID", Value: trade.TakerOrderID},
					logger.Field{Key: "refund", Value: refund},
				)
				return err
			}
		}
	}

	return nil
}

// settleTrade applies one trade: the seller's frozen base is spent and the
// quote deposited; the buyer's frozen quote is spent and the base deposited.
func (c *Coordinator) settleTrade(buyer, seller, quantity, quoteAmount uint64) error {
	if err := c.ledger.Settle(seller, c.base, quantity); err != nil {
		return err
	}
	if err := c.ledger.Deposit(seller, c.quote, quoteAmount); err != nil {
		return err
	}

	if err := c.ledger.Settle(buyer, c.quote, quoteAmount); err != nil {
		return err
	}
	if err := c.ledger.Deposit(buyer, c.base, quantity); err != nil {
		return err
	}

	return nil
}

// reservation computes the (asset, amount) a given order reserves.
func (c *Coordinator) reservation(order *orderbookv1.Order) (ledgerv1.Asset, uint64, error) {
	if order == nil {
		return ledgerv1.Asset{}, 0, orderbookv1.ErrNilOrder
	}

	if order.IsAsk() {
		return c.base, order.Quantity, nil
	}

	cost, err := mulChecked(order.Price, order.Quantity)
	if err != nil {
		return ledgerv1.Asset{}, 0, err
	}
	return c.quote, cost, nil
}

func mulChecked(price, quantity uint64) (uint64, error) {
	product := price * quantity
	if quantity != 0 && product/quantity != price {
		return 0, errors.NewErrorDetails(
			fmt.Sprintf("%d * %d overflows the quote amount", price, quantity),
			string(errors.LedgerOverflow),
			"amount",
		)
	}
	return product, nil
}
