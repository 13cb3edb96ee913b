package tradepublisherv1

import (
	"encoding/json"
	"time"

	orderbookv1 "github.com/muhammadchandra19/exchange-core/internal/domain/orderbook/v1"
	"github.com/oklog/ulid/v2"
)

// TradePayload is the wire form of one executed trade. TradeID is a ULID so
// downstream consumers can deduplicate replayed events.
type TradePayload struct {
	TradeID      string    `json:"tradeID"`
	Pair         string    `json:"pair"`
	MakerOrderID uint64    `json:"makerOrderID"`
	MakerUserID  uint64    `json:"makerUserID"`
	TakerOrderID uint64    `json:"takerOrderID"`
	TakerUserID  uint64    `json:"takerUserID"`
	Price        uint64    `json:"price"`
	Quantity     uint64    `json:"quantity"`
	Timestamp    time.Time `json:"timestamp"`
}

// CreateFromTrade builds a TradePayload from a trade event on the given pair.
func CreateFromTrade(pair string, trade orderbookv1.TradeEvent) *TradePayload {
	return &TradePayload{
		TradeID:      ulid.Make().String(),
		Pair:         pair,
		MakerOrderID: trade.MakerOrderID,
		MakerUserID:  trade.MakerUserID,
		TakerOrderID: trade.TakerOrderID,
		TakerUserID:  trade.TakerUserID,
		Price:        trade.Price,
		Quantity:     trade.Quantity,
		Timestamp:    time.Now().UTC(),
	}
}

// ToBytes converts the trade payload to a byte array.
func ToBytes(payload *TradePayload) []byte {
	buf, err := json.Marshal(payload)
	if err != nil {
		return nil
	}

	return buf
}

// FromBytes converts a byte array to a trade payload.
func FromBytes(data []byte) *TradePayload {
	var payload TradePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil
	}
	return &payload
}
