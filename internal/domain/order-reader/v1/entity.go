package orderreaderv1

// RequestType represents the kind of order request delivered by the order stream.
type RequestType string

const (
	// RequestTypeLimit places a plain limit order.
	RequestTypeLimit RequestType = "limit"
	// RequestTypeCancel cancels a resting order by id.
	RequestTypeCancel RequestType = "cancel"
	// RequestTypeDeposit credits a user's available balance. Accounts must
	// be funded through the stream before their orders can pass the freeze.
	RequestTypeDeposit RequestType = "deposit"
)

// OrderRequest is one message from the order intake stream.
//
// Limit requests set everything except Asset; cancel requests carry only
// OrderID; deposit requests carry UserID, Asset and Quantity (the amount).
type OrderRequest struct {
	OrderID  uint64      `json:"orderID,omitempty"`
	UserID   uint64      `json:"userID,omitempty"`
	Type     RequestType `json:"type"`
	Bid      bool        `json:"bid,omitempty"`
	Price    uint64      `json:"price,omitempty"`
	Quantity uint64      `json:"quantity,omitempty"`
	Asset    string      `json:"asset,omitempty"`
	Offset   int64       `json:"-"` // Offset of the message in the stream
}
