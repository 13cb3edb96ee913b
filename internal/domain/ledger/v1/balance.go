package ledgerv1

// Balance holds a user's funds for one asset, split into the spendable part
// and the part reserved against open orders or in-flight trades.
//
// Available+Frozen changes only through Deposit (increase) or Settle
// (decrease); Freeze and Unlock move value between the two halves and
// preserve the total.
type Balance struct {
	Available uint64 `json:"available"`
	Frozen    uint64 `json:"frozen"`
}

// Total returns Available+Frozen. The sum never overflows because every
// mutation that would push it past the uint64 range is rejected beforehand.
func (b Balance) Total() uint64 {
	return b.Available + b.Frozen
}
