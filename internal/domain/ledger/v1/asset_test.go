package ledgerv1

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewAsset(t *testing.T) {
	btc := NewAsset("BTC")

	assert.Equal(t, "BTC", btc.String())
	assert.False(t, btc.IsZero())
	assert.True(t, Asset{}.IsZero())
}

func TestAsset_Truncation(t *testing.T) {
	// Symbols longer than capacity are silently truncated; symbols that
	// share an 8-byte prefix therefore collide.
	long := NewAsset("VERYLONGTOKEN")

	assert.Equal(t, "VERYLONG", long.String())
	assert.Equal(t, NewAsset("VERYLONGCOIN"), long)
}

func TestAsset_MapKey(t *testing.T) {
	balances := map[Asset]uint64{
		NewAsset("BTC"):  1,
		NewAsset("USDT"): 2,
	}

	assert.Equal(t, uint64(1), balances[NewAsset("BTC")])
	assert.Equal(t, uint64(2), balances[NewAsset("USDT")])
	assert.NotEqual(t, NewAsset("BTC"), NewAsset("BTC2"))
}
