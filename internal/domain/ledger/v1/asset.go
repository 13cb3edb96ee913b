package ledgerv1

// AssetCapacity is the fixed byte capacity of an asset symbol.
const AssetCapacity = 8

// Asset is a fixed-capacity asset symbol (e.g. "BTC", "USDT"), compared and
// hashed by exact byte content so it can be used directly as a map key. It is
// never an arithmetic quantity.
//
// Symbols longer than AssetCapacity bytes are silently truncated to stay wire
// compatible with existing data. Two long symbols sharing an 8-byte prefix
// collide after truncation, so callers must keep symbols within capacity.
type Asset [AssetCapacity]byte

// NewAsset builds an Asset from a symbol string, truncating at capacity.
func NewAsset(symbol string) Asset {
	var a Asset
	copy(a[:], symbol)
	return a
}

// String returns the symbol without trailing zero padding.
func (a Asset) String() string {
	for i, b := range a {
		if b == 0 {
			return string(a[:i])
		}
	}
	return string(a[:])
}

// IsZero reports whether the asset is the empty symbol.
func (a Asset) IsZero() bool {
	return a == Asset{}
}
