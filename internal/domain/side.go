package domain

// Side represents the direction of a position or order (long or short).
type Side string

const (
	// SideBuy is the long side.
	SideBuy Side = "Buy"
	// SideSell is the short side.
	SideSell Side = "Sell"
)

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

// IsLong reports whether the side is the buy (long) side.
func (s Side) IsLong() bool { return s == SideBuy }

// IsShort reports whether the side is the sell (short) side.
func (s Side) IsShort() bool { return s == SideSell }

// IsValid reports whether the side is one of the two known values.
func (s Side) IsValid() bool { return s == SideBuy || s == SideSell }

// PnlSign returns +1 for a long side and −1 for a short side, the factor
// applied to (price − entryPrice) when computing PnL.
func (s Side) PnlSign() int64 {
	if s.IsLong() {
		return 1
	}
	return -1
}
