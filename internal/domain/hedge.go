package domain

// Hedge is a value object over a pair of opposite-side positions on the same
// symbol. The "main" position is the one carrying the larger exposure; the
// "support" position is the other side kept open to offset its risk.
type Hedge struct {
	main    *Position
	support *Position
}

// NewHedge pairs two opposite-side positions. The position with the larger
// notional value becomes the main one; on equal values the first argument
// wins, keeping the choice stable for repeated calls with the same pair.
func NewHedge(a, b *Position) *Hedge {
	if b.PositionValue().GreaterThan(a.PositionValue()) {
		return &Hedge{main: b, support: a}
	}
	return &Hedge{main: a, support: b}
}

// Main returns the position carrying the larger exposure.
func (h *Hedge) Main() *Position { return h.main }

// Support returns the offsetting position.
func (h *Hedge) Support() *Position { return h.support }

// MainOf picks the leading position from a stable-ordered list: the hedge's
// main position when the first position is hedged, otherwise the first
// position itself. Loss alerting and stop placement both rely on this rule
// so they always act on the same position.
func MainOf(positions []*Position) *Position {
	if len(positions) == 0 {
		return nil
	}
	first := positions[0]
	if hedge := first.Hedge(); hedge != nil {
		return hedge.Main()
	}
	return first
}
