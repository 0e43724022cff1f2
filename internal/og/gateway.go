package og

import "main/internal/schema"

// Gateway is the outbound command surface of the exchange gateway. The
// gateway performs all network I/O outside the engine's event handlers;
// acknowledgments arrive later as ordinary inbound events.
type Gateway interface {
	SendInsertOrder(cmd schema.InsertOrder) error
	SendCancelOrder(cmd schema.CancelOrder) error
	SendHedgeOrder(cmd schema.HedgeOrder) error
}

// Loopback records outbound commands without sending them anywhere.
// Used by replay mode and by tests asserting command sequences.
type Loopback struct {
	Inserts []schema.InsertOrder
	Cancels []schema.CancelOrder
	Hedges  []schema.HedgeOrder
}

// NewLoopback creates an empty loopback gateway.
func NewLoopback() *Loopback {
	return &Loopback{}
}

func (l *Loopback) SendInsertOrder(cmd schema.InsertOrder) error {
	l.Inserts = append(l.Inserts, cmd)
	return nil
}

func (l *Loopback) SendCancelOrder(cmd schema.CancelOrder) error {
	l.Cancels = append(l.Cancels, cmd)
	return nil
}

func (l *Loopback) SendHedgeOrder(cmd schema.HedgeOrder) error {
	l.Hedges = append(l.Hedges, cmd)
	return nil
}

// Reset clears all recorded commands.
func (l *Loopback) Reset() {
	l.Inserts = l.Inserts[:0]
	l.Cancels = l.Cancels[:0]
	l.Hedges = l.Hedges[:0]
}
