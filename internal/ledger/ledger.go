package ledger

import "main/internal/schema"

// Key identifies one position partition.
type Key struct {
	Instrument schema.Instrument
	Group      schema.Group
}

// Ledger tracks signed lot counts per (instrument, group) partition.
// Arithmetic stays in integer lots throughout; all mutation flows through
// Apply against fill events.
type Ledger struct {
	positions map[Key]schema.Volume
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{positions: make(map[Key]schema.Volume)}
}

// Apply adjusts a partition by the signed fill volume and returns the
// new partition value. Buys are positive, sells negative.
func (l *Ledger) Apply(instrument schema.Instrument, group schema.Group, side schema.Side, volume schema.Volume) schema.Volume {
	key := Key{Instrument: instrument, Group: group}
	current := l.positions[key]
	var next schema.Volume
	switch side {
	case schema.SideBuy:
		next = current + volume
	case schema.SideSell:
		next = current - volume
	default:
		next = current
	}
	l.positions[key] = next
	return next
}

// Position returns the current lot count for a partition.
func (l *Ledger) Position(instrument schema.Instrument, group schema.Group) schema.Volume {
	return l.positions[Key{Instrument: instrument, Group: group}]
}

// Net returns the net position for an instrument across all partitions.
func (l *Ledger) Net(instrument schema.Instrument) schema.Volume {
	var net schema.Volume
	for key, qty := range l.positions {
		if key.Instrument == instrument {
			net += qty
		}
	}
	return net
}

// Count returns the number of non-empty partitions.
func (l *Ledger) Count() int {
	return len(l.positions)
}
