package schema

// SchemaVersion is the current event schema version.
const SchemaVersion uint16 = 1

// EventType defines the category of an event delivered by the gateway.
type EventType uint16

const (
	EventUnknown EventType = iota
	EventOrderBook
	EventTradeTicks
	EventOrderFilled
	EventOrderStatus
	EventHedgeFilled
	EventError
)

// EventHeader is the common metadata attached to every event.
type EventHeader struct {
	Type    EventType `json:"type"`
	Version uint16    `json:"version"`
	Seq     uint64    `json:"seq"`
	TsEvent int64     `json:"tsEvent"`
	TsRecv  int64     `json:"tsRecv"`
}

// NewHeader builds a header with the current schema version.
func NewHeader(eventType EventType, seq uint64, tsEvent, tsRecv int64) EventHeader {
	return EventHeader{
		Type:    eventType,
		Version: SchemaVersion,
		Seq:     seq,
		TsEvent: tsEvent,
		TsRecv:  tsRecv,
	}
}

// Event is the unit passed through the bus and the journal. Exactly one
// payload pointer matching Header.Type is set.
type Event struct {
	Header EventHeader      `json:"header"`
	Book   *OrderBookUpdate `json:"book,omitempty"`
	Ticks  *TradeTicks      `json:"ticks,omitempty"`
	Filled *OrderFilled     `json:"filled,omitempty"`
	Status *OrderStatus     `json:"status,omitempty"`
	Hedge  *HedgeFilled     `json:"hedge,omitempty"`
	Err    *ErrorMessage    `json:"error,omitempty"`
}
