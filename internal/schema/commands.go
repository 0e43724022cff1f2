package schema

// InsertOrder asks the exchange to insert an ETF limit order.
type InsertOrder struct {
	OrderID  uint64   `json:"orderId"`
	Side     Side     `json:"side"`
	Price    Price    `json:"price"`
	Volume   Volume   `json:"volume"`
	Lifespan Lifespan `json:"lifespan"`
}

// CancelOrder asks the exchange to cancel a resting order.
type CancelOrder struct {
	OrderID uint64 `json:"orderId"`
}

// HedgeOrder asks the exchange to execute a Future order immediately.
type HedgeOrder struct {
	OrderID uint64 `json:"orderId"`
	Side    Side   `json:"side"`
	Price   Price  `json:"price"`
	Volume  Volume `json:"volume"`
}

// Command is the outbound envelope written to the gateway. Exactly one
// field is set.
type Command struct {
	Insert *InsertOrder `json:"insert,omitempty"`
	Cancel *CancelOrder `json:"cancel,omitempty"`
	Hedge  *HedgeOrder  `json:"hedge,omitempty"`
}
