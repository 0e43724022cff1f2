package schema

// Price is an integer price in minor currency units (cents).
type Price int64

// Volume is an integer lot count.
type Volume int64

// Fee is a signed fee amount in minor currency units. Taker fees are
// positive, maker rebates negative.
type Fee int64

// TopLevels is the book depth reported by the exchange per side.
const TopLevels = 5

// Instrument identifies one of the two traded products.
type Instrument uint16

const (
	InstrumentFuture Instrument = iota
	InstrumentETF
	instrumentCount
)

// Valid reports whether the instrument is one of the known products.
func (i Instrument) Valid() bool {
	return i < instrumentCount
}

func (i Instrument) String() string {
	switch i {
	case InstrumentFuture:
		return "future"
	case InstrumentETF:
		return "etf"
	default:
		return "unknown"
	}
}

// Side describes order direction.
type Side uint16

const (
	SideUnknown Side = iota
	SideBuy
	SideSell
)

// Opposite returns the other trading direction.
func (s Side) Opposite() Side {
	switch s {
	case SideBuy:
		return SideSell
	case SideSell:
		return SideBuy
	default:
		return SideUnknown
	}
}

func (s Side) String() string {
	switch s {
	case SideBuy:
		return "buy"
	case SideSell:
		return "sell"
	default:
		return "unknown"
	}
}

// Lifespan describes order time-in-force.
type Lifespan uint16

const (
	LifespanUnknown Lifespan = iota
	LifespanFillAndKill
	LifespanGoodForDay
)

func (l Lifespan) String() string {
	switch l {
	case LifespanFillAndKill:
		return "fill_and_kill"
	case LifespanGoodForDay:
		return "good_for_day"
	default:
		return "unknown"
	}
}

// Strategy tags an order with its owning sub-strategy.
type Strategy uint16

const (
	StrategyUnknown Strategy = iota
	StrategyQuoteBid
	StrategyQuoteAsk
	StrategyArbBid
	StrategyArbAsk
	StrategyHedge
)

// Side returns the trading direction implied by the strategy tag.
// Hedge orders carry their own side and return SideUnknown here.
func (s Strategy) Side() Side {
	switch s {
	case StrategyQuoteBid, StrategyArbBid:
		return SideBuy
	case StrategyQuoteAsk, StrategyArbAsk:
		return SideSell
	default:
		return SideUnknown
	}
}

// IsHedge reports whether the strategy is the hedging leg.
func (s Strategy) IsHedge() bool {
	return s == StrategyHedge
}

// Group is the allowance partition a strategy accounts against.
type Group uint16

const (
	GroupUnknown Group = iota
	GroupQuote
	GroupArb
	GroupHedge
)

// Group returns the allowance partition of the strategy.
func (s Strategy) Group() Group {
	switch s {
	case StrategyQuoteBid, StrategyQuoteAsk:
		return GroupQuote
	case StrategyArbBid, StrategyArbAsk:
		return GroupArb
	case StrategyHedge:
		return GroupHedge
	default:
		return GroupUnknown
	}
}

func (s Strategy) String() string {
	switch s {
	case StrategyQuoteBid:
		return "quote_bid"
	case StrategyQuoteAsk:
		return "quote_ask"
	case StrategyArbBid:
		return "arb_bid"
	case StrategyArbAsk:
		return "arb_ask"
	case StrategyHedge:
		return "hedge"
	default:
		return "unknown"
	}
}

// OrderBookUpdate is the payload for EventOrderBook. Prices are reported
// best-first; unused depth slots carry zero price and volume.
type OrderBookUpdate struct {
	Instrument Instrument        `json:"instrument"`
	Seq        uint64            `json:"seq"`
	AskPrices  [TopLevels]Price  `json:"askPrices"`
	AskVolumes [TopLevels]Volume `json:"askVolumes"`
	BidPrices  [TopLevels]Price  `json:"bidPrices"`
	BidVolumes [TopLevels]Volume `json:"bidVolumes"`
}

// TradeTicks is the payload for EventTradeTicks: traded volume per recent
// price level, same shape as a book update.
type TradeTicks struct {
	Instrument Instrument        `json:"instrument"`
	Seq        uint64            `json:"seq"`
	AskPrices  [TopLevels]Price  `json:"askPrices"`
	AskVolumes [TopLevels]Volume `json:"askVolumes"`
	BidPrices  [TopLevels]Price  `json:"bidPrices"`
	BidVolumes [TopLevels]Volume `json:"bidVolumes"`
}

// OrderFilled is the payload for EventOrderFilled. The price may improve
// on the order's limit price.
type OrderFilled struct {
	OrderID uint64 `json:"orderId"`
	Price   Price  `json:"price"`
	Volume  Volume `json:"volume"`
}

// OrderStatus is the payload for EventOrderStatus. A remaining volume of
// zero marks terminal retirement regardless of cause.
type OrderStatus struct {
	OrderID         uint64 `json:"orderId"`
	FillVolume      Volume `json:"fillVolume"`
	RemainingVolume Volume `json:"remainingVolume"`
	Fees            Fee    `json:"fees"`
}

// HedgeFilled is the payload for EventHedgeFilled.
type HedgeFilled struct {
	OrderID uint64 `json:"orderId"`
	Price   Price  `json:"price"`
	Volume  Volume `json:"volume"`
}

// ErrorMessage is the payload for EventError. An order id of zero means
// the error is not tied to a particular order.
type ErrorMessage struct {
	OrderID uint64 `json:"orderId"`
	Message string `json:"message"`
}
