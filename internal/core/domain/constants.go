package domain

const (
	// OrderStatusCodePending is the initial status of every order.
	OrderStatusCodePending = iota
	// OrderStatusCodePartiallyFilled marks an order with at least one fill
	// that did not exhaust its capacity.
	OrderStatusCodePartiallyFilled
	// OrderStatusCodeCompleted is the terminal status, the order record is
	// removed right after reaching it.
	OrderStatusCodeCompleted
)

const (
	// OrderKindMarket identifies one-shot orders that are finalized by any
	// fill, even a partial one.
	OrderKindMarket = iota
	// OrderKindLimit identifies orders that can stay partially filled
	// across many settlements.
	OrderKindLimit
)

const (
	// MaxSunrisePools is the capacity of the sunrise pool collection.
	MaxSunrisePools = 6
	// MaxSlippageBps caps the slippage tolerance of an order to 100%.
	MaxSlippageBps = 10000
)

var (
	// OrderStatusPending ...
	OrderStatusPending = OrderStatus{Code: OrderStatusCodePending}
	// OrderStatusPartiallyFilled ...
	OrderStatusPartiallyFilled = OrderStatus{Code: OrderStatusCodePartiallyFilled}
	// OrderStatusCompleted ...
	OrderStatusCompleted = OrderStatus{Code: OrderStatusCodeCompleted}
)

func (s OrderStatus) String() string {
	switch s.Code {
	case OrderStatusCodeCompleted:
		return "completed"
	case OrderStatusCodePartiallyFilled:
		return "partially_filled"
	default:
		return "pending"
	}
}
