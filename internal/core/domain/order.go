package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/sunridge-network/settled/pkg/mathutil"
)

// OrderStatus represents the different statuses that an order can assume.
type OrderStatus struct {
	Code int
}

// Order is the data structure representing a swap order entity. An order
// escrows its full sending amount plus the fee on it at creation time and
// is mutated exclusively by the settlement engine.
type Order struct {
	Id               string
	Owner            string
	AssetFrom        string
	AssetTo          string
	AmountFrom       uint64
	AmountTo         uint64
	AmountFromFilled uint64
	AmountToFilled   uint64
	Status           OrderStatus
	Kind             int
	SlippageBps      uint32
	IsMarketMaker    bool
	CreatedAt        int64
}

// NewOrder returns a Pending order with a new id after validating the
// given asset pair, amounts and slippage tolerance. The market maker flag
// is frozen at creation time and affects the fee tier for the whole
// lifetime of the order.
func NewOrder(
	owner, assetFrom, assetTo string,
	amountFrom, amountTo uint64,
	kind int, slippageBps uint32, isMarketMaker bool,
) (*Order, error) {
	if assetFrom == assetTo {
		return nil, ErrOrderSameAsset
	}
	if amountFrom == 0 || amountTo == 0 {
		return nil, ErrOrderNullAmount
	}
	if slippageBps > MaxSlippageBps {
		return nil, ErrOrderInvalidSlippage
	}

	return &Order{
		Id:            uuid.New().String(),
		Owner:         owner,
		AssetFrom:     assetFrom,
		AssetTo:       assetTo,
		AmountFrom:    amountFrom,
		AmountTo:      amountTo,
		Status:        OrderStatusPending,
		Kind:          kind,
		SlippageBps:   slippageBps,
		IsMarketMaker: isMarketMaker,
		CreatedAt:     time.Now().Unix(),
	}, nil
}

// Fill adds the given amounts to the cumulative filled counters and moves
// the order to PartiallyFilled or Completed accordingly. The filled
// counters are strictly capped by the requested amounts, a fill pushing
// either of them past its cap returns ErrOverflow and leaves the order
// untouched.
func (o *Order) Fill(amountFrom, amountTo uint64) error {
	if !o.IsFillable() {
		return ErrOrderInvalidStatus
	}

	newFromFilled, err := mathutil.CheckedAdd(o.AmountFromFilled, amountFrom)
	if err != nil || newFromFilled > o.AmountFrom {
		return ErrOverflow
	}
	newToFilled, err := mathutil.CheckedAdd(o.AmountToFilled, amountTo)
	if err != nil || newToFilled > o.AmountTo {
		return ErrOverflow
	}

	o.AmountFromFilled = newFromFilled
	o.AmountToFilled = newToFilled
	if o.AmountFromFilled == o.AmountFrom {
		o.Status = OrderStatusCompleted
	} else {
		o.Status = OrderStatusPartiallyFilled
	}
	return nil
}

// NominalPrice returns the order's price as the exact AmountFrom/AmountTo
// ratio, ie. how much of the sending asset the owner pays for one unit of
// the receiving asset.
func (o *Order) NominalPrice() mathutil.Ratio {
	return mathutil.NewRatio(o.AmountFrom, o.AmountTo)
}

// RemainingFrom returns the unfilled portion of the sending leg.
func (o *Order) RemainingFrom() uint64 {
	return o.AmountFrom - o.AmountFromFilled
}

// RemainingTo returns the unfilled portion of the receiving leg.
func (o *Order) RemainingTo() uint64 {
	return o.AmountTo - o.AmountToFilled
}

// IsPending returns whether the order has no fills yet.
func (o *Order) IsPending() bool {
	return o.Status.Code == OrderStatusCodePending
}

// IsPartiallyFilled returns whether the order has fills but capacity left.
func (o *Order) IsPartiallyFilled() bool {
	return o.Status.Code == OrderStatusCodePartiallyFilled
}

// IsCompleted returns whether the order is fully filled.
func (o *Order) IsCompleted() bool {
	return o.Status.Code == OrderStatusCodeCompleted
}

// IsFillable returns whether the order can take part in a settlement.
func (o *Order) IsFillable() bool {
	return o.IsPending() || o.IsPartiallyFilled()
}

// IsMarket returns whether the order is finalized by any fill.
func (o *Order) IsMarket() bool {
	return o.Kind == OrderKindMarket
}

// IsLimit returns whether the order enforces its price floor and can stay
// partially filled across settlements.
func (o *Order) IsLimit() bool {
	return o.Kind == OrderKindLimit
}
