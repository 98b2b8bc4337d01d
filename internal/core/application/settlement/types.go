package settlement

import "github.com/sunridge-network/settled/internal/core/domain"

// CounterFill is a proposed fill of the primary order by a counter order.
// AmountOwnerReceives is expressed in the primary order's receiving asset,
// AmountCounterReceives in its sending asset.
type CounterFill struct {
	OrderId               string
	AmountOwnerReceives   uint64
	AmountCounterReceives uint64
}

// SettlementRecord is emitted for every participant of a committed
// settlement, for external consumption.
type SettlementRecord struct {
	OrderId        string
	Account        string
	Status         string
	AssetSent      string
	AmountSent     uint64
	AssetReceived  string
	AmountReceived uint64
	// Reference points back at the primary order of the settle request the
	// record originated from.
	Reference string
}

func statusString(status domain.OrderStatus) string {
	return status.String()
}
