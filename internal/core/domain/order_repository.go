package domain

import "context"

// OrderRepository defines the storage of order records along with a
// bounded owner -> open order ids index that must be kept consistent with
// every mutation.
type OrderRepository interface {
	// AddOrder persists a new order. It returns ErrOrderCapacityExceeded
	// when the owner's open-order index is at its bound.
	AddOrder(ctx context.Context, order *Order) error
	// GetOrder returns the order with the given id or ErrOrderNotFound.
	GetOrder(ctx context.Context, id string) (*Order, error)
	// GetOrdersForOwner returns the open orders of the given owner.
	GetOrdersForOwner(ctx context.Context, owner string) ([]Order, error)
	// UpdateOrder applies updateFn to the stored order all-or-nothing.
	// It returns ErrOrderNotFound if the id is unknown.
	UpdateOrder(
		ctx context.Context, id string,
		updateFn func(o *Order) (*Order, error),
	) error
	// DeleteOrder removes the order and its owner-index entry. Deleting an
	// unknown id returns ErrOrderNotFound, a caller asking to delete twice
	// has violated its contract and must hear about it.
	DeleteOrder(ctx context.Context, id string) error
}
