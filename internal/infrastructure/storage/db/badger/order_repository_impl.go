package dbbadger

import (
	"context"

	"github.com/sunridge-network/settled/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

type orderRepositoryImpl struct {
	store             *badgerhold.Store
	maxOrdersPerOwner int
}

func newOrderRepositoryImpl(
	store *badgerhold.Store, maxOrdersPerOwner int,
) domain.OrderRepository {
	return &orderRepositoryImpl{store, maxOrdersPerOwner}
}

func (r *orderRepositoryImpl) AddOrder(
	_ context.Context, order *domain.Order,
) error {
	count, err := r.store.Count(
		&domain.Order{}, badgerhold.Where("Owner").Eq(order.Owner),
	)
	if err != nil {
		return err
	}
	if int(count) >= r.maxOrdersPerOwner {
		return domain.ErrOrderCapacityExceeded
	}

	return r.store.Insert(order.Id, *order)
}

func (r *orderRepositoryImpl) GetOrder(
	_ context.Context, id string,
) (*domain.Order, error) {
	var order domain.Order
	if err := r.store.Get(id, &order); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *orderRepositoryImpl) GetOrdersForOwner(
	_ context.Context, owner string,
) ([]domain.Order, error) {
	var orders []domain.Order
	if err := r.store.Find(
		&orders, badgerhold.Where("Owner").Eq(owner),
	); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepositoryImpl) UpdateOrder(
	ctx context.Context, id string,
	updateFn func(o *domain.Order) (*domain.Order, error),
) error {
	currentOrder, err := r.GetOrder(ctx, id)
	if err != nil {
		return err
	}

	updatedOrder, err := updateFn(currentOrder)
	if err != nil {
		return err
	}

	return r.store.Update(updatedOrder.Id, *updatedOrder)
}

func (r *orderRepositoryImpl) DeleteOrder(_ context.Context, id string) error {
	if err := r.store.Delete(id, &domain.Order{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return domain.ErrOrderNotFound
		}
		return err
	}
	return nil
}
