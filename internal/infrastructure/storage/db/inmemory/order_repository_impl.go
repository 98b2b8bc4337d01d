package inmemory

import (
	"context"

	"github.com/sunridge-network/settled/internal/core/domain"
)

type orderRepositoryImpl struct {
	store             *orderInmemoryStore
	maxOrdersPerOwner int
}

func newOrderRepositoryImpl(
	store *orderInmemoryStore, maxOrdersPerOwner int,
) domain.OrderRepository {
	return &orderRepositoryImpl{store, maxOrdersPerOwner}
}

func (r *orderRepositoryImpl) AddOrder(
	_ context.Context, order *domain.Order,
) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	if len(r.store.ordersByOwner[order.Owner]) >= r.maxOrdersPerOwner {
		return domain.ErrOrderCapacityExceeded
	}

	r.store.orders[order.Id] = *order
	r.store.ordersByOwner[order.Owner] = append(
		r.store.ordersByOwner[order.Owner], order.Id,
	)
	return nil
}

func (r *orderRepositoryImpl) GetOrder(
	_ context.Context, id string,
) (*domain.Order, error) {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	return r.getOrder(id)
}

func (r *orderRepositoryImpl) GetOrdersForOwner(
	_ context.Context, owner string,
) ([]domain.Order, error) {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	ids := r.store.ordersByOwner[owner]
	orders := make([]domain.Order, 0, len(ids))
	for _, id := range ids {
		if order, ok := r.store.orders[id]; ok {
			orders = append(orders, order)
		}
	}
	return orders, nil
}

func (r *orderRepositoryImpl) UpdateOrder(
	_ context.Context, id string,
	updateFn func(o *domain.Order) (*domain.Order, error),
) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	currentOrder, err := r.getOrder(id)
	if err != nil {
		return err
	}

	updatedOrder, err := updateFn(currentOrder)
	if err != nil {
		return err
	}

	r.store.orders[updatedOrder.Id] = *updatedOrder
	return nil
}

func (r *orderRepositoryImpl) DeleteOrder(_ context.Context, id string) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	order, ok := r.store.orders[id]
	if !ok {
		return domain.ErrOrderNotFound
	}

	delete(r.store.orders, id)
	r.removeOrderForOwner(order.Owner, id)
	return nil
}

func (r *orderRepositoryImpl) getOrder(id string) (*domain.Order, error) {
	order, ok := r.store.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return &order, nil
}

func (r *orderRepositoryImpl) removeOrderForOwner(owner, id string) {
	ids := r.store.ordersByOwner[owner]
	for i, v := range ids {
		if v == id {
			r.store.ordersByOwner[owner] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	if len(r.store.ordersByOwner[owner]) == 0 {
		delete(r.store.ordersByOwner, owner)
	}
}
