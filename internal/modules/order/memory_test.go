package order

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/georgemunganga/printa-apparel/internal/apperr"
)

// memRepo is an in-memory Repository. InTx restores the previous state when
// fn fails.
type memRepo struct {
	orders map[uuid.UUID]Order
	clock  time.Time
	inTx   bool
}

func newMemRepo() *memRepo {
	return &memRepo{orders: map[uuid.UUID]Order{}, clock: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
}

func (m *memRepo) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *memRepo) InTx(_ context.Context, fn func(tx Repository) error) error {
	saved := make(map[uuid.UUID]Order, len(m.orders))
	for k, v := range m.orders {
		saved[k] = v
	}
	m.inTx = true
	defer func() { m.inTx = false }()
	if err := fn(m); err != nil {
		m.orders = saved
		return err
	}
	return nil
}

func (m *memRepo) Create(_ context.Context, o *Order) error {
	if _, ok := m.orders[o.ID]; ok {
		return apperr.ErrAlreadyExists
	}
	now := m.tick()
	o.CreatedAt, o.UpdatedAt = now, now
	items := make([]*Item, len(o.Items))
	for i, it := range o.Items {
		it.OrderID = o.ID
		it.CreatedAt = now
		cp := *it
		items[i] = &cp
	}
	stored := *o
	stored.Items = items
	m.orders[o.ID] = stored
	return nil
}

func (m *memRepo) Get(_ context.Context, id uuid.UUID) (*Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return &o, nil
}

func (m *memRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*Order, error) {
	return m.Get(ctx, id)
}

func (m *memRepo) ListByCustomer(_ context.Context, customerID uuid.UUID) ([]*Order, error) {
	return m.filter(func(o Order) bool { return o.CustomerID != nil && *o.CustomerID == customerID }), nil
}

func (m *memRepo) List(_ context.Context, status Status) ([]*Order, error) {
	return m.filter(func(o Order) bool { return status == "" || o.Status == status }), nil
}

func (m *memRepo) filter(keep func(Order) bool) []*Order {
	out := []*Order{}
	for _, o := range m.orders {
		if keep(o) {
			cp := o
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *memRepo) UpdateStatus(_ context.Context, id uuid.UUID, status Status) error {
	o, ok := m.orders[id]
	if !ok {
		return apperr.ErrNotFound
	}
	o.Status = status
	o.UpdatedAt = m.tick()
	m.orders[id] = o
	return nil
}

func (m *memRepo) SetPaymentRef(_ context.Context, id uuid.UUID, ref string) error {
	o, ok := m.orders[id]
	if !ok {
		return apperr.ErrNotFound
	}
	o.PaymentRef = ref
	m.orders[id] = o
	return nil
}
