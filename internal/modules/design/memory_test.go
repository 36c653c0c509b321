package design

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/georgemunganga/printa-apparel/internal/apperr"
	"github.com/georgemunganga/printa-apparel/internal/modules/pricing"
	"github.com/georgemunganga/printa-apparel/internal/modules/printarea"
)

// memRepo is an in-memory Repository. InTx restores the previous state when
// fn fails, so tests can assert rollback behaviour.
type memRepo struct {
	designs    map[uuid.UUID]Design
	placements map[uuid.UUID]map[printarea.Side]Placement
	items      map[uuid.UUID]map[pricing.Size]LineItem
	comments   map[uuid.UUID][]Comment

	failComment error
	clock       time.Time
}

func newMemRepo() *memRepo {
	return &memRepo{
		designs:    map[uuid.UUID]Design{},
		placements: map[uuid.UUID]map[printarea.Side]Placement{},
		items:      map[uuid.UUID]map[pricing.Size]LineItem{},
		comments:   map[uuid.UUID][]Comment{},
		clock:      time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (m *memRepo) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

type memState struct {
	designs    map[uuid.UUID]Design
	placements map[uuid.UUID]map[printarea.Side]Placement
	items      map[uuid.UUID]map[pricing.Size]LineItem
	comments   map[uuid.UUID][]Comment
}

func (m *memRepo) snapshot() memState {
	s := memState{
		designs:    make(map[uuid.UUID]Design, len(m.designs)),
		placements: make(map[uuid.UUID]map[printarea.Side]Placement, len(m.placements)),
		items:      make(map[uuid.UUID]map[pricing.Size]LineItem, len(m.items)),
		comments:   make(map[uuid.UUID][]Comment, len(m.comments)),
	}
	for k, v := range m.designs {
		s.designs[k] = v
	}
	for k, v := range m.placements {
		inner := make(map[printarea.Side]Placement, len(v))
		for side, p := range v {
			inner[side] = p
		}
		s.placements[k] = inner
	}
	for k, v := range m.items {
		inner := make(map[pricing.Size]LineItem, len(v))
		for size, li := range v {
			inner[size] = li
		}
		s.items[k] = inner
	}
	for k, v := range m.comments {
		s.comments[k] = append([]Comment(nil), v...)
	}
	return s
}

func (m *memRepo) InTx(_ context.Context, fn func(tx Repository) error) error {
	saved := m.snapshot()
	if err := fn(m); err != nil {
		m.designs, m.placements, m.items, m.comments = saved.designs, saved.placements, saved.items, saved.comments
		return err
	}
	return nil
}

func (m *memRepo) Create(_ context.Context, d *Design) error {
	if _, ok := m.designs[d.ID]; ok {
		return apperr.ErrAlreadyExists
	}
	now := m.tick()
	d.CreatedAt, d.UpdatedAt = now, now
	stored := *d
	stored.Placements, stored.Comments, stored.LineItems = nil, nil, nil
	m.designs[d.ID] = stored
	return nil
}

func (m *memRepo) Get(_ context.Context, id uuid.UUID) (*Design, error) {
	d, ok := m.designs[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return &d, nil
}

func (m *memRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*Design, error) {
	return m.Get(ctx, id)
}

func (m *memRepo) LatestForUser(_ context.Context, userID, productID string, statuses []Status) (*Design, error) {
	var best *Design
	for _, d := range m.designs {
		if d.UserID == nil || *d.UserID != userID || d.ProductID != productID {
			continue
		}
		if len(statuses) > 0 && !containsStatus(statuses, d.Status) {
			continue
		}
		if best == nil || d.UpdatedAt.After(best.UpdatedAt) {
			d := d
			best = &d
		}
	}
	if best == nil {
		return nil, apperr.ErrNotFound
	}
	return best, nil
}

func (m *memRepo) ListByUser(_ context.Context, userID string) ([]*Design, error) {
	out := []*Design{}
	for _, d := range m.designs {
		if d.UserID != nil && *d.UserID == userID {
			d := d
			out = append(out, &d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (m *memRepo) ListForAdmin(_ context.Context, status Status) ([]*AdminSummary, error) {
	out := []*AdminSummary{}
	for _, d := range m.designs {
		if status != "" && d.Status != status {
			continue
		}
		comments, _ := m.ListComments(context.Background(), d.ID)
		out = append(out, &AdminSummary{
			ID:              d.ID,
			ProductID:       d.ProductID,
			VariantSKU:      d.VariantSKU,
			UserID:          d.UserID,
			Status:          d.Status,
			PricingTotal:    d.PricingTotal,
			PlacementsCount: len(m.placements[d.ID]),
			UpdatedAt:       d.UpdatedAt,
			Comments:        comments,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (m *memRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.designs[id]; !ok {
		return apperr.ErrNotFound
	}
	delete(m.designs, id)
	delete(m.placements, id)
	delete(m.items, id)
	delete(m.comments, id)
	return nil
}

func (m *memRepo) update(id uuid.UUID, fn func(d *Design)) error {
	d, ok := m.designs[id]
	if !ok {
		return apperr.ErrNotFound
	}
	fn(&d)
	d.UpdatedAt = m.tick()
	m.designs[id] = d
	return nil
}

func (m *memRepo) UpdateStatus(_ context.Context, id uuid.UUID, status Status) error {
	return m.update(id, func(d *Design) { d.Status = status })
}

func (m *memRepo) MarkSubmitted(_ context.Context, id uuid.UUID, snapshot json.RawMessage, at time.Time) error {
	return m.update(id, func(d *Design) {
		d.Status = StatusSubmitted
		d.SubmissionSnapshot = snapshot
		d.SubmittedAt = &at
	})
}

func (m *memRepo) UpdatePricing(_ context.Context, id uuid.UUID, t pricing.Totals) error {
	if t.Total != t.Base+t.Fees {
		return errors.New("pricing_total check violated")
	}
	return m.update(id, func(d *Design) { d.setTotals(t) })
}

func (m *memRepo) UpsertPlacement(_ context.Context, p *Placement) error {
	if _, ok := m.designs[p.DesignID]; !ok {
		return apperr.ErrNotFound
	}
	bySide := m.placements[p.DesignID]
	if bySide == nil {
		bySide = map[printarea.Side]Placement{}
		m.placements[p.DesignID] = bySide
	}
	now := m.tick()
	if existing, ok := bySide[p.Side]; ok {
		p.ID, p.CreatedAt = existing.ID, existing.CreatedAt
	} else {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	bySide[p.Side] = *p
	return nil
}

func (m *memRepo) UpdatePlacementGeometry(_ context.Context, designID uuid.UUID, side printarea.Side, g Geometry) (*Placement, error) {
	p, ok := m.placements[designID][side]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	p.Geometry = g
	p.UpdatedAt = m.tick()
	m.placements[designID][side] = p
	return &p, nil
}

func (m *memRepo) DeletePlacement(_ context.Context, designID uuid.UUID, side printarea.Side) error {
	if _, ok := m.placements[designID][side]; !ok {
		return apperr.ErrNotFound
	}
	delete(m.placements[designID], side)
	return nil
}

func (m *memRepo) ListPlacements(_ context.Context, designID uuid.UUID) ([]*Placement, error) {
	out := []*Placement{}
	for _, p := range m.placements[designID] {
		p := p
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *memRepo) ListLineItems(_ context.Context, designID uuid.UUID) ([]*LineItem, error) {
	out := []*LineItem{}
	for _, li := range m.items[designID] {
		li := li
		out = append(out, &li)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Size.Index() < out[j].Size.Index() })
	return out, nil
}

func (m *memRepo) UpsertLineItem(_ context.Context, li *LineItem) error {
	if li.Qty <= 0 {
		return errors.New("qty check violated")
	}
	bySize := m.items[li.DesignID]
	if bySize == nil {
		bySize = map[pricing.Size]LineItem{}
		m.items[li.DesignID] = bySize
	}
	now := m.tick()
	if existing, ok := bySize[li.Size]; ok {
		li.ID, li.CreatedAt = existing.ID, existing.CreatedAt
	} else {
		li.CreatedAt = now
	}
	li.UpdatedAt = now
	bySize[li.Size] = *li
	return nil
}

func (m *memRepo) DeleteLineItems(_ context.Context, designID uuid.UUID, sizes []pricing.Size) error {
	for _, s := range sizes {
		delete(m.items[designID], s)
	}
	return nil
}

func (m *memRepo) AddComment(_ context.Context, c *Comment) error {
	if m.failComment != nil {
		return m.failComment
	}
	c.CreatedAt = m.tick()
	m.comments[c.DesignID] = append(m.comments[c.DesignID], *c)
	return nil
}

func (m *memRepo) ListComments(_ context.Context, designID uuid.UUID) ([]*Comment, error) {
	out := []*Comment{}
	for _, c := range m.comments[designID] {
		c := c
		out = append(out, &c)
	}
	return out, nil
}

func containsStatus(list []Status, s Status) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
