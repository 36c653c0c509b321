package design

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/georgemunganga/printa-apparel/internal/apperr"
	"github.com/georgemunganga/printa-apparel/internal/modules/pricing"
	"github.com/georgemunganga/printa-apparel/internal/modules/printarea"
	"github.com/georgemunganga/printa-apparel/internal/platform/logger"
	"github.com/georgemunganga/printa-apparel/internal/platform/metrics"
)

// Service defines the design lifecycle: editing, review and checkout gating.
type Service interface {
	// Create starts a draft with fees 0 and total equal to the base price.
	Create(ctx context.Context, actor Actor, req CreateRequest) (*Design, error)
	// Get returns a design with placements, comments and line items.
	Get(ctx context.Context, actor Actor, id string) (*Design, error)
	// Latest rehydrates the editor: the newest editable design of the caller
	// for productID, else the newest in any status, else nil.
	Latest(ctx context.Context, actor Actor, productID string) (*Design, error)
	ListMine(ctx context.Context, actor Actor) ([]*Design, error)
	Delete(ctx context.Context, actor Actor, id string) error

	SetPlacement(ctx context.Context, actor Actor, id string, req PlacementRequest) (*Placement, *Design, error)
	UpdatePlacementGeometry(ctx context.Context, actor Actor, id, side string, req GeometryRequest) (*Placement, error)
	RemovePlacement(ctx context.Context, actor Actor, id, side string) (*Design, error)

	Quantities(ctx context.Context, actor Actor, id string) (*QuantitiesView, error)
	SetQuantities(ctx context.Context, actor Actor, id string, req QuantitiesRequest) (*QuantitiesView, error)

	Submit(ctx context.Context, actor Actor, id string) (*Design, error)
	Approve(ctx context.Context, actor Actor, id, note string) (*Design, error)
	Reject(ctx context.Context, actor Actor, id, reason string) (*Design, error)
	RequestChanges(ctx context.Context, actor Actor, id, message string) (*Design, error)
	AddComment(ctx context.Context, actor Actor, id, body string) (*Comment, error)
	AdminList(ctx context.Context, actor Actor, status string) ([]*AdminSummary, error)

	// ForCheckout returns an approved design of the caller with its line
	// items, failing with EmptyCart when no quantity is set.
	ForCheckout(ctx context.Context, actor Actor, id string) (*Design, []*LineItem, error)
	// MarkOrdered moves an approved design to ordered. Already ordered
	// designs are left as they are.
	MarkOrdered(ctx context.Context, id uuid.UUID) error
}

// ProductLookup resolves the catalog base price of a product by id or slug.
type ProductLookup interface {
	BasePrice(ctx context.Context, productID string) (price int64, found bool, err error)
}

// ColorCheck reports whether a color id is offered.
type ColorCheck func(color string) bool

type service struct {
	repo     Repository
	catalog  *printarea.Catalog
	products ProductLookup
	colorOK  ColorCheck
	now      func() time.Time
}

// NewService creates a design service. products and colorOK may be nil.
func NewService(repo Repository, catalog *printarea.Catalog, products ProductLookup, colorOK ColorCheck) Service {
	return &service{repo: repo, catalog: catalog, products: products, colorOK: colorOK, now: time.Now}
}

func (s *service) Create(ctx context.Context, actor Actor, req CreateRequest) (*Design, error) {
	if actor.UserID == "" {
		return nil, apperr.ErrUnauthorized
	}
	productID := strings.TrimSpace(req.ProductID)
	if productID == "" {
		return nil, apperr.Invalid("productId is required")
	}
	color := strings.ToLower(strings.TrimSpace(req.Color))
	if color != "" && s.colorOK != nil && !s.colorOK(color) {
		return nil, apperr.Invalid("unknown color %q", req.Color)
	}

	base, err := s.basePrice(ctx, productID, req.BasePrice)
	if err != nil {
		return nil, err
	}

	userID := actor.UserID
	d := &Design{
		ID:         uuid.New(),
		UserID:     &userID,
		ProductID:  productID,
		VariantSKU: strings.TrimSpace(req.VariantSKU),
		Color:      color,
		Status:     StatusDraft,
		PrintSpec:  json.RawMessage(`{}`),
	}
	d.setTotals(pricing.Totals{Base: base, Fees: 0, Total: base})

	if err := s.repo.Create(ctx, d); err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("design created", "design_id", d.ID, "product_id", productID)
	return d, nil
}

// basePrice prefers the catalog price; a client price is only accepted for
// products the catalog does not know.
func (s *service) basePrice(ctx context.Context, productID string, requested *int64) (int64, error) {
	if s.products != nil {
		price, found, err := s.products.BasePrice(ctx, productID)
		if err != nil {
			return 0, err
		}
		if found {
			return price, nil
		}
	}
	if requested == nil {
		return 0, apperr.Invalid("basePrice is required")
	}
	if *requested < 0 {
		return 0, apperr.Invalid("basePrice must not be negative")
	}
	return *requested, nil
}

func (s *service) Get(ctx context.Context, actor Actor, id string) (*Design, error) {
	uid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	d, err := s.repo.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	if err := ownerOrAdmin(actor, d); err != nil {
		return nil, err
	}
	return d, s.loadChildren(ctx, s.repo, d)
}

func (s *service) Latest(ctx context.Context, actor Actor, productID string) (*Design, error) {
	if actor.UserID == "" {
		return nil, apperr.ErrUnauthorized
	}
	if productID == "" {
		return nil, apperr.Invalid("productId is required")
	}
	d, err := s.repo.LatestForUser(ctx, actor.UserID, productID, editableStatuses)
	if isNotFound(err) {
		d, err = s.repo.LatestForUser(ctx, actor.UserID, productID, nil)
	}
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return d, s.loadChildren(ctx, s.repo, d)
}

func (s *service) ListMine(ctx context.Context, actor Actor) ([]*Design, error) {
	if actor.UserID == "" {
		return nil, apperr.ErrUnauthorized
	}
	return s.repo.ListByUser(ctx, actor.UserID)
}

func (s *service) Delete(ctx context.Context, actor Actor, id string) error {
	uid, err := parseID(id)
	if err != nil {
		return err
	}
	return s.repo.InTx(ctx, func(tx Repository) error {
		d, err := tx.GetForUpdate(ctx, uid)
		if err != nil {
			return err
		}
		if !actor.owns(d) {
			return apperr.ErrForbidden
		}
		if !d.Status.Deletable() {
			return fmt.Errorf("%w: status is %s", apperr.ErrUndeletable, d.Status)
		}
		return tx.Delete(ctx, uid)
	})
}

// ── placements ───────────────────────────────────────────────────────────────

func (s *service) SetPlacement(ctx context.Context, actor Actor, id string, req PlacementRequest) (*Placement, *Design, error) {
	uid, err := parseID(id)
	if err != nil {
		return nil, nil, err
	}
	area, err := s.catalog.Lookup(req.AreaID)
	if err != nil {
		return nil, nil, err
	}
	if req.Side != "" && printarea.Side(req.Side) != area.Side {
		return nil, nil, fmt.Errorf("%w: %s is a %s area, not %s",
			apperr.ErrSideAreaMismatch, area.ID, area.Side, req.Side)
	}
	if err := validatePlacement(req); err != nil {
		return nil, nil, err
	}

	p := &Placement{
		ID:       uuid.New(),
		DesignID: uid,
		Side:     area.Side,
		AreaID:   area.ID,
		AssetID:  req.AssetID,
		URL:      req.URL,
		WidthPx:  req.WidthPx,
		HeightPx: req.HeightPx,
		DPI:      req.DPI,
		Geometry: DefaultGeometry,
	}

	var design *Design
	err = s.repo.InTx(ctx, func(tx Repository) error {
		d, err := s.lockEditable(ctx, tx, actor, uid)
		if err != nil {
			return err
		}
		if err := tx.UpsertPlacement(ctx, p); err != nil {
			return err
		}
		design, err = s.reprice(ctx, tx, d)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	metrics.PlacementWrites.WithLabelValues("upsert").Inc()
	return p, design, nil
}

func (s *service) UpdatePlacementGeometry(ctx context.Context, actor Actor, id, side string, req GeometryRequest) (*Placement, error) {
	uid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	sd, err := parseSide(side)
	if err != nil {
		return nil, err
	}

	var out *Placement
	err = s.repo.InTx(ctx, func(tx Repository) error {
		if _, err := s.lockEditable(ctx, tx, actor, uid); err != nil {
			return err
		}
		current, err := findPlacement(ctx, tx, uid, sd)
		if err != nil {
			return err
		}
		g, err := applyGeometry(current.Geometry, req)
		if err != nil {
			return err
		}
		out, err = tx.UpdatePlacementGeometry(ctx, uid, sd, g)
		return err
	})
	if err != nil {
		return nil, err
	}
	metrics.PlacementWrites.WithLabelValues("geometry").Inc()
	return out, nil
}

func (s *service) RemovePlacement(ctx context.Context, actor Actor, id, side string) (*Design, error) {
	uid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	sd, err := parseSide(side)
	if err != nil {
		return nil, err
	}

	var design *Design
	err = s.repo.InTx(ctx, func(tx Repository) error {
		d, err := s.lockEditable(ctx, tx, actor, uid)
		if err != nil {
			return err
		}
		if err := tx.DeletePlacement(ctx, uid, sd); err != nil {
			return err
		}
		design, err = s.reprice(ctx, tx, d)
		return err
	})
	if err != nil {
		return nil, err
	}
	metrics.PlacementWrites.WithLabelValues("remove").Inc()
	return design, nil
}

// lockEditable locks the design and checks the caller may edit its artwork.
func (s *service) lockEditable(ctx context.Context, tx Repository, actor Actor, id uuid.UUID) (*Design, error) {
	d, err := tx.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.owns(d) {
		return nil, apperr.ErrForbidden
	}
	if !d.Status.PlacementsEditable() {
		return nil, fmt.Errorf("%w: placements are locked while %s", apperr.ErrInvalidState, d.Status)
	}
	return d, nil
}

// reprice recomputes fees from every stored placement of d and persists the
// snapshot. It must run in the transaction that changed the placements.
func (s *service) reprice(ctx context.Context, tx Repository, d *Design) (*Design, error) {
	placements, err := tx.ListPlacements(ctx, d.ID)
	if err != nil {
		return nil, err
	}
	areaIDs := make([]string, len(placements))
	for i, p := range placements {
		areaIDs[i] = p.AreaID
	}
	totals, err := pricing.ComputeDesignTotal(s.catalog, d.PricingBase, areaIDs)
	if err != nil {
		return nil, err
	}
	if err := tx.UpdatePricing(ctx, d.ID, totals); err != nil {
		return nil, err
	}
	d.setTotals(totals)
	d.Placements = placements
	d.UpdatedAt = s.now()
	return d, nil
}

func validatePlacement(req PlacementRequest) error {
	switch {
	case strings.TrimSpace(req.AssetID) == "":
		return apperr.Invalid("assetId is required")
	case strings.TrimSpace(req.URL) == "":
		return apperr.Invalid("url is required")
	case req.WidthPx <= 0 || req.HeightPx <= 0:
		return apperr.Invalid("widthPx and heightPx must be positive")
	case req.DPI != nil && *req.DPI <= 0:
		return apperr.Invalid("dpi must be positive")
	}
	return nil
}

func applyGeometry(g Geometry, req GeometryRequest) (Geometry, error) {
	if req.OffsetX != nil {
		g.OffsetX = *req.OffsetX
	}
	if req.OffsetY != nil {
		g.OffsetY = *req.OffsetY
	}
	if req.Scale != nil {
		g.Scale = *req.Scale
	}
	if req.Rotation != nil {
		g.Rotation = *req.Rotation
	}
	switch {
	case g.OffsetX < 0 || g.OffsetX > 1 || g.OffsetY < 0 || g.OffsetY > 1:
		return g, apperr.Invalid("offsets must be within [0,1]")
	case g.Scale <= 0 || g.Scale > 1:
		return g, apperr.Invalid("scale must be within (0,1]")
	case g.Rotation < -180 || g.Rotation > 180:
		return g, apperr.Invalid("rotation must be within [-180,180]")
	}
	return g, nil
}

func findPlacement(ctx context.Context, repo Repository, designID uuid.UUID, side printarea.Side) (*Placement, error) {
	placements, err := repo.ListPlacements(ctx, designID)
	if err != nil {
		return nil, err
	}
	for _, p := range placements {
		if p.Side == side {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: no %s placement", apperr.ErrNotFound, side)
}

// ── quantities ───────────────────────────────────────────────────────────────

func (s *service) Quantities(ctx context.Context, actor Actor, id string) (*QuantitiesView, error) {
	uid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	d, err := s.repo.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	if err := ownerOrAdmin(actor, d); err != nil {
		return nil, err
	}
	items, err := s.repo.ListLineItems(ctx, uid)
	if err != nil {
		return nil, err
	}
	return quantitiesView(d.PricingBase, items), nil
}

func (s *service) SetQuantities(ctx context.Context, actor Actor, id string, req QuantitiesRequest) (*QuantitiesView, error) {
	uid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	if actor.UserID == "" {
		return nil, apperr.ErrUnauthorized
	}

	var view *QuantitiesView
	err = s.repo.InTx(ctx, func(tx Repository) error {
		d, err := tx.GetForUpdate(ctx, uid)
		if err != nil {
			return err
		}
		if err := ownerOrAdmin(actor, d); err != nil {
			return err
		}
		if !d.Status.QuantitiesEditable() {
			return fmt.Errorf("%w: quantities can only be set when approved (current: %s)",
				apperr.ErrInvalidState, d.Status)
		}
		q, err := requestedQuantities(req)
		if err != nil {
			return err
		}

		var zero []pricing.Size
		for _, size := range pricing.SizeOrder {
			if q[size] == 0 {
				zero = append(zero, size)
			}
		}
		if err := tx.DeleteLineItems(ctx, uid, zero); err != nil {
			return err
		}
		for _, draft := range pricing.BuildLineItems(d.PricingBase, d.VariantSKU, q) {
			li := &LineItem{
				ID:         uuid.New(),
				DesignID:   uid,
				Size:       draft.Size,
				VariantSKU: draft.VariantSKU,
				Qty:        draft.Qty,
				UnitPrice:  draft.UnitPrice,
				Surcharge:  draft.Surcharge,
			}
			if err := tx.UpsertLineItem(ctx, li); err != nil {
				return err
			}
		}

		items, err := tx.ListLineItems(ctx, uid)
		if err != nil {
			return err
		}
		view = quantitiesView(d.PricingBase, items)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// requestedQuantities normalises either request form through the same rules.
// Item sizes are map keys, so they must be exact codes and appear once.
func requestedQuantities(req QuantitiesRequest) (pricing.Quantities, error) {
	switch {
	case req.Quantities != nil:
		return pricing.NormalizeQuantities(req.Quantities)
	case req.Items != nil:
		raw := make(map[string]any, len(req.Items))
		for _, it := range req.Items {
			if _, dup := raw[it.Size]; dup {
				return nil, fmt.Errorf("%w: size %q listed more than once", apperr.ErrInvalidQuantity, it.Size)
			}
			raw[it.Size] = it.Qty
		}
		return pricing.NormalizeQuantities(raw)
	default:
		return nil, apperr.Invalid(`provide either "quantities" map or "items" array`)
	}
}

func quantitiesView(base int64, items []*LineItem) *QuantitiesView {
	if items == nil {
		items = []*LineItem{}
	}
	q := pricing.EmptyQuantities()
	for _, li := range items {
		q[li.Size] = li.Qty
	}
	return &QuantitiesView{Quantities: q, Items: items, Summary: pricing.Summarize(base, q)}
}

// ── review workflow ──────────────────────────────────────────────────────────

type submissionSnapshot struct {
	Placements  []*Placement   `json:"placements"`
	Pricing     pricing.Totals `json:"pricing"`
	Color       string         `json:"color,omitempty"`
	SubmittedAt time.Time      `json:"submittedAt"`
}

func (s *service) Submit(ctx context.Context, actor Actor, id string) (*Design, error) {
	uid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var design *Design
	var from Status
	err = s.repo.InTx(ctx, func(tx Repository) error {
		d, err := tx.GetForUpdate(ctx, uid)
		if err != nil {
			return err
		}
		if !actor.owns(d) {
			return apperr.ErrForbidden
		}
		if !CanTransition(d.Status, StatusSubmitted) {
			return fmt.Errorf("%w: cannot submit a %s design", apperr.ErrInvalidState, d.Status)
		}
		placements, err := tx.ListPlacements(ctx, uid)
		if err != nil {
			return err
		}
		if len(placements) == 0 {
			return apperr.ErrEmptyDesign
		}

		at := s.now().UTC()
		snapshot, err := json.Marshal(submissionSnapshot{
			Placements:  placements,
			Pricing:     d.Totals(),
			Color:       d.Color,
			SubmittedAt: at,
		})
		if err != nil {
			return err
		}
		if err := tx.MarkSubmitted(ctx, uid, snapshot, at); err != nil {
			return err
		}
		from = d.Status
		d.Status = StatusSubmitted
		d.SubmissionSnapshot = snapshot
		d.SubmittedAt = &at
		d.Placements = placements
		design = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.DesignTransitions.WithLabelValues(string(from), string(StatusSubmitted)).Inc()
	logger.FromContext(ctx).Info("design submitted", "design_id", uid)
	return design, nil
}

func (s *service) Approve(ctx context.Context, actor Actor, id, note string) (*Design, error) {
	return s.review(ctx, actor, id, StatusApproved, strings.TrimSpace(note))
}

func (s *service) Reject(ctx context.Context, actor Actor, id, reason string) (*Design, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperr.ErrMissingReason
	}
	return s.review(ctx, actor, id, StatusRejected, "Rejected: "+reason)
}

func (s *service) RequestChanges(ctx context.Context, actor Actor, id, message string) (*Design, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, fmt.Errorf("%w: message is required", apperr.ErrMissingReason)
	}
	return s.review(ctx, actor, id, StatusChangesRequested, message)
}

// review applies an admin decision to a submitted design. A non-empty
// comment is written in the same transaction as the status change: a failed
// comment insert fails the review and leaves the status unchanged.
func (s *service) review(ctx context.Context, actor Actor, id string, to Status, comment string) (*Design, error) {
	if !actor.Admin {
		return nil, apperr.ErrForbidden
	}
	uid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var design *Design
	var from Status
	err = s.repo.InTx(ctx, func(tx Repository) error {
		d, err := tx.GetForUpdate(ctx, uid)
		if err != nil {
			return err
		}
		if !CanTransition(d.Status, to) {
			return fmt.Errorf("%w: cannot move a %s design to %s", apperr.ErrInvalidState, d.Status, to)
		}
		if err := tx.UpdateStatus(ctx, uid, to); err != nil {
			return err
		}
		if comment != "" {
			c := &Comment{ID: uuid.New(), DesignID: uid, Author: AuthorAdmin, Body: comment}
			if err := tx.AddComment(ctx, c); err != nil {
				return err
			}
		}
		from = d.Status
		d.Status = to
		design = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.DesignTransitions.WithLabelValues(string(from), string(to)).Inc()
	logger.FromContext(ctx).Info("design reviewed", "design_id", uid, "status", to)
	return design, nil
}

func (s *service) AddComment(ctx context.Context, actor Actor, id, body string) (*Comment, error) {
	if !actor.Admin {
		return nil, apperr.ErrForbidden
	}
	uid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperr.Invalid("body is required")
	}
	if _, err := s.repo.Get(ctx, uid); err != nil {
		return nil, err
	}
	c := &Comment{ID: uuid.New(), DesignID: uid, Author: AuthorAdmin, Body: body}
	if err := s.repo.AddComment(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) AdminList(ctx context.Context, actor Actor, status string) ([]*AdminSummary, error) {
	if !actor.Admin {
		return nil, apperr.ErrForbidden
	}
	st := Status(status)
	if st != "" && !st.Valid() {
		return nil, apperr.Invalid("unknown status %q", status)
	}
	return s.repo.ListForAdmin(ctx, st)
}

// ── checkout hooks ───────────────────────────────────────────────────────────

func (s *service) ForCheckout(ctx context.Context, actor Actor, id string) (*Design, []*LineItem, error) {
	uid, err := parseID(id)
	if err != nil {
		return nil, nil, err
	}
	d, err := s.repo.Get(ctx, uid)
	if err != nil {
		return nil, nil, err
	}
	if !actor.owns(d) {
		return nil, nil, apperr.ErrForbidden
	}
	if d.Status != StatusApproved {
		return nil, nil, fmt.Errorf("%w: design must be approved before checkout (current: %s)",
			apperr.ErrInvalidState, d.Status)
	}
	items, err := s.repo.ListLineItems(ctx, uid)
	if err != nil {
		return nil, nil, err
	}
	total := 0
	for _, li := range items {
		total += li.Qty
	}
	if total <= 0 {
		return nil, nil, apperr.ErrEmptyCart
	}
	return d, items, nil
}

func (s *service) MarkOrdered(ctx context.Context, id uuid.UUID) error {
	var from Status
	err := s.repo.InTx(ctx, func(tx Repository) error {
		d, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		from = d.Status
		if d.Status == StatusOrdered {
			return nil
		}
		if !CanTransition(d.Status, StatusOrdered) {
			return fmt.Errorf("%w: cannot order a %s design", apperr.ErrInvalidState, d.Status)
		}
		return tx.UpdateStatus(ctx, id, StatusOrdered)
	})
	if err != nil {
		return err
	}
	if from != StatusOrdered {
		metrics.DesignTransitions.WithLabelValues(string(from), string(StatusOrdered)).Inc()
	}
	return nil
}

// ── helpers ──────────────────────────────────────────────────────────────────

func (s *service) loadChildren(ctx context.Context, repo Repository, d *Design) error {
	var err error
	if d.Placements, err = repo.ListPlacements(ctx, d.ID); err != nil {
		return err
	}
	if d.Comments, err = repo.ListComments(ctx, d.ID); err != nil {
		return err
	}
	d.LineItems, err = repo.ListLineItems(ctx, d.ID)
	return err
}

func ownerOrAdmin(actor Actor, d *Design) error {
	if actor.owns(d) || actor.Admin {
		return nil
	}
	if actor.UserID == "" {
		return apperr.ErrUnauthorized
	}
	return apperr.ErrForbidden
}

func parseID(id string) (uuid.UUID, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: design %q", apperr.ErrNotFound, id)
	}
	return uid, nil
}

func parseSide(side string) (printarea.Side, error) {
	sd := printarea.Side(side)
	if !sd.Valid() {
		return "", apperr.Invalid("unknown side %q", side)
	}
	return sd, nil
}

func isNotFound(err error) bool {
	return err != nil && errors.Is(err, apperr.ErrNotFound)
}
