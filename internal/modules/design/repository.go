package design

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/georgemunganga/printa-apparel/internal/modules/pricing"
	"github.com/georgemunganga/printa-apparel/internal/modules/printarea"
)

// Repository defines data access for designs and their children. Lookups of
// missing rows return apperr.ErrNotFound.
type Repository interface {
	// InTx runs fn against a repository bound to one transaction.
	InTx(ctx context.Context, fn func(tx Repository) error) error

	Create(ctx context.Context, d *Design) error
	Get(ctx context.Context, id uuid.UUID) (*Design, error)
	// GetForUpdate locks the design row until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*Design, error)
	// LatestForUser returns the most recently updated design of the user for
	// the product, restricted to statuses when non-empty.
	LatestForUser(ctx context.Context, userID, productID string, statuses []Status) (*Design, error)
	ListByUser(ctx context.Context, userID string) ([]*Design, error)
	ListForAdmin(ctx context.Context, status Status) ([]*AdminSummary, error)
	Delete(ctx context.Context, id uuid.UUID) error

	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
	// MarkSubmitted moves the design to submitted and stores its snapshot.
	MarkSubmitted(ctx context.Context, id uuid.UUID, snapshot json.RawMessage, at time.Time) error
	UpdatePricing(ctx context.Context, id uuid.UUID, totals pricing.Totals) error

	// UpsertPlacement inserts or replaces the placement for (DesignID, Side).
	// A replaced row keeps its id and gets p's area, asset and DefaultGeometry.
	UpsertPlacement(ctx context.Context, p *Placement) error
	UpdatePlacementGeometry(ctx context.Context, designID uuid.UUID, side printarea.Side, g Geometry) (*Placement, error)
	DeletePlacement(ctx context.Context, designID uuid.UUID, side printarea.Side) error
	ListPlacements(ctx context.Context, designID uuid.UUID) ([]*Placement, error)

	ListLineItems(ctx context.Context, designID uuid.UUID) ([]*LineItem, error)
	// UpsertLineItem inserts or replaces the row for (DesignID, Size).
	UpsertLineItem(ctx context.Context, li *LineItem) error
	DeleteLineItems(ctx context.Context, designID uuid.UUID, sizes []pricing.Size) error

	AddComment(ctx context.Context, c *Comment) error
	ListComments(ctx context.Context, designID uuid.UUID) ([]*Comment, error)
}
