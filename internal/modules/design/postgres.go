package design

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/georgemunganga/printa-apparel/internal/apperr"
	"github.com/georgemunganga/printa-apparel/internal/modules/pricing"
	"github.com/georgemunganga/printa-apparel/internal/modules/printarea"
	"github.com/georgemunganga/printa-apparel/internal/platform/database"
)

type postgresRepo struct {
	db *sql.DB // nil when bound to a transaction
	q  database.Querier
}

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db, q: db} }

func (r *postgresRepo) InTx(ctx context.Context, fn func(tx Repository) error) error {
	if r.db == nil {
		return fn(r)
	}
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		return fn(&postgresRepo{q: tx})
	})
}

const designColumns = `id, user_id, product_id, variant_sku, color, status,
	pricing_base, pricing_fees, pricing_total, print_spec, submission_snapshot,
	submitted_at, created_at, updated_at`

func (r *postgresRepo) Create(ctx context.Context, d *Design) error {
	spec := d.PrintSpec
	if len(spec) == 0 {
		spec = json.RawMessage(`{}`)
	}
	err := r.q.QueryRowContext(ctx, `
		INSERT INTO designs
		  (id, user_id, product_id, variant_sku, color, status, pricing_base, pricing_fees, pricing_total, print_spec)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING created_at, updated_at`,
		d.ID, d.UserID, d.ProductID, d.VariantSKU, d.Color, d.Status,
		d.PricingBase, d.PricingFees, d.PricingTotal, string(spec),
	).Scan(&d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert design: %w", apperr.FromDB(err))
	}
	d.PrintSpec = spec
	return nil
}

func (r *postgresRepo) Get(ctx context.Context, id uuid.UUID) (*Design, error) {
	return r.scanDesign(r.q.QueryRowContext(ctx,
		`SELECT `+designColumns+` FROM designs WHERE id=$1`, id))
}

func (r *postgresRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*Design, error) {
	return r.scanDesign(r.q.QueryRowContext(ctx,
		`SELECT `+designColumns+` FROM designs WHERE id=$1 FOR UPDATE`, id))
}

func (r *postgresRepo) LatestForUser(ctx context.Context, userID, productID string, statuses []Status) (*Design, error) {
	query := `SELECT ` + designColumns + ` FROM designs WHERE user_id=$1 AND product_id=$2`
	args := []any{userID, productID}
	if len(statuses) > 0 {
		query += ` AND status = ANY($3)`
		args = append(args, pq.Array(statusStrings(statuses)))
	}
	query += ` ORDER BY updated_at DESC LIMIT 1`
	return r.scanDesign(r.q.QueryRowContext(ctx, query, args...))
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID string) ([]*Design, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+designColumns+` FROM designs WHERE user_id=$1 ORDER BY updated_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	designs := []*Design{}
	for rows.Next() {
		d, err := scanDesignRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		designs = append(designs, d)
	}
	return designs, rows.Err()
}

func (r *postgresRepo) ListForAdmin(ctx context.Context, status Status) ([]*AdminSummary, error) {
	query := `
		SELECT d.id, d.product_id, d.variant_sku, d.user_id, d.status, d.pricing_total, d.updated_at,
		       (SELECT COUNT(*) FROM design_placements p WHERE p.design_id = d.id)
		FROM designs d`
	var args []any
	if status != "" {
		query += ` WHERE d.status=$1`
		args = append(args, status)
	}
	query += ` ORDER BY d.updated_at DESC`

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*AdminSummary{}
	byID := map[uuid.UUID]*AdminSummary{}
	var ids []string
	for rows.Next() {
		s := &AdminSummary{Comments: []*Comment{}}
		var userID sql.NullString
		if err := rows.Scan(&s.ID, &s.ProductID, &s.VariantSKU, &userID, &s.Status,
			&s.PricingTotal, &s.UpdatedAt, &s.PlacementsCount); err != nil {
			return nil, err
		}
		if userID.Valid {
			s.UserID = &userID.String
		}
		out = append(out, s)
		byID[s.ID] = s
		ids = append(ids, s.ID.String())
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return out, nil
	}

	crows, err := r.q.QueryContext(ctx, `
		SELECT id, design_id, author, body, created_at
		FROM design_comments WHERE design_id = ANY($1::uuid[])
		ORDER BY created_at ASC, id ASC`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer crows.Close()
	for crows.Next() {
		c := &Comment{}
		if err := crows.Scan(&c.ID, &c.DesignID, &c.Author, &c.Body, &c.CreatedAt); err != nil {
			return nil, err
		}
		if s, ok := byID[c.DesignID]; ok {
			s.Comments = append(s.Comments, c)
		}
	}
	return out, crows.Err()
}

func (r *postgresRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM designs WHERE id=$1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *postgresRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE designs SET status=$1, updated_at=NOW() WHERE id=$2`, status, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *postgresRepo) MarkSubmitted(ctx context.Context, id uuid.UUID, snapshot json.RawMessage, at time.Time) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE designs
		SET status=$1, submission_snapshot=$2, submitted_at=$3, updated_at=NOW()
		WHERE id=$4`,
		StatusSubmitted, string(snapshot), at, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *postgresRepo) UpdatePricing(ctx context.Context, id uuid.UUID, t pricing.Totals) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE designs SET pricing_base=$1, pricing_fees=$2, pricing_total=$3, updated_at=NOW()
		WHERE id=$4`, t.Base, t.Fees, t.Total, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// ── placements ───────────────────────────────────────────────────────────────

const placementColumns = `id, design_id, side, area_id, asset_id, url, width_px, height_px, dpi,
	offset_x, offset_y, scale, rotation, created_at, updated_at`

func (r *postgresRepo) UpsertPlacement(ctx context.Context, p *Placement) error {
	err := r.q.QueryRowContext(ctx, `
		INSERT INTO design_placements
		  (id, design_id, side, area_id, asset_id, url, width_px, height_px, dpi,
		   offset_x, offset_y, scale, rotation)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		ON CONFLICT (design_id, side) DO UPDATE SET
		  area_id=EXCLUDED.area_id, asset_id=EXCLUDED.asset_id, url=EXCLUDED.url,
		  width_px=EXCLUDED.width_px, height_px=EXCLUDED.height_px, dpi=EXCLUDED.dpi,
		  offset_x=EXCLUDED.offset_x, offset_y=EXCLUDED.offset_y,
		  scale=EXCLUDED.scale, rotation=EXCLUDED.rotation, updated_at=NOW()
		RETURNING id, created_at, updated_at`,
		p.ID, p.DesignID, p.Side, p.AreaID, p.AssetID, p.URL, p.WidthPx, p.HeightPx, p.DPI,
		p.OffsetX, p.OffsetY, p.Scale, p.Rotation,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert placement: %w", apperr.FromDB(err))
	}
	return nil
}

func (r *postgresRepo) UpdatePlacementGeometry(ctx context.Context, designID uuid.UUID, side printarea.Side, g Geometry) (*Placement, error) {
	return scanPlacement(r.q.QueryRowContext(ctx, `
		UPDATE design_placements
		SET offset_x=$1, offset_y=$2, scale=$3, rotation=$4, updated_at=NOW()
		WHERE design_id=$5 AND side=$6
		RETURNING `+placementColumns,
		g.OffsetX, g.OffsetY, g.Scale, g.Rotation, designID, side).Scan)
}

func (r *postgresRepo) DeletePlacement(ctx context.Context, designID uuid.UUID, side printarea.Side) error {
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM design_placements WHERE design_id=$1 AND side=$2`, designID, side)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *postgresRepo) ListPlacements(ctx context.Context, designID uuid.UUID) ([]*Placement, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+placementColumns+` FROM design_placements
		WHERE design_id=$1 ORDER BY created_at ASC`, designID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*Placement{}
	for rows.Next() {
		p, err := scanPlacement(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ── line items ───────────────────────────────────────────────────────────────

func (r *postgresRepo) ListLineItems(ctx context.Context, designID uuid.UUID) ([]*LineItem, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, design_id, size, variant_sku, qty, unit_price, surcharge, created_at, updated_at
		FROM design_line_items WHERE design_id=$1`, designID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*LineItem{}
	for rows.Next() {
		li := &LineItem{}
		if err := rows.Scan(&li.ID, &li.DesignID, &li.Size, &li.VariantSKU, &li.Qty,
			&li.UnitPrice, &li.Surcharge, &li.CreatedAt, &li.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, li)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Size.Index() < items[j].Size.Index() })
	return items, nil
}

func (r *postgresRepo) UpsertLineItem(ctx context.Context, li *LineItem) error {
	err := r.q.QueryRowContext(ctx, `
		INSERT INTO design_line_items (id, design_id, size, variant_sku, qty, unit_price, surcharge)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (design_id, size) DO UPDATE SET
		  variant_sku=EXCLUDED.variant_sku, qty=EXCLUDED.qty,
		  unit_price=EXCLUDED.unit_price, surcharge=EXCLUDED.surcharge, updated_at=NOW()
		RETURNING id, created_at, updated_at`,
		li.ID, li.DesignID, li.Size, li.VariantSKU, li.Qty, li.UnitPrice, li.Surcharge,
	).Scan(&li.ID, &li.CreatedAt, &li.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert line item: %w", apperr.FromDB(err))
	}
	return nil
}

func (r *postgresRepo) DeleteLineItems(ctx context.Context, designID uuid.UUID, sizes []pricing.Size) error {
	if len(sizes) == 0 {
		return nil
	}
	names := make([]string, len(sizes))
	for i, s := range sizes {
		names[i] = string(s)
	}
	_, err := r.q.ExecContext(ctx,
		`DELETE FROM design_line_items WHERE design_id=$1 AND size = ANY($2)`,
		designID, pq.Array(names))
	return err
}

// ── comments ─────────────────────────────────────────────────────────────────

func (r *postgresRepo) AddComment(ctx context.Context, c *Comment) error {
	err := r.q.QueryRowContext(ctx, `
		INSERT INTO design_comments (id, design_id, author, body)
		VALUES ($1,$2,$3,$4) RETURNING created_at`,
		c.ID, c.DesignID, c.Author, c.Body).Scan(&c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert comment: %w", apperr.FromDB(err))
	}
	return nil
}

func (r *postgresRepo) ListComments(ctx context.Context, designID uuid.UUID) ([]*Comment, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, design_id, author, body, created_at
		FROM design_comments WHERE design_id=$1 ORDER BY created_at ASC, id ASC`, designID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*Comment{}
	for rows.Next() {
		c := &Comment{}
		if err := rows.Scan(&c.ID, &c.DesignID, &c.Author, &c.Body, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ── helpers ──────────────────────────────────────────────────────────────────

func (r *postgresRepo) scanDesign(row *sql.Row) (*Design, error) {
	d, err := scanDesignRow(row.Scan)
	if err != nil {
		return nil, apperr.FromDB(err)
	}
	return d, nil
}

func scanDesignRow(scan func(...any) error) (*Design, error) {
	d := &Design{}
	var userID sql.NullString
	var spec, snapshot []byte
	var submittedAt sql.NullTime
	if err := scan(&d.ID, &userID, &d.ProductID, &d.VariantSKU, &d.Color, &d.Status,
		&d.PricingBase, &d.PricingFees, &d.PricingTotal, &spec, &snapshot,
		&submittedAt, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	if userID.Valid {
		d.UserID = &userID.String
	}
	d.PrintSpec = spec
	if len(snapshot) > 0 {
		d.SubmissionSnapshot = snapshot
	}
	if submittedAt.Valid {
		t := submittedAt.Time
		d.SubmittedAt = &t
	}
	return d, nil
}

func scanPlacement(scan func(...any) error) (*Placement, error) {
	p := &Placement{}
	var dpi sql.NullInt64
	if err := scan(&p.ID, &p.DesignID, &p.Side, &p.AreaID, &p.AssetID, &p.URL,
		&p.WidthPx, &p.HeightPx, &dpi, &p.OffsetX, &p.OffsetY, &p.Scale, &p.Rotation,
		&p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, apperr.FromDB(err)
	}
	if dpi.Valid {
		v := int(dpi.Int64)
		p.DPI = &v
	}
	return p, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func statusStrings(statuses []Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
