package order

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/georgemunganga/printa-apparel/internal/apperr"
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

const orderColumns = `id, customer_id, design_id, email, total, currency, status, payment_ref, created_at, updated_at`

// Create inserts the order and all its items inside a single transaction.
func (r *postgresRepo) Create(ctx context.Context, o *Order) error {
	return r.InTx(ctx, func(tx Repository) error {
		q := tx.(*postgresRepo).q
		err := q.QueryRowContext(ctx, `
			INSERT INTO orders (id, customer_id, design_id, email, total, currency, status, payment_ref)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
			RETURNING created_at, updated_at`,
			o.ID, o.CustomerID, o.DesignID, nullString(o.Email), o.Total, o.Currency, o.Status,
			nullString(o.PaymentRef),
		).Scan(&o.CreatedAt, &o.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert order: %w", apperr.FromDB(err))
		}

		for i, item := range o.Items {
			item.OrderID = o.ID
			err = q.QueryRowContext(ctx, `
				INSERT INTO order_items (id, order_id, name, sku, qty, unit_price, position)
				VALUES ($1,$2,$3,$4,$5,$6,$7)
				RETURNING created_at`,
				item.ID, o.ID, item.Name, item.SKU, item.Qty, item.UnitPrice, i,
			).Scan(&item.CreatedAt)
			if err != nil {
				return fmt.Errorf("insert order_item: %w", apperr.FromDB(err))
			}
		}
		return nil
	})
}

func (r *postgresRepo) Get(ctx context.Context, id uuid.UUID) (*Order, error) {
	return r.getWithItems(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, id)
}

func (r *postgresRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*Order, error) {
	return r.getWithItems(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1 FOR UPDATE`, id)
}

func (r *postgresRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*Order, error) {
	return r.queryOrders(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE customer_id=$1 ORDER BY created_at DESC`, customerID)
}

func (r *postgresRepo) List(ctx context.Context, status Status) ([]*Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders`
	var args []any
	if status != "" {
		query += ` WHERE status=$1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`
	return r.queryOrders(ctx, query, args...)
}

func (r *postgresRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	return r.exec(ctx, `UPDATE orders SET status=$1, updated_at=NOW() WHERE id=$2`, status, id)
}

func (r *postgresRepo) SetPaymentRef(ctx context.Context, id uuid.UUID, ref string) error {
	return r.exec(ctx, `UPDATE orders SET payment_ref=$1, updated_at=NOW() WHERE id=$2`, nullString(ref), id)
}

// ── helpers ──────────────────────────────────────────────────────────────────

func (r *postgresRepo) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return apperr.FromDB(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOrder(row scanner) (*Order, error) {
	o := &Order{}
	var email, ref sql.NullString
	err := row.Scan(&o.ID, &o.CustomerID, &o.DesignID, &email, &o.Total, &o.Currency,
		&o.Status, &ref, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, apperr.FromDB(err)
	}
	o.Email = email.String
	o.PaymentRef = ref.String
	return o, nil
}

func (r *postgresRepo) getWithItems(ctx context.Context, query string, id uuid.UUID) (*Order, error) {
	o, err := scanOrder(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, err
	}
	o.Items, err = r.listItems(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (r *postgresRepo) queryOrders(ctx context.Context, query string, args ...any) ([]*Order, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	orders := []*Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()
	for _, o := range orders {
		if o.Items, err = r.listItems(ctx, o.ID); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *postgresRepo) listItems(ctx context.Context, orderID uuid.UUID) ([]*Item, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, order_id, name, sku, qty, unit_price, created_at
		FROM order_items WHERE order_id=$1 ORDER BY position ASC`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []*Item{}
	for rows.Next() {
		item := &Item{}
		if err := rows.Scan(&item.ID, &item.OrderID, &item.Name, &item.SKU,
			&item.Qty, &item.UnitPrice, &item.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
