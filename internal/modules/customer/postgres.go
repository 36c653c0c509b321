package customer

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/georgemunganga/printa-apparel/internal/apperr"
	"github.com/georgemunganga/printa-apparel/internal/platform/database"
)

type postgresRepository struct {
	db *sql.DB // nil inside a transaction
	q  database.Querier
}

// NewPostgresRepository creates a new PostgreSQL customer repository.
func NewPostgresRepository(db *sql.DB) Repository {
	return &postgresRepository{db: db, q: db}
}

func (r *postgresRepository) InTx(ctx context.Context, fn func(tx Repository) error) error {
	if r.db == nil {
		return fn(r)
	}
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		return fn(&postgresRepository{q: tx})
	})
}

func (r *postgresRepository) GetByExternalID(ctx context.Context, externalID string) (*Customer, error) {
	c := &Customer{}
	err := r.q.QueryRowContext(ctx, `
		SELECT id, external_id, email, name, role, created_at, updated_at
		FROM customers
		WHERE external_id = $1`, externalID,
	).Scan(&c.ID, &c.ExternalID, &c.Email, &c.Name, &c.Role, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, apperr.FromDB(err)
	}
	return c, nil
}

func (r *postgresRepository) Count(ctx context.Context) (int64, error) {
	if r.db == nil {
		if _, err := r.q.ExecContext(ctx, `LOCK TABLE customers IN SHARE ROW EXCLUSIVE MODE`); err != nil {
			return 0, fmt.Errorf("lock customers: %w", err)
		}
	}
	var n int64
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM customers`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *postgresRepository) Create(ctx context.Context, c *Customer) error {
	err := r.q.QueryRowContext(ctx, `
		INSERT INTO customers (id, external_id, email, name, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`,
		c.ID, c.ExternalID, c.Email, c.Name, c.Role,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create customer: %w", apperr.FromDB(err))
	}
	return nil
}

func (r *postgresRepository) UpdateProfile(ctx context.Context, c *Customer) error {
	err := r.q.QueryRowContext(ctx, `
		UPDATE customers
		SET email = $1, name = COALESCE($2, name), updated_at = NOW()
		WHERE id = $3
		RETURNING name, updated_at`,
		c.Email, c.Name, c.ID,
	).Scan(&c.Name, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update customer: %w", apperr.FromDB(err))
	}
	return nil
}

func (r *postgresRepository) UpdateRole(ctx context.Context, id uuid.UUID, role Role) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE customers SET role = $1, updated_at = NOW() WHERE id = $2`, role, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *postgresRepository) DeleteByExternalID(ctx context.Context, externalID string) (bool, error) {
	res, err := r.q.ExecContext(ctx, `DELETE FROM customers WHERE external_id = $1`, externalID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
