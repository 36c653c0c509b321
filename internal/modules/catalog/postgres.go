package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/georgemunganga/printa-apparel/internal/apperr"
	"github.com/georgemunganga/printa-apparel/internal/platform/database"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

const productColumns = `id, slug, name, description, base_price, currency, is_active, created_at, updated_at`

func scanProduct(scan func(...any) error) (*Product, error) {
	p := &Product{}
	err := scan(&p.ID, &p.Slug, &p.Name, &p.Description, &p.BasePrice,
		&p.Currency, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, apperr.FromDB(err)
	}
	return p, nil
}

func (r *postgresRepo) List(ctx context.Context, activeOnly bool) ([]*Product, error) {
	query := `SELECT ` + productColumns + ` FROM products`
	if activeOnly {
		query += ` WHERE is_active=true`
	}
	query += ` ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []*Product{}
	for rows.Next() {
		p, err := scanProduct(rows.Scan)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *postgresRepo) GetBySlug(ctx context.Context, slug string) (*Product, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE slug=$1`, slug)
	return scanProduct(row.Scan)
}

func (r *postgresRepo) GetByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1`, id)
	return scanProduct(row.Scan)
}

func (r *postgresRepo) ListVariants(ctx context.Context, productID uuid.UUID) ([]*Variant, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, product_id, sku, color, size, price, offer_price
		FROM product_variants WHERE product_id=$1 ORDER BY color ASC, sku ASC`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	variants := []*Variant{}
	for rows.Next() {
		v := &Variant{}
		if err := rows.Scan(&v.ID, &v.ProductID, &v.SKU, &v.Color, &v.Size, &v.Price, &v.OfferPrice); err != nil {
			return nil, err
		}
		variants = append(variants, v)
	}
	return variants, rows.Err()
}

func (r *postgresRepo) ListImages(ctx context.Context, productID uuid.UUID) ([]*Image, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, product_id, url, alt, tag, color, position
		FROM product_images WHERE product_id=$1 ORDER BY position ASC`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	images := []*Image{}
	for rows.Next() {
		img := &Image{}
		if err := rows.Scan(&img.ID, &img.ProductID, &img.URL, &img.Alt, &img.Tag, &img.Color, &img.Position); err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

func (r *postgresRepo) Replace(ctx context.Context, p *Product) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM products WHERE slug=$1`, p.Slug); err != nil {
			return fmt.Errorf("delete product: %w", err)
		}
		err := tx.QueryRowContext(ctx, `
			INSERT INTO products (id, slug, name, description, base_price, currency, is_active)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
			RETURNING created_at, updated_at`,
			p.ID, p.Slug, p.Name, p.Description, p.BasePrice, p.Currency, p.IsActive,
		).Scan(&p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert product: %w", apperr.FromDB(err))
		}

		for _, v := range p.Variants {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO product_variants (id, product_id, sku, color, size, price, offer_price)
				VALUES ($1,$2,$3,$4,$5,$6,$7)`,
				v.ID, p.ID, v.SKU, v.Color, v.Size, v.Price, v.OfferPrice)
			if err != nil {
				return fmt.Errorf("insert variant %s: %w", v.SKU, apperr.FromDB(err))
			}
		}
		for _, img := range p.Images {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO product_images (id, product_id, url, alt, tag, color, position)
				VALUES ($1,$2,$3,$4,$5,$6,$7)`,
				img.ID, p.ID, img.URL, img.Alt, img.Tag, img.Color, img.Position)
			if err != nil {
				return fmt.Errorf("insert image: %w", err)
			}
		}
		return nil
	})
}
