package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/romeoalpha/admin/internal/model"
)

const marketplaceColumns = `id, title, description, category, COALESCE(price, ''), COALESCE(image_url, ''), created_at`

// PgMarketplaceRepository stores marketplace listings in PostgreSQL.
type PgMarketplaceRepository struct {
	db dbtx
}

// NewPgMarketplaceRepository creates a PgMarketplaceRepository backed by the given pool.
func NewPgMarketplaceRepository(db dbtx) *PgMarketplaceRepository {
	return &PgMarketplaceRepository{db: db}
}

func scanMarketplaceItem(row pgx.Row) (model.MarketplaceItem, error) {
	var it model.MarketplaceItem
	err := row.Scan(&it.ID, &it.Title, &it.Description, &it.Category, &it.Price, &it.ImageURL, &it.CreatedAt)
	return it, err
}

// ListMarketplaceItems returns every listing, newest first.
func (r *PgMarketplaceRepository) ListMarketplaceItems(ctx context.Context) ([]model.MarketplaceItem, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+marketplaceColumns+` FROM marketplace_items ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []model.MarketplaceItem{}
	for rows.Next() {
		it, err := scanMarketplaceItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// CreateMarketplaceItem inserts a listing; id and created_at come from the database.
func (r *PgMarketplaceRepository) CreateMarketplaceItem(ctx context.Context, f model.MarketplaceItemFields) (model.MarketplaceItem, error) {
	return scanMarketplaceItem(r.db.QueryRow(ctx,
		`INSERT INTO marketplace_items (title, description, category, price, image_url)
		 VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''))
		 RETURNING `+marketplaceColumns,
		f.Title, f.Description, string(f.Category), f.Price, f.ImageURL,
	))
}

// UpdateMarketplaceItem replaces the writable fields of listing id.
func (r *PgMarketplaceRepository) UpdateMarketplaceItem(ctx context.Context, id string, f model.MarketplaceItemFields) (model.MarketplaceItem, error) {
	it, err := scanMarketplaceItem(r.db.QueryRow(ctx,
		`UPDATE marketplace_items
		 SET title=$1, description=$2, category=$3, price=NULLIF($4, ''), image_url=NULLIF($5, '')
		 WHERE id=$6
		 RETURNING `+marketplaceColumns,
		f.Title, f.Description, string(f.Category), f.Price, f.ImageURL, id,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.MarketplaceItem{}, ErrNotFound
	}
	return it, err
}

// DeleteMarketplaceItem removes listing id.
func (r *PgMarketplaceRepository) DeleteMarketplaceItem(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM marketplace_items WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
