package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/romeoalpha/admin/internal/model"
)

const adColumns = `id, title, COALESCE(link_url, ''), image_url, created_at`

// PgAdRepository stores promotional ads in PostgreSQL.
type PgAdRepository struct {
	db dbtx
}

// NewPgAdRepository creates a PgAdRepository backed by the given pool.
func NewPgAdRepository(db dbtx) *PgAdRepository {
	return &PgAdRepository{db: db}
}

func scanAd(row pgx.Row) (model.Ad, error) {
	var a model.Ad
	err := row.Scan(&a.ID, &a.Title, &a.LinkURL, &a.ImageURL, &a.CreatedAt)
	return a, err
}

// ListAds returns every ad, newest first.
func (r *PgAdRepository) ListAds(ctx context.Context) ([]model.Ad, error) {
	rows, err := r.db.Query(ctx, `SELECT `+adColumns+` FROM ads ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ads := []model.Ad{}
	for rows.Next() {
		a, err := scanAd(rows)
		if err != nil {
			return nil, err
		}
		ads = append(ads, a)
	}
	return ads, rows.Err()
}

// CreateAd inserts an ad. The schema rejects an empty image_url.
func (r *PgAdRepository) CreateAd(ctx context.Context, f model.AdFields) (model.Ad, error) {
	if f.ImageURL == "" {
		return model.Ad{}, errors.New("create ad: image_url is required")
	}
	return scanAd(r.db.QueryRow(ctx,
		`INSERT INTO ads (title, link_url, image_url)
		 VALUES ($1, NULLIF($2, ''), $3)
		 RETURNING `+adColumns,
		f.Title, f.LinkURL, f.ImageURL,
	))
}

// DeleteAd removes ad id.
func (r *PgAdRepository) DeleteAd(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM ads WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
