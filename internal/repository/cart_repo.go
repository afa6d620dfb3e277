package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"ThriftStoreAPI/internal/model"
)

// CartStore holds each buyer's pending cart lines. Adding an existing
// (item, listing kind) pair is a no-op: items are unique secondhand goods,
// so there is nothing to increment.
type CartStore interface {
	Lines(ctx context.Context, buyerEmail string) ([]model.CartLine, error)
	Add(ctx context.Context, buyerEmail string, line model.CartLine) (added bool, err error)
	Remove(ctx context.Context, buyerEmail string, itemID int64, kind model.ListingKind) error
	Clear(ctx context.Context, buyerEmail string) error
}

// DB is the subset of pgxpool.Pool the repository needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type CartRepository struct {
	DB DB
}

func NewCartRepository(db DB) *CartRepository {
	return &CartRepository{DB: db}
}

func (r *CartRepository) Lines(ctx context.Context, buyerEmail string) ([]model.CartLine, error) {
	query := `SELECT item_id, title, unit_price, rent_price, listing_kind, image_path, quantity
		FROM cart_lines WHERE buyer_email=$1 ORDER BY created_at`
	rows, err := r.DB.Query(ctx, query, buyerEmail)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []model.CartLine
	for rows.Next() {
		var line model.CartLine
		if err := rows.Scan(&line.ItemID, &line.Title, &line.UnitPrice, &line.RentPrice,
			&line.ListingKind, &line.ImagePath, &line.Quantity); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

// Add inserts a cart line; the unique (buyer, item, kind) constraint makes a
// duplicate add a no-op and Add reports false.
func (r *CartRepository) Add(ctx context.Context, buyerEmail string, line model.CartLine) (bool, error) {
	query := `
		INSERT INTO cart_lines (id, buyer_email, item_id, title, unit_price, rent_price, listing_kind, image_path, quantity)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 1)
		ON CONFLICT (buyer_email, item_id, listing_kind) DO NOTHING
	`
	tag, err := r.DB.Exec(ctx, query, uuid.NewString(), buyerEmail, line.ItemID, line.Title,
		line.UnitPrice, line.RentPrice, line.ListingKind, line.ImagePath)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *CartRepository) Remove(ctx context.Context, buyerEmail string, itemID int64, kind model.ListingKind) error {
	query := `DELETE FROM cart_lines WHERE buyer_email=$1 AND item_id=$2 AND listing_kind=$3`
	_, err := r.DB.Exec(ctx, query, buyerEmail, itemID, kind)
	return err
}

func (r *CartRepository) Clear(ctx context.Context, buyerEmail string) error {
	query := `DELETE FROM cart_lines WHERE buyer_email=$1`
	_, err := r.DB.Exec(ctx, query, buyerEmail)
	return err
}
