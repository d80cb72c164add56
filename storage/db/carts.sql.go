package db

import (
	"context"
	"database/sql"
)

const touchCart = `-- name: TouchCart :exec
INSERT INTO carts (session_id) VALUES (?)
ON CONFLICT (session_id) DO UPDATE SET updated_at = CURRENT_TIMESTAMP
`

func (q *Queries) TouchCart(ctx context.Context, sessionID string) error {
	_, err := q.db.ExecContext(ctx, touchCart, sessionID)
	return err
}

const getCart = `-- name: GetCart :one
SELECT session_id, created_at, updated_at FROM carts WHERE session_id = ?
`

func (q *Queries) GetCart(ctx context.Context, sessionID string) (Cart, error) {
	row := q.db.QueryRowContext(ctx, getCart, sessionID)
	var i Cart
	err := row.Scan(&i.SessionID, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const listCartItems = `-- name: ListCartItems :many
SELECT session_id, id, position, name, price, quantity, image, printful_variant_id, external_id,
       variant_category, variant_id, product_category, size, color, is_part_of_bundle,
       bundle_id, bundle_name, is_discount
FROM cart_items
WHERE session_id = ?
ORDER BY position
`

func (q *Queries) ListCartItems(ctx context.Context, sessionID string) ([]CartItem, error) {
	rows, err := q.db.QueryContext(ctx, listCartItems, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CartItem
	for rows.Next() {
		var i CartItem
		if err := rows.Scan(
			&i.SessionID,
			&i.ID,
			&i.Position,
			&i.Name,
			&i.Price,
			&i.Quantity,
			&i.Image,
			&i.PrintfulVariantID,
			&i.ExternalID,
			&i.VariantCategory,
			&i.VariantID,
			&i.ProductCategory,
			&i.Size,
			&i.Color,
			&i.IsPartOfBundle,
			&i.BundleID,
			&i.BundleName,
			&i.IsDiscount,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const insertCartItem = `-- name: InsertCartItem :exec
INSERT INTO cart_items (
    session_id, id, position, name, price, quantity, image, printful_variant_id, external_id,
    variant_category, variant_id, product_category, size, color, is_part_of_bundle,
    bundle_id, bundle_name, is_discount
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

type InsertCartItemParams struct {
	SessionID         string         `json:"session_id"`
	ID                string         `json:"id"`
	Position          int64          `json:"position"`
	Name              string         `json:"name"`
	Price             string         `json:"price"`
	Quantity          int64          `json:"quantity"`
	Image             string         `json:"image"`
	PrintfulVariantID string         `json:"printful_variant_id"`
	ExternalID        string         `json:"external_id"`
	VariantCategory   sql.NullString `json:"variant_category"`
	VariantID         sql.NullInt64  `json:"variant_id"`
	ProductCategory   string         `json:"product_category"`
	Size              string         `json:"size"`
	Color             string         `json:"color"`
	IsPartOfBundle    bool           `json:"is_part_of_bundle"`
	BundleID          string         `json:"bundle_id"`
	BundleName        string         `json:"bundle_name"`
	IsDiscount        bool           `json:"is_discount"`
}

func (q *Queries) InsertCartItem(ctx context.Context, arg InsertCartItemParams) error {
	_, err := q.db.ExecContext(ctx, insertCartItem,
		arg.SessionID,
		arg.ID,
		arg.Position,
		arg.Name,
		arg.Price,
		arg.Quantity,
		arg.Image,
		arg.PrintfulVariantID,
		arg.ExternalID,
		arg.VariantCategory,
		arg.VariantID,
		arg.ProductCategory,
		arg.Size,
		arg.Color,
		arg.IsPartOfBundle,
		arg.BundleID,
		arg.BundleName,
		arg.IsDiscount,
	)
	return err
}

const deleteCartItems = `-- name: DeleteCartItems :exec
DELETE FROM cart_items WHERE session_id = ?
`

func (q *Queries) DeleteCartItems(ctx context.Context, sessionID string) error {
	_, err := q.db.ExecContext(ctx, deleteCartItems, sessionID)
	return err
}

const deleteCart = `-- name: DeleteCart :exec
DELETE FROM carts WHERE session_id = ?
`

func (q *Queries) DeleteCart(ctx context.Context, sessionID string) error {
	_, err := q.db.ExecContext(ctx, deleteCart, sessionID)
	return err
}

const deleteCartsUpdatedBefore = `-- name: DeleteCartsUpdatedBefore :execrows
DELETE FROM carts WHERE updated_at < CAST(? AS TEXT)
`

func (q *Queries) DeleteCartsUpdatedBefore(ctx context.Context, cutoff string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteCartsUpdatedBefore, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
