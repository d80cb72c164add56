package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/loganlanou/merch-storefront/internal/cart"
	"github.com/loganlanou/merch-storefront/internal/catalog"
	"github.com/loganlanou/merch-storefront/storage/db"
	"github.com/shopspring/decimal"
)

// CartStore persists session carts so a cart survives page loads and
// restarts. Every write rewrites the session's lines in one transaction.
type CartStore struct {
	storage *Storage
}

func NewCartStore(s *Storage) *CartStore {
	return &CartStore{storage: s}
}

func (s *CartStore) Get(ctx context.Context, sessionID string) (*cart.Cart, error) {
	return loadCart(ctx, s.storage.Queries, sessionID)
}

func loadCart(ctx context.Context, q *db.Queries, sessionID string) (*cart.Cart, error) {
	rows, err := q.ListCartItems(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart items: %w", err)
	}
	c := &cart.Cart{SessionID: sessionID}
	for _, row := range rows {
		item, err := lineItemFromRow(row)
		if err != nil {
			return nil, err
		}
		c.Items = append(c.Items, item)
	}
	return c, nil
}

func (s *CartStore) update(ctx context.Context, sessionID string, m cart.Mutation) error {
	tx, err := s.storage.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	q := s.storage.Queries.WithTx(tx)
	c, err := loadCart(ctx, q, sessionID)
	if err != nil {
		return err
	}
	if err := m(c); err != nil {
		return err
	}

	if err := q.TouchCart(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to touch cart: %w", err)
	}
	if err := q.DeleteCartItems(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to clear cart items: %w", err)
	}
	for i, item := range c.Items {
		if err := q.InsertCartItem(ctx, rowFromLineItem(sessionID, i, item)); err != nil {
			return fmt.Errorf("failed to insert cart item %s: %w", item.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit cart: %w", err)
	}
	return nil
}

func (s *CartStore) Add(ctx context.Context, sessionID string, item cart.LineItem) error {
	return s.update(ctx, sessionID, cart.AddItem(item))
}

func (s *CartStore) AddBatch(ctx context.Context, sessionID string, items []cart.LineItem) error {
	return s.update(ctx, sessionID, cart.AddItems(items))
}

func (s *CartStore) Remove(ctx context.Context, sessionID, itemID string) error {
	return s.update(ctx, sessionID, cart.RemoveItem(itemID))
}

func (s *CartStore) UpdateQuantity(ctx context.Context, sessionID, itemID string, quantity int) error {
	return s.update(ctx, sessionID, cart.SetQuantity(itemID, quantity))
}

func (s *CartStore) RemoveBundle(ctx context.Context, sessionID, bundleID string) error {
	return s.update(ctx, sessionID, cart.DropBundle(bundleID))
}

func (s *CartStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.storage.Queries.DeleteCart(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	return nil
}

// sqliteTimeLayout matches CURRENT_TIMESTAMP so text comparison orders correctly.
const sqliteTimeLayout = "2006-01-02 15:04:05"

// DeleteStale removes carts nobody has touched since the cutoff.
func (s *CartStore) DeleteStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan).UTC().Format(sqliteTimeLayout)
	n, err := s.storage.Queries.DeleteCartsUpdatedBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale carts: %w", err)
	}
	return n, nil
}

func rowFromLineItem(sessionID string, position int, item cart.LineItem) db.InsertCartItemParams {
	params := db.InsertCartItemParams{
		SessionID:         sessionID,
		ID:                item.ID,
		Position:          int64(position),
		Name:              item.Name,
		Price:             item.Price.String(),
		Quantity:          int64(item.Quantity),
		Image:             item.Image,
		PrintfulVariantID: item.PrintfulVariantID,
		ExternalID:        item.ExternalID,
		ProductCategory:   string(item.Category),
		Size:              item.Size,
		Color:             item.Color,
		IsPartOfBundle:    item.IsPartOfBundle,
		BundleID:          item.BundleID,
		BundleName:        item.BundleName,
		IsDiscount:        item.IsDiscount,
	}
	if item.Ref != nil {
		params.VariantCategory = sql.NullString{String: string(item.Ref.Category), Valid: true}
		params.VariantID = sql.NullInt64{Int64: item.Ref.ID, Valid: true}
	}
	return params
}

func lineItemFromRow(row db.CartItem) (cart.LineItem, error) {
	price, err := decimal.NewFromString(row.Price)
	if err != nil {
		return cart.LineItem{}, fmt.Errorf("invalid price %q for cart item %s: %w", row.Price, row.ID, err)
	}
	item := cart.LineItem{
		ID:                row.ID,
		Name:              row.Name,
		Price:             price,
		Quantity:          int(row.Quantity),
		Image:             row.Image,
		PrintfulVariantID: row.PrintfulVariantID,
		ExternalID:        row.ExternalID,
		Category:          catalog.Category(row.ProductCategory),
		Size:              row.Size,
		Color:             row.Color,
		IsPartOfBundle:    row.IsPartOfBundle,
		BundleID:          row.BundleID,
		BundleName:        row.BundleName,
		IsDiscount:        row.IsDiscount,
	}
	if row.VariantCategory.Valid && row.VariantID.Valid {
		item.Ref = &catalog.VariantRef{Category: catalog.Category(row.VariantCategory.String), ID: row.VariantID.Int64}
	}
	return item, nil
}
