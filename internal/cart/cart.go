package cart

import (
	"context"
	"fmt"
	"strings"

	"github.com/loganlanou/merch-storefront/internal/apperr"
	"github.com/loganlanou/merch-storefront/internal/catalog"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
)

var (
	ErrInvalidItem  = apperr.New(apperr.CodeValidation, "invalid cart item")
	ErrItemNotFound = apperr.New(apperr.CodeNotFound, "cart item not found")
	ErrBundleLine   = apperr.New(apperr.CodeValidation, "bundle items cannot change quantity, remove the bundle instead")
)

// LineItem is one row of the cart. Bundle components and their discount line
// share a BundleID so they can be removed together.
type LineItem struct {
	ID                string              `json:"id"`
	Name              string              `json:"name"`
	Price             decimal.Decimal     `json:"price"`
	Quantity          int                 `json:"quantity"`
	Image             string              `json:"image,omitempty"`
	PrintfulVariantID string              `json:"printful_variant_id,omitempty"`
	ExternalID        string              `json:"external_id,omitempty"`
	Ref               *catalog.VariantRef `json:"variant_ref,omitempty"`
	Category          catalog.Category    `json:"product_category,omitempty"`
	Size              string              `json:"size,omitempty"`
	Color             string              `json:"color,omitempty"`
	IsPartOfBundle    bool                `json:"isPartOfBundle,omitempty"`
	BundleID          string              `json:"bundleId,omitempty"`
	BundleName        string              `json:"bundleName,omitempty"`
	IsDiscount        bool                `json:"isDiscount,omitempty"`
}

// Validate checks the fields every line needs. Discount lines must be
// non-positive; everything else non-negative.
func (li LineItem) Validate() error {
	var errs error
	if strings.TrimSpace(li.ID) == "" {
		errs = multierr.Append(errs, fmt.Errorf("id is required"))
	}
	if strings.TrimSpace(li.Name) == "" {
		errs = multierr.Append(errs, fmt.Errorf("name is required"))
	}
	if li.Quantity <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("quantity must be positive"))
	}
	if li.IsDiscount && li.Price.IsPositive() {
		errs = multierr.Append(errs, fmt.Errorf("discount price must not be positive"))
	}
	if !li.IsDiscount && li.Price.IsNegative() {
		errs = multierr.Append(errs, fmt.Errorf("price must not be negative"))
	}
	if errs != nil {
		return fmt.Errorf("%w %q: %w", ErrInvalidItem, li.ID, errs)
	}
	return nil
}

// Total is price times quantity.
func (li LineItem) Total() decimal.Decimal {
	return li.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Cart is an ordered list of line items.
type Cart struct {
	SessionID string     `json:"session_id,omitempty"`
	Items     []LineItem `json:"items"`
}

func (c *Cart) index(id string) int {
	for i, item := range c.Items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

// Add appends an item, or bumps the quantity if the ID is already present.
func (c *Cart) Add(item LineItem) error {
	if err := item.Validate(); err != nil {
		return err
	}
	if i := c.index(item.ID); i >= 0 {
		c.Items[i].Quantity += item.Quantity
		return nil
	}
	c.Items = append(c.Items, item)
	return nil
}

// AddBatch adds every item or none of them.
func (c *Cart) AddBatch(items []LineItem) error {
	if err := ValidateBatch(items); err != nil {
		return err
	}
	next := append([]LineItem(nil), c.Items...)
	staged := &Cart{Items: next}
	for _, item := range items {
		if err := staged.Add(item); err != nil {
			return err
		}
	}
	c.Items = staged.Items
	return nil
}

// ValidateBatch validates all items and reports every failure.
func ValidateBatch(items []LineItem) error {
	var errs error
	for _, item := range items {
		errs = multierr.Append(errs, item.Validate())
	}
	return errs
}

// Remove drops an item. A line that belongs to a bundle takes the rest of
// the bundle with it, discount included.
func (c *Cart) Remove(id string) bool {
	i := c.index(id)
	if i < 0 {
		return false
	}
	if bundleID := c.Items[i].BundleID; bundleID != "" {
		return c.RemoveBundle(bundleID) > 0
	}
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	return true
}

// UpdateQuantity sets an item's quantity; zero or less removes it. Bundle
// lines and discount lines keep quantity one.
func (c *Cart) UpdateQuantity(id string, quantity int) error {
	i := c.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	if quantity <= 0 {
		c.Remove(id)
		return nil
	}
	item := c.Items[i]
	if item.IsPartOfBundle || item.IsDiscount || item.BundleID != "" {
		return fmt.Errorf("%w: %s", ErrBundleLine, id)
	}
	c.Items[i].Quantity = quantity
	return nil
}

// RemoveBundle drops every line of a bundle, discount included, and returns
// how many lines went.
func (c *Cart) RemoveBundle(bundleID string) int {
	if bundleID == "" {
		return 0
	}
	kept := c.Items[:0]
	removed := 0
	for _, item := range c.Items {
		if item.BundleID == bundleID {
			removed++
			continue
		}
		kept = append(kept, item)
	}
	c.Items = kept
	return removed
}

func (c *Cart) Clear() {
	c.Items = nil
}

// TotalItems counts units, skipping discount lines.
func (c *Cart) TotalItems() int {
	n := 0
	for _, item := range c.Items {
		if !item.IsDiscount {
			n += item.Quantity
		}
	}
	return n
}

// TotalPrice sums every line, discounts included.
func (c *Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Total())
	}
	return total.Round(2)
}

// Subtotal sums the goods at full value, before discounts.
func (c *Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		if !item.IsDiscount {
			total = total.Add(item.Total())
		}
	}
	return total.Round(2)
}

// Store persists carts per session.
type Store interface {
	Get(ctx context.Context, sessionID string) (*Cart, error)
	Add(ctx context.Context, sessionID string, item LineItem) error
	AddBatch(ctx context.Context, sessionID string, items []LineItem) error
	Remove(ctx context.Context, sessionID, itemID string) error
	UpdateQuantity(ctx context.Context, sessionID, itemID string, quantity int) error
	RemoveBundle(ctx context.Context, sessionID, bundleID string) error
	Clear(ctx context.Context, sessionID string) error
}
