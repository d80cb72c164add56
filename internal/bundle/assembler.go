package bundle

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/loganlanou/merch-storefront/internal/apperr"
	"github.com/loganlanou/merch-storefront/internal/cart"
	"github.com/loganlanou/merch-storefront/internal/catalog"
	"github.com/loganlanou/merch-storefront/internal/metrics"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

// ErrResolutionFailed is the code carrier for ResolutionError.
var ErrResolutionFailed = apperr.New(apperr.CodeUnprocessable, "bundle could not be assembled")

// ResolutionError reports the first bundle component that could not be
// resolved. No part of the bundle is added when it is returned.
type ResolutionError struct {
	Bundle   string
	Item     string
	Category catalog.Category
	Err      error
}

func (e *ResolutionError) Error() string {
	return e.UserMessage()
}

// UserMessage is the notice shown to the shopper.
func (e *ResolutionError) UserMessage() string {
	return fmt.Sprintf("Unable to add %s — missing variant information", e.Item)
}

func (e *ResolutionError) Unwrap() []error {
	return []error{ErrResolutionFailed, e.Err}
}

// Selection is the user's choice for one bundle slot. Accessories only use
// Color, and an empty Color picks the product's first color.
type Selection struct {
	Design catalog.Design `json:"design,omitempty"`
	Size   catalog.Size   `json:"size,omitempty"`
	Color  string         `json:"color,omitempty"`
}

// Selections is keyed by the component's category.
type Selections map[catalog.Category]Selection

// Assembler turns a bundle config and the user's selections into cart lines.
type Assembler struct {
	garments    map[catalog.Category]*catalog.Resolver
	accessories map[catalog.Category]*catalog.AccessoryResolver
	logger      *slog.Logger
	metrics     *metrics.Metrics
	newID       func() string
}

// NewAssembler wires resolvers for every embedded catalog.
func NewAssembler(logger *slog.Logger, m *metrics.Metrics) *Assembler {
	if logger == nil {
		logger = slog.Default()
	}
	a := &Assembler{
		garments:    make(map[catalog.Category]*catalog.Resolver),
		accessories: make(map[catalog.Category]*catalog.AccessoryResolver),
		logger:      logger,
		metrics:     m,
		newID:       func() string { return ulid.Make().String() },
	}
	for _, c := range []*catalog.Catalog[catalog.Design]{catalog.Hoodies(), catalog.TShirts()} {
		a.garments[c.Category()] = catalog.NewResolver(c, nil, logger, m)
	}
	for _, c := range []*catalog.Catalog[catalog.Style]{
		catalog.Caps(), catalog.Totes(), catalog.Mugs(), catalog.WaterBottles(), catalog.MousePads(),
	} {
		a.accessories[c.Category()] = catalog.NewAccessoryResolver(c, m)
	}
	return a
}

// Assemble resolves every component in config order and returns the full
// batch: one line per component followed by one discount line. Any failure
// returns no lines at all.
func (a *Assembler) Assemble(ctx context.Context, cfg Config, selections Selections) ([]cart.LineItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(cfg.Components) == 0 {
		return nil, ErrMissingConfig
	}

	entries := make([]catalog.Entry, 0, len(cfg.Components))
	for _, comp := range cfg.Components {
		entry, err := a.Resolve(comp.Category, selections[comp.Category])
		if err != nil {
			a.metrics.IncBundleFailed(cfg.ID)
			a.logger.Warn("bundle component could not be resolved",
				"bundle", cfg.ID,
				"item", comp.DisplayName,
				"category", comp.Category,
				"error", err,
			)
			return nil, &ResolutionError{Bundle: cfg.ID, Item: comp.DisplayName, Category: comp.Category, Err: err}
		}
		entries = append(entries, entry)
	}

	instance := a.newID()
	items := make([]cart.LineItem, 0, len(entries)+1)
	for i, entry := range entries {
		comp := cfg.Components[i]
		ref := entry.Ref
		items = append(items, cart.LineItem{
			ID:                fmt.Sprintf("%s-%s-%d", instance, comp.Category, i),
			Name:              fmt.Sprintf("%s (%s)", entry.ProductName, cfg.Name),
			Price:             comp.UnitPrice,
			Quantity:          1,
			PrintfulVariantID: strconv.FormatInt(ref.ID, 10),
			ExternalID:        entry.ExternalID,
			Ref:               &ref,
			Category:          comp.Category,
			Size:              string(entry.Size),
			Color:             entry.Color,
			IsPartOfBundle:    true,
			BundleID:          instance,
			BundleName:        cfg.Name,
		})
	}

	items = append(items, cart.LineItem{
		ID:                instance + "-discount",
		Name:              cfg.Name + " Discount",
		Price:             cfg.Discount(),
		Quantity:          1,
		Image:             cfg.Image,
		PrintfulVariantID: DiscountVariantID(cfg.ID),
		IsPartOfBundle:    true,
		BundleID:          instance,
		BundleName:        cfg.Name,
		IsDiscount:        true,
	})

	a.metrics.IncBundleAssembled(cfg.ID)
	a.logger.Debug("bundle assembled", "bundle", cfg.ID, "instance", instance, "items", len(items))
	return items, nil
}

// DiscountVariantID is the placeholder variant ID carried by discount lines.
func DiscountVariantID(bundleID string) string {
	return "discount-" + NormalizeID(bundleID)
}

// Resolve finds the variant one selection names. Garments need a size and
// a color; accessories only use the color.
func (a *Assembler) Resolve(category catalog.Category, sel Selection) (catalog.Entry, error) {
	if r, ok := a.garments[category]; ok {
		if sel.Size == "" || sel.Color == "" {
			return catalog.Entry{}, fmt.Errorf("%w: %s needs a size and a color", catalog.ErrVariantNotFound, category)
		}
		v, err := r.ResolveDesign(sel.Design, sel.Size, sel.Color)
		if err != nil {
			return catalog.Entry{}, err
		}
		return r.Catalog().Entry(v), nil
	}
	if r, ok := a.accessories[category]; ok {
		v, err := r.Resolve(sel.Color)
		if err != nil {
			return catalog.Entry{}, err
		}
		return r.Catalog().Entry(v), nil
	}
	return catalog.Entry{}, fmt.Errorf("%w: %q", catalog.ErrUnknownCategory, category)
}

// TotalSavings sums the discount lines of a batch as a positive amount.
func TotalSavings(items []cart.LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		if item.IsDiscount {
			total = total.Sub(item.Total())
		}
	}
	return total
}
