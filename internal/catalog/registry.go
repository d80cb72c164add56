package catalog

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ProductFor returns the catalog for a category.
func ProductFor(category Category) (Product, error) {
	switch category {
	case CategoryHoodie:
		return Hoodies(), nil
	case CategoryTShirt:
		return TShirts(), nil
	case CategoryCap:
		return Caps(), nil
	case CategoryTote:
		return Totes(), nil
	case CategoryMug:
		return Mugs(), nil
	case CategoryWaterBottle:
		return WaterBottles(), nil
	case CategoryMousePad:
		return MousePads(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
}

// Products returns every catalog in display order.
func Products() []Product {
	out := make([]Product, 0, len(Categories))
	for _, c := range Categories {
		p, _ := ProductFor(c)
		out = append(out, p)
	}
	return out
}

// Lookup resolves a tagged reference in its own category's catalog.
func Lookup(ref VariantRef) (Entry, error) {
	p, err := ProductFor(ref.Category)
	if err != nil {
		return Entry{}, err
	}
	return p.EntryByCatalogID(ref.ID)
}

// Price returns the standalone price of a referenced variant.
func Price(ref VariantRef) (decimal.Decimal, error) {
	e, err := Lookup(ref)
	if err != nil {
		return decimal.Zero, err
	}
	return e.Price, nil
}
