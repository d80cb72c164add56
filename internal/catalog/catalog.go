package catalog

import (
	"fmt"
	"slices"

	"github.com/loganlanou/merch-storefront/internal/utils"
)

type lookupKey[D ~string] struct {
	design D
	size   Size
	color  string
}

// Catalog is the immutable variant table of one product category.
type Catalog[D ~string] struct {
	category Category
	name     string
	designs  []D
	sizes    []Size
	swatches []Swatch[D]
	variants []Variant[D]

	byKey        map[lookupKey[D]]int
	byCatalogID  map[int64]int
	byExternalID map[string]int
	bySKU        map[string]int
}

func (c *Catalog[D]) Category() Category { return c.category }

func (c *Catalog[D]) Name() string { return c.name }

func (c *Catalog[D]) Len() int { return len(c.variants) }

func (c *Catalog[D]) Designs() []D { return slices.Clone(c.designs) }

func (c *Catalog[D]) Sizes() []Size { return slices.Clone(c.sizes) }

// Colors returns the public color list in catalog order.
func (c *Catalog[D]) Colors() []Swatch[D] { return slices.Clone(c.swatches) }

// All returns every variant in catalog order.
func (c *Catalog[D]) All() []Variant[D] { return slices.Clone(c.variants) }

// Find is an exact match on design, size and color.
func (c *Catalog[D]) Find(design D, size Size, color string) (Variant[D], error) {
	idx, ok := c.byKey[lookupKey[D]{design: design, size: size, color: color}]
	if !ok {
		return Variant[D]{}, fmt.Errorf("%w: %s %s/%s/%s", ErrVariantNotFound, c.category, design, size, color)
	}
	return c.variants[idx], nil
}

func (c *Catalog[D]) FindByCatalogID(id int64) (Variant[D], error) {
	idx, ok := c.byCatalogID[id]
	if !ok {
		return Variant[D]{}, fmt.Errorf("%w: %s catalog id %d", ErrVariantNotFound, c.category, id)
	}
	return c.variants[idx], nil
}

func (c *Catalog[D]) FindByExternalID(id string) (Variant[D], error) {
	idx, ok := c.byExternalID[id]
	if !ok {
		return Variant[D]{}, fmt.Errorf("%w: %s external id %q", ErrVariantNotFound, c.category, id)
	}
	return c.variants[idx], nil
}

// FindBySKU matches SKUs after normalization, so case and separators don't matter.
func (c *Catalog[D]) FindBySKU(sku string) (Variant[D], error) {
	idx, ok := c.bySKU[utils.NormalizeSKU(sku)]
	if !ok {
		return Variant[D]{}, fmt.Errorf("%w: %s sku %q", ErrVariantNotFound, c.category, sku)
	}
	return c.variants[idx], nil
}

func (c *Catalog[D]) ListByDesign(design D) []Variant[D] {
	return c.filter(func(v Variant[D]) bool { return v.Design == design })
}

func (c *Catalog[D]) ListBySize(size Size) []Variant[D] {
	return c.filter(func(v Variant[D]) bool { return v.Size == size })
}

func (c *Catalog[D]) ListByColor(color string) []Variant[D] {
	return c.filter(func(v Variant[D]) bool { return v.Color == color })
}

func (c *Catalog[D]) filter(keep func(Variant[D]) bool) []Variant[D] {
	out := make([]Variant[D], 0)
	for _, v := range c.variants {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

// Ref tags a variant with this catalog's category.
func (c *Catalog[D]) Ref(v Variant[D]) VariantRef {
	return VariantRef{Category: c.category, ID: v.CatalogVariantID}
}

// Entry converts a variant to the category-agnostic view.
func (c *Catalog[D]) Entry(v Variant[D]) Entry {
	return Entry{
		Ref:         c.Ref(v),
		ProductName: c.name,
		Key:         v.Key,
		Price:       v.Price,
		Design:      string(v.Design),
		Size:        v.Size,
		Color:       v.Color,
		ColorHex:    v.ColorHex,
		ExternalID:  v.ExternalID,
		SKU:         v.SKU,
	}
}

// Product is the non-generic surface shared by every catalog.
type Product interface {
	Category() Category
	Name() string
	Len() int
	Sizes() []Size
	DesignNames() []string
	ColorSwatches() []ColorSwatch
	Entries() []Entry
	EntryByCatalogID(id int64) (Entry, error)
	FindEntry(design string, size Size, color string) (Entry, error)
}

func (c *Catalog[D]) DesignNames() []string {
	out := make([]string, len(c.designs))
	for i, d := range c.designs {
		out[i] = string(d)
	}
	return out
}

// ColorSwatches returns the color list sorted dark to light.
func (c *Catalog[D]) ColorSwatches() []ColorSwatch {
	out := make([]ColorSwatch, len(c.swatches))
	for i, s := range SortByBrightness(c.swatches) {
		out[i] = ColorSwatch{Name: s.Name, Hex: s.Hex, Design: string(s.Design), Light: IsLight(s.Hex)}
	}
	return out
}

func (c *Catalog[D]) Entries() []Entry {
	out := make([]Entry, len(c.variants))
	for i, v := range c.variants {
		out[i] = c.Entry(v)
	}
	return out
}

func (c *Catalog[D]) EntryByCatalogID(id int64) (Entry, error) {
	v, err := c.FindByCatalogID(id)
	if err != nil {
		return Entry{}, err
	}
	return c.Entry(v), nil
}

func (c *Catalog[D]) FindEntry(design string, size Size, color string) (Entry, error) {
	v, err := c.Find(D(design), size, color)
	if err != nil {
		return Entry{}, err
	}
	return c.Entry(v), nil
}
