package catalog

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/loganlanou/merch-storefront/internal/utils"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

//go:embed data/*.json
var dataFS embed.FS

type fileSwatch struct {
	Name   string `json:"name"`
	Hex    string `json:"hex"`
	Design string `json:"design"`
}

type fileVariant struct {
	Key              string `json:"key"`
	CatalogVariantID int64  `json:"catalogVariantId"`
	SyncVariantID    int64  `json:"syncVariantId"`
	Price            string `json:"price"`
	Design           string `json:"design"`
	Size             string `json:"size"`
	Color            string `json:"color"`
	ColorHex         string `json:"colorHex"`
	ExternalID       string `json:"externalId"`
	SKU              string `json:"sku"`
}

type catalogFile struct {
	Product     string        `json:"product"`
	DisplayName string        `json:"displayName"`
	Designs     []string      `json:"designs"`
	Sizes       []string      `json:"sizes"`
	Colors      []fileSwatch  `json:"colors"`
	Variants    []fileVariant `json:"variants"`
}

// Load parses and validates a catalog document. Every problem found is
// reported, not just the first.
func Load[D ~string](category Category, raw []byte) (*Catalog[D], error) {
	var f catalogFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("failed to parse %s catalog: %w", category, err)
	}

	var errs error
	if f.Product != string(category) {
		errs = multierr.Append(errs, fmt.Errorf("product %q does not match category %q", f.Product, category))
	}
	if len(f.Designs) == 0 {
		errs = multierr.Append(errs, fmt.Errorf("no designs declared"))
	}
	if len(f.Sizes) == 0 {
		errs = multierr.Append(errs, fmt.Errorf("no sizes declared"))
	}

	c := &Catalog[D]{
		category:     category,
		name:         f.DisplayName,
		byKey:        make(map[lookupKey[D]]int, len(f.Variants)),
		byCatalogID:  make(map[int64]int, len(f.Variants)),
		byExternalID: make(map[string]int, len(f.Variants)),
		bySKU:        make(map[string]int, len(f.Variants)),
	}
	if c.name == "" {
		c.name = string(category)
	}
	for _, d := range f.Designs {
		c.designs = append(c.designs, D(d))
	}
	for _, s := range f.Sizes {
		c.sizes = append(c.sizes, Size(s))
	}

	for i, fv := range f.Variants {
		v, err := c.parseVariant(fv)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("variant %d (%s): %w", i, fv.Key, err))
			continue
		}

		key := lookupKey[D]{design: v.Design, size: v.Size, color: v.Color}
		if prev, dup := c.byKey[key]; dup {
			errs = multierr.Append(errs, fmt.Errorf("variant %s duplicates design/size/color of %s", v.Key, c.variants[prev].Key))
			continue
		}
		if prev, dup := c.byCatalogID[v.CatalogVariantID]; dup {
			errs = multierr.Append(errs, fmt.Errorf("variant %s reuses catalog id %d of %s", v.Key, v.CatalogVariantID, c.variants[prev].Key))
			continue
		}

		idx := len(c.variants)
		c.variants = append(c.variants, v)
		c.byKey[key] = idx
		c.byCatalogID[v.CatalogVariantID] = idx
		if _, seen := c.byExternalID[v.ExternalID]; !seen && v.ExternalID != "" {
			c.byExternalID[v.ExternalID] = idx
		}
		if sku := utils.NormalizeSKU(v.SKU); sku != "" {
			if _, seen := c.bySKU[sku]; !seen {
				c.bySKU[sku] = idx
			}
		}
	}

	for _, fs := range f.Colors {
		sw := Swatch[D]{Name: fs.Name, Hex: fs.Hex, Design: D(fs.Design)}
		if err := c.checkSwatch(sw); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		c.swatches = append(c.swatches, sw)
	}

	if errs != nil {
		return nil, fmt.Errorf("invalid %s catalog: %w", category, errs)
	}
	return c, nil
}

func (c *Catalog[D]) parseVariant(fv fileVariant) (Variant[D], error) {
	if fv.CatalogVariantID <= 0 {
		return Variant[D]{}, fmt.Errorf("catalog id must be positive")
	}
	if !slices.Contains(c.designs, D(fv.Design)) {
		return Variant[D]{}, fmt.Errorf("unknown design %q", fv.Design)
	}
	if !slices.Contains(c.sizes, Size(fv.Size)) {
		return Variant[D]{}, fmt.Errorf("unknown size %q", fv.Size)
	}
	if strings.TrimSpace(fv.Color) == "" {
		return Variant[D]{}, fmt.Errorf("color is required")
	}
	price, err := utils.ParsePrice(fv.Price)
	if err != nil {
		return Variant[D]{}, err
	}
	sku := fv.SKU
	if sku == "" {
		sku = utils.GenerateSKU(string(c.category), fv.Color, fv.Size)
	} else if err := utils.ValidateSKU(sku); err != nil {
		return Variant[D]{}, err
	}
	return Variant[D]{
		Key:              fv.Key,
		CatalogVariantID: fv.CatalogVariantID,
		SyncVariantID:    fv.SyncVariantID,
		Price:            price,
		Design:           D(fv.Design),
		Size:             Size(fv.Size),
		Color:            fv.Color,
		ColorHex:         fv.ColorHex,
		ExternalID:       fv.ExternalID,
		SKU:              sku,
	}, nil
}

// checkSwatch requires the swatch hex to match a variant of that color, and
// every size of its design to exist for that color.
func (c *Catalog[D]) checkSwatch(sw Swatch[D]) error {
	var errs error
	hexMatched := false
	for _, v := range c.variants {
		if v.Color == sw.Name && strings.EqualFold(v.ColorHex, sw.Hex) {
			hexMatched = true
			break
		}
	}
	if !hexMatched {
		errs = multierr.Append(errs, fmt.Errorf("swatch %s %s matches no variant hex", sw.Name, sw.Hex))
	}
	for _, size := range c.sizes {
		if _, ok := c.byKey[lookupKey[D]{design: sw.Design, size: size, color: sw.Name}]; !ok {
			errs = multierr.Append(errs, fmt.Errorf("swatch %s has no %s/%s variant", sw.Name, sw.Design, size))
		}
	}
	return errs
}

type lazyCatalog[D ~string] struct {
	category Category
	once     sync.Once
	catalog  *Catalog[D]
	err      error
}

func (l *lazyCatalog[D]) get() (*Catalog[D], error) {
	l.once.Do(func() {
		raw, err := dataFS.ReadFile("data/" + string(l.category) + ".json")
		if err != nil {
			l.err = fmt.Errorf("failed to read %s catalog: %w", l.category, err)
			return
		}
		l.catalog, l.err = Load[D](l.category, raw)
	})
	return l.catalog, l.err
}

func (l *lazyCatalog[D]) must() *Catalog[D] {
	c, err := l.get()
	if err != nil {
		panic(err)
	}
	return c
}

var (
	hoodieData      = &lazyCatalog[Design]{category: CategoryHoodie}
	tshirtData      = &lazyCatalog[Design]{category: CategoryTShirt}
	capData         = &lazyCatalog[Style]{category: CategoryCap}
	toteData        = &lazyCatalog[Style]{category: CategoryTote}
	mugData         = &lazyCatalog[Style]{category: CategoryMug}
	waterBottleData = &lazyCatalog[Style]{category: CategoryWaterBottle}
	mousePadData    = &lazyCatalog[Style]{category: CategoryMousePad}
)

// The embedded tables ship with the binary; a load failure is a build defect,
// so these accessors panic. Call Warm at startup to surface it early.

func Hoodies() *Catalog[Design] { return hoodieData.must() }
func TShirts() *Catalog[Design] { return tshirtData.must() }
func Caps() *Catalog[Style] { return capData.must() }
func Totes() *Catalog[Style] { return toteData.must() }
func Mugs() *Catalog[Style] { return mugData.must() }
func WaterBottles() *Catalog[Style] { return waterBottleData.must() }
func MousePads() *Catalog[Style] { return mousePadData.must() }

// Warm loads every embedded catalog concurrently.
func Warm(ctx context.Context) error {
	g, _ := errgroup.WithContext(ctx)
	for _, load := range []func() error{
		func() error { _, err := hoodieData.get(); return err },
		func() error { _, err := tshirtData.get(); return err },
		func() error { _, err := capData.get(); return err },
		func() error { _, err := toteData.get(); return err },
		func() error { _, err := mugData.get(); return err },
		func() error { _, err := waterBottleData.get(); return err },
		func() error { _, err := mousePadData.get(); return err },
	} {
		g.Go(load)
	}
	return g.Wait()
}
