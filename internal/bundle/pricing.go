package bundle

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/loganlanou/merch-storefront/internal/apperr"
	"github.com/loganlanou/merch-storefront/internal/catalog"
	"github.com/loganlanou/merch-storefront/internal/utils"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
)

var (
	// ErrMissingConfig means pricing has not loaded yet. Callers should wait
	// and retry rather than report a failure.
	ErrMissingConfig = apperr.New(apperr.CodePending, "bundle pricing not loaded")
	ErrUnknownBundle = apperr.New(apperr.CodeNotFound, "unknown bundle")
	ErrInvalidConfig = apperr.New(apperr.CodeInternal, "invalid bundle config")
)

//go:embed data/bundles.json
var embeddedBundles []byte

// Component is one product slot of a bundle, priced at its standalone value.
type Component struct {
	Category    catalog.Category `json:"category"`
	DisplayName string           `json:"name"`
	UnitPrice   decimal.Decimal  `json:"price"`
}

type Savings struct {
	Absolute   decimal.Decimal `json:"absolute"`
	Percentage decimal.Decimal `json:"percentage"`
}

// Config is the pricing of one bundle.
type Config struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Image         string          `json:"image,omitempty"`
	DiscountRate  decimal.Decimal `json:"discount_rate"`
	Components    []Component     `json:"components"`
	OriginalPrice decimal.Decimal `json:"original_price"`
	BundlePrice   decimal.Decimal `json:"bundle_price"`
	Savings       Savings         `json:"savings"`
}

// Discount is the signed amount of the bundle's discount line.
func (c Config) Discount() decimal.Decimal {
	return c.BundlePrice.Sub(c.OriginalPrice).Round(2)
}

func (c Config) Validate() error {
	var errs error
	if c.ID == "" {
		errs = multierr.Append(errs, fmt.Errorf("id is required"))
	}
	if len(c.Components) == 0 {
		errs = multierr.Append(errs, fmt.Errorf("bundle %s has no components", c.ID))
	}
	for i, comp := range c.Components {
		if _, err := catalog.ProductFor(comp.Category); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("component %d: %w", i, err))
		}
		if !comp.UnitPrice.IsPositive() {
			errs = multierr.Append(errs, fmt.Errorf("component %d (%s) price must be positive", i, comp.DisplayName))
		}
	}
	if !c.BundlePrice.IsPositive() || c.BundlePrice.GreaterThan(c.OriginalPrice) {
		errs = multierr.Append(errs, fmt.Errorf("bundle %s price %s must be positive and at most %s", c.ID, c.BundlePrice, c.OriginalPrice))
	}
	if errs != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errs)
	}
	return nil
}

// Compute prices a bundle from its components: the rate comes off the sum
// and the result is rounded to .99.
func Compute(id, name string, rate decimal.Decimal, components []Component) Config {
	original := decimal.Zero
	for _, comp := range components {
		original = original.Add(comp.UnitPrice)
	}
	discounted := original.Mul(decimal.NewFromInt(1).Sub(rate))
	return newConfig(id, name, rate, components, original, utils.RoundTo99(discounted))
}

func newConfig(id, name string, rate decimal.Decimal, components []Component, original, price decimal.Decimal) Config {
	original = original.Round(2)
	price = price.Round(2)
	absolute := original.Sub(price)
	percentage := decimal.Zero
	if original.IsPositive() {
		percentage = absolute.Div(original).Shift(2).Round(2)
	}
	return Config{
		ID:            id,
		Name:          name,
		DiscountRate:  rate,
		Components:    components,
		OriginalPrice: original,
		BundlePrice:   price,
		Savings:       Savings{Absolute: absolute, Percentage: percentage},
	}
}

type fileComponent struct {
	Category string `json:"category"`
	Name     string `json:"name"`
	Price    string `json:"price"`
}

type fileBundle struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Image        string          `json:"image"`
	DiscountRate string          `json:"discountRate"`
	BundlePrice  string          `json:"bundlePrice"`
	Components   []fileComponent `json:"components"`
}

type pricingFile struct {
	Bundles []fileBundle `json:"bundles"`
}

// ParseConfigs decodes a pricing document. A bundle without a fixed price is
// computed from its discount rate.
func ParseConfigs(raw []byte) ([]Config, error) {
	var f pricingFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("failed to parse bundle pricing: %w", err)
	}

	var errs error
	configs := make([]Config, 0, len(f.Bundles))
	for _, fb := range f.Bundles {
		cfg, err := fb.config()
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("bundle %s: %w", fb.ID, err))
			continue
		}
		configs = append(configs, cfg)
	}
	if errs != nil {
		return nil, errs
	}
	return configs, nil
}

func (fb fileBundle) config() (Config, error) {
	components := make([]Component, 0, len(fb.Components))
	for _, fc := range fb.Components {
		category, err := catalog.ParseCategory(fc.Category)
		if err != nil {
			return Config{}, err
		}
		price, err := utils.ParsePrice(fc.Price)
		if err != nil {
			return Config{}, err
		}
		components = append(components, Component{Category: category, DisplayName: fc.Name, UnitPrice: price})
	}

	rate := decimal.Zero
	if fb.DiscountRate != "" {
		r, err := decimal.NewFromString(fb.DiscountRate)
		if err != nil {
			return Config{}, fmt.Errorf("invalid discount rate %q: %w", fb.DiscountRate, err)
		}
		rate = r
	}

	var cfg Config
	if fb.BundlePrice == "" {
		cfg = Compute(fb.ID, fb.Name, rate, components)
	} else {
		price, err := utils.ParsePrice(fb.BundlePrice)
		if err != nil {
			return Config{}, err
		}
		original := decimal.Zero
		for _, comp := range components {
			original = original.Add(comp.UnitPrice)
		}
		cfg = newConfig(fb.ID, fb.Name, rate, components, original, price)
	}
	cfg.Image = fb.Image
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Pricing holds the bundle configs. Until Load or Set is called every
// lookup returns ErrMissingConfig.
type Pricing struct {
	mu      sync.RWMutex
	loaded  bool
	order   []string
	configs map[string]Config
}

func NewPricing() *Pricing {
	return &Pricing{configs: make(map[string]Config)}
}

// DefaultPricing returns pricing loaded from the embedded bundle table.
func DefaultPricing() (*Pricing, error) {
	p := NewPricing()
	if err := p.Load(embeddedBundles); err != nil {
		return nil, err
	}
	return p, nil
}

// Load replaces every config from a pricing document.
func (p *Pricing) Load(raw []byte) error {
	configs, err := ParseConfigs(raw)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.configs = make(map[string]Config, len(configs))
	p.order = p.order[:0]
	for _, cfg := range configs {
		id := NormalizeID(cfg.ID)
		p.order = append(p.order, id)
		p.configs[id] = cfg
	}
	p.loaded = true
	return nil
}

// Set adds or replaces one config and marks the pricing loaded.
func (p *Pricing) Set(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	id := NormalizeID(cfg.ID)
	if _, ok := p.configs[id]; !ok {
		p.order = append(p.order, id)
	}
	p.configs[id] = cfg
	p.loaded = true
	return nil
}

func (p *Pricing) Loaded() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.loaded
}

// Get returns a bundle config. IDs are matched case-insensitively and a
// "-bundle" suffix is ignored, so "champion-bundle" finds "champion".
func (p *Pricing) Get(id string) (Config, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.loaded {
		return Config{}, ErrMissingConfig
	}
	cfg, ok := p.configs[NormalizeID(id)]
	if !ok {
		return Config{}, fmt.Errorf("%w: %q", ErrUnknownBundle, id)
	}
	return cfg, nil
}

// All returns the configs in load order.
func (p *Pricing) All() ([]Config, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.loaded {
		return nil, ErrMissingConfig
	}
	out := make([]Config, 0, len(p.order))
	for _, id := range p.order {
		out = append(out, p.configs[id])
	}
	return out, nil
}

func NormalizeID(id string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(id)), "-bundle")
}
