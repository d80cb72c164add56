package catalog

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/loganlanou/merch-storefront/internal/metrics"
)

// Resolver turns a garment selection into a variant, retrying the other
// design bucket when the classifier and the catalog disagree.
type Resolver struct {
	catalog    *Catalog[Design]
	classifier *Classifier
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

func NewResolver(c *Catalog[Design], classifier *Classifier, logger *slog.Logger, m *metrics.Metrics) *Resolver {
	if classifier == nil {
		classifier = ClassifierFor(c)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		catalog:    c,
		classifier: classifier,
		logger:     logger,
		metrics:    m,
	}
}

func (r *Resolver) Catalog() *Catalog[Design] { return r.catalog }

// Resolve looks up a size and color, starting with the classifier's bucket.
func (r *Resolver) Resolve(size Size, color string) (Variant[Design], error) {
	return r.ResolveDesign(r.classifier.Classify(color), size, color)
}

// ResolveDesign tries the given design first, then the other bucket. An
// empty or unknown design is replaced by the classifier's choice.
func (r *Resolver) ResolveDesign(design Design, size Size, color string) (Variant[Design], error) {
	if design != DesignDark && design != DesignLight {
		design = r.classifier.Classify(color)
	}

	v, err := r.catalog.Find(design, size, color)
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, ErrVariantNotFound) {
		return Variant[Design]{}, err
	}

	fallback := design.Other()
	v, err = r.catalog.Find(fallback, size, color)
	if err == nil {
		r.logger.Warn("variant resolved via fallback design",
			"product", r.catalog.Category(),
			"color", color,
			"size", size,
			"requested_design", design,
			"fallback_design", fallback,
		)
		r.metrics.IncResolverFallback(string(r.catalog.Category()))
		return v, nil
	}

	r.metrics.IncVariantNotFound(string(r.catalog.Category()))
	return Variant[Design]{}, fmt.Errorf("%w: %s size %s color %q in %s or %s",
		ErrVariantNotFound, r.catalog.Category(), size, color, design, fallback)
}

// AccessoryResolver resolves one-size products where only the color varies.
type AccessoryResolver struct {
	catalog *Catalog[Style]
	metrics *metrics.Metrics
}

func NewAccessoryResolver(c *Catalog[Style], m *metrics.Metrics) *AccessoryResolver {
	return &AccessoryResolver{catalog: c, metrics: m}
}

func (r *AccessoryResolver) Catalog() *Catalog[Style] { return r.catalog }

// Resolve finds the variant for a color. An empty color selects the first
// color offered, which is the only one for single-color products.
func (r *AccessoryResolver) Resolve(color string) (Variant[Style], error) {
	if color == "" {
		if len(r.catalog.swatches) == 0 {
			r.metrics.IncVariantNotFound(string(r.catalog.Category()))
			return Variant[Style]{}, fmt.Errorf("%w: %s has no colors", ErrVariantNotFound, r.catalog.Category())
		}
		color = r.catalog.swatches[0].Name
	}
	for _, size := range r.catalog.sizes {
		if v, err := r.catalog.Find(StyleStandard, size, color); err == nil {
			return v, nil
		}
	}
	r.metrics.IncVariantNotFound(string(r.catalog.Category()))
	return Variant[Style]{}, fmt.Errorf("%w: %s color %q", ErrVariantNotFound, r.catalog.Category(), color)
}
