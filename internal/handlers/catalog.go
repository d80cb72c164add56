package handlers

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/loganlanou/merch-storefront/internal/apperr"
	"github.com/loganlanou/merch-storefront/internal/bundle"
	"github.com/loganlanou/merch-storefront/internal/catalog"
	"github.com/loganlanou/merch-storefront/internal/swatch"
)

type variantResolver interface {
	Resolve(category catalog.Category, sel bundle.Selection) (catalog.Entry, error)
}

type CatalogHandler struct {
	resolver variantResolver
}

func NewCatalogHandler(resolver variantResolver) *CatalogHandler {
	return &CatalogHandler{resolver: resolver}
}

type ProductSummary struct {
	Category     catalog.Category      `json:"category"`
	Name         string                `json:"name"`
	Designs      []string              `json:"designs"`
	Sizes        []catalog.Size        `json:"sizes"`
	Colors       []catalog.ColorSwatch `json:"colors"`
	VariantCount int                   `json:"variant_count"`
}

func summarize(p catalog.Product) ProductSummary {
	return ProductSummary{
		Category:     p.Category(),
		Name:         p.Name(),
		Designs:      p.DesignNames(),
		Sizes:        p.Sizes(),
		Colors:       p.ColorSwatches(),
		VariantCount: p.Len(),
	}
}

// HandleListProducts returns every product with its options.
func (h *CatalogHandler) HandleListProducts(c echo.Context) error {
	products := catalog.Products()
	out := make([]ProductSummary, 0, len(products))
	for _, p := range products {
		out = append(out, summarize(p))
	}
	return c.JSON(http.StatusOK, map[string]any{"products": out})
}

// HandleProduct returns one product's designs, sizes and colors, with the
// colors ordered dark to light.
func (h *CatalogHandler) HandleProduct(c echo.Context) error {
	p, err := productParam(c)
	if err != nil {
		return Error(c, err)
	}
	return c.JSON(http.StatusOK, summarize(p))
}

// HandleVariant resolves ?design=&size=&color=. Without a design the color's
// bucket is used, and a miss falls back to the other bucket.
func (h *CatalogHandler) HandleVariant(c echo.Context) error {
	category, err := catalog.ParseCategory(c.Param("category"))
	if err != nil {
		return Error(c, err)
	}

	sel := bundle.Selection{
		Size:  catalog.Size(strings.TrimSpace(c.QueryParam("size"))),
		Color: strings.TrimSpace(c.QueryParam("color")),
	}
	if raw := c.QueryParam("design"); raw != "" {
		design, ok := catalog.ParseDesign(raw)
		if !ok {
			return Error(c, apperr.New(apperr.CodeValidation, "design must be DARK or LIGHT"))
		}
		sel.Design = design
	}
	if category.IsGarment() && (sel.Size == "" || sel.Color == "") {
		return Error(c, apperr.New(apperr.CodeValidation, "size and color are required"))
	}

	entry, err := h.resolver.Resolve(category, sel)
	if err != nil {
		return Error(c, err)
	}
	return c.JSON(http.StatusOK, entry)
}

// HandleVariantByID is the reverse lookup by catalog variant ID.
func (h *CatalogHandler) HandleVariantByID(c echo.Context) error {
	p, err := productParam(c)
	if err != nil {
		return Error(c, err)
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return Error(c, apperr.New(apperr.CodeValidation, "variant id must be a positive number"))
	}
	entry, err := p.EntryByCatalogID(id)
	if err != nil {
		return Error(c, err)
	}
	return c.JSON(http.StatusOK, entry)
}

// HandleSwatch renders a PNG swatch for one of the product's colors.
// ?size= sets the circle size and ?label=1 prints the color name.
func (h *CatalogHandler) HandleSwatch(c echo.Context) error {
	p, err := productParam(c)
	if err != nil {
		return Error(c, err)
	}
	name, err := url.PathUnescape(c.Param("color"))
	if err != nil {
		return Error(c, apperr.New(apperr.CodeValidation, "invalid color"))
	}

	var (
		found catalog.ColorSwatch
		ok    bool
	)
	for _, sw := range p.ColorSwatches() {
		if strings.EqualFold(sw.Name, name) {
			found, ok = sw, true
			break
		}
	}
	if !ok {
		return Error(c, apperr.New(apperr.CodeNotFound, "color not offered for "+p.Name()))
	}

	size := swatch.DefaultSize
	if raw := c.QueryParam("size"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			size = n
		}
	}
	label := ""
	if c.QueryParam("label") == "1" {
		label = found.Name
	}

	png, err := swatch.Render(found.Hex, label, size)
	if err != nil {
		return Error(c, err)
	}
	c.Response().Header().Set("Cache-Control", "public, max-age=86400")
	return c.Blob(http.StatusOK, "image/png", png)
}

func productParam(c echo.Context) (catalog.Product, error) {
	category, err := catalog.ParseCategory(c.Param("category"))
	if err != nil {
		return nil, err
	}
	return catalog.ProductFor(category)
}
