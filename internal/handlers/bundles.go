package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/loganlanou/merch-storefront/internal/bundle"
	"github.com/loganlanou/merch-storefront/internal/cart"
	"github.com/loganlanou/merch-storefront/internal/catalog"
	"github.com/loganlanou/merch-storefront/internal/middleware"
	"github.com/shopspring/decimal"
)

type pricingSource interface {
	Get(id string) (bundle.Config, error)
	All() ([]bundle.Config, error)
}

type bundleAssembler interface {
	Assemble(ctx context.Context, cfg bundle.Config, selections bundle.Selections) ([]cart.LineItem, error)
}

type BundleHandler struct {
	pricing   pricingSource
	assembler bundleAssembler
	carts     cart.Store
	logger    *slog.Logger
}

func NewBundleHandler(pricing pricingSource, assembler bundleAssembler, carts cart.Store, logger *slog.Logger) *BundleHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &BundleHandler{pricing: pricing, assembler: assembler, carts: carts, logger: logger}
}

// AddBundleRequest carries one selection per component, keyed by category.
type AddBundleRequest struct {
	Selections map[string]bundle.Selection `json:"selections"`
}

type AddBundleResponse struct {
	Added   []cart.LineItem `json:"added"`
	Savings decimal.Decimal `json:"savings"`
	Cart    CartView        `json:"cart"`
}

func (h *BundleHandler) HandleListBundles(c echo.Context) error {
	configs, err := h.pricing.All()
	if err != nil {
		return Error(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"bundles": configs})
}

// HandleGetBundle returns a bundle's pricing, or 503 with Retry-After while
// pricing is still loading.
func (h *BundleHandler) HandleGetBundle(c echo.Context) error {
	cfg, err := h.pricing.Get(c.Param("id"))
	if err != nil {
		return Error(c, err)
	}
	return c.JSON(http.StatusOK, cfg)
}

// HandleAddToCart assembles the bundle and adds every line in one batch.
// Nothing is added when any component fails to resolve.
func (h *BundleHandler) HandleAddToCart(c echo.Context) error {
	var req AddBundleRequest
	if err := c.Bind(&req); err != nil {
		return errInvalidBody
	}

	selections := make(bundle.Selections, len(req.Selections))
	for key, sel := range req.Selections {
		category, err := catalog.ParseCategory(key)
		if err != nil {
			return Error(c, err)
		}
		selections[category] = sel
	}

	cfg, err := h.pricing.Get(c.Param("id"))
	if err != nil {
		return Error(c, err)
	}

	ctx := c.Request().Context()
	items, err := h.assembler.Assemble(ctx, cfg, selections)
	if err != nil {
		return Error(c, err)
	}

	sessionID := middleware.SessionID(c)
	if err := h.carts.AddBatch(ctx, sessionID, items); err != nil {
		h.logger.Error("failed to add bundle to cart", "error", err, "bundle", cfg.ID, "session_id", sessionID)
		return Error(c, err)
	}

	current, err := h.carts.Get(ctx, sessionID)
	if err != nil {
		return Error(c, err)
	}
	return c.JSON(http.StatusCreated, AddBundleResponse{
		Added:   items,
		Savings: bundle.TotalSavings(items),
		Cart:    NewCartView(current),
	})
}
