package handlers

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/loganlanou/merch-storefront/internal/cart"
	"github.com/loganlanou/merch-storefront/internal/checkout"
	"github.com/loganlanou/merch-storefront/internal/metrics"
	"github.com/loganlanou/merch-storefront/internal/middleware"
	"github.com/loganlanou/merch-storefront/internal/shipping"
	"github.com/loganlanou/merch-storefront/internal/utils"
)

// CheckoutHandler prepares the session cart for checkout and prices
// delivery.
type CheckoutHandler struct {
	carts   cart.Store
	quoter  shipping.Quoter
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewCheckoutHandler(carts cart.Store, quoter shipping.Quoter, m *metrics.Metrics, logger *slog.Logger) *CheckoutHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CheckoutHandler{carts: carts, quoter: quoter, metrics: m, logger: logger}
}

type ValidateCartResponse struct {
	Items   []cart.LineItem `json:"items"`
	Dropped int             `json:"dropped"`
	Message string          `json:"message,omitempty"`
}

type ShippingRatesRequest struct {
	Recipient checkout.Address `json:"recipient"`
}

type ShippingRatesResponse struct {
	*shipping.Quote
	DeliveryMessage string `json:"delivery_message"`
}

// HandleValidate reports which cart lines can go to checkout.
func (h *CheckoutHandler) HandleValidate(c echo.Context) error {
	valid, dropped, err := h.checkoutItems(c)
	if err != nil {
		return Error(c, err)
	}
	return c.JSON(http.StatusOK, ValidateCartResponse{
		Items:   valid,
		Dropped: dropped,
		Message: checkout.DroppedMessage(dropped),
	})
}

// HandleShippingRates quotes the valid cart lines to the recipient.
func (h *CheckoutHandler) HandleShippingRates(c echo.Context) error {
	var req ShippingRatesRequest
	if err := c.Bind(&req); err != nil {
		return errInvalidBody
	}

	valid, _, err := h.checkoutItems(c)
	if err != nil {
		return Error(c, err)
	}

	quote, err := h.quoter.Quote(c.Request().Context(), shipping.NewQuoteRequest(req.Recipient, valid))
	if err != nil {
		return Error(c, err)
	}
	return c.JSON(http.StatusOK, ShippingRatesResponse{
		Quote:           quote,
		DeliveryMessage: utils.DeliveryMessage(req.Recipient.Normalize().CountryCode),
	})
}

// checkoutItems loads the session cart and filters it, counting and logging
// the lines that were dropped.
func (h *CheckoutHandler) checkoutItems(c echo.Context) ([]cart.LineItem, int, error) {
	sessionID := middleware.SessionID(c)
	current, err := h.carts.Get(c.Request().Context(), sessionID)
	if err != nil {
		return nil, 0, err
	}
	valid, dropped := checkout.Filter(current.Items)
	if dropped > 0 {
		h.metrics.AddCheckoutDropped(dropped)
		h.logger.Warn("dropped cart items with invalid variant ids", "session_id", sessionID, "dropped", dropped)
	}
	return valid, dropped, nil
}
