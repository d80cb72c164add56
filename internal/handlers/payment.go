package handlers

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/loganlanou/merch-storefront/internal/apperr"
	"github.com/loganlanou/merch-storefront/internal/cart"
	"github.com/loganlanou/merch-storefront/internal/checkout"
	"github.com/loganlanou/merch-storefront/internal/metrics"
	"github.com/loganlanou/merch-storefront/internal/middleware"
	"github.com/loganlanou/merch-storefront/internal/receipt"
	"github.com/loganlanou/merch-storefront/internal/stripe"
	"github.com/loganlanou/merch-storefront/internal/utils"
)

const maxWebhookBytes = 65536

type paymentGateway interface {
	CreatePaymentIntent(ctx context.Context, req checkout.PaymentIntentRequest) (*checkout.PaymentIntentResponse, error)
	ConfirmPaymentIntent(ctx context.Context, req checkout.ConfirmRequest) (*checkout.ConfirmResponse, error)
}

type intentLookup interface {
	GetIntentStatus(ctx context.Context, id string) (*stripe.IntentStatus, error)
}

type PaymentHandler struct {
	carts    cart.Store
	gateway  paymentGateway
	intents  intentLookup
	verifier *stripe.WebhookVerifier
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func NewPaymentHandler(carts cart.Store, gateway paymentGateway, intents intentLookup, verifier *stripe.WebhookVerifier, m *metrics.Metrics, logger *slog.Logger) *PaymentHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PaymentHandler{
		carts:    carts,
		gateway:  gateway,
		intents:  intents,
		verifier: verifier,
		metrics:  m,
		logger:   logger,
	}
}

type CreatePaymentIntentRequest struct {
	ShippingAddress checkout.Address `json:"shipping_address"`
	CustomerEmail   string           `json:"customer_email"`
}

type CreatePaymentIntentResponse struct {
	*checkout.PaymentIntentResponse
	Dropped int    `json:"dropped,omitempty"`
	Message string `json:"message,omitempty"`
}

type ReceiptRequest struct {
	PaymentIntentID string                   `json:"payment_intent_id"`
	OrderNumber     string                   `json:"order_number"`
	CustomerEmail   string                   `json:"customer_email" validate:"required,email"`
	ShipTo          checkout.Address         `json:"ship_to"`
	Shipping        *checkout.ShippingOption `json:"shipping,omitempty"`
}

// CreatePaymentIntent filters the session cart and asks the payment
// function for an intent. The cart session travels in the metadata so the
// webhook can clear the cart once payment succeeds.
func (h *PaymentHandler) CreatePaymentIntent(c echo.Context) error {
	var req CreatePaymentIntentRequest
	if err := c.Bind(&req); err != nil {
		return errInvalidBody
	}

	ctx := c.Request().Context()
	sessionID := middleware.SessionID(c)
	current, err := h.carts.Get(ctx, sessionID)
	if err != nil {
		return Error(c, err)
	}
	if len(current.Items) == 0 {
		return Error(c, apperr.New(apperr.CodeValidation, "Your cart is empty"))
	}

	intentReq, dropped, err := checkout.NewPaymentIntentRequest(
		current.Items,
		req.ShippingAddress,
		strings.TrimSpace(req.CustomerEmail),
		map[string]string{stripe.MetadataCartSession: sessionID},
	)
	if dropped > 0 {
		h.metrics.AddCheckoutDropped(dropped)
		h.logger.Warn("dropped cart items with invalid variant ids", "session_id", sessionID, "dropped", dropped)
	}
	if err != nil {
		return Error(c, err)
	}

	resp, err := h.gateway.CreatePaymentIntent(ctx, intentReq)
	if err != nil {
		h.logger.Error("failed to create payment intent", "error", err, "session_id", sessionID)
		return Error(c, err)
	}

	return c.JSON(http.StatusOK, CreatePaymentIntentResponse{
		PaymentIntentResponse: resp,
		Dropped:               dropped,
		Message:               checkout.DroppedMessage(dropped),
	})
}

func (h *PaymentHandler) ConfirmPayment(c echo.Context) error {
	var req checkout.ConfirmRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	resp, err := h.gateway.ConfirmPaymentIntent(c.Request().Context(), req)
	if err != nil {
		h.logger.Error("failed to confirm payment intent", "error", err, "payment_intent_id", req.PaymentIntentID)
		return Error(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// GetPaymentStatus reports the intent's status with the shopper-facing text.
func (h *PaymentHandler) GetPaymentStatus(c echo.Context) error {
	status, err := h.intents.GetIntentStatus(c.Request().Context(), c.Param("id"))
	if err != nil {
		return Error(c, err)
	}
	return c.JSON(http.StatusOK, status)
}

// DownloadReceipt renders the order summary PDF for the session cart.
func (h *PaymentHandler) DownloadReceipt(c echo.Context) error {
	var req ReceiptRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	current, err := h.carts.Get(c.Request().Context(), middleware.SessionID(c))
	if err != nil {
		return Error(c, err)
	}
	valid, _ := checkout.Filter(current.Items)

	pdf, err := receipt.Render(receipt.Summary{
		OrderNumber:     req.OrderNumber,
		PaymentIntentID: req.PaymentIntentID,
		CustomerEmail:   req.CustomerEmail,
		ShipTo:          req.ShipTo.Normalize(),
		Items:           valid,
		Shipping:        req.Shipping,
		Currency:        utils.DefaultCurrency,
		IssuedAt:        time.Now(),
	})
	if err != nil {
		return Error(c, err)
	}

	name := "order-summary.pdf"
	if req.OrderNumber != "" {
		name = fmt.Sprintf("order-%s.pdf", req.OrderNumber)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}

// HandleWebhook clears the shopper's cart when their payment succeeds.
func (h *PaymentHandler) HandleWebhook(c echo.Context) error {
	payload, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBytes))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Request body too large")
	}

	event, err := h.verifier.Parse(payload, c.Request().Header.Get("Stripe-Signature"))
	if err != nil {
		h.logger.Error("webhook signature verification failed", "error", err)
		return Error(c, err)
	}

	pi, ok, err := stripe.DecodePaymentIntent(event)
	if err != nil {
		return Error(c, err)
	}
	if !ok {
		h.logger.Debug("unhandled webhook event type", "type", event.Type)
		return c.NoContent(http.StatusOK)
	}

	switch pi.Type {
	case stripe.EventPaymentIntentSucceeded:
		h.logger.Info("payment intent succeeded", "payment_intent_id", pi.Status.ID, "amount", pi.Status.Amount)
		if pi.CartSession == "" {
			break
		}
		if err := h.carts.Clear(c.Request().Context(), pi.CartSession); err != nil {
			// A non-2xx response makes Stripe retry the event.
			h.logger.Error("failed to clear cart after payment", "error", err, "session_id", pi.CartSession)
			return Error(c, err)
		}
	case stripe.EventPaymentIntentFailed:
		h.logger.Warn("payment intent failed", "payment_intent_id", pi.Status.ID, "status", pi.Status.StatusText)
	}

	return c.NoContent(http.StatusOK)
}
