package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/loganlanou/merch-storefront/internal/apperr"
)

const (
	FunctionCreatePaymentIntent  = "create-payment-intent"
	FunctionConfirmPaymentIntent = "confirm-payment-intent"
	FunctionShippingQuotes       = "shipping-quotes"
)

var ErrEdgeNotConfigured = apperr.New(apperr.CodeDependency, "edge functions are not configured")

// EdgeClient calls the hosted functions that create payment intents,
// confirm them and quote shipping.
type EdgeClient struct {
	baseURL string
	anonKey string
	client  *http.Client
	logger  *slog.Logger
}

func NewEdgeClient(baseURL, anonKey string, timeout time.Duration, logger *slog.Logger) *EdgeClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &EdgeClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		anonKey: anonKey,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Configured reports whether a functions URL was provided.
func (c *EdgeClient) Configured() bool {
	return c != nil && c.baseURL != ""
}

type edgeError struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

func (c *EdgeClient) invoke(ctx context.Context, function string, body, out any) error {
	if !c.Configured() {
		return ErrEdgeNotConfigured
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal %s request: %w", function, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+function, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", function, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.anonKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.anonKey)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return apperr.Wrap(apperr.CodeDependency, err, function+" request failed")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperr.Wrap(apperr.CodeDependency, err, "failed to read "+function+" response")
	}

	c.logger.Debug("edge function called",
		"function", function,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	var ee edgeError
	_ = json.Unmarshal(raw, &ee)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := ee.message()
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return apperr.New(apperr.CodeDependency, fmt.Sprintf("%s error: %d - %s", function, resp.StatusCode, msg))
	}
	if msg := ee.message(); msg != "" {
		return apperr.New(apperr.CodeDependency, fmt.Sprintf("%s error: %s", function, msg))
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return apperr.Wrap(apperr.CodeDependency, err, "invalid "+function+" response")
	}
	return nil
}

func (e edgeError) message() string {
	if e.Details != "" {
		return e.Details
	}
	return e.Error
}

func (c *EdgeClient) CreatePaymentIntent(ctx context.Context, req PaymentIntentRequest) (*PaymentIntentResponse, error) {
	var resp PaymentIntentResponse
	if err := c.invoke(ctx, FunctionCreatePaymentIntent, req, &resp); err != nil {
		return nil, err
	}
	if resp.ClientSecret == "" || resp.PaymentIntentID == "" {
		return nil, apperr.New(apperr.CodeDependency, "no data returned from payment intent function")
	}
	return &resp, nil
}

func (c *EdgeClient) ConfirmPaymentIntent(ctx context.Context, req ConfirmRequest) (*ConfirmResponse, error) {
	var resp ConfirmResponse
	if err := c.invoke(ctx, FunctionConfirmPaymentIntent, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ShippingQuotes fetches raw rates. Caching and fallback belong to the
// caller.
func (c *EdgeClient) ShippingQuotes(ctx context.Context, req ShippingQuoteRequest) (*ShippingQuoteResponse, error) {
	var resp ShippingQuoteResponse
	if err := c.invoke(ctx, FunctionShippingQuotes, req, &resp); err != nil {
		return nil, err
	}
	if resp.Options == nil {
		return nil, apperr.New(apperr.CodeDependency, "invalid response from shipping API")
	}
	return &resp, nil
}
