package stripe

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/loganlanou/merch-storefront/internal/apperr"
	"github.com/loganlanou/merch-storefront/internal/utils"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/paymentintent"
)

// StatusRequiresSourceAction is the pre-2019 name Stripe still reports on
// some older integrations.
const StatusRequiresSourceAction stripe.PaymentIntentStatus = "requires_source_action"

var ErrNotConfigured = apperr.New(apperr.CodeDependency, "stripe is not configured")

// RequiresAction reports whether the customer must complete an extra step
// such as 3D Secure.
func RequiresAction(status stripe.PaymentIntentStatus) bool {
	return status == stripe.PaymentIntentStatusRequiresAction || status == StatusRequiresSourceAction
}

func Succeeded(status stripe.PaymentIntentStatus) bool {
	return status == stripe.PaymentIntentStatusSucceeded
}

var statusTexts = map[stripe.PaymentIntentStatus]string{
	stripe.PaymentIntentStatusRequiresPaymentMethod: "Waiting for payment method",
	stripe.PaymentIntentStatusRequiresConfirmation:  "Confirming payment",
	stripe.PaymentIntentStatusRequiresAction:        "Additional authentication required",
	stripe.PaymentIntentStatusProcessing:            "Processing payment",
	stripe.PaymentIntentStatusSucceeded:             "Payment successful",
	stripe.PaymentIntentStatusCanceled:              "Payment canceled",
	stripe.PaymentIntentStatusRequiresCapture:       "Payment authorized",
}

// StatusText is the customer-facing description of a payment status.
func StatusText(status stripe.PaymentIntentStatus) string {
	if text, ok := statusTexts[status]; ok {
		return text
	}
	return fmt.Sprintf("Payment status: %s", status)
}

// StripeService looks up payment intents with the secret key. Creation and
// confirmation go through the edge functions.
type StripeService struct {
	intents paymentintent.Client
}

func NewStripeService(apiKey string) *StripeService {
	return &StripeService{
		intents: paymentintent.Client{B: stripe.GetBackend(stripe.APIBackend), Key: apiKey},
	}
}

func (s *StripeService) Configured() bool {
	return s != nil && s.intents.Key != ""
}

type IntentStatus struct {
	ID             string                     `json:"payment_intent_id"`
	Status         stripe.PaymentIntentStatus `json:"status"`
	StatusText     string                     `json:"status_text"`
	RequiresAction bool                       `json:"requires_action"`
	Succeeded      bool                       `json:"succeeded"`
	Amount         decimal.Decimal            `json:"amount"`
	Currency       string                     `json:"currency"`
}

func NewIntentStatus(id string, status stripe.PaymentIntentStatus, amount int64, currency string) IntentStatus {
	return IntentStatus{
		ID:             id,
		Status:         status,
		StatusText:     StatusText(status),
		RequiresAction: RequiresAction(status),
		Succeeded:      Succeeded(status),
		Amount:         utils.FromMinorUnits(amount),
		Currency:       currency,
	}
}

func (s *StripeService) GetIntentStatus(ctx context.Context, id string) (*IntentStatus, error) {
	if !s.Configured() {
		return nil, ErrNotConfigured
	}
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	pi, err := s.intents.Get(id, params)
	if err != nil {
		var se *stripe.Error
		if errors.As(err, &se) && se.HTTPStatusCode == http.StatusNotFound {
			return nil, apperr.Wrap(apperr.CodeNotFound, err, "payment intent not found")
		}
		return nil, apperr.Wrap(apperr.CodeDependency, err, "failed to retrieve payment intent")
	}
	status := NewIntentStatus(pi.ID, pi.Status, pi.Amount, string(pi.Currency))
	return &status, nil
}
