package stripe

import (
	"encoding/json"
	"fmt"

	"github.com/loganlanou/merch-storefront/internal/apperr"
	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/webhook"
)

const (
	EventPaymentIntentSucceeded = "payment_intent.succeeded"
	EventPaymentIntentFailed    = "payment_intent.payment_failed"

	MetadataCartSession = "cart_session"
)

var ErrInvalidSignature = apperr.New(apperr.CodeValidation, "Invalid signature")

// WebhookVerifier checks Stripe-Signature headers. Without a secret it
// parses events unverified, which is only meant for local development.
type WebhookVerifier struct {
	secret string
}

func NewWebhookVerifier(secret string) *WebhookVerifier {
	return &WebhookVerifier{secret: secret}
}

func (v *WebhookVerifier) Verifies() bool {
	return v != nil && v.secret != ""
}

func (v *WebhookVerifier) Parse(payload []byte, signatureHeader string) (stripe.Event, error) {
	var event stripe.Event
	if !v.Verifies() {
		if err := json.Unmarshal(payload, &event); err != nil {
			return event, apperr.Wrap(apperr.CodeValidation, err, "Error parsing webhook JSON")
		}
		return event, nil
	}

	event, err := webhook.ConstructEventWithOptions(payload, signatureHeader, v.secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return event, apperr.Wrap(apperr.CodeValidation, err, ErrInvalidSignature.Message())
	}
	return event, nil
}

// PaymentIntentEvent is the part of a payment_intent.* event the cart cares
// about.
type PaymentIntentEvent struct {
	Type        stripe.EventType
	Status      IntentStatus
	CartSession string
}

// DecodePaymentIntent reports false for events that do not carry a payment
// intent.
func DecodePaymentIntent(event stripe.Event) (*PaymentIntentEvent, bool, error) {
	if event.Type != EventPaymentIntentSucceeded && event.Type != EventPaymentIntentFailed {
		return nil, false, nil
	}
	if event.Data == nil {
		return nil, false, apperr.New(apperr.CodeValidation, "Error parsing webhook JSON")
	}

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return nil, false, apperr.Wrap(apperr.CodeValidation, err, "Error parsing webhook JSON")
	}
	if pi.ID == "" {
		return nil, false, apperr.New(apperr.CodeValidation, fmt.Sprintf("%s event without payment intent id", event.Type))
	}

	return &PaymentIntentEvent{
		Type:        event.Type,
		Status:      NewIntentStatus(pi.ID, pi.Status, pi.Amount, string(pi.Currency)),
		CartSession: pi.Metadata[MetadataCartSession],
	}, true, nil
}
