package stripe

import (
	"testing"

	"github.com/loganlanou/merch-storefront/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/webhook"
)

const succeededPayload = `{
	"id": "evt_1",
	"object": "event",
	"type": "payment_intent.succeeded",
	"data": {
		"object": {
			"id": "pi_123",
			"object": "payment_intent",
			"status": "succeeded",
			"amount": 9798,
			"currency": "gbp",
			"metadata": {"cart_session": "sess-1"}
		}
	}
}`

func TestWebhookVerifier(t *testing.T) {
	const secret = "whsec_test"
	verifier := NewWebhookVerifier(secret)
	require.True(t, verifier.Verifies())

	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload: []byte(succeededPayload),
		Secret:  secret,
	})
	event, err := verifier.Parse(signed.Payload, signed.Header)
	require.NoError(t, err)
	assert.Equal(t, "evt_1", event.ID)

	_, err = verifier.Parse([]byte(succeededPayload), "t=1,v1=deadbeef")
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, apperr.CodeValidation, ae.Code())
	assert.Equal(t, "Invalid signature", ae.Message())
}

func TestWebhookWithoutSecretParsesUnverified(t *testing.T) {
	verifier := NewWebhookVerifier("")
	assert.False(t, verifier.Verifies())

	event, err := verifier.Parse([]byte(succeededPayload), "")
	require.NoError(t, err)
	assert.Equal(t, stripe.EventType("payment_intent.succeeded"), event.Type)

	_, err = verifier.Parse([]byte("{"), "")
	assert.Error(t, err)
}

func TestDecodePaymentIntent(t *testing.T) {
	event, err := NewWebhookVerifier("").Parse([]byte(succeededPayload), "")
	require.NoError(t, err)

	pi, ok, err := DecodePaymentIntent(event)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "sess-1", pi.CartSession)
	assert.Equal(t, "pi_123", pi.Status.ID)
	assert.True(t, pi.Status.Succeeded)
	assert.Equal(t, "97.98", pi.Status.Amount.StringFixed(2))
	assert.Equal(t, "gbp", pi.Status.Currency)

	_, ok, err = DecodePaymentIntent(stripe.Event{Type: "checkout.session.completed"})
	require.NoError(t, err)
	assert.False(t, ok)
}
