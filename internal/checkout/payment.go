package checkout

import (
	"github.com/loganlanou/merch-storefront/internal/cart"
	"github.com/loganlanou/merch-storefront/internal/utils"
	"github.com/shopspring/decimal"
)

const (
	ProductTypeBundle = "bundle"
	ProductTypeSingle = "single"
)

// PaymentItem is a cart line in the payment-intent request.
type PaymentItem struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Price             float64 `json:"price"`
	Quantity          int     `json:"quantity"`
	PrintfulVariantID string  `json:"printful_variant_id"`
	ProductType       string  `json:"product_type"`
	Image             string  `json:"image,omitempty"`
	Color             string  `json:"color,omitempty"`
	Size              string  `json:"size,omitempty"`
	IsDiscount        bool    `json:"isDiscount,omitempty"`
}

// ToPaymentItems converts cart lines for the payment-intent request. A line
// without a variant ID sends its own ID in that field.
func ToPaymentItems(items []cart.LineItem) []PaymentItem {
	out := make([]PaymentItem, 0, len(items))
	for _, item := range items {
		variantID := item.PrintfulVariantID
		if variantID == "" {
			variantID = item.ID
		}
		productType := ProductTypeSingle
		if item.IsPartOfBundle {
			productType = ProductTypeBundle
		}
		out = append(out, PaymentItem{
			ID:                item.ID,
			Name:              item.Name,
			Price:             item.Price.Round(2).InexactFloat64(),
			Quantity:          item.Quantity,
			PrintfulVariantID: variantID,
			ProductType:       productType,
			Image:             item.Image,
			Color:             item.Color,
			Size:              item.Size,
			IsDiscount:        item.IsDiscount,
		})
	}
	return out
}

// ShippingItem is a shippable line in the shipping-quote request.
type ShippingItem struct {
	PrintfulVariantID VariantID `json:"printful_variant_id"`
	Quantity          int       `json:"quantity"`
}

// ShippingItems drops discount lines and coerces numeric variant IDs.
func ShippingItems(items []cart.LineItem) []ShippingItem {
	out := make([]ShippingItem, 0, len(items))
	for _, item := range items {
		if item.IsDiscount {
			continue
		}
		out = append(out, ShippingItem{
			PrintfulVariantID: ParseVariantID(item.PrintfulVariantID),
			Quantity:          item.Quantity,
		})
	}
	return out
}

type ShippingQuoteRequest struct {
	Recipient Address        `json:"recipient"`
	Items     []ShippingItem `json:"items"`
}

// NewShippingQuoteRequest builds the quote request for a cart.
func NewShippingQuoteRequest(recipient Address, items []cart.LineItem) ShippingQuoteRequest {
	return ShippingQuoteRequest{Recipient: recipient.Normalize(), Items: ShippingItems(items)}
}

// ShippingOption is one rate returned by a quote.
type ShippingOption struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Rate            decimal.Decimal `json:"rate"`
	Currency        string          `json:"currency"`
	MinDeliveryDays int             `json:"minDeliveryDays"`
	MaxDeliveryDays int             `json:"maxDeliveryDays"`
}

type ShippingQuoteResponse struct {
	Options    []ShippingOption `json:"options"`
	TTLSeconds int              `json:"ttlSeconds,omitempty"`
}

type PaymentIntentRequest struct {
	Items           []PaymentItem     `json:"items" validate:"required,min=1"`
	ShippingAddress Address           `json:"shipping_address"`
	CustomerEmail   string            `json:"customer_email" validate:"required,email"`
	Currency        string            `json:"currency,omitempty"`
	Metadata        map[string]string `json:"metadata,omitempty"`
	GuestCheckout   bool              `json:"guest_checkout,omitempty"`
}

// NewPaymentIntentRequest filters the cart and builds the request. It fails
// when no valid items remain; dropped is reported either way.
func NewPaymentIntentRequest(items []cart.LineItem, address Address, email string, metadata map[string]string) (PaymentIntentRequest, int, error) {
	valid, dropped := Filter(items)
	req := PaymentIntentRequest{
		Items:           ToPaymentItems(valid),
		ShippingAddress: address.Normalize(),
		CustomerEmail:   email,
		Currency:        utils.DefaultCurrency,
		Metadata:        metadata,
		GuestCheckout:   true,
	}
	if err := req.ShippingAddress.Validate(); err != nil {
		return req, dropped, err
	}
	if err := ValidateStruct(req); err != nil {
		return req, dropped, err
	}
	return req, dropped, nil
}

type PaymentIntentResponse struct {
	ClientSecret    string  `json:"client_secret"`
	Amount          int64   `json:"amount"`
	Currency        string  `json:"currency"`
	ShippingCost    float64 `json:"shipping_cost"`
	Subtotal        float64 `json:"subtotal"`
	Total           float64 `json:"total"`
	PaymentIntentID string  `json:"payment_intent_id"`
}

type ConfirmRequest struct {
	PaymentIntentID string `json:"payment_intent_id" validate:"required"`
}

type ConfirmResponse struct {
	Success       bool   `json:"success"`
	OrderID       string `json:"order_id,omitempty"`
	OrderNumber   string `json:"order_number,omitempty"`
	PaymentStatus string `json:"payment_status"`
	Message       string `json:"message"`
}
