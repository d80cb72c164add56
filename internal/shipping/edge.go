package shipping

import (
	"context"

	"github.com/loganlanou/merch-storefront/internal/checkout"
)

type edgeQuoter interface {
	ShippingQuotes(ctx context.Context, req checkout.ShippingQuoteRequest) (*checkout.ShippingQuoteResponse, error)
}

// EdgeProvider asks the shipping-quotes function for rates.
type EdgeProvider struct {
	client edgeQuoter
}

func NewEdgeProvider(client edgeQuoter) *EdgeProvider {
	return &EdgeProvider{client: client}
}

func (p *EdgeProvider) Rates(ctx context.Context, req QuoteRequest) (*checkout.ShippingQuoteResponse, error) {
	return p.client.ShippingQuotes(ctx, checkout.ShippingQuoteRequest{
		Recipient: req.Recipient,
		Items:     req.Items,
	})
}
