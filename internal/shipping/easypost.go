package shipping

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/EasyPost/easypost-go/v5"
	"github.com/loganlanou/merch-storefront/internal/apperr"
	"github.com/loganlanou/merch-storefront/internal/checkout"
	"github.com/shopspring/decimal"
)

// EasyPostProvider prices a single estimated parcel with EasyPost. Without
// an API key it returns mock rates so local checkout still works.
type EasyPostProvider struct {
	client *easypost.Client
	from   checkout.Address
	packer *Packer
	logger *slog.Logger
}

func NewEasyPostProvider(apiKey string, from checkout.Address, packer *Packer, logger *slog.Logger) *EasyPostProvider {
	if logger == nil {
		logger = slog.Default()
	}
	if packer == nil {
		packer = NewPacker(DefaultPackingConfig())
	}
	p := &EasyPostProvider{from: from.Normalize(), packer: packer, logger: logger}
	if apiKey != "" {
		p.client = easypost.New(apiKey)
	}
	return p
}

func (p *EasyPostProvider) IsUsingMockData() bool {
	return p.client == nil
}

func (p *EasyPostProvider) Rates(ctx context.Context, req QuoteRequest) (*checkout.ShippingQuoteResponse, error) {
	parcel := p.packer.Pack(req.Lines)
	if p.IsUsingMockData() {
		return &checkout.ShippingQuoteResponse{Options: mockRates(parcel)}, nil
	}

	shipment := &easypost.Shipment{
		FromAddress: toEasyPostAddress(p.from),
		ToAddress:   toEasyPostAddress(req.Recipient),
		Parcel: &easypost.Parcel{
			Length: parcel.Box.L,
			Width:  parcel.Box.W,
			Height: parcel.Box.H,
			Weight: parcel.WeightOz,
		},
	}

	p.logger.Debug("creating easypost shipment",
		"to_country", req.Recipient.CountryCode,
		"to_zip", req.Recipient.Zip,
		"box", parcel.Box.SKU,
		"weight_oz", parcel.WeightOz,
	)

	created, err := p.client.CreateShipmentWithContext(ctx, shipment)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeDependency, err, "failed to create shipment")
	}
	if len(created.Rates) == 0 {
		p.logger.Warn("easypost returned no rates", "shipment_id", created.ID, "messages", created.Messages)
	}

	options := make([]Option, 0, len(created.Rates))
	for _, rate := range created.Rates {
		amount, err := decimal.NewFromString(rate.Rate)
		if err != nil {
			p.logger.Warn("skipping easypost rate with bad amount", "rate_id", rate.ID, "rate", rate.Rate)
			continue
		}
		options = append(options, Option{
			ID:              rate.ID,
			Name:            strings.TrimSpace(rate.Carrier + " " + rate.Service),
			Rate:            amount,
			Currency:        strings.ToUpper(rate.Currency),
			MinDeliveryDays: rate.DeliveryDays,
			MaxDeliveryDays: rate.DeliveryDays,
		})
	}
	return &checkout.ShippingQuoteResponse{Options: options}, nil
}

func toEasyPostAddress(a checkout.Address) *easypost.Address {
	return &easypost.Address{
		Name:    a.Name,
		Street1: a.Address1,
		City:    a.City,
		State:   a.StateCode,
		Zip:     a.Zip,
		Country: a.CountryCode,
	}
}

// mockRates scale with parcel weight. EasyPost weighs in ounces.
func mockRates(parcel Parcel) []Option {
	base := decimal.NewFromFloat(2.99).
		Add(decimal.NewFromFloat(parcel.WeightLbs()).Mul(decimal.NewFromFloat(0.75))).
		Round(2)

	return []Option{
		{
			ID:              "mock-royal-mail-2nd",
			Name:            "Royal Mail 2nd Class",
			Rate:            base,
			Currency:        "GBP",
			MinDeliveryDays: 2,
			MaxDeliveryDays: 3,
		},
		{
			ID:              "mock-royal-mail-1st",
			Name:            "Royal Mail 1st Class",
			Rate:            base.Add(decimal.NewFromFloat(1.50)),
			Currency:        "GBP",
			MinDeliveryDays: 1,
			MaxDeliveryDays: 2,
		},
		{
			ID:              fmt.Sprintf("mock-dpd-%s", parcel.Box.SKU),
			Name:            "DPD Next Day",
			Rate:            base.Add(decimal.NewFromFloat(4.00)),
			Currency:        "GBP",
			MinDeliveryDays: 1,
			MaxDeliveryDays: 1,
		},
	}
}
