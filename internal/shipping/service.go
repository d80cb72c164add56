package shipping

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/loganlanou/merch-storefront/internal/apperr"
	"github.com/loganlanou/merch-storefront/internal/cart"
	"github.com/loganlanou/merch-storefront/internal/catalog"
	"github.com/loganlanou/merch-storefront/internal/checkout"
	"github.com/loganlanou/merch-storefront/internal/metrics"
	"github.com/loganlanou/merch-storefront/internal/utils"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultTTL          = 5 * time.Minute
	DefaultFallbackTTL  = time.Minute
	DefaultFetchTimeout = 15 * time.Second

	FallbackOptionID = "fallback_standard"

	reasonProviderError = "provider_error"
	reasonNoOptions     = "no_options"
)

var ErrNoShippableItems = apperr.New(apperr.CodeValidation, "No shippable items in cart")

type Option = checkout.ShippingOption

// Line is a shippable cart line reduced to what the packer needs.
type Line struct {
	Category catalog.Category `json:"category"`
	Quantity int              `json:"quantity"`
}

type QuoteRequest struct {
	Recipient checkout.Address        `json:"recipient"`
	Items     []checkout.ShippingItem `json:"items"`
	Lines     []Line                  `json:"-"`
}

// NewQuoteRequest builds a quote request from cart lines. Discount lines
// are left out of both the items and the parcel.
func NewQuoteRequest(recipient checkout.Address, items []cart.LineItem) QuoteRequest {
	req := QuoteRequest{
		Recipient: recipient.Normalize(),
		Items:     checkout.ShippingItems(items),
	}
	for _, item := range items {
		if item.IsDiscount {
			continue
		}
		category := item.Category
		if category == "" && item.Ref != nil {
			category = item.Ref.Category
		}
		req.Lines = append(req.Lines, Line{Category: category, Quantity: item.Quantity})
	}
	return req
}

type Quote struct {
	Options    []Option `json:"options"`
	TTLSeconds int      `json:"ttlSeconds"`
	Fallback   bool     `json:"fallback,omitempty"`
	Cached     bool     `json:"cached,omitempty"`
}

type Quoter interface {
	Quote(ctx context.Context, req QuoteRequest) (*Quote, error)
}

// Provider fetches live rates. A zero TTLSeconds in the response leaves the
// service default in place.
type Provider interface {
	Rates(ctx context.Context, req QuoteRequest) (*checkout.ShippingQuoteResponse, error)
}

type Cache interface {
	Get(ctx context.Context, key string) (*Quote, bool, error)
	Set(ctx context.Context, key string, quote *Quote, ttl time.Duration) error
}

type Service struct {
	provider    Provider
	cache       Cache
	logger      *slog.Logger
	metrics     *metrics.Metrics
	ttl         time.Duration
	fallbackTTL time.Duration
	timeout     time.Duration
	group       singleflight.Group
}

type ServiceOption func(*Service)

func WithTTL(ttl, fallbackTTL time.Duration) ServiceOption {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
		if fallbackTTL > 0 {
			s.fallbackTTL = fallbackTTL
		}
	}
}

// WithFetchTimeout bounds a provider fetch. The fetch is shared by every
// caller waiting on the same key, so it does not follow any one caller's
// context.
func WithFetchTimeout(timeout time.Duration) ServiceOption {
	return func(s *Service) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

func WithMetrics(m *metrics.Metrics) ServiceOption {
	return func(s *Service) {
		s.metrics = m
	}
}

func NewService(provider Provider, cache Cache, logger *slog.Logger, opts ...ServiceOption) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if cache == nil {
		cache = NewMemoryCache()
	}
	s := &Service{
		provider:    provider,
		cache:       cache,
		logger:      logger,
		ttl:         DefaultTTL,
		fallbackTTL: DefaultFallbackTTL,
		timeout:     DefaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CacheKey identifies a quote by destination and the sorted item list.
func CacheKey(req QuoteRequest) string {
	items := append([]checkout.ShippingItem(nil), req.Items...)
	sort.SliceStable(items, func(i, j int) bool {
		return lessVariant(items[i].PrintfulVariantID, items[j].PrintfulVariantID)
	})

	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, item.PrintfulVariantID.String()+":"+strconv.Itoa(item.Quantity))
	}

	recipient := req.Recipient.Normalize()
	return strings.Join([]string{
		"shipping",
		recipient.CountryCode,
		recipient.StateCode,
		recipient.Zip,
		strings.Join(parts, ","),
	}, ":")
}

func lessVariant(a, b checkout.VariantID) bool {
	an, aok := a.Int()
	bn, bok := b.Int()
	switch {
	case aok && bok:
		return an < bn
	case aok != bok:
		return aok
	}
	return a.String() < b.String()
}

// Quote returns cached rates when present. Otherwise it fetches once per key
// across concurrent callers and falls back to a flat standard rate when the
// provider fails or returns nothing.
func (s *Service) Quote(ctx context.Context, req QuoteRequest) (*Quote, error) {
	req.Recipient = req.Recipient.Normalize()
	if err := req.Recipient.Validate(); err != nil {
		return nil, err
	}
	if len(req.Items) == 0 {
		return nil, ErrNoShippableItems
	}

	key := CacheKey(req)
	if quote, ok := s.cached(ctx, key); ok {
		return quote, nil
	}

	ch := s.group.DoChan(key, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()
		return s.fetch(fetchCtx, key, req), nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Quote), nil
	}
}

func (s *Service) cached(ctx context.Context, key string) (*Quote, bool) {
	quote, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("shipping cache read failed", "key", key, "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	s.metrics.IncShippingCacheHit()
	quote.Cached = true
	return quote, true
}

func (s *Service) fetch(ctx context.Context, key string, req QuoteRequest) *Quote {
	if s.provider == nil {
		return s.fallback(ctx, key, reasonProviderError, errors.New("no shipping provider configured"))
	}

	resp, err := s.provider.Rates(ctx, req)
	if err != nil {
		return s.fallback(ctx, key, reasonProviderError, err)
	}
	if resp == nil || len(resp.Options) == 0 {
		return s.fallback(ctx, key, reasonNoOptions, nil)
	}

	options := append([]Option(nil), resp.Options...)
	if utils.IsUK(req.Recipient.CountryCode) {
		for i := range options {
			options[i].MinDeliveryDays = utils.DeliveryUKMinDays
			options[i].MaxDeliveryDays = utils.DeliveryUKMaxDays
		}
	}
	SortOptions(options)

	ttl := s.ttl
	if resp.TTLSeconds > 0 {
		ttl = time.Duration(resp.TTLSeconds) * time.Second
	}
	quote := &Quote{Options: options, TTLSeconds: int(ttl / time.Second)}
	s.store(ctx, key, quote, ttl)
	return quote
}

func (s *Service) fallback(ctx context.Context, key, reason string, cause error) *Quote {
	s.metrics.IncShippingFallback(reason)
	s.logger.Warn("using fallback shipping rate", "key", key, "reason", reason, "error", cause)

	quote := &Quote{
		Options:    []Option{FallbackOption()},
		TTLSeconds: int(s.fallbackTTL / time.Second),
		Fallback:   true,
	}
	s.store(ctx, key, quote, s.fallbackTTL)
	return quote
}

func (s *Service) store(ctx context.Context, key string, quote *Quote, ttl time.Duration) {
	if err := s.cache.Set(ctx, key, quote, ttl); err != nil {
		s.logger.Warn("shipping cache write failed", "key", key, "error", err)
	}
}

func FallbackOption() Option {
	return Option{
		ID:              FallbackOptionID,
		Name:            "Standard Delivery",
		Rate:            decimal.RequireFromString("3.99"),
		Currency:        "GBP",
		MinDeliveryDays: utils.DeliveryUKMinDays,
		MaxDeliveryDays: utils.DeliveryUKMaxDays,
	}
}

// SortOptions orders by price, then by fastest delivery.
func SortOptions(options []Option) {
	sort.SliceStable(options, func(i, j int) bool {
		if c := options[i].Rate.Cmp(options[j].Rate); c != 0 {
			return c < 0
		}
		if options[i].MinDeliveryDays != options[j].MinDeliveryDays {
			return options[i].MinDeliveryDays < options[j].MinDeliveryDays
		}
		return options[i].MaxDeliveryDays < options[j].MaxDeliveryDays
	})
}
