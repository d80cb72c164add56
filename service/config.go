package service

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/loganlanou/merch-storefront/internal/checkout"
	"github.com/loganlanou/merch-storefront/internal/utils"
	"go.uber.org/multierr"
)

const (
	ShippingProviderEdge     = "edge"
	ShippingProviderEasyPost = "easypost"
)

type Config struct {
	Environment string        `envconfig:"ENVIRONMENT" default:"development"`
	Port        string        `envconfig:"PORT" default:"8000"`
	DBPath      string        `envconfig:"DB_PATH" default:"./db/storefront.db"`
	Currency    string        `envconfig:"CURRENCY" default:"gbp"`
	CartTTL     time.Duration `envconfig:"CART_TTL" default:"168h"`

	Edge     EdgeConfig
	Shipping ShippingConfig
	Stripe   StripeConfig
}

// EdgeConfig points at the Supabase functions that create and confirm
// payment intents and quote shipping.
type EdgeConfig struct {
	FunctionsURL string        `envconfig:"SUPABASE_FUNCTIONS_URL"`
	AnonKey      string        `envconfig:"SUPABASE_ANON_KEY"`
	Timeout      time.Duration `envconfig:"EDGE_TIMEOUT" default:"15s"`
}

type ShippingConfig struct {
	Provider       string        `envconfig:"SHIPPING_PROVIDER" default:"edge"`
	CacheTTL       time.Duration `envconfig:"SHIPPING_CACHE_TTL" default:"5m"`
	FallbackTTL    time.Duration `envconfig:"SHIPPING_FALLBACK_TTL" default:"1m"`
	RedisURL       string        `envconfig:"REDIS_URL"`
	EasyPostAPIKey string        `envconfig:"EASYPOST_API_KEY"`

	FromName     string `envconfig:"SHIP_FROM_NAME" default:"Storefront Fulfilment"`
	FromAddress1 string `envconfig:"SHIP_FROM_ADDRESS1"`
	FromCity     string `envconfig:"SHIP_FROM_CITY"`
	FromZip      string `envconfig:"SHIP_FROM_ZIP"`
	FromCountry  string `envconfig:"SHIP_FROM_COUNTRY" default:"GB"`
}

// From is the ship-from address used by the EasyPost provider.
func (s ShippingConfig) From() checkout.Address {
	return checkout.Address{
		Name:        s.FromName,
		Address1:    s.FromAddress1,
		City:        s.FromCity,
		CountryCode: s.FromCountry,
		Zip:         s.FromZip,
	}.Normalize()
}

type StripeConfig struct {
	SecretKey     string `envconfig:"STRIPE_SECRET_KEY"`
	WebhookSecret string `envconfig:"STRIPE_WEBHOOK_SECRET"`
}

func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Environment, "development")
}

// LoadConfig reads .env when present, then the environment.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs error
	c.Shipping.Provider = strings.ToLower(strings.TrimSpace(c.Shipping.Provider))
	switch c.Shipping.Provider {
	case ShippingProviderEdge, ShippingProviderEasyPost:
	default:
		errs = multierr.Append(errs, fmt.Errorf("SHIPPING_PROVIDER must be %q or %q, got %q",
			ShippingProviderEdge, ShippingProviderEasyPost, c.Shipping.Provider))
	}
	if c.Shipping.CacheTTL <= 0 || c.Shipping.FallbackTTL <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("shipping cache TTLs must be positive"))
	}
	if c.Edge.Timeout <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("EDGE_TIMEOUT must be positive"))
	}
	if c.CartTTL <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("CART_TTL must be positive"))
	}
	if c.Stripe.WebhookSecret == "" && !c.IsDevelopment() {
		errs = multierr.Append(errs, fmt.Errorf("STRIPE_WEBHOOK_SECRET is required outside development"))
	}
	if !strings.EqualFold(c.Currency, utils.DefaultCurrency) {
		errs = multierr.Append(errs, fmt.Errorf("CURRENCY %q is not supported", c.Currency))
	}
	return errs
}
