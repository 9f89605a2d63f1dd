package stripe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v84"

	"github.com/bizzyglass/bizzyglass-backend/pkg/config"
	"github.com/bizzyglass/bizzyglass-backend/pkg/logger"
)

const (
	testEnv = "test"
	liveEnv = "live"
)

// keyPrefixes lists the secret and restricted key prefixes accepted per env.
var keyPrefixes = map[string][]string{
	testEnv: {"sk_test", "rk_test"},
	liveEnv: {"sk_live", "rk_live"},
}

var errAPIKeyRequired = errors.New("stripe api key is required")

// Client is the Stripe API handle used to open checkout sessions for quotes.
type Client struct {
	api         *stripe.Client
	environment string
}

// NewClient refuses a key that does not belong to the configured environment,
// so a live key can never be used from a test deployment and vice versa.
func NewClient(ctx context.Context, cfg config.StripeConfig, logg *logger.Logger) (*Client, error) {
	env := cfg.Environment()
	prefixes, ok := keyPrefixes[env]
	if !ok {
		return nil, fmt.Errorf("stripe environment must be %q or %q, got %q", testEnv, liveEnv, env)
	}

	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errAPIKeyRequired
	}
	if !hasAnyPrefix(apiKey, prefixes) {
		return nil, fmt.Errorf("stripe environment %q requires a key starting with %s", env, strings.Join(prefixes, " or "))
	}

	// checkout/session reads the package-level key.
	stripe.Key = apiKey

	if logg != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{
			"stripe_env": env,
			"currency":   cfg.Currency,
		}), "stripe client initialized")
	}
	return &Client{api: stripe.NewClient(apiKey), environment: env}, nil
}

func (c *Client) API() *stripe.Client {
	if c == nil {
		return nil
	}
	return c.api
}

func (c *Client) Environment() string {
	if c == nil {
		return ""
	}
	return c.environment
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
