package flow

import (
	"net/url"
	"strings"
)

// Environment selects the provider endpoint set. Credentials differ between
// the two, so the value must be explicit rather than inferred.
type Environment string

const (
	EnvironmentSandbox    Environment = "sandbox"
	EnvironmentProduction Environment = "production"
)

// Settings carries everything an SDK transport adapter needs to talk to the
// provider: credentials, environment, return URLs and webhook URLs. The core
// consumes it read-only; loading happens through pkg/config.
type Settings struct {
	Environment Environment `env:"FLOW_ENV" envDefault:"sandbox"`
	APIKey      string      `env:"FLOW_API_KEY,required"`
	Secret      string      `env:"FLOW_SECRET,required"`

	// Return URLs appended by default to transactions that use them.
	PaymentReturnURL string `env:"FLOW_PAYMENT_RETURN_URL"`
	CardReturnURL    string `env:"FLOW_CARD_RETURN_URL"`

	// WebhookDefaults derives the three webhook URLs from BaseURL and
	// WebhookBasePath when no explicit override is set.
	WebhookDefaults bool   `env:"FLOW_WEBHOOK_DEFAULTS" envDefault:"true"`
	BaseURL         string `env:"FLOW_BASE_URL"`
	WebhookBasePath string `env:"FLOW_WEBHOOK_PATH" envDefault:"/flow/webhooks"`

	PaymentWebhookURL string `env:"FLOW_PAYMENT_WEBHOOK_URL"`
	RefundWebhookURL  string `env:"FLOW_REFUND_WEBHOOK_URL"`
	PlanWebhookURL    string `env:"FLOW_PLAN_WEBHOOK_URL"`

	// WebhookSecret is appended as a "secret" query parameter to every
	// webhook URL sent to the provider, and checked by the webhook gate on
	// the way back in. Empty disables the check.
	WebhookSecret string `env:"FLOW_WEBHOOK_SECRET"`

	// Adapter names a registered transport adapter. Empty selects the
	// default HTTP adapter of whatever SDK binding is in use.
	Adapter string `env:"FLOW_ADAPTER"`
}

// IsProduction reports whether real transactions will be issued.
func (s Settings) IsProduction() bool {
	return s.Environment == EnvironmentProduction
}

// Validate checks credentials and environment. Webhook fields are validated
// lazily by WebhookURLs since not every deployment registers webhooks.
func (s Settings) Validate() error {
	if s.APIKey == "" {
		return ErrMissingAPIKey
	}
	if s.Secret == "" {
		return ErrMissingAPISecret
	}
	switch s.Environment {
	case EnvironmentSandbox, EnvironmentProduction:
		return nil
	default:
		return ErrInvalidEnvironment
	}
}

// WebhookURLs holds the resolved notification endpoints registered with the
// provider, one per transaction kind.
type WebhookURLs struct {
	Payment string
	Refund  string
	Plan    string
}

// WebhookURLs resolves the three webhook endpoints. Explicit URLs win; with
// defaults enabled the missing ones are derived from BaseURL + WebhookBasePath
// and the well-known suffixes. The shared secret, when set, is appended to
// each resolved URL as a "secret" query parameter.
func (s Settings) WebhookURLs() (WebhookURLs, error) {
	urls := WebhookURLs{
		Payment: s.PaymentWebhookURL,
		Refund:  s.RefundWebhookURL,
		Plan:    s.PlanWebhookURL,
	}

	if s.WebhookDefaults {
		if s.BaseURL == "" {
			return WebhookURLs{}, ErrMissingBaseURL
		}
		base := strings.TrimSuffix(s.BaseURL, "/") + "/" + strings.Trim(s.WebhookBasePath, "/")
		if urls.Payment == "" {
			urls.Payment = base + "/payment"
		}
		if urls.Refund == "" {
			urls.Refund = base + "/refund"
		}
		if urls.Plan == "" {
			urls.Plan = base + "/plan"
		}
	}

	if s.WebhookSecret != "" {
		var err error
		if urls.Payment, err = appendSecret(urls.Payment, s.WebhookSecret); err != nil {
			return WebhookURLs{}, err
		}
		if urls.Refund, err = appendSecret(urls.Refund, s.WebhookSecret); err != nil {
			return WebhookURLs{}, err
		}
		if urls.Plan, err = appendSecret(urls.Plan, s.WebhookSecret); err != nil {
			return WebhookURLs{}, err
		}
	}

	return urls, nil
}

func appendSecret(rawURL, secret string) (string, error) {
	if rawURL == "" {
		return "", nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("secret", secret)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
