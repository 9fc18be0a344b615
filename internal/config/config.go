package config

import (
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// envBindings maps viper keys to the environment variables the deployment sets.
var envBindings = map[string]string{
	"port":         "PORT",
	"environment":  "APP_ENV",
	"frontend.url": "FRONTEND_URL",

	"database.host":            "DATABASE_HOST",
	"database.port":            "DATABASE_PORT",
	"database.user":            "DATABASE_USER",
	"database.password":        "DATABASE_PASSWORD",
	"database.name":            "DATABASE_NAME",
	"database.ssl_mode":        "DATABASE_SSL_MODE",
	"database.connect_timeout": "DATABASE_CONNECT_TIMEOUT",

	"redis.host":     "REDIS_HOST",
	"redis.port":     "REDIS_PORT",
	"redis.password": "REDIS_PASSWORD",
	"redis.db":       "REDIS_DB",

	"jwt.secret_key": "JWT_SECRET_KEY",

	"clerk.webhook_secret":  "WEBHOOK_SECRET",
	"stripe.secret_key":     "STRIPE_SECRET_KEY",
	"stripe.webhook_secret": "STRIPE_WEBHOOK_SECRET",
	"stripe.api_url":        "STRIPE_API_URL",

	"ledger.default_plan_id": "LEDGER_DEFAULT_PLAN_ID",
	"ledger.signup_credits":  "LEDGER_SIGNUP_CREDITS",

	"webhook.tolerance":  "WEBHOOK_TOLERANCE",
	"webhook.dedupe_ttl": "WEBHOOK_DEDUPE_TTL",

	"rate_limit.requests": "RATE_LIMIT_REQUESTS",
	"rate_limit.window":   "RATE_LIMIT_WINDOW",
}

type Config struct {
	Port        string
	Environment string
	FrontendURL string
	Ledger      LedgerConfig
	Webhook     WebhookConfig
	RateLimit   RateLimitConfig
	Stripe      StripeConfig
}

// LedgerConfig holds the defaults applied to newly mirrored accounts.
type LedgerConfig struct {
	DefaultPlanID int
	SignupCredits int
}

type WebhookConfig struct {
	Tolerance time.Duration
	DedupeTTL time.Duration
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

type StripeConfig struct {
	APIURL   string
	Currency string
	Timeout  time.Duration
}

// Init reads .env (when present) and binds every known environment variable.
func Init(path string) {
	viper.SetConfigFile(path)
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	for key, env := range envBindings {
		viper.BindEnv(key, env)
	}

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("[CONFIG] Config file not found, using environment and defaults: %v", err)
	}
}

func setDefaults() {
	viper.SetDefault("port", "5000")
	viper.SetDefault("environment", "development")
	viper.SetDefault("frontend.url", "http://localhost:3000")
	viper.SetDefault("ledger.default_plan_id", 1)
	viper.SetDefault("ledger.signup_credits", 10)
	viper.SetDefault("webhook.tolerance", 5*time.Minute)
	viper.SetDefault("webhook.dedupe_ttl", 24*time.Hour)
	viper.SetDefault("rate_limit.requests", 100)
	viper.SetDefault("rate_limit.window", 15*time.Minute)
	viper.SetDefault("stripe.api_url", "https://api.stripe.com")
	viper.SetDefault("stripe.currency", "usd")
	viper.SetDefault("stripe.timeout", 10*time.Second)
}

// Load returns the application configuration with defaults applied.
func Load() *Config {
	setDefaults()

	return &Config{
		Port:        viper.GetString("port"),
		Environment: viper.GetString("environment"),
		FrontendURL: strings.TrimRight(viper.GetString("frontend.url"), "/"),
		Ledger: LedgerConfig{
			DefaultPlanID: viper.GetInt("ledger.default_plan_id"),
			SignupCredits: viper.GetInt("ledger.signup_credits"),
		},
		Webhook: WebhookConfig{
			Tolerance: viper.GetDuration("webhook.tolerance"),
			DedupeTTL: viper.GetDuration("webhook.dedupe_ttl"),
		},
		RateLimit: RateLimitConfig{
			Requests: viper.GetInt("rate_limit.requests"),
			Window:   viper.GetDuration("rate_limit.window"),
		},
		Stripe: StripeConfig{
			APIURL:   strings.TrimRight(viper.GetString("stripe.api_url"), "/"),
			Currency: viper.GetString("stripe.currency"),
			Timeout:  viper.GetDuration("stripe.timeout"),
		},
	}
}

// SecretSource yields a secret at call time. An empty string means unset.
type SecretSource func() string

// Secret reads key from viper on every call so that a secret added to the
// environment after startup is picked up and a missing one only fails its route.
func Secret(key string) SecretSource {
	return func() string {
		return strings.TrimSpace(viper.GetString(key))
	}
}

// Static returns a SecretSource with a fixed value.
func Static(value string) SecretSource {
	return func() string { return value }
}
