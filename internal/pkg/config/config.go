// Package config loads all deployment configuration once at startup into an
// explicit struct that is passed by reference into the components that need
// it. Business logic never reads the environment directly.
package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port          string `env:"PORT,           default=8080"`
	Env           string `env:"ENV,            default=development"`
	LogLevel      string `env:"LOG_LEVEL,      default=info"`
	WebhookSecret string `env:"WEBHOOK_JWT_SECRET"`
	Workers       int    `env:"WORKERS,        default=8"`

	Wallet  WalletConfig
	Signing SigningConfig
	Session SessionConfig
	Gateway GatewayConfig
	Mongo   MongoConfig
	Redis   RedisConfig
}

// WalletConfig covers spend-key derivation. The mnemonic is optional: when
// unset, spend-key features are disabled; when set but invalid, startup is
// fatal because the seed is the sole root of spending-key derivation.
type WalletConfig struct {
	Mnemonic string `env:"WALLET_MNEMONIC"`
}

// SigningConfig covers the token-issuing key pair. A missing PEM leaves the
// issuer unloaded: credentialed gateway calls fail, nothing else does.
type SigningConfig struct {
	PrivateKeyPEM string `env:"SIGNING_KEY_PEM"`
	Issuer        string `env:"TOKEN_ISSUER,    default=sparkchat"`
	Audience      string `env:"TOKEN_AUDIENCE,  default=https://api.lightspark.com"`
	TokenTTLSecs  int    `env:"TOKEN_TTL_SECS,  default=300"`
}

type SessionConfig struct {
	WindowSecs int `env:"SESSION_WINDOW_SECS, default=1800"`
}

// GatewayConfig selects and parameterises the payment-network client.
// Mode is "rest" or "sdk"; the two paths have different credential and
// idempotency semantics, so there is no automatic fallback between them.
type GatewayConfig struct {
	Mode        string `env:"GATEWAY_MODE,     default=rest"`
	BaseURL     string `env:"GATEWAY_BASE_URL, default=https://api.lightspark.com"`
	TimeoutSecs int    `env:"GATEWAY_TIMEOUT_SECS, default=15"`
	// ReadFallback enables falling back to the other path for idempotent
	// reads (node status) only. Never applies to invoice creation.
	ReadFallback bool `env:"GATEWAY_READ_FALLBACK, default=false"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI"`
	Database string `env:"MONGO_DB, default=sparkchat"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR"`
	DB   int    `env:"REDIS_DB, default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
