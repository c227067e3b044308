package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

type Config struct {
	AppEnv   string `envconfig:"APP_ENV" default:"dev"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	GRPCPort int `envconfig:"GRPC_PORT" default:"8081"`
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	Cart     Cart     `ignored:"true"`
	Auth     Auth     `ignored:"true"`
	Checkout Checkout `ignored:"true"`
	Postgres Postgres `ignored:"true"`
	Redis    Redis    `ignored:"true"`
}

// CART_NOTIFICATION_LIMIT of zero or below leaves the notification queue
// unbounded.
type Cart struct {
	Store             string        `envconfig:"CART_STORE" default:"memory"`
	NotificationTTL   time.Duration `envconfig:"CART_NOTIFICATION_TTL" default:"4s"`
	NotificationLimit int           `envconfig:"CART_NOTIFICATION_LIMIT" default:"5"`
	SessionIdle       time.Duration `envconfig:"CART_SESSION_IDLE" default:"30m"`
	SweepInterval     time.Duration `envconfig:"CART_SWEEP_INTERVAL" default:"1m"`
	RedisTTL          time.Duration `envconfig:"CART_REDIS_TTL" default:"720h"`
}

type Auth struct {
	Tokens []string `envconfig:"AUTH_TOKENS"`
}

type Checkout struct {
	ShopName       string `envconfig:"CHECKOUT_SHOP_NAME" default:"BuyNGo"`
	WhatsAppNumber string `envconfig:"CHECKOUT_WHATSAPP_NUMBER" default:"917575837112"`
	Shipping       string `envconfig:"CHECKOUT_SHIPPING" default:"10"`
	CurrencySymbol string `envconfig:"CHECKOUT_CURRENCY_SYMBOL" default:"₹"`
}

type Postgres struct {
	Host    string `envconfig:"POSTGRES_HOST" default:"localhost"`
	Port    int    `envconfig:"POSTGRES_PORT" default:"5432"`
	User    string `envconfig:"POSTGRES_USER" default:"shopping"`
	Pass    string `envconfig:"POSTGRES_PASSWORD" default:"shoppingpassword"`
	DB      string `envconfig:"POSTGRES_DB" default:"shopping_db"`
	SSLMode string `envconfig:"POSTGRES_SSLMODE" default:"disable"`
}

type Redis struct {
	Addr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

// Sections carry full variable names in their tags and are processed one by
// one, so a nested field never falls back to a bare name such as USER.
func Load() (Config, error) {
	var cfg Config
	sections := []any{&cfg, &cfg.Cart, &cfg.Auth, &cfg.Checkout, &cfg.Postgres, &cfg.Redis}
	for _, sec := range sections {
		if err := envconfig.Process("", sec); err != nil {
			return Config{}, fmt.Errorf("load config: %w", err)
		}
	}

	cfg.Cart.Store = strings.ToLower(strings.TrimSpace(cfg.Cart.Store))
	switch cfg.Cart.Store {
	case StoreMemory, StoreRedis, StorePostgres:
	default:
		return Config{}, fmt.Errorf("load config: unknown CART_STORE %q", cfg.Cart.Store)
	}
	if cfg.Cart.NotificationLimit <= 0 {
		cfg.Cart.NotificationLimit = -1
	}
	return cfg, nil
}
