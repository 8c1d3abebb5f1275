package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	WooCommerce WooCommerceConfig `mapstructure:"woocommerce"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Cart        CartConfig        `mapstructure:"cart"`
	CORS        CORSConfig        `mapstructure:"cors"`
	Log         LogConfig         `mapstructure:"log"`
	Sync        SyncConfig        `mapstructure:"sync"`
	Shop        ShopConfig        `mapstructure:"shop"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port            int    `mapstructure:"port"`
	Host            string `mapstructure:"host"`
	Mode            string `mapstructure:"mode"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"`
}

// Addr returns the listen address
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// WooCommerceConfig holds upstream commerce API configuration.
// The key and secret never leave the server process.
type WooCommerceConfig struct {
	BaseURL              string `mapstructure:"base_url"`
	ConsumerKey          string `mapstructure:"consumer_key"`
	ConsumerSecret       string `mapstructure:"consumer_secret"`
	Timeout              int    `mapstructure:"timeout"`
	MaxRequestsPerSecond int    `mapstructure:"max_requests_per_second"`
}

// TimeoutDuration returns the request timeout
func (w WooCommerceConfig) TimeoutDuration() time.Duration {
	return time.Duration(w.Timeout) * time.Second
}

// Missing lists the names of unset required settings. Values are never included.
func (w WooCommerceConfig) Missing() []string {
	var missing []string
	if strings.TrimSpace(w.BaseURL) == "" {
		missing = append(missing, "base URL")
	}
	if w.ConsumerKey == "" {
		missing = append(missing, "consumer key")
	}
	if w.ConsumerSecret == "" {
		missing = append(missing, "consumer secret")
	}
	return missing
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

// DSN returns a libpq style connection string
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Password, d.Name)
}

// RedisConfig holds Redis connection details
type RedisConfig struct {
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	Password      string `mapstructure:"password"`
	Database      int    `mapstructure:"database"`
	ConsumerGroup string `mapstructure:"consumer_group"`
}

// Addr returns host:port
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// CartConfig selects where carts are persisted.
// Storage is "redis" or "memory" on the server; the shop client always uses a file.
type CartConfig struct {
	Storage    string `mapstructure:"storage"`
	TTLHours   int    `mapstructure:"ttl_hours"`
	CookieName string `mapstructure:"cookie_name"`
	// CookieSecure marks the session cookie HTTPS-only; enable it behind TLS
	CookieSecure bool `mapstructure:"cookie_secure"`
}

// CORSConfig holds cross-origin settings for the /api routes
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
	AllowMethods []string `mapstructure:"allow_methods"`
	AllowHeaders []string `mapstructure:"allow_headers"`
}

// LogConfig holds logrus settings
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SyncConfig controls the catalog mirror
type SyncConfig struct {
	MaxWorkers   int `mapstructure:"max_workers"`
	SaveInterval int `mapstructure:"save_interval"`
	PerPage      int `mapstructure:"per_page"`
}

// ShopConfig holds settings for the shop command line client
type ShopConfig struct {
	ProxyURL string `mapstructure:"proxy_url"`
	CartDir  string `mapstructure:"cart_dir"`
	Timeout  int    `mapstructure:"timeout"`
}

// Load loads configuration from config.yaml in the working directory with environment variable overrides.
// A missing file is not an error; defaults and environment apply.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile loads configuration from the given YAML file, or from ./config.yaml when path is empty.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	// Environment names used by existing WordPress deployments
	_ = v.BindEnv("woocommerce.base_url", "WOOCOMMERCE_BASE_URL", "NEXT_PUBLIC_WOOCOMMERCE_URL", "WORDPRESS_SITE_URL")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || path != "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	config.WooCommerce.BaseURL = strings.TrimRight(config.WooCommerce.BaseURL, "/")

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.shutdown_timeout", 10)

	v.SetDefault("woocommerce.base_url", "")
	v.SetDefault("woocommerce.consumer_key", "")
	v.SetDefault("woocommerce.consumer_secret", "")
	v.SetDefault("woocommerce.timeout", 30)
	v.SetDefault("woocommerce.max_requests_per_second", 0)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "storefront")
	v.SetDefault("database.user", "storefront_user")
	v.SetDefault("database.password", "storefront_pass")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.database", 0)
	v.SetDefault("redis.consumer_group", "storefront_consumer")

	v.SetDefault("cart.storage", "redis")
	v.SetDefault("cart.ttl_hours", 24*30)
	v.SetDefault("cart.cookie_name", "storefront_session")
	v.SetDefault("cart.cookie_secure", false)

	v.SetDefault("cors.allow_origins", []string{"*"})
	v.SetDefault("cors.allow_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allow_headers", []string{"Content-Type", "Authorization"})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("sync.max_workers", 4)
	v.SetDefault("sync.save_interval", 10)
	v.SetDefault("sync.per_page", 100)

	v.SetDefault("shop.proxy_url", "http://localhost:8080")
	v.SetDefault("shop.cart_dir", ".storefront")
	v.SetDefault("shop.timeout", 30)
}
