package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile_Defaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9090\n"), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 30, cfg.WooCommerce.Timeout)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowOrigins)
	assert.Equal(t, "redis", cfg.Cart.Storage)
	assert.Equal(t, "storefront_session", cfg.Cart.CookieName)
	assert.False(t, cfg.Cart.CookieSecure)
}

func TestLoadFile_CookieSecure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cart:\n  cookie_secure: true\n"), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.True(t, cfg.Cart.CookieSecure)
}

func TestLoadFile_EnvironmentOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("woocommerce:\n  timeout: 5\n"), 0o600))

	t.Setenv("WOOCOMMERCE_CONSUMER_KEY", "ck_test")
	t.Setenv("WOOCOMMERCE_CONSUMER_SECRET", "cs_test")
	t.Setenv("WORDPRESS_SITE_URL", "https://shop.example.com/")

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "ck_test", cfg.WooCommerce.ConsumerKey)
	assert.Equal(t, "cs_test", cfg.WooCommerce.ConsumerSecret)
	assert.Equal(t, "https://shop.example.com", cfg.WooCommerce.BaseURL)
	assert.Empty(t, cfg.WooCommerce.Missing())
}

func TestLoadFile_MissingExplicitFile(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestWooCommerceConfig_Missing(t *testing.T) {
	cfg := WooCommerceConfig{ConsumerKey: "secret-key-value"}
	missing := cfg.Missing()

	assert.Equal(t, []string{"base URL", "consumer secret"}, missing)
	for _, m := range missing {
		assert.NotContains(t, m, "secret-key-value")
	}
}
