package container

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"woostore/storefront/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load()
	require.NoError(t, err)
	cfg.Server.Mode = gin.TestMode
	return cfg
}

func TestSetupLogging(t *testing.T) {
	defer log.SetLevel(log.InfoLevel)

	SetupLogging(config.LogConfig{Level: "debug", Format: "json"})
	assert.Equal(t, log.DebugLevel, log.GetLevel())
	_, ok := log.StandardLogger().Formatter.(*log.JSONFormatter)
	assert.True(t, ok)

	SetupLogging(config.LogConfig{Level: "loud", Format: "text"})
	assert.Equal(t, log.InfoLevel, log.GetLevel())
	_, ok = log.StandardLogger().Formatter.(*log.TextFormatter)
	assert.True(t, ok)
}

func TestNewServer_MemoryCarts(t *testing.T) {
	cfg := loadConfig(t)
	cfg.Cart.Storage = "memory"

	app, err := NewServer(cfg)
	require.NoError(t, err)
	defer app.Close()

	assert.Nil(t, app.events)
	w := httptest.NewRecorder()
	app.Server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/cart", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNewServer_RedisCarts(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := loadConfig(t)
	cfg.Redis.Host = mr.Host()
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)
	cfg.Redis.Port = port

	app, err := NewServer(cfg)
	require.NoError(t, err)
	defer app.Close()

	require.NotNil(t, app.events)
	assert.True(t, mr.Exists("storefront:stream:OrderPlaced"))
}

func TestNewServer_RedisUnreachable(t *testing.T) {
	cfg := loadConfig(t)
	cfg.Redis.Host = "127.0.0.1"
	cfg.Redis.Port = 1

	_, err := NewServer(cfg)
	assert.ErrorContains(t, err, "failed to connect to Redis")
}
