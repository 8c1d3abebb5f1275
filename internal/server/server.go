package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"woostore/storefront/internal/cart"
	"woostore/storefront/internal/client"
	"woostore/storefront/internal/config"
	"woostore/storefront/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

// Server is the storefront HTTP proxy. It holds the WooCommerce credentials; browsers only ever talk to it.
type Server struct {
	cfg      *config.Config
	client   client.WooCommerceClient
	orders   *service.OrderService
	carts    *cart.Registry
	missing  []string
	engine   *gin.Engine
	shutdown time.Duration
}

func New(cfg *config.Config, wc client.WooCommerceClient, orders *service.OrderService, carts *cart.Registry) *Server {
	s := &Server{
		cfg:      cfg,
		client:   wc,
		orders:   orders,
		carts:    carts,
		missing:  cfg.WooCommerce.Missing(),
		shutdown: time.Duration(cfg.Server.ShutdownTimeout) * time.Second,
	}
	s.engine = s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), Logger(), Metrics(), CORS(s.cfg.CORS))

	r.GET("/healthz", s.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		upstream := api.Group("", s.requireConfigured)
		upstream.GET("/products", s.listProducts)
		upstream.GET("/products/:id", s.getProduct)
		upstream.GET("/categories", s.listCategories)
		upstream.POST("/orders", s.createOrder)

		ttl := time.Duration(s.cfg.Cart.TTLHours) * time.Hour
		carts := api.Group("/cart", Session(s.cfg.Cart.CookieName, ttl, s.cfg.Cart.CookieSecure))
		carts.GET("", s.getCart)
		carts.DELETE("", s.clearCart)
		carts.POST("/items", s.addCartItem)
		carts.PUT("/items/:id", s.updateCartItem)
		carts.DELETE("/items/:id", s.removeCartItem)
	}

	return r
}

// requireConfigured rejects upstream calls while the base URL or credentials are unset.
// Only the setting names are reported.
func (s *Server) requireConfigured(c *gin.Context) {
	if len(s.missing) > 0 {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error": "Server configuration incomplete: missing " + strings.Join(s.missing, ", "),
		})
		return
	}
	c.Next()
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "configured": len(s.missing) == 0})
}

// Run serves until ctx is cancelled and then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.cfg.Server.Addr(),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("🚀 Storefront proxy listening on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("🛑 Shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdown)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}
