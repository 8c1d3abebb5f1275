package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"woostore/storefront/internal/config"
	"woostore/storefront/internal/domain"
	"woostore/storefront/internal/metrics"

	log "github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
	"resty.dev/v3"
)

const (
	apiPath = "/wp-json/wc/v3"

	HeaderTotalPages = "X-WP-TotalPages"
	HeaderTotal      = "X-WP-Total"
)

type WooCommerceClient interface {
	GetProducts(ctx context.Context, query domain.ProductQuery) (*domain.ProductPage, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	GetCategories(ctx context.Context, query domain.CategoryQuery) ([]domain.Category, error)
	CreateOrder(ctx context.Context, doc *domain.OrderDocument) (*domain.Order, error)
}

type wooCommerceClient struct {
	rl         ratelimit.Limiter
	baseURL    string
	missing    []string
	httpClient *resty.Client
}

// NewWooCommerceClient creates a client that authenticates with the consumer key and secret
// via basic auth. An incomplete configuration is reported by every call, not here.
func NewWooCommerceClient(cfg config.WooCommerceConfig) WooCommerceClient {
	client := resty.New().
		SetTimeout(cfg.TimeoutDuration()).
		SetRetryCount(0).
		SetHeader("Accept", "application/json").
		SetBasicAuth(cfg.ConsumerKey, cfg.ConsumerSecret)

	rl := ratelimit.NewUnlimited()
	if cfg.MaxRequestsPerSecond > 0 {
		rl = ratelimit.New(cfg.MaxRequestsPerSecond)
	}

	missing := cfg.Missing()
	if len(missing) > 0 {
		log.Warnf("⚠️ WooCommerce client is not configured, missing: %s", strings.Join(missing, ", "))
	}

	return &wooCommerceClient{
		rl:         rl,
		baseURL:    cfg.BaseURL + apiPath,
		missing:    missing,
		httpClient: client,
	}
}

func (c *wooCommerceClient) GetProducts(ctx context.Context, query domain.ProductQuery) (*domain.ProductPage, error) {
	if query.Status == "" {
		query.Status = domain.ProductStatusPublish
	}

	resp, err := c.do(ctx, "get_products", func(r *resty.Request) (*resty.Response, error) {
		return r.SetQueryParams(query.Params()).Get(c.baseURL + "/products")
	})
	if err != nil {
		return nil, err
	}

	var products []domain.Product
	if err := json.Unmarshal([]byte(resp.String()), &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	for i := range products {
		products[i].ShortDescription = htmlToText(products[i].ShortDescription)
	}

	page := &domain.ProductPage{
		Products:      products,
		Page:          query.Page,
		PerPage:       query.PerPage,
		TotalPages:    headerInt(resp.Header().Get(HeaderTotalPages), 1),
		TotalProducts: headerInt(resp.Header().Get(HeaderTotal), 0),
	}

	log.Debugf("Fetched products page %d: %d items, %d pages, %d total",
		page.Page, len(products), page.TotalPages, page.TotalProducts)
	return page, nil
}

func (c *wooCommerceClient) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	resp, err := c.do(ctx, "get_product", func(r *resty.Request) (*resty.Response, error) {
		return r.Get(c.baseURL + "/products/" + strconv.FormatInt(id, 10))
	})
	if err != nil {
		return nil, err
	}

	var product domain.Product
	if err := json.Unmarshal([]byte(resp.String()), &product); err != nil {
		return nil, fmt.Errorf("failed to decode product %d: %w", id, err)
	}
	product.ShortDescription = htmlToText(product.ShortDescription)

	return &product, nil
}

func (c *wooCommerceClient) GetCategories(ctx context.Context, query domain.CategoryQuery) ([]domain.Category, error) {
	resp, err := c.do(ctx, "get_categories", func(r *resty.Request) (*resty.Response, error) {
		return r.SetQueryParams(query.Params()).Get(c.baseURL + "/products/categories")
	})
	if err != nil {
		return nil, err
	}

	var categories []domain.Category
	if err := json.Unmarshal([]byte(resp.String()), &categories); err != nil {
		return nil, fmt.Errorf("failed to decode categories: %w", err)
	}
	for i := range categories {
		categories[i].Description = htmlToText(categories[i].Description)
	}

	log.Debugf("Fetched %d categories", len(categories))
	return categories, nil
}

func (c *wooCommerceClient) CreateOrder(ctx context.Context, doc *domain.OrderDocument) (*domain.Order, error) {
	resp, err := c.do(ctx, "create_order", func(r *resty.Request) (*resty.Response, error) {
		return r.
			SetHeader("Content-Type", "application/json").
			SetBody(doc).
			Post(c.baseURL + "/orders")
	})
	if err != nil {
		return nil, err
	}

	var order domain.Order
	if err := json.Unmarshal([]byte(resp.String()), &order); err != nil {
		return nil, fmt.Errorf("failed to decode order: %w", err)
	}

	log.Infof("✅ Created upstream order %d (%s)", order.ID, order.Status)
	return &order, nil
}

// do runs one upstream request. Non-2xx responses become *UpstreamError; the body is only logged at debug level.
func (c *wooCommerceClient) do(ctx context.Context, operation string, send func(*resty.Request) (*resty.Response, error)) (*resty.Response, error) {
	if len(c.missing) > 0 {
		return nil, fmt.Errorf("%w: missing %s", ErrNotConfigured, strings.Join(c.missing, ", "))
	}

	c.rl.Take()

	start := time.Now()
	resp, err := send(c.httpClient.R().SetContext(ctx))
	if err != nil {
		metrics.ObserveUpstream(operation, 0, time.Since(start))
		if ctx.Err() != nil {
			return nil, fmt.Errorf("request cancelled: %w", ctx.Err())
		}
		return nil, fmt.Errorf("failed to reach upstream for %s: %w", operation, err)
	}
	metrics.ObserveUpstream(operation, resp.StatusCode(), time.Since(start))

	if resp.IsError() || resp.StatusCode() >= 300 {
		log.Debugf("Upstream %s returned %d: %s", operation, resp.StatusCode(), truncate(resp.String(), 512))
		return nil, &UpstreamError{Operation: operation, StatusCode: resp.StatusCode()}
	}

	return resp, nil
}

func headerInt(value string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
