package storefront

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"woostore/storefront/internal/domain"

	log "github.com/sirupsen/logrus"
	"resty.dev/v3"
)

const (
	headerTotalPages = "X-WP-TotalPages"
	headerTotal      = "X-WP-Total"
)

// APIError is a non-success answer from the storefront proxy
type APIError struct {
	StatusCode     int
	Message        string
	UpstreamStatus int
}

func (e *APIError) Error() string {
	if e.UpstreamStatus > 0 {
		return fmt.Sprintf("%s (status %d, upstream status %d)", e.Message, e.StatusCode, e.UpstreamStatus)
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
}

type errorBody struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

// Client talks to the storefront proxy. It never sees the WooCommerce credentials.
type Client struct {
	baseURL    string
	httpClient *resty.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json")

	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: client,
	}
}

func (c *Client) Close() error {
	return c.httpClient.Close()
}

// GetProducts fetches one page. TotalPages stays 0 when the proxy does not report it.
func (c *Client) GetProducts(ctx context.Context, query domain.ProductQuery) (*domain.ProductPage, error) {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParams(query.Params()).
		Get(c.baseURL + "/api/products")
	if err != nil {
		return nil, fmt.Errorf("failed to request products: %w", err)
	}
	if err := checkResponse(resp); err != nil {
		return nil, err
	}

	var products []domain.Product
	if err := json.Unmarshal([]byte(resp.String()), &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}

	totalPages, _ := strconv.Atoi(resp.Header().Get(headerTotalPages))
	total, _ := strconv.Atoi(resp.Header().Get(headerTotal))

	return &domain.ProductPage{
		Products:      products,
		Page:          query.Page,
		PerPage:       query.PerPage,
		TotalPages:    totalPages,
		TotalProducts: total,
	}, nil
}

func (c *Client) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		Get(c.baseURL + "/api/products/" + strconv.FormatInt(id, 10))
	if err != nil {
		return nil, fmt.Errorf("failed to request product %d: %w", id, err)
	}
	if err := checkResponse(resp); err != nil {
		return nil, err
	}

	var product domain.Product
	if err := json.Unmarshal([]byte(resp.String()), &product); err != nil {
		return nil, fmt.Errorf("failed to decode product %d: %w", id, err)
	}
	return &product, nil
}

func (c *Client) GetCategories(ctx context.Context, query domain.CategoryQuery) ([]domain.Category, error) {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParams(query.Params()).
		Get(c.baseURL + "/api/categories")
	if err != nil {
		return nil, fmt.Errorf("failed to request categories: %w", err)
	}
	if err := checkResponse(resp); err != nil {
		return nil, err
	}

	var categories []domain.Category
	if err := json.Unmarshal([]byte(resp.String()), &categories); err != nil {
		return nil, fmt.Errorf("failed to decode categories: %w", err)
	}
	return categories, nil
}

func (c *Client) SubmitOrder(ctx context.Context, doc *domain.OrderDocument) (*domain.Order, error) {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(doc).
		Post(c.baseURL + "/api/orders")
	if err != nil {
		return nil, fmt.Errorf("failed to submit order: %w", err)
	}
	if err := checkResponse(resp); err != nil {
		return nil, err
	}

	var order domain.Order
	if err := json.Unmarshal([]byte(resp.String()), &order); err != nil {
		return nil, fmt.Errorf("failed to decode order: %w", err)
	}

	log.Debugf("Order %d accepted by proxy", order.ID)
	return &order, nil
}

func checkResponse(resp *resty.Response) error {
	if resp.StatusCode() >= 200 && resp.StatusCode() < 300 {
		return nil
	}

	apiErr := &APIError{StatusCode: resp.StatusCode(), Message: "request failed"}
	var body errorBody
	if err := json.Unmarshal([]byte(resp.String()), &body); err == nil && body.Error != "" {
		apiErr.Message = body.Error
		apiErr.UpstreamStatus = body.Status
	}
	return apiErr
}
