package catalog

import (
	"context"
	"fmt"
	"sync"

	"woostore/storefront/internal/domain"
	"woostore/storefront/internal/metrics"

	log "github.com/sirupsen/logrus"
)

const (
	PageSize = domain.DefaultPerPage

	ErrMsgProducts   = "Failed to load products. Please try again."
	ErrMsgCategories = "Failed to load categories."
)

type ProductSource interface {
	GetProducts(ctx context.Context, query domain.ProductQuery) (*domain.ProductPage, error)
}

type CategorySource interface {
	GetCategories(ctx context.Context, query domain.CategoryQuery) ([]domain.Category, error)
}

// State is a point-in-time copy of what the fetcher would show
type State struct {
	Products      []domain.Product
	Page          int // Last page applied, 0 before the first success
	HasMore       bool
	TotalProducts int
	Loading       bool
	Err           string // User-facing message, set only when the first page fails
}

// Fetcher accumulates pages of published products for "load more" browsing.
//
// Every FetchPage call takes a new request token and cancels the context of the
// request it supersedes. When a response arrives its token is compared with the
// current one and a mismatch discards the response without touching state.
type Fetcher struct {
	source   ProductSource
	pageSize int

	mu      sync.Mutex
	token   uint64
	cancel  context.CancelFunc
	filters domain.ProductQuery

	products      []domain.Product
	page          int
	hasMore       bool
	totalProducts int
	loading       bool
	errMsg        string
}

func NewFetcher(source ProductSource) *Fetcher {
	return &Fetcher{
		source:   source,
		pageSize: PageSize,
		products: make([]domain.Product, 0),
		hasMore:  true,
	}
}

// FetchPage requests one page. Page 1 replaces the accumulated list and later pages append to it.
// applied is false when the result was discarded because a newer request was issued meanwhile;
// in that case err is nil.
func (f *Fetcher) FetchPage(ctx context.Context, page int) (applied bool, err error) {
	if page < 1 {
		return false, fmt.Errorf("invalid page %d", page)
	}

	f.mu.Lock()
	if f.cancel != nil {
		f.cancel()
	}
	f.token++
	token := f.token
	reqCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	f.cancel = cancel
	f.loading = true
	f.errMsg = ""

	query := f.filters
	query.Page = page
	query.PerPage = f.pageSize
	query.Status = domain.ProductStatusPublish
	f.mu.Unlock()

	log.Debugf("🔄 Loading products page %d", page)
	result, err := f.source.GetProducts(reqCtx, query)

	f.mu.Lock()
	defer f.mu.Unlock()

	if token != f.token {
		metrics.StaleResult("products")
		log.Debugf("Discarding stale products page %d", page)
		return false, nil
	}
	f.cancel = nil
	f.loading = false

	if err != nil {
		log.Errorf("❌ Error loading products page %d: %v", page, err)
		if page == 1 {
			f.products = make([]domain.Product, 0)
			f.page = 0
			f.errMsg = ErrMsgProducts
		}
		return true, err
	}

	if page == 1 {
		f.products = append(make([]domain.Product, 0, len(result.Products)), result.Products...)
	} else {
		f.products = append(f.products, result.Products...)
	}
	f.page = page
	f.totalProducts = result.TotalProducts
	f.hasMore = hasMore(page, f.pageSize, result)

	log.Debugf("✅ Products page %d loaded (%d items, has more: %t)", page, len(result.Products), f.hasMore)
	return true, nil
}

// hasMore trusts the upstream page count. Only when it is unknown does a full page imply another one.
func hasMore(page, pageSize int, result *domain.ProductPage) bool {
	if result.TotalPages > 0 {
		return page < result.TotalPages
	}
	return len(result.Products) == pageSize
}

// LoadMore fetches the page after the last applied one when more are available and nothing is in flight
func (f *Fetcher) LoadMore(ctx context.Context) (bool, error) {
	f.mu.Lock()
	if !f.hasMore || f.loading {
		f.mu.Unlock()
		return false, nil
	}
	next := f.page + 1
	f.mu.Unlock()

	return f.FetchPage(ctx, next)
}

// SetFilters replaces the filters and reloads from page 1
func (f *Fetcher) SetFilters(ctx context.Context, filters domain.ProductQuery) (bool, error) {
	f.mu.Lock()
	f.filters = filters
	f.hasMore = true
	f.mu.Unlock()

	return f.FetchPage(ctx, 1)
}

// Snapshot returns a copy of the current state
func (f *Fetcher) Snapshot() State {
	f.mu.Lock()
	defer f.mu.Unlock()

	products := make([]domain.Product, len(f.products))
	copy(products, f.products)
	return State{
		Products:      products,
		Page:          f.page,
		HasMore:       f.hasMore,
		TotalProducts: f.totalProducts,
		Loading:       f.loading,
		Err:           f.errMsg,
	}
}

// CategoryState is a point-in-time copy of the category list
type CategoryState struct {
	Categories []domain.Category
	Loading    bool
	Err        string
}

// CategoryFetcher loads up to 50 non-empty categories with the same latest-request-wins rule as Fetcher
type CategoryFetcher struct {
	source CategorySource

	mu         sync.Mutex
	token      uint64
	cancel     context.CancelFunc
	categories []domain.Category
	loading    bool
	errMsg     string
}

func NewCategoryFetcher(source CategorySource) *CategoryFetcher {
	return &CategoryFetcher{
		source:     source,
		categories: make([]domain.Category, 0),
	}
}

func (f *CategoryFetcher) Fetch(ctx context.Context) (bool, error) {
	f.mu.Lock()
	if f.cancel != nil {
		f.cancel()
	}
	f.token++
	token := f.token
	reqCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	f.cancel = cancel
	f.loading = true
	f.mu.Unlock()

	categories, err := f.source.GetCategories(reqCtx, domain.CategoryQuery{
		PerPage:   domain.DefaultCategoriesPerPage,
		HideEmpty: true,
	})

	f.mu.Lock()
	defer f.mu.Unlock()

	if token != f.token {
		metrics.StaleResult("categories")
		return false, nil
	}
	f.cancel = nil
	f.loading = false

	if err != nil {
		log.Errorf("❌ Error fetching categories: %v", err)
		f.categories = make([]domain.Category, 0)
		f.errMsg = ErrMsgCategories
		return true, err
	}

	f.categories = categories
	f.errMsg = ""
	log.Debugf("✅ Fetched %d categories", len(categories))
	return true, nil
}

func (f *CategoryFetcher) Snapshot() CategoryState {
	f.mu.Lock()
	defer f.mu.Unlock()

	categories := make([]domain.Category, len(f.categories))
	copy(categories, f.categories)
	return CategoryState{
		Categories: categories,
		Loading:    f.loading,
		Err:        f.errMsg,
	}
}
