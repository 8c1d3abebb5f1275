package service

import (
	"context"
	"fmt"
	"sync"

	"woostore/storefront/internal/client"
	"woostore/storefront/internal/domain"
	"woostore/storefront/internal/repository"
	"woostore/storefront/internal/state"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

type SyncResult struct {
	FromPage   int
	TotalPages int
	Products   int // Fetched by this run
	Stored     int // Rows in the products table afterwards, -1 when the count failed
}

// SyncService mirrors the published catalog into the products table
type SyncService struct {
	client          client.WooCommerceClient
	repository      repository.ProductRepository
	stateManager    state.StateManager
	maxWorkers      int
	minSaveInterval int
	perPage         int
}

func NewSyncService(
	client client.WooCommerceClient,
	repository repository.ProductRepository,
	stateManager state.StateManager,
	maxWorkers int,
	minSaveInterval int,
	perPage int,
) *SyncService {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	if minSaveInterval < 1 {
		minSaveInterval = 1
	}
	if perPage < 1 || perPage > domain.MaxPerPage {
		perPage = domain.MaxPerPage
	}
	return &SyncService{
		client:          client,
		repository:      repository,
		stateManager:    stateManager,
		maxWorkers:      maxWorkers,
		minSaveInterval: minSaveInterval,
		perPage:         perPage,
	}
}

// SyncAll resumes from the last saved page, fetches the remaining pages with bounded
// concurrency and upserts each one. Progress is the highest page below which every page
// has been stored, saved every minSaveInterval pages and reset to 1 once the sync completes.
func (s *SyncService) SyncAll(ctx context.Context) (*SyncResult, error) {
	startPage, err := s.stateManager.GetLastSyncedPage(ctx)
	if err != nil {
		log.Errorf("Failed to get last synced page: %v", err)
		return nil, err
	}
	if startPage == 0 {
		startPage = 1
	}
	if startPage != 1 {
		log.Infof("🔄 Continue from page %d", startPage)
	}

	first, err := s.syncPage(ctx, startPage)
	if err != nil {
		return nil, err
	}

	result := &SyncResult{FromPage: startPage, TotalPages: first.TotalPages}
	progress := newProgress(startPage)
	progress.done(startPage, len(first.Products))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxWorkers)

	for page := startPage + 1; page <= first.TotalPages; page++ {
		page := page
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p, err := s.syncPage(gctx, page)
			if err != nil {
				return err
			}

			if n := progress.done(page, len(p.Products)); n%s.minSaveInterval == 0 {
				if err := s.stateManager.SetLastSyncedPage(ctx, progress.watermark()); err != nil {
					log.Warnf("⚠️ Failed to save sync progress: %v", err)
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if saveErr := s.stateManager.SetLastSyncedPage(ctx, progress.watermark()); saveErr != nil {
			log.Warnf("⚠️ Failed to save sync progress: %v", saveErr)
		}
		return nil, err
	}

	result.Products = progress.products
	if err := s.stateManager.SetLastSyncedPage(ctx, 1); err != nil {
		return nil, err
	}

	result.Stored, err = s.repository.CountProducts(ctx)
	if err != nil {
		log.Warnf("⚠️ Failed to count stored products: %v", err)
		result.Stored = -1
	}

	log.Infof("✅ Synced %d products from pages %d..%d", result.Products, startPage, max(startPage, first.TotalPages))
	return result, nil
}

func (s *SyncService) syncPage(ctx context.Context, page int) (*domain.ProductPage, error) {
	result, err := s.client.GetProducts(ctx, domain.ProductQuery{
		Page:    page,
		PerPage: s.perPage,
		Status:  domain.ProductStatusPublish,
	})
	if err != nil {
		log.Errorf("❌ Failed to fetch products page %d: %v", page, err)
		return nil, fmt.Errorf("failed to fetch products page %d: %w", page, err)
	}

	if err := s.repository.SaveProducts(ctx, result.Products); err != nil {
		log.Errorf("❌ Failed to save products page %d: %v", page, err)
		return nil, fmt.Errorf("failed to save products page %d: %w", page, err)
	}

	log.Debugf("Synced page %d (%d products)", page, len(result.Products))
	return result, nil
}

// progress tracks completed pages that may finish out of order
type progress struct {
	mu       sync.Mutex
	next     int // Lowest page not yet stored
	pending  map[int]bool
	count    int
	products int
}

func newProgress(startPage int) *progress {
	return &progress{next: startPage, pending: make(map[int]bool)}
}

// done records a stored page and returns how many pages have completed so far
func (p *progress) done(page, products int) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.pending[page] = true
	for p.pending[p.next] {
		delete(p.pending, p.next)
		p.next++
	}
	p.count++
	p.products += products
	return p.count
}

// watermark is the first page a resumed sync has to fetch
func (p *progress) watermark() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.next
}
