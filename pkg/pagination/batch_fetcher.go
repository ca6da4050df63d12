package pagination

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Sternrassler/contentful-site/pkg/contentful"
	"github.com/rs/zerolog/log"
)

// MaxPageSize is the largest limit Contentful accepts.
const MaxPageSize = 1000

// Config holds batch fetcher configuration
type Config struct {
	// MaxConcurrency is the maximum number of parallel requests.
	// Keep it well below the Contentful per-second budget.
	MaxConcurrency int

	// PageSize is the limit sent with each request
	PageSize int

	// Timeout per page fetch
	Timeout time.Duration
}

// DefaultConfig returns safe default configuration for Contentful
func DefaultConfig() Config {
	return Config{
		MaxConcurrency: 4,
		PageSize:       100,
		Timeout:        15 * time.Second,
	}
}

// PageFetcher fetches one page of a collection.
type PageFetcher interface {
	FetchPage(ctx context.Context, skip, limit int) (*contentful.EntryCollection, error)
}

// PageFetcherFunc adapts a function to PageFetcher.
type PageFetcherFunc func(ctx context.Context, skip, limit int) (*contentful.EntryCollection, error)

// FetchPage calls f.
func (f PageFetcherFunc) FetchPage(ctx context.Context, skip, limit int) (*contentful.EntryCollection, error) {
	return f(ctx, skip, limit)
}

// pageResult represents the result of fetching a single page
type pageResult struct {
	index int
	page  *contentful.EntryCollection
	err   error
}

// BatchFetcher handles parallel fetching of multiple pages
type BatchFetcher struct {
	config Config
}

// NewBatchFetcher creates a new batch fetcher
func NewBatchFetcher(config Config) *BatchFetcher {
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = 4
	}
	if config.PageSize <= 0 {
		config.PageSize = 100
	}
	if config.PageSize > MaxPageSize {
		config.PageSize = MaxPageSize
	}
	if config.Timeout <= 0 {
		config.Timeout = 15 * time.Second
	}

	return &BatchFetcher{config: config}
}

// FetchAll fetches every page of a collection and returns them in offset
// order. If a later page fails, the pages fetched so far are returned
// together with the error; missing pages are left out.
func (bf *BatchFetcher) FetchAll(ctx context.Context, fetcher PageFetcher) ([]*contentful.EntryCollection, error) {
	start := time.Now()
	size := bf.config.PageSize

	first, err := bf.fetchOne(ctx, fetcher, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch first page: %w", err)
	}

	totalPages := 1
	if first.Total > size {
		totalPages = (first.Total + size - 1) / size
	}

	if totalPages == 1 {
		log.Debug().
			Int("total", first.Total).
			Dur("duration", time.Since(start)).
			Msg("Fetch complete (single page)")
		return []*contentful.EntryCollection{first}, nil
	}

	log.Debug().
		Int("total", first.Total).
		Int("total_pages", totalPages).
		Msg("Starting parallel page fetch")

	pages := make([]*contentful.EntryCollection, totalPages)
	pages[0] = first

	queue := make(chan int, totalPages-1)
	for i := 1; i < totalPages; i++ {
		queue <- i
	}
	close(queue)

	workers := bf.config.MaxConcurrency
	if workers > totalPages-1 {
		workers = totalPages - 1
	}

	results := make(chan pageResult, totalPages-1)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go bf.worker(ctx, fetcher, queue, results, &wg)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var firstErr error
	fetched := 1
	for r := range results {
		if r.err != nil {
			log.Warn().Err(r.err).Int("page", r.index).Msg("Page fetch failed")
			if firstErr == nil {
				firstErr = r.err
			}
			continue
		}
		pages[r.index] = r.page
		fetched++
	}

	out := make([]*contentful.EntryCollection, 0, fetched)
	for _, p := range pages {
		if p != nil {
			out = append(out, p)
		}
	}

	if firstErr != nil {
		return out, fmt.Errorf("partial data: %d/%d pages: %w", fetched, totalPages, firstErr)
	}

	log.Debug().
		Int("pages", fetched).
		Dur("duration", time.Since(start)).
		Msg("Fetch complete")

	return out, nil
}

func (bf *BatchFetcher) fetchOne(ctx context.Context, fetcher PageFetcher, index int) (*contentful.EntryCollection, error) {
	pageCtx, cancel := context.WithTimeout(ctx, bf.config.Timeout)
	defer cancel()
	return fetcher.FetchPage(pageCtx, index*bf.config.PageSize, bf.config.PageSize)
}

// worker processes page indexes from the queue until it is drained or ctx ends.
func (bf *BatchFetcher) worker(ctx context.Context, fetcher PageFetcher, queue <-chan int, results chan<- pageResult, wg *sync.WaitGroup) {
	defer wg.Done()

	for index := range queue {
		if err := ctx.Err(); err != nil {
			results <- pageResult{index: index, err: err}
			continue
		}

		page, err := bf.fetchOne(ctx, fetcher, index)
		results <- pageResult{index: index, page: page, err: err}
	}
}
