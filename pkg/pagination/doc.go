// Package pagination provides parallel batch fetching for Contentful
// collections.
//
// Contentful pages collections with skip/limit and reports the total item
// count on every response. The batch fetcher reads the first page to learn
// the total, then fetches the remaining offsets with a small worker pool.
//
// Example usage:
//
//	bf := pagination.NewBatchFetcher(pagination.DefaultConfig())
//	pages, err := bf.FetchAll(ctx, pagination.PageFetcherFunc(
//		func(ctx context.Context, skip, limit int) (*contentful.EntryCollection, error) {
//			q := url.Values{"content_type": {"blogPost"}, "select": {"fields.slug"}}
//			q.Set("skip", strconv.Itoa(skip))
//			q.Set("limit", strconv.Itoa(limit))
//			return client.GetEntries(ctx, q, false)
//		}))
//
// The batch fetcher:
//   - Fetches the first page to determine the total
//   - Spawns a worker pool (default 4 workers)
//   - Returns pages in offset order
//   - Returns the pages it did get alongside the first worker error
package pagination
