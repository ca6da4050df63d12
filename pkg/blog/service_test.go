package blog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"testing"

	"github.com/Sternrassler/contentful-site/internal/testutil"
	"github.com/Sternrassler/contentful-site/pkg/contentful"
	"github.com/Sternrassler/contentful-site/pkg/pagination"
	"github.com/Sternrassler/contentful-site/pkg/seo"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSite = seo.Site{BaseURL: "https://acme.test", Name: "Acme"}

// fakeSource answers by content type and records every query.
type fakeSource struct {
	mu      sync.Mutex
	queries []url.Values
	byType  map[string]*contentful.EntryCollection
	err     error
	failOn  string // content type that always errors
}

func (f *fakeSource) GetEntries(ctx context.Context, query url.Values, opts contentful.Options) (*contentful.EntryCollection, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	if f.failOn != "" && query.Get("content_type") == f.failOn {
		return nil, errors.New("upstream unavailable")
	}
	col, ok := f.byType[query.Get("content_type")]
	if !ok {
		return &contentful.EntryCollection{}, nil
	}
	return col, nil
}

func (f *fakeSource) lastQuery() url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queries[len(f.queries)-1]
}

func loadCollection(t *testing.T, body string) *contentful.EntryCollection {
	t.Helper()
	var col contentful.EntryCollection
	require.NoError(t, json.Unmarshal([]byte(body), &col))
	return &col
}

func newFakeService(t *testing.T) (*Service, *fakeSource) {
	t.Helper()
	src := &fakeSource{byType: map[string]*contentful.EntryCollection{
		"blogPost": loadCollection(t, testutil.BlogPostsBody),
		"category": loadCollection(t, testutil.CategoriesBody),
	}}
	return New(src, nil, testSite, zerolog.Nop()), src
}

func TestGetPostBySlug(t *testing.T) {
	svc, src := newFakeService(t)

	post := svc.GetPostBySlug(context.Background(), "second-post", true)
	require.NotNil(t, post)
	assert.Equal(t, "post-1", post.ID)
	require.NotNil(t, post.Author)
	assert.Equal(t, "Ada Lovelace", post.Author.Name)

	q := src.lastQuery()
	assert.Equal(t, "blogPost", q.Get("content_type"))
	assert.Equal(t, "second-post", q.Get("fields.slug"))
	assert.Equal(t, "2", q.Get("include"))
	assert.Equal(t, "1", q.Get("limit"))
}

func TestGetPostBySlug_NotFoundAndError(t *testing.T) {
	svc := New(&fakeSource{byType: map[string]*contentful.EntryCollection{}}, nil, testSite, zerolog.Nop())
	assert.Nil(t, svc.GetPostBySlug(context.Background(), "missing", false))

	svc = New(&fakeSource{err: errors.New("boom")}, nil, testSite, zerolog.Nop())
	assert.Nil(t, svc.GetPostBySlug(context.Background(), "any", false))
}

func TestRelatedPosts_Query(t *testing.T) {
	svc, src := newFakeService(t)

	posts := svc.RelatedPosts(context.Background(), "post-1", "cat-news", 0, false)
	assert.Len(t, posts, 2)

	q := src.lastQuery()
	assert.Equal(t, "cat-news", q.Get("fields.category.sys.id"))
	assert.Equal(t, "post-1", q.Get("sys.id[ne]"))
	assert.Equal(t, "-sys.createdAt", q.Get("order"))
	assert.Equal(t, strconv.Itoa(DefaultRelatedLimit), q.Get("limit"))
}

func TestRelatedPosts_NoCategory(t *testing.T) {
	svc, src := newFakeService(t)

	posts := svc.RelatedPosts(context.Background(), "post-1", "", 3, false)
	assert.NotNil(t, posts)
	assert.Empty(t, posts)
	assert.Empty(t, src.queries, "no upstream call without a category")
}

func TestPost_View(t *testing.T) {
	svc, _ := newFakeService(t)

	view := svc.Post(context.Background(), "second-post", false)
	require.NotNil(t, view)
	assert.Equal(t, "second-post", view.Post.Slug)
	assert.NotEmpty(t, view.Related)
	require.NotNil(t, view.SEO)
	assert.Equal(t, "https://acme.test/blog/second-post", view.SEO.CanonicalURL)
}

func TestListPosts(t *testing.T) {
	svc, src := newFakeService(t)

	posts, total := svc.ListPosts(context.Background(), 0, -5)
	assert.Len(t, posts, 2)
	assert.Equal(t, 2, total)

	q := src.lastQuery()
	assert.Equal(t, strconv.Itoa(DefaultListLimit), q.Get("limit"))
	assert.Equal(t, "0", q.Get("skip"))
}

func TestListPosts_Error(t *testing.T) {
	svc := New(&fakeSource{err: errors.New("boom")}, nil, testSite, zerolog.Nop())

	posts, total := svc.ListPosts(context.Background(), 5, 0)
	assert.NotNil(t, posts)
	assert.Empty(t, posts)
	assert.Zero(t, total)
}

func TestIndex(t *testing.T) {
	svc, _ := newFakeService(t)

	listing := svc.Index(context.Background(), 10, 0)
	assert.Len(t, listing.Posts, 2)
	assert.Equal(t, 2, listing.Total)
	require.Len(t, listing.Categories, 2)
	assert.Equal(t, "How To Guides", listing.Categories[1].Name)
}

func TestIndex_PostsFailCategoriesStillLoad(t *testing.T) {
	svc, src := newFakeService(t)
	src.failOn = "blogPost"

	listing := svc.Index(context.Background(), 10, 0)
	assert.Empty(t, listing.Posts)
	assert.Zero(t, listing.Total)
	assert.Len(t, listing.Categories, 2)
}

func TestGetCategoryBySlug(t *testing.T) {
	svc, src := newFakeService(t)

	cat := svc.GetCategoryBySlug(context.Background(), "news")
	require.NotNil(t, cat)
	assert.Equal(t, "cat-news", cat.ID)
	assert.Equal(t, "news", src.lastQuery().Get("fields.slug"))

	empty := New(&fakeSource{byType: map[string]*contentful.EntryCollection{}}, nil, testSite, zerolog.Nop())
	assert.Nil(t, empty.GetCategoryBySlug(context.Background(), "news"))
}

func TestPostsByCategory(t *testing.T) {
	svc, src := newFakeService(t)

	cat, posts := svc.PostsByCategory(context.Background(), "news", 5)
	require.NotNil(t, cat)
	assert.Len(t, posts, 2)

	q := src.lastQuery()
	assert.Equal(t, "blogPost", q.Get("content_type"))
	assert.Equal(t, "cat-news", q.Get("fields.category.sys.id"))
	assert.Equal(t, "5", q.Get("limit"))
}

func TestPostsByCategory_UnknownCategory(t *testing.T) {
	svc := New(&fakeSource{byType: map[string]*contentful.EntryCollection{}}, nil, testSite, zerolog.Nop())

	cat, posts := svc.PostsByCategory(context.Background(), "nope", 5)
	assert.Nil(t, cat)
	assert.Empty(t, posts)
}

// pagedSource serves total slug-only posts honoring skip and limit.
type pagedSource struct {
	total  int
	failAt int
}

func (p *pagedSource) GetEntries(ctx context.Context, query url.Values, opts contentful.Options) (*contentful.EntryCollection, error) {
	skip, _ := strconv.Atoi(query.Get("skip"))
	limit, _ := strconv.Atoi(query.Get("limit"))
	if skip == p.failAt {
		return nil, errors.New("page failed")
	}

	col := &contentful.EntryCollection{Total: p.total, Skip: skip, Limit: limit}
	for i := skip; i < skip+limit && i < p.total; i++ {
		col.Items = append(col.Items, contentful.Entry{
			Sys:    contentful.Sys{ID: fmt.Sprintf("post-%d", i)},
			Fields: map[string]any{"slug": fmt.Sprintf("slug-%d", i)},
		})
	}
	return col, nil
}

func TestAllPostSlugs(t *testing.T) {
	batch := pagination.NewBatchFetcher(pagination.Config{PageSize: 10, MaxConcurrency: 2})
	svc := New(&pagedSource{total: 25, failAt: -1}, batch, testSite, zerolog.Nop())

	slugs := svc.AllPostSlugs(context.Background())
	require.Len(t, slugs, 25)
	assert.Equal(t, "slug-0", slugs[0])
	assert.Equal(t, "slug-24", slugs[24])
}

func TestAllPostSlugs_PartialFailure(t *testing.T) {
	batch := pagination.NewBatchFetcher(pagination.Config{PageSize: 10, MaxConcurrency: 2})
	svc := New(&pagedSource{total: 25, failAt: 10}, batch, testSite, zerolog.Nop())

	slugs := svc.AllPostSlugs(context.Background())
	assert.Len(t, slugs, 15)
	assert.NotContains(t, slugs, "slug-10")
}

func TestAllPostSlugs_FirstPageFails(t *testing.T) {
	svc := New(&pagedSource{total: 25, failAt: 0}, nil, testSite, zerolog.Nop())

	slugs := svc.AllPostSlugs(context.Background())
	assert.NotNil(t, slugs)
	assert.Empty(t, slugs)
}
