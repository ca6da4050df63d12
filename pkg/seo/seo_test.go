package seo

import (
	"testing"

	"github.com/Sternrassler/contentful-site/pkg/content"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSite = Site{BaseURL: "https://acme.test/", Name: "Acme"}

func TestDefault(t *testing.T) {
	md := Default(testSite)
	assert.Equal(t, DefaultTitle, md.Title)
	assert.Equal(t, DefaultDescription, md.Description)
	assert.Equal(t, "https://acme.test", md.CanonicalURL)
	assert.Nil(t, md.OGImage)
	assert.Nil(t, md.StructuredData)

	assert.Equal(t, "https://example.com", Default(Site{}).CanonicalURL)
}

func TestGenerate_NilPage(t *testing.T) {
	assert.Equal(t, Default(testSite), Generate(nil, testSite))
}

func TestCanonicalURL(t *testing.T) {
	tests := []struct {
		slug string
		want string
	}{
		{"home", "https://acme.test/"},
		{"about", "https://acme.test/about"},
		{"", "https://acme.test/"},
	}
	for _, tt := range tests {
		t.Run(tt.slug, func(t *testing.T) {
			assert.Equal(t, tt.want, CanonicalURL(testSite, tt.slug))
		})
	}
}

func TestGenerate_FallbackChains(t *testing.T) {
	tests := []struct {
		name              string
		page              *content.Page
		wantTitle         string
		wantDescription   string
		wantOGTitle       string
		wantOGDescription string
	}{
		{
			name:              "no seo entry, no summary",
			page:              &content.Page{Title: "About", Slug: "about"},
			wantTitle:         "About",
			wantDescription:   DefaultDescription,
			wantOGTitle:       "About",
			wantOGDescription: DefaultDescription,
		},
		{
			name:              "summary only",
			page:              &content.Page{Title: "About", Slug: "about", Summary: "Who we are"},
			wantTitle:         "About",
			wantDescription:   "Who we are",
			wantOGTitle:       "About",
			wantOGDescription: "Who we are",
		},
		{
			name: "meta fields",
			page: &content.Page{Title: "About", Slug: "about", Summary: "Who we are",
				SEO: &content.SEOFields{MetaTitle: "About | Acme", MetaDescription: "Meta desc"}},
			wantTitle:         "About | Acme",
			wantDescription:   "Meta desc",
			wantOGTitle:       "About | Acme",
			wantOGDescription: "Meta desc",
		},
		{
			name: "open graph overrides",
			page: &content.Page{Title: "About", Slug: "about",
				SEO: &content.SEOFields{MetaTitle: "M", OpenGraphTitle: "OG", OpenGraphDescription: "OG desc"}},
			wantTitle:         "M",
			wantDescription:   DefaultDescription,
			wantOGTitle:       "OG",
			wantOGDescription: "OG desc",
		},
		{
			name:              "untitled",
			page:              &content.Page{Slug: "x"},
			wantTitle:         DefaultTitle,
			wantDescription:   DefaultDescription,
			wantOGTitle:       DefaultTitle,
			wantOGDescription: DefaultDescription,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md := Generate(tt.page, testSite)
			assert.Equal(t, tt.wantTitle, md.Title)
			assert.Equal(t, tt.wantDescription, md.Description)
			assert.Equal(t, tt.wantOGTitle, md.OGTitle)
			assert.Equal(t, tt.wantOGDescription, md.OGDescription)
			assert.Nil(t, md.StructuredData, "only articles carry structured data")
		})
	}
}

func TestGenerate_OGImage(t *testing.T) {
	page := &content.Page{
		Title: "About",
		Slug:  "about",
		SEO: &content.SEOFields{
			OpenGraphImage: &content.Asset{URL: "//images.ctfassets.net/a.jpg"},
		},
	}

	md := Generate(page, testSite)
	require.NotNil(t, md.OGImage)
	assert.Equal(t, &OGImage{
		URL:    "https://images.ctfassets.net/a.jpg",
		Width:  1200,
		Height: 630,
		Alt:    "About",
	}, md.OGImage)

	page.SEO.OpenGraphImage = &content.Asset{URL: "https://cdn.test/b.png", Width: 640, Height: 480, Title: "B"}
	md = Generate(page, testSite)
	assert.Equal(t, &OGImage{URL: "https://cdn.test/b.png", Width: 640, Height: 480, Alt: "B"}, md.OGImage)
}

func TestGenerate_ArticleStructuredData(t *testing.T) {
	page := &content.Page{
		Title:       "Launch",
		Slug:        "launch",
		ContentType: "article",
		PublishDate: "2024-01-01",
		UpdatedDate: "2024-01-02",
		Author:      &content.Author{Name: "Ada"},
		SEO: &content.SEOFields{
			MetaDescription: "We launched",
			OpenGraphImage:  &content.Asset{URL: "//img/launch.jpg"},
		},
	}

	md := Generate(page, testSite)
	require.NotNil(t, md.StructuredData)

	sd := md.StructuredData
	assert.Equal(t, "https://schema.org", sd["@context"])
	assert.Equal(t, "Article", sd["@type"])
	assert.Equal(t, "Launch", sd["headline"])
	assert.Equal(t, "We launched", sd["description"])
	assert.Equal(t, "2024-01-01", sd["datePublished"])
	assert.Equal(t, "//img/launch.jpg", sd["image"])
	assert.Equal(t, map[string]any{"@type": "Person", "name": "Ada"}, sd["author"])
	assert.Equal(t, map[string]any{"@type": "WebPage", "@id": "https://acme.test/launch"}, sd["mainEntityOfPage"])

	pub := sd["publisher"].(map[string]any)
	assert.Equal(t, "Acme", pub["name"])
	assert.Equal(t, map[string]any{"@type": "ImageObject", "url": "https://acme.test/logo.png"}, pub["logo"])
}

func TestGenerate_ArticleDefaults(t *testing.T) {
	md := Generate(&content.Page{Slug: "a", ContentType: "article"}, Site{})
	sd := md.StructuredData
	require.NotNil(t, sd)
	assert.Equal(t, DefaultTitle, sd["headline"])
	assert.Equal(t, DefaultDescription, sd["description"])
	assert.Nil(t, sd["image"])
	assert.Equal(t, map[string]any{"@type": "Person", "name": "Site Author"}, sd["author"])
	assert.Equal(t, "Site Name", sd["publisher"].(map[string]any)["name"])
}

func TestGenerate_Robots(t *testing.T) {
	page := &content.Page{Slug: "p", SEO: &content.SEOFields{NoIndex: true, NoFollow: true}}
	assert.Equal(t, "noindex, nofollow", Generate(page, testSite).Robots)

	page.SEO.NoFollow = false
	assert.Equal(t, "noindex", Generate(page, testSite).Robots)
}

func TestForBlogPost(t *testing.T) {
	post := &content.BlogPost{
		Title:         "Hello",
		Slug:          "hello",
		Excerpt:       "First post",
		PublishDate:   "2024-03-01",
		UpdatedAt:     "2024-03-02T00:00:00Z",
		FeaturedImage: &content.Asset{URL: "//img/cover.jpg", Width: 1600, Height: 900},
		Author:        &content.Author{Name: "Ada"},
	}

	md := ForBlogPost(post, testSite)
	assert.Equal(t, "Hello", md.Title)
	assert.Equal(t, "First post", md.Description)
	assert.Equal(t, "https://acme.test/blog/hello", md.CanonicalURL)
	require.NotNil(t, md.OGImage)
	assert.Equal(t, "https://img/cover.jpg", md.OGImage.URL)
	assert.Equal(t, "Article", md.StructuredData["@type"])
	assert.Equal(t, map[string]any{"@type": "Person", "name": "Ada"}, md.StructuredData["author"])

	assert.Equal(t, Default(testSite), ForBlogPost(nil, testSite))
}

func TestJSONLD(t *testing.T) {
	data := JSONLDData{Title: "T", Name: "N", Description: "D"}

	article := JSONLD("article", data)
	assert.Equal(t, "Article", article["@type"])
	assert.Equal(t, "T", article["headline"])
	assert.Equal(t, map[string]any{"@type": "Person", "name": "Site Author"}, article["author"])

	product := JSONLD("product", data)
	assert.Equal(t, "Product", product["@type"])
	assert.Equal(t, "N", product["name"])

	page := JSONLD("event", data)
	assert.Equal(t, map[string]any{
		"@context":    "https://schema.org",
		"@type":       "WebPage",
		"name":        "T",
		"description": "D",
	}, page)
}
