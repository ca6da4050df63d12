// Package seo derives page metadata (title, description, canonical URL,
// Open Graph and JSON-LD) from normalized content. Metadata is computed per
// request and never cached.
package seo

import (
	"strings"

	"github.com/Sternrassler/contentful-site/pkg/content"
)

const (
	DefaultTitle       = "Default Page Title"
	DefaultDescription = "Default page description for the website."
	DefaultBaseURL     = "https://example.com"
	DefaultSiteName    = "Site Name"
	DefaultAuthorName  = "Site Author"

	// HomeSlug is served at the site root.
	HomeSlug = "home"

	ogImageWidth  = 1200
	ogImageHeight = 630
	schemaContext = "https://schema.org"
)

// Site carries the site-wide values metadata is built from.
type Site struct {
	BaseURL string
	Name    string
}

func (s Site) baseURL() string {
	if s.BaseURL == "" {
		return DefaultBaseURL
	}
	return strings.TrimRight(s.BaseURL, "/")
}

func (s Site) name() string {
	if s.Name == "" {
		return DefaultSiteName
	}
	return s.Name
}

// OGImage is the Open Graph image.
type OGImage struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Alt    string `json:"alt"`
}

// Metadata is the SEO view of a page or post.
type Metadata struct {
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	CanonicalURL   string         `json:"canonicalUrl"`
	OGTitle        string         `json:"ogTitle"`
	OGDescription  string         `json:"ogDescription"`
	OGImage        *OGImage       `json:"ogImage"`
	StructuredData map[string]any `json:"structuredData"`
	Robots         string         `json:"robots,omitempty"`
}

// Default returns the metadata used when there is no page.
func Default(site Site) *Metadata {
	return &Metadata{
		Title:        DefaultTitle,
		Description:  DefaultDescription,
		CanonicalURL: site.baseURL(),
	}
}

// CanonicalURL returns the canonical URL for slug. The home page maps to
// the site root.
func CanonicalURL(site Site, slug string) string {
	if slug == HomeSlug {
		slug = ""
	}
	return site.baseURL() + "/" + slug
}

// Generate builds metadata for page. Each field falls back through the SEO
// entry, the page's own fields and finally the site defaults.
func Generate(page *content.Page, site Site) *Metadata {
	if page == nil {
		return Default(site)
	}

	fields := page.SEO
	if fields == nil {
		fields = &content.SEOFields{}
	}

	canonical := CanonicalURL(site, page.Slug)

	md := &Metadata{
		Title:         firstNonEmpty(fields.MetaTitle, page.Title, DefaultTitle),
		Description:   firstNonEmpty(fields.MetaDescription, page.Summary, DefaultDescription),
		CanonicalURL:  canonical,
		OGTitle:       firstNonEmpty(fields.OpenGraphTitle, fields.MetaTitle, page.Title, DefaultTitle),
		OGDescription: firstNonEmpty(fields.OpenGraphDescription, fields.MetaDescription, page.Summary, DefaultDescription),
		OGImage:       ogImage(fields.OpenGraphImage, page.Title),
		Robots:        robots(fields),
	}

	if page.ContentType == "article" {
		var image any
		if fields.OpenGraphImage != nil && fields.OpenGraphImage.URL != "" {
			image = fields.OpenGraphImage.URL
		}
		authorName := DefaultAuthorName
		if page.Author != nil && page.Author.Name != "" {
			authorName = page.Author.Name
		}

		md.StructuredData = map[string]any{
			"@context":      schemaContext,
			"@type":         "Article",
			"headline":      firstNonEmpty(page.Title, DefaultTitle),
			"description":   firstNonEmpty(fields.MetaDescription, DefaultDescription),
			"datePublished": page.PublishDate,
			"dateModified":  page.UpdatedDate,
			"author": map[string]any{
				"@type": "Person",
				"name":  authorName,
			},
			"publisher": publisher(site),
			"image":     image,
			"mainEntityOfPage": map[string]any{
				"@type": "WebPage",
				"@id":   canonical,
			},
		}
	}

	return md
}

// ForBlogPost builds metadata for a blog post, served under /blog/<slug>.
func ForBlogPost(post *content.BlogPost, site Site) *Metadata {
	if post == nil {
		return Default(site)
	}

	fields := post.SEO
	if fields == nil {
		fields = &content.SEOFields{}
	}

	canonical := site.baseURL() + "/blog/" + post.Slug
	description := firstNonEmpty(fields.MetaDescription, post.Excerpt, DefaultDescription)

	image := fields.OpenGraphImage
	if image == nil {
		image = post.FeaturedImage
	}

	authorName := ""
	if post.Author != nil {
		authorName = post.Author.Name
	}

	structured := JSONLD("article", JSONLDData{
		Title:       post.Title,
		Description: description,
		PublishDate: post.PublishDate,
		UpdatedDate: post.UpdatedAt,
		AuthorName:  authorName,
	})
	structured["publisher"] = publisher(site)
	structured["mainEntityOfPage"] = map[string]any{"@type": "WebPage", "@id": canonical}

	return &Metadata{
		Title:          firstNonEmpty(fields.MetaTitle, post.Title, DefaultTitle),
		Description:    description,
		CanonicalURL:   canonical,
		OGTitle:        firstNonEmpty(fields.OpenGraphTitle, fields.MetaTitle, post.Title, DefaultTitle),
		OGDescription:  firstNonEmpty(fields.OpenGraphDescription, description),
		OGImage:        ogImage(image, post.Title),
		StructuredData: structured,
		Robots:         robots(fields),
	}
}

// ogImage builds the Open Graph image from an asset. Contentful serves
// protocol-relative URLs, which get an https: prefix.
func ogImage(asset *content.Asset, pageTitle string) *OGImage {
	if asset == nil || asset.URL == "" {
		return nil
	}

	url := asset.URL
	if strings.HasPrefix(url, "//") {
		url = "https:" + url
	}

	img := &OGImage{
		URL:    url,
		Width:  asset.Width,
		Height: asset.Height,
		Alt:    firstNonEmpty(asset.Title, pageTitle),
	}
	if img.Width == 0 {
		img.Width = ogImageWidth
	}
	if img.Height == 0 {
		img.Height = ogImageHeight
	}
	return img
}

func robots(fields *content.SEOFields) string {
	var parts []string
	if fields.NoIndex {
		parts = append(parts, "noindex")
	}
	if fields.NoFollow {
		parts = append(parts, "nofollow")
	}
	return strings.Join(parts, ", ")
}

func publisher(site Site) map[string]any {
	return map[string]any{
		"@type": "Organization",
		"name":  site.name(),
		"logo": map[string]any{
			"@type": "ImageObject",
			"url":   site.baseURL() + "/logo.png",
		},
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
