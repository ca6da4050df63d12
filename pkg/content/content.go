// Package content defines the normalized site model produced from Contentful
// responses: pages with their sections, authors, assets, SEO fields and blog
// entries. Values are built once by pkg/mapper and treated as immutable.
package content

import "encoding/json"

// RichText is a Contentful rich-text document kept in its JSON form.
// Rendering it is left to the consumer.
type RichText = json.RawMessage

// Asset is an image or file reference.
type Asset struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	ContentType string `json:"contentType,omitempty"`
	FileName    string `json:"fileName,omitempty"`
	URL         string `json:"url,omitempty"`
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`
	Size        int    `json:"size,omitempty"`
}

// Author is referenced by pages and posts; the same author may appear on many.
type Author struct {
	Name  string   `json:"name"`
	Bio   RichText `json:"bio,omitempty"`
	Photo *Asset   `json:"photo,omitempty"`
	Email string   `json:"email,omitempty"`
}

// SEOFields is the optional SEO entry attached to a page or post.
type SEOFields struct {
	MetaTitle            string `json:"metaTitle,omitempty"`
	MetaDescription      string `json:"metaDescription,omitempty"`
	OpenGraphTitle       string `json:"openGraphTitle,omitempty"`
	OpenGraphDescription string `json:"openGraphDescription,omitempty"`
	OpenGraphImage       *Asset `json:"openGraphImage,omitempty"`
	NoIndex              bool   `json:"noIndex,omitempty"`
	NoFollow             bool   `json:"noFollow,omitempty"`
	CanonicalURL         string `json:"canonicalUrl,omitempty"`
}

// Page is a CMS page with its ordered sections.
type Page struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Summary     string     `json:"summary,omitempty"`
	ContentType string     `json:"contentType,omitempty"`
	PublishDate string     `json:"publishDate,omitempty"`
	UpdatedDate string     `json:"updatedDate,omitempty"`
	SEO         *SEOFields `json:"seo,omitempty"`
	Sections    []Section  `json:"sections"`
	Author      *Author    `json:"author,omitempty"`
}

// Category groups blog posts.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
}

// BlogPost is a blog entry from the REST API with its links resolved.
type BlogPost struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Slug          string     `json:"slug"`
	Excerpt       string     `json:"excerpt,omitempty"`
	Content       RichText   `json:"content,omitempty"`
	FeaturedImage *Asset     `json:"featuredImage,omitempty"`
	Author        *Author    `json:"author,omitempty"`
	Category      *Category  `json:"category,omitempty"`
	Tags          []string   `json:"tags,omitempty"`
	PublishDate   string     `json:"publishDate,omitempty"`
	CreatedAt     string     `json:"createdAt,omitempty"`
	UpdatedAt     string     `json:"updatedAt,omitempty"`
	SEO           *SEOFields `json:"seo,omitempty"`
}

// PostSummary is the listing view of a post.
type PostSummary struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Slug          string    `json:"slug"`
	Excerpt       string    `json:"excerpt,omitempty"`
	FeaturedImage *Asset    `json:"featuredImage,omitempty"`
	Category      *Category `json:"category,omitempty"`
	PublishDate   string    `json:"publishDate,omitempty"`
}

// Summary returns the listing view of p.
func (p *BlogPost) Summary() PostSummary {
	return PostSummary{
		ID:            p.ID,
		Title:         p.Title,
		Slug:          p.Slug,
		Excerpt:       p.Excerpt,
		FeaturedImage: p.FeaturedImage,
		Category:      p.Category,
		PublishDate:   p.PublishDate,
	}
}
