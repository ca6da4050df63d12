package mapper

import (
	"strings"
	"time"

	"github.com/Sternrassler/contentful-site/pkg/content"
	"github.com/Sternrassler/contentful-site/pkg/contentful"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Contentful content type ids used by the REST mappers.
const (
	ContentTypeBlogPost = "blogPost"
	ContentTypeCategory = "category"
	ContentTypeAuthor   = "author"
)

type rawAssetFile struct {
	URL         string `json:"url"`
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	Details     struct {
		Size  int `json:"size"`
		Image struct {
			Width  int `json:"width"`
			Height int `json:"height"`
		} `json:"image"`
	} `json:"details"`
}

type rawAssetFields struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	File        *rawAssetFile `json:"file"`
}

type rawBlogPostFields struct {
	Title       string   `json:"title"`
	Slug        string   `json:"slug"`
	Excerpt     string   `json:"excerpt"`
	Content     any      `json:"content"`
	Tags        []string `json:"tags"`
	PublishDate string   `json:"publishDate"`
}

type rawSEOFields struct {
	MetaTitle            string `json:"metaTitle"`
	MetaDescription      string `json:"metaDescription"`
	OpenGraphTitle       string `json:"openGraphTitle"`
	OpenGraphDescription string `json:"openGraphDescription"`
	NoIndex              bool   `json:"noIndex"`
	NoFollow             bool   `json:"noFollow"`
	CanonicalURL         string `json:"canonicalUrl"`
}

// MapBlogPost maps a blogPost entry. Links to the featured image, author,
// category and SEO entry are resolved against col; unresolvable links are
// left empty.
func MapBlogPost(entry contentful.Entry, col *contentful.EntryCollection) *content.BlogPost {
	var f rawBlogPostFields
	decode(entry.Fields, &f)

	post := &content.BlogPost{
		ID:          entry.Sys.ID,
		Title:       f.Title,
		Slug:        f.Slug,
		Excerpt:     f.Excerpt,
		Content:     marshalDocument(f.Content),
		Tags:        f.Tags,
		PublishDate: f.PublishDate,
		CreatedAt:   formatTime(entry.Sys.CreatedAt),
		UpdatedAt:   formatTime(entry.Sys.UpdatedAt),
	}
	if post.PublishDate == "" {
		post.PublishDate = post.CreatedAt
	}

	if linked, ok := col.Resolve(entry.Fields["featuredImage"]); ok {
		post.FeaturedImage = MapAsset(*linked)
	}
	if linked, ok := col.Resolve(entry.Fields["author"]); ok {
		post.Author = MapAuthor(*linked, col)
	}
	if linked, ok := col.Resolve(entry.Fields["category"]); ok {
		post.Category = MapCategory(*linked)
	}
	if linked, ok := col.Resolve(entry.Fields["seo"]); ok {
		post.SEO = mapSEOEntry(*linked, col)
	}

	return post
}

// MapBlogPosts maps every item of col.
func MapBlogPosts(col *contentful.EntryCollection) []*content.BlogPost {
	if col == nil {
		return nil
	}
	posts := make([]*content.BlogPost, 0, len(col.Items))
	for _, item := range col.Items {
		posts = append(posts, MapBlogPost(item, col))
	}
	return posts
}

// MapCategory maps a category entry. A missing name falls back to the
// title-cased slug ("web-design" becomes "Web Design").
func MapCategory(entry contentful.Entry) *content.Category {
	cat := &content.Category{
		ID:          entry.Sys.ID,
		Name:        stringAt(entry.Fields, "name"),
		Slug:        stringAt(entry.Fields, "slug"),
		Description: stringAt(entry.Fields, "description"),
	}
	if cat.Name == "" {
		cat.Name = DisplayName(cat.Slug)
	}
	return cat
}

// MapCategories maps every item of col.
func MapCategories(col *contentful.EntryCollection) []*content.Category {
	if col == nil {
		return nil
	}
	cats := make([]*content.Category, 0, len(col.Items))
	for _, item := range col.Items {
		cats = append(cats, MapCategory(item))
	}
	return cats
}

// MapAuthor maps an author entry, resolving its photo against col.
func MapAuthor(entry contentful.Entry, col *contentful.EntryCollection) *content.Author {
	author := &content.Author{
		Name:  stringAt(entry.Fields, "name"),
		Bio:   marshalDocument(entry.Fields["bio"]),
		Email: stringAt(entry.Fields, "email"),
	}
	if linked, ok := col.Resolve(entry.Fields["photo"]); ok {
		author.Photo = MapAsset(*linked)
	}
	return author
}

// MapAsset maps a REST asset. Protocol-relative URLs are kept as delivered.
func MapAsset(entry contentful.Entry) *content.Asset {
	var f rawAssetFields
	decode(entry.Fields, &f)
	asset := &content.Asset{
		Title:       f.Title,
		Description: f.Description,
	}
	if f.File != nil {
		asset.URL = f.File.URL
		asset.FileName = f.File.FileName
		asset.ContentType = f.File.ContentType
		asset.Size = f.File.Details.Size
		asset.Width = f.File.Details.Image.Width
		asset.Height = f.File.Details.Image.Height
	}
	return asset
}

// DisplayName turns a slug into a human-readable title.
func DisplayName(slug string) string {
	words := strings.FieldsFunc(slug, func(r rune) bool {
		return r == '-' || r == '_'
	})
	// a Caser keeps state, so each call gets its own
	return cases.Title(language.English).String(strings.Join(words, " "))
}

func mapSEOEntry(entry contentful.Entry, col *contentful.EntryCollection) *content.SEOFields {
	var f rawSEOFields
	decode(entry.Fields, &f)
	seo := &content.SEOFields{
		MetaTitle:            f.MetaTitle,
		MetaDescription:      f.MetaDescription,
		OpenGraphTitle:       f.OpenGraphTitle,
		OpenGraphDescription: f.OpenGraphDescription,
		NoIndex:              f.NoIndex,
		NoFollow:             f.NoFollow,
		CanonicalURL:         f.CanonicalURL,
	}
	if linked, ok := col.Resolve(entry.Fields["openGraphImage"]); ok {
		seo.OpenGraphImage = MapAsset(*linked)
	}
	return seo
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
