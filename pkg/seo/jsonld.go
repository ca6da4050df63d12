package seo

// JSONLDData holds the values a JSON-LD document can draw from.
type JSONLDData struct {
	Title       string
	Name        string
	Description string
	PublishDate string
	UpdatedDate string
	AuthorName  string
}

// JSONLD returns a schema.org document of the given kind: "article",
// "product", or a WebPage for anything else.
func JSONLD(kind string, data JSONLDData) map[string]any {
	switch kind {
	case "article":
		author := data.AuthorName
		if author == "" {
			author = DefaultAuthorName
		}
		return map[string]any{
			"@context":      schemaContext,
			"@type":         "Article",
			"headline":      data.Title,
			"description":   data.Description,
			"datePublished": data.PublishDate,
			"dateModified":  data.UpdatedDate,
			"author": map[string]any{
				"@type": "Person",
				"name":  author,
			},
		}

	case "product":
		return map[string]any{
			"@context":    schemaContext,
			"@type":       "Product",
			"name":        data.Name,
			"description": data.Description,
		}

	default:
		return map[string]any{
			"@context":    schemaContext,
			"@type":       "WebPage",
			"name":        data.Title,
			"description": data.Description,
		}
	}
}
