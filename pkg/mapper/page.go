// Package mapper translates raw Contentful responses into the normalized
// model in pkg/content.
//
// Mapping is pure: it reads only its input, never the clock or any global
// state, so the same input always yields the same output. Unexpected shapes
// degrade to defaults or to content.UnknownSection instead of failing.
package mapper

import (
	"encoding/json"
	"reflect"
	"strconv"

	"github.com/Sternrassler/contentful-site/pkg/content"
	"github.com/mitchellh/mapstructure"
)

type rawSys struct {
	ID       string `json:"id"`
	Typename string `json:"__typename"`
}

type rawRichText struct {
	JSON any `json:"json"`
}

type rawAuthor struct {
	Name  string         `json:"name"`
	Bio   *rawRichText   `json:"bio"`
	Photo *content.Asset `json:"photo"`
	Email string         `json:"email"`
}

type rawPage struct {
	Sys         rawSys             `json:"sys"`
	Title       string             `json:"title"`
	Slug        string             `json:"slug"`
	Summary     string             `json:"summary"`
	ContentType string             `json:"contentType"`
	PublishDate string             `json:"publishDate"`
	UpdatedDate string             `json:"updatedDate"`
	SEO         *content.SEOFields `json:"seo"`
	Author      *rawAuthor         `json:"author"`
}

// decode copies a raw map into out using the json tags of out's fields.
// Scalars are converted loosely (e.g. 3.0 into an int field). A value whose
// shape cannot fill its field leaves that field zero and the rest decoding,
// so decode never fails.
func decode(input any, out any) {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "json",
		WeaklyTypedInput: true,
		DecodeHook:       dropUnconvertible,
	})
	if err != nil {
		return
	}
	// fields that did decode are kept even when an error is reported
	_ = dec.Decode(input)
}

// dropUnconvertible replaces a value that cannot fill the target field with
// the field's zero value.
func dropUnconvertible(from, to reflect.Value) (any, error) {
	if convertible(from, to.Type()) {
		return from.Interface(), nil
	}
	if to.Kind() == reflect.Ptr {
		// a nil map makes mapstructure store a nil pointer
		return map[string]any(nil), nil
	}
	if to.Kind() == reflect.Struct {
		return map[string]any{}, nil
	}
	return reflect.Zero(to.Type()).Interface(), nil
}

func convertible(from reflect.Value, to reflect.Type) bool {
	for to.Kind() == reflect.Ptr {
		to = to.Elem()
	}
	for from.Kind() == reflect.Interface || from.Kind() == reflect.Ptr {
		if from.IsNil() {
			return true
		}
		from = from.Elem()
	}

	switch to.Kind() {
	case reflect.Interface:
		return true
	case reflect.Struct, reflect.Map:
		return from.Kind() == reflect.Map
	case reflect.Slice, reflect.Array:
		return from.Kind() == reflect.Slice || from.Kind() == reflect.Array || isScalar(from.Kind())
	case reflect.String:
		return isScalar(from.Kind())
	case reflect.Bool:
		if from.Kind() == reflect.String {
			_, err := strconv.ParseBool(from.String())
			return err == nil || from.String() == ""
		}
		return isScalar(from.Kind())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if from.Kind() == reflect.String {
			_, err := strconv.ParseInt(from.String(), 0, 64)
			return err == nil || from.String() == ""
		}
		return isScalar(from.Kind())
	case reflect.Float32, reflect.Float64:
		if from.Kind() == reflect.String {
			_, err := strconv.ParseFloat(from.String(), 64)
			return err == nil || from.String() == ""
		}
		return isScalar(from.Kind())
	}
	return false
}

func isScalar(k reflect.Kind) bool {
	switch k {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// MapPageFromGraphQL maps a PageBySlug GraphQL "data" object to a Page.
// It returns nil when the collection holds no page.
func MapPageFromGraphQL(raw map[string]any) *content.Page {
	items := collectionItems(raw, "pageCollection")
	if len(items) == 0 {
		return nil
	}
	item, ok := items[0].(map[string]any)
	if !ok {
		return nil
	}

	var rp rawPage
	decode(item, &rp)

	page := &content.Page{
		ID:          rp.Sys.ID,
		Title:       rp.Title,
		Slug:        rp.Slug,
		Summary:     rp.Summary,
		ContentType: rp.ContentType,
		PublishDate: rp.PublishDate,
		UpdatedDate: rp.UpdatedDate,
		SEO:         rp.SEO,
		Sections:    []content.Section{},
	}

	for _, s := range itemsOf(item["sectionsCollection"]) {
		sm, ok := s.(map[string]any)
		if !ok {
			continue
		}
		page.Sections = append(page.Sections, MapSection(sm))
	}

	if rp.Author != nil {
		page.Author = &content.Author{
			Name:  rp.Author.Name,
			Bio:   richText(rp.Author.Bio),
			Photo: rp.Author.Photo,
			Email: rp.Author.Email,
		}
	}

	return page
}

// MapPageSlugs extracts slugs from an AllPageSlugs GraphQL "data" object.
func MapPageSlugs(raw map[string]any) []string {
	items := collectionItems(raw, "pageCollection")
	slugs := make([]string, 0, len(items))
	for _, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			continue
		}
		if slug := stringAt(m, "slug"); slug != "" {
			slugs = append(slugs, slug)
		}
	}
	return slugs
}

// collectionItems returns raw[name].items, or nil if any level is missing.
func collectionItems(raw map[string]any, name string) []any {
	if raw == nil {
		return nil
	}
	return itemsOf(raw[name])
}

// itemsOf returns coll.items for a raw GraphQL collection.
func itemsOf(coll any) []any {
	m, ok := coll.(map[string]any)
	if !ok {
		return nil
	}
	items, _ := m["items"].([]any)
	return items
}

// stringAt walks nested maps along path and returns the string found there.
func stringAt(m map[string]any, path ...string) string {
	var cur any = m
	for _, p := range path {
		mm, ok := cur.(map[string]any)
		if !ok {
			return ""
		}
		cur = mm[p]
	}
	s, _ := cur.(string)
	return s
}

// richText re-encodes the "json" document of a rich-text field.
func richText(rt *rawRichText) content.RichText {
	if rt == nil || rt.JSON == nil {
		return nil
	}
	return marshalDocument(rt.JSON)
}

func marshalDocument(doc any) content.RichText {
	if doc == nil {
		return nil
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil
	}
	return content.RichText(data)
}
