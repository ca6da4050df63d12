package contentful

import "time"

// Sys is the system metadata Contentful attaches to every entry, asset and link.
type Sys struct {
	ID          string     `json:"id"`
	Type        string     `json:"type"`
	LinkType    string     `json:"linkType,omitempty"`
	ContentType *Link      `json:"contentType,omitempty"`
	Locale      string     `json:"locale,omitempty"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

// Link is a reference to another entry or asset.
type Link struct {
	Sys Sys `json:"sys"`
}

// Entry is a single entry or asset as returned by the REST APIs.
// Fields stay untyped; pkg/mapper decodes them per content type.
type Entry struct {
	Sys    Sys            `json:"sys"`
	Fields map[string]any `json:"fields"`
}

// ContentTypeID returns the entry's content type id, or "" for assets.
func (e Entry) ContentTypeID() string {
	if e.Sys.ContentType == nil {
		return ""
	}
	return e.Sys.ContentType.Sys.ID
}

// Includes holds linked entries and assets returned alongside a collection.
type Includes struct {
	Entry []Entry `json:"Entry,omitempty"`
	Asset []Entry `json:"Asset,omitempty"`
}

// EntryCollection is the response of a getEntries call.
type EntryCollection struct {
	Total    int      `json:"total"`
	Skip     int      `json:"skip"`
	Limit    int      `json:"limit"`
	Items    []Entry  `json:"items"`
	Includes Includes `json:"includes"`
}

// Resolve looks up the entry or asset a link field points to. field is the
// raw decoded field value, i.e. {"sys":{"type":"Link","linkType":"Entry","id":"..."}}.
// Items of the collection itself are also searched, since Contentful does not
// repeat them in includes.
func (c *EntryCollection) Resolve(field any) (*Entry, bool) {
	if c == nil {
		return nil, false
	}
	id, linkType, ok := linkTarget(field)
	if !ok {
		return nil, false
	}

	var pools [][]Entry
	switch linkType {
	case "Asset":
		pools = [][]Entry{c.Includes.Asset}
	default:
		pools = [][]Entry{c.Includes.Entry, c.Items}
	}
	for _, pool := range pools {
		for i := range pool {
			if pool[i].Sys.ID == id {
				return &pool[i], true
			}
		}
	}
	return nil, false
}

// linkTarget extracts id and linkType from a raw link value.
func linkTarget(field any) (id, linkType string, ok bool) {
	m, isMap := field.(map[string]any)
	if !isMap {
		return "", "", false
	}
	sys, isMap := m["sys"].(map[string]any)
	if !isMap {
		return "", "", false
	}
	if t, _ := sys["type"].(string); t != "Link" {
		return "", "", false
	}
	id, _ = sys["id"].(string)
	linkType, _ = sys["linkType"].(string)
	return id, linkType, id != ""
}
