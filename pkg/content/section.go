package content

import "encoding/json"

// Section type tags, as sent by Contentful in sys.__typename and echoed in
// the "type" field of the JSON output.
const (
	TypeContentSection         = "ContentSection"
	TypeHeroSection            = "HeroSection"
	TypeFeaturedContentSection = "FeaturedContentSection"
	TypeUnknownSection         = "UnknownSection"
)

// Defaults applied by the mapper when a field is absent.
const (
	DefaultContentLayout  = "default"
	DefaultAlignment      = "left"
	DefaultHeroTextColor  = "#ffffff"
	DefaultOverlayOpacity = 0.5
	DefaultFeaturedLayout = "grid"
	DefaultFeaturedPerRow = 3
)

// Section is one block of a page. The set of implementations is closed:
// ContentSection, HeroSection, FeaturedContentSection and UnknownSection.
type Section interface {
	// SectionID returns the CMS entry id.
	SectionID() string

	// SectionType returns the type tag.
	SectionType() string

	section()
}

// ContentSection is a rich-text block with optional media and call to action.
type ContentSection struct {
	ID              string   `json:"id"`
	Title           string   `json:"title,omitempty"`
	Subtitle        string   `json:"subtitle,omitempty"`
	Content         RichText `json:"content,omitempty"`
	Media           *Asset   `json:"media,omitempty"`
	CTAText         string   `json:"ctaText,omitempty"`
	CTAURL          string   `json:"ctaUrl,omitempty"`
	Layout          string   `json:"layout"`
	BackgroundColor string   `json:"backgroundColor,omitempty"`
	Alignment       string   `json:"alignment"`
}

// HeroSection is a full-width banner.
type HeroSection struct {
	ID              string  `json:"id"`
	Title           string  `json:"title,omitempty"`
	Subtitle        string  `json:"subtitle,omitempty"`
	BackgroundImage *Asset  `json:"backgroundImage,omitempty"`
	CTAText         string  `json:"ctaText,omitempty"`
	CTAURL          string  `json:"ctaUrl,omitempty"`
	TextColor       string  `json:"textColor"`
	OverlayOpacity  float64 `json:"overlayOpacity"`
}

// FeaturedItem is a card inside a FeaturedContentSection.
type FeaturedItem struct {
	ID          string `json:"id"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Image       *Asset `json:"image,omitempty"`
	Link        string `json:"link,omitempty"`
}

// FeaturedContentSection is a grid, carousel or list of cards.
type FeaturedContentSection struct {
	ID          string         `json:"id"`
	Title       string         `json:"title,omitempty"`
	Subtitle    string         `json:"subtitle,omitempty"`
	Layout      string         `json:"layout"`
	ItemsPerRow int            `json:"itemsPerRow"`
	Items       []FeaturedItem `json:"items"`
}

// UnknownSection carries a section whose type tag is not recognized.
// RawData is the section exactly as received.
type UnknownSection struct {
	ID      string         `json:"id"`
	RawData map[string]any `json:"rawData"`
}

func (s ContentSection) SectionID() string         { return s.ID }
func (s HeroSection) SectionID() string            { return s.ID }
func (s FeaturedContentSection) SectionID() string { return s.ID }
func (s UnknownSection) SectionID() string         { return s.ID }

func (ContentSection) SectionType() string         { return TypeContentSection }
func (HeroSection) SectionType() string            { return TypeHeroSection }
func (FeaturedContentSection) SectionType() string { return TypeFeaturedContentSection }
func (UnknownSection) SectionType() string         { return TypeUnknownSection }

func (ContentSection) section()         {}
func (HeroSection) section()            {}
func (FeaturedContentSection) section() {}
func (UnknownSection) section()         {}

// MarshalJSON adds the "type" tag.
func (s ContentSection) MarshalJSON() ([]byte, error) {
	type fields ContentSection
	return json.Marshal(struct {
		Type string `json:"type"`
		fields
	}{TypeContentSection, fields(s)})
}

// MarshalJSON adds the "type" tag.
func (s HeroSection) MarshalJSON() ([]byte, error) {
	type fields HeroSection
	return json.Marshal(struct {
		Type string `json:"type"`
		fields
	}{TypeHeroSection, fields(s)})
}

// MarshalJSON adds the "type" tag.
func (s FeaturedContentSection) MarshalJSON() ([]byte, error) {
	type fields FeaturedContentSection
	return json.Marshal(struct {
		Type string `json:"type"`
		fields
	}{TypeFeaturedContentSection, fields(s)})
}

// MarshalJSON adds the "type" tag.
func (s UnknownSection) MarshalJSON() ([]byte, error) {
	type fields UnknownSection
	return json.Marshal(struct {
		Type string `json:"type"`
		fields
	}{TypeUnknownSection, fields(s)})
}
