package mapper

import "github.com/Sternrassler/contentful-site/pkg/content"

type rawContentSection struct {
	Sys             rawSys         `json:"sys"`
	Title           string         `json:"title"`
	Subtitle        string         `json:"subtitle"`
	Content         *rawRichText   `json:"content"`
	Media           *content.Asset `json:"media"`
	CTAText         string         `json:"ctaText"`
	CTAURL          string         `json:"ctaUrl"`
	Layout          string         `json:"layout"`
	BackgroundColor string         `json:"backgroundColor"`
	Alignment       string         `json:"alignment"`
}

type rawHeroSection struct {
	Sys             rawSys         `json:"sys"`
	Title           string         `json:"title"`
	Subtitle        string         `json:"subtitle"`
	BackgroundImage *content.Asset `json:"backgroundImage"`
	CTAText         string         `json:"ctaText"`
	CTAURL          string         `json:"ctaUrl"`
	TextColor       string         `json:"textColor"`
	OverlayOpacity  float64        `json:"overlayOpacity"`
}

type rawFeaturedItem struct {
	Sys         rawSys         `json:"sys"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Image       *content.Asset `json:"image"`
	Link        string         `json:"link"`
}

type rawFeaturedSection struct {
	Sys             rawSys `json:"sys"`
	Title           string `json:"title"`
	Subtitle        string `json:"subtitle"`
	Layout          string `json:"layout"`
	ItemsPerRow     int    `json:"itemsPerRow"`
	ItemsCollection struct {
		Items []*rawFeaturedItem `json:"items"`
	} `json:"itemsCollection"`
}

// MapSection maps one raw section on its sys.__typename. Unrecognized tags
// yield an UnknownSection holding raw unchanged. A recognized tag always keeps
// its variant; fields of the wrong shape fall back to their defaults.
func MapSection(raw map[string]any) content.Section {
	switch stringAt(raw, "sys", "__typename") {
	case content.TypeContentSection:
		return mapContentSection(raw)
	case content.TypeHeroSection:
		return mapHeroSection(raw)
	case content.TypeFeaturedContentSection:
		return mapFeaturedSection(raw)
	default:
		return unknownSection(raw)
	}
}

func unknownSection(raw map[string]any) content.UnknownSection {
	return content.UnknownSection{
		ID:      stringAt(raw, "sys", "id"),
		RawData: raw,
	}
}

func mapContentSection(raw map[string]any) content.Section {
	var rs rawContentSection
	decode(raw, &rs)
	return content.ContentSection{
		ID:              rs.Sys.ID,
		Title:           rs.Title,
		Subtitle:        rs.Subtitle,
		Content:         richText(rs.Content),
		Media:           rs.Media,
		CTAText:         rs.CTAText,
		CTAURL:          rs.CTAURL,
		Layout:          orDefault(rs.Layout, content.DefaultContentLayout),
		BackgroundColor: rs.BackgroundColor,
		Alignment:       orDefault(rs.Alignment, content.DefaultAlignment),
	}
}

func mapHeroSection(raw map[string]any) content.Section {
	var rs rawHeroSection
	decode(raw, &rs)
	opacity := rs.OverlayOpacity
	if opacity == 0 {
		opacity = content.DefaultOverlayOpacity
	}
	return content.HeroSection{
		ID:              rs.Sys.ID,
		Title:           rs.Title,
		Subtitle:        rs.Subtitle,
		BackgroundImage: rs.BackgroundImage,
		CTAText:         rs.CTAText,
		CTAURL:          rs.CTAURL,
		TextColor:       orDefault(rs.TextColor, content.DefaultHeroTextColor),
		OverlayOpacity:  opacity,
	}
}

func mapFeaturedSection(raw map[string]any) content.Section {
	var rs rawFeaturedSection
	decode(raw, &rs)
	perRow := rs.ItemsPerRow
	if perRow == 0 {
		perRow = content.DefaultFeaturedPerRow
	}

	items := make([]content.FeaturedItem, 0, len(rs.ItemsCollection.Items))
	for _, it := range rs.ItemsCollection.Items {
		if it == nil {
			continue
		}
		items = append(items, content.FeaturedItem{
			ID:          it.Sys.ID,
			Title:       it.Title,
			Description: it.Description,
			Image:       it.Image,
			Link:        it.Link,
		})
	}

	return content.FeaturedContentSection{
		ID:          rs.Sys.ID,
		Title:       rs.Title,
		Subtitle:    rs.Subtitle,
		Layout:      orDefault(rs.Layout, content.DefaultFeaturedLayout),
		ItemsPerRow: perRow,
		Items:       items,
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
