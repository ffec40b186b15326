package scraper

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/kamilkurczyna/okazje-bot/internal/listing"
	"github.com/kamilkurczyna/okazje-bot/internal/normalize"
)

// structuredData is the first chain strategy: parse embedded JSON-LD
// payloads. Most platform-specific and most complete when present.
func structuredData(p *page, cfg ExtractorConfig) *listing.Listing {
	out := &listing.Listing{}

	p.doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(i int, s *goquery.Selection) bool {
		var payload any
		if err := json.Unmarshal([]byte(s.Text()), &payload); err != nil {
			return true
		}
		for _, node := range flattenJSONLD(payload) {
			fillFromNode(out, node)
		}
		return !filled(out)
	})

	return out
}

// flattenJSONLD unwraps top-level arrays and @graph containers into a
// flat list of object nodes
func flattenJSONLD(payload any) []map[string]any {
	var nodes []map[string]any
	switch v := payload.(type) {
	case []any:
		for _, item := range v {
			nodes = append(nodes, flattenJSONLD(item)...)
		}
	case map[string]any:
		nodes = append(nodes, v)
		if graph, ok := v["@graph"].([]any); ok {
			for _, item := range graph {
				nodes = append(nodes, flattenJSONLD(item)...)
			}
		}
	}
	return nodes
}

// fillFromNode fills empty fields of out from a single JSON-LD node
func fillFromNode(out *listing.Listing, node map[string]any) {
	if out.Title == "" {
		out.Title = stringField(node, "name")
	}
	if out.Description == "" {
		out.Description = stringField(node, "description")
	}

	if offers, ok := node["offers"].(map[string]any); ok {
		fillFromOffer(out, offers)
	} else if offerList, ok := node["offers"].([]any); ok {
		for _, o := range offerList {
			if offer, ok := o.(map[string]any); ok {
				fillFromOffer(out, offer)
			}
		}
	}

	if out.Price == 0 {
		out.Price = priceValue(node["price"])
	}
	if out.Condition == "" {
		out.Condition = stringField(node, "itemCondition")
	}
	if out.Seller == "" {
		out.Seller = nameOf(node["seller"])
	}
	if out.Location == "" {
		out.Location = locationOf(node)
	}
	if len(out.Images) == 0 {
		out.Images = imageList(node["image"])
	}
	if len(out.Images) == 0 {
		out.Images = imageList(node["photos"])
	}
}

func fillFromOffer(out *listing.Listing, offer map[string]any) {
	if out.Price == 0 {
		out.Price = priceValue(offer["price"])
	}
	if out.Condition == "" {
		out.Condition = stringField(offer, "itemCondition")
	}
	if out.Seller == "" {
		out.Seller = nameOf(offer["seller"])
	}
}

// priceValue coerces a JSON-LD price, which sites serve as either a
// number or a locale-formatted string
func priceValue(v any) float64 {
	switch value := v.(type) {
	case float64:
		if value > 0 {
			return value
		}
	case string:
		if price, ok := normalize.ParsePrice(value); ok {
			return price
		}
	}
	return 0
}

func stringField(node map[string]any, key string) string {
	s, _ := node[key].(string)
	return strings.TrimSpace(s)
}

// nameOf extracts a display name from a string or a {name: ...} object
func nameOf(v any) string {
	switch value := v.(type) {
	case string:
		return strings.TrimSpace(value)
	case map[string]any:
		return stringField(value, "name")
	}
	return ""
}

// locationOf looks at the keys sites use for the offer's location
func locationOf(node map[string]any) string {
	for _, key := range []string{"areaServed", "location", "address"} {
		switch v := node[key].(type) {
		case string:
			return strings.TrimSpace(v)
		case map[string]any:
			if locality := stringField(v, "addressLocality"); locality != "" {
				if region := stringField(v, "addressRegion"); region != "" {
					return fmt.Sprintf("%s, %s", locality, region)
				}
				return locality
			}
			if name := stringField(v, "name"); name != "" {
				return name
			}
		}
	}
	return ""
}

// imageList accepts a single URL, a list of URLs, or a list of
// {url: ...} objects
func imageList(v any) []string {
	var images []string
	switch value := v.(type) {
	case string:
		if value != "" {
			images = append(images, value)
		}
	case []any:
		for _, item := range value {
			switch img := item.(type) {
			case string:
				if img != "" {
					images = append(images, img)
				}
			case map[string]any:
				if u := stringField(img, "url"); u != "" {
					images = append(images, u)
				}
			}
		}
	}
	return images
}
