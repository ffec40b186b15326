package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/kamilkurczyna/okazje-bot/internal/listing"
	"github.com/kamilkurczyna/okazje-bot/internal/normalize"
)

// semanticMarkup is the second chain strategy: read the markup
// elements conventionally used for title, price and description.
func semanticMarkup(p *page, cfg ExtractorConfig) *listing.Listing {
	out := &listing.Listing{
		Title:       markupTitle(p.doc),
		Price:       markupPrice(p.doc),
		Description: markupDescription(p.doc, cfg),
		Seller:      markupSeller(p, cfg),
		Images:      markupImages(p.doc, cfg),
	}
	return out
}

func markupTitle(doc *goquery.Document) string {
	if h1 := doc.Find("h1").First(); h1.Length() > 0 {
		if title := strings.TrimSpace(h1.Text()); title != "" {
			return title
		}
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

// markupPrice tries price-flavored attributes and classes in order of
// reliability
func markupPrice(doc *goquery.Document) float64 {
	if content, exists := doc.Find(`meta[itemprop="price"]`).First().Attr("content"); exists {
		if price, ok := normalize.ParsePrice(content); ok && price > 0 {
			return price
		}
	}

	var price float64
	doc.Find(`[itemprop="price"], [class*="price"], [class*="cena"]`).EachWithBreak(func(i int, s *goquery.Selection) bool {
		token := priceTokenRe.FindStringSubmatch(s.Text())
		if token == nil {
			return true
		}
		if v, ok := normalize.ParsePrice(token[1]); ok && v > 0 {
			price = v
			return false
		}
		return true
	})
	return price
}

func markupDescription(doc *goquery.Document, cfg ExtractorConfig) string {
	selector := cfg.DescSelector
	if selector == "" {
		selector = `div[class*="desc"], div[class*="opis"], div[class*="content"]`
	}

	var parts []string
	doc.Find(selector).EachWithBreak(func(i int, s *goquery.Selection) bool {
		if text := normalize.CollapseWhitespace(s.Text()); text != "" {
			parts = append(parts, text)
		}
		return len(parts) < 3
	})
	return strings.Join(parts, "\n")
}

func markupSeller(p *page, cfg ExtractorConfig) string {
	if cfg.SellerPattern == nil {
		return ""
	}
	match := cfg.SellerPattern.FindStringSubmatch(p.raw)
	if match == nil {
		return ""
	}
	return strings.TrimSpace(match[1])
}

// markupImages collects img sources matching the platform's photo
// filter. Platforms without a filter contribute no images here.
func markupImages(doc *goquery.Document, cfg ExtractorConfig) []string {
	if cfg.ImageFilter == "" {
		return nil
	}

	var images []string
	doc.Find("img").Each(func(i int, s *goquery.Selection) {
		src, exists := s.Attr("src")
		if exists && strings.Contains(src, cfg.ImageFilter) {
			images = append(images, src)
		}
	})
	return images
}
