package scraper

import (
	"regexp"
	"strings"

	"github.com/kamilkurczyna/okazje-bot/internal/listing"
	"github.com/kamilkurczyna/okazje-bot/internal/normalize"
)

// rawDescLen is how much page text the raw-text pass keeps as a
// description before the output cap applies
const rawDescLen = 500

var (
	// priceTokenRe matches a locale-formatted amount followed by the
	// currency marker: digits, optional space thousands separators,
	// optional decimal part
	priceTokenRe = regexp.MustCompile(`(\d[\d\s\x{00A0}]*(?:[.,]\d{1,2})?)\s*zł`)

	// locationRe matches a place name followed by a voivodeship-style
	// suffix, e.g. "Bielsko-Biała, śląskie"
	locationRe = regexp.MustCompile(`(\p{Lu}[\p{L}\s-]+),\s*(\p{L}+kie)\b`)
)

// defaultDescMarkers are the phrases Polish sellers open their
// descriptions with
var defaultDescMarkers = []string{"Polecam", "Sprzedam", "Oferuję", "Zapraszam", "Stan:"}

// rawText is the last chain strategy: regex heuristics over the whole
// page. It always produces something usable for the classifier even on
// markup the earlier strategies cannot read.
func rawText(p *page, cfg ExtractorConfig) *listing.Listing {
	return &listing.Listing{
		Price:       rawPrice(p.raw),
		Location:    rawLocation(p.text),
		Condition:   rawCondition(p.text),
		Description: rawDescription(p.text, cfg),
	}
}

func rawPrice(raw string) float64 {
	match := priceTokenRe.FindStringSubmatch(raw)
	if match == nil {
		return 0
	}
	price, ok := normalize.ParsePrice(match[1])
	if !ok {
		return 0
	}
	return price
}

func rawLocation(text string) string {
	return strings.TrimSpace(locationRe.FindString(text))
}

func rawCondition(text string) string {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "nowe"):
		return "nowe"
	case strings.Contains(lower, "używane"):
		return "używane"
	}
	return ""
}

// rawDescription takes the text following the first marker phrase, or
// the start of the page text when no marker is present
func rawDescription(text string, cfg ExtractorConfig) string {
	markers := cfg.DescMarkers
	if len(markers) == 0 {
		markers = defaultDescMarkers
	}

	for _, marker := range markers {
		if idx := strings.Index(text, marker); idx != -1 {
			return normalize.Truncate(normalize.CollapseWhitespace(text[idx:]), rawDescLen)
		}
	}
	return normalize.Truncate(normalize.CollapseWhitespace(text), rawDescLen)
}
