package scraper

import (
	"regexp"

	"github.com/kamilkurczyna/okazje-bot/helpers"
	"github.com/kamilkurczyna/okazje-bot/internal/listing"
)

// NewExtractors creates the full set of platform extractors, one per
// known platform plus the generic fallback
func NewExtractors(fetcher *helpers.Fetcher) map[listing.Platform]Extractor {
	configurations := []ExtractorConfig{
		{
			// Sprzedajemy renders server-side and is the friendliest
			// page to parse
			Platform:      listing.PlatformSprzedajemy,
			DescMarkers:   []string{"Polecam", "Sprzedam", "Oferuję", "Zapraszam", "Stan:"},
			DescSelector:  `div[class*="desc"], div[class*="opis"], div[class*="content"]`,
			ImageFilter:   "thumbs",
			SellerPattern: regexp.MustCompile(`class="[^"]*user[^"]*"[^>]*>([^<]+)`),
		},
		{
			Platform:    listing.PlatformGratka,
			DescMarkers: []string{"Opis", "Sprzedam", "Polecam"},
		},
		{
			// OLX is JS-heavy; the offer API carries the real data
			Platform:    listing.PlatformOLX,
			UseOfferAPI: true,
		},
		{
			Platform: listing.PlatformAllegro,
		},
		{
			Platform: listing.PlatformVinted,
		},
		{
			Platform: listing.PlatformOther,
		},
	}

	extractors := make(map[listing.Platform]Extractor, len(configurations))
	for _, cfg := range configurations {
		extractors[cfg.Platform] = NewPlatformExtractor(cfg, fetcher)
	}
	return extractors
}
