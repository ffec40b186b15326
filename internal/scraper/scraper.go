// Package scraper turns a classifieds detail page into a normalized
// listing. Each platform gets an extractor configured with its quirks;
// all extractors share the same fallback chain of strategies.
package scraper

import (
	"context"
	"strings"

	"github.com/kamilkurczyna/okazje-bot/helpers"
	"github.com/kamilkurczyna/okazje-bot/internal/listing"
)

// Extractor is the contract every platform adapter implements
type Extractor interface {
	// Extract fetches the detail page at url and runs the fallback
	// chain, returning a normalized listing or a typed error
	Extract(ctx context.Context, url string) (*listing.Listing, error)

	// Platform returns the platform this extractor handles
	Platform() listing.Platform
}

// platformDomains maps URL substrings to platforms. Patterns are
// mutually exclusive by domain, so match order does not matter.
var platformDomains = map[string]listing.Platform{
	"sprzedajemy.pl": listing.PlatformSprzedajemy,
	"olx.pl":         listing.PlatformOLX,
	"allegro.pl":     listing.PlatformAllegro,
	"vinted.pl":      listing.PlatformVinted,
	"gratka.pl":      listing.PlatformGratka,
}

// DetectPlatform returns the platform whose domain pattern matches
// url. Unmatched input degrades to the generic platform, never an
// error.
func DetectPlatform(url string) listing.Platform {
	for domain, platform := range platformDomains {
		if strings.Contains(url, domain) {
			return platform
		}
	}
	return listing.PlatformOther
}

// Dispatcher routes a URL to the matching platform extractor
type Dispatcher struct {
	extractors map[listing.Platform]Extractor
}

// NewDispatcher creates a dispatcher over the full set of platform
// extractors
func NewDispatcher(fetcher *helpers.Fetcher) *Dispatcher {
	return &Dispatcher{extractors: NewExtractors(fetcher)}
}

// ForURL returns the extractor for the platform matching url, falling
// back to the generic extractor. Never returns nil.
func (d *Dispatcher) ForURL(url string) Extractor {
	if e, ok := d.extractors[DetectPlatform(url)]; ok {
		return e
	}
	return d.extractors[listing.PlatformOther]
}

// Extract routes url to its platform extractor and runs it
func (d *Dispatcher) Extract(ctx context.Context, url string) (*listing.Listing, error) {
	return d.ForURL(url).Extract(ctx, url)
}
