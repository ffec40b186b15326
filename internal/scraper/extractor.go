package scraper

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/kamilkurczyna/okazje-bot/helpers"
	"github.com/kamilkurczyna/okazje-bot/internal/listing"
	"github.com/kamilkurczyna/okazje-bot/internal/normalize"
	"github.com/kamilkurczyna/okazje-bot/logger"
	"github.com/kamilkurczyna/okazje-bot/pkg/errors"
)

// PlatformExtractor implements Extractor for one platform, driven by
// its ExtractorConfig. All platforms share the same fallback chain;
// the config carries the per-site quirks.
type PlatformExtractor struct {
	cfg     ExtractorConfig
	fetcher *helpers.Fetcher
	log     *logger.Logger

	// offerAPI is the optional secondary call made before the HTML
	// chain. Its failure is never fatal; the chain still runs.
	offerAPI func(ctx context.Context, url string) (*listing.Listing, error)
}

// NewPlatformExtractor creates an extractor from its configuration
func NewPlatformExtractor(cfg ExtractorConfig, fetcher *helpers.Fetcher) *PlatformExtractor {
	e := &PlatformExtractor{
		cfg:     cfg,
		fetcher: fetcher,
		log:     logger.ForPlatform(string(cfg.Platform)),
	}
	if cfg.UseOfferAPI {
		e.offerAPI = e.fetchOfferAPI
	}
	return e
}

// Platform returns the platform this extractor handles
func (e *PlatformExtractor) Platform() listing.Platform {
	return e.cfg.Platform
}

// Extract fetches the detail page and runs the fallback chain. A fetch
// failure or a page no strategy can title is returned as a typed
// error; partial data is not.
func (e *PlatformExtractor) Extract(ctx context.Context, rawURL string) (*listing.Listing, error) {
	body, err := e.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	p, err := newPage(body)
	if err != nil {
		return nil, errors.NewParse(string(e.cfg.Platform), "failed to parse HTML", err)
	}

	l := &listing.Listing{
		URL:       rawURL,
		Platform:  e.cfg.Platform,
		ScrapedAt: time.Now().Format(time.RFC3339),
	}

	if e.offerAPI != nil {
		if apiListing, err := e.offerAPI(ctx, rawURL); err != nil {
			e.log.Debug().Err(err).Msg("Offer API unavailable, using HTML chain only")
		} else {
			merge(l, apiListing)
		}
	}

	runChain(p, e.cfg, l, defaultChain())

	if strings.TrimSpace(l.Title) == "" {
		return nil, errors.NewParse(string(e.cfg.Platform), "no strategy extracted a title", nil)
	}

	e.finalize(l, rawURL)
	return l, nil
}

// finalize applies the output caps and canonical forms
func (e *PlatformExtractor) finalize(l *listing.Listing, rawURL string) {
	l.Title = normalize.CollapseWhitespace(l.Title)
	l.Description = normalize.Truncate(l.Description, listing.MaxDescriptionLen)
	if l.Condition != "" {
		l.Condition = normalize.Condition(l.Condition)
	}

	if len(l.Images) > listing.MaxImages {
		l.Images = l.Images[:listing.MaxImages]
	}
	for i, img := range l.Images {
		l.Images[i] = absoluteURL(rawURL, img)
	}
}

// absoluteURL resolves an image reference against the listing URL
func absoluteURL(base, ref string) string {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return ref
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return baseURL.ResolveReference(refURL).String()
}
