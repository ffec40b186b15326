// Package search implements keyword-driven discovery: turning a
// platform and a keyword into a bounded set of listing stubs
// (url/title/price only).
package search

import (
	"context"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/kamilkurczyna/okazje-bot/helpers"
	"github.com/kamilkurczyna/okazje-bot/internal/listing"
	"github.com/kamilkurczyna/okazje-bot/internal/normalize"
	"github.com/kamilkurczyna/okazje-bot/logger"
)

// MaxResults bounds how many candidate links one search pass keeps
const MaxResults = 20

// minTitleLen filters out icon links and pagination anchors
const minTitleLen = 3

// Searcher is the contract every discovery adapter implements
type Searcher interface {
	// Search fetches a results page for keyword and returns stubs.
	// A stub is kept when its price is within [0, priceCeiling] or
	// when no price could be extracted at all.
	Search(ctx context.Context, keyword string, priceCeiling float64) ([]listing.Listing, error)

	// Platform returns the platform this searcher covers
	Platform() listing.Platform
}

// snippetPriceRe pulls a price out of a result snippet
var snippetPriceRe = regexp.MustCompile(`(\d[\d\s\x{00A0}]*(?:[.,]\d{1,2})?)\s*zł`)

// SearcherConfig holds the per-platform discovery quirks
type SearcherConfig struct {
	Platform listing.Platform

	// SearchURL is the results endpoint; the keyword is appended as
	// QueryParam
	SearchURL  string
	QueryParam string

	// LinkPattern selects candidate result hrefs
	LinkPattern *regexp.Regexp

	// BaseURL prefixes relative hrefs
	BaseURL string
}

// PlatformSearcher implements Searcher for one platform
type PlatformSearcher struct {
	cfg     SearcherConfig
	fetcher *helpers.Fetcher
	log     *logger.Logger
}

// NewPlatformSearcher creates a searcher from its configuration
func NewPlatformSearcher(cfg SearcherConfig, fetcher *helpers.Fetcher) *PlatformSearcher {
	return &PlatformSearcher{
		cfg:     cfg,
		fetcher: fetcher,
		log:     logger.ForPlatform(string(cfg.Platform)),
	}
}

// Platform returns the platform this searcher covers
func (s *PlatformSearcher) Platform() listing.Platform {
	return s.cfg.Platform
}

// Search fetches the results page and extracts bounded stubs. A
// malformed result is skipped, never fatal; only the fetch itself can
// fail.
func (s *PlatformSearcher) Search(ctx context.Context, keyword string, priceCeiling float64) ([]listing.Listing, error) {
	searchURL := s.cfg.SearchURL + "?" + s.cfg.QueryParam + "=" + url.QueryEscape(keyword)

	body, err := s.fetcher.Fetch(ctx, searchURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, err
	}

	var stubs []listing.Listing
	seen := make(map[string]struct{})

	doc.Find("a").EachWithBreak(func(i int, a *goquery.Selection) bool {
		href, exists := a.Attr("href")
		if !exists || !s.cfg.LinkPattern.MatchString(href) {
			return true
		}
		if _, dup := seen[href]; dup {
			return true
		}
		seen[href] = struct{}{}

		title := normalize.Truncate(normalize.CollapseWhitespace(a.Text()), 100)
		if len([]rune(title)) < minTitleLen {
			return true
		}

		price := snippetPrice(a.Text())

		// False-positive-tolerant filter: price-unknown stubs stay in
		// so unusually rendered cheap listings are not lost
		if price > 0 && price > priceCeiling {
			return true
		}

		stubs = append(stubs, listing.Listing{
			URL:       s.resolveHref(href),
			Title:     title,
			Price:     price,
			Platform:  s.cfg.Platform,
			ScrapedAt: time.Now().Format(time.RFC3339),
		})
		return len(seen) < MaxResults
	})

	s.log.Debug().
		Str("keyword", keyword).
		Int("stubs", len(stubs)).
		Msg("Search pass complete")

	return stubs, nil
}

func (s *PlatformSearcher) resolveHref(href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	return s.cfg.BaseURL + href
}

// snippetPrice extracts a price from result snippet text; 0 means
// unknown
func snippetPrice(text string) float64 {
	match := snippetPriceRe.FindStringSubmatch(text)
	if match == nil {
		return 0
	}
	price, ok := normalize.ParsePrice(match[1])
	if !ok {
		return 0
	}
	return price
}

// NewSearchers creates the discovery adapters for the
// discovery-capable platforms
func NewSearchers(fetcher *helpers.Fetcher, sprzedajemyURL, gratkaURL string) []Searcher {
	configurations := []SearcherConfig{
		{
			Platform:    listing.PlatformSprzedajemy,
			SearchURL:   sprzedajemyURL,
			QueryParam:  "inp_text",
			LinkPattern: regexp.MustCompile(`/.*-nr\d+`),
			BaseURL:     "https://sprzedajemy.pl",
		},
		{
			Platform:    listing.PlatformGratka,
			SearchURL:   gratkaURL,
			QueryParam:  "q",
			LinkPattern: regexp.MustCompile(`gratka\.pl/.*\d`),
			BaseURL:     "https://gratka.pl",
		},
	}

	searchers := make([]Searcher, 0, len(configurations))
	for _, cfg := range configurations {
		searchers = append(searchers, NewPlatformSearcher(cfg, fetcher))
	}
	return searchers
}
