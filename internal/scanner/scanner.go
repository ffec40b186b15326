// Package scanner sequences keyword discovery across platforms,
// filters stubs against the seen-set, and hands the ranked result to
// the notifier.
package scanner

import (
	"context"
	"sort"
	"time"

	"github.com/kamilkurczyna/okazje-bot/internal/listing"
	"github.com/kamilkurczyna/okazje-bot/internal/search"
	"github.com/kamilkurczyna/okazje-bot/logger"
	"github.com/kamilkurczyna/okazje-bot/pkg/errors"
	"github.com/kamilkurczyna/okazje-bot/services/store"
)

// unknownPriceSentinel ranks price-unknown listings after every known
// price
const unknownPriceSentinel = 9999

// Notifier delivers a ranked, capped set of new listings. The total is
// the full accepted count, which may exceed len(listings).
type Notifier interface {
	Alert(ctx context.Context, listings []listing.Listing, total int) error
}

// Scanner orchestrates one scan pass over keywords x platforms
type Scanner struct {
	searchers []search.Searcher
	seen      store.SeenStore
	keywords  store.KeywordStore
	notifier  Notifier

	// delay is the cooperative pause between keyword iterations; it
	// bounds load on upstream sites and must stay sequential
	delay time.Duration

	priceCeiling float64
	maxAlerts    int
	log          *logger.Logger
}

// New creates a scanner
func New(
	searchers []search.Searcher,
	seen store.SeenStore,
	keywords store.KeywordStore,
	notifier Notifier,
	delay time.Duration,
	priceCeiling float64,
	maxAlerts int,
) *Scanner {
	return &Scanner{
		searchers:    searchers,
		seen:         seen,
		keywords:     keywords,
		notifier:     notifier,
		delay:        delay,
		priceCeiling: priceCeiling,
		maxAlerts:    maxAlerts,
		log:          logger.ForScanner(),
	}
}

// Run executes one scan pass and returns the total accepted count.
// Adapter failures are logged per platform per keyword and never abort
// the pass. The only fatal condition is a missing notifier.
func (s *Scanner) Run(ctx context.Context) (int, error) {
	if s.notifier == nil {
		return 0, errors.NewConfiguration("no notification destination configured", nil)
	}

	keywords := s.keywords.List()
	var accepted []listing.Listing

	for i, keyword := range keywords {
		for _, searcher := range s.searchers {
			stubs, err := searcher.Search(ctx, keyword, s.priceCeiling)
			if err != nil {
				s.log.Error().
					Err(err).
					Str("keyword", keyword).
					Str("platform", string(searcher.Platform())).
					Msg("Search failed")
				continue
			}
			accepted = append(accepted, s.acceptNew(stubs)...)
		}

		// Cooperative rate limit between keyword iterations
		if i < len(keywords)-1 {
			select {
			case <-time.After(s.delay):
			case <-ctx.Done():
				s.log.Warn().Msg("Scan cancelled")
				return s.report(ctx, accepted)
			}
		}
	}

	return s.report(ctx, accepted)
}

// acceptNew filters stubs against the seen-set and marks accepted ones
// seen before they are ever reported, so a delivery failure cannot
// cause a repeat alert
func (s *Scanner) acceptNew(stubs []listing.Listing) []listing.Listing {
	var fresh []listing.Listing
	for _, stub := range stubs {
		if stub.URL == "" {
			continue
		}

		seen, err := s.seen.Has(stub.URL)
		if err != nil {
			s.log.Error().Err(err).Str("url", stub.URL).Msg("Seen-set read failed")
			// Fail-open: treat as unseen
		}
		if seen {
			continue
		}

		if err := s.seen.Add(stub.URL); err != nil {
			s.log.Error().Err(err).Str("url", stub.URL).Msg("Seen-set write failed")
		}
		fresh = append(fresh, stub)
	}
	return fresh
}

// report ranks, caps and delivers the accepted listings
func (s *Scanner) report(ctx context.Context, accepted []listing.Listing) (int, error) {
	total := len(accepted)
	if total == 0 {
		s.log.Info().Msg("Scan complete: 0 new listings")
		return 0, nil
	}

	// Cheapest first; unknown prices always rank last
	sort.SliceStable(accepted, func(i, j int) bool {
		return rankPrice(accepted[i]) < rankPrice(accepted[j])
	})

	top := accepted
	if len(top) > s.maxAlerts {
		top = top[:s.maxAlerts]
	}

	if err := s.notifier.Alert(ctx, top, total); err != nil {
		s.log.Error().Err(err).Msg("Failed to deliver alert")
	}

	s.log.Info().
		Int("accepted", total).
		Int("reported", len(top)).
		Msg("Scan complete")

	return total, nil
}

func rankPrice(l listing.Listing) float64 {
	if l.Price <= 0 {
		return unknownPriceSentinel
	}
	return l.Price
}
