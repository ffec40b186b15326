package scraper

import (
	"regexp"

	"github.com/kamilkurczyna/okazje-bot/internal/listing"
)

// strategyFunc is one step of the fallback chain. A strategy never
// fails; it contributes whatever fields it can find as a partial
// listing.
type strategyFunc func(p *page, cfg ExtractorConfig) *listing.Listing

// ExtractorConfig holds the per-platform extraction quirks
type ExtractorConfig struct {
	Platform listing.Platform

	// DescMarkers are phrases that begin the seller's description in
	// the raw page text
	DescMarkers []string

	// DescSelector finds description blocks in semantic markup
	DescSelector string

	// ImageFilter is a substring an img src must contain to count as a
	// listing photo; empty keeps all images out of the markup pass
	ImageFilter string

	// SellerPattern extracts the seller name from the raw markup
	SellerPattern *regexp.Regexp

	// UseOfferAPI enables the secondary session + internal API call
	// before the HTML chain runs
	UseOfferAPI bool
}

// defaultChain is the ordered fallback chain: embedded structured data
// first, semantic markup second, raw-text heuristics last
func defaultChain() []strategyFunc {
	return []strategyFunc{structuredData, semanticMarkup, rawText}
}

// merge copies fields from src into dst, filling only fields that are
// still empty. An earlier, higher-priority strategy is never
// overwritten by a later one.
func merge(dst, src *listing.Listing) {
	if src == nil {
		return
	}
	if dst.Title == "" {
		dst.Title = src.Title
	}
	if dst.Price == 0 {
		dst.Price = src.Price
	}
	if dst.Description == "" {
		dst.Description = src.Description
	}
	if dst.Location == "" {
		dst.Location = src.Location
	}
	if dst.Condition == "" {
		dst.Condition = src.Condition
	}
	if dst.Seller == "" {
		dst.Seller = src.Seller
	}
	if len(dst.Images) == 0 {
		dst.Images = src.Images
	}
}

// filled reports whether every field a strategy can contribute is set;
// once true the remaining chain steps are skipped
func filled(l *listing.Listing) bool {
	return l.Title != "" &&
		l.Price != 0 &&
		l.Description != "" &&
		l.Location != "" &&
		l.Condition != "" &&
		l.Seller != "" &&
		len(l.Images) > 0
}

// runChain applies the strategies in order under the fill-if-empty
// rule. Title is the chain's success signal: the caller fails the
// extraction when no strategy produced one.
func runChain(p *page, cfg ExtractorConfig, l *listing.Listing, chain []strategyFunc) {
	for _, strategy := range chain {
		if filled(l) {
			break
		}
		merge(l, strategy(p, cfg))
	}
}
