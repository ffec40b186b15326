// Package listing defines the canonical normalized record describing
// one marketplace item.
package listing

import (
	"crypto/md5"
	"encoding/hex"
	"time"
)

// Platform identifies the source marketplace of a listing
type Platform string

const (
	PlatformSprzedajemy Platform = "sprzedajemy.pl"
	PlatformOLX         Platform = "olx.pl"
	PlatformAllegro     Platform = "allegro.pl"
	PlatformVinted      Platform = "vinted.pl"
	PlatformGratka      Platform = "gratka.pl"
	PlatformOther       Platform = "other"
	// PlatformManual marks a listing assembled from a pasted free-text
	// description. It has no URL and is exempt from deduplication.
	PlatformManual Platform = "manual"
)

// Verdict values assigned by the AI classifier
const (
	VerdictBuy         = "BUY"
	VerdictNegotiate   = "NEGOTIATE"
	VerdictInvestigate = "INVESTIGATE"
	VerdictSkip        = "SKIP"
)

// ManualURL is the sentinel URL of manual-description listings
const ManualURL = "manual description"

// Bounds applied when a listing is emitted by an extractor
const (
	MaxDescriptionLen = 1000
	MaxImages         = 5
)

// Listing represents a scraped marketplace offer. Price 0 means the
// price could not be extracted, never "free".
type Listing struct {
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	Price       float64  `json:"price"`
	Description string   `json:"description,omitempty"`
	Location    string   `json:"location,omitempty"`
	Platform    Platform `json:"platform"`
	Seller      string   `json:"seller,omitempty"`
	Condition   string   `json:"condition,omitempty"`
	Images      []string `json:"images,omitempty"`
	ScrapedAt   string   `json:"scraped_at,omitempty"`

	// Filled in by the classifier after extraction
	Analysis           string  `json:"analysis,omitempty"`
	Verdict            string  `json:"verdict,omitempty"`
	EstimatedValueLow  float64 `json:"estimated_value_low,omitempty"`
	EstimatedValueHigh float64 `json:"estimated_value_high,omitempty"`
}

// NewManual creates a listing from a pasted free-text description
func NewManual(text string) *Listing {
	title := text
	if len([]rune(title)) > 50 {
		title = string([]rune(title)[:50])
	}
	return &Listing{
		URL:         ManualURL,
		Title:       title,
		Description: text,
		Platform:    PlatformManual,
		ScrapedAt:   time.Now().Format(time.RFC3339),
	}
}

// ID returns a short deterministic digest of the listing URL, used for
// display and logging only. Deduplication keys on the URL itself.
func (l *Listing) ID() string {
	sum := md5.Sum([]byte(l.URL))
	return hex.EncodeToString(sum[:])[:12]
}

// MarginLow returns the percentage margin against the low end of the
// classifier's estimate. Zero when the price is unknown.
func (l *Listing) MarginLow() float64 {
	if l.Price <= 0 {
		return 0
	}
	return (l.EstimatedValueLow - l.Price) / l.Price * 100
}

// MarginHigh returns the percentage margin against the high end of the
// classifier's estimate
func (l *Listing) MarginHigh() float64 {
	if l.Price <= 0 {
		return 0
	}
	return (l.EstimatedValueHigh - l.Price) / l.Price * 100
}

// IsManual reports whether the listing came from a pasted description
// rather than a URL
func (l *Listing) IsManual() bool {
	return l.Platform == PlatformManual
}
