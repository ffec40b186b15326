package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kamilkurczyna/okazje-bot/internal/listing"
)

func TestDetectPlatform(t *testing.T) {
	tests := []struct {
		url  string
		want listing.Platform
	}{
		{"https://sprzedajemy.pl/zegarek-blonie-nr123", listing.PlatformSprzedajemy},
		{"https://www.olx.pl/d/oferta/zegarek-CID88-IDabc12.html", listing.PlatformOLX},
		{"https://allegro.pl/oferta/komiks-relax-12345", listing.PlatformAllegro},
		{"https://www.vinted.pl/items/123-sukienka", listing.PlatformVinted},
		{"https://gratka.pl/dom-aukcyjny/obraz-olejny/ob/123", listing.PlatformGratka},
		{"https://ebay.com/itm/12345", listing.PlatformOther},
		{"not a url at all", listing.PlatformOther},
		{"", listing.PlatformOther},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectPlatform(tt.url), "url %q", tt.url)
	}
}

func TestDispatcherForURLNeverNil(t *testing.T) {
	d := NewDispatcher(nil)

	e := d.ForURL("https://unknown-site.example/item/1")
	assert.NotNil(t, e)
	assert.Equal(t, listing.PlatformOther, e.Platform())

	e = d.ForURL("https://sprzedajemy.pl/oferta-nr1")
	assert.Equal(t, listing.PlatformSprzedajemy, e.Platform())
}
