package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamilkurczyna/okazje-bot/helpers"
	"github.com/kamilkurczyna/okazje-bot/internal/listing"
	"github.com/kamilkurczyna/okazje-bot/pkg/errors"
)

func htmlServer(t *testing.T, html string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(html))
	}))
	t.Cleanup(server.Close)
	return server
}

func testExtractor(cfg ExtractorConfig) *PlatformExtractor {
	return NewPlatformExtractor(cfg, helpers.NewFetcher(5*time.Second, nil))
}

func TestExtractStructuredData(t *testing.T) {
	server := htmlServer(t, `<html><head>
		<script type="application/ld+json">
		{"offers":{"price":"199.99"},"name":"Vintage clock"}
		</script>
		</head><body><h1>Vintage clock</h1></body></html>`)

	e := testExtractor(ExtractorConfig{Platform: listing.PlatformOther})
	l, err := e.Extract(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Equal(t, "Vintage clock", l.Title)
	assert.Equal(t, 199.99, l.Price)
	assert.Equal(t, listing.PlatformOther, l.Platform)
	assert.Equal(t, server.URL, l.URL)
}

func TestExtractRawTextFallback(t *testing.T) {
	// No structured data, no semantic markup; only body text
	server := htmlServer(t, `<html><head><title>Stary budzik</title></head>
		<body>Sprzedam budzik mechaniczny. Cena: 450 zł. Odbiór osobisty.</body></html>`)

	e := testExtractor(ExtractorConfig{Platform: listing.PlatformSprzedajemy})
	l, err := e.Extract(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Equal(t, "Stary budzik", l.Title)
	assert.Equal(t, 450.0, l.Price)
	assert.Contains(t, l.Description, "Sprzedam budzik")
}

func TestExtractFetchError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	e := testExtractor(ExtractorConfig{Platform: listing.PlatformGratka})
	_, err := e.Extract(context.Background(), server.URL)

	require.Error(t, err)
	errType, ok := errors.TypeOf(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrorTypeFetch, errType)
}

func TestExtractParseError(t *testing.T) {
	// A page no strategy can title
	server := htmlServer(t, `<html><body><div></div></body></html>`)

	e := testExtractor(ExtractorConfig{Platform: listing.PlatformOther})
	_, err := e.Extract(context.Background(), server.URL)

	require.Error(t, err)
	errType, ok := errors.TypeOf(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrorTypeParse, errType)
}

func TestExtractDescriptionTruncation(t *testing.T) {
	long := strings.Repeat("ż", 5000)
	server := htmlServer(t, `<html><body><h1>Porcelana Ćmielów</h1>
		<div class="description">`+long+`</div></body></html>`)

	e := testExtractor(ExtractorConfig{Platform: listing.PlatformOther})
	l, err := e.Extract(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Equal(t, listing.MaxDescriptionLen, utf8.RuneCountInString(l.Description))
	assert.True(t, utf8.ValidString(l.Description))
}

func TestExtractImageCapAndAbsoluteURLs(t *testing.T) {
	var imgs strings.Builder
	for i := 0; i < 10; i++ {
		imgs.WriteString(`<img src="/thumbs/img` + string(rune('0'+i)) + `.jpg">`)
	}
	server := htmlServer(t, `<html><body><h1>Figurka</h1>`+imgs.String()+`</body></html>`)

	e := testExtractor(ExtractorConfig{Platform: listing.PlatformSprzedajemy, ImageFilter: "thumbs"})
	l, err := e.Extract(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Len(t, l.Images, listing.MaxImages)
	for _, img := range l.Images {
		assert.True(t, strings.HasPrefix(img, server.URL), "image %q not absolute", img)
	}
}

func TestExtractConditionNormalized(t *testing.T) {
	server := htmlServer(t, `<html><body><h1>Bagnet</h1>Stan: używane, drobne ślady.</body></html>`)

	e := testExtractor(ExtractorConfig{Platform: listing.PlatformOther})
	l, err := e.Extract(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Equal(t, "used", l.Condition)
}
