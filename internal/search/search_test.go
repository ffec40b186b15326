package search

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamilkurczyna/okazje-bot/helpers"
	"github.com/kamilkurczyna/okazje-bot/internal/listing"
)

const searchResultsHTML = `<html><body>
	<a href="/antyki/stary-zegar-nr101">Stary zegar ścienny 150 zł</a>
	<a href="/antyki/zegar-kominkowy-nr102">Zegar kominkowy 250 zł</a>
	<a href="/antyki/budzik-nr103">Budzik mechaniczny</a>
	<a href="/antyki/stary-zegar-nr101">Stary zegar ścienny 150 zł</a>
	<a href="/pomoc/kontakt">Kontakt</a>
	<a href="/antyki/ikona-nr104">zł</a>
</body></html>`

func testSearcher(t *testing.T, html string) *PlatformSearcher {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "old clock", r.URL.Query().Get("inp_text"))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(html))
	}))
	t.Cleanup(server.Close)

	return NewPlatformSearcher(SearcherConfig{
		Platform:    listing.PlatformSprzedajemy,
		SearchURL:   server.URL,
		QueryParam:  "inp_text",
		LinkPattern: regexp.MustCompile(`/.*-nr\d+`),
		BaseURL:     "https://sprzedajemy.pl",
	}, helpers.NewFetcher(5*time.Second, nil))
}

func TestSearchPriceCeiling(t *testing.T) {
	s := testSearcher(t, searchResultsHTML)

	stubs, err := s.Search(context.Background(), "old clock", 200)
	require.NoError(t, err)

	var urls []string
	for _, stub := range stubs {
		urls = append(urls, stub.URL)
		// Every kept stub is within the ceiling or price-unknown
		assert.True(t, stub.Price == 0 || stub.Price <= 200, "stub %q price %v", stub.URL, stub.Price)
	}

	// The 250 zł listing is excluded, the price-unknown one kept
	assert.Contains(t, urls, "https://sprzedajemy.pl/antyki/stary-zegar-nr101")
	assert.Contains(t, urls, "https://sprzedajemy.pl/antyki/budzik-nr103")
	assert.NotContains(t, urls, "https://sprzedajemy.pl/antyki/zegar-kominkowy-nr102")

	// Duplicates collapse, non-listing links and too-short titles drop
	assert.Len(t, stubs, 2)
}

func TestSearchIdempotentOnStableContent(t *testing.T) {
	s := testSearcher(t, searchResultsHTML)

	first, err := s.Search(context.Background(), "old clock", 200)
	require.NoError(t, err)
	second, err := s.Search(context.Background(), "old clock", 200)
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].URL, second[i].URL)
		assert.Equal(t, first[i].Title, second[i].Title)
		assert.Equal(t, first[i].Price, second[i].Price)
	}
}

func TestSearchBoundedResults(t *testing.T) {
	var b strings.Builder
	b.WriteString("<html><body>")
	for i := 0; i < 50; i++ {
		fmt.Fprintf(&b, `<a href="/antyki/oferta-nr%d">Oferta numer %d, 50 zł</a>`, i, i)
	}
	b.WriteString("</body></html>")

	s := testSearcher(t, b.String())
	stubs, err := s.Search(context.Background(), "old clock", 1000)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(stubs), MaxResults)
}

func TestSearchFetchFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	s := NewPlatformSearcher(SearcherConfig{
		Platform:    listing.PlatformGratka,
		SearchURL:   server.URL,
		QueryParam:  "q",
		LinkPattern: regexp.MustCompile(`.`),
	}, helpers.NewFetcher(5*time.Second, nil))

	_, err := s.Search(context.Background(), "szabla", 500)
	assert.Error(t, err)
}

func TestSnippetPrice(t *testing.T) {
	assert.Equal(t, 150.0, snippetPrice("Stary zegar 150 zł"))
	assert.Equal(t, 1250.0, snippetPrice("Obraz 1 250 zł"))
	assert.Equal(t, 0.0, snippetPrice("Budzik mechaniczny"))
}
