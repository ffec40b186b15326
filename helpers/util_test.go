package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetSplitPart(t *testing.T) {
	part, err := GetSplitPart("https://sprzedajemy.pl/zegarek-blonie-nr123", "/", 3)
	assert.NoError(t, err)
	assert.Equal(t, "zegarek-blonie-nr123", part)

	_, err = GetSplitPart("a/b", "/", 5)
	assert.Error(t, err)
}

func TestExtractURLs(t *testing.T) {
	text := "zobacz https://olx.pl/oferta/x-ID1abc.html, i https://gratka.pl/y-123)"
	urls := ExtractURLs(text)
	assert.Equal(t, []string{
		"https://olx.pl/oferta/x-ID1abc.html",
		"https://gratka.pl/y-123",
	}, urls)

	assert.Empty(t, ExtractURLs("no links here"))
}

func TestCleanURL(t *testing.T) {
	assert.Equal(t, "https://olx.pl/x", CleanURL("https://olx.pl/x.,;"))
	assert.Equal(t, "https://olx.pl/x", CleanURL("https://olx.pl/x"))
}
