package helpers

import (
	"errors"
	"regexp"
	"strings"
)

var urlPattern = regexp.MustCompile(`https?://\S+`)

// GetSplitPart splits target by separate and returns the part at index
func GetSplitPart(target string, separate string, index int) (string, error) {
	parts := strings.Split(target, separate)
	if index >= len(parts) {
		return "", errors.New("index out of range")
	}
	return parts[index], nil
}

// ExtractURLs returns all http(s) URLs found in text, with trailing
// punctuation stripped
func ExtractURLs(text string) []string {
	matches := urlPattern.FindAllString(text, -1)
	urls := make([]string, 0, len(matches))
	for _, m := range matches {
		urls = append(urls, CleanURL(m))
	}
	return urls
}

// CleanURL strips punctuation that message text tends to glue onto a
// pasted link
func CleanURL(rawURL string) string {
	return strings.TrimRight(rawURL, ".,;:!?)")
}
