package scraper

import (
	"bytes"
	"io"

	"github.com/PuerkitoBio/goquery"
)

// page carries the three views of a fetched detail page the strategies
// work on: the parsed document, the raw markup and the visible text.
type page struct {
	doc  *goquery.Document
	raw  string
	text string
}

// newPage reads the whole body and parses it. The visible-text view is
// built from a second parse so stripping script/style does not disturb
// the document the structured-data strategy queries.
func newPage(r io.Reader) (*page, error) {
	rawBytes, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(rawBytes))
	if err != nil {
		return nil, err
	}

	textDoc, err := goquery.NewDocumentFromReader(bytes.NewReader(rawBytes))
	if err != nil {
		return nil, err
	}
	textDoc.Find("script, style, noscript").Remove()

	return &page{
		doc:  doc,
		raw:  string(rawBytes),
		text: textDoc.Text(),
	}, nil
}
