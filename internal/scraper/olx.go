package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"regexp"
	"strings"
	"time"

	"github.com/kamilkurczyna/okazje-bot/helpers"
	"github.com/kamilkurczyna/okazje-bot/internal/listing"
	"github.com/kamilkurczyna/okazje-bot/pkg/errors"
)

// OLX serves detail pages that render through JavaScript, so the HTML
// chain often finds little beyond the title. The extractor first tries
// the internal offers endpoint the site's own frontend calls, behind a
// session acquired from the homepage. Any failure here falls back to
// the HTML chain.

const (
	olxHomeURL     = "https://www.olx.pl/"
	olxOfferAPIURL = "https://www.olx.pl/api/v1/offers/%s/"
)

// olxOfferIDRe pulls the offer token out of a detail URL, e.g.
// .../oferta/zegarek-blonie-CID88-IDabc123.html
var olxOfferIDRe = regexp.MustCompile(`-ID([0-9A-Za-z]+)\.html`)

// olxOfferPayload is the subset of the offers endpoint response the
// extractor cares about
type olxOfferPayload struct {
	Data struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Params      []struct {
			Key   string `json:"key"`
			Value struct {
				Value float64 `json:"value"`
				Label string  `json:"label"`
			} `json:"value"`
		} `json:"params"`
		Photos []struct {
			Link string `json:"link"`
		} `json:"photos"`
		Location struct {
			City struct {
				Name string `json:"name"`
			} `json:"city"`
			Region struct {
				Name string `json:"name"`
			} `json:"region"`
		} `json:"location"`
		User struct {
			Name string `json:"name"`
		} `json:"user"`
	} `json:"data"`
}

// fetchOfferAPI acquires a session and calls the internal offers
// endpoint. Returns a partial listing to merge ahead of the HTML
// chain.
func (e *PlatformExtractor) fetchOfferAPI(ctx context.Context, rawURL string) (*listing.Listing, error) {
	match := olxOfferIDRe.FindStringSubmatch(rawURL)
	if match == nil {
		return nil, errors.NewParse(string(e.cfg.Platform), "no offer ID in URL", nil)
	}
	offerID := match[1]

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, errors.NewFetch(string(e.cfg.Platform), "failed to create cookie jar", err)
	}
	client := &http.Client{Jar: jar, Timeout: 15 * time.Second}

	// Session first: the offers endpoint rejects cookieless callers
	if err := e.acquireSession(ctx, client); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf(olxOfferAPIURL, offerID), nil)
	if err != nil {
		return nil, errors.NewFetch(string(e.cfg.Platform), "failed to create API request", err)
	}
	helpers.SetBrowserHeaders(req)
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.NewFetch(string(e.cfg.Platform), "offer API call failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewFetch(string(e.cfg.Platform), fmt.Sprintf("offer API status %d", resp.StatusCode), nil)
	}

	var payload olxOfferPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, errors.NewParse(string(e.cfg.Platform), "failed to decode offer payload", err)
	}

	return olxListingFromPayload(payload), nil
}

func (e *PlatformExtractor) acquireSession(ctx context.Context, client *http.Client) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, olxHomeURL, nil)
	if err != nil {
		return errors.NewFetch(string(e.cfg.Platform), "failed to create session request", err)
	}
	helpers.SetBrowserHeaders(req)

	resp, err := client.Do(req)
	if err != nil {
		return errors.NewFetch(string(e.cfg.Platform), "session acquisition failed", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.NewFetch(string(e.cfg.Platform), fmt.Sprintf("session status %d", resp.StatusCode), nil)
	}
	return nil
}

func olxListingFromPayload(payload olxOfferPayload) *listing.Listing {
	l := &listing.Listing{
		Title:       strings.TrimSpace(payload.Data.Title),
		Description: strings.TrimSpace(payload.Data.Description),
		Seller:      strings.TrimSpace(payload.Data.User.Name),
	}

	for _, param := range payload.Data.Params {
		if param.Key == "price" && param.Value.Value > 0 {
			l.Price = param.Value.Value
			break
		}
	}

	for _, photo := range payload.Data.Photos {
		if photo.Link == "" {
			continue
		}
		// Photo links are size templates; pick a concrete size
		link := strings.NewReplacer("{width}", "800", "{height}", "600").Replace(photo.Link)
		l.Images = append(l.Images, link)
	}

	city := payload.Data.Location.City.Name
	region := payload.Data.Location.Region.Name
	switch {
	case city != "" && region != "":
		l.Location = fmt.Sprintf("%s, %s", city, region)
	case city != "":
		l.Location = city
	}

	return l
}
