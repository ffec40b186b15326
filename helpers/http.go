package helpers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	mathrand "math/rand"
	"net/http"
	"net/url"
	"slices"
	"time"

	"golang.org/x/net/html/charset"

	"github.com/kamilkurczyna/okazje-bot/pkg/errors"
	"github.com/kamilkurczyna/okazje-bot/services/cache"
)

// Browser identity presented to the classifieds sites
var (
	userAgents = []string{
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Safari/605.1.15",
	}

	referers = []string{
		"https://www.google.com/",
		"https://www.onet.pl/",
		"https://www.wp.pl/",
	}
)

// DefaultBlockTime is how long a host stays on cooldown after it
// rate-limits us.
const DefaultBlockTime = 500 * time.Second

// Fetcher performs HTTP GETs with a browser-like identity, a bounded
// timeout, redirect following and UTF-8 normalization of the body.
// An optional cooldown cache keeps us from re-hitting a host that has
// already rate-limited us.
type Fetcher struct {
	client    *http.Client
	cache     cache.CacheService
	blockTime time.Duration
}

// NewFetcher creates a fetcher with the given timeout. cacheSvc may be
// nil, in which case rate-limit cooldowns are not tracked.
func NewFetcher(timeout time.Duration, cacheSvc cache.CacheService) *Fetcher {
	return &Fetcher{
		client:    &http.Client{Timeout: timeout},
		cache:     cacheSvc,
		blockTime: DefaultBlockTime,
	}
}

// SetBrowserHeaders sets browser-like request headers on req
func SetBrowserHeaders(req *http.Request) {
	rnd := mathrand.New(mathrand.NewSource(time.Now().UnixNano()))
	req.Header.Set("User-Agent", userAgents[rnd.Intn(len(userAgents))])
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "pl-PL,pl;q=0.9,en-US;q=0.8,en;q=0.7")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("referer", referers[rnd.Intn(len(referers))])
	req.Header.Set("Pragma", "no-cache")
	req.Header.Set("upgrade-insecure-requests", "1")
	req.Header.Set("Sec-Fetch-Mode", "navigate")
	req.Header.Set("Sec-Fetch-Site", "cross-site")
	req.Header.Set("Sec-Fetch-User", "?1")
}

// Fetch sends a GET request and returns the response body as a UTF-8
// reader. Non-2xx responses and transport failures return a fetch
// error; 429/430 responses additionally put the host on cooldown.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (io.Reader, error) {
	host := hostOf(rawURL)

	if f.onCooldown(host) {
		return nil, errors.NewRateLimit(host, f.blockTime)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.NewFetch(host, "failed to create request", err)
	}
	SetBrowserHeaders(req)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, errors.NewFetch(host, "failed to fetch URL", err)
	}
	defer resp.Body.Close()

	if slices.Contains([]int{http.StatusTooManyRequests, 430}, resp.StatusCode) {
		f.startCooldown(host)
		return nil, errors.NewRateLimit(host, f.blockTime)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.NewFetch(host, fmt.Sprintf("unexpected status code: %d", resp.StatusCode), nil)
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewFetch(host, "failed to read response body", err)
	}

	return DecodeUTF8(bodyBytes, resp.Header.Get("Content-Type"))
}

// DecodeUTF8 converts a response body to UTF-8 based on the
// Content-Type header and the body content itself
func DecodeUTF8(bodyBytes []byte, contentType string) (io.Reader, error) {
	encoding, name, _ := charset.DetermineEncoding(bodyBytes, contentType)

	if name == "utf-8" || name == "UTF-8" {
		return bytes.NewReader(bodyBytes), nil
	}

	utf8Reader := encoding.NewDecoder().Reader(bytes.NewReader(bodyBytes))
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, utf8Reader); err != nil {
		return nil, fmt.Errorf("failed to read converted UTF-8 body: %w", err)
	}

	return &buf, nil
}

// onCooldown reports whether host is currently blocked after a
// rate-limit response
func (f *Fetcher) onCooldown(host string) bool {
	if f.cache == nil || host == "" {
		return false
	}
	_, err := f.cache.Get(cooldownKey(host))
	return err == nil
}

func (f *Fetcher) startCooldown(host string) {
	if f.cache == nil || host == "" {
		return
	}
	seconds := fmt.Sprintf("%d", int(f.blockTime/time.Second))
	f.cache.Set(cooldownKey(host), []byte(seconds), f.blockTime)
}

func cooldownKey(host string) string {
	return "cooldown:" + host
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}
