package helpers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kamilkurczyna/okazje-bot/pkg/errors"
	"github.com/kamilkurczyna/okazje-bot/services/cache"
)

func TestFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Check that browser headers are set
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		assert.NotEmpty(t, r.Header.Get("Accept"))
		assert.Contains(t, r.Header.Get("Accept-Language"), "pl-PL")
		assert.NotEmpty(t, r.Header.Get("referer"))

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("<html><body>Witaj!</body></html>"))
	}))
	defer server.Close()

	f := NewFetcher(5*time.Second, nil)
	reader, err := f.Fetch(context.Background(), server.URL)
	assert.NoError(t, err)

	body, err := io.ReadAll(reader)
	assert.NoError(t, err)
	assert.Contains(t, string(body), "Witaj!")
}

func TestFetchNonUTF8(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-2")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("<html><body>Hello, World!</body></html>"))
	}))
	defer server.Close()

	f := NewFetcher(5*time.Second, nil)
	reader, err := f.Fetch(context.Background(), server.URL)
	assert.NoError(t, err)

	body, err := io.ReadAll(reader)
	assert.NoError(t, err)
	assert.Contains(t, string(body), "Hello, World!")
}

func TestFetchErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	f := NewFetcher(5*time.Second, nil)
	_, err := f.Fetch(context.Background(), server.URL)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status code: 500")

	errType, ok := errors.TypeOf(err)
	assert.True(t, ok)
	assert.Equal(t, errors.ErrorTypeFetch, errType)
}

func TestFetchRateLimitCooldown(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Retry-After", "60")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	f := NewFetcher(5*time.Second, cache.NewMemoryService())

	_, err := f.Fetch(context.Background(), server.URL)
	assert.Error(t, err)
	errType, _ := errors.TypeOf(err)
	assert.Equal(t, errors.ErrorTypeRateLimit, errType)

	// Second fetch must not hit the host while the cooldown is active
	_, err = f.Fetch(context.Background(), server.URL)
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestFetchInvalidURL(t *testing.T) {
	f := NewFetcher(time.Second, nil)
	_, err := f.Fetch(context.Background(), "http://invalid.url.that.does.not.exist")
	assert.Error(t, err)
}
