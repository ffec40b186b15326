package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamilkurczyna/okazje-bot/internal/listing"
)

func telegramStub(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c := NewClient("test-token")
	c.SetBaseURL(server.URL)
	return c
}

func TestSendMessage(t *testing.T) {
	var captured map[string]any
	c := telegramStub(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bottest-token/sendMessage", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Write([]byte(`{"ok":true,"result":{}}`))
	})

	err := c.SendMessage(context.Background(), 42, "hello")
	require.NoError(t, err)

	assert.Equal(t, float64(42), captured["chat_id"])
	assert.Equal(t, "hello", captured["text"])
	assert.Equal(t, "Markdown", captured["parse_mode"])
}

func TestSendMessagePlainTextFallback(t *testing.T) {
	var calls []map[string]any
	c := telegramStub(t, func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		calls = append(calls, payload)

		if _, markdown := payload["parse_mode"]; markdown {
			w.Write([]byte(`{"ok":false,"error_code":400,"description":"can't parse entities"}`))
			return
		}
		w.Write([]byte(`{"ok":true,"result":{}}`))
	})

	err := c.SendMessage(context.Background(), 42, "broken _markdown")
	require.NoError(t, err)

	// Second attempt drops parse_mode entirely
	require.Len(t, calls, 2)
	_, markdown := calls[1]["parse_mode"]
	assert.False(t, markdown)
	assert.Equal(t, "broken _markdown", calls[1]["text"])
}

func TestSendMessageHardFailure(t *testing.T) {
	c := telegramStub(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":false,"error_code":403,"description":"bot was blocked"}`))
	})

	err := c.SendMessage(context.Background(), 42, "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bot was blocked")
}

func TestGetUpdates(t *testing.T) {
	c := telegramStub(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bottest-token/getUpdates", r.URL.Path)
		w.Write([]byte(`{"ok":true,"result":[
			{"update_id":7,"message":{"message_id":1,"text":"/status","chat":{"id":42}}}
		]}`))
	})

	updates, err := c.GetUpdates(context.Background(), 0, 0)
	require.NoError(t, err)

	require.Len(t, updates, 1)
	assert.Equal(t, int64(7), updates[0].UpdateID)
	assert.Equal(t, "/status", updates[0].Message.Text)
	assert.Equal(t, int64(42), updates[0].Message.Chat.ID)
}

func TestFormatAlert(t *testing.T) {
	listings := []listing.Listing{
		{Title: "Zegarek Błonie", Price: 150, Platform: listing.PlatformSprzedajemy, URL: "https://sprzedajemy.pl/x-nr1"},
		{Title: "Szabla", Price: 0, Platform: listing.PlatformGratka, URL: "https://gratka.pl/y-2"},
	}

	text := FormatAlert(listings, 14)

	assert.Contains(t, text, "(14 znalezionych)")
	assert.Contains(t, text, "**1. Zegarek Błonie**")
	assert.Contains(t, text, "150 zł | 📍 sprzedajemy.pl")
	assert.Contains(t, text, "**2. Szabla**")
	assert.Contains(t, text, "? zł | 📍 gratka.pl")
	assert.Contains(t, text, "...i 12 więcej")
}

func TestFormatAlertNoOverflow(t *testing.T) {
	listings := []listing.Listing{
		{Title: "Bagnet", Price: 90, Platform: listing.PlatformGratka, URL: "https://gratka.pl/z-3"},
	}

	text := FormatAlert(listings, 1)
	assert.NotContains(t, text, "więcej")
}

func TestFormatAlertTruncatesLongTitles(t *testing.T) {
	long := strings.Repeat("ż", 80)
	text := FormatAlert([]listing.Listing{{Title: long, Platform: listing.PlatformOther}}, 1)
	assert.Contains(t, text, strings.Repeat("ż", 50))
	assert.NotContains(t, text, strings.Repeat("ż", 51))
}

func TestVerdictEmoji(t *testing.T) {
	assert.Equal(t, "🟢", VerdictEmoji(listing.VerdictBuy))
	assert.Equal(t, "🟡", VerdictEmoji(listing.VerdictNegotiate))
	assert.Equal(t, "🟠", VerdictEmoji(listing.VerdictInvestigate))
	assert.Equal(t, "❌", VerdictEmoji(listing.VerdictSkip))
	assert.Equal(t, "❓", VerdictEmoji(""))
}

func TestTelegramNotifierAlert(t *testing.T) {
	var captured map[string]any
	c := telegramStub(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Write([]byte(`{"ok":true,"result":{}}`))
	})

	n := NewTelegramNotifier(c, 42)
	err := n.Alert(context.Background(), []listing.Listing{
		{Title: "Ikona", Price: 300, Platform: listing.PlatformSprzedajemy, URL: "https://sprzedajemy.pl/i-nr9"},
	}, 1)

	require.NoError(t, err)
	assert.Equal(t, float64(42), captured["chat_id"])
	assert.Contains(t, captured["text"], "NOWE OFERTY")
}
