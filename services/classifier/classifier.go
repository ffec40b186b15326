// Package classifier sends extracted listings to the Anthropic
// messages API for valuation and turns the free-text analysis into a
// verdict.
package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kamilkurczyna/okazje-bot/internal/listing"
	"github.com/kamilkurczyna/okazje-bot/logger"
	"github.com/kamilkurczyna/okazje-bot/pkg/errors"
)

const (
	defaultBaseURL = "https://api.anthropic.com"
	apiVersion     = "2023-06-01"
	maxTokens      = 600
)

// systemPrompt frames the model as a Polish secondary-market appraiser.
// The verdict markers it is asked to emit are what ParseVerdict keys on.
const systemPrompt = `Jesteś ekspertem od wyceny antyków, kolekcji i militariów na polskim rynku wtórnym.
Twoje zadanie: przeanalizować ofertę i dać rekomendację kupna/odrzucenia.

KONTEKST UŻYTKOWNIKA:
- Profesjonalny reseller z Katowic, specjalizacja: komiksy PRL, porcelana, zegarki vintage, broń biała, malarstwo, książki kolekcjonerskie
- Max cena zakupu: 550 zł/szt
- Min wymagana marża: 200%
- Odbiór osobisty: max 2h w jedną stronę od Katowic
- Wysyłka: OK jeśli jest opcja

TWOJA ANALIZA MUSI ZAWIERAĆ:
1. **IDENTYFIKACJA** — Co to jest? Oryginał czy replika? Kluczowe cechy.
2. **RED FLAGS** — Co budzi podejrzenia (stan "nowe" na antykach, brak sygnatur, cena typowa dla replik, lakoniczny opis).
3. **WYCENA RYNKOWA** — Realistyczny zakres cen na Allegro/domach aukcyjnych dla ORYGINAŁU tego typu.
4. **KALKULACJA** — Cena zakupu vs. realistyczna cena sprzedaży, marża %.
5. **WERDYKT** — Jeden z: 🟢 KUP (marża 200%+, pewny oryginał), 🟡 NEGOCJUJ (potencjał ale za drogo), 🟠 ZBADAJ (trzeba zobaczyć osobiście), ❌ OMIŃ (replika/za drogo/brak marży).

Odpowiadaj zwięźle, maksymalnie 300 słów. Po polsku.`

// Client talks to the Anthropic messages endpoint
type Client struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
	log     *logger.Logger
}

// NewClient creates a classifier client
func NewClient(apiKey, model string, timeout time.Duration) *Client {
	return &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: timeout},
		log:     logger.ForClassifier(),
	}
}

// SetBaseURL overrides the API endpoint, used in tests
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = baseURL
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Analyze sends the listing to the model and returns the free-text
// analysis. Failures return a classifier error; the caller decides
// whether to substitute a visible placeholder.
func (c *Client) Analyze(ctx context.Context, l *listing.Listing) (string, error) {
	payload, err := json.Marshal(messagesRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		System:    systemPrompt,
		Messages: []message{
			{Role: "user", Content: userMessage(l)},
		},
	})
	if err != nil {
		return "", errors.NewClassifier("failed to encode request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return "", errors.NewClassifier("failed to create request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", errors.NewClassifier("request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.NewClassifier("failed to read response", err)
	}

	var parsed messagesResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", errors.NewClassifier("failed to decode response", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := fmt.Sprintf("unexpected status %d", resp.StatusCode)
		if parsed.Error != nil {
			msg = fmt.Sprintf("%s: %s", msg, parsed.Error.Message)
		}
		return "", errors.NewClassifier(msg, nil)
	}

	if len(parsed.Content) == 0 || parsed.Content[0].Text == "" {
		return "", errors.NewClassifier("empty response content", nil)
	}

	c.log.Debug().Str("id", l.ID()).Msg("Analysis complete")
	return parsed.Content[0].Text, nil
}

// userMessage renders the listing fields into the analysis request
func userMessage(l *listing.Listing) string {
	condition := l.Condition
	if condition == "" {
		condition = "nie podano"
	}

	return fmt.Sprintf(`Przeanalizuj tę ofertę:

TYTUŁ: %s
CENA: %v zł
STAN: %s
PLATFORMA: %s
LOKALIZACJA: %s
SPRZEDAWCA: %s
OPIS: %s
URL: %s
LICZBA ZDJĘĆ: %d`,
		l.Title, l.Price, condition, l.Platform, l.Location, l.Seller,
		l.Description, l.URL, len(l.Images))
}

// ParseVerdict extracts the verdict from the analysis text. Marker
// priority is fixed: a buy marker anywhere wins over a weaker one, and
// anything unrecognized is a skip.
func ParseVerdict(analysis string) string {
	upper := strings.ToUpper(analysis)
	switch {
	case strings.Contains(analysis, "🟢") || strings.Contains(upper, "KUP"):
		return listing.VerdictBuy
	case strings.Contains(analysis, "🟡") || strings.Contains(upper, "NEGOCJUJ"):
		return listing.VerdictNegotiate
	case strings.Contains(analysis, "🟠") || strings.Contains(upper, "ZBADAJ"):
		return listing.VerdictInvestigate
	default:
		return listing.VerdictSkip
	}
}
