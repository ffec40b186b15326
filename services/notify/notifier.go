package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/kamilkurczyna/okazje-bot/internal/listing"
	"github.com/kamilkurczyna/okazje-bot/internal/normalize"
)

// TelegramNotifier delivers scan alerts to a fixed chat
type TelegramNotifier struct {
	client *Client
	chatID int64
}

// NewTelegramNotifier creates a notifier bound to chatID
func NewTelegramNotifier(client *Client, chatID int64) *TelegramNotifier {
	return &TelegramNotifier{client: client, chatID: chatID}
}

// Alert formats the ranked listings into one message and sends it.
// total is the full accepted count; listings is the capped top slice.
func (n *TelegramNotifier) Alert(ctx context.Context, listings []listing.Listing, total int) error {
	return n.client.SendMessage(ctx, n.chatID, FormatAlert(listings, total))
}

// FormatAlert renders the scan alert text: a numbered top list, an
// overflow line when the cap cut listings off, and a usage hint.
func FormatAlert(listings []listing.Listing, total int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🔔 **NOWE OFERTY** (%d znalezionych)\n\n", total)

	for i, l := range listings {
		fmt.Fprintf(&b, "**%d. %s**\n", i+1, normalize.Truncate(l.Title, 50))
		fmt.Fprintf(&b, "💰 %s | 📍 %s\n", formatPrice(l.Price), l.Platform)
		fmt.Fprintf(&b, "🔗 %s\n\n", l.URL)
	}

	if total > len(listings) {
		fmt.Fprintf(&b, "_...i %d więcej_\n", total-len(listings))
	}

	b.WriteString("\n💡 Wklej interesujący link, żeby dostać pełną analizę AI.")
	return b.String()
}

// FormatAnalysis renders a classifier result for one listing
func FormatAnalysis(l *listing.Listing) string {
	return fmt.Sprintf("%s **ANALIZA: %s**\n\n%s",
		VerdictEmoji(l.Verdict), normalize.Truncate(l.Title, 50), l.Analysis)
}

// FormatListingSummary renders the pre-analysis scrape summary
func FormatListingSummary(l *listing.Listing) string {
	location := l.Location
	if location == "" {
		location = "brak lokalizacji"
	}
	condition := l.Condition
	if condition == "" {
		condition = "nie podano"
	}
	return fmt.Sprintf("📦 **%s**\n💰 Cena: %s\n📍 %s\n📄 Stan: %s\n\n🤖 Analizuję z AI...",
		l.Title, formatPrice(l.Price), location, condition)
}

// VerdictEmoji maps a verdict to its alert marker
func VerdictEmoji(verdict string) string {
	switch verdict {
	case listing.VerdictBuy:
		return "🟢"
	case listing.VerdictNegotiate:
		return "🟡"
	case listing.VerdictInvestigate:
		return "🟠"
	case listing.VerdictSkip:
		return "❌"
	default:
		return "❓"
	}
}

// formatPrice renders a price for display; 0 means unknown
func formatPrice(price float64) string {
	if price <= 0 {
		return "? zł"
	}
	if price == float64(int64(price)) {
		return fmt.Sprintf("%d zł", int64(price))
	}
	return fmt.Sprintf("%.2f zł", price)
}
