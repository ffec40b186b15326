// Package bot routes incoming Telegram messages: slash commands,
// pasted listing links, and free-text descriptions for manual
// analysis.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kamilkurczyna/okazje-bot/config"
	"github.com/kamilkurczyna/okazje-bot/helpers"
	"github.com/kamilkurczyna/okazje-bot/internal/listing"
	"github.com/kamilkurczyna/okazje-bot/internal/scanner"
	"github.com/kamilkurczyna/okazje-bot/internal/scraper"
	"github.com/kamilkurczyna/okazje-bot/logger"
	"github.com/kamilkurczyna/okazje-bot/services/classifier"
	"github.com/kamilkurczyna/okazje-bot/services/notify"
	"github.com/kamilkurczyna/okazje-bot/services/store"
)

// pollTimeout is the long-poll window for getUpdates
const pollTimeout = 30 * time.Second

// minDescriptionLen is the shortest free-text message treated as a
// manual listing description rather than noise
const minDescriptionLen = 20

// Bot wires the Telegram update stream to the pipeline
type Bot struct {
	tg         *notify.Client
	dispatcher *scraper.Dispatcher
	classifier *classifier.Client
	scanner    *scanner.Scanner
	seen       store.SeenStore
	keywords   store.KeywordStore
	cfg        config.Config
	log        *logger.Logger
}

// New creates the bot
func New(
	tg *notify.Client,
	dispatcher *scraper.Dispatcher,
	cls *classifier.Client,
	sc *scanner.Scanner,
	seen store.SeenStore,
	keywords store.KeywordStore,
	cfg config.Config,
) *Bot {
	return &Bot{
		tg:         tg,
		dispatcher: dispatcher,
		classifier: cls,
		scanner:    sc,
		seen:       seen,
		keywords:   keywords,
		cfg:        cfg,
		log:        logger.ForBot(),
	}
}

// Run polls for updates until ctx is cancelled
func (b *Bot) Run(ctx context.Context) error {
	if err := b.tg.DropPendingUpdates(ctx); err != nil {
		b.log.Warn().Err(err).Msg("Failed to drop pending updates")
	}

	var offset int64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		updates, err := b.tg.GetUpdates(ctx, offset, pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			b.log.Error().Err(err).Msg("Update poll failed")
			time.Sleep(5 * time.Second)
			continue
		}

		for _, u := range updates {
			offset = u.UpdateID + 1
			if u.Message == nil || u.Message.Text == "" {
				continue
			}
			b.HandleMessage(ctx, u.Message)
		}
	}
}

// HandleMessage routes one incoming message. Commands first, then
// pasted links, then free text as a manual description.
func (b *Bot) HandleMessage(ctx context.Context, msg *notify.Message) {
	text := strings.TrimSpace(msg.Text)
	chatID := msg.Chat.ID

	if strings.HasPrefix(text, "/") {
		b.handleCommand(ctx, chatID, text)
		return
	}

	if urls := helpers.ExtractURLs(text); len(urls) > 0 {
		b.handleLinks(ctx, chatID, urls)
		return
	}

	b.handleDescription(ctx, chatID, text)
}

func (b *Bot) handleCommand(ctx context.Context, chatID int64, text string) {
	command, args := splitCommand(text)

	switch command {
	case "/start":
		b.reply(ctx, chatID, startText(chatID))
	case "/help":
		b.reply(ctx, chatID, helpText)
	case "/keywords":
		b.reply(ctx, chatID, b.keywordsText())
	case "/add":
		b.cmdAdd(ctx, chatID, args)
	case "/remove":
		b.cmdRemove(ctx, chatID, args)
	case "/status":
		b.reply(ctx, chatID, b.statusText())
	case "/scan":
		b.cmdScan(ctx, chatID)
	default:
		b.reply(ctx, chatID, "Nieznana komenda. Użyj /help.")
	}
}

func (b *Bot) cmdAdd(ctx context.Context, chatID int64, args string) {
	if args == "" {
		b.reply(ctx, chatID, "Użycie: /add <słowo kluczowe>")
		return
	}

	if err := b.keywords.Add(args); err != nil {
		if errors.Is(err, store.ErrDuplicateKeyword) {
			b.reply(ctx, chatID, fmt.Sprintf("'%s' już istnieje na liście.", args))
			return
		}
		b.log.Error().Err(err).Msg("Failed to add keyword")
		b.reply(ctx, chatID, "Nie udało się zapisać słowa kluczowego.")
		return
	}
	b.reply(ctx, chatID, fmt.Sprintf("✅ Dodano: **%s**", args))
}

// cmdRemove accepts either a 1-based list position or the exact keyword
func (b *Bot) cmdRemove(ctx context.Context, chatID int64, args string) {
	if args == "" {
		b.reply(ctx, chatID, "Użycie: /remove <numer lub słowo kluczowe>")
		return
	}

	if idx, err := strconv.Atoi(args); err == nil {
		removed, err := b.keywords.RemoveAt(idx - 1)
		if err == nil {
			b.reply(ctx, chatID, fmt.Sprintf("✅ Usunięto: **%s**", removed))
			return
		}
	}

	if err := b.keywords.Remove(args); err != nil {
		b.reply(ctx, chatID, fmt.Sprintf("Nie znaleziono '%s' na liście.", args))
		return
	}
	b.reply(ctx, chatID, fmt.Sprintf("✅ Usunięto: **%s**", args))
}

func (b *Bot) cmdScan(ctx context.Context, chatID int64) {
	b.reply(ctx, chatID, "🔄 Uruchamiam skan... to może chwilę potrwać.")

	found, err := b.scanner.Run(ctx)
	if err != nil {
		b.log.Error().Err(err).Msg("Manual scan failed")
		b.reply(ctx, chatID, "Skan nie powiódł się.")
		return
	}
	if found == 0 {
		b.reply(ctx, chatID, "Brak nowych ofert spełniających kryteria.")
	}
}

// handleLinks runs the full pipeline on every pasted URL: extract,
// classify, mark seen, report the verdict
func (b *Bot) handleLinks(ctx context.Context, chatID int64, urls []string) {
	for _, url := range urls {
		b.reply(ctx, chatID, fmt.Sprintf("🔍 Pobieram: %s...", truncateURL(url)))

		l, err := b.dispatcher.Extract(ctx, url)
		if err != nil {
			b.log.Error().Err(err).Str("url", url).Msg("Extraction failed")
			b.reply(ctx, chatID, fmt.Sprintf(
				"❌ Nie udało się pobrać oferty z:\n%s\n\nMożesz wkleić opis ręcznie — przeanalizuję go.", url))
			continue
		}

		b.reply(ctx, chatID, notify.FormatListingSummary(l))
		b.analyze(ctx, chatID, l)

		if err := b.seen.Add(url); err != nil {
			b.log.Error().Err(err).Str("url", url).Msg("Failed to mark listing seen")
		}
	}
}

// handleDescription treats non-link text as a manual listing
func (b *Bot) handleDescription(ctx context.Context, chatID int64, text string) {
	if len([]rune(text)) < minDescriptionLen {
		b.reply(ctx, chatID, "Wklej link do oferty lub opisz przedmiot (min. 20 znaków) do analizy.")
		return
	}

	b.reply(ctx, chatID, "🤖 Analizuję opis z AI...")
	b.analyze(ctx, chatID, listing.NewManual(text))
}

// analyze classifies l and reports the result. A classifier failure is
// reported in place of the analysis, never swallowed.
func (b *Bot) analyze(ctx context.Context, chatID int64, l *listing.Listing) {
	analysis, err := b.classifier.Analyze(ctx, l)
	if err != nil {
		b.log.Error().Err(err).Str("id", l.ID()).Msg("Analysis failed")
		analysis = fmt.Sprintf("❌ Błąd analizy AI: %v", err)
	}

	l.Analysis = analysis
	l.Verdict = classifier.ParseVerdict(analysis)

	if l.IsManual() {
		b.reply(ctx, chatID, fmt.Sprintf("📋 **ANALIZA OPISU:**\n\n%s", analysis))
		return
	}
	b.reply(ctx, chatID, notify.FormatAnalysis(l))
}

func (b *Bot) reply(ctx context.Context, chatID int64, text string) {
	if err := b.tg.SendMessage(ctx, chatID, text); err != nil {
		b.log.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send reply")
	}
}

func (b *Bot) keywordsText() string {
	var sb strings.Builder
	sb.WriteString("🔑 **Słowa kluczowe do monitoringu:**\n\n")
	for i, k := range b.keywords.List() {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, k)
	}
	sb.WriteString("\n📝 /add <słowo> — dodaj\n📝 /remove <numer lub słowo> — usuń")
	return sb.String()
}

func (b *Bot) statusText() string {
	seenCount, err := b.seen.Len()
	if err != nil {
		b.log.Error().Err(err).Msg("Failed to read seen-set size")
	}
	return fmt.Sprintf(
		"📊 **Status bota:**\n"+
			"• Słowa kluczowe: %d\n"+
			"• Widziane oferty: %d\n"+
			"• Interwał skanowania: %d min\n"+
			"• Max cena: %.0f zł\n"+
			"• Min marża: %d%%\n"+
			"• Platformy monitorowane: Sprzedajemy.pl, Gratka.pl\n"+
			"• Platformy ręczne: OLX, Vinted, Allegro",
		len(b.keywords.List()), seenCount,
		int(b.cfg.ScanInterval.Minutes()), b.cfg.MaxPrice, b.cfg.MinMarginPct)
}

func startText(chatID int64) string {
	return fmt.Sprintf(
		"🔍 **OKAZJE BOT** — Twój skaner kolekcjonerski\n\n"+
			"📋 **Komendy:**\n"+
			"• Wklej link → instant analiza AI\n"+
			"• /keywords — pokaż/edytuj słowa kluczowe\n"+
			"• /add <słowo> — dodaj słowo kluczowe\n"+
			"• /remove <słowo> — usuń słowo kluczowe\n"+
			"• /scan — uruchom skan ręcznie\n"+
			"• /status — status bota\n"+
			"• /help — pomoc\n\n"+
			"🆔 Twój Chat ID: `%d`\n"+
			"_(wklej do zmiennej CHAT_ID w .env)_", chatID)
}

const helpText = "🔍 **Jak używać:**\n\n" +
	"**1. Analiza linku** — wklej link z OLX/Vinted/Allegro/Sprzedajemy/Gratka\n" +
	"Bot pobierze ofertę, przeanalizuje AI i da Ci werdykt.\n\n" +
	"**2. Można wkleić wiele linków naraz** — każdy w osobnej linii.\n\n" +
	"**3. Auto-monitoring** — bot co 30 min skanuje Sprzedajemy.pl i Gratka.pl " +
	"po Twoich słowach kluczowych i wysyła alerty o nowych ofertach.\n\n" +
	"**4. Słowa kluczowe** — /keywords, /add, /remove\n\n" +
	"**Werdykty:**\n" +
	"🟢 KUP — marża 200%+, pewny deal\n" +
	"🟡 NEGOCJUJ — potencjał, ale trzeba zbić cenę\n" +
	"🟠 ZBADAJ — obejrzyj osobiście\n" +
	"❌ OMIŃ — replika / za drogo / brak marży"

// splitCommand separates "/add stara mapa" into "/add" and "stara mapa"
func splitCommand(text string) (string, string) {
	command, rest, _ := strings.Cut(text, " ")
	return command, strings.TrimSpace(rest)
}

func truncateURL(url string) string {
	if len(url) > 60 {
		return url[:60]
	}
	return url
}
