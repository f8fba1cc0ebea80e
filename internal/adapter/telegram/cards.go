package telegram

import (
	"net/url"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/dharmaRaavi/real-estate-chatbot/internal/domain"
)

const (
	cbInterest   = "interest:"
	cbVisit      = "visit:"
	cbFormSubmit = "form:submit"
	cbFormCancel = "form:cancel"
)

func cardCaption(l domain.Listing) string {
	var b strings.Builder
	b.WriteString(l.Name)
	b.WriteString("\n")
	b.WriteString(l.PriceText())
	if l.Location != "" {
		b.WriteString("\n📍 ")
		b.WriteString(l.Location)
	}
	return b.String()
}

func cardKeyboard(id domain.ListingID) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("I'm Interested", cbInterest+id.String()),
		tgbotapi.NewInlineKeyboardButtonData("Book Visit", cbVisit+id.String()),
	))
}

// imageURL resolves a listing image reference; absolute URLs are kept as they are.
func imageURL(base, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	if base == "" {
		return ""
	}
	return strings.TrimRight(base, "/") + "/" + url.PathEscape(ref)
}

func inlineKeyboard(opts []string) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(opts))
	for _, o := range opts {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(o, o),
		))
	}
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}
