package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/node-data/ethos-telegram-agent/internal/ethos"
)

// formatProfileMessage renders the Ethos profile overview. A score of -1
// means the score lookup failed and the line shows "Not available".
func formatProfileMessage(stats *ethos.UserStats, userkey string, score int, displayName string) string {
	profileURL := ethos.ProfileURL(userkey)

	var b strings.Builder
	b.WriteString("🔍 <b>Ethos Profile Overview</b>\n\n")
	fmt.Fprintf(&b, "👤 <b>User: <a href=%q>%s</a></b>\n\n", profileURL, displayName)

	if score >= 0 {
		fmt.Fprintf(&b, "⭐ <b>Ethos Score: %d</b>\n\n", score)
	} else {
		b.WriteString("⭐ <b>Ethos Score:</b> Not available\n\n")
	}

	b.WriteString("📊 <b>Reviews:</b>\n\n")
	fmt.Fprintf(&b, "• Total Received: %d (%.1f%%)\n",
		stats.Reviews.Received, stats.Reviews.PositiveReviewPercentage)
	if stats.Reviews.PositiveReviewCount > 0 {
		fmt.Fprintf(&b, "• Positive: %d\n", stats.Reviews.PositiveReviewCount)
	}
	if stats.Reviews.NegativeReviewCount > 0 {
		fmt.Fprintf(&b, "• Negative: %d\n", stats.Reviews.NegativeReviewCount)
	}
	if stats.Reviews.NeutralReviewCount > 0 {
		fmt.Fprintf(&b, "• Neutral: %d\n", stats.Reviews.NeutralReviewCount)
	}

	b.WriteString("\n🤝 <b>Vouches:</b>\n\n")
	if stats.Vouches.Count.Received > 0 {
		fmt.Fprintf(&b, "• Vouches received: %.4fe (%d)\n",
			stats.Vouches.Balance.Received, stats.Vouches.Count.Received)
	}
	if stats.Vouches.Count.Deposited > 0 {
		fmt.Fprintf(&b, "• Vouched for others: %.4fe (%d)\n",
			stats.Vouches.Balance.Deposited, stats.Vouches.Count.Deposited)
	}

	if stats.Slashes.Count > 0 {
		b.WriteString("\n⚠️ <b>Slashes:</b>\n")
		fmt.Fprintf(&b, "• Count: %d\n", stats.Slashes.Count)
		if stats.Slashes.OpenSlash {
			b.WriteString("• Open Slash: Yes\n")
		} else {
			b.WriteString("• Open Slash: None\n")
		}
	}

	return b.String()
}

// profileKeyboard offers review/vouch/view actions linking into the Ethos app.
func profileKeyboard(userkey string) tgbotapi.InlineKeyboardMarkup {
	profileURL := ethos.ProfileURL(userkey)
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("📝 Review", profileURL+"?modal=review"),
			tgbotapi.NewInlineKeyboardButtonURL("🤝 Vouch", profileURL+"?modal=vouch"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("👤 View Full Profile", profileURL),
		),
	)
}
