// messages.go contains message templates and formatting functions for Telegram.

package telegram

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Error messages.
const (
	msgInternalError    = "Something went wrong. Please try again later."
	msgUnknownCommand   = "Unknown command. Send /help to see what I can do."
	msgNoActiveQuiz     = "There is no quiz running here. Send /quiz to start one."
	msgQuizUnavailable  = "The question set is not available right now."
	msgStaleButton      = "This question is already over."
	msgHistoryDisabled  = "Results are not being saved on this bot."
	msgHistoryEmpty     = "No finished quizzes yet. Send /quiz to play."
	msgInvalidCallback  = "Unknown action."
	msgOptionOutOfRange = "That option does not exist."
)

// md escapes plain text for MarkdownV2.
func md(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdownV2, s)
}

func bold(s string) string {
	return "*" + md(s) + "*"
}

func italic(s string) string {
	return "_" + md(s) + "_"
}

// newMessage creates a message with MarkdownV2 parse mode.
func newMessage(chatID int64, text string) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	return msg
}

// newPlainMessage creates a plain message without MarkdownV2 parse mode.
func newPlainMessage(chatID int64, text string) tgbotapi.MessageConfig {
	return tgbotapi.NewMessage(chatID, text)
}

// newEdit creates an edit with MarkdownV2 parse mode.
func newEdit(chatID int64, msgID int, text string) tgbotapi.EditMessageTextConfig {
	edit := tgbotapi.NewEditMessageText(chatID, msgID, text)
	edit.ParseMode = tgbotapi.ModeMarkdownV2
	return edit
}

// welcomeMarkdownV2 builds the /start message.
func welcomeMarkdownV2(timerSeconds int) string {
	var sb strings.Builder

	sb.WriteString(bold("Trivia Quiz Bot"))
	sb.WriteString("\n\n")
	sb.WriteString(md("Answer multiple choice questions against the clock. "))
	sb.WriteString(md("Each question has four options and "))
	sb.WriteString(bold(formatTimer(timerSeconds)))
	sb.WriteString(md(" on the timer. When time runs out the question counts as wrong."))
	sb.WriteString("\n\n")
	sb.WriteString(md("Harder questions show more ⭐. Your score is the share of correct answers so far, "))
	sb.WriteString(md("and the max score shows the best result you can still reach."))
	sb.WriteString("\n\n")
	sb.WriteString(md("Press the button below or send /quiz to begin."))

	return sb.String()
}

// helpMarkdownV2 builds the /help message.
func helpMarkdownV2() string {
	lines := []string{
		bold("Commands"),
		"",
		md("/quiz - start a new quiz"),
		md("/restart - play the current questions again in a new order"),
		md("/history - your latest results"),
		md("/help - show this message"),
	}
	return strings.Join(lines, "\n")
}
