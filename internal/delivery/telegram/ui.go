package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aliskhannn/trivia-quiz-bot/internal/quiz"
)

// buildStartKeyboard builds keyboard for the welcome screen.
func buildStartKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🎯 Start quiz", buildQuizStartCallback()),
		),
	)
}

// buildQuizKeyboard builds keyboard for the quiz message in its current state.
func buildQuizKeyboard(snap quiz.Snapshot) tgbotapi.InlineKeyboardMarkup {
	if snap.Finished {
		return buildQuizResultKeyboard()
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for i, o := range snap.Options {
		data := buildQuizNoopCallback()
		if !snap.Revealed {
			data = buildQuizAnswerCallback(snap.Number, i)
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(optionLabel(o), data),
		))
	}

	if snap.Revealed {
		label := "Next Question ▶️"
		if snap.Number == snap.Total {
			label = "Show results 🏁"
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, buildQuizNextCallback()),
		))
	}

	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🔄 Restart", buildQuizRestartCallback()),
	))

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// buildQuizResultKeyboard builds keyboard for quiz results screen.
func buildQuizResultKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 Restart Quiz", buildQuizRestartCallback()),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🎯 New quiz", buildQuizStartCallback()),
		),
	)
}
