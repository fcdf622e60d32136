package telegram

import (
	"context"
	"errors"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/trivia-quiz-bot/internal/quiz"
)

var (
	errStaleButton     = errors.New("stale quiz button")
	errInvalidCallback = errors.New("invalid callback data")
)

func (h *Handler) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil || cb.From == nil {
		h.answerCallback(cb.ID, "")
		return
	}

	chatID := cb.Message.Chat.ID
	cd := decodeCallback(cb.Data)

	var fn HandlerFunc
	if cd.Action == actionQuiz {
		switch cd.subAction() {
		case quizStart:
			fn = h.handleQuiz(cb.From.ID, cb.Message.MessageID)
		case quizAnswer:
			fn = h.handleAnswer(cd)
		case quizNext:
			fn = h.handleNext()
		case quizRestart:
			fn = h.handleRestart()
		case quizNoop:
			h.answerCallback(cb.ID, "")
			return
		}
	}

	if fn == nil {
		h.logger.Debug("unknown callback", zap.String("data", cb.Data))
		h.answerCallback(cb.ID, msgInvalidCallback)
		return
	}

	h.answerCallback(cb.ID, h.callbackNotice(chatID, fn(ctx, chatID)))
}

// handleAnswer submits the option encoded in cd if it belongs to the question
// currently awaiting an answer.
func (h *Handler) handleAnswer(cd callbackData) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		number, okNumber := cd.intParam(1)
		option, okOption := cd.intParam(2)
		if !okNumber || !okOption {
			return errInvalidCallback
		}

		snap, err := h.quizService.Snapshot(chatID)
		if err != nil {
			return err
		}
		if snap.State != quiz.StateAwaiting || snap.Number != number {
			return errStaleButton
		}

		if _, err := h.quizService.Answer(ctx, chatID, option); err != nil {
			return err
		}
		return h.refresh(chatID)
	}
}

// callbackNotice turns a callback error into the text of the callback answer.
func (h *Handler) callbackNotice(chatID int64, err error) string {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, errStaleButton):
		return msgStaleButton
	case errors.Is(err, errInvalidCallback):
		return msgInvalidCallback
	}

	if text, ok := userMessage(err); ok {
		return text
	}

	h.logger.Error("handle callback error",
		zap.Int64("chat_id", chatID),
		zap.Error(err),
	)
	return msgInternalError
}

// answerCallback removes the loading indicator, optionally with a notice.
func (h *Handler) answerCallback(id, text string) {
	if _, err := h.bot.Request(tgbotapi.NewCallback(id, text)); err != nil {
		h.logger.Debug("callback answer error", zap.Error(err))
	}
}
