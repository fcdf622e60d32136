package telegram

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aliskhannn/trivia-quiz-bot/internal/domain/entities"
	"github.com/aliskhannn/trivia-quiz-bot/internal/quiz"
	"github.com/aliskhannn/trivia-quiz-bot/internal/service"
	"github.com/aliskhannn/trivia-quiz-bot/internal/storage"
)

const (
	testChatID = int64(100)
	testUserID = int64(200)
)

type fakeBot struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	nextID   int
	updates  chan tgbotapi.Update
	editErr  error
}

func newFakeBot() *fakeBot {
	return &fakeBot{updates: make(chan tgbotapi.Update)}
}

func (b *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := c.(tgbotapi.EditMessageTextConfig); ok && b.editErr != nil {
		return tgbotapi.Message{}, b.editErr
	}
	b.sent = append(b.sent, c)
	b.nextID++
	return tgbotapi.Message{MessageID: b.nextID}, nil
}

func (b *fakeBot) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests = append(b.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (b *fakeBot) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return b.updates
}

func (b *fakeBot) StopReceivingUpdates() {}

func (b *fakeBot) failEdits(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.editErr = err
}

func (b *fakeBot) sentMessages() []tgbotapi.Chattable {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]tgbotapi.Chattable(nil), b.sent...)
}

func (b *fakeBot) lastCallbackText(t *testing.T) string {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := len(b.requests) - 1; i >= 0; i-- {
		if cb, ok := b.requests[i].(tgbotapi.CallbackConfig); ok {
			return cb.Text
		}
	}
	t.Fatal("no callback answered")
	return ""
}

type staticQuestions []entities.Question

func (q staticQuestions) GetAll(context.Context) ([]entities.Question, error) {
	return append([]entities.Question(nil), q...), nil
}

// silentTicker never fires, so tests drive the quiz by hand.
type silentTicker struct{ c chan time.Time }

func (s silentTicker) C() <-chan time.Time { return s.c }
func (s silentTicker) Stop()               {}

func newTestHandler(t *testing.T) (*Handler, *fakeBot, *service.QuizService) {
	t.Helper()

	questions := staticQuestions{
		{
			Category:         "Entertainment%3A%20Board%20Games",
			Difficulty:       entities.DifficultyMedium,
			Text:             "How%20many%20squares%20are%20on%20a%20chess%20board%3F",
			CorrectAnswer:    "64",
			IncorrectAnswers: []string{"32", "81", "100"},
		},
		{
			Category:         "Entertainment%3A%20Board%20Games",
			Difficulty:       entities.DifficultyEasy,
			Text:             "How%20many%20dice%20are%20used%20in%20Yahtzee%3F",
			CorrectAnswer:    "5",
			IncorrectAnswers: []string{"4", "6", "3"},
		},
	}

	svc := service.NewQuizService(questions, nil, storage.NewSessionStorage(),
		service.QuizConfig{TimerSeconds: 30},
		zap.NewNop(),
		service.WithTickerFactory(func(time.Duration) quiz.Ticker {
			return silentTicker{c: make(chan time.Time)}
		}),
	)
	t.Cleanup(svc.Shutdown)

	bot := newFakeBot()
	h := NewHandler(bot, zap.NewNop(), svc, 30, 5)
	svc.SetNotifier(h)

	return h, bot, svc
}

func commandUpdate(command string) tgbotapi.Update {
	text := "/" + command
	return tgbotapi.Update{
		Message: &tgbotapi.Message{
			MessageID: 1,
			Text:      text,
			Chat:      &tgbotapi.Chat{ID: testChatID},
			From:      &tgbotapi.User{ID: testUserID},
			Entities:  []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(text)}},
		},
	}
}

func callbackUpdate(data string, messageID int) tgbotapi.Update {
	return tgbotapi.Update{
		CallbackQuery: &tgbotapi.CallbackQuery{
			ID:   "cb",
			From: &tgbotapi.User{ID: testUserID},
			Message: &tgbotapi.Message{
				MessageID: messageID,
				Chat:      &tgbotapi.Chat{ID: testChatID},
			},
			Data: data,
		},
	}
}

func correctOption(t *testing.T, snap quiz.Snapshot) int {
	t.Helper()
	for i, o := range snap.Options {
		if o.Text == "64" || o.Text == "5" {
			return i
		}
	}
	t.Fatal("correct option not found")
	return -1
}

func TestHandler_QuizCommandSendsQuizMessage(t *testing.T) {
	h, bot, svc := newTestHandler(t)

	h.handleUpdate(context.Background(), commandUpdate("quiz"))

	sent := bot.sentMessages()
	require.Len(t, sent, 1)
	msg, ok := sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, tgbotapi.ModeMarkdownV2, msg.ParseMode)
	assert.Contains(t, msg.Text, bold("Question 1 of 2"))

	kb, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	assert.Len(t, kb.InlineKeyboard, 5)

	msgID, ok := svc.MessageID(testChatID)
	require.True(t, ok)
	assert.Equal(t, 1, msgID)
}

func TestHandler_AnswerCallbackEditsMessage(t *testing.T) {
	h, bot, svc := newTestHandler(t)
	ctx := context.Background()

	h.handleUpdate(ctx, commandUpdate("quiz"))
	snap, err := svc.Snapshot(testChatID)
	require.NoError(t, err)

	h.handleUpdate(ctx, callbackUpdate(buildQuizAnswerCallback(1, correctOption(t, snap)), 1))
	assert.Equal(t, "", bot.lastCallbackText(t))

	sent := bot.sentMessages()
	require.Len(t, sent, 2)
	edit, ok := sent[1].(tgbotapi.EditMessageTextConfig)
	require.True(t, ok)
	assert.Equal(t, 1, edit.MessageID)
	assert.Contains(t, edit.Text, bold("✅ Correct!"))

	snap, err = svc.Snapshot(testChatID)
	require.NoError(t, err)
	assert.Equal(t, quiz.StateRevealed, snap.State)

	// The same button again belongs to a question that is over.
	h.handleUpdate(ctx, callbackUpdate(buildQuizAnswerCallback(1, 0), 1))
	assert.Equal(t, msgStaleButton, bot.lastCallbackText(t))
	assert.Len(t, bot.sentMessages(), 2)

	h.handleUpdate(ctx, callbackUpdate(buildQuizNextCallback(), 1))
	snap, err = svc.Snapshot(testChatID)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Number)

	// A button from question 1 cannot answer question 2.
	h.handleUpdate(ctx, callbackUpdate(buildQuizAnswerCallback(1, 0), 1))
	assert.Equal(t, msgStaleButton, bot.lastCallbackText(t))
	snap, err = svc.Snapshot(testChatID)
	require.NoError(t, err)
	assert.Equal(t, quiz.StateAwaiting, snap.State)
}

func TestHandler_FinishAndRestart(t *testing.T) {
	h, bot, svc := newTestHandler(t)
	ctx := context.Background()

	h.handleUpdate(ctx, commandUpdate("quiz"))
	for i := 1; i <= 2; i++ {
		h.handleUpdate(ctx, callbackUpdate(buildQuizAnswerCallback(i, 0), 1))
		h.handleUpdate(ctx, callbackUpdate(buildQuizNextCallback(), 1))
	}

	sent := bot.sentMessages()
	last, ok := sent[len(sent)-1].(tgbotapi.EditMessageTextConfig)
	require.True(t, ok)
	assert.Contains(t, last.Text, bold("Quiz Finished!"))

	h.handleUpdate(ctx, callbackUpdate(buildQuizRestartCallback(), 1))
	snap, err := svc.Snapshot(testChatID)
	require.NoError(t, err)
	assert.Equal(t, quiz.StateAwaiting, snap.State)
	assert.Equal(t, 1, snap.Number)
	assert.Equal(t, 0, snap.Attempts)
}

func TestHandler_LostQuizMessageIsSentAgain(t *testing.T) {
	h, bot, svc := newTestHandler(t)
	ctx := context.Background()

	h.handleUpdate(ctx, commandUpdate("quiz"))
	snap, err := svc.Snapshot(testChatID)
	require.NoError(t, err)

	bot.failEdits(errors.New("Bad Request: message to edit not found"))
	h.handleUpdate(ctx, callbackUpdate(buildQuizAnswerCallback(1, correctOption(t, snap)), 1))
	assert.Equal(t, "", bot.lastCallbackText(t))

	sent := bot.sentMessages()
	require.Len(t, sent, 2)
	msg, ok := sent[1].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Contains(t, msg.Text, bold("✅ Correct!"))

	msgID, ok := svc.MessageID(testChatID)
	require.True(t, ok)
	assert.Equal(t, 2, msgID)

	bot.failEdits(nil)
	h.handleUpdate(ctx, callbackUpdate(buildQuizNextCallback(), 2))
	sent = bot.sentMessages()
	require.Len(t, sent, 3)
	edit, ok := sent[2].(tgbotapi.EditMessageTextConfig)
	require.True(t, ok)
	assert.Equal(t, 2, edit.MessageID)
}

func TestHandler_UnmodifiedEditKeepsMessage(t *testing.T) {
	h, bot, svc := newTestHandler(t)

	h.handleUpdate(context.Background(), commandUpdate("quiz"))
	bot.failEdits(errors.New("Bad Request: message is not modified"))

	h.NotifyTick(testChatID, quiz.Event{TimedOut: true})
	assert.Len(t, bot.sentMessages(), 1)

	msgID, ok := svc.MessageID(testChatID)
	require.True(t, ok)
	assert.Equal(t, 1, msgID)
}

func TestHandler_StartCallbackReusesMessage(t *testing.T) {
	h, bot, svc := newTestHandler(t)

	h.handleUpdate(context.Background(), callbackUpdate(buildQuizStartCallback(), 77))

	msgID, ok := svc.MessageID(testChatID)
	require.True(t, ok)
	assert.Equal(t, 77, msgID)

	sent := bot.sentMessages()
	require.Len(t, sent, 1)
	edit, ok := sent[0].(tgbotapi.EditMessageTextConfig)
	require.True(t, ok)
	assert.Equal(t, 77, edit.MessageID)
}

func TestHandler_NoSession(t *testing.T) {
	h, bot, _ := newTestHandler(t)
	ctx := context.Background()

	h.handleUpdate(ctx, commandUpdate("restart"))
	sent := bot.sentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, msgNoActiveQuiz, sent[0].(tgbotapi.MessageConfig).Text)

	h.handleUpdate(ctx, callbackUpdate(buildQuizNextCallback(), 1))
	assert.Equal(t, msgNoActiveQuiz, bot.lastCallbackText(t))

	h.handleUpdate(ctx, commandUpdate("history"))
	sent = bot.sentMessages()
	assert.Equal(t, msgHistoryDisabled, sent[len(sent)-1].(tgbotapi.MessageConfig).Text)
}

func TestHandler_InvalidCallbacks(t *testing.T) {
	h, bot, _ := newTestHandler(t)
	ctx := context.Background()

	for _, data := range []string{"", "settings:menu", "quiz:dance", "quiz:answer:x:1"} {
		h.handleUpdate(ctx, callbackUpdate(data, 1))
		assert.Equal(t, msgInvalidCallback, bot.lastCallbackText(t), data)
	}
	assert.Empty(t, bot.sentMessages())
}

func TestHandler_NotifyTickThrottlesRedraws(t *testing.T) {
	h, bot, _ := newTestHandler(t)
	h.handleUpdate(context.Background(), commandUpdate("quiz"))
	require.Len(t, bot.sentMessages(), 1)

	h.NotifyTick(testChatID, quiz.Event{Snapshot: quiz.Snapshot{Remaining: 28}})
	assert.Len(t, bot.sentMessages(), 1)

	h.NotifyTick(testChatID, quiz.Event{Snapshot: quiz.Snapshot{Remaining: 25}})
	assert.Len(t, bot.sentMessages(), 2)

	h.NotifyTick(testChatID, quiz.Event{Snapshot: quiz.Snapshot{Remaining: 0}, TimedOut: true})
	assert.Len(t, bot.sentMessages(), 3)

	// Unknown chats are ignored.
	h.NotifyTick(999, quiz.Event{TimedOut: true})
	assert.Len(t, bot.sentMessages(), 3)
}

func TestHandler_RunStopsOnCancel(t *testing.T) {
	h, _, _ := newTestHandler(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- h.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not stop")
	}
}
