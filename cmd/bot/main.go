package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"sync"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/trivia-quiz-bot/internal/config"
	"github.com/aliskhannn/trivia-quiz-bot/internal/delivery/telegram"
	"github.com/aliskhannn/trivia-quiz-bot/internal/infra/postgres"
	pgrepo "github.com/aliskhannn/trivia-quiz-bot/internal/infra/postgres/repository"
	"github.com/aliskhannn/trivia-quiz-bot/internal/logger"
	"github.com/aliskhannn/trivia-quiz-bot/internal/repository"
	"github.com/aliskhannn/trivia-quiz-bot/internal/service"
	"github.com/aliskhannn/trivia-quiz-bot/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	lg, err := logger.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = lg.Sync() }()

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramAPIToken)
	if err != nil {
		lg.Fatal("failed to create bot", zap.Error(err))
	}

	commands := []tgbotapi.BotCommand{
		{Command: "start", Description: "Welcome and rules"},
		{Command: "quiz", Description: "Start a new quiz"},
		{Command: "restart", Description: "Play the same questions again"},
		{Command: "history", Description: "Your latest results"},
		{Command: "help", Description: "Help"},
	}
	if _, err := bot.Request(tgbotapi.NewSetMyCommands(commands...)); err != nil {
		lg.Warn("failed to set bot commands", zap.Error(err))
	}

	bot.Debug = cfg.Env != "production"
	lg.Info("authorized on account", zap.String("username", bot.Self.UserName))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	questionRepo, err := repository.NewQuestionRepository(cfg.QuestionsJSONPath)
	if err != nil {
		lg.Fatal("failed to load questions", zap.String("path", cfg.QuestionsJSONPath), zap.Error(err))
	}
	lg.Info("questions loaded", zap.Int("count", questionRepo.Count()))

	// The result log is optional; without a database the bot still plays.
	var resultRepo service.ResultRepository
	if cfg.DB.Enabled() {
		dsn, _ := cfg.DB.DSN()
		pool, err := postgres.NewPool(ctx, dsn, postgres.PoolConfig{
			MaxConns:        int32(cfg.DB.MaxConnections),
			MaxConnLifetime: cfg.DB.MaxConnLifetime,
		})
		if err != nil {
			lg.Fatal("failed to connect to database", zap.Error(err))
		}
		defer pool.Close()

		resultRepo = pgrepo.NewResultRepository(pool, postgres.NewTransactor(pool))
		lg.Info("result log enabled")
	} else {
		lg.Info("result log disabled: DATABASE_URL is not set")
	}

	quizService := service.NewQuizService(
		questionRepo,
		resultRepo,
		storage.NewSessionStorage(),
		service.QuizConfig{
			TimerSeconds:  cfg.Quiz.TimerSeconds,
			SessionTTL:    cfg.Quiz.SessionTTL,
			SweepSchedule: cfg.Quiz.SweepSchedule,
		},
		lg,
	)
	defer quizService.Shutdown()

	handler := telegram.NewHandler(bot, lg, quizService, cfg.Quiz.TimerSeconds, cfg.Quiz.RenderEvery)
	quizService.SetNotifier(handler)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		quizService.RunSweeper(ctx)
	}()

	if err := handler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		lg.Error("telegram handler stopped with error", zap.Error(err))
	}

	stop()
	wg.Wait()
	lg.Info("shutdown complete")
}
