package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var ErrMissingEnvironmentVariables = errors.New("missing required environment variables")

// Config holds application configuration loaded from files and environment variables.
type Config struct {
	Env               string `mapstructure:"env"`                 // current application environment (local, dev, production etc)
	LogLevel          string `mapstructure:"log_level"`           // overrides the default log level of the environment
	TelegramAPIToken  string `mapstructure:"-"`                   // Telegram API token loaded from environment
	QuestionsJSONPath string `mapstructure:"questions_json_path"` // path to JSON file with trivia questions
	Quiz              Quiz   `mapstructure:"quiz"`                // quiz session configuration section
	DB                DB     `mapstructure:"database"`            // database configuration section
}

// Quiz contains quiz session parameters.
type Quiz struct {
	TimerSeconds  int           `mapstructure:"timer_seconds"`  // countdown for each question
	RenderEvery   int           `mapstructure:"render_every"`   // redraw the timer every N seconds
	SessionTTL    time.Duration `mapstructure:"session_ttl"`    // idle time after which a session is dropped
	SweepSchedule string        `mapstructure:"sweep_schedule"` // cron spec for the idle session sweeper
}

// DB contains database-related configuration parameters.
type DB struct {
	URL             string        `mapstructure:"-"`                 // database connection string loaded from environment
	MaxConnections  int           `mapstructure:"max_connections"`   // maximum number of open connections in the pool
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"` // maximum lifetime of a single connection
}

// Enabled reports whether the result log database is configured.
func (db DB) Enabled() bool {
	return db.URL != ""
}

// DSN returns the database connection string if it is configured.
func (db DB) DSN() (string, error) {
	if db.URL == "" {
		return "", ErrMissingEnvironmentVariables
	}
	return db.URL, nil
}

// Load reads configuration from the .env file, config files and environment variables.
func Load() (*Config, error) {
	// Values already set in the environment win over the .env file.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	return load(viper.New(), "./config")
}

func load(v *viper.Viper, configPath string) (*Config, error) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)

	// Set default values for configuration keys.
	v.SetDefault("env", "local")
	v.SetDefault("log_level", "")
	v.SetDefault("questions_json_path", "assets/questions.json")
	v.SetDefault("quiz.timer_seconds", 60)
	v.SetDefault("quiz.render_every", 10)
	v.SetDefault("quiz.session_ttl", "30m")
	v.SetDefault("quiz.sweep_schedule", "*/5 * * * *")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.max_conn_lifetime", "30s")

	// Configure environment variable handling and key mapping.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // map nested keys to ENV style names
	v.AutomaticEnv()

	// Bind explicit environment variables to configuration keys.
	_ = v.BindEnv("telegram_api_token", "TELEGRAM_API_TOKEN")
	_ = v.BindEnv("database_url", "DATABASE_URL")
	_ = v.BindEnv("env", "APP_ENV")
	_ = v.BindEnv("quiz.timer_seconds", "QUIZ_TIMER_SECONDS")

	// Try to read configuration file if present.
	if err := v.ReadInConfig(); err != nil {
		var fileLookupErr viper.ConfigFileNotFoundError
		if !errors.As(err, &fileLookupErr) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	// Unmarshal configuration into strongly typed struct.
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	// Load sensitive values from environment variables.
	cfg.TelegramAPIToken = v.GetString("telegram_api_token")
	if cfg.TelegramAPIToken == "" {
		return nil, ErrMissingEnvironmentVariables
	}

	// The result log is optional.
	cfg.DB.URL = v.GetString("database_url")

	if cfg.Quiz.TimerSeconds <= 0 {
		return nil, fmt.Errorf("quiz.timer_seconds must be positive, got %d", cfg.Quiz.TimerSeconds)
	}
	if cfg.Quiz.RenderEvery <= 0 {
		cfg.Quiz.RenderEvery = 1
	}

	return &cfg, nil
}
