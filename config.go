package main

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/KevPtsm/w-diet-sub000/matador"
)

// Config holds all service configuration. Values come from an optional
// config.yaml, then environment variables (server.address -> SERVER_ADDRESS).
type Config struct {
	Server    ServerConfig       `mapstructure:"server"`
	Database  DatabaseConfig     `mapstructure:"database"`
	CORS      CORSConfig         `mapstructure:"cors"`
	OpenAI    OpenAIConfig       `mapstructure:"openai"`
	Reminders ReminderConfig     `mapstructure:"reminders"`
	Goals     map[string]float64 `mapstructure:"goals"`
}

type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type OpenAIConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
}

// ReminderConfig drives the weight-reminder sweep. Hour is the local hour
// from which a still-missing weigh-in is reported.
type ReminderConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
	Hour     int    `mapstructure:"hour"`
}

// loadConfig reads .env into the environment, then config.yaml from path
// (if present) with environment overrides.
func loadConfig(path string) (Config, error) {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.shutdown_timeout", "5s")
	v.SetDefault("database.url", "")
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("openai.base_url", "https://api.openai.com")
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("reminders.enabled", true)
	v.SetDefault("reminders.schedule", "0 * * * *")
	v.SetDefault("reminders.hour", 18)
	for goal, mult := range matador.DefaultGoalMultipliers {
		v.SetDefault("goals."+string(goal), mult)
	}

	// DATABASE_URL and OPENAI_API_KEY are the names existing deployments use.
	_ = v.BindEnv("database.url", "DATABASE_URL", "DB_URL")
	_ = v.BindEnv("openai.api_key", "OPENAI_API_KEY")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.Reminders.Hour < 0 || cfg.Reminders.Hour > 23 {
		return Config{}, errors.New("reminders.hour must be between 0 and 23")
	}
	return cfg, nil
}

// goalMultipliers converts the configured goal table into the engine's
// type. Unknown goal names are ignored.
func (c Config) goalMultipliers() matador.GoalMultipliers {
	table := matador.GoalMultipliers{}
	for name, mult := range c.Goals {
		if goal, ok := matador.ParseGoal(name); ok && mult > 0 {
			table[goal] = mult
		}
	}
	return table
}
