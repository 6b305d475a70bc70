package config

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Mode             string        `mapstructure:"mode"`
	Port             int           `mapstructure:"port"`
	AllowedOrigin    string        `mapstructure:"allowed_origin"`
	ReadLimit        int64         `mapstructure:"read_limit"`
	PingPeriod       time.Duration `mapstructure:"ping_period"`
	SendBuffer       int           `mapstructure:"send_buffer"`
	CallRateLimit    int           `mapstructure:"call_rate_limit"`
	CallRateInterval time.Duration `mapstructure:"call_rate_interval"`
	Secret           string        `mapstructure:"secret"`
	RedisAddr        string        `mapstructure:"redis_addr"`
	HistoryLimit     int           `mapstructure:"history_limit"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("allowed_origin", "")
	v.SetDefault("read_limit", 1<<20) // base64 file payloads ride the socket
	v.SetDefault("ping_period", "54s")
	v.SetDefault("send_buffer", 64)
	v.SetDefault("call_rate_limit", 10)
	v.SetDefault("call_rate_interval", "30s")
	v.SetDefault("redis_addr", "")
	v.SetDefault("history_limit", 200)

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	log.Info().Str("mode", cfg.Mode).Int("port", cfg.Port).Msg("config ready")
	return &cfg, nil
}
