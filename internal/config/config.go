package config

import (
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	BotToken       string `envconfig:"BOT_TOKEN" required:"true"`
	DBPath         string `envconfig:"DB_PATH" default:"./data/ethos-agent.db"`
	EthosAPIBase   string `envconfig:"ETHOS_API_BASE" default:"https://api.ethos.network"`
	HTTPAddr       string `envconfig:"HTTP_ADDR" default:":8080"` // healthz + metrics
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`  // debug|info|warn|error
	DedupWindowMin int    `envconfig:"DEDUP_WINDOW_MIN" default:"60"`
}

// Load reads environment variables into Config. A .env file is picked up
// when present, for local development.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
