package config

import (
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env        string `yaml:"env" env:"ENV" env-default:"local"`
	Tokens     `yaml:"tokens"`
	Postgres   `yaml:"postgres"`
	HTTPServer `yaml:"http_server"`
	Google     `yaml:"google"`
	Cloudinary `yaml:"cloudinary"`
	Groq       `yaml:"groq"`
	RabbitMQ   `yaml:"rabbitmq"`
	CORS       `yaml:"cors"`
}

type HTTPServer struct {
	Address     string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:8080"`
	Timeout     time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

type Postgres struct {
	Host     string `yaml:"host" env:"DB_HOST" env-default:"postgres"`
	Port     int    `yaml:"port" env:"DB_PORT" env-default:"5432"`
	User     string `yaml:"user" env:"DB_USER" env-required:"true"`
	Password string `yaml:"password" env:"DB_PASSWORD" env-required:"true"`
	DBName   string `yaml:"dbname" env:"DB_NAME" env-required:"true"`
	SSLMode  string `yaml:"sslmode" env:"DB_SSLMODE" env-default:"disable"`
}

type Tokens struct {
	// Key is the 32-byte symmetric token key as 64 hex characters. Required
	// outside env=local; never logged.
	Key   string `yaml:"key" env:"PRKEY"`
	Codec string `yaml:"codec" env:"TOKEN_CODEC" env-default:"paseto"`
	TTL   string `yaml:"ttl" env:"TOKEN_TTL" env-default:"8h"`
}

type Google struct {
	ClientID string `yaml:"client_id" env:"GOOGLE_CLIENT_ID"`
}

type Cloudinary struct {
	URL string `yaml:"url" env:"CLOUDINARY_URL"`
}

type Groq struct {
	APIKey  string `yaml:"api_key" env:"GROQ_API_KEY"`
	BaseURL string `yaml:"base_url" env:"GROQ_BASE_URL" env-default:"https://api.groq.com/openai/v1"`
	Model   string `yaml:"model" env:"GROQ_MODEL" env-default:"llama-3.1-8b-instant"`
}

// RabbitMQ is optional: an empty URL disables event publishing.
type RabbitMQ struct {
	URL       string `yaml:"url" env:"RABBITMQ_URL"`
	QueueName string `yaml:"queue_name" env:"RABBITMQ_QUEUE" env-default:"auth.events"`
}

type CORS struct {
	AllowedOrigins []string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS"`
}

func MustLoad(configPath string) *Config {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("Config file does not exist" + configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		panic("Failed to read config" + err.Error())
	}

	return &cfg
}
