package config

import (
	"errors"
	"os"
	"time"

	"psybot/pkg/logger"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Telegram struct {
		Token         string `yaml:"token" env:"TELEGRAM_TOKEN"`
		WebhookURL    string `yaml:"webhook_url" env:"WEBHOOK_URL"`
		ListenPort    int    `yaml:"listen_port" env:"PORT" env-default:"10000"`
		WebhookSecret string `yaml:"webhook_secret" env:"WEBHOOK_SECRET"`
	} `yaml:"telegram"`

	OpenAI struct {
		APIKey       string  `yaml:"api_key" env:"OPENAI_API_KEY"`
		ChatModel    string  `yaml:"chat_model" env:"OPENAI_MODEL" env-default:"gpt-3.5-turbo"`
		WhisperModel string  `yaml:"whisper_model" env:"WHISPER_MODEL" env-default:"whisper-1"`
		MaxTokens    int     `yaml:"max_tokens" env:"OPENAI_MAX_TOKENS" env-default:"500"`
		Temperature  float64 `yaml:"temperature" env:"OPENAI_TEMPERATURE" env-default:"0.7"`
	} `yaml:"openai"`

	Audio struct {
		FFmpegPath     string        `yaml:"ffmpeg_path" env:"FFMPEG_PATH" env-default:"ffmpeg"`
		ConvertTimeout time.Duration `yaml:"convert_timeout" env:"CONVERT_TIMEOUT" env-default:"30s"`
		SampleRate     int           `yaml:"sample_rate" env:"AUDIO_SAMPLE_RATE" env-default:"16000"`
	} `yaml:"audio"`

	Crisis struct {
		Enabled    bool     `yaml:"enabled" env:"CRISIS_FILTER_ENABLED" env-default:"true"`
		ExtraWords []string `yaml:"extra_words" env:"CRISIS_EXTRA_WORDS" env-separator:","`
	} `yaml:"crisis"`

	Reply struct {
		EchoTranscript   bool `yaml:"echo_transcript" env:"ECHO_TRANSCRIPT" env-default:"true"`
		MinTranscriptLen int  `yaml:"min_transcript_len" env:"MIN_TRANSCRIPT_LEN" env-default:"5"`
		VoiceEnabled     bool `yaml:"voice_enabled" env:"VOICE_REPLIES_ENABLED" env-default:"false"`
		VoiceMaxChars    int  `yaml:"voice_max_chars" env:"VOICE_REPLY_MAX_CHARS" env-default:"1000"`
	} `yaml:"reply"`

	Redis struct {
		Addr     string `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
		Password string `yaml:"password" env:"REDIS_PASSWORD" env-default:""`
		DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
	} `yaml:"redis"`

	// Postgres is optional: an empty DSN disables the exchange journal.
	Postgres struct {
		DSN string `yaml:"dsn" env:"POSTGRES_DSN" env-default:""`
	} `yaml:"postgres"`
}

func LoadConfig() (*Config, error) {
	// Load .env file
	_ = godotenv.Load()

	var cfg Config
	if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := cleanenv.ReadConfig("configs/config.yaml", &cfg); err != nil {
			return nil, err
		}
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Info("Config loaded successfully")
	return &cfg, nil
}

// Validate checks the credentials without which the bot cannot start.
func (c *Config) Validate() error {
	if c.Telegram.Token == "" {
		return errors.New("TELEGRAM_TOKEN is required")
	}
	if c.OpenAI.APIKey == "" {
		return errors.New("OPENAI_API_KEY is required")
	}
	return nil
}
