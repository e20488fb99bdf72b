package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(*Config)
		wantErr string
	}{
		{
			name: "valid config",
			setup: func(c *Config) {
				c.Telegram.Token = "123:abc"
				c.OpenAI.APIKey = "sk-test"
			},
		},
		{
			name: "missing telegram token",
			setup: func(c *Config) {
				c.OpenAI.APIKey = "sk-test"
			},
			wantErr: "TELEGRAM_TOKEN is required",
		},
		{
			name: "missing openai key",
			setup: func(c *Config) {
				c.Telegram.Token = "123:abc"
			},
			wantErr: "OPENAI_API_KEY is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg Config
			tt.setup(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.EqualError(t, err, tt.wantErr)
			}
		})
	}
}
