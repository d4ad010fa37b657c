package ai

import (
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.EmbeddingHost == "" {
		t.Error("Expected default EmbeddingHost to be set")
	}
	if cfg.ChatHost == "" {
		t.Error("Expected default ChatHost to be set")
	}
	if cfg.EmbeddingModel == "" {
		t.Error("Expected default EmbeddingModel to be set")
	}
	if cfg.ChatModel == "" {
		t.Error("Expected default ChatModel to be set")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected default config to validate, got %v", err)
	}
}

func TestNewConfig_Options(t *testing.T) {
	cfg := NewConfig(
		WithHost("http://example.com:9100"),
		WithEmbeddingModel("text-embedding-3-small"),
		WithChatModel("gpt-4o-mini"),
		WithTemperature(0.7),
		WithMaxTokens(512),
	)

	if cfg.EmbeddingHost != "http://example.com:9100" {
		t.Errorf("Unexpected EmbeddingHost: %s", cfg.EmbeddingHost)
	}
	if cfg.ChatHost != "http://example.com:9100" {
		t.Errorf("Unexpected ChatHost: %s", cfg.ChatHost)
	}
	if cfg.EmbeddingModel != "text-embedding-3-small" {
		t.Errorf("Unexpected EmbeddingModel: %s", cfg.EmbeddingModel)
	}
	if cfg.ChatModel != "gpt-4o-mini" {
		t.Errorf("Unexpected ChatModel: %s", cfg.ChatModel)
	}
	if cfg.Temperature != 0.7 {
		t.Errorf("Unexpected Temperature: %f", cfg.Temperature)
	}
	if cfg.MaxTokens != 512 {
		t.Errorf("Unexpected MaxTokens: %d", cfg.MaxTokens)
	}
}

func TestConfig_Normalize(t *testing.T) {
	tests := []struct {
		name string
		host string
		want string
	}{
		{name: "bare host", host: "http://localhost:11434", want: "http://localhost:11434/v1"},
		{name: "trailing slash", host: "http://localhost:11434/", want: "http://localhost:11434/v1"},
		{name: "already normalized", host: "http://localhost:11434/v1", want: "http://localhost:11434/v1"},
		{name: "empty left alone", host: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{EmbeddingHost: tt.host, ChatHost: tt.host}
			cfg.Normalize()

			if cfg.EmbeddingHost != tt.want {
				t.Errorf("EmbeddingHost = %q, want %q", cfg.EmbeddingHost, tt.want)
			}
			if cfg.ChatHost != tt.want {
				t.Errorf("ChatHost = %q, want %q", cfg.ChatHost, tt.want)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}, wantErr: false},
		{name: "missing embedding host", mutate: func(c *Config) { c.EmbeddingHost = "" }, wantErr: true},
		{name: "missing chat host", mutate: func(c *Config) { c.ChatHost = "" }, wantErr: true},
		{name: "missing embedding model", mutate: func(c *Config) { c.EmbeddingModel = "" }, wantErr: true},
		{name: "missing chat model", mutate: func(c *Config) { c.ChatModel = "" }, wantErr: true},
		{name: "temperature too high", mutate: func(c *Config) { c.Temperature = 2.5 }, wantErr: true},
		{name: "negative max tokens", mutate: func(c *Config) { c.MaxTokens = -1 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("Expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
		})
	}
}
