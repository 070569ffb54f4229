package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

type Config struct {
	DataDir       string `json:"data_dir"`
	LogLevel      string `json:"log_level"`
	MaxConcurrent int    `json:"max_concurrent"`
	MaxToolRounds int    `json:"max_tool_rounds"`
	Timezone      string `json:"timezone"`
	LLM           struct {
		Provider         string  `json:"provider"`
		BaseURL          string  `json:"base_url"`
		APIKey           string  `json:"api_key"`
		Model            string  `json:"model"`
		Region           string  `json:"region"`
		MaxTokens        int     `json:"max_tokens"`
		Temperature      float32 `json:"temperature"`
		MaxContextTokens int     `json:"max_context_tokens"`
		OutputReserve    int     `json:"output_reserve"`
	} `json:"llm"`
	Hydrolix struct {
		Host      string `json:"host"`
		Port      string `json:"port"`
		User      string `json:"user"`
		Password  string `json:"password"`
		Table     string `json:"table"`
		SecretARN string `json:"secret_arn"`
	} `json:"hydrolix"`
	Audit struct {
		Table  string `json:"table"`
		Region string `json:"region"`
	} `json:"audit"`
	Memory struct {
		LastKTurns int `json:"last_k_turns"`
	} `json:"memory"`
	HTTP struct {
		Enabled bool   `json:"enabled"`
		Listen  string `json:"listen"`
	} `json:"http"`
	Telegram struct {
		Token string `json:"token"`
	} `json:"telegram"`
}

func Load(path string) (*Config, error) {
	cfg := &Config{
		DataDir:       filepath.Join(os.Getenv("HOME"), ".hxa"),
		MaxConcurrent: 2,
	}
	cfg.LogLevel = "info"
	cfg.MaxToolRounds = 10
	cfg.Timezone = "UTC"
	cfg.LLM.Provider = "bedrock"
	cfg.LLM.BaseURL = "https://api.openai.com/v1"
	cfg.LLM.Model = "anthropic.claude-3-5-sonnet-20240620-v1:0"
	cfg.LLM.Region = "us-east-1"
	cfg.LLM.MaxTokens = 2000
	cfg.LLM.Temperature = 0.2
	cfg.LLM.MaxContextTokens = 128000
	cfg.LLM.OutputReserve = 4096
	cfg.Hydrolix.Port = "8088"
	cfg.Memory.LastKTurns = 10
	cfg.HTTP.Listen = ":8080"

	// Load from file if exists, otherwise write defaults
	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	} else if os.IsNotExist(err) {
		if err := Save(path, cfg); err != nil {
			return nil, err
		}
	}

	// Override from env (highest precedence)
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		cfg.LLM.APIKey = apiKey
	}
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		cfg.LLM.BaseURL = baseURL
	}
	if host := os.Getenv("HYDROLIX_HOST"); host != "" {
		cfg.Hydrolix.Host = host
	}
	if port := os.Getenv("HYDROLIX_PORT"); port != "" {
		cfg.Hydrolix.Port = port
	}
	if user := os.Getenv("HYDROLIX_USER"); user != "" {
		cfg.Hydrolix.User = user
	}
	if pass := os.Getenv("HYDROLIX_PASSWORD"); pass != "" {
		cfg.Hydrolix.Password = pass
	}
	if arn := os.Getenv("HYDROLIX_SECRET_ARN"); arn != "" {
		cfg.Hydrolix.SecretARN = arn
	}
	if table := os.Getenv("AUDIT_TABLE"); table != "" {
		cfg.Audit.Table = table
	}
	if tgToken := os.Getenv("TELEGRAM_BOT_TOKEN"); tgToken != "" {
		cfg.Telegram.Token = tgToken
	}

	return cfg, nil
}

// Save writes the config to disk using atomic write (temp file + rename).
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	data = append(data, '\n')
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename config: %w", err)
	}
	return nil
}
