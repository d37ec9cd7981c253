package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config represents the application configuration
type Config struct {
	AI struct {
		Provider    string  `koanf:"provider"`
		Model       string  `koanf:"model"`
		APIKey      string  `koanf:"api_key"`
		BaseURL     string  `koanf:"base_url"`
		Temperature float64 `koanf:"temperature"`
		MaxTokens   int     `koanf:"max_tokens"`
	} `koanf:"ai"`

	Tutor struct {
		DefaultTopic      string `koanf:"default_topic"`
		DefaultDifficulty string `koanf:"default_difficulty"`
		HistoryWindow     int    `koanf:"history_window"`
	} `koanf:"tutor"`

	Server struct {
		Port int `koanf:"port"`
	} `koanf:"server"`

	Store struct {
		Path string `koanf:"path"`
	} `koanf:"store"`

	Logging struct {
		Level         string `koanf:"level"`
		TranscriptDir string `koanf:"transcript_dir"`
	} `koanf:"logging"`
}

// LoadConfig loads the configuration from a file
func LoadConfig(configPath string) (*Config, error) {
	var k = koanf.New(".")

	// Set up default configuration
	k.Load(confmap.Provider(map[string]interface{}{
		"ai.provider":              "gemini",
		"ai.temperature":           0.7,
		"tutor.default_topic":      "",
		"tutor.default_difficulty": "beginner",
		"tutor.history_window":     10,
		"server.port":              8844,
		"store.path":               "./tutordata/socratutor.db",
		"logging.level":            "info",
		"logging.transcript_dir":   "./tutordata/transcripts",
	}, "."), nil)

	// Load from TOML file if it exists
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
			return nil, fmt.Errorf("error loading config: %w", err)
		}
	} else {
		// Try default locations - prioritize tutordata for containerized environments
		defaultPaths := []string{"./tutordata/socratutor.toml", "./socratutor.toml", "$HOME/.socratutor.toml"}
		for _, path := range defaultPaths {
			path = os.ExpandEnv(path)
			if _, err := os.Stat(path); err == nil {
				if err := k.Load(file.Provider(path), toml.Parser()); err == nil {
					break
				}
			}
		}
	}

	// Load from environment variables with prefix SOCRATUTOR_
	k.Load(env.Provider("SOCRATUTOR_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "SOCRATUTOR_")), "_", ".", 1)
	}), nil)

	// Unmarshal into Config struct
	var config Config
	if err := k.Unmarshal("", &config); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	// Provider-native key variables are accepted as a fallback.
	if config.AI.APIKey == "" {
		switch config.AI.Provider {
		case "gemini":
			config.AI.APIKey = os.Getenv("GOOGLE_API_KEY")
		case "openai":
			config.AI.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	}

	return &config, nil
}

// InitConfig initializes a new configuration file
func InitConfig(configPath string) error {
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("configuration file already exists at %s", configPath)
	}

	sampleConfig := `# Socratutor Configuration

[ai]
provider = "gemini"
api_key = "your-gemini-api-key"
model = "gemini-2.0-flash"
temperature = 0.7

[tutor]
default_topic = ""
default_difficulty = "beginner"
history_window = 10

[server]
port = 8844

[store]
path = "./tutordata/socratutor.db"

[logging]
level = "info"
transcript_dir = "./tutordata/transcripts"
`

	return os.WriteFile(configPath, []byte(sampleConfig), 0644)
}

// Validate validates the configuration
func Validate(config *Config) error {
	switch config.AI.Provider {
	case "gemini", "openai":
		if config.AI.APIKey == "" {
			return fmt.Errorf("%s api_key is required", config.AI.Provider)
		}
	case "ollama":
		// runs locally, no key needed
	case "":
		return fmt.Errorf("ai provider is required")
	default:
		return fmt.Errorf("unsupported ai provider %q", config.AI.Provider)
	}

	switch config.Tutor.DefaultDifficulty {
	case "beginner", "intermediate", "advanced":
	default:
		return fmt.Errorf("unsupported difficulty %q", config.Tutor.DefaultDifficulty)
	}

	if config.Tutor.HistoryWindow <= 0 {
		return fmt.Errorf("history_window must be positive")
	}
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", config.Server.Port)
	}

	return nil
}
