// Package config provides configuration management for the avatar runtime.
package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Chat    ChatConfig    `mapstructure:"chat"`
	TTS     TTSConfig     `mapstructure:"tts"`
	Avatar  AvatarConfig  `mapstructure:"avatar"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig configures the HTTP/WebSocket surface.
type ServerConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	CORSOrigins  []string      `mapstructure:"cors_origins"`
}

// ChatConfig configures the conversation backend.
type ChatConfig struct {
	GeminiAPIKey string        `mapstructure:"gemini_api_key"`
	ReplyTimeout time.Duration `mapstructure:"reply_timeout"`
}

// TTSConfig configures speech synthesis.
type TTSConfig struct {
	Provider       string        `mapstructure:"provider"` // elevenlabs or dummy
	ElevenLabsKey  string        `mapstructure:"elevenlabs_api_key"`
	DefaultVoiceID string        `mapstructure:"default_voice_id"`
	ModelID        string        `mapstructure:"model_id"`
	Stability      float64       `mapstructure:"stability"`
	Similarity     float64       `mapstructure:"similarity_boost"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

// AvatarConfig configures the catalog and the frame loop.
type AvatarConfig struct {
	CatalogPath string `mapstructure:"catalog_path"`
	DefaultID   string `mapstructure:"default_id"`
	FrameRate   int    `mapstructure:"frame_rate"`
	// RigPath points at a glTF model whose morph target names gate which
	// channels the animator emits. Empty means accept every channel.
	RigPath string `mapstructure:"rig_path"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Console bool   `mapstructure:"console"`
	File    string `mapstructure:"file"`
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:         ":8090",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			CORSOrigins:  []string{"http://localhost:3000"},
		},
		Chat: ChatConfig{
			ReplyTimeout: 15 * time.Second,
		},
		TTS: TTSConfig{
			Provider:       "elevenlabs",
			DefaultVoiceID: "21m00Tcm4TlvDq8ikWAM",
			ModelID:        "eleven_monolingual_v1",
			Stability:      0.5,
			Similarity:     0.75,
			Timeout:        10 * time.Second,
		},
		Avatar: AvatarConfig{
			CatalogPath: "configs/avatars.yaml",
			FrameRate:   60,
		},
		Logging: LoggingConfig{
			Level:   "info",
			Console: true,
		},
	}
}

// Load reads configuration from file and environment. The path may be empty,
// in which case config.yaml is looked up in the working directory and
// ./configs, and defaults apply when no file exists.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("configs")
	}

	v.SetEnvPrefix("AVAAI")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return cfg, err
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}
