// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch

// Package config loads the engine's persistent JSON configuration file
// (spec.md §6: "Config is a JSON document with sections api, database,
// app"), grounded on the viper-based loader in the original drone client
// config, adapted from YAML to JSON and from a home-directory dotfile to
// the per-user data directory layout spec.md describes.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/northbound/seekkb/internal/seekkberr"
)

// APIConfig holds the external-service credentials and model names.
type APIConfig struct {
	APIKey          string `mapstructure:"api_key"`
	BaseURL         string `mapstructure:"base_url"`
	EmbeddingModel  string `mapstructure:"embedding_model"`
	ChatModel       string `mapstructure:"chat_model"`
	Provider        string `mapstructure:"provider"`
}

// DatabaseConfig holds the paths the bootstrap layer needs to find and
// launch the storage helper (C1/C8).
type DatabaseConfig struct {
	Name       string `mapstructure:"name"`
	DataDir    string `mapstructure:"data_dir"`
	PythonPath string `mapstructure:"python_path"`
	ScriptPath string `mapstructure:"script_path"`
}

// AppConfig holds engine-wide tunables that spec.md leaves as "implementer
// should make this configurable" (Open Questions, §9).
type AppConfig struct {
	MaxFileSizeBytes   int64 `mapstructure:"max_file_size_bytes"`
	RetrievalTopK      int   `mapstructure:"retrieval_top_k"`
	RelevanceFloor     float64 `mapstructure:"relevance_floor"`
	HistoryWindow      int   `mapstructure:"history_window"`
	EmbedTimeoutSecond int   `mapstructure:"embed_timeout_seconds"`
}

// Config is the full JSON document described in spec.md §6.
type Config struct {
	API      APIConfig      `mapstructure:"api"`
	Database DatabaseConfig `mapstructure:"database"`
	App      AppConfig      `mapstructure:"app"`
}

// Load reads the config file at configPath (or, if empty, <dataDir>/config.json),
// seeds defaults for every optional key, overlays SEEKKB_-prefixed
// environment variables, and validates the required keys named in
// spec.md §6: an API key, a base URL, an embedding model name, and a chat
// model name.
func Load(configPath, dataDir string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("json")

	v.SetDefault("database.name", "seekkb")
	v.SetDefault("database.data_dir", dataDir)
	v.SetDefault("app.max_file_size_bytes", int64(50*1024*1024))
	v.SetDefault("app.retrieval_top_k", 5)
	v.SetDefault("app.relevance_floor", 0.3)
	v.SetDefault("app.history_window", 8)
	v.SetDefault("app.embed_timeout_seconds", 60)
	v.SetDefault("api.provider", "openai")

	if configPath == "" {
		configPath = filepath.Join(dataDir, "config.json")
	}

	if _, err := os.Stat(configPath); err == nil {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, seekkberr.Wrap(seekkberr.ConfigMissing, "config file could not be parsed as JSON", err)
		}
	}

	v.SetEnvPrefix("SEEKKB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range []string{"api.api_key", "api.base_url", "api.embedding_model", "api.chat_model"} {
		_ = v.BindEnv(key)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, seekkberr.Wrap(seekkberr.ConfigMissing, "config could not be decoded", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	missing := func(field string) *seekkberr.Error {
		envName := "SEEKKB_" + strings.ToUpper(strings.ReplaceAll(field, ".", "_"))
		return seekkberr.New(seekkberr.ConfigMissing, fmt.Sprintf("missing required config key %q; add it to config.json or set %s", field, envName)).WithField(field)
	}
	switch {
	case cfg.API.APIKey == "":
		return missing("api.api_key")
	case cfg.API.BaseURL == "":
		return missing("api.base_url")
	case cfg.API.EmbeddingModel == "":
		return missing("api.embedding_model")
	case cfg.API.ChatModel == "":
		return missing("api.chat_model")
	}
	return nil
}

// Save writes cfg back out as JSON at configPath, used by
// configure_llm_service (spec.md §6) to persist updated credentials.
func Save(cfg *Config, configPath string) error {
	v := viper.New()
	v.SetConfigType("json")
	v.Set("api", cfg.API)
	v.Set("database", cfg.Database)
	v.Set("app", cfg.App)
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return seekkberr.Wrap(seekkberr.InitError, "failed to create config directory", err)
	}
	if err := v.WriteConfigAs(configPath); err != nil {
		return seekkberr.Wrap(seekkberr.InitError, "failed to write config file", err)
	}
	return nil
}
