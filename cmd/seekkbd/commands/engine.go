// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package commands

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/northbound/seekkb/internal/bootstrap"
	"github.com/northbound/seekkb/internal/commands"
	"github.com/northbound/seekkb/internal/eventbus"
)

// resolveDataDir returns the --data-dir flag value, or the OS user config
// directory's "seekkb" subdirectory if unset.
func resolveDataDir() (string, error) {
	if d := viper.GetString("data-dir"); d != "" {
		return d, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "seekkb"), nil
}

// buildEngine runs bootstrap.Run synchronously and returns a ready
// commands.Engine: one-shot CLI invocations (ingest, ask, status) need the
// engine ready before their single RunE returns, unlike the desktop shell,
// which polls startup-progress events while painting immediately.
func buildEngine(ctx context.Context) (*commands.Engine, error) {
	dataDir, err := resolveDataDir()
	if err != nil {
		return nil, err
	}
	configPath := viper.GetString("config")

	bus := eventbus.New()
	holder := bootstrap.NewHolder(bus)
	opts := bootstrap.Options{ConfigPath: configPath, DataDir: dataDir}
	if err := bootstrap.Run(ctx, opts, holder); err != nil {
		return nil, err
	}

	return commands.New(holder, bus, configPath), nil
}
