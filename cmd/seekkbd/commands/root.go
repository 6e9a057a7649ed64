// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch

// Package commands is seekkbd's cobra command tree: serve, ingest, ask,
// status, grounded on linear-fuse's cmd/linear-fuse/commands layout.
package commands

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	dataDir string
)

var rootCmd = &cobra.Command{
	Use:   "seekkbd",
	Short: "A local, single-user RAG knowledge base engine",
	Long: `seekkbd ingests documents into per-project knowledge bases and answers
questions against them using retrieval-augmented chat, entirely on one
machine with no multi-user server component.`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: <data-dir>/config.json)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory (default: <OS user config dir>/seekkb)")

	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	viper.BindPFlag("data-dir", rootCmd.PersistentFlags().Lookup("data-dir"))
}
