// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report whether the engine can start and reach its storage helper",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	engine, err := buildEngine(cmd.Context())
	if err != nil {
		return err
	}

	status, err := engine.GetAppStatus()
	if err != nil {
		return err
	}

	fmt.Printf("ready: %v\n", status.Ready)
	fmt.Printf("storage_alive: %v\n", status.StorageAlive)
	fmt.Printf("project_count: %d\n", status.ProjectCount)
	return nil
}
