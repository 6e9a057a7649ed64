// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var ingestProjectID string

var ingestCmd = &cobra.Command{
	Use:   "ingest [files...]",
	Short: "Upload one or more files into a project's knowledge base",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestProjectID, "project", "", "project id to ingest into (required)")
	ingestCmd.MarkFlagRequired("project")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	engine, err := buildEngine(cmd.Context())
	if err != nil {
		return err
	}

	results, summary, err := engine.UploadDocuments(cmd.Context(), ingestProjectID, args)
	if err != nil {
		return err
	}

	for _, r := range results {
		if r.Success {
			fmt.Printf("%s: indexed (%d chunks)\n", r.Filename, r.ChunkCount)
		} else {
			fmt.Printf("%s: failed at %s: %s\n", r.Filename, r.ErrorStage, r.Error)
		}
	}
	fmt.Printf("\n%d/%d files indexed\n", summary.Successful, summary.Total)
	return nil
}
