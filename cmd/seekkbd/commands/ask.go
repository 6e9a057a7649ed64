// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	askProjectID      string
	askConversationID string
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a retrieval-augmented question against a project",
	Args:  cobra.ExactArgs(1),
	RunE:  runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askProjectID, "project", "", "project id to ask against (required unless --conversation is set)")
	askCmd.Flags().StringVar(&askConversationID, "conversation", "", "existing conversation id to continue (creates a new one in --project otherwise)")
	askCmd.MarkFlagsOneRequired("project", "conversation")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := args[0]
	engine, err := buildEngine(cmd.Context())
	if err != nil {
		return err
	}

	conversationID := askConversationID
	if conversationID == "" {
		conv, err := engine.CreateConversation(askProjectID, "")
		if err != nil {
			return err
		}
		conversationID = conv.ID
	}

	events, err := engine.SendMessage(cmd.Context(), conversationID, question)
	if err != nil {
		return err
	}

	for ev := range events {
		switch ev.Kind {
		case "context":
			for _, s := range ev.Sources {
				fmt.Printf("[source: %s]\n", s.Filename)
			}
		case "token":
			fmt.Print(ev.Delta)
		case "end":
			fmt.Println()
		case "error":
			return ev.Err
		}
	}
	return nil
}
