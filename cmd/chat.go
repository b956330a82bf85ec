package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/slotwise/slotwise/internal/agent"
	"github.com/slotwise/slotwise/internal/calendar"
	"github.com/slotwise/slotwise/internal/google"
)

func newChatCmd() *cobra.Command {
	var (
		account        string
		model          string
		conversationID string
		dbPath         string
		debug          bool
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to the scheduling assistant from the terminal",
		Long: `Start an interactive conversation with the Gemini-backed scheduling
assistant. The assistant can check calendar availability and book
appointments when a Google account is linked; without one it explains how
to link a calendar.

Requires GEMINI_API_KEY. History is persisted per conversation; pass
--conversation to resume an earlier one.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			apiKey := os.Getenv("GEMINI_API_KEY")
			if apiKey == "" {
				return fmt.Errorf("GEMINI_API_KEY is not set")
			}

			logger := newLogger(debug)

			db, err := openStore(dbPath)
			if err != nil {
				return err
			}
			defer db.Close()

			var cal agent.CalendarService
			if google.HasTokenForAccount(account) {
				client, err := calendar.NewClientForAccount(cmd.Context(), account)
				if err != nil {
					return fmt.Errorf("failed to create Calendar client: %w", err)
				}
				cal = client
			} else {
				cmd.Println("No Google account linked; the assistant cannot access your calendar.")
				cmd.Println("Run 'slotwise auth' to link one.")
				cmd.Println()
			}

			a, err := agent.New(cmd.Context(), agent.Config{
				APIKey:   apiKey,
				Model:    model,
				Calendar: cal,
				Store:    db,
				Logger:   logger,
			})
			if err != nil {
				return fmt.Errorf("failed to create agent: %w", err)
			}
			defer a.Close()

			if conversationID == "" {
				title := "Chat on " + time.Now().Format("2006-01-02 15:04")
				conv, err := db.CreateConversation(cmd.Context(), account, title)
				if err != nil {
					return fmt.Errorf("failed to create conversation: %w", err)
				}
				conversationID = conv.ID
			} else if _, err := db.GetConversation(cmd.Context(), conversationID); err != nil {
				return fmt.Errorf("failed to resume conversation %s: %w", conversationID, err)
			}

			cmd.Printf("Conversation %s. Type 'exit' to quit.\n\n", conversationID)

			scanner := bufio.NewScanner(os.Stdin)
			for {
				cmd.Print("you> ")
				if !scanner.Scan() {
					break
				}
				prompt := strings.TrimSpace(scanner.Text())
				if prompt == "" {
					continue
				}
				if prompt == "exit" || prompt == "quit" {
					break
				}

				answer, err := a.Run(cmd.Context(), conversationID, prompt)
				if err != nil {
					cmd.PrintErrf("error: %v\n", err)
					continue
				}
				cmd.Printf("\nassistant> %s\n\n", answer)
			}
			return scanner.Err()
		},
	}

	cmd.Flags().StringVar(&account, "account", "default", "Google account to use for calendar access")
	cmd.Flags().StringVar(&model, "model", agent.DefaultModel, "Gemini model name")
	cmd.Flags().StringVar(&conversationID, "conversation", "", "Conversation ID to resume")
	cmd.Flags().StringVar(&dbPath, "db", "", "Path to the SQLite database (default: per-user config dir)")
	cmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging")

	return cmd
}
