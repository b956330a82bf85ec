package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the slotwise application
var rootCmd = &cobra.Command{
	Use:   "slotwise",
	Short: "Calendar scheduling assistant backed by Google Calendar",
	Long: `slotwise computes free appointment slots from Google Calendar
availability and books appointments on your behalf.

It can run as:
  - An MCP (Model Context Protocol) server for AI assistants
  - A standalone CLI for finding slots and chatting with the assistant`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	// Missing .env files are fine, environment variables still apply.
	_ = godotenv.Load()

	rootCmd.SetVersionTemplate(`{{printf "slotwise version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newSlotsCmd())
	rootCmd.AddCommand(newChatCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
}
