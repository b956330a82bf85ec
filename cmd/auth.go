package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/slotwise/slotwise/internal/google"
)

func newAuthCmd() *cobra.Command {
	var account string

	cmd := &cobra.Command{
		Use:   "auth [auth-code]",
		Short: "Authorize a Google account",
		Long: `Authorize slotwise to access a Google Calendar account.

Run without arguments to print the authorization URL. Visit it, grant
access, then run again with the authorization code to save the token:

  slotwise auth
  slotwise auth 4/0AbCdEf...`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				if google.HasTokenForAccount(account) {
					cmd.Printf("Account %q is already authorized. Re-authorize via:\n\n", account)
				} else {
					cmd.Println("Visit this URL to authorize access to your Google Calendar:")
					cmd.Println()
				}
				cmd.Println(google.GetAuthURLForAccount(account))
				cmd.Println()
				cmd.Println("Then run: slotwise auth <auth-code>")
				return nil
			}

			if err := google.SaveTokenForAccount(cmd.Context(), account, args[0]); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}
			cmd.Printf("Authorization successful, token saved for account %q.\n", account)
			return nil
		},
	}

	cmd.Flags().StringVar(&account, "account", "default", "Account name for the token")

	return cmd
}
