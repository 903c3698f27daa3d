package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage the stored credentials",
}

var tokenRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Exchange the refresh credential for a new access credential",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cleanup := commandContext(cmd)
		defer cleanup()

		identity, err := apiClient.Refresh(ctx)
		if err != nil {
			fmt.Println(errorStyle.Render("Refresh failed"))
			return describeError(err)
		}

		fmt.Println(successStyle.Render("Session refreshed"))
		fmt.Printf("Expiry: %s\n", identity.Expiry.Local().Format("2006-01-02 15:04:05"))
		return nil
	},
}

func init() {
	tokenCmd.AddCommand(tokenRefreshCmd)
	rootCmd.AddCommand(tokenCmd)
}
