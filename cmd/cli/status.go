package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/westmarch-io/westmarch/internal/common"
	"github.com/westmarch-io/westmarch/internal/config"
	"github.com/westmarch-io/westmarch/internal/models"
)

var statusCmd = &cobra.Command{
	Use:     "status",
	Aliases: []string{"whoami"},
	Short:   "Show who is logged in",
	RunE:    runStatus,
}

func runStatus(cmd *cobra.Command, _ []string) error {
	snapshot := sessionManager.Snapshot()

	fmt.Println(headerStyle.Render("West March"))
	fmt.Printf("API:      %s\n", cfg.GetAPIBaseURL())
	fmt.Printf("Storage:  %s\n", cfg.StorageOptions().Backend)
	fmt.Println()

	switch snapshot.State {
	case models.StateAuthenticated:
		printIdentity(snapshot.Identity, time.Now())
		if len(snapshot.RefreshToken) == 0 {
			fmt.Println(mutedStyle.Render("No refresh credential stored; log in again when the session expires"))
		}
	default:
		fmt.Println(warningStyle.Render("Not logged in"))
		fmt.Println(mutedStyle.Render("Run 'westmarch login' to sign in"))
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	if verbose {
		printDiagnostics(config.RecentDiagnostics(10))
	}

	return nil
}

func printIdentity(identity *models.Identity, now time.Time) {
	name := identity.Username
	if len(name) == 0 {
		name = fmt.Sprintf("user #%d", identity.UserID)
	}

	line := activeStyle.Render(fmt.Sprintf("Logged in as %s", name))
	if identity.IsElevated() {
		line += " " + staffBadgeStyle.Render("STAFF")
	}
	fmt.Println(line)
	fmt.Printf("User ID:  %d\n", identity.UserID)

	if !identity.HasExpiry() {
		return
	}

	expiry := common.FormatExpiry(identity.Expiry, now)
	if identity.Expiry.Before(now) {
		fmt.Println(expiredStyle.Render(fmt.Sprintf("Session:  %s", expiry)))
		return
	}
	fmt.Println(activeStyle.Render(fmt.Sprintf("Session:  %s (%s)",
		expiry, identity.Expiry.Local().Format("2006-01-02 15:04:05"))))
}

func printDiagnostics(entries []config.Diagnostic) {
	if len(entries) == 0 {
		return
	}
	fmt.Println()
	fmt.Println(headerStyle.Render("Recent warnings"))
	for _, entry := range entries {
		fmt.Printf("  %s %s\n",
			mutedStyle.Render(entry.Time.Format("15:04:05")),
			warningStyle.Render(entry.Message))
	}
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
