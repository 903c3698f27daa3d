package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the campaign API",
	Long: `Exchange your username and password for a session. The session is
stored locally and restored on the next run until you log out.`,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and forget the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionManager.Logout(baseContext(cmd))
		return nil
	},
}

func runLogin(cmd *cobra.Command, args []string) error {
	ctx, cleanup := commandContext(cmd)
	defer cleanup()

	username, _ := cmd.Flags().GetString("username")
	password, _ := cmd.Flags().GetString("password")

	if len(username) == 0 || len(password) == 0 {
		if err := promptCredentials(&username, &password); err != nil {
			return err
		}
	}

	fmt.Println(infoStyle.Render(fmt.Sprintf("Logging in to %s ...", cfg.GetAPIBaseURL())))

	if _, err := apiClient.Login(ctx, strings.TrimSpace(username), password); err != nil {
		if ctx.Err() != nil {
			fmt.Println(warningStyle.Render("Login cancelled"))
			return nil
		}
		fmt.Println(errorStyle.Render("Login failed"))
		return describeError(err)
	}

	return nil
}

func promptCredentials(username *string, password *string) error {
	fields := []huh.Field{}

	if len(*username) == 0 {
		fields = append(fields, huh.NewInput().
			Title("Username").
			Value(username).
			Validate(required("username")))
	}

	if len(*password) == 0 {
		fields = append(fields, huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(password).
			Validate(required("password")))
	}

	form := huh.NewForm(huh.NewGroup(fields...))
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return fmt.Errorf("login cancelled")
		}
		return fmt.Errorf("failed to read credentials: %w", err)
	}
	return nil
}

func required(name string) func(string) error {
	return func(value string) error {
		if len(strings.TrimSpace(value)) == 0 {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}

func init() {
	loginCmd.Flags().StringP("username", "u", "", "Username")
	loginCmd.Flags().StringP("password", "p", "", "Password (prompted when omitted)")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
}
