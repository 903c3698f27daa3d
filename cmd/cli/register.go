package cli

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"github.com/westmarch-io/westmarch/internal/models"
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new player account",
	Long: `Create a new player account. The server emails an activation link;
open it in a browser or pass its uid and token to 'westmarch activate'.`,
	RunE: runRegister,
}

var activateCmd = &cobra.Command{
	Use:   "activate <uid> <token>",
	Short: "Activate an account from the emailed link",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cleanup := commandContext(cmd)
		defer cleanup()

		if err := apiClient.Activate(ctx, args[0], args[1]); err != nil {
			fmt.Println(errorStyle.Render("Activation failed"))
			return describeError(err)
		}

		fmt.Println(successStyle.Render("Account activated! You can now log in."))
		return nil
	},
}

var errPasswordMismatch = errors.New("passwords do not match")

type registerForm struct {
	request         models.RegisterRequest
	passwordConfirm string
}

func (f *registerForm) validate() error {
	if len(strings.TrimSpace(f.request.Username)) == 0 {
		return fmt.Errorf("username is required")
	}
	if _, err := mail.ParseAddress(f.request.Email); err != nil {
		return fmt.Errorf("invalid email address: %s", f.request.Email)
	}
	if len(f.request.Password) == 0 {
		return fmt.Errorf("password is required")
	}
	if f.request.Password != f.passwordConfirm {
		return errPasswordMismatch
	}
	return nil
}

func runRegister(cmd *cobra.Command, _ []string) error {
	ctx, cleanup := commandContext(cmd)
	defer cleanup()

	var form registerForm

	prompt := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Username").Value(&form.request.Username).Validate(required("username")),
			huh.NewInput().Title("Email").Value(&form.request.Email).Validate(func(s string) error {
				_, err := mail.ParseAddress(s)
				return err
			}),
			huh.NewInput().Title("First name").Value(&form.request.FirstName),
			huh.NewInput().Title("Last name").Value(&form.request.LastName),
		),
		huh.NewGroup(
			huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).
				Value(&form.request.Password).Validate(required("password")),
			huh.NewInput().Title("Confirm password").EchoMode(huh.EchoModePassword).
				Value(&form.passwordConfirm),
		),
	)

	if err := prompt.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println(warningStyle.Render("Registration cancelled"))
			return nil
		}
		return err
	}

	if err := form.validate(); err != nil {
		return err
	}

	if err := apiClient.Register(ctx, form.request); err != nil {
		fmt.Println(errorStyle.Render("Registration failed"))
		return describeError(err)
	}

	fmt.Println(successStyle.Render("Registration complete! Check your email to activate your account."))
	return nil
}

func init() {
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(activateCmd)
}
