package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/westmarch-io/westmarch/internal/query"
)

var getCmd = &cobra.Command{
	Use:   "get <path>",
	Short: "GET any API path with the current session",
	Long: `GET any API path with the current session and print the JSON response.

Example:
  westmarch get api/tiendas/ --jq '.[].nombre'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cleanup := commandContext(cmd)
		defer cleanup()

		var body any
		if err := apiClient.Get(ctx, args[0], &body); err != nil {
			return describeError(err)
		}

		expression, _ := cmd.Flags().GetString("jq")
		if len(expression) == 0 {
			expression = "."
		}
		return printQuery(cmd.OutOrStdout(), expression, body)
	},
}

// printQuery filters data through a jq expression. $user_id, $username
// and $is_staff describe the logged in user.
func printQuery(out io.Writer, expression string, data any) error {
	variables := map[string]any{
		"$user_id":  nil,
		"$username": nil,
		"$is_staff": false,
	}
	if identity, ok := sessionManager.Identity(); ok {
		variables["$user_id"] = int(identity.UserID)
		variables["$username"] = identity.Username
		variables["$is_staff"] = identity.IsStaff
	}

	results, err := query.Evaluate(expression, data, variables)
	if err != nil {
		return err
	}

	rendered, err := query.Format(results)
	if err != nil {
		return err
	}
	if len(rendered) > 0 {
		fmt.Fprintln(out, rendered)
	}
	return nil
}

// printJSON writes data as indented JSON.
func printJSON(out io.Writer, data any) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(raw))
	return err
}

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().String("jq", "", "Filter the JSON output with a jq expression")
	cmd.Flags().Bool("json", false, "Print the raw JSON response")
}

// printStructured handles --jq and --json. It reports whether it wrote
// anything so callers can fall back to a table.
func printStructured(cmd *cobra.Command, data any) (bool, error) {
	if expression, _ := cmd.Flags().GetString("jq"); len(expression) > 0 {
		return true, printQuery(cmd.OutOrStdout(), expression, data)
	}
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return true, printJSON(cmd.OutOrStdout(), data)
	}
	return false, nil
}

func init() {
	getCmd.Flags().String("jq", "", "Filter the JSON output with a jq expression")
	rootCmd.AddCommand(getCmd)
}
