package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/westmarch-io/westmarch/internal/api"
	"github.com/westmarch-io/westmarch/internal/models"
)

var classesCmd = &cobra.Command{
	Use:     "classes",
	Aliases: []string{"clases"},
	Short:   "Browse the class catalogue (staff only)",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cleanup := commandContext(cmd)
		defer cleanup()

		page, _ := cmd.Flags().GetInt("page")
		search, _ := cmd.Flags().GetString("search")

		result, err := apiClient.ListClasses(ctx, page, search)
		if err != nil {
			return describeError(err)
		}

		if done, err := printStructured(cmd, result); done {
			return err
		}

		if page < 1 {
			page = 1
		}

		fmt.Println(headerStyle.Render("Classes"))
		fmt.Println()

		if len(result.Results) == 0 {
			fmt.Println(infoStyle.Render("No classes found"))
			return nil
		}

		renderClasses(cmd.OutOrStdout(), result)
		fmt.Println()
		fmt.Println(mutedStyle.Render(fmt.Sprintf("Page %d of %d (%d classes)",
			page, result.TotalPages(api.ClassesPageSize), result.Count)))
		return nil
	},
}

func renderClasses(out io.Writer, page *models.Page[models.DnDClass]) {
	rows := make([][]string, 0, len(page.Results))
	for _, c := range page.Results {
		hitDie := ""
		if c.HitDie > 0 {
			hitDie = "d" + strconv.Itoa(c.HitDie)
		}
		rows = append(rows, []string{c.Slug, c.Name, hitDie, c.PrimaryAbility, c.Source})
	}

	renderTable(out, []string{"SLUG", "NAME", "HIT DIE", "PRIMARY", "SOURCE"}, rows)
}

func init() {
	classesCmd.Flags().Int("page", 1, "Page number")
	classesCmd.Flags().String("search", "", "Filter classes by name")
	addOutputFlags(classesCmd)
	rootCmd.AddCommand(classesCmd)
}
