package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/westmarch-io/westmarch/internal/api"
	"github.com/westmarch-io/westmarch/internal/models"
)

var charactersCmd = &cobra.Command{
	Use:     "characters",
	Aliases: []string{"personajes"},
	Short:   "List characters",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cleanup := commandContext(cmd)
		defer cleanup()

		mine, _ := cmd.Flags().GetBool("mine")

		characters, err := apiClient.ListCharacters(ctx, api.CharacterFilter{Mine: mine})
		if err != nil {
			return describeError(err)
		}

		if done, err := printStructured(cmd, characters); done {
			return err
		}

		fmt.Println(headerStyle.Render("Characters"))
		fmt.Println()

		if len(characters) == 0 {
			fmt.Println(infoStyle.Render("No characters found"))
			return nil
		}

		renderCharacters(cmd.OutOrStdout(), characters)
		return nil
	},
}

func renderCharacters(out io.Writer, characters []models.Character) {
	rows := make([][]string, 0, len(characters))
	for _, c := range characters {
		rows = append(rows, []string{
			strconv.FormatInt(c.ID, 10),
			c.Name,
			strconv.Itoa(c.Level),
			c.Class,
			c.Species,
			c.Faction,
			fmt.Sprintf("%d/%d/%d/%d/%d/%d",
				c.Strength, c.Dexterity, c.Constitution,
				c.Intelligence, c.Wisdom, c.Charisma),
		})
	}

	renderTable(out, []string{"ID", "NAME", "LVL", "CLASS", "SPECIES", "FACTION", "STR/DEX/CON/INT/WIS/CHA"}, rows)
}

func init() {
	charactersCmd.Flags().Bool("mine", false, "Only show characters you own")
	addOutputFlags(charactersCmd)
	rootCmd.AddCommand(charactersCmd)
}
