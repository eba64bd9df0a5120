package cmd

import (
	"fmt"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/fedrill/internal/catalog"
	"github.com/abhisek/fedrill/internal/ui/theme"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect and validate question banks",
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the questions in the active bank",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		cat, err := loadCatalog(cfg)
		if err != nil {
			return err
		}

		category, _ := cmd.Flags().GetString("category")
		qs := cat.All()
		if category != "" {
			qs = cat.ByCategory(category)
		}

		out := cmd.OutOrStdout()
		rows := make([][]string, 0, len(qs))
		for _, q := range qs {
			rows = append(rows, []string{q.ID, q.Category, truncate(q.Prompt, 60), fmt.Sprint(len(q.Choices))})
		}
		printTable(out, []string{"ID", "Category", "Prompt", "Choices"}, rows)
		lipgloss.Fprintln(out, theme.Subtitle.Render(fmt.Sprintf("%d questions in %d categories",
			len(qs), len(cat.Categories()))))
		return nil
	},
}

var catalogValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a question bank against the schema",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := catalog.LoadFile(args[0])
		if err != nil {
			return err
		}
		lipgloss.Fprintln(cmd.OutOrStdout(), theme.Correct.Render("ok")+
			theme.Body.Render(fmt.Sprintf(" %s: %d questions, %d categories",
				args[0], cat.Len(), len(cat.Categories()))))
		return nil
	},
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func init() {
	catalogListCmd.Flags().String("category", "", "Only list questions in this category")
	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogValidateCmd)
}
