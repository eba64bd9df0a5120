package cmd

import (
	"fmt"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/fedrill/internal/ui/theme"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Show the latest attempts across all learners",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		ov, err := a.svc.Overview(cmd.Context(), limit)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		lipgloss.Fprintln(out, theme.Title.Render("Activity")+
			theme.Subtitle.Render(fmt.Sprintf("  %d learners, showing %d attempts", ov.Users, len(ov.Attempts))))

		rows := make([][]string, 0, len(ov.Attempts))
		for _, l := range ov.Attempts {
			verdict := theme.Incorrect.Render("wrong")
			if l.IsCorrect {
				verdict = theme.Correct.Render("right")
			}
			rows = append(rows, []string{
				l.CreatedAt.Local().Format("2006-01-02 15:04"),
				l.UserID,
				l.QuestionID,
				l.Category,
				verdict,
			})
		}
		printTable(out, []string{"When", "Learner", "Question", "Category", "Result"}, rows)
		return nil
	},
}

func init() {
	adminCmd.Flags().Int("limit", 0, "Maximum number of attempts (default 100)")
}
