package cmd

import (
	"fmt"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/fedrill/internal/ui/theme"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show accuracy per category and recent sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		st, err := a.svc.Stats(cmd.Context(), resolveUser(cmd))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if st.TotalAnswered == 0 {
			fmt.Fprintln(out, "No answers recorded yet. Run 'fedrill quiz' to start.")
			return nil
		}

		overall := float64(st.TotalCorrect) / float64(st.TotalAnswered)
		lipgloss.Fprintln(out, theme.Title.Render("Progress")+
			theme.Subtitle.Render(fmt.Sprintf("  %d/%d correct (%s), %d due for review",
				st.TotalCorrect, st.TotalAnswered, theme.Percent(overall), st.DueCount)))

		rows := make([][]string, 0, len(st.Categories))
		for _, c := range st.Categories {
			acc := "-"
			bar := theme.Hint.Render("not practiced")
			if c.Total > 0 {
				acc = theme.Percent(c.Accuracy)
				bar = theme.AccuracyBar(c.Accuracy, 20)
			}
			rows = append(rows, []string{
				theme.Category.Render(c.Category),
				fmt.Sprintf("%d/%d", c.Correct, c.Total),
				acc, bar,
			})
		}
		printTable(out, []string{"Category", "Correct", "Accuracy", ""}, rows)

		if len(st.RecentSessions) == 0 {
			return nil
		}
		rows = rows[:0]
		for _, s := range st.RecentSessions {
			rows = append(rows, []string{
				s.CreatedAt.Local().Format("2006-01-02 15:04"),
				s.Mode,
				fmt.Sprintf("%d/%d", s.Score, s.Total),
			})
		}
		lipgloss.Fprintln(out, theme.Subtitle.Render("Recent sessions"))
		printTable(out, []string{"When", "Mode", "Score"}, rows)
		return nil
	},
}
