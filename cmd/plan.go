package cmd

import (
	"fmt"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/fedrill/internal/selector"
	"github.com/abhisek/fedrill/internal/ui/theme"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Preview the questions the next quiz would ask",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		userID := resolveUser(cmd)
		out := cmd.OutOrStdout()

		mode, err := selector.ParseMode(a.cfg.Quiz.Mode)
		if err != nil {
			return err
		}

		if explain, _ := cmd.Flags().GetBool("explain"); explain {
			ranked, hasHistory := a.svc.Rank(ctx, userID)
			picks := mode == selector.ModeAdaptive && hasHistory
			printTable(out, []string{"", "Question", "Category", "Seen", "Accuracy", "Weight", "Jitter", "Score"},
				explainRows(ranked, a.cfg.Quiz.Size, picks))
			switch {
			case mode == selector.ModeRandom:
				lipgloss.Fprintln(out, theme.Hint.Render("Random mode: the next quiz samples questions at random."))
			case !hasHistory:
				lipgloss.Fprintln(out, theme.Hint.Render("No answers yet: the next quiz samples questions at random."))
			}
			return nil
		}

		quiz, err := a.svc.BuildQuiz(ctx, userID, a.cfg.Quiz.Size, mode)
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(quiz.Items))
		for i, it := range quiz.Items {
			rows = append(rows, []string{
				fmt.Sprint(i + 1), it.QuestionID, it.Category,
				theme.StatusStyle(it.Status).Render(string(it.Status)),
				theme.Interval(it.IntervalDays),
			})
		}
		printTable(out, []string{"#", "Question", "Category", "Status", "Interval"}, rows)
		return nil
	},
}

func init() {
	planCmd.Flags().Bool("explain", false, "Show the adaptive ranking behind the selection")
	planCmd.Flags().String("mode", string(selector.ModeAdaptive), "Selection mode: random or adaptive")
	planCmd.Flags().Int("size", 10, "Number of questions")
}

// explainRows renders the ranking. The top size rows are starred as picks
// only when picks is set, i.e. when selection actually follows the ranking.
func explainRows(ranked []selector.Ranked, size int, picks bool) [][]string {
	n := 0
	if picks {
		n = min(size, len(ranked))
	}
	rows := make([][]string, 0, len(ranked))
	for i, r := range ranked {
		acc, seen := "-", "0"
		if r.Stats != nil {
			acc = theme.Percent(r.Stats.Accuracy())
			seen = fmt.Sprint(r.Stats.Total)
		}
		pick := ""
		if i < n {
			pick = "*"
		}
		rows = append(rows, []string{
			pick, r.Question.ID, r.Question.Category, seen, acc,
			fmt.Sprintf("%.1f", r.Weight),
			fmt.Sprintf("%.1f", r.Jitter),
			fmt.Sprintf("%.1f", r.Score),
		})
	}
	return rows
}
