package cmd

import (
	"fmt"

	"charm.land/lipgloss/v2"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/abhisek/fedrill/internal/selector"
	"github.com/abhisek/fedrill/internal/ui/theme"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Work through questions that are due for review",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		ctx := cmd.Context()
		userID := resolveUser(cmd)
		items, err := a.svc.DueReviews(ctx, userID, limit)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(items) == 0 {
			lipgloss.Fprintln(out, theme.Correct.Render("Nothing is due. Come back later."))
			return nil
		}
		lipgloss.Fprintln(out, theme.Title.Render("Review")+
			theme.Subtitle.Render(fmt.Sprintf("  %d due", len(items))))
		fmt.Fprintln(out)

		reviewID := uuid.New().String()
		outcomes, err := newDrill(a.svc, userID, reviewID, cmd.InOrStdin(), out).run(ctx, items)
		if err != nil {
			return err
		}
		if len(outcomes) == 0 {
			return nil
		}
		// Review sessions pick by schedule, not by category weakness.
		if _, err := a.svc.Finish(ctx, userID, reviewID, selector.ModeRandom); err != nil {
			return err
		}
		printSummary(out, outcomes)
		return nil
	},
}

func init() {
	reviewCmd.Flags().Int("limit", 0, "Maximum number of due questions (default: quiz.review_limit)")
}
