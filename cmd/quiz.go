package cmd

import (
	"fmt"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/fedrill/internal/selector"
	"github.com/abhisek/fedrill/internal/ui/theme"
)

var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Take a quiz in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		mode, err := selector.ParseMode(a.cfg.Quiz.Mode)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		userID := resolveUser(cmd)
		quiz, err := a.svc.BuildQuiz(ctx, userID, a.cfg.Quiz.Size, mode)
		if err != nil {
			return err
		}
		if len(quiz.Items) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "The question bank is empty.")
			return nil
		}

		out := cmd.OutOrStdout()
		lipgloss.Fprintln(out, theme.Title.Render(fmt.Sprintf("%s quiz", mode))+
			theme.Subtitle.Render(fmt.Sprintf("  %d questions", len(quiz.Items))))
		fmt.Fprintln(out)

		outcomes, err := newDrill(a.svc, userID, quiz.ID, cmd.InOrStdin(), out).run(ctx, quiz.Items)
		if err != nil {
			return err
		}
		if len(outcomes) == 0 {
			return nil
		}
		if _, err := a.svc.Finish(ctx, userID, quiz.ID, mode); err != nil {
			return err
		}
		printSummary(out, outcomes)
		return nil
	},
}

func init() {
	quizCmd.Flags().String("mode", string(selector.ModeAdaptive), "Selection mode: random or adaptive")
	quizCmd.Flags().Int("size", 10, "Number of questions")
}
