package cmd

import (
	"fmt"
	"strconv"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/fedrill/internal/quizerr"
	"github.com/abhisek/fedrill/internal/spacedrep"
	"github.com/abhisek/fedrill/internal/ui/theme"
)

var intervalCmd = &cobra.Command{
	Use:   "interval <days> <correct>",
	Short: "Compute the next review interval for an answer",
	Example: "  fedrill interval 3 true\n" +
		"  fedrill interval 8 false",
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		days, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return quizerr.Invalid("days", args[0], "must be an integer")
		}
		correct, err := strconv.ParseBool(args[1])
		if err != nil {
			return quizerr.Invalid("correct", args[1], "must be true or false")
		}

		r, err := spacedrep.NewScheduler().ComputeNextReview(days, correct)
		if err != nil {
			return err
		}
		lipgloss.Fprintln(cmd.OutOrStdout(), fmt.Sprintf("%s %s",
			theme.Title.Render(strconv.FormatInt(r.IntervalDays, 10)),
			theme.Subtitle.Render(fmt.Sprintf("(%s, next review %s)",
				theme.Interval(r.IntervalDays), r.NextReviewAt.Format("2006-01-02")))))
		return nil
	},
}
