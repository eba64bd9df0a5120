package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/fedrill/internal/session"
	"github.com/abhisek/fedrill/internal/ui/theme"
)

// drill walks the learner through items, reading one answer per line
// from in. Entering "q" ends the drill early. Answers are recorded under
// quizID as they are given so a quit keeps earlier progress.
type drill struct {
	svc    *session.Service
	userID string
	quizID string
	in     *bufio.Scanner
	out    io.Writer
	now    func() time.Time
}

func newDrill(svc *session.Service, userID, quizID string, in io.Reader, out io.Writer) *drill {
	return &drill{
		svc:    svc,
		userID: userID,
		quizID: quizID,
		in:     bufio.NewScanner(in),
		out:    out,
		now:    time.Now,
	}
}

func (d *drill) run(ctx context.Context, items []session.Item) ([]session.Outcome, error) {
	outcomes := make([]session.Outcome, 0, len(items))
	for i, it := range items {
		start := d.now()
		d.present(i+1, len(items), it)

		choice, ok, err := d.readChoice(len(it.Choices))
		if err != nil {
			return outcomes, err
		}
		if !ok {
			break
		}

		o, err := d.svc.RecordAnswer(ctx, d.userID, session.Answer{
			QuestionID:  it.QuestionID,
			Choice:      it.Choices[choice].Index,
			TimeTakenMs: d.now().Sub(start).Milliseconds(),
			QuizID:      d.quizID,
		})
		if err != nil {
			return outcomes, err
		}
		outcomes = append(outcomes, *o)
		d.feedback(o)
	}
	return outcomes, nil
}

func (d *drill) present(n, total int, it session.Item) {
	var b strings.Builder
	b.WriteString(theme.Category.Render(it.Category))
	b.WriteString(theme.Subtitle.Render(fmt.Sprintf("  %d/%d", n, total)))
	if it.NextReviewAt != nil {
		b.WriteString(theme.Subtitle.Render("  review: "))
		b.WriteString(theme.StatusStyle(it.Status).Render(string(it.Status)))
	}
	b.WriteString("\n\n")
	b.WriteString(theme.Body.Render(it.Prompt))
	b.WriteString("\n\n")
	for i, c := range it.Choices {
		fmt.Fprintf(&b, "%s %s\n", theme.Title.Render(fmt.Sprintf("%d.", i+1)), c.Text)
	}
	lipgloss.Fprintln(d.out, theme.Card.Render(strings.TrimRight(b.String(), "\n")))
}

// readChoice returns the zero-based position of the chosen option. ok is
// false when the learner quits or input ends.
func (d *drill) readChoice(n int) (int, bool, error) {
	for {
		fmt.Fprintf(d.out, "Answer [1-%d, q to quit]: ", n)
		if !d.in.Scan() {
			fmt.Fprintln(d.out)
			return 0, false, d.in.Err()
		}
		line := strings.TrimSpace(d.in.Text())
		if strings.EqualFold(line, "q") {
			return 0, false, nil
		}
		v, err := strconv.Atoi(line)
		if err != nil || v < 1 || v > n {
			lipgloss.Fprintln(d.out, theme.Hint.Render(fmt.Sprintf("Enter a number between 1 and %d.", n)))
			continue
		}
		return v - 1, true, nil
	}
}

func (d *drill) feedback(o *session.Outcome) {
	var verdict string
	if o.Correct {
		verdict = theme.Correct.Render("Correct!")
	} else {
		verdict = theme.Incorrect.Render("Incorrect.") + " " + theme.Body.Render("Answer: "+o.CorrectChoice)
	}
	lipgloss.Fprintln(d.out, verdict)
	if o.Explanation != "" {
		lipgloss.Fprintln(d.out, theme.Hint.Render(o.Explanation))
	}
	lipgloss.Fprintln(d.out, theme.Subtitle.Render(fmt.Sprintf("Next review in %s (%s)",
		theme.Interval(o.IntervalDays), o.NextReviewAt.Local().Format("2006-01-02"))))
	fmt.Fprintln(d.out)
}

func printSummary(w io.Writer, outcomes []session.Outcome) {
	score := 0
	for _, o := range outcomes {
		if o.Correct {
			score++
		}
	}
	acc := 0.0
	if len(outcomes) > 0 {
		acc = float64(score) / float64(len(outcomes))
	}
	lipgloss.Fprintln(w, theme.Title.Render(fmt.Sprintf("Score: %d/%d", score, len(outcomes)))+
		"  "+theme.AccuracyBar(acc, 20)+" "+theme.Percent(acc))
}
