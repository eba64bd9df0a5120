package catalog

import (
	"fmt"
	"math/rand/v2"

	"github.com/go-playground/validator/v10"

	"github.com/abhisek/fedrill/internal/quizerr"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Question is a single multiple-choice item from the static bank.
type Question struct {
	ID          string   `json:"id" validate:"required"`
	Category    string   `json:"category" validate:"required"`
	Prompt      string   `json:"prompt" validate:"required"`
	Choices     []string `json:"choices" validate:"min=2,dive,required"`
	AnswerIndex int      `json:"answer_index" validate:"gte=0"`
	Explanation string   `json:"explanation,omitempty"`
}

// Validate checks field constraints and that AnswerIndex points at a choice.
func (q Question) Validate() error {
	if err := validate.Struct(q); err != nil {
		return quizerr.Invalid("question", q.ID, err.Error())
	}
	if q.AnswerIndex >= len(q.Choices) {
		return quizerr.Invalid("answer_index", q.AnswerIndex,
			fmt.Sprintf("out of range for %d choices in question %q", len(q.Choices), q.ID))
	}
	return nil
}

// CorrectChoice returns the text of the correct answer.
func (q Question) CorrectChoice() string {
	return q.Choices[q.AnswerIndex]
}

// IsCorrect reports whether choice is the answer index.
func (q Question) IsCorrect(choice int) bool {
	return choice == q.AnswerIndex
}

// Choice is an answer option tagged with its position in the catalog
// question, so shuffled presentations grade against the original order.
type Choice struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// ShuffleChoices returns q's choices in a random order. q is not modified.
func ShuffleChoices(q Question, rng *rand.Rand) []Choice {
	out := make([]Choice, len(q.Choices))
	for i, c := range q.Choices {
		out[i] = Choice{Index: i, Text: c}
	}
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}
