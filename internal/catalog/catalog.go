// Package catalog holds the immutable question bank the scheduler draws from.
package catalog

import (
	"fmt"

	"github.com/abhisek/fedrill/internal/quizerr"
)

// Catalog is an ordered, id-indexed question bank. It is immutable after
// construction and safe for concurrent reads.
type Catalog struct {
	questions  []Question
	byID       map[string]int
	categories []string
}

// New validates questions and builds a Catalog preserving their order.
func New(questions []Question) (*Catalog, error) {
	c := &Catalog{
		questions: make([]Question, 0, len(questions)),
		byID:      make(map[string]int, len(questions)),
	}
	seenCat := make(map[string]bool)
	for _, q := range questions {
		if err := q.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.byID[q.ID]; dup {
			return nil, quizerr.Invalid("id", q.ID, "is duplicated")
		}
		q.Choices = append([]string(nil), q.Choices...)
		c.byID[q.ID] = len(c.questions)
		c.questions = append(c.questions, q)
		if !seenCat[q.Category] {
			seenCat[q.Category] = true
			c.categories = append(c.categories, q.Category)
		}
	}
	return c, nil
}

// MustNew is like New but panics on error. For tests and embedded data.
func MustNew(questions []Question) *Catalog {
	c, err := New(questions)
	if err != nil {
		panic(fmt.Sprintf("catalog: %v", err))
	}
	return c
}

// Len returns the number of questions.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.questions)
}

// All returns the questions in catalog order. The slice is a copy.
func (c *Catalog) All() []Question {
	if c == nil {
		return nil
	}
	out := make([]Question, len(c.questions))
	copy(out, c.questions)
	return out
}

// Lookup finds a question by id.
func (c *Catalog) Lookup(id string) (Question, bool) {
	if c == nil {
		return Question{}, false
	}
	i, ok := c.byID[id]
	if !ok {
		return Question{}, false
	}
	return c.questions[i], true
}

// Categories returns the distinct categories in first-seen order.
func (c *Catalog) Categories() []string {
	if c == nil {
		return nil
	}
	return append([]string(nil), c.categories...)
}

// ByCategory returns the questions of one category in catalog order.
func (c *Catalog) ByCategory(category string) []Question {
	var out []Question
	for _, q := range c.questions {
		if q.Category == category {
			out = append(out, q)
		}
	}
	return out
}
