// Package selector picks quiz questions, optionally biased toward the
// categories a learner answers worst.
//
// Accuracy is grouped by the category stored on each attempt log at
// answer time, not the question's current catalog category, so moving a
// question to another category leaves its past attempts where they were.
package selector

import (
	"cmp"
	"math/rand/v2"
	"slices"
	"sync"

	"github.com/abhisek/fedrill/internal/catalog"
	"github.com/abhisek/fedrill/internal/quizerr"
	"github.com/abhisek/fedrill/internal/store"
)

const (
	// BaseWeight is the weight every question starts from.
	BaseWeight = 10.0
	// WeaknessWeight scales (1 - accuracy) for categories with history.
	WeaknessWeight = 50.0
	// JitterRange bounds the uniform noise added to every weight.
	JitterRange = 20.0
)

// Ranked is one question's score in an adaptive draw.
type Ranked struct {
	Question catalog.Question
	// Stats is nil when the learner has no history in the category.
	Stats  *CategoryStats
	Weight float64
	Jitter float64
	Score  float64
}

// Selector draws questions. It is safe for concurrent use.
type Selector struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New returns a Selector drawing from src. Pass a seeded source for
// reproducible draws.
func New(src rand.Source) *Selector {
	return &Selector{rng: rand.New(src)}
}

// NewDefault returns a Selector seeded from the runtime's random generator.
func NewDefault() *Selector {
	return New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// Select returns min(n, cat.Len()) distinct questions.
func (s *Selector) Select(cat *catalog.Catalog, history []store.AttemptLog, n int, mode Mode) ([]catalog.Question, error) {
	if n <= 0 {
		return nil, quizerr.Invalid("n", n, "must be positive")
	}
	if !mode.Valid() {
		return nil, quizerr.Invalid("mode", string(mode), "must be random or adaptive")
	}
	if cat.Len() == 0 {
		return []catalog.Question{}, nil
	}

	if mode == ModeRandom || len(history) == 0 {
		return s.sample(cat, n), nil
	}

	ranked := s.Rank(cat, history)
	out := make([]catalog.Question, 0, min(n, len(ranked)))
	for _, r := range ranked[:min(n, len(ranked))] {
		out = append(out, r.Question)
	}
	return out, nil
}

// Rank scores every catalog question against history and returns them
// highest score first. Jitter is drawn fresh on every call.
func (s *Selector) Rank(cat *catalog.Catalog, history []store.AttemptLog) []Ranked {
	stats := Aggregate(cat, history)
	questions := cat.All()

	ranked := make([]Ranked, len(questions))
	s.mu.Lock()
	for i, q := range questions {
		r := Ranked{Question: q, Weight: BaseWeight}
		if st, ok := stats[q.Category]; ok {
			r.Stats = &st
			r.Weight += (1 - st.Accuracy()) * WeaknessWeight
		}
		r.Jitter = s.rng.Float64() * JitterRange
		r.Score = r.Weight + r.Jitter
		ranked[i] = r
	}
	s.mu.Unlock()

	slices.SortStableFunc(ranked, func(a, b Ranked) int {
		return cmp.Compare(b.Score, a.Score)
	})
	return ranked
}

// Shuffle returns q's choices in a random order.
func (s *Selector) Shuffle(q catalog.Question) []catalog.Choice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return catalog.ShuffleChoices(q, s.rng)
}

func (s *Selector) sample(cat *catalog.Catalog, n int) []catalog.Question {
	questions := cat.All()
	s.mu.Lock()
	s.rng.Shuffle(len(questions), func(i, j int) {
		questions[i], questions[j] = questions[j], questions[i]
	})
	s.mu.Unlock()
	return questions[:min(n, len(questions))]
}
