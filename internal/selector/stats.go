package selector

import (
	"github.com/abhisek/fedrill/internal/catalog"
	"github.com/abhisek/fedrill/internal/store"
)

// CategoryStats counts answers within one category.
type CategoryStats struct {
	Category string
	Total    int
	Correct  int
}

// Accuracy returns Correct/Total, or 0 when nothing was answered.
func (s CategoryStats) Accuracy() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Total)
}

// Aggregate tallies history per category using each log's recorded
// category. Logs whose question no longer exists in cat, or that carry no
// category, are skipped.
func Aggregate(cat *catalog.Catalog, history []store.AttemptLog) map[string]CategoryStats {
	out := make(map[string]CategoryStats)
	for _, l := range history {
		if l.Category == "" {
			continue
		}
		if _, ok := cat.Lookup(l.QuestionID); !ok {
			continue
		}
		s := out[l.Category]
		s.Category = l.Category
		s.Total++
		if l.IsCorrect {
			s.Correct++
		}
		out[l.Category] = s
	}
	return out
}
