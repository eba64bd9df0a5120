package selector

import (
	"strings"

	"github.com/abhisek/fedrill/internal/quizerr"
)

// Mode chooses how questions are drawn from the catalog.
type Mode string

const (
	// ModeRandom draws a uniform sample without replacement.
	ModeRandom Mode = "random"
	// ModeAdaptive biases the draw toward weak categories.
	ModeAdaptive Mode = "adaptive"
)

// Modes lists the supported modes.
var Modes = []Mode{ModeRandom, ModeAdaptive}

// Valid reports whether m is a supported mode.
func (m Mode) Valid() bool {
	return m == ModeRandom || m == ModeAdaptive
}

func (m Mode) String() string { return string(m) }

// ParseMode converts a case-insensitive name into a Mode.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", quizerr.Invalid("mode", s, "must be random or adaptive")
	}
	return m, nil
}
