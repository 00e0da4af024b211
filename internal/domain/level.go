package domain

import "fmt"

// Level is the difficulty tier controlling the tutoring prompt style.
type Level string

const (
	// LevelBeginner is the initial tier for every new session.
	LevelBeginner Level = "beginner"
	// LevelIntermediate is the middle tier.
	LevelIntermediate Level = "intermediate"
	// LevelAdvanced is the highest tier.
	LevelAdvanced Level = "advanced"
)

// Valid reports whether l is one of the three known tiers.
func (l Level) Valid() bool {
	switch l {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return true
	}
	return false
}

// ParseLevel converts a wire string into a Level.
func ParseLevel(s string) (Level, error) {
	l := Level(s)
	if !l.Valid() {
		return "", fmt.Errorf("invalid difficulty level %q", s)
	}
	return l, nil
}
