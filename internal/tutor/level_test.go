package tutor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ashureev/adaptutor/internal/domain"
)

func TestNextLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		cur   domain.Level
		score int
		want  domain.Level
	}{
		{"beginner promotes above 30", domain.LevelBeginner, 31, domain.LevelIntermediate},
		{"beginner holds at 30", domain.LevelBeginner, 30, domain.LevelBeginner},
		{"beginner never skips to advanced", domain.LevelBeginner, 100, domain.LevelIntermediate},
		{"intermediate promotes above 60", domain.LevelIntermediate, 61, domain.LevelAdvanced},
		{"intermediate holds at 60", domain.LevelIntermediate, 60, domain.LevelIntermediate},
		{"intermediate demotes below 25", domain.LevelIntermediate, 24, domain.LevelBeginner},
		{"intermediate holds at 25", domain.LevelIntermediate, 25, domain.LevelIntermediate},
		{"intermediate holds in band", domain.LevelIntermediate, 40, domain.LevelIntermediate},
		{"advanced demotes below 55", domain.LevelAdvanced, 54, domain.LevelIntermediate},
		{"advanced holds at 55", domain.LevelAdvanced, 55, domain.LevelAdvanced},
		{"advanced never skips to beginner", domain.LevelAdvanced, 0, domain.LevelIntermediate},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, NextLevel(tt.cur, tt.score))
		})
	}
}

// Hysteresis: a score wobbling across 55..60 must not flap the tier once
// advanced is reached.
func TestNextLevelHysteresisBand(t *testing.T) {
	t.Parallel()

	level := domain.LevelAdvanced
	for _, score := range []int{58, 56, 59, 57, 60, 55} {
		level = NextLevel(level, score)
		assert.Equal(t, domain.LevelAdvanced, level, "score %d", score)
	}
}
