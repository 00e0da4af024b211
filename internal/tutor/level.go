package tutor

import "github.com/ashureev/adaptutor/internal/domain"

// Hysteresis thresholds: the band between demotion and promotion cutoffs
// keeps a score oscillating near a boundary from flapping the tier.
const (
	advancePromoteAbove = 60
	intermediateAbove   = 30
	advanceDemoteBelow  = 55
	beginnerBelow       = 25
)

// NextLevel applies at most one tier transition against the new score.
// Tier change is always single-step: the score has to pass back through the
// intermediate band before the opposite extreme is reachable.
func NextLevel(cur domain.Level, score int) domain.Level {
	switch {
	case cur == domain.LevelIntermediate && score > advancePromoteAbove:
		return domain.LevelAdvanced
	case cur == domain.LevelBeginner && score > intermediateAbove:
		return domain.LevelIntermediate
	case cur == domain.LevelAdvanced && score < advanceDemoteBelow:
		return domain.LevelIntermediate
	case cur == domain.LevelIntermediate && score < beginnerBelow:
		return domain.LevelBeginner
	}
	return cur
}
