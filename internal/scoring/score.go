package scoring

import (
	"fmt"
	"math"

	"deck-dash-service/internal/domain"
)

// Weights of the additive par-time model.
const (
	PointsPerCorrect     = 100
	ParSecondsPerCard    = 8
	BonusPerSecondSaved  = 10
	PenaltyPerSecondOver = 5
)

// Score computes the additive par-time score for a finished round.
// Inputs outside the contract are clamped; use ValidateTally to reject them instead.
func Score(correctCount, totalCards int, timeTakenSeconds float64) domain.ScoreBreakdown {
	if totalCards <= 0 {
		return domain.ScoreBreakdown{}
	}
	correctCount = max(0, min(correctCount, totalCards))
	if timeTakenSeconds < 0 || math.IsNaN(timeTakenSeconds) {
		timeTakenSeconds = 0
	}
	if correctCount == 0 {
		return domain.ScoreBreakdown{}
	}

	base := correctCount * PointsPerCorrect
	target := float64(totalCards * ParSecondsPerCard)
	diff := target - timeTakenSeconds

	var adjust int
	if diff > 0 {
		adjust = int(math.Round(diff * BonusPerSecondSaved))
	} else {
		penalty := math.Round(math.Abs(diff) * PenaltyPerSecondOver)
		adjust = -int(math.Min(penalty, float64(base)))
	}

	return domain.ScoreBreakdown{
		BasePoints:         base,
		TimeBonus:          adjust,
		TotalScore:         max(0, base+adjust),
		AverageTimePerCard: math.Round(timeTakenSeconds/float64(totalCards)*10) / 10,
	}
}

// ValidateTally reports whether t is inside the scorer's input contract.
func ValidateTally(t domain.Tally) error {
	switch {
	case t.TotalCards <= 0:
		return fmt.Errorf("%w: totalCards must be positive", domain.ErrInvalidTally)
	case t.CorrectCount < 0 || t.CorrectCount > t.TotalCards:
		return fmt.Errorf("%w: correctCount must be between 0 and totalCards", domain.ErrInvalidTally)
	case t.TimeTakenSeconds < 0 || math.IsNaN(t.TimeTakenSeconds) || math.IsInf(t.TimeTakenSeconds, 0):
		return fmt.Errorf("%w: timeTaken must be a non-negative number", domain.ErrInvalidTally)
	}
	return nil
}

// FormatTime renders whole seconds as "45s", "2m" or "1m 30s".
func FormatTime(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	minutes, rest := seconds/60, seconds%60
	if rest == 0 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dm %ds", minutes, rest)
}
