package scoring

import (
	"math"

	"deck-dash-service/internal/domain"
)

type tier struct {
	minPercent int
	rating     domain.Rating
}

// tiers are checked top-down; thresholds are inclusive.
var tiers = []tier{
	{100, domain.Rating{Label: "Perfect!", Emoji: "🏆", Color: "text-yellow-500"}},
	{90, domain.Rating{Label: "Excellent!", Emoji: "⭐", Color: "text-green-500"}},
	{75, domain.Rating{Label: "Great!", Emoji: "👍", Color: "text-blue-500"}},
	{60, domain.Rating{Label: "Good!", Emoji: "👌", Color: "text-purple-500"}},
	{40, domain.Rating{Label: "Keep Trying!", Emoji: "💪", Color: "text-orange-500"}},
	{0, domain.Rating{Label: "Practice More!", Emoji: "📚", Color: "text-red-500"}},
}

// PerformanceRating maps the percentage of correct cards to a display tier.
func PerformanceRating(correctCount, totalCards int) domain.Rating {
	if totalCards <= 0 {
		return tiers[len(tiers)-1].rating
	}
	for _, t := range tiers {
		if correctCount*100 >= t.minPercent*totalCards {
			return t.rating
		}
	}
	return tiers[len(tiers)-1].rating
}

// Result assembles the summary of a finished round.
func Result(topicID string, correct, wrong []domain.Card, seconds int) domain.RoundResult {
	total := len(correct) + len(wrong)
	tally := domain.Tally{
		CorrectCount:     len(correct),
		TotalCards:       total,
		TimeTakenSeconds: float64(seconds),
	}
	return domain.RoundResult{
		TopicID:       topicID,
		Tally:         tally,
		WrongCount:    len(wrong),
		Percentage:    Percentage(len(correct), total),
		Score:         Score(tally.CorrectCount, tally.TotalCards, tally.TimeTakenSeconds),
		Rating:        PerformanceRating(tally.CorrectCount, tally.TotalCards),
		FormattedTime: FormatTime(seconds),
		CorrectCards:  correct,
		WrongCards:    wrong,
	}
}

// Percentage is the share of correct cards, rounded to the nearest whole percent.
func Percentage(correctCount, totalCards int) int {
	if totalCards <= 0 {
		return 0
	}
	return int(math.Round(float64(correctCount) / float64(totalCards) * 100))
}
