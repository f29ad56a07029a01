package deck

import (
	"math/rand"

	"deck-dash-service/internal/domain"
)

// WrongAnswersPerCard is how many distractors a full card carries.
const WrongAnswersPerCard = 3

// BuildRound assembles a round for topicID: the first limit matching records
// in source order, each with up to three wrong answers sampled from the other
// cards of the topic, then shuffled. A topic with no valid rows yields an
// empty round.
func BuildRound(rows [][]string, topicID string, limit int, rnd *rand.Rand) domain.Round {
	round := domain.Round{TopicID: topicID, Cards: []domain.Card{}}

	var inTopic []domain.Record
	for _, rec := range ParseRecords(rows) {
		if rec.TopicID == topicID {
			inTopic = append(inTopic, rec)
		}
	}
	if len(inTopic) == 0 || limit <= 0 {
		return round
	}

	selected := inTopic[:min(limit, len(inTopic))]
	cards := make([]domain.Card, 0, len(selected))
	for _, rec := range selected {
		cards = append(cards, domain.Card{
			ID:            rec.CardID,
			ImageURL:      rec.ImageURL,
			CorrectAnswer: rec.CorrectAnswer,
			WrongAnswers:  sampleWrongAnswers(inTopic, rec.CardID, rnd),
			Difficulty:    rec.Difficulty,
		})
	}

	shuffle(cards, rnd)
	round.Cards = cards
	return round
}

// sampleWrongAnswers draws without replacement from the correct answers of
// every other card in the topic. Duplicate answer texts are not collapsed.
func sampleWrongAnswers(inTopic []domain.Record, cardID string, rnd *rand.Rand) []string {
	pool := make([]string, 0, len(inTopic))
	for _, other := range inTopic {
		if other.CardID != cardID {
			pool = append(pool, other.CorrectAnswer)
		}
	}
	shuffle(pool, rnd)
	return pool[:min(WrongAnswersPerCard, len(pool))]
}

// ShuffleChoices returns the card's answers in a uniform random order.
func ShuffleChoices(card domain.Card, rnd *rand.Rand) []string {
	choices := make([]string, 0, len(card.WrongAnswers)+1)
	choices = append(choices, card.CorrectAnswer)
	choices = append(choices, card.WrongAnswers...)
	shuffle(choices, rnd)
	return choices
}

// shuffle is an in-place Fisher-Yates permutation.
func shuffle[T any](items []T, rnd *rand.Rand) {
	for i := len(items) - 1; i > 0; i-- {
		j := rnd.Intn(i + 1)
		items[i], items[j] = items[j], items[i]
	}
}
