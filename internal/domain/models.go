package domain

import (
	"strings"
	"time"
)

// Difficulty tags a card; unknown values are normalized to DifficultyMedium.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty is case-insensitive and falls back to medium.
func ParseDifficulty(raw string) Difficulty {
	switch Difficulty(strings.ToLower(strings.TrimSpace(raw))) {
	case DifficultyEasy:
		return DifficultyEasy
	case DifficultyHard:
		return DifficultyHard
	default:
		return DifficultyMedium
	}
}

// Record is one validated content row.
type Record struct {
	TopicID       string
	TopicName     string
	CardID        string
	ImageURL      string
	CorrectAnswer string
	WrongAnswers  []string // pre-authored, optional
	Difficulty    Difficulty
	CreatedAt     time.Time // zero when unknown
}

// Topic is a deck summary snapshot taken when the rows were loaded.
type Topic struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	CardCount    int    `json:"cardCount"`
	PreviewImage string `json:"previewImage,omitempty"`
}

// Card is a playable flashcard. Choice order is decided when the card is shown.
type Card struct {
	ID            string     `json:"id"`
	ImageURL      string     `json:"imageUrl"`
	CorrectAnswer string     `json:"correctAnswer"`
	WrongAnswers  []string   `json:"wrongAnswers"`
	Difficulty    Difficulty `json:"difficulty"`
}

// Round is the ordered card sequence for one game.
type Round struct {
	TopicID string `json:"topicId"`
	Cards   []Card `json:"cards"`
}

// Tally is the final outcome of a round, as reported to the scorer.
type Tally struct {
	CorrectCount     int     `json:"correctCount"`
	TotalCards       int     `json:"totalCards"`
	TimeTakenSeconds float64 `json:"timeTaken"`
}

// ScoreBreakdown is computed once per finished round.
type ScoreBreakdown struct {
	BasePoints         int     `json:"basePoints"`
	TimeBonus          int     `json:"timeBonus"` // negative values are penalties
	TotalScore         int     `json:"totalScore"`
	AverageTimePerCard float64 `json:"averageTimePerCard"`
}

// Rating is a display tier for the percentage of correct answers.
type Rating struct {
	Label string `json:"rating"`
	Emoji string `json:"emoji"`
	Color string `json:"color"`
}

// RoundResult is the immutable summary attached to a finished round.
type RoundResult struct {
	TopicID       string         `json:"topicId"`
	Tally         Tally          `json:"tally"`
	WrongCount    int            `json:"wrongCount"`
	Percentage    int            `json:"percentage"`
	Score         ScoreBreakdown `json:"score"`
	Rating        Rating         `json:"rating"`
	FormattedTime string         `json:"formattedTime"`
	CorrectCards  []Card         `json:"correctCards"`
	WrongCards    []Card         `json:"wrongCards"`
}

// AnswerSubmission is a player's pick for the card currently shown.
type AnswerSubmission struct {
	CardID string `json:"cardId"`
	Answer string `json:"answer"`
}

// AnswerResult summarizes the outcome of a submission.
type AnswerResult struct {
	CardID        string `json:"cardId"`
	Correct       bool   `json:"correct"`
	CorrectAnswer string `json:"correctAnswer"`
	CorrectCount  int    `json:"correctCount"`
	WrongCount    int    `json:"wrongCount"`
	Finished      bool   `json:"finished"`
}
