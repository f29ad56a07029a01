package app

import (
	"sync"
	"time"

	"deck-dash-service/internal/domain"
	"deck-dash-service/internal/scoring"
)

// Session is one player's in-progress round.
type Session struct {
	id        string
	topicID   string
	cards     []domain.Card
	startedAt time.Time
	now       func() time.Time

	mu      sync.Mutex
	cursor  int
	correct []domain.Card
	wrong   []domain.Card
	result  *domain.RoundResult
}

// newSessionWithClock starts the round clock at now().
func newSessionWithClock(id string, round domain.Round, now func() time.Time) *Session {
	return &Session{
		id:        id,
		topicID:   round.TopicID,
		cards:     round.Cards,
		startedAt: now(),
		now:       now,
	}
}

// NewSessionWithClock is exported for infrastructure tests that need to seed sessions.
func NewSessionWithClock(id string, round domain.Round, now func() time.Time) *Session {
	return newSessionWithClock(id, round, now)
}

func (s *Session) ID() string      { return s.id }
func (s *Session) TopicID() string { return s.topicID }
func (s *Session) Total() int      { return len(s.cards) }

// Current returns the card being shown and its index, or false once finished.
func (s *Session) Current() (domain.Card, int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cursor >= len(s.cards) {
		return domain.Card{}, s.cursor, false
	}
	return s.cards[s.cursor], s.cursor, true
}

// Answer records the player's pick for the current card and advances.
// The round result is computed when the last card is answered.
func (s *Session) Answer(submission domain.AnswerSubmission) (domain.AnswerResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cursor >= len(s.cards) {
		return domain.AnswerResult{}, domain.ErrRoundFinished
	}
	card := s.cards[s.cursor]
	if card.ID != submission.CardID {
		return domain.AnswerResult{}, domain.ErrCardNotCurrent
	}

	correct := submission.Answer == card.CorrectAnswer
	if correct {
		s.correct = append(s.correct, card)
	} else {
		s.wrong = append(s.wrong, card)
	}
	s.cursor++

	finished := s.cursor >= len(s.cards)
	if finished {
		elapsed := int(s.now().Sub(s.startedAt) / time.Second)
		result := scoring.Result(s.topicID, s.correct, s.wrong, elapsed)
		s.result = &result
	}

	return domain.AnswerResult{
		CardID:        card.ID,
		Correct:       correct,
		CorrectAnswer: card.CorrectAnswer,
		CorrectCount:  len(s.correct),
		WrongCount:    len(s.wrong),
		Finished:      finished,
	}, nil
}

// Result returns the final summary once every card was answered.
func (s *Session) Result() (domain.RoundResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return domain.RoundResult{}, false
	}
	return *s.result, true
}
