package app

import (
	"context"
	"time"

	"deck-dash-service/internal/domain"
	"github.com/google/uuid"
)

// SessionRepository abstracts how play sessions are stored (in-memory, Redis, etc).
type SessionRepository interface {
	Put(session *Session)
	Get(sessionID string) (*Session, bool)
	Delete(sessionID string)
}

// PlayService drives rounds that are played through the service.
type PlayService struct {
	decks    *DeckService
	sessions SessionRepository
	now      func() time.Time
	newID    func() string
}

func NewPlayService(decks *DeckService, sessions SessionRepository) *PlayService {
	return &PlayService{
		decks:    decks,
		sessions: sessions,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// NewPlayServiceWithClock is test-only for deterministic elapsed times.
func NewPlayServiceWithClock(decks *DeckService, sessions SessionRepository, now func() time.Time) *PlayService {
	svc := NewPlayService(decks, sessions)
	svc.now = now
	return svc
}

// Start builds a round for topicID and registers a session for it.
func (s *PlayService) Start(ctx context.Context, topicID string, limit int) (*Session, error) {
	round, err := s.decks.Round(ctx, topicID, limit)
	if err != nil {
		return nil, err
	}
	if len(round.Cards) == 0 {
		return nil, domain.ErrEmptyRound
	}
	session := newSessionWithClock(s.newID(), round, s.now)
	s.sessions.Put(session)
	return session, nil
}

// Current returns the card to show next.
func (s *PlayService) Current(_ context.Context, sessionID string) (domain.Card, int, bool, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.Card{}, 0, false, domain.ErrSessionNotFound
	}
	card, index, ok := session.Current()
	return card, index, ok, nil
}

// Answer records a submission for the session's current card.
func (s *PlayService) Answer(_ context.Context, sessionID string, submission domain.AnswerSubmission) (domain.AnswerResult, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.AnswerResult{}, domain.ErrSessionNotFound
	}
	return session.Answer(submission)
}

// Result returns the finished round's summary; ok is false while cards remain.
func (s *PlayService) Result(_ context.Context, sessionID string) (domain.RoundResult, bool, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.RoundResult{}, false, domain.ErrSessionNotFound
	}
	res, done := session.Result()
	return res, done, nil
}

// End discards the session.
func (s *PlayService) End(_ context.Context, sessionID string) {
	s.sessions.Delete(sessionID)
}
