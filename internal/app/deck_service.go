package app

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"deck-dash-service/internal/deck"
	"deck-dash-service/internal/domain"
)

// RowRepository supplies the current snapshot of raw content rows (cache or backing store).
type RowRepository interface {
	Rows(ctx context.Context) ([][]string, error)
	Invalidate(ctx context.Context) error
}

// DeckService exposes topic listing and round building over a row snapshot.
type DeckService struct {
	rows    RowRepository
	newRand func() *rand.Rand
}

func NewDeckService(rows RowRepository) *DeckService {
	return NewDeckServiceWithRand(rows, func() *rand.Rand {
		return rand.New(rand.NewSource(time.Now().UnixNano()))
	})
}

// NewDeckServiceWithRand is used by tests to make rounds reproducible.
func NewDeckServiceWithRand(rows RowRepository, newRand func() *rand.Rand) *DeckService {
	return &DeckService{rows: rows, newRand: newRand}
}

// Topics lists the decks found in the current rows.
func (s *DeckService) Topics(ctx context.Context) ([]domain.Topic, error) {
	rows, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	topics := deck.ListTopics(rows)
	if topics == nil {
		topics = []domain.Topic{}
	}
	return topics, nil
}

// Round builds a fresh shuffled round. Unknown topics produce an empty round.
func (s *DeckService) Round(ctx context.Context, topicID string, limit int) (domain.Round, error) {
	rows, err := s.load(ctx)
	if err != nil {
		return domain.Round{}, err
	}
	return deck.BuildRound(rows, topicID, limit, s.newRand()), nil
}

// Invalidate forces the next call to refetch rows.
func (s *DeckService) Invalidate(ctx context.Context) error {
	return s.rows.Invalidate(ctx)
}

func (s *DeckService) load(ctx context.Context) ([][]string, error) {
	rows, err := s.rows.Rows(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrContentUnavailable, err)
	}
	return rows, nil
}
