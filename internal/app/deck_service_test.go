package app_test

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"deck-dash-service/internal/app"
	"deck-dash-service/internal/domain"
	"deck-dash-service/internal/infra/memory"
)

func TestDeckServiceTopics(t *testing.T) {
	service := newTestDeckService(sampleRows())

	topics, err := service.Topics(context.Background())
	if err != nil {
		t.Fatalf("topics: %v", err)
	}
	if len(topics) != 2 {
		t.Fatalf("expected 2 topics, got %+v", topics)
	}
	if topics[0].ID != "art" || topics[0].CardCount != 5 {
		t.Fatalf("unexpected first topic %+v", topics[0])
	}
}

func TestDeckServiceRound(t *testing.T) {
	service := newTestDeckService(sampleRows())

	round, err := service.Round(context.Background(), "art", 3)
	if err != nil {
		t.Fatalf("round: %v", err)
	}
	if round.TopicID != "art" || len(round.Cards) != 3 {
		t.Fatalf("unexpected round %+v", round)
	}

	empty, err := service.Round(context.Background(), "missing", 30)
	if err != nil {
		t.Fatalf("round for missing topic: %v", err)
	}
	if len(empty.Cards) != 0 {
		t.Fatalf("expected empty round, got %d cards", len(empty.Cards))
	}
}

func TestDeckServiceWrapsLoadFailure(t *testing.T) {
	boom := errors.New("sheet offline")
	service := app.NewDeckService(memory.NewRowRepository(failingLoader{err: boom}, time.Hour))

	_, err := service.Topics(context.Background())
	if !errors.Is(err, domain.ErrContentUnavailable) || !errors.Is(err, boom) {
		t.Fatalf("expected wrapped content error, got %v", err)
	}
}

type failingLoader struct{ err error }

func (l failingLoader) LoadRows(context.Context) ([][]string, error) { return nil, l.err }

func newTestDeckService(rows [][]string) *app.DeckService {
	repo := memory.NewRowRepository(memory.NewStaticRowLoader(rows), time.Hour)
	seed := int64(0)
	return app.NewDeckServiceWithRand(repo, func() *rand.Rand {
		seed++
		return rand.New(rand.NewSource(seed))
	})
}

func sampleRows() [][]string {
	return [][]string{
		{"topic_id", "topic_name", "card_id", "image_url", "correct_answer"},
		{"art", "Art", "a1", "https://img/a1.jpg", "Mona Lisa"},
		{"art", "Art", "a2", "https://img/a2.jpg", "Starry Night"},
		{"art", "Art", "a3", "https://img/a3.jpg", "The Scream"},
		{"art", "Art", "a4", "https://img/a4.jpg", "Guernica"},
		{"art", "Art", "a5", "https://img/a5.jpg", "The Kiss"},
		{"birds", "Birds", "b1", "https://img/b1.jpg", "Robin"},
	}
}
