package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"deck-dash-service/internal/deck"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// DeckCard is one stored content row. Position preserves sheet order.
type DeckCard struct {
	bun.BaseModel `bun:"table:deck_cards"`

	Position      int64  `bun:"position,pk,autoincrement"`
	TopicID       string `bun:"topic_id,notnull"`
	TopicName     string `bun:"topic_name,notnull"`
	CardID        string `bun:"card_id,notnull"`
	ImageURL      string `bun:"image_url,notnull"`
	CorrectAnswer string `bun:"correct_answer,notnull"`
	WrongAnswer1  string `bun:"wrong_answer_1,notnull"`
	WrongAnswer2  string `bun:"wrong_answer_2,notnull"`
	WrongAnswer3  string `bun:"wrong_answer_3,notnull"`
	Difficulty    string `bun:"difficulty,notnull"`
	CreatedAt     string `bun:"created_at,notnull"`
}

// ImportResult summarizes an import run.
type ImportResult struct {
	Imported int
	Skipped  int
	Topics   []string
}

// Importer writes sheet rows into deck_cards.
type Importer struct {
	db *bun.DB
}

func NewImporter(db *bun.DB) *Importer {
	return &Importer{db: db}
}

// OpenBun opens a bun handle on the Postgres DSN.
func OpenBun(dsn string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}

// Import stores every valid data row (the first row is the header). With
// replace, existing cards of the imported topics are deleted in the same
// transaction.
func (i *Importer) Import(ctx context.Context, rows [][]string, replace bool) (ImportResult, error) {
	cards, result := ToDeckCards(rows)
	if len(cards) == 0 {
		return result, nil
	}

	err := i.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if replace {
			if _, err := tx.NewDelete().
				Model((*DeckCard)(nil)).
				Where("topic_id IN (?)", bun.In(result.Topics)).
				Exec(ctx); err != nil {
				return fmt.Errorf("delete existing cards: %w", err)
			}
		}
		if _, err := tx.NewInsert().Model(&cards).Exec(ctx); err != nil {
			return fmt.Errorf("insert cards: %w", err)
		}
		return nil
	})
	if err != nil {
		return ImportResult{}, err
	}
	result.Imported = len(cards)
	return result, nil
}

// ToDeckCards converts data rows into models, skipping rows the round builder would drop.
func ToDeckCards(rows [][]string) ([]DeckCard, ImportResult) {
	var result ImportResult
	if len(rows) <= 1 {
		return nil, result
	}

	seen := make(map[string]bool)
	cards := make([]DeckCard, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec, ok := deck.ParseRecord(row)
		if !ok {
			result.Skipped++
			continue
		}
		if !seen[rec.TopicID] {
			seen[rec.TopicID] = true
			result.Topics = append(result.Topics, rec.TopicID)
		}
		cards = append(cards, DeckCard{
			TopicID:       rec.TopicID,
			TopicName:     rec.TopicName,
			CardID:        rec.CardID,
			ImageURL:      rec.ImageURL,
			CorrectAnswer: rec.CorrectAnswer,
			WrongAnswer1:  cell(row, 5),
			WrongAnswer2:  cell(row, 6),
			WrongAnswer3:  cell(row, 7),
			Difficulty:    string(rec.Difficulty),
			CreatedAt:     cell(row, 9),
		})
	}
	return cards, result
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
