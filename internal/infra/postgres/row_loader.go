package postgres

import (
	"context"
	"fmt"

	"deck-dash-service/internal/deck"
	"github.com/jackc/pgx/v4/pgxpool"
)

const selectRowsSQL = `SELECT topic_id, topic_name, card_id, image_url, correct_answer,
	wrong_answer_1, wrong_answer_2, wrong_answer_3, difficulty, created_at
FROM deck_cards ORDER BY position`

// RowLoader loads imported deck rows from Postgres in sheet layout (header first).
type RowLoader struct {
	pool *pgxpool.Pool
}

func NewRowLoader(pool *pgxpool.Pool) *RowLoader {
	return &RowLoader{pool: pool}
}

func (l *RowLoader) LoadRows(ctx context.Context) ([][]string, error) {
	rs, err := l.pool.Query(ctx, selectRowsSQL)
	if err != nil {
		return nil, fmt.Errorf("load deck rows: %w", err)
	}
	defer rs.Close()

	rows := [][]string{append([]string(nil), deck.Header...)}
	for rs.Next() {
		row := make([]string, len(deck.Header))
		dest := make([]interface{}, len(row))
		for i := range row {
			dest[i] = &row[i]
		}
		if err := rs.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan deck row: %w", err)
		}
		rows = append(rows, row)
	}
	if err := rs.Err(); err != nil {
		return nil, fmt.Errorf("iterate deck rows: %w", err)
	}
	return rows, nil
}
