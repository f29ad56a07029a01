package deck

import (
	"strings"
	"time"

	"deck-dash-service/internal/domain"
)

// Column positions of the published sheet.
const (
	colTopicID = iota
	colTopicName
	colCardID
	colImageURL
	colCorrectAnswer
	colWrongAnswer1
	colWrongAnswer2
	colWrongAnswer3
	colDifficulty
	colCreatedAt
)

const minFields = colCorrectAnswer + 1

// Header is the column layout expected by ParseRecord.
var Header = []string{
	"topic_id", "topic_name", "card_id", "image_url", "correct_answer",
	"wrong_answer_1", "wrong_answer_2", "wrong_answer_3", "difficulty", "created_at",
}

var createdAtLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"}

// ParseRecord validates one data row. Rows with fewer than five fields or a
// missing/placeholder image are rejected.
func ParseRecord(row []string) (domain.Record, bool) {
	if len(row) < minFields {
		return domain.Record{}, false
	}
	image := strings.TrimSpace(row[colImageURL])
	if image == "" || image == "null" || image == "undefined" {
		return domain.Record{}, false
	}

	rec := domain.Record{
		TopicID:       row[colTopicID],
		TopicName:     row[colTopicName],
		CardID:        row[colCardID],
		ImageURL:      image,
		CorrectAnswer: row[colCorrectAnswer],
		Difficulty:    domain.ParseDifficulty(field(row, colDifficulty)),
		CreatedAt:     parseCreatedAt(field(row, colCreatedAt)),
	}
	for _, col := range []int{colWrongAnswer1, colWrongAnswer2, colWrongAnswer3} {
		if w := field(row, col); w != "" {
			rec.WrongAnswers = append(rec.WrongAnswers, w)
		}
	}
	return rec, true
}

// ParseRecords skips the header row and drops invalid rows.
func ParseRecords(rows [][]string) []domain.Record {
	if len(rows) <= 1 {
		return nil
	}
	records := make([]domain.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if rec, ok := ParseRecord(row); ok {
			records = append(records, rec)
		}
	}
	return records
}

func field(row []string, col int) string {
	if col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

func parseCreatedAt(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range createdAtLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}
