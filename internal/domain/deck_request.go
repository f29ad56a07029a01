package domain

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	MinDeckRequestCount     = 10
	MaxDeckRequestCount     = 50
	DefaultDeckRequestCount = 30
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// DeckRequest asks the content pipeline to generate a new deck.
type DeckRequest struct {
	TopicID   string `json:"topic_id"`
	TopicName string `json:"topic_name"`
	Count     int    `json:"count"`
}

// Normalize derives a topic id from the name when missing and defaults the count.
func (r DeckRequest) Normalize() DeckRequest {
	r.TopicName = strings.TrimSpace(r.TopicName)
	r.TopicID = strings.TrimSpace(r.TopicID)
	if r.TopicID == "" && r.TopicName != "" {
		r.TopicID = whitespaceRun.ReplaceAllString(strings.ToLower(r.TopicName), "_")
	}
	if r.Count == 0 {
		r.Count = DefaultDeckRequestCount
	}
	return r
}

// Validate checks required fields and the card count range.
func (r DeckRequest) Validate() error {
	if r.TopicID == "" || r.TopicName == "" {
		return fmt.Errorf("%w: missing required fields", ErrInvalidDeckRequest)
	}
	if r.Count < MinDeckRequestCount || r.Count > MaxDeckRequestCount {
		return fmt.Errorf("%w: card count must be between %d and %d", ErrInvalidDeckRequest, MinDeckRequestCount, MaxDeckRequestCount)
	}
	return nil
}
