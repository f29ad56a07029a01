package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"deck-dash-service/internal/app"
	"deck-dash-service/internal/domain"
	"deck-dash-service/internal/scoring"
	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

// DeckRelay forwards new-deck requests to the content pipeline.
type DeckRelay interface {
	Configured() bool
	Forward(ctx context.Context, req domain.DeckRequest) error
}

// APIHandler serves the REST endpoints for clients that run the game loop themselves.
type APIHandler struct {
	decks      *app.DeckService
	relay      DeckRelay
	roundLimit int
	log        logrus.FieldLogger
}

func NewAPIHandler(decks *app.DeckService, relay DeckRelay, roundLimit int, log logrus.FieldLogger) *APIHandler {
	return &APIHandler{decks: decks, relay: relay, roundLimit: roundLimit, log: log}
}

type scoreResponse struct {
	Score         domain.ScoreBreakdown `json:"score"`
	Rating        domain.Rating         `json:"rating"`
	FormattedTime string                `json:"formattedTime"`
	Percentage    int                   `json:"percentage"`
}

type deckRequestResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	TopicID   string `json:"topic_id"`
	TopicName string `json:"topic_name"`
	Count     int    `json:"count"`
}

func (h *APIHandler) ListTopics(w http.ResponseWriter, r *http.Request) {
	topics, err := h.decks.Topics(r.Context())
	if err != nil {
		h.contentError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, topics)
}

func (h *APIHandler) BuildRound(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r.URL.Query().Get("limit"), h.roundLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	round, err := h.decks.Round(r.Context(), chi.URLParam(r, "topicID"), limit)
	if err != nil {
		h.contentError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, round)
}

func (h *APIHandler) Score(w http.ResponseWriter, r *http.Request) {
	var tally domain.Tally
	if err := json.NewDecoder(r.Body).Decode(&tally); err != nil {
		writeError(w, http.StatusBadRequest, "invalid score payload")
		return
	}
	if err := scoring.ValidateTally(tally); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, scoreResponse{
		Score:         scoring.Score(tally.CorrectCount, tally.TotalCards, tally.TimeTakenSeconds),
		Rating:        scoring.PerformanceRating(tally.CorrectCount, tally.TotalCards),
		FormattedTime: scoring.FormatTime(int(tally.TimeTakenSeconds)),
		Percentage:    scoring.Percentage(tally.CorrectCount, tally.TotalCards),
	})
}

func (h *APIHandler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	if err := h.decks.Invalidate(r.Context()); err != nil {
		h.log.WithError(err).Error("invalidate row cache")
		writeError(w, http.StatusInternalServerError, "failed to invalidate cache")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) RequestDeck(w http.ResponseWriter, r *http.Request) {
	var req domain.DeckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid deck request payload")
		return
	}
	req = req.Normalize()
	log := h.log.WithFields(logrus.Fields{"topic_id": req.TopicID, "topic_name": req.TopicName, "count": req.Count})

	if err := req.Validate(); err != nil {
		log.WithError(err).Info("deck request rejected")
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if h.relay == nil || !h.relay.Configured() {
		log.Error("deck request webhook not configured")
		writeError(w, http.StatusInternalServerError, "service not configured")
		return
	}
	if err := h.relay.Forward(r.Context(), req); err != nil {
		log.WithError(err).Error("forward deck request")
		writeError(w, http.StatusInternalServerError, "failed to process request")
		return
	}

	log.Info("deck request forwarded")
	writeJSON(w, http.StatusOK, deckRequestResponse{
		Success:   true,
		Message:   "Deck request submitted successfully",
		TopicID:   req.TopicID,
		TopicName: req.TopicName,
		Count:     req.Count,
	})
}

func (h *APIHandler) contentError(w http.ResponseWriter, err error) {
	h.log.WithError(err).Error("load deck content")
	if errors.Is(err, domain.ErrContentUnavailable) {
		writeError(w, http.StatusBadGateway, "failed to load deck content")
		return
	}
	writeError(w, http.StatusInternalServerError, "internal error")
}

func parseLimit(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return 0, errors.New("limit must be a positive integer")
	}
	return limit, nil
}
