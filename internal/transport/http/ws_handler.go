package http

import (
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"deck-dash-service/internal/app"
	"deck-dash-service/internal/deck"
	"deck-dash-service/internal/domain"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

type WSHandler struct {
	play       *app.PlayService
	roundLimit int
	log        logrus.FieldLogger
	upgrader   websocket.Upgrader

	mu   sync.Mutex
	seed *rand.Rand
}

func NewWSHandler(play *app.PlayService, roundLimit int, log logrus.FieldLogger) *WSHandler {
	return &WSHandler{
		play:       play,
		roundLimit: roundLimit,
		log:        log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		seed: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type startedPayload struct {
	SessionID  string `json:"sessionId"`
	TopicID    string `json:"topicId"`
	TotalCards int    `json:"totalCards"`
}

type cardPayload struct {
	Index      int               `json:"index"`
	Total      int               `json:"total"`
	CardID     string            `json:"cardId"`
	ImageURL   string            `json:"imageUrl"`
	Difficulty domain.Difficulty `json:"difficulty"`
	Choices    []string          `json:"choices"`
}

// ServeWS plays one round per connection: started, then a card per answer, then finished.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	topicID := r.URL.Query().Get("topicId")
	if topicID == "" {
		http.Error(w, "missing topicId", http.StatusBadRequest)
		return
	}
	limit, err := parseLimit(r.URL.Query().Get("limit"), h.roundLimit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("ws upgrade failed")
		return
	}
	defer conn.Close()

	log := h.log.WithField("topic_id", topicID)
	session, err := h.play.Start(r.Context(), topicID, limit)
	if err != nil {
		if !errors.Is(err, domain.ErrEmptyRound) {
			log.WithError(err).Error("start round")
		}
		_ = conn.WriteJSON(errorMessage(err.Error()))
		return
	}
	defer h.play.End(r.Context(), session.ID())
	log = log.WithField("session_id", session.ID())
	log.Info("round started")

	rnd := h.connRand()
	if err := conn.WriteJSON(outboundMessage{Type: "started", Payload: startedPayload{
		SessionID:  session.ID(),
		TopicID:    session.TopicID(),
		TotalCards: session.Total(),
	}}); err != nil {
		return
	}
	if err := h.sendCard(conn, session, rnd); err != nil {
		return
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			log.Debug("client left before round finished")
			return
		}
		if inbound.Type != "answer" {
			if err := conn.WriteJSON(errorMessage("unsupported message type")); err != nil {
				return
			}
			continue
		}

		var submission domain.AnswerSubmission
		if err := json.Unmarshal(inbound.Payload, &submission); err != nil {
			if err := conn.WriteJSON(errorMessage("invalid answer payload")); err != nil {
				return
			}
			continue
		}
		result, err := h.play.Answer(r.Context(), session.ID(), submission)
		if err != nil {
			if err := conn.WriteJSON(errorMessage(err.Error())); err != nil {
				return
			}
			continue
		}
		if err := conn.WriteJSON(outboundMessage{Type: "answerResult", Payload: result}); err != nil {
			return
		}

		if result.Finished {
			summary, _, err := h.play.Result(r.Context(), session.ID())
			if err != nil {
				_ = conn.WriteJSON(errorMessage(err.Error()))
				return
			}
			log.WithFields(logrus.Fields{
				"correct": summary.Tally.CorrectCount,
				"total":   summary.Tally.TotalCards,
				"score":   summary.Score.TotalScore,
			}).Info("round finished")
			_ = conn.WriteJSON(outboundMessage{Type: "finished", Payload: summary})
			_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "round finished"))
			return
		}
		if err := h.sendCard(conn, session, rnd); err != nil {
			return
		}
	}
}

func (h *WSHandler) sendCard(conn *websocket.Conn, session *app.Session, rnd *rand.Rand) error {
	card, index, ok := session.Current()
	if !ok {
		return nil
	}
	return conn.WriteJSON(outboundMessage{Type: "card", Payload: cardPayload{
		Index:      index,
		Total:      session.Total(),
		CardID:     card.ID,
		ImageURL:   card.ImageURL,
		Difficulty: card.Difficulty,
		Choices:    deck.ShuffleChoices(card, rnd),
	}})
}

// connRand gives each connection its own source; *rand.Rand is not safe for concurrent use.
func (h *WSHandler) connRand() *rand.Rand {
	h.mu.Lock()
	defer h.mu.Unlock()
	return rand.New(rand.NewSource(h.seed.Int63()))
}

func errorMessage(msg string) outboundMessage {
	return outboundMessage{Type: "error", Payload: errorPayload{Message: msg}}
}
