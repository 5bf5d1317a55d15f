package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/plbot/internal/bot"
	"github.com/desertthunder/plbot/internal/shared"
)

// SecretHeader carries the shared webhook secret.
const SecretHeader = "X-Webhook-Secret"

// maxEventBytes bounds a webhook request body.
const maxEventBytes = 1 << 20

// EventHandler processes one bot event. [bot.Handler] implements it.
type EventHandler interface {
	Handle(ctx context.Context, ev bot.Event) ([]bot.Reply, error)
}

// WebhookResponse is the body of a successful POST /updates.
type WebhookResponse struct {
	Replies []bot.Reply `json:"replies"`
}

// WebhookHandler decodes events posted by a platform adapter and returns the replies to send.
type WebhookHandler struct {
	events EventHandler
	secret string
	logger *log.Logger
}

// NewWebhookHandler returns a handler for POST /updates. An empty secret disables the header check.
func NewWebhookHandler(events EventHandler, secret string, logger *log.Logger) *WebhookHandler {
	if logger == nil {
		logger = shared.DiscardLogger()
	}
	return &WebhookHandler{events: events, secret: secret, logger: logger}
}

func (h *WebhookHandler) Routes() []string {
	return []string{"POST /updates"}
}

func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.secret != "" {
		got := r.Header.Get(SecretHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(h.secret)) != 1 {
			writeError(w, http.StatusUnauthorized, "invalid webhook secret")
			return
		}
	}

	var ev bot.Event
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxEventBytes))
	if err := dec.Decode(&ev); err != nil {
		writeError(w, http.StatusBadRequest, "malformed event")
		return
	}

	replies, err := h.events.Handle(r.Context(), ev)
	if err != nil {
		h.logger.Warn("event rejected", "err", err, "request_id", RequestIDFrom(r.Context()))
		writeError(w, http.StatusInternalServerError, "could not handle event")
		return
	}

	if replies == nil {
		replies = []bot.Reply{}
	}
	writeJSON(w, http.StatusOK, WebhookResponse{Replies: replies})
}
