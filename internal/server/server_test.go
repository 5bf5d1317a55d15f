package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/plbot/internal/bot"
	"github.com/desertthunder/plbot/internal/formatter"
	"github.com/desertthunder/plbot/internal/repositories"
	"github.com/desertthunder/plbot/internal/shared"
	th "github.com/desertthunder/plbot/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEvents struct {
	got     []bot.Event
	replies []bot.Reply
	err     error
}

func (s *stubEvents) Handle(_ context.Context, ev bot.Event) ([]bot.Reply, error) {
	s.got = append(s.got, ev)
	return s.replies, s.err
}

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

func post(t *testing.T, h http.Handler, body string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/updates", strings.NewReader(body))
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestWebhookHandler(t *testing.T) {
	t.Run("returns replies", func(t *testing.T) {
		events := &stubEvents{replies: []bot.Reply{{Text: "hi"}}}
		router := NewRouter(nil, NewWebhookHandler(events, "", nil))

		rec := post(t, router, `{"user_id": 7, "text": "/start"}`, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var body WebhookResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, []bot.Reply{{Text: "hi"}}, body.Replies)
		require.Len(t, events.got, 1)
		assert.Equal(t, int64(7), events.got[0].UserID)
		assert.Equal(t, "/start", events.got[0].Text)
	})

	t.Run("empty replies encode as a list", func(t *testing.T) {
		router := NewRouter(nil, NewWebhookHandler(&stubEvents{}, "", nil))
		rec := post(t, router, `{"user_id": 7}`, nil)
		assert.JSONEq(t, `{"replies": []}`, rec.Body.String())
	})

	t.Run("secret", func(t *testing.T) {
		events := &stubEvents{}
		router := NewRouter(nil, NewWebhookHandler(events, "s3cret", nil))

		rec := post(t, router, `{"user_id": 7}`, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		rec = post(t, router, `{"user_id": 7}`, http.Header{SecretHeader: {"wrong"}})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Empty(t, events.got)

		rec = post(t, router, `{"user_id": 7}`, http.Header{SecretHeader: {"s3cret"}})
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		router := NewRouter(nil, NewWebhookHandler(&stubEvents{}, "", nil))
		rec := post(t, router, `{"user_id":`, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "malformed event")
	})

	t.Run("handler error", func(t *testing.T) {
		router := NewRouter(nil, NewWebhookHandler(&stubEvents{err: errors.New("boom")}, "", nil))
		rec := post(t, router, `{}`, nil)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "boom")
	})

	t.Run("wrong method", func(t *testing.T) {
		router := NewRouter(nil, NewWebhookHandler(&stubEvents{}, "", nil))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/updates", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})

	t.Run("end to end with the bot", func(t *testing.T) {
		repo := repositories.NewRepository(th.MustOpenDB(t), nil)
		handler := bot.NewHandler(bot.Options{Repository: repo})
		router := NewRouter(nil, NewWebhookHandler(handler, "", nil), NewHealthHandler(repo))

		send := func(ev bot.Event) []bot.Reply {
			data, err := json.Marshal(ev)
			require.NoError(t, err)
			rec := post(t, router, string(data), nil)
			require.Equal(t, http.StatusOK, rec.Code)

			var body WebhookResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			return body.Replies
		}

		send(bot.Event{UserID: 5, FirstName: "Eve", Text: "/new_playlist"})
		send(bot.Event{UserID: 5, FirstName: "Eve", Text: "Webhook mix"})
		created := send(bot.Event{UserID: 5, FirstName: "Eve", Text: "/skip"})
		require.Len(t, created, 1)
		assert.Contains(t, created[0].Text, "Webhook mix")

		added := send(bot.Event{UserID: 5, Audio: &bot.Audio{FileID: "f1", Title: "Song", Duration: 3600}})
		assert.Contains(t, added[0].Text, "01ч 00мин")

		listed := send(bot.Event{UserID: 9, Text: "/all"})
		assert.Contains(t, listed[0].Text, "Всего: 1")

		rejected := send(bot.Event{UserID: 9, Callback: "del_1"})
		assert.Equal(t, formatter.MsgForbiddenDelete, rejected[0].Text)

		rec := post(t, router, `{"text": "/start"}`, nil)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestHealthHandler(t *testing.T) {
	get := func(h http.Handler) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		return rec
	}

	t.Run("ok", func(t *testing.T) {
		rec := get(NewRouter(nil, NewHealthHandler(stubPinger{})))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	})

	t.Run("unavailable", func(t *testing.T) {
		rec := get(NewRouter(nil, NewHealthHandler(stubPinger{err: errors.New("down")})))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("closed database", func(t *testing.T) {
		db := th.MustOpenDB(t)
		repo := repositories.NewRepository(db, nil)
		db.Close()

		rec := get(NewRouter(nil, NewHealthHandler(repo)))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestMiddleware(t *testing.T) {
	t.Run("request id is generated and propagated", func(t *testing.T) {
		var seen string
		h := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = RequestIDFrom(r.Context())
		}))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.NotEmpty(t, seen)
		assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
	})

	t.Run("incoming request id is kept", func(t *testing.T) {
		h := RequestID()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "abc")

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, "abc", rec.Header().Get(RequestIDHeader))
	})

	t.Run("logging records status", func(t *testing.T) {
		var buf bytes.Buffer
		logger := shared.NewLogger(&buf)

		h := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", http.StatusBadGateway)
		}))
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/broken", nil))

		out := buf.String()
		assert.Contains(t, out, "request failed")
		assert.Contains(t, out, "/broken")
		assert.Contains(t, out, "502")
	})

	t.Run("middleware order", func(t *testing.T) {
		var order []string
		mark := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		r := NewBasicRouter()
		r.Use(mark("first"), mark("second"))
		r.Handle(http.MethodGet, "/x", http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			order = append(order, "handler")
		}))

		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))
		assert.Equal(t, []string{"first", "second", "handler"}, order)
	})
}

func TestNewHTTPServer(t *testing.T) {
	srv := NewHTTPServer(":0", http.NotFoundHandler())
	assert.Equal(t, ":0", srv.Addr)
	assert.NotZero(t, srv.ReadHeaderTimeout)
}
