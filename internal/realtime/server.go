// Package realtime hosts the WebSocket surface: handshake authentication,
// room membership, and the chat and Q&A channels.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"golang.org/x/net/websocket"

	"github.com/eventhive/eventhive/internal/apperr"
	"github.com/eventhive/eventhive/internal/model"
)

const (
	chatHistoryLimit       = 50
	maxDecodeErrorsPerConn = 3
)

// Verifier authenticates a handshake credential.
type Verifier interface {
	Verify(ctx context.Context, token string) (*model.User, error)
}

// EventStore provides the event reads the gateway needs. GetByID is called
// fresh for every authorization-sensitive operation so permission checks
// never act on a stale snapshot.
type EventStore interface {
	GetByID(ctx context.Context, id string) (*model.Event, error)
}

// MessageStore persists and replays chat messages.
type MessageStore interface {
	Insert(ctx context.Context, m *model.Message) error
	RecentByEvent(ctx context.Context, eventID string, limit int) ([]model.Message, error)
}

// QuestionStore persists and replays Q&A entries.
type QuestionStore interface {
	Insert(ctx context.Context, q *model.Question) error
	ListByEvent(ctx context.Context, eventID string) ([]model.Question, error)
	Answer(ctx context.Context, eventID, questionID, answer, answeredByID string) (*model.Question, error)
}

// Gateway authenticates connections and dispatches their frames.
type Gateway struct {
	verifier  Verifier
	events    EventStore
	messages  MessageStore
	questions QuestionStore
	hub       *Hub
}

// NewGateway constructs a Gateway.
func NewGateway(verifier Verifier, events EventStore, messages MessageStore, questions QuestionStore) *Gateway {
	return &Gateway{
		verifier:  verifier,
		events:    events,
		messages:  messages,
		questions: questions,
		hub:       NewHub(),
	}
}

type sessionUserContextKey struct{}

// Handler returns the HTTP handler for the WebSocket endpoint. The bearer
// credential is verified once during the handshake; every later frame on
// the connection reads the bound identity without re-verifying.
func (g *Gateway) Handler() http.Handler {
	wsHandler := websocket.Handler(g.handleConn)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		user, err := g.verifier.Verify(r.Context(), tokenFromRequest(r))
		if err != nil {
			code := apperr.CodeOf(err)
			log.Printf("realtime: handshake rejected for remote=%s: %v", r.RemoteAddr, err)
			http.Error(w, string(code), code.HTTPStatus())
			return
		}

		ctx := context.WithValue(r.Context(), sessionUserContextKey{}, user)
		wsHandler.ServeHTTP(w, r.WithContext(ctx))
	})
}

// tokenFromRequest accepts the credential from the Authorization header or
// the token query parameter.
func tokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return strings.TrimSpace(r.URL.Query().Get("token"))
}

func (g *Gateway) handleConn(conn *websocket.Conn) {
	defer func() {
		_ = conn.Close()
	}()

	request := conn.Request()
	user, ok := request.Context().Value(sessionUserContextKey{}).(*model.User)
	if !ok || user == nil {
		return
	}

	session := NewSession(user, newPeer(conn))
	defer g.releaseAll(session)

	ctx := request.Context()
	decoder := json.NewDecoder(conn)
	decodeErrors := 0
	for {
		var frame Frame
		if err := decoder.Decode(&frame); err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			decodeErrors++
			writeError(session.peer, "", apperr.New(apperr.CodeInvalidArgument, "invalid frame payload"))
			if decodeErrors >= maxDecodeErrorsPerConn {
				return
			}
			continue
		}
		decodeErrors = 0

		g.dispatch(ctx, session, frame)
	}
}

func (g *Gateway) dispatch(ctx context.Context, session *Session, frame Frame) {
	switch frame.Type {
	case frameRoomJoin:
		g.handleJoin(ctx, session, frame)
	case frameRoomLeave:
		g.handleLeave(session, frame)
	case frameChatSend:
		g.handleChatSend(ctx, session, frame)
	case frameQnaAsk:
		g.handleQnaAsk(ctx, session, frame)
	case frameQnaAnswer:
		g.handleQnaAnswer(ctx, session, frame)
	default:
		writeError(session.peer, frame.RequestID,
			apperr.New(apperr.CodeInvalidArgument, "unsupported frame type"))
	}
}

// releaseAll drops every membership the session holds. Disconnect is the
// only cancellation signal a connection gets.
func (g *Gateway) releaseAll(session *Session) {
	for _, key := range session.drain() {
		g.hub.leave(key, session.peer)
	}
}
