package realtime

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/eventhive/eventhive/internal/apperr"
	"github.com/eventhive/eventhive/internal/model"
)

// handleChatSend persists a message and broadcasts it to every current room
// member, the sender included. Messages sent sequentially by one connection
// reach every member in that same relative order; ordering across
// connections is arrival order.
func (g *Gateway) handleChatSend(ctx context.Context, session *Session, frame Frame) {
	var payload chatSendPayload
	if err := json.Unmarshal(frame.Payload, &payload); err != nil {
		writeError(session.peer, frame.RequestID, apperr.New(apperr.CodeInvalidArgument, "invalid chat payload"))
		return
	}

	key := RoomKey{EventID: payload.EventID, Kind: KindChat}
	if !session.holds(key) {
		writeError(session.peer, frame.RequestID,
			apperr.New(apperr.CodeNotJoined, "must join the event chat room first"))
		return
	}

	text := strings.TrimSpace(payload.Text)
	if text == "" {
		writeError(session.peer, frame.RequestID,
			apperr.New(apperr.CodeEmptyMessage, "message cannot be empty"))
		return
	}

	msg := &model.Message{
		EventID:    payload.EventID,
		AuthorID:   session.User().ID,
		AuthorName: session.User().Name,
		Text:       text,
	}
	if err := g.messages.Insert(ctx, msg); err != nil {
		writeError(session.peer, frame.RequestID, err)
		return
	}

	writeAck(session.peer, frame.RequestID, msg.ID)
	g.hub.room(key).broadcast(Frame{
		Type:    frameChatMessage,
		Payload: mustJSON(msg),
	}, nil)
}
