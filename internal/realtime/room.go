package realtime

import (
	"context"
	"encoding/json"

	"github.com/eventhive/eventhive/internal/apperr"
	"github.com/eventhive/eventhive/internal/model"
)

// handleJoin admits the session into a room after gating on the event. On
// the first successful join the joiner alone receives the bounded history
// and the room's other members receive a presence notice. Re-joining an
// already-joined room acks without re-delivering either.
func (g *Gateway) handleJoin(ctx context.Context, session *Session, frame Frame) {
	var payload roomPayload
	if err := json.Unmarshal(frame.Payload, &payload); err != nil {
		writeError(session.peer, frame.RequestID, apperr.New(apperr.CodeInvalidArgument, "invalid join payload"))
		return
	}
	key, err := g.roomKey(payload)
	if err != nil {
		writeError(session.peer, frame.RequestID, err)
		return
	}

	event, err := g.events.GetByID(ctx, key.EventID)
	if err != nil {
		writeError(session.peer, frame.RequestID, err)
		return
	}
	if !event.Status.Open() {
		writeError(session.peer, frame.RequestID,
			apperr.New(apperr.CodeEventNotAccessible, "event is not accessible"))
		return
	}

	if session.markJoined(key) {
		writeAck(session.peer, frame.RequestID, "")
		return
	}
	room := g.hub.join(key, session.peer)

	// Load the history before acknowledging so the client never sees a
	// success followed by an error for the same request. A load failure
	// rolls the membership back so a retried join replays history.
	history, err := g.historyFrame(ctx, key)
	if err != nil {
		session.markLeft(key)
		g.hub.leave(key, session.peer)
		writeError(session.peer, frame.RequestID, err)
		return
	}

	writeAck(session.peer, frame.RequestID, "")
	_ = session.peer.writeFrame(Frame{
		Type:    frameRoomJoined,
		Payload: mustJSON(joinedPayload{EventID: key.EventID, Kind: key.Kind}),
	})
	_ = session.peer.writeFrame(history)

	room.broadcast(Frame{
		Type: framePresence,
		Payload: mustJSON(presencePayload{
			EventID: key.EventID,
			Kind:    key.Kind,
			UserID:  session.User().ID,
			Name:    session.User().Name,
		}),
	}, session.peer)
}

// historyFrame builds the replay frame for the joining connection: chat gets
// the most recent messages in chronological order, Q&A gets the full history
// newest first.
func (g *Gateway) historyFrame(ctx context.Context, key RoomKey) (Frame, error) {
	switch key.Kind {
	case KindChat:
		messages, err := g.messages.RecentByEvent(ctx, key.EventID, chatHistoryLimit)
		if err != nil {
			return Frame{}, err
		}
		if messages == nil {
			messages = []model.Message{}
		}
		return Frame{
			Type:    frameChatHistory,
			Payload: mustJSON(chatHistoryPayload{EventID: key.EventID, Messages: messages}),
		}, nil
	default:
		questions, err := g.questions.ListByEvent(ctx, key.EventID)
		if err != nil {
			return Frame{}, err
		}
		if questions == nil {
			questions = []model.Question{}
		}
		return Frame{
			Type:    frameQnaHistory,
			Payload: mustJSON(qnaHistoryPayload{EventID: key.EventID, Questions: questions}),
		}, nil
	}
}

// handleLeave is idempotent: leaving a room the session never joined still
// acks success.
func (g *Gateway) handleLeave(session *Session, frame Frame) {
	var payload roomPayload
	if err := json.Unmarshal(frame.Payload, &payload); err != nil {
		writeError(session.peer, frame.RequestID, apperr.New(apperr.CodeInvalidArgument, "invalid leave payload"))
		return
	}
	key, err := g.roomKey(payload)
	if err != nil {
		writeError(session.peer, frame.RequestID, err)
		return
	}

	session.markLeft(key)
	g.hub.leave(key, session.peer)
	writeAck(session.peer, frame.RequestID, "")
}

func (g *Gateway) roomKey(payload roomPayload) (RoomKey, error) {
	if payload.EventID == "" {
		return RoomKey{}, apperr.New(apperr.CodeInvalidArgument, "event id is required")
	}
	if err := payload.Kind.Validate(); err != nil {
		return RoomKey{}, err
	}
	return RoomKey{EventID: payload.EventID, Kind: payload.Kind}, nil
}
