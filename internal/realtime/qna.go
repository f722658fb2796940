package realtime

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/eventhive/eventhive/internal/apperr"
	"github.com/eventhive/eventhive/internal/model"
)

// handleQnaAsk persists an unanswered question and broadcasts it to the
// event's Q&A room.
func (g *Gateway) handleQnaAsk(ctx context.Context, session *Session, frame Frame) {
	var payload qnaAskPayload
	if err := json.Unmarshal(frame.Payload, &payload); err != nil {
		writeError(session.peer, frame.RequestID, apperr.New(apperr.CodeInvalidArgument, "invalid question payload"))
		return
	}

	key := RoomKey{EventID: payload.EventID, Kind: KindQnA}
	if !session.holds(key) {
		writeError(session.peer, frame.RequestID,
			apperr.New(apperr.CodeNotJoined, "must join the event Q&A room first"))
		return
	}

	text := strings.TrimSpace(payload.Text)
	if text == "" {
		writeError(session.peer, frame.RequestID,
			apperr.New(apperr.CodeEmptyMessage, "question cannot be empty"))
		return
	}

	question := &model.Question{
		EventID:    payload.EventID,
		AuthorID:   session.User().ID,
		AuthorName: session.User().Name,
		Text:       text,
	}
	if err := g.questions.Insert(ctx, question); err != nil {
		writeError(session.peer, frame.RequestID, err)
		return
	}

	writeAck(session.peer, frame.RequestID, question.ID)
	g.hub.room(key).broadcast(Frame{
		Type:    frameQnaQuestion,
		Payload: mustJSON(question),
	}, nil)
}

// handleQnaAnswer records an answer on a question and broadcasts the
// updated entry. Only the event's organizer, one of its currently assigned
// speakers, or an admin may answer; the organizer/speaker set is re-read
// from the store at answer time, never taken from a cached value.
func (g *Gateway) handleQnaAnswer(ctx context.Context, session *Session, frame Frame) {
	var payload qnaAnswerPayload
	if err := json.Unmarshal(frame.Payload, &payload); err != nil {
		writeError(session.peer, frame.RequestID, apperr.New(apperr.CodeInvalidArgument, "invalid answer payload"))
		return
	}

	key := RoomKey{EventID: payload.EventID, Kind: KindQnA}
	if !session.holds(key) {
		writeError(session.peer, frame.RequestID,
			apperr.New(apperr.CodeNotJoined, "must join the event Q&A room first"))
		return
	}

	text := strings.TrimSpace(payload.Text)
	if text == "" {
		writeError(session.peer, frame.RequestID,
			apperr.New(apperr.CodeEmptyAnswer, "answer cannot be empty"))
		return
	}

	event, err := g.events.GetByID(ctx, payload.EventID)
	if err != nil {
		writeError(session.peer, frame.RequestID, err)
		return
	}
	if !event.CanAnswerQuestions(session.User()) {
		writeError(session.peer, frame.RequestID,
			apperr.New(apperr.CodeForbidden, "no permission to answer questions for this event"))
		return
	}

	question, err := g.questions.Answer(ctx, payload.EventID, payload.QuestionID, text, session.User().ID)
	if err != nil {
		writeError(session.peer, frame.RequestID, err)
		return
	}

	writeAck(session.peer, frame.RequestID, question.ID)
	g.hub.room(key).broadcast(Frame{
		Type:    frameQnaAnswered,
		Payload: mustJSON(question),
	}, nil)
}
