package realtime

import (
	"encoding/json"
	"log"

	"github.com/eventhive/eventhive/internal/apperr"
	"github.com/eventhive/eventhive/internal/model"
)

// Frame is the wire envelope for every client and server message.
type Frame struct {
	Type      string          `json:"type"`
	RequestID string          `json:"request_id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// Client → server frame types.
const (
	frameRoomJoin  = "room.join"
	frameRoomLeave = "room.leave"
	frameChatSend  = "chat.send"
	frameQnaAsk    = "qna.ask"
	frameQnaAnswer = "qna.answer"
)

// Server → client frame types.
const (
	frameAck         = "ack"
	frameError       = "error"
	frameRoomJoined  = "room.joined"
	framePresence    = "room.presence"
	frameChatHistory = "chat.history"
	frameChatMessage = "chat.message"
	frameQnaHistory  = "qna.history"
	frameQnaQuestion = "qna.question"
	frameQnaAnswered = "qna.answered"
)

type roomPayload struct {
	EventID string      `json:"event_id"`
	Kind    ChannelKind `json:"kind"`
}

type chatSendPayload struct {
	EventID string `json:"event_id"`
	Text    string `json:"text"`
}

type qnaAskPayload struct {
	EventID string `json:"event_id"`
	Text    string `json:"text"`
}

type qnaAnswerPayload struct {
	EventID    string `json:"event_id"`
	QuestionID string `json:"question_id"`
	Text       string `json:"text"`
}

type joinedPayload struct {
	EventID string      `json:"event_id"`
	Kind    ChannelKind `json:"kind"`
}

type presencePayload struct {
	EventID string      `json:"event_id"`
	Kind    ChannelKind `json:"kind"`
	UserID  string      `json:"user_id"`
	Name    string      `json:"name"`
}

type chatHistoryPayload struct {
	EventID  string          `json:"event_id"`
	Messages []model.Message `json:"messages"`
}

type qnaHistoryPayload struct {
	EventID   string           `json:"event_id"`
	Questions []model.Question `json:"questions"`
}

type ackPayload struct {
	Status string `json:"status"`
	ID     string `json:"id,omitempty"`
}

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeAck(p *peer, requestID, id string) {
	_ = p.writeFrame(Frame{
		Type:      frameAck,
		RequestID: requestID,
		Payload:   mustJSON(ackPayload{Status: "ok", ID: id}),
	})
}

func writeError(p *peer, requestID string, err error) {
	code := apperr.CodeOf(err)
	message := err.Error()
	if code == apperr.CodeUnknown {
		// Internal failures stay in the logs; callers get a generic notice.
		log.Printf("realtime: internal error: %v", err)
		message = "internal error"
	}
	_ = p.writeFrame(Frame{
		Type:      frameError,
		RequestID: requestID,
		Payload:   mustJSON(errorPayload{Code: string(code), Message: message}),
	})
}

func mustJSON(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		log.Printf("realtime: marshal frame payload: %v", err)
		return nil
	}
	return b
}
