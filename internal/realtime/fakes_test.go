package realtime

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/eventhive/eventhive/internal/apperr"
	"github.com/eventhive/eventhive/internal/model"
)

type fakeEvents struct {
	mu     sync.Mutex
	events map[string]*model.Event
}

func newFakeEvents(events ...*model.Event) *fakeEvents {
	f := &fakeEvents{events: make(map[string]*model.Event)}
	for _, e := range events {
		f.events[e.ID] = e
	}
	return f
}

func (f *fakeEvents) GetByID(_ context.Context, id string) (*model.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.events[id]
	if !ok {
		return nil, apperr.New(apperr.CodeEventNotFound, "event not found")
	}
	copied := *e
	return &copied, nil
}

type fakeMessages struct {
	mu       sync.Mutex
	messages []model.Message
	nextID   int
	listErr  error
}

func (f *fakeMessages) Insert(_ context.Context, m *model.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	m.ID = fmt.Sprintf("msg-%d", f.nextID)
	m.CreatedAt = time.Now().UTC()
	f.messages = append(f.messages, *m)
	return nil
}

func (f *fakeMessages) RecentByEvent(_ context.Context, eventID string, limit int) ([]model.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []model.Message
	for _, m := range f.messages {
		if m.EventID == eventID {
			out = append(out, m)
		}
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

type fakeQuestions struct {
	mu        sync.Mutex
	questions []model.Question
	nextID    int
}

func (f *fakeQuestions) Insert(_ context.Context, q *model.Question) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	q.ID = fmt.Sprintf("q-%d", f.nextID)
	q.CreatedAt = time.Now().UTC()
	f.questions = append(f.questions, *q)
	return nil
}

func (f *fakeQuestions) ListByEvent(_ context.Context, eventID string) ([]model.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Question
	for i := len(f.questions) - 1; i >= 0; i-- {
		if f.questions[i].EventID == eventID {
			out = append(out, f.questions[i])
		}
	}
	return out, nil
}

func (f *fakeQuestions) Answer(_ context.Context, eventID, questionID, answer, answeredByID string) (*model.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.questions {
		q := &f.questions[i]
		if q.ID == questionID && q.EventID == eventID {
			q.Answer = answer
			q.AnsweredByID = answeredByID
			q.Answered = true
			copied := *q
			return &copied, nil
		}
	}
	return nil, apperr.New(apperr.CodeQuestionNotFound, "question not found")
}

type fakeVerifier struct {
	users map[string]*model.User
}

func (f *fakeVerifier) Verify(_ context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, apperr.New(apperr.CodeTokenMissing, "missing token")
	}
	u, ok := f.users[token]
	if !ok {
		return nil, apperr.New(apperr.CodeTokenInvalid, "invalid token")
	}
	return u, nil
}

// testClient pairs a session with the buffer its peer writes into, so tests
// can dispatch frames directly and inspect everything written back.
type testClient struct {
	session *Session
	buf     *bytes.Buffer
}

func newTestClient(user *model.User) *testClient {
	buf := &bytes.Buffer{}
	return &testClient{
		session: NewSession(user, newPeer(buf)),
		buf:     buf,
	}
}

// frames decodes and drains everything written to the client so far.
func (c *testClient) frames(t *testing.T) []Frame {
	t.Helper()
	var out []Frame
	decoder := json.NewDecoder(c.buf)
	for decoder.More() {
		var f Frame
		if err := decoder.Decode(&f); err != nil {
			t.Fatalf("decode frame: %v", err)
		}
		out = append(out, f)
	}
	c.buf.Reset()
	return out
}

func (c *testClient) framesOfType(t *testing.T, frameType string) []Frame {
	t.Helper()
	var out []Frame
	for _, f := range c.frames(t) {
		if f.Type == frameType {
			out = append(out, f)
		}
	}
	return out
}

func clientFrame(t *testing.T, frameType, requestID string, payload any) Frame {
	t.Helper()
	b, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return Frame{Type: frameType, RequestID: requestID, Payload: b}
}

func decodePayload(t *testing.T, frame Frame, into any) {
	t.Helper()
	if err := json.Unmarshal(frame.Payload, into); err != nil {
		t.Fatalf("decode %s payload: %v", frame.Type, err)
	}
}

// requireError asserts the next written frame is an error with the code.
func requireError(t *testing.T, c *testClient, code apperr.Code) {
	t.Helper()
	frames := c.frames(t)
	if len(frames) != 1 || frames[0].Type != frameError {
		t.Fatalf("frames = %+v, want a single error frame", frames)
	}
	var payload errorPayload
	decodePayload(t, frames[0], &payload)
	if payload.Code != string(code) {
		t.Fatalf("error code = %q, want %q", payload.Code, code)
	}
}

func liveEvent(id, organizerID string, speakerIDs ...string) *model.Event {
	return &model.Event{
		ID:          id,
		Title:       "Event " + id,
		StartTime:   time.Now().UTC().Add(-time.Hour),
		EndTime:     time.Now().UTC().Add(time.Hour),
		OrganizerID: organizerID,
		SpeakerIDs:  speakerIDs,
		Status:      model.StatusLive,
	}
}

func attendee(id string) *model.User {
	return &model.User{ID: id, Name: "User " + id, Email: id + "@example.com", Role: model.RoleAttendee}
}

// joinRoom joins the client into a room and discards the written frames.
func joinRoom(t *testing.T, g *Gateway, c *testClient, eventID string, kind ChannelKind) {
	t.Helper()
	g.dispatch(context.Background(), c.session,
		clientFrame(t, frameRoomJoin, "join", roomPayload{EventID: eventID, Kind: kind}))
	frames := c.frames(t)
	for _, f := range frames {
		if f.Type == frameError {
			t.Fatalf("join failed: %s", f.Payload)
		}
	}
}
