package device

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/arsketch/internal/gesture"
	"github.com/inamate/arsketch/internal/sketch"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	return NewClient(nil, nil, "client-1", sketch.DefaultSettings(), nil)
}

func message(t *testing.T, msgType string, payload any) *Message {
	t.Helper()
	msg := &Message{Type: msgType}
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		msg.Payload = data
	}
	return msg
}

// drain returns all queued outbound messages.
func drain(t *testing.T, c *Client) []Message {
	t.Helper()
	var out []Message
	for {
		select {
		case data := <-c.send:
			var msg Message
			require.NoError(t, json.Unmarshal(data, &msg))
			out = append(out, msg)
		default:
			return out
		}
	}
}

func types(msgs []Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.Type
	}
	return out
}

func touchMsg(t *testing.T, phase string, x, y float64) *Message {
	return message(t, TypeTouch, TouchPayload{
		ID:          0,
		Phase:       phase,
		Position:    [2]float64{x, y},
		RawPosition: [2]float64{500, 500},
	})
}

func TestStateDefaults(t *testing.T) {
	st := NewState()
	assert.False(t, st.SessionIsTracking())
	_, forward := st.CameraPose()
	assert.Equal(t, mgl64.Vec3{0, 0, -1}, forward)

	st.SetPointerOverUI(2, true)
	assert.True(t, st.IsPointerOverUI(2))
	st.SetPointerOverUI(2, false)
	assert.False(t, st.IsPointerOverUI(2))
}

func TestTouchPayloadSample(t *testing.T) {
	s, err := TouchPayload{ID: 3, Phase: "moved", Position: [2]float64{1, 2}, RawPosition: [2]float64{3, 4}}.Sample()
	require.NoError(t, err)
	assert.Equal(t, gesture.Sample{
		ID:       3,
		Phase:    gesture.PhaseMoved,
		Position: mgl64.Vec2{1, 2},
		RawStart: mgl64.Vec2{3, 4},
	}, s)

	_, err = TouchPayload{Phase: "hover"}.Sample()
	assert.ErrorIs(t, err, gesture.ErrUnknownPhase)
}

func TestDrawingOverTheWire(t *testing.T) {
	c := newTestClient(t)

	c.handleMessage(message(t, TypeHello, HelloPayload{ScreenWidth: 1000}))
	c.handleMessage(message(t, TypeTracking, TrackingPayload{Tracking: true}))
	c.handleMessage(message(t, TypePose, PosePayload{Forward: [3]float64{0, 0, -1}}))
	assert.Equal(t, []string{TypeScene}, types(drain(t, c)))

	c.handleMessage(touchMsg(t, "began", 500, 500))
	c.handleMessage(touchMsg(t, "stationary", 500, 500))
	c.handleMessage(message(t, TypePose, PosePayload{Position: [3]float64{0.1, 0, 0}, Forward: [3]float64{0, 0, -1}}))
	c.handleMessage(touchMsg(t, "moved", 510, 500))
	c.handleMessage(touchMsg(t, "ended", 510, 500))

	msgs := drain(t, c)
	require.Equal(t, []string{TypeEvents, TypeScene, TypeEvents, TypeScene, TypeEvents, TypeScene}, types(msgs))

	var last EventsPayload
	require.NoError(t, json.Unmarshal(msgs[4].Payload, &last))
	assert.Equal(t, []gesture.Event{gesture.EventCommitLine}, last.Events)
	assert.Equal(t, sketch.History{Undo: 1}, last.History)

	var sc ScenePayload
	require.NoError(t, json.Unmarshal(msgs[5].Payload, &sc))
	require.Len(t, sc.Scene.Lines, 1)
	assert.Len(t, sc.Scene.Lines[0].Points, 2)
	assert.Equal(t, c.SessionID(), msgs[5].SessionID)

	c.handleMessage(message(t, TypeUndo, nil))
	msgs = drain(t, c)
	require.Equal(t, []string{TypeScene}, types(msgs))
	require.NoError(t, json.Unmarshal(msgs[0].Payload, &sc))
	assert.Empty(t, sc.Scene.Lines)
	assert.Equal(t, sketch.History{Redo: 1}, sc.History)
}

func TestTouchOverUIIsIgnored(t *testing.T) {
	c := newTestClient(t)
	c.handleMessage(message(t, TypeTracking, TrackingPayload{Tracking: true}))
	c.handleMessage(message(t, TypeUI, UIPayload{TouchID: 0, OverUI: true}))

	c.handleMessage(touchMsg(t, "began", 500, 500))
	c.handleMessage(touchMsg(t, "stationary", 500, 500))
	c.handleMessage(touchMsg(t, "ended", 500, 500))

	assert.Empty(t, drain(t, c))
}

func TestUndoWithEmptyHistory(t *testing.T) {
	c := newTestClient(t)
	applied, err := c.Undo()
	require.NoError(t, err)
	assert.False(t, applied)

	applied, err = c.Redo()
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Empty(t, drain(t, c))
}

func TestBadMessagesReportErrors(t *testing.T) {
	tests := []struct {
		name string
		msg  *Message
	}{
		{"unknown type", &Message{Type: "teleport"}},
		{"bad phase", &Message{Type: TypeTouch, Payload: json.RawMessage(`{"phase":"hover"}`)}},
		{"bad hello", &Message{Type: TypeHello, Payload: json.RawMessage(`{"screenWidth":0}`)}},
		{"malformed pose", &Message{Type: TypePose, Payload: json.RawMessage(`{"position":"x"}`)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t)
			c.handleMessage(tt.msg)
			msgs := drain(t, c)
			require.Equal(t, []string{TypeError}, types(msgs))

			var payload ErrorPayload
			require.NoError(t, json.Unmarshal(msgs[0].Payload, &payload))
			assert.NotEmpty(t, payload.Message)
		})
	}
}

func TestHubRegistersBySession(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub()
	go hub.Run(ctx)

	c := NewClient(hub, nil, "client-1", sketch.DefaultSettings(), nil)
	hub.Register(c)

	require.Eventually(t, func() bool {
		_, ok := hub.Lookup(c.SessionID())
		return ok
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{c.SessionID()}, hub.SessionIDs())

	msgs := drain(t, c)
	require.Equal(t, []string{TypeWelcome}, types(msgs))
	var welcome WelcomePayload
	require.NoError(t, json.Unmarshal(msgs[0].Payload, &welcome))
	assert.Equal(t, c.SessionID(), welcome.SessionID)

	hub.Unregister(c)
	require.Eventually(t, func() bool {
		_, ok := hub.Lookup(c.SessionID())
		return !ok
	}, time.Second, 5*time.Millisecond)

	cancel()
	// Once stopped, registration calls return instead of blocking.
	hub.Unregister(c)
}
