package device

import (
	"encoding/json"

	"github.com/inamate/arsketch/internal/gesture"
	"github.com/inamate/arsketch/internal/scene"
	"github.com/inamate/arsketch/internal/sketch"
)

type Message struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId,omitempty"`
	ClientID  string          `json:"clientId,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

const (
	// Device → server
	TypeHello    = "hello"
	TypeTouch    = "touch"
	TypePose     = "pose"
	TypeTracking = "tracking"
	TypeUI       = "ui"
	TypeUndo     = "undo"
	TypeRedo     = "redo"

	// Server → device
	TypeWelcome = "welcome"
	TypeEvents  = "events"
	TypeScene   = "scene"
	TypeError   = "error"
)

type HelloPayload struct {
	ScreenWidth float64 `json:"screenWidth"`
}

type TouchPayload struct {
	ID          int        `json:"id"`
	Phase       string     `json:"phase"`
	Position    [2]float64 `json:"position"`
	RawPosition [2]float64 `json:"rawPosition"`
}

// Sample converts the payload into a gesture sample.
func (p TouchPayload) Sample() (gesture.Sample, error) {
	phase, err := gesture.ParsePhase(p.Phase)
	if err != nil {
		return gesture.Sample{}, err
	}
	return gesture.Sample{
		ID:       p.ID,
		Phase:    phase,
		Position: p.Position,
		RawStart: p.RawPosition,
	}, nil
}

type PosePayload struct {
	Position [3]float64 `json:"position"`
	Forward  [3]float64 `json:"forward"`
}

type TrackingPayload struct {
	Tracking bool `json:"tracking"`
}

type UIPayload struct {
	TouchID int  `json:"touchId"`
	OverUI  bool `json:"overUi"`
}

type WelcomePayload struct {
	SessionID string `json:"sessionId"`
	ClientID  string `json:"clientId"`
}

type EventsPayload struct {
	Events  []gesture.Event `json:"events"`
	History sketch.History  `json:"history"`
}

type ScenePayload struct {
	Scene   scene.Snapshot `json:"scene"`
	History sketch.History `json:"history"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
