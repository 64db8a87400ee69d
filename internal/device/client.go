// Package device bridges connected AR devices to their sketch sessions.
package device

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/inamate/arsketch/internal/command"
	"github.com/inamate/arsketch/internal/sketch"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	maxMsgSize = 64 * 1024
)

// Client is one connected AR device and the sketch session it drives.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	ClientID string

	device *State

	mu      sync.Mutex // serializes all access to session
	session *sketch.Session
}

func NewClient(hub *Hub, conn *websocket.Conn, clientID string, settings sketch.Settings, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	device := NewState()
	session := sketch.New(settings, sketch.Environment{
		Camera:   device,
		Tracking: device,
		UI:       device,
	}, logger.With("client", clientID))

	return &Client{
		hub:      hub,
		conn:     conn,
		send:     make(chan []byte, 256),
		ClientID: clientID,
		device:   device,
		session:  session,
	}
}

// SessionID returns the ID of the client's sketch session.
func (c *Client) SessionID() string {
	return c.session.ID()
}

// Device returns the client's reported device state.
func (c *Client) Device() *State {
	return c.device
}

// Do runs fn with exclusive access to the client's session.
func (c *Client) Do(fn func(s *sketch.Session) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return fn(c.session)
}

// Undo reverts the last sketch object and pushes the new scene to the device.
// applied is false when there was nothing to undo.
func (c *Client) Undo() (applied bool, err error) {
	return c.history(func(s *sketch.Session) error { return s.Undo() }, command.ErrNothingToUndo)
}

// Redo restores the last undone sketch object and pushes the new scene.
func (c *Client) Redo() (applied bool, err error) {
	return c.history(func(s *sketch.Session) error { return s.Redo() }, command.ErrNothingToRedo)
}

func (c *Client) history(op func(s *sketch.Session) error, empty error) (bool, error) {
	applied := true
	err := c.Do(func(s *sketch.Session) error {
		if err := op(s); err != nil {
			if errors.Is(err, empty) {
				applied = false
				return nil
			}
			return err
		}
		c.sendScene(s)
		return nil
	})
	return applied, err
}

func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	c.conn.SetReadLimit(maxMsgSize)

	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure ||
				websocket.CloseStatus(err) == websocket.StatusGoingAway {
				return
			}
			slog.Debug("read error", "error", err, "client", c.ClientID)
			return
		}

		msg, err := DecodeMessage(data)
		if err != nil {
			slog.Warn("invalid message", "error", err, "client", c.ClientID)
			c.sendError(err)
			continue
		}

		c.handleMessage(msg)
	}
}

func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				return
			}

			writeCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Write(writeCtx, websocket.MessageText, message)
			cancel()
			if err != nil {
				slog.Debug("write error", "error", err, "client", c.ClientID)
				return
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}

		case <-ctx.Done():
			return
		}
	}
}

// Send queues msg for the device. Messages are dropped when the buffer is full.
func (c *Client) Send(msg *Message) {
	msg.SessionID = c.session.ID()
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("marshal message", "error", err)
		return
	}

	select {
	case c.send <- data:
	default:
		slog.Warn("client send buffer full, dropping message", "client", c.ClientID)
	}
}

func (c *Client) sendPayload(msgType string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("marshal payload", "type", msgType, "error", err)
		return
	}
	c.Send(&Message{Type: msgType, ClientID: c.ClientID, Payload: data})
}

func (c *Client) sendError(err error) {
	c.sendPayload(TypeError, ErrorPayload{Message: err.Error()})
}

// sendScene must be called with c.mu held.
func (c *Client) sendScene(s *sketch.Session) {
	c.sendPayload(TypeScene, ScenePayload{Scene: s.Snapshot(), History: s.History()})
}

func (c *Client) welcome() {
	c.sendPayload(TypeWelcome, WelcomePayload{SessionID: c.session.ID(), ClientID: c.ClientID})
}

func (c *Client) handleMessage(msg *Message) {
	var err error
	switch msg.Type {
	case TypeHello:
		err = c.handleHello(msg)
	case TypePose:
		err = c.handlePose(msg)
	case TypeTracking:
		err = c.handleTracking(msg)
	case TypeUI:
		err = c.handleUI(msg)
	case TypeTouch:
		err = c.handleTouch(msg)
	case TypeUndo:
		_, err = c.Undo()
	case TypeRedo:
		_, err = c.Redo()
	default:
		slog.Warn("unknown message type", "type", msg.Type, "client", c.ClientID)
		err = fmt.Errorf("unknown message type: %s", msg.Type)
	}

	if err != nil {
		c.sendError(err)
	}
}

func (c *Client) handleHello(msg *Message) error {
	var hello HelloPayload
	if err := json.Unmarshal(msg.Payload, &hello); err != nil {
		return fmt.Errorf("invalid hello: %w", err)
	}
	if hello.ScreenWidth <= 0 {
		return fmt.Errorf("invalid screen width: %v", hello.ScreenWidth)
	}
	return c.Do(func(s *sketch.Session) error {
		s.SetScreenWidth(hello.ScreenWidth)
		c.sendScene(s)
		return nil
	})
}

func (c *Client) handlePose(msg *Message) error {
	var pose PosePayload
	if err := json.Unmarshal(msg.Payload, &pose); err != nil {
		return fmt.Errorf("invalid pose: %w", err)
	}
	c.device.SetPose(pose.Position, pose.Forward)
	return nil
}

func (c *Client) handleTracking(msg *Message) error {
	var tracking TrackingPayload
	if err := json.Unmarshal(msg.Payload, &tracking); err != nil {
		return fmt.Errorf("invalid tracking state: %w", err)
	}
	c.device.SetTracking(tracking.Tracking)
	return nil
}

func (c *Client) handleUI(msg *Message) error {
	var ui UIPayload
	if err := json.Unmarshal(msg.Payload, &ui); err != nil {
		return fmt.Errorf("invalid ui state: %w", err)
	}
	c.device.SetPointerOverUI(ui.TouchID, ui.OverUI)
	return nil
}

func (c *Client) handleTouch(msg *Message) error {
	var touch TouchPayload
	if err := json.Unmarshal(msg.Payload, &touch); err != nil {
		return fmt.Errorf("invalid touch: %w", err)
	}
	sample, err := touch.Sample()
	if err != nil {
		return err
	}

	return c.Do(func(s *sketch.Session) error {
		events, err := s.OnTouchSample(sample)
		if len(events) > 0 {
			c.sendPayload(TypeEvents, EventsPayload{Events: events, History: s.History()})
			c.sendScene(s)
		}
		return err
	})
}
