package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/inamate/arsketch/internal/device"
	"github.com/inamate/arsketch/internal/scene"
	"github.com/inamate/arsketch/internal/sketch"
	"github.com/inamate/arsketch/internal/typeid"
)

type Handler struct {
	hub      *device.Hub
	settings sketch.Settings
	origins  []string
}

func NewHandler(hub *device.Hub, settings sketch.Settings, origins []string) *Handler {
	return &Handler{hub: hub, settings: settings, origins: origins}
}

// Router returns the HTTP routes for the sketch server.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()

	r.Use(Recovery)
	r.Use(Logger)

	r.HandleFunc("/health", h.Health).Methods("GET")

	r.HandleFunc("/sessions", h.ListSessions).Methods("GET")
	r.HandleFunc("/sessions/{sessionId}/scene", h.GetScene).Methods("GET")
	r.HandleFunc("/sessions/{sessionId}/undo", h.Undo).Methods("POST")
	r.HandleFunc("/sessions/{sessionId}/redo", h.Redo).Methods("POST")

	r.HandleFunc("/ws/sessions", h.ServeWS)

	return r
}

type historyResponse struct {
	Applied bool           `json:"applied"`
	History sketch.History `json:"history"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"sessions": h.hub.SessionIDs()})
}

func (h *Handler) GetScene(w http.ResponseWriter, r *http.Request) {
	client, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var resp struct {
		Scene   scene.Snapshot `json:"scene"`
		History sketch.History `json:"history"`
	}
	if err := client.Do(func(s *sketch.Session) error {
		resp.Scene = s.Snapshot()
		resp.History = s.History()
		return nil
	}); err != nil {
		slog.Error("read scene failed", "session", client.SessionID(), "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Undo(w http.ResponseWriter, r *http.Request) {
	h.history(w, r, (*device.Client).Undo)
}

func (h *Handler) Redo(w http.ResponseWriter, r *http.Request) {
	h.history(w, r, (*device.Client).Redo)
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request, op func(*device.Client) (bool, error)) {
	client, ok := h.lookup(w, r)
	if !ok {
		return
	}

	applied, err := op(client)
	if err != nil {
		slog.Error("history operation failed", "session", client.SessionID(), "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	var history sketch.History
	if err := client.Do(func(s *sketch.Session) error {
		history = s.History()
		return nil
	}); err != nil {
		slog.Error("read history failed", "session", client.SessionID(), "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, historyResponse{Applied: applied, History: history})
}

// ServeWS upgrades the request and runs a new sketch session for the device
// until the connection closes.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.origins,
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	clientID := uuid.New().String()
	client := device.NewClient(h.hub, conn, clientID, h.settings, slog.Default())

	h.hub.Register(client)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go client.WritePump(ctx)
	client.ReadPump(ctx)
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) (*device.Client, bool) {
	sessionID := mux.Vars(r)["sessionId"]
	if err := typeid.Validate(sessionID, typeid.PrefixSession); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid session id"})
		return nil, false
	}

	client, ok := h.hub.Lookup(sessionID)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return nil, false
	}
	return client, true
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
