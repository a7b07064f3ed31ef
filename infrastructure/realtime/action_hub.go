package realtime

import (
	"encoding/json"
	"net/http"
	"sync"

	"content-platform/domain/model"

	"github.com/gin-gonic/gin"
)

// ActionStatusEvent represents an SSE payload for action lifecycle changes.
type ActionStatusEvent struct {
	Type      string           `json:"type"`
	ActionID  string           `json:"action_id"`
	TeamID    string           `json:"team_id"`
	Action    model.ActionType `json:"action_type"`
	Status    string           `json:"status"`
	Approved  bool             `json:"approved"`
	Revisions int              `json:"revisions"`
}

// Hub maintains per-user subscribers listening for action status events.
type Hub struct {
	mu    sync.RWMutex
	users map[string]map[chan ActionStatusEvent]struct{}
}

func NewActionHub() *Hub {
	return &Hub{users: make(map[string]map[chan ActionStatusEvent]struct{})}
}

// Serve registers an SSE stream for the authenticated user (user_id set by middleware).
func (h *Hub) Serve(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.Status(http.StatusUnauthorized)
		return
	}
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // disable nginx buffering

	ch := make(chan ActionStatusEvent, 8)
	h.addSubscriber(userID, ch)
	defer h.removeSubscriber(userID, ch)

	_, _ = c.Writer.Write([]byte(":ok\n\n"))
	c.Writer.Flush()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case evt := <-ch:
			data, _ := json.Marshal(evt)
			_, _ = c.Writer.Write([]byte("event: action_status\n"))
			_, _ = c.Writer.Write([]byte("data: "))
			_, _ = c.Writer.Write(data)
			_, _ = c.Writer.Write([]byte("\n\n"))
			c.Writer.Flush()
		}
	}
}

func (h *Hub) addSubscriber(userID string, ch chan ActionStatusEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.users[userID] == nil {
		h.users[userID] = make(map[chan ActionStatusEvent]struct{})
	}
	h.users[userID][ch] = struct{}{}
}

func (h *Hub) removeSubscriber(userID string, ch chan ActionStatusEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if subs := h.users[userID]; subs != nil {
		delete(subs, ch)
		close(ch)
		if len(subs) == 0 {
			delete(h.users, userID)
		}
	}
}

// BroadcastActionStatus notifies every stream of the user who created the action.
func (h *Hub) BroadcastActionStatus(action *model.Action) {
	if action == nil {
		return
	}
	evt := ActionStatusEvent{
		Type:      "action_status",
		ActionID:  action.ID,
		TeamID:    action.TeamID,
		Action:    action.Type,
		Status:    action.Status,
		Approved:  action.Approved,
		Revisions: action.Revisions,
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.users[action.UserID] {
		select { // non-blocking
		case ch <- evt:
		default:
		}
	}
}
