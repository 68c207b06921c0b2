package panel

import (
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"reviewhub/internal/view"
)

const writeWait = 5 * time.Second

type Message struct {
	Type     string             `json:"type"`
	ReviewID int                `json:"review_id"`
	Panel    *view.CommentPanel `json:"panel,omitempty"`
	Error    string             `json:"error,omitempty"`
	At       time.Time          `json:"at"`
}

// RoomKey groups the sessions of one profile looking at one review, so
// every open tab sees the same list.
func RoomKey(profile string, reviewID int) string {
	return profile + "/" + strconv.Itoa(reviewID)
}

type conn struct {
	ws *websocket.Conn
	mu sync.Mutex
}

func (c *conn) write(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteMessage(websocket.TextMessage, payload)
}

type Hub struct {
	mu    sync.Mutex
	rooms map[string]map[*conn]struct{}
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[*conn]struct{})}
}

func (h *Hub) Join(room string, ws *websocket.Conn) *conn {
	c := &conn{ws: ws}
	h.mu.Lock()
	r, ok := h.rooms[room]
	if !ok {
		r = make(map[*conn]struct{})
		h.rooms[room] = r
	}
	r[c] = struct{}{}
	h.mu.Unlock()
	return c
}

func (h *Hub) Leave(room string, c *conn) {
	h.mu.Lock()
	if r, ok := h.rooms[room]; ok {
		delete(r, c)
		if len(r) == 0 {
			delete(h.rooms, room)
		}
	}
	h.mu.Unlock()

	_ = c.ws.Close()
}

// Broadcast writes msg to every session in room and drops the ones that
// fail.
func (h *Hub) Broadcast(room string, msg Message) {
	payload, ok := encode(msg)
	if !ok {
		return
	}

	h.mu.Lock()
	members := make([]*conn, 0, len(h.rooms[room]))
	for c := range h.rooms[room] {
		members = append(members, c)
	}
	h.mu.Unlock()

	for _, c := range members {
		if err := c.write(payload); err != nil {
			h.Leave(room, c)
		}
	}
}

// Send writes msg to one session only.
func (h *Hub) Send(c *conn, msg Message) error {
	payload, ok := encode(msg)
	if !ok {
		return nil
	}
	return c.write(payload)
}

func (h *Hub) Sessions(room string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[room])
}

func encode(msg Message) ([]byte, bool) {
	if msg.At.IsZero() {
		msg.At = time.Now().UTC()
	}
	b, err := json.Marshal(msg)
	if err != nil {
		return nil, false
	}
	return b, true
}
