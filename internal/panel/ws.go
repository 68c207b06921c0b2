package panel

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"reviewhub/internal/profile"
	"reviewhub/internal/view"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

var ErrUnknownAction = errors.New("unknown action")

type incomingAction struct {
	Type string `json:"type"`
	Text string `json:"text"`
	CID  string `json:"cid"`
}

// DecodeAction reads one client frame. A frame that is not JSON is taken
// as the text of a new comment.
func DecodeAction(payload []byte) (Action, error) {
	var in incomingAction
	if err := json.Unmarshal(payload, &in); err != nil {
		return Post{Text: string(payload)}, nil
	}
	switch strings.ToLower(strings.TrimSpace(in.Type)) {
	case "post":
		return Post{Text: in.Text}, nil
	case "upvote":
		return Upvote{CID: in.CID}, nil
	case "downvote":
		return Downvote{CID: in.CID}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownAction, in.Type)
}

// WSHandler serves /api/reviews/:id/panel/ws. Frames from one connection
// are handled strictly in arrival order; each applied action is broadcast
// to every session of the same profile and review.
func WSHandler(svc *Service, hub *Hub, known func(id int) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil || !known(id) {
			c.JSON(http.StatusNotFound, gin.H{"error": view.NotFoundMessage})
			return
		}
		pid := profile.ID(c)

		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}

		ctx := c.Request.Context()
		p := svc.Panel(pid, id)
		room := RoomKey(pid, id)
		conn := hub.Join(room, ws)
		svc.Metrics.SessionOpened()
		svc.Logger.Debug("panel session opened", zap.Int("review_id", id))

		initial := p.View(ctx)
		_ = hub.Send(conn, Message{Type: "panel", ReviewID: id, Panel: &initial})

		for {
			_, payload, err := ws.ReadMessage()
			if err != nil {
				break
			}

			action, err := DecodeAction(payload)
			if err != nil {
				_ = hub.Send(conn, Message{Type: "error", ReviewID: id, Error: err.Error()})
				continue
			}

			next, changed, err := p.Apply(ctx, action)
			if err != nil {
				svc.Logger.Warn("panel action failed", zap.String("action", action.Name()), zap.Error(err))
				_ = hub.Send(conn, Message{Type: "error", ReviewID: id, Error: "could not save comments"})
				continue
			}

			// no-ops (empty post, unknown cid) concern this session only
			if !changed {
				_ = hub.Send(conn, Message{Type: "panel", ReviewID: id, Panel: &next})
				continue
			}
			hub.Broadcast(room, Message{Type: "panel", ReviewID: id, Panel: &next})
		}

		hub.Leave(room, conn)
		svc.Metrics.SessionClosed()
		svc.Logger.Debug("panel session closed", zap.Int("review_id", id))
	}
}
