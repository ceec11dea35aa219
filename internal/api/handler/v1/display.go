package v1

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/opencampus-id/guestbook-api/internal/broker"
	"github.com/opencampus-id/guestbook-api/internal/config"
	"github.com/opencampus-id/guestbook-api/internal/service"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Adjust this for production!
	},
}

var (
	errSendBufferFull   = errors.New("send buffer full")
	errConnectionClosed = errors.New("connection closed")
)

// displayCommand is what a connected display may send: join or leave an
// event's room, by ID or by slug.
type displayCommand struct {
	Action    string `json:"action"`
	EventID   uint   `json:"event_id,omitempty"`
	EventSlug string `json:"event_slug,omitempty"`
}

// displayFrame is the envelope for everything pushed to a display.
type displayFrame struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// displayClient is one websocket connection registered with the broker.
// Send never blocks; a display that cannot drain its buffer loses frames.
type displayClient struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
}

func (c *displayClient) ID() string {
	return c.id
}

func (c *displayClient) Send(n broker.Notification) error {
	frame, err := json.Marshal(displayFrame{Type: "new-attendance", Data: n})
	if err != nil {
		return err
	}

	return c.enqueue(frame)
}

// The send channel is never closed; the done channel tells both the
// broker and the write pump the connection is gone.
func (c *displayClient) enqueue(frame []byte) error {
	select {
	case <-c.done:
		return errConnectionClosed
	case c.send <- frame:
		return nil
	default:
		return errSendBufferFull
	}
}

type DisplayHandler struct {
	hub      *broker.Hub
	eventSvc EventService
	conf     *config.DisplayConfig
}

func NewDisplayHandler(hub *broker.Hub, eventSvc EventService, conf *config.DisplayConfig) *DisplayHandler {
	return &DisplayHandler{
		hub:      hub,
		eventSvc: eventSvc,
		conf:     conf,
	}
}

// HandleDisplaySocket godoc
// @Summary      Establish the live display WebSocket
// @Description  Displays join per-event rooms and receive a frame for every new check-in. Optional "slug" query joins that event's room immediately.
// @Tags         displays
// @Produce      json
// @Param        slug  query  string  false  "Event slug to join on connect"
// @Success      101  {string}  string  "Switching Protocols to WebSocket"
// @Failure      500  {object}  response.Err
// @Router       /ws/display [get]
func (h *DisplayHandler) HandleDisplaySocket(ctx *gin.Context) {
	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		zap.L().Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &displayClient{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, 256),
		done: make(chan struct{}),
	}

	if slug := ctx.Query("slug"); slug != "" {
		h.joinBySlug(ctx.Request.Context(), client, slug)
	}

	go client.writePump()
	go h.readPump(client)
}

func (h *DisplayHandler) readPump(c *displayClient) {
	defer func() {
		h.hub.Disconnect(c.id)
		close(c.done)
		c.conn.Close()
	}()

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				zap.L().Info("display connection dropped", zap.String("conn_id", c.id), zap.Error(err))
			}
			break
		}

		var cmd displayCommand
		if err = json.Unmarshal(message, &cmd); err != nil {
			c.sendError("invalid message")
			continue
		}

		// The read pump outlives the HTTP handler, so room joins run
		// against the background context.
		switch cmd.Action {
		case "join-event":
			h.handleJoin(context.Background(), c, cmd)
		case "leave-event":
			h.hub.Leave(cmd.EventID, c.id)
			c.sendAck("left", cmd.EventID)
		default:
			c.sendError("unknown action")
		}
	}
}

func (h *DisplayHandler) handleJoin(ctx context.Context, c *displayClient, cmd displayCommand) {
	if cmd.EventSlug != "" {
		h.joinBySlug(ctx, c, cmd.EventSlug)
		return
	}

	if cmd.EventID == 0 {
		c.sendError("event_id or event_slug is required")
		return
	}

	if _, err := h.eventSvc.GetEvent(ctx, cmd.EventID); err != nil {
		if errors.Is(err, service.ErrEventNotFound) {
			c.sendError("event not found")
			return
		}

		zap.L().Error("display join failed", zap.String("conn_id", c.id), zap.Error(err))
		c.sendError("internal error")
		return
	}

	h.hub.Join(cmd.EventID, c)
	h.sendJoined(c, cmd.EventID)
}

func (h *DisplayHandler) joinBySlug(ctx context.Context, c *displayClient, slug string) {
	event, err := h.eventSvc.GetEventBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, service.ErrEventNotFound) {
			c.sendError("event not found")
			return
		}

		zap.L().Error("display join failed", zap.String("conn_id", c.id), zap.Error(err))
		c.sendError("internal error")
		return
	}

	h.hub.Join(event.ID, c)
	h.sendJoined(c, event.ID)
}

// The join ack carries the display tuning so screens follow server-side
// settings instead of hardcoding a cadence.
func (h *DisplayHandler) sendJoined(c *displayClient, eventID uint) {
	frame, _ := json.Marshal(displayFrame{
		Type: "joined",
		Data: map[string]interface{}{
			"event_id":                eventID,
			"reveal_interval_seconds": h.conf.RevealIntervalSeconds,
			"backlog_page_size":       h.conf.BacklogPageSize,
		},
	})
	if err := c.enqueue(frame); err != nil {
		zap.L().Warn("dropping ack for slow display", zap.String("conn_id", c.id))
	}
}

func (c *displayClient) sendAck(frameType string, eventID uint) {
	frame, _ := json.Marshal(displayFrame{
		Type: frameType,
		Data: map[string]uint{"event_id": eventID},
	})
	if err := c.enqueue(frame); err != nil {
		zap.L().Warn("dropping ack for slow display", zap.String("conn_id", c.id))
	}
}

func (c *displayClient) sendError(msg string) {
	frame, _ := json.Marshal(displayFrame{
		Type: "error",
		Data: map[string]string{"message": msg},
	})
	if err := c.enqueue(frame); err != nil {
		zap.L().Warn("dropping error frame for slow display", zap.String("conn_id", c.id))
	}
}

func (c *displayClient) writePump() {
	for {
		select {
		case <-c.done:
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case message := <-c.send:
			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)
			if err = w.Close(); err != nil {
				return
			}
		}
	}
}
