package v1

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencampus-id/guestbook-api/internal/broker"
	"github.com/opencampus-id/guestbook-api/internal/config"
	"github.com/opencampus-id/guestbook-api/internal/domain"
	"github.com/opencampus-id/guestbook-api/internal/service"
)

type mockDisplayEventService struct {
	EventService
}

func (m *mockDisplayEventService) GetEvent(_ context.Context, id uint) (domain.EventWithStats, error) {
	if id != 7 {
		return domain.EventWithStats{}, service.ErrEventNotFound
	}

	return domain.EventWithStats{Event: domain.Event{ID: 7, Slug: "open-house-2026"}}, nil
}

func (m *mockDisplayEventService) GetEventBySlug(_ context.Context, slug string) (domain.Event, error) {
	if slug != "open-house-2026" {
		return domain.Event{}, service.ErrEventNotFound
	}

	return domain.Event{ID: 7, Slug: slug}, nil
}

func newDisplaySocket(t *testing.T, query string) (*broker.Hub, *websocket.Conn) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hub := broker.NewHub()
	handler := NewDisplayHandler(hub, &mockDisplayEventService{}, &config.DisplayConfig{
		RevealIntervalSeconds: 15,
		BacklogPageSize:       1000,
	})

	router := gin.New()
	router.GET("/ws/display", handler.HandleDisplaySocket)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/display"+query, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return hub, conn
}

func readFrame(t *testing.T, conn *websocket.Conn) displayFrame {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var frame displayFrame
	require.NoError(t, conn.ReadJSON(&frame))

	return frame
}

func waitForRoomSize(t *testing.T, hub *broker.Hub, eventID uint, size int) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for hub.RoomSize(eventID) != size {
		if time.Now().After(deadline) {
			t.Fatalf("room %v never reached size %v", eventID, size)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestDisplaySocket_JoinBroadcastLeave(t *testing.T) {
	hub, conn := newDisplaySocket(t, "")

	require.NoError(t, conn.WriteJSON(map[string]interface{}{"action": "join-event", "event_id": 7}))

	joined := readFrame(t, conn)
	assert.Equal(t, "joined", joined.Type)
	data, ok := joined.Data.(map[string]interface{})
	require.True(t, ok)
	assert.EqualValues(t, 7, data["event_id"])
	assert.EqualValues(t, 15, data["reveal_interval_seconds"])

	waitForRoomSize(t, hub, 7, 1)

	hub.Broadcast(7, broker.Notification{ID: 42, GuestName: "Citra", EventSlug: "open-house-2026"})

	frame := readFrame(t, conn)
	assert.Equal(t, "new-attendance", frame.Type)
	payload, ok := frame.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Citra", payload["guest_name"])

	require.NoError(t, conn.WriteJSON(map[string]interface{}{"action": "leave-event", "event_id": 7}))
	left := readFrame(t, conn)
	assert.Equal(t, "left", left.Type)

	waitForRoomSize(t, hub, 7, 0)
}

func TestDisplaySocket_SlugQueryAutoJoins(t *testing.T) {
	hub, conn := newDisplaySocket(t, "?slug=open-house-2026")

	joined := readFrame(t, conn)
	assert.Equal(t, "joined", joined.Type)

	waitForRoomSize(t, hub, 7, 1)
}

func TestDisplaySocket_UnknownEvent(t *testing.T) {
	_, conn := newDisplaySocket(t, "")

	require.NoError(t, conn.WriteJSON(map[string]interface{}{"action": "join-event", "event_id": 99}))

	frame := readFrame(t, conn)
	assert.Equal(t, "error", frame.Type)
}

func TestDisplaySocket_UnknownAction(t *testing.T) {
	_, conn := newDisplaySocket(t, "")

	require.NoError(t, conn.WriteJSON(map[string]interface{}{"action": "shout"}))

	frame := readFrame(t, conn)
	assert.Equal(t, "error", frame.Type)
}

func TestDisplaySocket_DisconnectCleansRooms(t *testing.T) {
	hub, conn := newDisplaySocket(t, "?slug=open-house-2026")

	readFrame(t, conn)
	waitForRoomSize(t, hub, 7, 1)

	conn.Close()

	waitForRoomSize(t, hub, 7, 0)
}
