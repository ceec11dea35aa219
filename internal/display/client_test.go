package display

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencampus-id/guestbook-api/internal/broker"
)

func TestAPIBootstrap_EventThenBacklog(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/events/slug/open-house-2026":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"id":   7,
				"name": "Campus Open House 2026",
				"slug": "open-house-2026",
			})
		case "/api/v1/events/slug/open-house-2026/attendances":
			assert.Equal(t, "500", r.URL.Query().Get("per_page"))
			json.NewEncoder(w).Encode(map[string]interface{}{
				"attendances": []map[string]interface{}{
					{"id": 2, "guest_name": "Budi Santoso"},
					{"id": 1, "guest_name": "Ana Putri"},
				},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	bootstrap := &APIBootstrap{BaseURL: srv.URL}

	event, err := bootstrap.EventBySlug(context.Background(), "open-house-2026")
	require.NoError(t, err)
	assert.Equal(t, uint(7), event.ID)

	backlog, err := bootstrap.Backlog(context.Background(), event.ID, 500)
	require.NoError(t, err)
	require.Len(t, backlog, 2)
	assert.Equal(t, "Budi Santoso", backlog[0].GuestName)
}

func TestAPIBootstrap_BacklogBeforeLookup(t *testing.T) {
	bootstrap := &APIBootstrap{BaseURL: "http://localhost:0"}

	_, err := bootstrap.Backlog(context.Background(), 7, 100)

	assert.Error(t, err)
}

func TestAPIBootstrap_UnknownSlug(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := (&APIBootstrap{BaseURL: srv.URL}).EventBySlug(context.Background(), "nope")

	assert.Error(t, err)
}

func TestSocketStream_JoinReceivesNotifications(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		var cmd struct {
			Action  string `json:"action"`
			EventID uint   `json:"event_id"`
		}
		require.NoError(t, conn.ReadJSON(&cmd))
		assert.Equal(t, "join-event", cmd.Action)
		assert.Equal(t, uint(7), cmd.EventID)

		conn.WriteJSON(map[string]interface{}{"type": "joined", "data": map[string]interface{}{"event_id": 7}})
		conn.WriteJSON(map[string]interface{}{
			"type": "new-attendance",
			"data": map[string]interface{}{"id": 42, "guest_name": "Citra"},
		})

		// Hold the connection until the client leaves.
		conn.ReadMessage()
	}))
	defer srv.Close()

	stream := &SocketStream{URL: "ws" + strings.TrimPrefix(srv.URL, "http")}

	ch, err := stream.Join(context.Background(), 7)
	require.NoError(t, err)

	var n broker.Notification
	select {
	case n = <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("no notification received")
	}
	assert.Equal(t, uint(42), n.ID)
	assert.Equal(t, "Citra", n.GuestName)

	stream.Leave(7)

	select {
	case _, ok := <-ch:
		assert.False(t, ok, "channel closes after leave")
	case <-time.After(2 * time.Second):
		t.Fatal("channel did not close")
	}
}

func TestSocketStream_DialFailure(t *testing.T) {
	stream := &SocketStream{URL: "ws://localhost:0/ws/display"}

	_, err := stream.Join(context.Background(), 7)

	assert.Error(t, err)
}
