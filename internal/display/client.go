package display

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/opencampus-id/guestbook-api/internal/broker"
	"github.com/opencampus-id/guestbook-api/internal/domain"
)

// APIBootstrap loads the initial snapshot from the guestbook API over
// plain HTTP, using the unauthenticated display endpoints.
type APIBootstrap struct {
	BaseURL string
	Client  *http.Client

	mu   sync.Mutex
	slug string
}

func (b *APIBootstrap) httpClient() *http.Client {
	if b.Client != nil {
		return b.Client
	}

	return http.DefaultClient
}

func (b *APIBootstrap) EventBySlug(ctx context.Context, slug string) (domain.Event, error) {
	var event domain.Event
	if err := b.getJSON(ctx, "/api/v1/events/slug/"+url.PathEscape(slug), &event); err != nil {
		return domain.Event{}, err
	}

	b.mu.Lock()
	b.slug = slug
	b.mu.Unlock()

	return event, nil
}

func (b *APIBootstrap) Backlog(ctx context.Context, eventID uint, pageSize int) ([]domain.AttendanceRecord, error) {
	b.mu.Lock()
	slug := b.slug
	b.mu.Unlock()

	if slug == "" {
		return nil, fmt.Errorf("backlog requested before event lookup")
	}

	var body struct {
		Attendances []domain.AttendanceRecord `json:"attendances"`
	}
	path := fmt.Sprintf("/api/v1/events/slug/%v/attendances?per_page=%v", url.PathEscape(slug), pageSize)
	if err := b.getJSON(ctx, path, &body); err != nil {
		return nil, err
	}

	return body.Attendances, nil
}

func (b *APIBootstrap) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.BaseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := b.httpClient().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %v -> %v", path, resp.Status)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// SocketStream is the websocket side of a live display: one connection,
// one event room, frames decoded into broker notifications.
type SocketStream struct {
	URL string

	mu   sync.Mutex
	conn *websocket.Conn
}

func (s *SocketStream) Join(ctx context.Context, eventID uint) (<-chan broker.Notification, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.URL, nil)
	if err != nil {
		return nil, err
	}

	join := map[string]interface{}{"action": "join-event", "event_id": eventID}
	if err = conn.WriteJSON(join); err != nil {
		conn.Close()
		return nil, err
	}

	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()

	ch := make(chan broker.Notification, 64)
	go func() {
		defer close(ch)
		defer conn.Close()

		for {
			var frame struct {
				Type string          `json:"type"`
				Data json.RawMessage `json:"data"`
			}
			if err := conn.ReadJSON(&frame); err != nil {
				return
			}
			if frame.Type != "new-attendance" {
				continue
			}

			var n broker.Notification
			if err := json.Unmarshal(frame.Data, &n); err != nil {
				continue
			}

			select {
			case ch <- n:
			case <-ctx.Done():
				return
			}
		}
	}()

	return ch, nil
}

func (s *SocketStream) Leave(eventID uint) {
	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()

	if conn == nil {
		return
	}

	leave := map[string]interface{}{"action": "leave-event", "event_id": eventID}
	conn.WriteJSON(leave)
	conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	conn.Close()
}
