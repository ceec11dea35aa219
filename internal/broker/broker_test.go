package broker

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSubscriber struct {
	id string

	mu       sync.Mutex
	received []Notification
	sendErr  error
}

func (s *stubSubscriber) ID() string {
	return s.id
}

func (s *stubSubscriber) Send(n Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sendErr != nil {
		return s.sendErr
	}
	s.received = append(s.received, n)

	return nil
}

func (s *stubSubscriber) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.received)
}

func TestHub_BroadcastReachesOnlyRoomMembers(t *testing.T) {
	hub := NewHub()
	a := &stubSubscriber{id: "a"}
	b := &stubSubscriber{id: "b"}
	other := &stubSubscriber{id: "c"}

	hub.Join(7, a)
	hub.Join(7, b)
	hub.Join(8, other)

	hub.Broadcast(7, Notification{ID: 1, GuestName: "Ana Putri"})

	require.Equal(t, 1, a.count())
	require.Equal(t, 1, b.count())
	assert.Equal(t, 0, other.count())
	assert.Equal(t, "Ana Putri", a.received[0].GuestName)
}

func TestHub_JoinIsIdempotent(t *testing.T) {
	hub := NewHub()
	sub := &stubSubscriber{id: "a"}

	hub.Join(7, sub)
	hub.Join(7, sub)

	require.Equal(t, 1, hub.RoomSize(7))

	hub.Broadcast(7, Notification{ID: 1})

	// At most once per broadcast call, even after a double join.
	assert.Equal(t, 1, sub.count())
}

func TestHub_LeaveStopsDelivery(t *testing.T) {
	hub := NewHub()
	sub := &stubSubscriber{id: "a"}

	hub.Join(7, sub)
	hub.Leave(7, "a")
	hub.Broadcast(7, Notification{ID: 1})

	assert.Equal(t, 0, sub.count())
	assert.Equal(t, 0, hub.RoomSize(7))
}

func TestHub_LeaveWhenNotMemberIsNoop(t *testing.T) {
	hub := NewHub()

	hub.Leave(7, "ghost")

	assert.Equal(t, 0, hub.RoomSize(7))
}

func TestHub_DisconnectLeavesAllRooms(t *testing.T) {
	hub := NewHub()
	sub := &stubSubscriber{id: "a"}

	hub.Join(7, sub)
	hub.Join(8, sub)
	hub.Disconnect("a")

	hub.Broadcast(7, Notification{ID: 1})
	hub.Broadcast(8, Notification{ID: 2})

	assert.Equal(t, 0, sub.count())
	assert.Equal(t, 0, hub.RoomSize(7))
	assert.Equal(t, 0, hub.RoomSize(8))
}

func TestHub_BroadcastToEmptyRoomIsNoop(t *testing.T) {
	hub := NewHub()

	// Must not panic or error.
	hub.Broadcast(42, Notification{ID: 1})
}

func TestHub_SendFailureDoesNotAffectOthers(t *testing.T) {
	hub := NewHub()
	broken := &stubSubscriber{id: "broken", sendErr: errors.New("queue full")}
	healthy := &stubSubscriber{id: "healthy"}

	hub.Join(7, broken)
	hub.Join(7, healthy)

	hub.Broadcast(7, Notification{ID: 1})

	assert.Equal(t, 1, healthy.count())
}

func TestHub_ConcurrentJoinLeaveDuringBroadcast(t *testing.T) {
	hub := NewHub()
	sub := &stubSubscriber{id: "stable"}
	hub.Join(7, sub)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			churner := &stubSubscriber{id: string(rune('A' + i%26))}
			hub.Join(7, churner)
			hub.Leave(7, churner.ID())
		}(i)
		go func(i int) {
			defer wg.Done()
			hub.Broadcast(7, Notification{ID: uint(i)})
		}(i)
	}
	wg.Wait()

	// The stable member saw every broadcast exactly once.
	assert.Equal(t, 50, sub.count())
}
