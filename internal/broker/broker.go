// Package broker fans out new check-in notifications to the live guest
// displays subscribed to an event's room. Membership is process-local and
// ephemeral; nothing here survives a restart and nothing is redelivered
// after a disconnect.
package broker

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Notification is the lightweight payload pushed to displays after a
// successful check-in. It is a subset of the stored record plus the
// denormalized event name and slug.
type Notification struct {
	ID          uint      `json:"id"`
	GuestName   string    `json:"guest_name"`
	Institution string    `json:"institution"`
	Position    string    `json:"position,omitempty"`
	Category    string    `json:"category"`
	ArrivalTime time.Time `json:"arrival_time"`
	EventName   string    `json:"event_name"`
	EventSlug   string    `json:"event_slug"`
}

// Subscriber is one connected display. Send must not block: implementations
// queue onto a buffered channel and report an error when the queue is full.
type Subscriber interface {
	ID() string
	Send(n Notification) error
}

// Hub owns the event-room membership map. Callers interact only through
// Join/Leave/Disconnect/Broadcast; the map is never handed out.
type Hub struct {
	mu    sync.RWMutex
	rooms map[uint]map[string]Subscriber
	conns map[string]map[uint]struct{}
}

func NewHub() *Hub {
	return &Hub{
		rooms: make(map[uint]map[string]Subscriber),
		conns: make(map[string]map[uint]struct{}),
	}
}

// Join adds the subscriber to the room for eventID. Joining a room twice
// has no additional effect.
func (h *Hub) Join(eventID uint, sub Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[eventID]
	if !ok {
		room = make(map[string]Subscriber)
		h.rooms[eventID] = room
	}
	room[sub.ID()] = sub

	joined, ok := h.conns[sub.ID()]
	if !ok {
		joined = make(map[uint]struct{})
		h.conns[sub.ID()] = joined
	}
	joined[eventID] = struct{}{}
}

// Leave removes the connection from the room. No-op if it is not a member.
func (h *Hub) Leave(eventID uint, connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.leaveLocked(eventID, connID)
}

// Disconnect removes the connection from every room it joined. Called on
// abrupt termination as well as clean shutdown.
func (h *Hub) Disconnect(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for eventID := range h.conns[connID] {
		h.leaveLocked(eventID, connID)
	}
}

// Broadcast delivers the notification to every current member of the
// event's room, at most once each. An empty room is a silent no-op. A
// failed send to one subscriber is logged and does not affect the others.
func (h *Hub) Broadcast(eventID uint, n Notification) {
	// Snapshot the member set so joins and leaves can interleave with
	// delivery without invalidating the iteration.
	h.mu.RLock()
	members := make([]Subscriber, 0, len(h.rooms[eventID]))
	for _, sub := range h.rooms[eventID] {
		members = append(members, sub)
	}
	h.mu.RUnlock()

	for _, sub := range members {
		if err := sub.Send(n); err != nil {
			zap.L().Warn("dropping notification for slow display",
				zap.String("conn_id", sub.ID()),
				zap.Uint("event_id", eventID),
				zap.Uint("attendance_id", n.ID),
				zap.Error(err),
			)
		}
	}
}

// RoomSize reports the current member count for an event's room.
func (h *Hub) RoomSize(eventID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.rooms[eventID])
}

func (h *Hub) leaveLocked(eventID uint, connID string) {
	if room, ok := h.rooms[eventID]; ok {
		delete(room, connID)
		if len(room) == 0 {
			delete(h.rooms, eventID)
		}
	}
	if joined, ok := h.conns[connID]; ok {
		delete(joined, eventID)
		if len(joined) == 0 {
			delete(h.conns, connID)
		}
	}
}
