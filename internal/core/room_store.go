package core

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"frontdesk/pkg/domain"
)

// RoomStore is the keyed collection of current room states. It validates ids
// only; lifecycle rules live in Service.
type RoomStore struct {
	mu    sync.RWMutex
	rooms map[string]domain.Room
	nowFn func() time.Time
}

// NewRoomStore constructs an empty store stamping updates from clock.
func NewRoomStore(clock Clock) *RoomStore {
	if clock == nil {
		clock = SystemClock
	}
	return &RoomStore{
		rooms: make(map[string]domain.Room),
		nowFn: clock.Now,
	}
}

// Add inserts a new room. Zero timestamps are filled from the store clock.
func (s *RoomStore) Add(room domain.Room) error {
	if room.ID == "" {
		return domain.ValidationError{Field: "id", Message: "is required"}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.rooms[room.ID]; exists {
		return domain.ValidationError{Field: "id", Message: fmt.Sprintf("room %s already exists", room.ID)}
	}
	now := s.nowFn()
	if room.CreatedAt.IsZero() {
		room.CreatedAt = now
	}
	if room.UpdatedAt.IsZero() {
		room.UpdatedAt = room.CreatedAt
	}
	s.rooms[room.ID] = room.Clone()
	return nil
}

// Get returns a copy of the room with id.
func (s *RoomStore) Get(id string) (domain.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[id]
	if !ok {
		return domain.Room{}, domain.ErrNotFound{Entity: domain.EntityRoom, ID: id}
	}
	return room.Clone(), nil
}

// All returns copies of every room ordered by id.
func (s *RoomStore) All() []domain.Room {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		out = append(out, room.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of rooms.
func (s *RoomStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}

// Update applies mutator to a copy of the room and stores the result with a
// fresh UpdatedAt. The id and creation time cannot be changed.
func (s *RoomStore) Update(id string, mutator func(*domain.Room) error) (domain.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.rooms[id]
	if !ok {
		return domain.Room{}, domain.ErrNotFound{Entity: domain.EntityRoom, ID: id}
	}
	updated := current.Clone()
	if err := mutator(&updated); err != nil {
		return domain.Room{}, err
	}
	updated.ID = current.ID
	updated.CreatedAt = current.CreatedAt
	updated.UpdatedAt = s.nowFn()
	s.rooms[id] = updated.Clone()
	return updated, nil
}

// Remove deletes the room with id.
func (s *RoomStore) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[id]; !ok {
		return domain.ErrNotFound{Entity: domain.EntityRoom, ID: id}
	}
	delete(s.rooms, id)
	return nil
}

// Replace swaps the whole room set for rooms, keeping their timestamps as given.
// It is used when restoring a snapshot or importing a batch.
func (s *RoomStore) Replace(rooms []domain.Room) {
	next := make(map[string]domain.Room, len(rooms))
	for _, room := range rooms {
		next[room.ID] = room.Clone()
	}
	s.mu.Lock()
	s.rooms = next
	s.mu.Unlock()
}
