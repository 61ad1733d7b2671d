package core

import (
	"context"
	"testing"
	"time"

	"frontdesk/pkg/domain"
)

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) set(date, clock string) {
	at, err := ParseInstant(date, clock, time.UTC)
	if err != nil {
		panic(err)
	}
	c.now = at
}

func newTestClock(date, clock string) *testClock {
	c := &testClock{}
	c.set(date, clock)
	return c
}

func newTestService(t *testing.T, clock *testClock, rooms ...string) *Service {
	t.Helper()
	svc := NewInMemoryService(WithClock(clock))
	for _, id := range rooms {
		if _, _, err := svc.AddRoom(context.Background(), domain.Room{Base: domain.Base{ID: id}, Name: "Room " + id}); err != nil {
			t.Fatalf("add room %s: %v", id, err)
		}
	}
	return svc
}

func mustRoom(t *testing.T, svc *Service, id string) domain.Room {
	t.Helper()
	room, err := svc.Room(id)
	if err != nil {
		t.Fatalf("room %s: %v", id, err)
	}
	return room
}

func assertConsistent(t *testing.T, svc *Service) {
	t.Helper()
	for _, room := range svc.Rooms() {
		if msg := room.ConsistencyError(); msg != "" {
			t.Fatalf("room %s inconsistent: %s", room.ID, msg)
		}
	}
}

func ptr[T any](v T) *T { return &v }
