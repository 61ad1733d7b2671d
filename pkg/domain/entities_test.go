package domain

import (
	"encoding/json"
	"fmt"
	"testing"
)

func TestRoomCloneIsDeep(t *testing.T) {
	price := 80.0
	room := Room{
		Base:          Base{ID: "R101"},
		Name:          "Suite",
		PricePerNight: &price,
		Status:        StatusOccupied,
		Guest:         &Guest{Name: "Ana", Document: "1"},
		CheckIn:       &Stamp{Date: "2024-02-01", Time: "14:00"},
	}
	cp := room.Clone()
	*cp.PricePerNight = 99
	cp.Guest.Name = "Other"
	cp.CheckIn.Time = "15:00"
	if *room.PricePerNight != 80 || room.Guest.Name != "Ana" || room.CheckIn.Time != "14:00" {
		t.Fatalf("clone shares pointers with original: %+v", room)
	}
}

func TestRoomConsistency(t *testing.T) {
	cases := []struct {
		name string
		room Room
		ok   bool
	}{
		{"vacant empty", Room{Status: StatusVacant}, true},
		{"cleaning with guest", Room{Status: StatusCleaning, Guest: &Guest{Name: "x"}}, false},
		{"reserved", Room{Status: StatusReserved, Reservation: &Reservation{Date: "2024-02-01", Time: "14:00"}}, true},
		{"reserved missing reservation", Room{Status: StatusReserved}, false},
		{"reserved with guest", Room{Status: StatusReserved, Reservation: &Reservation{}, Guest: &Guest{}}, false},
		{"occupied", Room{Status: StatusOccupied, Guest: &Guest{Name: "x"}}, true},
		{"occupied missing guest", Room{Status: StatusOccupied}, false},
		{"occupied with reservation", Room{Status: StatusOccupied, Guest: &Guest{}, Reservation: &Reservation{}}, false},
		{"unknown", Room{Status: "broken"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			msg := tc.room.ConsistencyError()
			if (msg == "") != tc.ok {
				t.Fatalf("expected ok=%v, got %q", tc.ok, msg)
			}
		})
	}
}

func TestParseRoomStatus(t *testing.T) {
	if s, ok := ParseRoomStatus(" Cleaning "); !ok || s != StatusCleaning {
		t.Fatalf("expected cleaning, got %q %v", s, ok)
	}
	if _, ok := ParseRoomStatus("dirty"); ok {
		t.Fatalf("expected unknown status to fail")
	}
	if StatusVacant.Label() != "Vacant" || RoomStatus("").Label() != "" {
		t.Fatalf("unexpected labels")
	}
}

func TestMovementRecordJSONFieldNames(t *testing.T) {
	prev := StatusVacant
	rec := MovementRecord{ID: 3, RoomID: "R101", Type: MovementReservation, PreviousStatus: &prev, NewStatus: StatusReserved, Date: "2024-02-01"}
	raw, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"id", "roomId", "movementType", "previousStatus", "newStatus", "date"} {
		if _, ok := fields[key]; !ok {
			t.Fatalf("missing json field %q in %s", key, raw)
		}
	}
	cp := rec.Clone()
	*cp.PreviousStatus = StatusCleaning
	if *rec.PreviousStatus != StatusVacant {
		t.Fatalf("clone shares previous status pointer")
	}
}

func TestMovementAndStockKinds(t *testing.T) {
	for _, mt := range MovementTypes {
		if !mt.Valid() {
			t.Fatalf("expected %s valid", mt)
		}
	}
	if MovementType("refund").Valid() {
		t.Fatalf("expected unknown movement type invalid")
	}
	if !StockOut.Valid() || StockMovementKind("gift").Valid() {
		t.Fatalf("unexpected stock kind validity")
	}
}

func TestErrorHelpers(t *testing.T) {
	nf := fmt.Errorf("wrap: %w", ErrNotFound{Entity: EntityRoom, ID: "R9"})
	if !IsNotFound(nf) || IsValidation(nf) || IsInvalidTransition(nf) {
		t.Fatalf("unexpected classification for %v", nf)
	}
	if nf.Error() != "wrap: room R9 not found" {
		t.Fatalf("unexpected message %q", nf.Error())
	}
	it := InvalidTransitionError{RoomID: "R1", From: StatusReserved, To: StatusVacant, Reason: "reservation imminent"}
	if !IsInvalidTransition(it) {
		t.Fatalf("expected invalid transition")
	}
	if (ValidationError{Message: "empty batch"}).Error() != "validation: empty batch" {
		t.Fatalf("unexpected validation message")
	}
	if !IsValidation(ValidationError{Field: "date", Message: "required"}) {
		t.Fatalf("expected validation error")
	}
}

func TestSnapshotEmpty(t *testing.T) {
	if !(Snapshot{}).Empty() {
		t.Fatalf("expected empty snapshot")
	}
	if (Snapshot{Rooms: []Room{{}}}).Empty() {
		t.Fatalf("expected non-empty snapshot")
	}
	if (Snapshot{Sequences: Sequences{Movements: 2}}).Empty() {
		t.Fatalf("expected a snapshot with issued ids to be non-empty")
	}
}
