// Package domain defines the front-desk entities, value types, error taxonomy
// and rule evaluation primitives used by frontdesk.
package domain

import (
	"strings"
	"time"
)

// EntityType identifies the type of record stored in the core domain.
type EntityType string

// Supported entity type identifiers used in Change records and persistence buckets.
const (
	// EntityRoom identifies a physical room.
	EntityRoom EntityType = "room"
	// EntityMovement identifies a room movement (audit) record.
	EntityMovement EntityType = "movement"
	// EntityStockItem identifies an inventory item.
	EntityStockItem EntityType = "stock_item"
	// EntityStockMovement identifies a stock movement record.
	EntityStockMovement EntityType = "stock_movement"
)

// RoomStatus enumerates the occupancy lifecycle states of a room.
type RoomStatus string

// Canonical room statuses. A room is created Vacant and cycles indefinitely.
const (
	StatusVacant   RoomStatus = "vacant"
	StatusOccupied RoomStatus = "occupied"
	StatusCleaning RoomStatus = "cleaning"
	StatusReserved RoomStatus = "reserved"
)

// RoomStatuses lists every valid status in display order.
var RoomStatuses = []RoomStatus{StatusVacant, StatusReserved, StatusOccupied, StatusCleaning}

// Valid reports whether s is one of the canonical statuses.
func (s RoomStatus) Valid() bool {
	switch s {
	case StatusVacant, StatusOccupied, StatusCleaning, StatusReserved:
		return true
	}
	return false
}

// Label returns the human readable name used in observations.
func (s RoomStatus) Label() string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

// ParseRoomStatus accepts canonical values case-insensitively.
func ParseRoomStatus(raw string) (RoomStatus, bool) {
	s := RoomStatus(strings.ToLower(strings.TrimSpace(raw)))
	return s, s.Valid()
}

// Date and time layouts used by reservations, stamps and movement records.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Base contains common fields for mutable domain records.
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Reservation is a future-dated hold on a room.
type Reservation struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

// Guest identifies the person occupying a room.
type Guest struct {
	Name     string `json:"name"`
	Document string `json:"document"`
}

// Stamp marks a check-in or check-out moment of the current stay.
type Stamp struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

// Room is the unit of physical inventory tracked by the front desk.
//
// Reservation is set only while Reserved and Guest only while Occupied.
type Room struct {
	Base
	Name          string       `json:"name"`
	PricePerNight *float64     `json:"pricePerNight,omitempty"`
	Status        RoomStatus   `json:"status"`
	Reservation   *Reservation `json:"reservation,omitempty"`
	Guest         *Guest       `json:"guest,omitempty"`
	CheckIn       *Stamp       `json:"checkIn,omitempty"`
	CheckOut      *Stamp       `json:"checkOut,omitempty"`
}

// Clone returns a deep copy of the room.
func (r Room) Clone() Room {
	cp := r
	if r.PricePerNight != nil {
		v := *r.PricePerNight
		cp.PricePerNight = &v
	}
	if r.Reservation != nil {
		v := *r.Reservation
		cp.Reservation = &v
	}
	if r.Guest != nil {
		v := *r.Guest
		cp.Guest = &v
	}
	if r.CheckIn != nil {
		v := *r.CheckIn
		cp.CheckIn = &v
	}
	if r.CheckOut != nil {
		v := *r.CheckOut
		cp.CheckOut = &v
	}
	return cp
}

// ConsistencyError reports why the room breaks the status/data pairing, or
// the empty string when the room is consistent.
func (r Room) ConsistencyError() string {
	switch r.Status {
	case StatusReserved:
		if r.Reservation == nil {
			return "reserved room has no reservation"
		}
		if r.Guest != nil {
			return "reserved room carries a guest"
		}
	case StatusOccupied:
		if r.Guest == nil {
			return "occupied room has no guest"
		}
		if r.Reservation != nil {
			return "occupied room carries a reservation"
		}
	case StatusVacant, StatusCleaning:
		if r.Guest != nil || r.Reservation != nil {
			return string(r.Status) + " room carries guest or reservation data"
		}
	default:
		return "unknown status " + string(r.Status)
	}
	return ""
}

// MovementType is the closed set of room movement kinds.
type MovementType string

// Movement types recorded by the lifecycle engine.
const (
	MovementCheckIn      MovementType = "check_in"
	MovementCheckOut     MovementType = "check_out"
	MovementStatusChange MovementType = "status_change"
	MovementReservation  MovementType = "reservation"
	MovementCancellation MovementType = "cancellation"
)

// MovementTypes lists every movement type.
var MovementTypes = []MovementType{MovementCheckIn, MovementCheckOut, MovementStatusChange, MovementReservation, MovementCancellation}

// Valid reports whether t is a known movement type.
func (t MovementType) Valid() bool {
	for _, known := range MovementTypes {
		if t == known {
			return true
		}
	}
	return false
}

// MovementRecord is one immutable audit entry describing a room transition.
// RoomName is a snapshot taken when the event happened.
type MovementRecord struct {
	ID             int64        `json:"id"`
	RoomID         string       `json:"roomId"`
	RoomName       string       `json:"roomName"`
	Type           MovementType `json:"movementType"`
	PreviousStatus *RoomStatus  `json:"previousStatus,omitempty"`
	NewStatus      RoomStatus   `json:"newStatus"`
	Guest          *Guest       `json:"guestSnapshot,omitempty"`
	Date           string       `json:"date"`
	Time           string       `json:"time"`
	Observations   string       `json:"observations"`
	Actor          string       `json:"actor"`
}

// Clone returns a deep copy of the record.
func (m MovementRecord) Clone() MovementRecord {
	cp := m
	if m.PreviousStatus != nil {
		v := *m.PreviousStatus
		cp.PreviousStatus = &v
	}
	if m.Guest != nil {
		v := *m.Guest
		cp.Guest = &v
	}
	return cp
}

// StockMovementKind enumerates stock adjustments.
type StockMovementKind string

// Stock movement kinds: entries add, exits subtract, adjustments set a signed delta.
const (
	StockIn     StockMovementKind = "in"
	StockOut    StockMovementKind = "out"
	StockAdjust StockMovementKind = "adjust"
)

// Valid reports whether k is a known stock movement kind.
func (k StockMovementKind) Valid() bool {
	switch k {
	case StockIn, StockOut, StockAdjust:
		return true
	}
	return false
}

// StockItem is an inventory item whose quantity is adjusted through movements.
type StockItem struct {
	Base
	Name     string  `json:"name"`
	Unit     string  `json:"unit,omitempty"`
	Quantity float64 `json:"quantity"`
}

// StockMovement records one adjustment with before/after quantity snapshots.
type StockMovement struct {
	ID       int64             `json:"id"`
	ItemID   string            `json:"itemId"`
	ItemName string            `json:"itemName"`
	Kind     StockMovementKind `json:"kind"`
	Quantity float64           `json:"quantity"`
	Before   float64           `json:"before"`
	After    float64           `json:"after"`
	Date     string            `json:"date"`
	Time     string            `json:"time"`
	Reason   string            `json:"reason,omitempty"`
	Actor    string            `json:"actor"`
}

// Change describes a mutation staged during a transaction.
type Change struct {
	Entity EntityType
	Action Action
	Before any
	After  any
}

// Action indicates the type of modification performed.
type Action string

// Change actions enumerate supported mutations captured in a transaction.
const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	// ActionAppend marks a new ledger entry.
	ActionAppend Action = "append"
)
