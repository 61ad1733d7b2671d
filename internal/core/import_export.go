package core

import (
	"context"
	"fmt"
	"strings"

	"frontdesk/pkg/domain"
)

// ImportRejection describes one record refused by an import.
type ImportRejection struct {
	Index  int    `json:"index"`
	ID     string `json:"id,omitempty"`
	Reason string `json:"reason"`
}

// ImportReport summarises an import batch.
type ImportReport struct {
	Accepted int               `json:"accepted"`
	Rejected []ImportRejection `json:"rejected,omitempty"`
}

// ExportRooms returns every room as plain records.
func (s *Service) ExportRooms() []domain.Room {
	return s.rooms.All()
}

// ExportMovements returns every movement record in append order.
func (s *Service) ExportMovements() []domain.MovementRecord {
	return s.ledger.All()
}

// ImportRooms replaces the room set with the valid records of rooms. Invalid
// records are reported and skipped; the call fails only when none is valid,
// in which case the current rooms are kept.
func (s *Service) ImportRooms(ctx context.Context, rooms []domain.Room) (ImportReport, error) {
	var (
		report ImportReport
		valid  []domain.Room
	)
	seen := make(map[string]bool, len(rooms))
	now := s.clock.Now()
	for i, room := range rooms {
		room = normaliseImportedRoom(room)
		if err := validateRoomFields(room); err != nil {
			report.Rejected = append(report.Rejected, ImportRejection{Index: i, ID: room.ID, Reason: err.Error()})
			continue
		}
		if seen[room.ID] {
			report.Rejected = append(report.Rejected, ImportRejection{Index: i, ID: room.ID, Reason: "duplicate id in batch"})
			continue
		}
		seen[room.ID] = true
		if room.CreatedAt.IsZero() {
			room.CreatedAt = now
		}
		if room.UpdatedAt.IsZero() {
			room.UpdatedAt = room.CreatedAt
		}
		valid = append(valid, room)
	}
	report.Accepted = len(valid)
	err := s.importBatch(ctx, "import_rooms", len(valid), func() {
		s.rooms.Replace(valid)
	})
	if err != nil {
		return report, err
	}
	s.logger.Info("rooms imported", "accepted", report.Accepted, "rejected", len(report.Rejected))
	return report, nil
}

// ImportMovements merges records by id. Records already in the ledger are
// reported as duplicates and left untouched; the ledger is never rewritten.
func (s *Service) ImportMovements(ctx context.Context, records []domain.MovementRecord) (ImportReport, error) {
	var (
		report ImportReport
		valid  []domain.MovementRecord
	)
	seen := make(map[int64]bool, len(records))
	for i, rec := range records {
		rec.RoomID = strings.TrimSpace(rec.RoomID)
		rec.Date = strings.TrimSpace(rec.Date)
		var reason string
		switch {
		case rec.ID <= 0:
			reason = "id is required"
		case rec.RoomID == "":
			reason = "roomId is required"
		case rec.Date == "":
			reason = "date is required"
		case seen[rec.ID]:
			reason = "duplicate id in batch"
		}
		if reason != "" {
			report.Rejected = append(report.Rejected, ImportRejection{Index: i, ID: movementRef(rec.ID), Reason: reason})
			continue
		}
		seen[rec.ID] = true
		valid = append(valid, rec.Clone())
	}
	var skipped []int64
	err := s.importBatch(ctx, "import_movements", len(valid), func() {
		skipped = s.ledger.Restore(valid)
	})
	if err != nil {
		return report, err
	}
	for _, id := range skipped {
		report.Rejected = append(report.Rejected, ImportRejection{ID: movementRef(id), Index: -1, Reason: "id already recorded"})
	}
	report.Accepted = len(valid) - len(skipped)
	s.logger.Info("movements imported", "accepted", report.Accepted, "rejected", len(report.Rejected))
	return report, nil
}

func (s *Service) importBatch(ctx context.Context, op string, valid int, apply func()) (err error) {
	_, _, err = s.runInTransaction(ctx, op, func(*Transaction) error {
		if valid == 0 {
			return domain.ValidationError{Message: "no valid records in batch"}
		}
		apply()
		return nil
	})
	return err
}

func normaliseImportedRoom(room domain.Room) domain.Room {
	room = room.Clone()
	room.ID = strings.TrimSpace(room.ID)
	room.Name = strings.TrimSpace(room.Name)
	if status, ok := domain.ParseRoomStatus(string(room.Status)); ok {
		room.Status = status
	}
	if room.Status != domain.StatusOccupied {
		room.Guest = nil
	}
	if room.Status != domain.StatusReserved {
		room.Reservation = nil
	}
	return room
}

func movementRef(id int64) string {
	if id <= 0 {
		return ""
	}
	return fmt.Sprint(id)
}
