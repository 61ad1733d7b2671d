package core

import (
	"context"

	"frontdesk/pkg/domain"
)

// RoomConsistencyRule blocks commits that leave a room with guest or
// reservation data that does not match its status.
func RoomConsistencyRule() domain.Rule {
	return roomConsistencyRule{}
}

type roomConsistencyRule struct{}

func (roomConsistencyRule) Name() string { return "room_consistency" }

func (r roomConsistencyRule) Evaluate(_ context.Context, _ domain.RuleView, changes []domain.Change) (domain.Result, error) {
	var res domain.Result
	for _, change := range changes {
		if change.Entity != domain.EntityRoom || change.Action == domain.ActionDelete {
			continue
		}
		room, ok := roomFromChange(change.After)
		if !ok {
			continue
		}
		if msg := room.ConsistencyError(); msg != "" {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     r.Name(),
				Severity: domain.SeverityBlock,
				Message:  msg,
				Entity:   domain.EntityRoom,
				EntityID: room.ID,
			})
		}
	}
	return res, nil
}
