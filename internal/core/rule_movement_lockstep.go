package core

import (
	"context"
	"fmt"

	"frontdesk/pkg/domain"
)

// MovementLockstepRule blocks commits where a room status change is not
// mirrored by exactly one staged movement, or where a staged movement
// disagrees with the room's before/after status.
func MovementLockstepRule() domain.Rule {
	return movementLockstepRule{}
}

type movementLockstepRule struct{}

func (movementLockstepRule) Name() string { return "movement_lockstep" }

func (r movementLockstepRule) Evaluate(_ context.Context, _ domain.RuleView, changes []domain.Change) (domain.Result, error) {
	type transition struct {
		before, after domain.Room
	}
	updates := make(map[string]transition)
	movements := make(map[string][]domain.MovementRecord)
	for _, change := range changes {
		switch change.Entity {
		case domain.EntityRoom:
			if change.Action != domain.ActionUpdate {
				continue
			}
			before, okBefore := roomFromChange(change.Before)
			after, okAfter := roomFromChange(change.After)
			if okBefore && okAfter {
				updates[after.ID] = transition{before: before, after: after}
			}
		case domain.EntityMovement:
			if rec, ok := movementFromChange(change.After); ok {
				movements[rec.RoomID] = append(movements[rec.RoomID], rec)
			}
		}
	}

	var res domain.Result
	block := func(roomID, msg string) {
		res.Violations = append(res.Violations, domain.Violation{
			Rule:     r.Name(),
			Severity: domain.SeverityBlock,
			Message:  msg,
			Entity:   domain.EntityRoom,
			EntityID: roomID,
		})
	}
	for roomID, recs := range movements {
		t, ok := updates[roomID]
		if !ok {
			block(roomID, "movement staged without a room update")
			continue
		}
		if len(recs) != 1 {
			block(roomID, fmt.Sprintf("%d movements staged for one room update", len(recs)))
			continue
		}
		rec := recs[0]
		if rec.PreviousStatus == nil || *rec.PreviousStatus != t.before.Status || rec.NewStatus != t.after.Status {
			block(roomID, fmt.Sprintf("movement %s does not match room transition %s -> %s", rec.Type, t.before.Status, t.after.Status))
		}
	}
	for roomID, t := range updates {
		if t.before.Status != t.after.Status && len(movements[roomID]) == 0 {
			block(roomID, fmt.Sprintf("status changed %s -> %s without a movement", t.before.Status, t.after.Status))
		}
	}
	return res, nil
}
