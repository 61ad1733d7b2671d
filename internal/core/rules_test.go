package core

import (
	"context"
	"errors"
	"testing"

	"frontdesk/pkg/domain"
)

type blockEverything struct{}

func (blockEverything) Name() string { return "block_everything" }

func (blockEverything) Evaluate(context.Context, domain.RuleView, []domain.Change) (domain.Result, error) {
	return domain.Result{Violations: []domain.Violation{{Rule: "block_everything", Severity: domain.SeverityBlock, Message: "no"}}}, nil
}

func asRuleViolation(err error, target *domain.RuleViolationError) bool {
	return errors.As(err, target)
}

func TestRoomConsistencyRule(t *testing.T) {
	rule := RoomConsistencyRule()
	bad := domain.Room{Base: domain.Base{ID: "R1"}, Status: domain.StatusOccupied}
	good := domain.Room{Base: domain.Base{ID: "R2"}, Status: domain.StatusVacant}
	res, err := rule.Evaluate(context.Background(), nil, []domain.Change{
		{Entity: domain.EntityRoom, Action: domain.ActionUpdate, After: bad},
		{Entity: domain.EntityRoom, Action: domain.ActionCreate, After: good},
		{Entity: domain.EntityRoom, Action: domain.ActionDelete, Before: bad},
	})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(res.Violations) != 1 || res.Violations[0].EntityID != "R1" || !res.HasBlocking() {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestMovementLockstepRule(t *testing.T) {
	rule := MovementLockstepRule()
	before := domain.Room{Base: domain.Base{ID: "R1"}, Status: domain.StatusVacant}
	after := domain.Room{Base: domain.Base{ID: "R1"}, Status: domain.StatusCleaning}
	update := domain.Change{Entity: domain.EntityRoom, Action: domain.ActionUpdate, Before: before, After: after}
	from := domain.StatusVacant
	good := domain.MovementRecord{RoomID: "R1", Type: domain.MovementStatusChange, PreviousStatus: &from, NewStatus: domain.StatusCleaning}
	wrong := good.Clone()
	wrong.NewStatus = domain.StatusOccupied

	cases := []struct {
		name    string
		changes []domain.Change
		blocked bool
	}{
		{"matched", []domain.Change{update, {Entity: domain.EntityMovement, Action: domain.ActionAppend, After: good}}, false},
		{"missing movement", []domain.Change{update}, true},
		{"mismatched movement", []domain.Change{update, {Entity: domain.EntityMovement, Action: domain.ActionAppend, After: wrong}}, true},
		{"two movements", []domain.Change{update,
			{Entity: domain.EntityMovement, Action: domain.ActionAppend, After: good},
			{Entity: domain.EntityMovement, Action: domain.ActionAppend, After: good}}, true},
		{"orphan movement", []domain.Change{{Entity: domain.EntityMovement, Action: domain.ActionAppend, After: good}}, true},
		{"details edit", []domain.Change{{Entity: domain.EntityRoom, Action: domain.ActionUpdate, Before: before, After: before}}, false},
	}
	for _, tc := range cases {
		res, err := rule.Evaluate(context.Background(), nil, tc.changes)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if res.HasBlocking() != tc.blocked {
			t.Fatalf("%s: expected blocked=%v, got %+v", tc.name, tc.blocked, res)
		}
	}
}

func TestDefaultRulesEngineRegistersPolicies(t *testing.T) {
	engine := NewDefaultRulesEngine(nil)
	names := map[string]bool{}
	for _, rule := range engine.Rules() {
		names[rule.Name()] = true
	}
	for _, want := range []string{"room_consistency", "movement_lockstep", "past_reservation"} {
		if !names[want] {
			t.Fatalf("expected rule %s registered", want)
		}
	}
}

func TestTransactionViewReflectsStagedState(t *testing.T) {
	clock := newTestClock("2024-01-01", "08:00")
	store := NewRoomStore(clock)
	if err := store.Add(domain.Room{Base: domain.Base{ID: "A"}, Name: "A", Status: domain.StatusVacant}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := store.Add(domain.Room{Base: domain.Base{ID: "B"}, Name: "B", Status: domain.StatusVacant}); err != nil {
		t.Fatalf("add: %v", err)
	}
	tx := newTransaction(store, NewMovementLedger(), clock.Now())
	if _, err := tx.AddRoom(domain.Room{Base: domain.Base{ID: "C"}, Name: "C", Status: domain.StatusVacant}); err != nil {
		t.Fatalf("stage add: %v", err)
	}
	if _, err := tx.DeleteRoom("A"); err != nil {
		t.Fatalf("stage delete: %v", err)
	}
	view := transactionView{tx: tx}
	rooms := view.ListRooms()
	if len(rooms) != 2 || rooms[0].ID != "B" || rooms[1].ID != "C" {
		t.Fatalf("unexpected staged rooms %+v", rooms)
	}
	if _, ok := view.FindRoom("A"); ok {
		t.Fatal("deleted room still visible")
	}
	if _, err := store.Get("C"); !domain.IsNotFound(err) {
		t.Fatal("staged room leaked before commit")
	}
	if err := tx.commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if _, err := store.Get("C"); err != nil {
		t.Fatalf("expected committed room: %v", err)
	}
	if _, err := store.Get("A"); !domain.IsNotFound(err) {
		t.Fatal("expected A removed on commit")
	}
}
