package core

import "frontdesk/pkg/domain"

// NewDefaultRulesEngine builds a rules engine with the built-in policy set.
func NewDefaultRulesEngine(clock Clock) *domain.RulesEngine {
	engine := domain.NewRulesEngine()
	engine.Register(RoomConsistencyRule())
	engine.Register(MovementLockstepRule())
	engine.Register(PastReservationRule(clock))
	return engine
}

func roomFromChange(value any) (domain.Room, bool) {
	switch v := value.(type) {
	case domain.Room:
		return v, true
	case *domain.Room:
		if v != nil {
			return *v, true
		}
	}
	return domain.Room{}, false
}

func movementFromChange(value any) (domain.MovementRecord, bool) {
	switch v := value.(type) {
	case domain.MovementRecord:
		return v, true
	case *domain.MovementRecord:
		if v != nil {
			return *v, true
		}
	}
	return domain.MovementRecord{}, false
}
