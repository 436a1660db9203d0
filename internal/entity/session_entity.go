package entity

import "time"

// ArmedStrategy is the resolution method a session will run on the next location share.
type ArmedStrategy string

const (
	StrategyNone           ArmedStrategy = "NONE"
	StrategyAssemblyPoints ArmedStrategy = "ASSEMBLY_POINTS"
	StrategyShelterNetwork ArmedStrategy = "SHELTER_NETWORK"
	StrategyBloodDonation  ArmedStrategy = "BLOOD_DONATION"
	StrategyPharmacies     ArmedStrategy = "PHARMACIES"
)

func (s ArmedStrategy) IsValid() bool {
	switch s {
	case StrategyNone, StrategyAssemblyPoints, StrategyShelterNetwork, StrategyBloodDonation, StrategyPharmacies:
		return true
	}
	return false
}

// ConversationState is derived from the session record, never stored.
type ConversationState string

const (
	StateNew              ConversationState = "NEW"
	StateMenuShown        ConversationState = "MENU_SHOWN"
	StateAwaitingLocation ConversationState = "AWAITING_LOCATION"
)

// Session is the one-per-user conversation record.
type Session struct {
	UserId        string
	ArmedStrategy ArmedStrategy
	CreatedAt     time.Time
	UpdatedAt     *time.Time
}

// StateOf maps a (possibly missing) session onto the router state.
func StateOf(s *Session) ConversationState {
	if s == nil {
		return StateNew
	}
	if s.ArmedStrategy == StrategyNone || s.ArmedStrategy == "" {
		return StateMenuShown
	}
	return StateAwaitingLocation
}
