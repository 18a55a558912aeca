package authorization

import "github.com/shopspring/decimal"

type Status string

const (
	StatusIdle          Status = "idle"
	StatusSubmitting    Status = "submitting"
	StatusAwaitingInput Status = "awaiting_input"
	StatusLocked        Status = "locked"
	StatusSucceeded     Status = "succeeded"
)

// Params are the navigation parameters a session is opened with. They are
// untrusted strings and get validated by NewFlow.
type Params struct {
	Amount          string
	BeneficiaryID   string
	BeneficiaryName string
	Category        string
}

// Snapshot is an immutable view of an authorization session. The PIN digits
// are never part of it, only the buffer length.
type Snapshot struct {
	Status            Status
	Amount            decimal.Decimal
	BeneficiaryID     string
	BeneficiaryName   string
	Category          string
	PinLength         int
	AttemptsRemaining int
	Locked            bool
	LastOutcome       *Outcome
}

// IsTerminal reports whether no further submission can ever succeed.
func (s Snapshot) IsTerminal() bool {
	return s.Status == StatusLocked || s.Status == StatusSucceeded
}

func (s Snapshot) IsSubmitting() bool {
	return s.Status == StatusSubmitting
}
