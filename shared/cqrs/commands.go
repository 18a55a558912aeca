package cqrs

import "time"

// ---------- Authorization commands ----------

// StartAuthorizationCommand opens a PIN authorization session. Values arrive as
// opaque strings from the navigation layer and are validated by the flow.
type StartAuthorizationCommand struct {
	MerchantID      string
	Amount          string
	BeneficiaryID   string
	BeneficiaryName string
	Category        string
}

type SubmitPinCommand struct {
	SessionID  string
	MerchantID string
	Pin        string
}

// EnterDigitCommand appends one keypad digit; the session auto-submits once the
// buffer is full.
type EnterDigitCommand struct {
	SessionID  string
	MerchantID string
	Digit      string
}

type DeleteDigitCommand struct {
	SessionID  string
	MerchantID string
}

// TakeOutcomeCommand consumes the pending one-shot outcome of a session.
type TakeOutcomeCommand struct {
	SessionID  string
	MerchantID string
}

type EndAuthorizationCommand struct {
	SessionID  string
	MerchantID string
}

// ProcessTransactionCommand is the backend call issued for one PIN submission.
type ProcessTransactionCommand struct {
	BeneficiaryID string
	Pin           string
	Amount        string
	Description   string
}

// ---------- History commands ----------

type OpenHistoryCommand struct {
	MerchantID string
	Status     string
	Start      *time.Time
	End        *time.Time
}

type ApplyHistoryFiltersCommand struct {
	SessionID  string
	MerchantID string
	Status     string
	Start      *time.Time
	End        *time.Time
}

type SetHistoryDateRangeCommand struct {
	SessionID  string
	MerchantID string
	Start      *time.Time
	End        *time.Time
}

type LoadMoreHistoryCommand struct {
	SessionID  string
	MerchantID string
}

type RefreshHistoryCommand struct {
	SessionID  string
	MerchantID string
}

type CloseHistoryCommand struct {
	SessionID  string
	MerchantID string
}
