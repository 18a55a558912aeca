package authorization

import "fmt"

// OutcomeKind tags the classification of one submission attempt.
type OutcomeKind string

const (
	OutcomeSuccess           OutcomeKind = "success"
	OutcomePinIncorrect      OutcomeKind = "pin_incorrect"
	OutcomeLocked            OutcomeKind = "locked"
	OutcomeInsufficientFunds OutcomeKind = "insufficient_funds"
	OutcomeDeclined          OutcomeKind = "declined"
	OutcomeNetworkError      OutcomeKind = "network_error"
	OutcomeUnknownError      OutcomeKind = "unknown_error"
)

// Outcome is the tagged result of one submission. Only the fields relevant to
// Kind are set.
type Outcome struct {
	Kind          OutcomeKind
	TransactionID string
	AttemptsLeft  int
	Message       string
}

func Success(transactionID string) Outcome {
	return Outcome{Kind: OutcomeSuccess, TransactionID: transactionID}
}

func PinIncorrect(attemptsLeft int) Outcome {
	return Outcome{Kind: OutcomePinIncorrect, AttemptsLeft: attemptsLeft}
}

func Locked() Outcome {
	return Outcome{Kind: OutcomeLocked}
}

func InsufficientFunds(message string) Outcome {
	return Outcome{Kind: OutcomeInsufficientFunds, Message: message}
}

func Declined(message string) Outcome {
	return Outcome{Kind: OutcomeDeclined, Message: message}
}

func NetworkError() Outcome {
	return Outcome{Kind: OutcomeNetworkError}
}

func UnknownError(message string) Outcome {
	return Outcome{Kind: OutcomeUnknownError, Message: message}
}

// Notify reports whether the outcome goes through the one-shot notification.
// A wrong PIN is only surfaced on the returned snapshot.
func (o Outcome) Notify() bool {
	return o.Kind != OutcomePinIncorrect
}

func (o Outcome) String() string {
	switch o.Kind {
	case OutcomeSuccess:
		return fmt.Sprintf("success(%s)", o.TransactionID)
	case OutcomePinIncorrect:
		return fmt.Sprintf("pin_incorrect(%d)", o.AttemptsLeft)
	case OutcomeLocked, OutcomeNetworkError:
		return string(o.Kind)
	default:
		return fmt.Sprintf("%s(%s)", o.Kind, o.Message)
	}
}
