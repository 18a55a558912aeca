package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// RecordStatus is the client-side status vocabulary of a transaction record.
type RecordStatus string

const (
	StatusApproved RecordStatus = "Approved"
	StatusPending  RecordStatus = "Pending"
	StatusDeclined RecordStatus = "Declined"
	StatusFailed   RecordStatus = "Failed"
)

// TransactionRecord is an immutable history entry mapped from a RawRecord.
type TransactionRecord struct {
	ID               string          `json:"id"`
	Amount           decimal.Decimal `json:"amount"`
	Timestamp        time.Time       `json:"timestamp"`
	CounterpartyID   string          `json:"counterpartyId"`
	CounterpartyName string          `json:"counterpartyName"`
	Status           RecordStatus    `json:"status"`
	Category         string          `json:"category,omitempty"`
	DeclineReason    string          `json:"declineReason,omitempty"`
}

// FlexString accepts both JSON strings and bare JSON numbers. The backend is
// not consistent about quoting amounts.
type FlexString string

func (s *FlexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*s = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = FlexString(v)
		return nil
	}
	*s = FlexString(b)
	return nil
}

// RawRecord is the backend wire shape of a history entry.
type RawRecord struct {
	ID                      string     `json:"id"`
	EventTimestamp          string     `json:"eventTimestamp,omitempty"`
	CreatedAt               string     `json:"createdAt,omitempty"`
	Amount                  FlexString `json:"amount"`
	Status                  string     `json:"status"`
	DeclineReason           string     `json:"declineReason,omitempty"`
	CounterpartyID          string     `json:"counterpartyId,omitempty"`
	CounterpartyName        string     `json:"counterpartyName,omitempty"`
	CounterpartyDescription string     `json:"counterpartyDescription,omitempty"`
	Description             string     `json:"description,omitempty"`
}

type Pagination struct {
	Page       int  `json:"page"`
	TotalPages int  `json:"totalPages"`
	TotalItems int  `json:"totalItems"`
	HasNext    bool `json:"hasNext"`
}

// HistoryPage is one page returned by the history endpoint.
type HistoryPage struct {
	Records    []RawRecord `json:"data"`
	Pagination Pagination  `json:"pagination"`
}

// ProcessResult is the success body of the process-transaction endpoint.
type ProcessResult struct {
	TransactionID string `json:"transactionId"`
}

// AttemptRecord is one journaled PIN submission. The PIN itself is never stored.
type AttemptRecord struct {
	SessionID         string
	MerchantID        string
	BeneficiaryID     string
	Amount            decimal.Decimal
	Outcome           string
	AttemptsRemaining int
	TransactionID     string
	Message           string
	CreatedAt         time.Time
}
