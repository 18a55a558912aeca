package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OutcomeView is the JSON shape of a classified authorization outcome.
type OutcomeView struct {
	Kind          string `json:"kind"`
	TransactionID string `json:"transactionId,omitempty"`
	AttemptsLeft  int    `json:"attemptsLeft,omitempty"`
	Message       string `json:"message,omitempty"`
}

// AuthorizationView is the read projection of one authorization session.
// The PIN buffer is only exposed as its length.
type AuthorizationView struct {
	SessionID         string          `json:"sessionId"`
	Status            string          `json:"status"`
	Amount            decimal.Decimal `json:"amount"`
	BeneficiaryID     string          `json:"beneficiaryId"`
	BeneficiaryName   string          `json:"beneficiaryName"`
	Category          string          `json:"category"`
	PinLength         int             `json:"pinLength"`
	AttemptsRemaining int             `json:"attemptsRemaining"`
	Locked            bool            `json:"locked"`
	LastOutcome       *OutcomeView    `json:"lastOutcome,omitempty"`
	Error             string          `json:"error,omitempty"`
}

// ReceiptView is cached after a successful transfer so the receipt screen can
// be rendered without another backend call.
type ReceiptView struct {
	TransactionID   string          `json:"transactionId"`
	MerchantID      string          `json:"merchantId"`
	BeneficiaryID   string          `json:"beneficiaryId"`
	BeneficiaryName string          `json:"beneficiaryName"`
	Amount          decimal.Decimal `json:"amount"`
	Category        string          `json:"category"`
	CreatedAt       time.Time       `json:"createdTimestamp"`
}

type DateRangeView struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

type HistorySummaryView struct {
	Count         int             `json:"count"`
	ApprovedTotal decimal.Decimal `json:"approvedTotal"`
}

// HistoryView is the read projection of a history screen session.
type HistoryView struct {
	SessionID    string              `json:"sessionId"`
	Transactions []TransactionRecord `json:"transactions"`
	Page         int                 `json:"page"`
	TotalPages   int                 `json:"totalPages"`
	TotalItems   int                 `json:"totalItems"`
	HasMore      bool                `json:"hasMore"`
	StatusFilter string              `json:"statusFilter"`
	DateRange    DateRangeView       `json:"dateRange"`
	Loading      bool                `json:"loading"`
	Error        string              `json:"error,omitempty"`
	Summary      HistorySummaryView  `json:"summary"`
}
