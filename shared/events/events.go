package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Event types
const (
	TransactionAuthorized = "transaction.authorized"
	AuthorizationLocked   = "authorization.locked"
	AuthorizationFailed   = "authorization.failed"

	MerchantCredentialsRevoked = "merchant.credentials_revoked"
)

// Stream names
const (
	AuthorizationEventsStream = "authorization.events"
	MerchantEventsStream      = "merchant.events"
)

// Base event structure
type Event struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// Decode unmarshals the event payload into v.
func (e Event) Decode(v any) error {
	if len(e.Data) == 0 {
		return fmt.Errorf("event %s has no data", e.Type)
	}
	if err := json.Unmarshal(e.Data, v); err != nil {
		return fmt.Errorf("failed to decode %s event: %w", e.Type, err)
	}
	return nil
}

// Authorization events
type TransactionAuthorizedEvent struct {
	SessionID     string          `json:"sessionId"`
	MerchantID    string          `json:"merchantId"`
	TransactionID string          `json:"transactionId"`
	BeneficiaryID string          `json:"beneficiaryId"`
	Amount        decimal.Decimal `json:"amount"`
	Category      string          `json:"category"`
}

type AuthorizationLockedEvent struct {
	SessionID     string          `json:"sessionId"`
	MerchantID    string          `json:"merchantId"`
	BeneficiaryID string          `json:"beneficiaryId"`
	Amount        decimal.Decimal `json:"amount"`
}

// AuthorizationFailedEvent covers every one-shot failure outcome: insufficient
// funds, declines, network and unknown errors.
type AuthorizationFailedEvent struct {
	SessionID     string          `json:"sessionId"`
	MerchantID    string          `json:"merchantId"`
	BeneficiaryID string          `json:"beneficiaryId"`
	Amount        decimal.Decimal `json:"amount"`
	Outcome       string          `json:"outcome"`
	Message       string          `json:"message,omitempty"`
}

// Merchant events
type MerchantCredentialsRevokedEvent struct {
	MerchantID string `json:"merchantId"`
	Reason     string `json:"reason"`
}
