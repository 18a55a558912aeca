package history

import (
	"fmt"
	"strings"
	"time"

	"github.com/Kaosethi/MerchantApp-sub000/shared/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var recordStatuses = map[string]models.RecordStatus{
	"COMPLETED":  models.StatusApproved,
	"APPROVED":   models.StatusApproved,
	"SUCCESS":    models.StatusApproved,
	"SUCCESSFUL": models.StatusApproved,
	"PENDING":    models.StatusPending,
	"PROCESSING": models.StatusPending,
	"DECLINED":   models.StatusDeclined,
	"REJECTED":   models.StatusDeclined,
	"FAILED":     models.StatusFailed,
	"ERROR":      models.StatusFailed,
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// MapRecord turns a backend record into a TransactionRecord. A FAILED record
// carrying a decline reason is shown as Declined.
func MapRecord(raw models.RawRecord) (models.TransactionRecord, error) {
	id := strings.TrimSpace(raw.ID)
	if id == "" {
		return models.TransactionRecord{}, fmt.Errorf("record id missing")
	}

	tsText := strings.TrimSpace(raw.EventTimestamp)
	if tsText == "" {
		tsText = strings.TrimSpace(raw.CreatedAt)
	}
	ts, err := parseTimestamp(tsText)
	if err != nil {
		return models.TransactionRecord{}, fmt.Errorf("record %s: %w", id, err)
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(string(raw.Amount)))
	if err != nil {
		return models.TransactionRecord{}, fmt.Errorf("record %s: invalid amount %q", id, raw.Amount)
	}

	status, ok := recordStatuses[strings.ToUpper(strings.TrimSpace(raw.Status))]
	if !ok {
		return models.TransactionRecord{}, fmt.Errorf("record %s: unknown status %q", id, raw.Status)
	}
	reason := strings.TrimSpace(raw.DeclineReason)
	if status == models.StatusFailed && reason != "" {
		status = models.StatusDeclined
	}

	name := strings.TrimSpace(raw.CounterpartyName)
	if name == "" {
		name = strings.TrimSpace(raw.CounterpartyDescription)
	}

	return models.TransactionRecord{
		ID:               id,
		Amount:           amount,
		Timestamp:        ts,
		CounterpartyID:   strings.TrimSpace(raw.CounterpartyID),
		CounterpartyName: name,
		Status:           status,
		Category:         strings.TrimSpace(raw.Description),
		DeclineReason:    reason,
	}, nil
}

// MapRecords maps a page of backend records, dropping the invalid ones.
func MapRecords(raws []models.RawRecord, logger *zap.Logger) []models.TransactionRecord {
	records := make([]models.TransactionRecord, 0, len(raws))
	for _, raw := range raws {
		rec, err := MapRecord(raw)
		if err != nil {
			logger.Debug("dropping history record", zap.Error(err))
			continue
		}
		records = append(records, rec)
	}
	return records
}

func parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("timestamp missing")
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", s)
}
