package history

import (
	"testing"
	"time"

	"github.com/Kaosethi/MerchantApp-sub000/shared/models"
	"go.uber.org/zap"
)

func TestMapRecord(t *testing.T) {
	tests := []struct {
		name       string
		raw        models.RawRecord
		wantStatus models.RecordStatus
		wantName   string
		wantErr    bool
	}{
		{
			name:       "completed",
			raw:        models.RawRecord{ID: "T1", EventTimestamp: "2024-03-10T12:00:00Z", Amount: "12.50", Status: "COMPLETED", CounterpartyName: "Jane"},
			wantStatus: models.StatusApproved,
			wantName:   "Jane",
		},
		{
			name:       "failed with reason is declined",
			raw:        models.RawRecord{ID: "T2", EventTimestamp: "2024-03-10T12:00:00Z", Amount: "1", Status: "FAILED", DeclineReason: "Insufficient funds"},
			wantStatus: models.StatusDeclined,
		},
		{
			name:       "failed without reason",
			raw:        models.RawRecord{ID: "T3", EventTimestamp: "2024-03-10T12:00:00Z", Amount: "1", Status: "failed"},
			wantStatus: models.StatusFailed,
		},
		{
			name:       "createdAt fallback and description name",
			raw:        models.RawRecord{ID: "T4", CreatedAt: "2024-03-10 12:00:00", Amount: "3", Status: "PENDING", CounterpartyDescription: "Corner shop"},
			wantStatus: models.StatusPending,
			wantName:   "Corner shop",
		},
		{name: "missing id", raw: models.RawRecord{EventTimestamp: "2024-03-10T12:00:00Z", Amount: "1", Status: "COMPLETED"}, wantErr: true},
		{name: "bad timestamp", raw: models.RawRecord{ID: "T5", EventTimestamp: "yesterday", Amount: "1", Status: "COMPLETED"}, wantErr: true},
		{name: "bad amount", raw: models.RawRecord{ID: "T6", EventTimestamp: "2024-03-10T12:00:00Z", Amount: "ten", Status: "COMPLETED"}, wantErr: true},
		{name: "unknown status", raw: models.RawRecord{ID: "T7", EventTimestamp: "2024-03-10T12:00:00Z", Amount: "1", Status: "WEIRD"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MapRecord(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Status != tt.wantStatus {
				t.Fatalf("expected status %s, got %s", tt.wantStatus, got.Status)
			}
			if got.CounterpartyName != tt.wantName {
				t.Fatalf("expected name %q, got %q", tt.wantName, got.CounterpartyName)
			}
			if !got.Timestamp.Equal(time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)) {
				t.Fatalf("unexpected timestamp %s", got.Timestamp)
			}
		})
	}
}

func TestMapRecords_DropsInvalid(t *testing.T) {
	raws := []models.RawRecord{
		{ID: "T1", EventTimestamp: "2024-03-10T12:00:00Z", Amount: "1", Status: "COMPLETED"},
		{ID: "", EventTimestamp: "2024-03-10T12:00:00Z", Amount: "1", Status: "COMPLETED"},
		{ID: "T3", EventTimestamp: "2024-03-10T12:00:00Z", Amount: "1", Status: "PENDING"},
	}
	got := MapRecords(raws, zap.NewNop())
	if len(got) != 2 || got[0].ID != "T1" || got[1].ID != "T3" {
		t.Fatalf("unexpected records: %v", ids(got))
	}
}
