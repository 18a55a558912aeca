package history

import (
	"github.com/Kaosethi/MerchantApp-sub000/shared/models"
	"github.com/shopspring/decimal"
)

// State is an immutable snapshot of a history session. Items holds every
// record merged so far in arrival order; Displayed is Items filtered by the
// status and date filters and sorted newest first.
type State struct {
	Items        []models.TransactionRecord
	Page         int
	TotalPages   int
	TotalItems   int
	StatusFilter StatusFilter
	DateRange    DateRange
	Displayed    []models.TransactionRecord
	Loading      bool
	Error        string
}

func (s State) HasMore() bool {
	return s.Page < s.TotalPages
}

// Summary totals the displayed records. Only approved records count towards
// the amount.
func (s State) Summary() (count int, approvedTotal decimal.Decimal) {
	approvedTotal = decimal.Zero
	for _, rec := range s.Displayed {
		if rec.Status == models.StatusApproved {
			approvedTotal = approvedTotal.Add(rec.Amount)
		}
	}
	return len(s.Displayed), approvedTotal
}
