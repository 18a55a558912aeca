package history

import (
	"time"

	"github.com/Kaosethi/MerchantApp-sub000/shared/models"
)

// View projects a snapshot for the session API. Only the displayed records are
// sent.
func View(sessionID string, s State) *models.HistoryView {
	count, total := s.Summary()
	transactions := s.Displayed
	if transactions == nil {
		transactions = []models.TransactionRecord{}
	}
	return &models.HistoryView{
		SessionID:    sessionID,
		Transactions: transactions,
		Page:         s.Page,
		TotalPages:   s.TotalPages,
		TotalItems:   s.TotalItems,
		HasMore:      s.HasMore(),
		StatusFilter: string(s.StatusFilter),
		DateRange:    dateRangeView(s.DateRange),
		Loading:      s.Loading,
		Error:        s.Error,
		Summary:      models.HistorySummaryView{Count: count, ApprovedTotal: total},
	}
}

func dateRangeView(r DateRange) models.DateRangeView {
	var v models.DateRangeView
	if r.Start != nil {
		v.Start = r.Start.Format(time.DateOnly)
	}
	if r.End != nil {
		v.End = r.End.Format(time.DateOnly)
	}
	return v
}
