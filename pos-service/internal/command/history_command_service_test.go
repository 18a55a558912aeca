package command

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Kaosethi/MerchantApp-sub000/pos-service/internal/gateway"
	"github.com/Kaosethi/MerchantApp-sub000/pos-service/internal/history"
	"github.com/Kaosethi/MerchantApp-sub000/pos-service/internal/repository"
	"github.com/Kaosethi/MerchantApp-sub000/shared/cqrs"
	"github.com/Kaosethi/MerchantApp-sub000/shared/models"
)

type mockHistoryGateway struct {
	calls   []cqrs.FetchHistoryPageQuery
	fetchFn func(cqrs.FetchHistoryPageQuery) (*models.HistoryPage, error)
}

func (m *mockHistoryGateway) FetchPage(_ context.Context, q cqrs.FetchHistoryPageQuery) (*models.HistoryPage, error) {
	m.calls = append(m.calls, q)
	if m.fetchFn != nil {
		return m.fetchFn(q)
	}
	return nil, fmt.Errorf("not configured")
}

func historyPage(pageNo, totalPages int, ids ...string) *models.HistoryPage {
	records := make([]models.RawRecord, 0, len(ids))
	for i, id := range ids {
		records = append(records, models.RawRecord{
			ID:             id,
			EventTimestamp: time.Date(2024, 3, 10, 12-i, 0, 0, 0, time.UTC).Format(time.RFC3339),
			Amount:         "5",
			Status:         "COMPLETED",
		})
	}
	return &models.HistoryPage{
		Records:    records,
		Pagination: models.Pagination{Page: pageNo, TotalPages: totalPages, TotalItems: totalPages * len(ids)},
	}
}

func newHistoryService(gw *mockHistoryGateway) (*HistoryCommandService, *repository.SessionStore[*history.Reconciler]) {
	store := repository.NewSessionStore[*history.Reconciler]()
	svc := NewHistoryCommandService(store, gw, HistorySettings{PageSize: 2})
	svc.newID = func() string { return "hist-1" }
	return svc, store
}

func TestOpenHistory(t *testing.T) {
	gw := &mockHistoryGateway{
		fetchFn: func(q cqrs.FetchHistoryPageQuery) (*models.HistoryPage, error) {
			return historyPage(q.Page, 2, fmt.Sprintf("p%d-a", q.Page), fmt.Sprintf("p%d-b", q.Page)), nil
		},
	}
	svc, _ := newHistoryService(gw)
	ctx := context.Background()

	view, err := svc.OpenHistory(ctx, cqrs.OpenHistoryCommand{MerchantID: "M-1", Status: "approved"})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if view.SessionID != "hist-1" || view.Page != 1 || !view.HasMore || len(view.Transactions) != 2 {
		t.Fatalf("unexpected view %+v", view)
	}
	if gw.calls[0].Status != "COMPLETED" || gw.calls[0].Limit != 2 {
		t.Fatalf("unexpected query %+v", gw.calls[0])
	}

	view, err = svc.LoadMore(ctx, cqrs.LoadMoreHistoryCommand{SessionID: "hist-1", MerchantID: "M-1"})
	if err != nil {
		t.Fatalf("load more: %v", err)
	}
	if view.Page != 2 || view.HasMore || len(view.Transactions) != 4 || view.Summary.Count != 4 {
		t.Fatalf("unexpected view after load more %+v", view)
	}

	view, err = svc.Refresh(ctx, cqrs.RefreshHistoryCommand{SessionID: "hist-1", MerchantID: "M-1"})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if view.Page != 1 || len(view.Transactions) != 2 || view.StatusFilter != "Approved" {
		t.Fatalf("unexpected view after refresh %+v", view)
	}
}

func TestOpenHistory_RejectsInvalidFilters(t *testing.T) {
	gw := &mockHistoryGateway{}
	svc, store := newHistoryService(gw)
	start := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, -1)

	tests := []struct {
		name string
		cmd  cqrs.OpenHistoryCommand
	}{
		{name: "unknown status", cmd: cqrs.OpenHistoryCommand{MerchantID: "M-1", Status: "COMPLETED"}},
		{name: "inverted range", cmd: cqrs.OpenHistoryCommand{MerchantID: "M-1", Start: &start, End: &end}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.OpenHistory(context.Background(), tt.cmd); !errors.Is(err, history.ErrInvalidFilter) {
				t.Fatalf("expected invalid filter, got %v", err)
			}
		})
	}
	if len(gw.calls) != 0 || store.Len() != 0 {
		t.Fatalf("invalid filters must not fetch or open a session")
	}
}

func TestOpenHistory_FetchFailureIsReportedOnView(t *testing.T) {
	gw := &mockHistoryGateway{
		fetchFn: func(cqrs.FetchHistoryPageQuery) (*models.HistoryPage, error) {
			return nil, &gateway.TransportError{Op: "fetch history", Err: errors.New("no route to host")}
		},
	}
	svc, store := newHistoryService(gw)

	view, err := svc.OpenHistory(context.Background(), cqrs.OpenHistoryCommand{MerchantID: "M-1"})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if view.Error == "" || view.Loading || len(view.Transactions) != 0 {
		t.Fatalf("expected error on view, got %+v", view)
	}
	if store.Len() != 1 {
		t.Fatalf("session should stay open so the terminal can retry")
	}
}

func TestSetDateRangeAndClose(t *testing.T) {
	gw := &mockHistoryGateway{
		fetchFn: func(q cqrs.FetchHistoryPageQuery) (*models.HistoryPage, error) {
			return historyPage(1, 1, "a", "b"), nil
		},
	}
	svc, _ := newHistoryService(gw)
	ctx := context.Background()
	if _, err := svc.OpenHistory(ctx, cqrs.OpenHistoryCommand{MerchantID: "M-1"}); err != nil {
		t.Fatalf("open: %v", err)
	}

	day := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
	view, err := svc.SetDateRange(cqrs.SetHistoryDateRangeCommand{SessionID: "hist-1", MerchantID: "M-1", Start: &day})
	if err != nil {
		t.Fatalf("set date range: %v", err)
	}
	if len(view.Transactions) != 0 || view.DateRange.Start != "2024-03-11" {
		t.Fatalf("unexpected view %+v", view)
	}
	if len(gw.calls) != 1 {
		t.Fatalf("date range must not fetch")
	}

	if _, err := svc.SetDateRange(cqrs.SetHistoryDateRangeCommand{SessionID: "hist-1", MerchantID: "M-2"}); !errors.Is(err, repository.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if err := svc.CloseHistory(cqrs.CloseHistoryCommand{SessionID: "hist-1", MerchantID: "M-1"}); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := svc.LoadMore(ctx, cqrs.LoadMoreHistoryCommand{SessionID: "hist-1", MerchantID: "M-1"}); !errors.Is(err, repository.ErrSessionNotFound) {
		t.Fatalf("expected not found after close, got %v", err)
	}
}
