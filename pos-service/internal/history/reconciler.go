// Package history reconciles a merchant's paginated transaction history with
// locally applied status and date filters.
package history

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"sync"

	"github.com/Kaosethi/MerchantApp-sub000/pos-service/internal/gateway"
	"github.com/Kaosethi/MerchantApp-sub000/pos-service/internal/observable"
	"github.com/Kaosethi/MerchantApp-sub000/shared/cqrs"
	"github.com/Kaosethi/MerchantApp-sub000/shared/logging"
	"github.com/Kaosethi/MerchantApp-sub000/shared/models"
	"go.uber.org/zap"
)

const DefaultPageSize = 20

const (
	connectivityMessage = "Unable to reach the server. Check your connection and try again."
	protocolMessage     = "Unexpected response from the server. Please try again."
)

var (
	ErrFetchInFlight = errors.New("a history fetch is already in progress")
	ErrClosed        = errors.New("history session closed")
)

// FetchError is a failed page fetch. Its message is already on the snapshot;
// the accumulated items are unchanged.
type FetchError struct {
	Page int
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch history page %d: %v", e.Page, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// HistoryGateway fetches one page of transaction history.
type HistoryGateway interface {
	FetchPage(ctx context.Context, q cqrs.FetchHistoryPageQuery) (*models.HistoryPage, error)
}

type Config struct {
	PageSize    int
	Credentials *observable.CredentialSignal
	Logger      *zap.Logger
}

// Reconciler owns one history screen session. Snapshot subscribers are called
// synchronously while the reconciler lock is held and must not call back into it.
type Reconciler struct {
	gateway     HistoryGateway
	pageSize    int
	credentials *observable.CredentialSignal
	logger      *zap.Logger

	mu     sync.Mutex
	seen   map[string]struct{}
	closed bool
	state  *observable.Cell[State]
}

func NewReconciler(gateway HistoryGateway, cfg Config) *Reconciler {
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Reconciler{
		gateway:     gateway,
		pageSize:    pageSize,
		credentials: cfg.Credentials,
		logger:      logging.OrNop(cfg.Logger),
		seen:        make(map[string]struct{}),
		state:       observable.NewCell(State{StatusFilter: FilterAll}),
	}
}

func (r *Reconciler) Current() State {
	return r.state.Current()
}

// Subscribe delivers the current snapshot and every later one to fn.
func (r *Reconciler) Subscribe(fn func(State)) (unsubscribe func()) {
	return r.state.Subscribe(fn)
}

// ApplyFilters fetches page 1 for the given status and, once it arrives,
// replaces the accumulated items with it. The list is not cleared up front:
// until page 1 arrives the previous items stay displayed, and on a failed
// fetch they and the previous filters stay in place. The date range never
// goes to the backend. Status labels are matched case-insensitively.
func (r *Reconciler) ApplyFilters(ctx context.Context, status StatusFilter, dates DateRange) (State, error) {
	status, err := ParseStatusFilter(string(status))
	if err != nil {
		return r.state.Current(), err
	}
	if err := dates.Validate(); err != nil {
		return r.state.Current(), err
	}
	if err := r.startLoading(); err != nil {
		return r.state.Current(), err
	}

	page, err := r.fetch(ctx, 1, status)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return r.state.Current(), ErrClosed
	}
	if err != nil {
		return r.fail(err), &FetchError{Page: 1, Err: err}
	}

	records := MapRecords(page.Records, r.logger)
	r.seen = make(map[string]struct{}, len(records))
	next := r.state.Current()
	next.Items = r.merge(nil, records)
	next.Page = 1
	next.TotalPages, next.TotalItems = pageTotals(page.Pagination, 1)
	next.StatusFilter = status
	next.DateRange = dates
	next.Loading = false
	next.Error = ""
	next.Displayed = project(next.Items, status, dates)
	r.state.Set(next)

	r.logger.Debug("history filters applied",
		zap.String("status", string(status)),
		zap.Int("items", len(next.Items)),
		zap.Int("totalPages", next.TotalPages),
	)
	return next, nil
}

// Refresh re-runs ApplyFilters with the current filters.
func (r *Reconciler) Refresh(ctx context.Context) (State, error) {
	cur := r.state.Current()
	return r.ApplyFilters(ctx, cur.StatusFilter, cur.DateRange)
}

// LoadMore fetches the next page and merges it by id. It does nothing when
// the last page has been reached or a fetch is outstanding.
func (r *Reconciler) LoadMore(ctx context.Context) (State, error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return r.state.Current(), ErrClosed
	}
	cur := r.state.Current()
	if cur.Loading || !cur.HasMore() {
		r.mu.Unlock()
		return cur, nil
	}
	nextPage := cur.Page + 1
	status := cur.StatusFilter
	loading := cur
	loading.Loading = true
	loading.Error = ""
	r.state.Set(loading)
	r.mu.Unlock()

	page, err := r.fetch(ctx, nextPage, status)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return r.state.Current(), ErrClosed
	}
	if err != nil {
		return r.fail(err), &FetchError{Page: nextPage, Err: err}
	}

	next := r.state.Current()
	next.Items = r.merge(next.Items, MapRecords(page.Records, r.logger))
	next.Page = nextPage
	next.TotalPages, next.TotalItems = pageTotals(page.Pagination, nextPage)
	next.Loading = false
	next.Displayed = project(next.Items, next.StatusFilter, next.DateRange)
	r.state.Set(next)
	return next, nil
}

// SetDateRange changes only the local date filter; nothing is fetched.
func (r *Reconciler) SetDateRange(dates DateRange) (State, error) {
	if err := dates.Validate(); err != nil {
		return r.state.Current(), err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return r.state.Current(), ErrClosed
	}
	next := r.state.Current()
	next.DateRange = dates
	next.Displayed = project(next.Items, next.StatusFilter, dates)
	r.state.Set(next)
	return next, nil
}

// Close ends the session; results of an outstanding fetch are discarded.
func (r *Reconciler) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
}

func (r *Reconciler) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

func (r *Reconciler) startLoading() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	cur := r.state.Current()
	if cur.Loading {
		return ErrFetchInFlight
	}
	cur.Loading = true
	cur.Error = ""
	r.state.Set(cur)
	return nil
}

func (r *Reconciler) fetch(ctx context.Context, page int, status StatusFilter) (*models.HistoryPage, error) {
	res, err := r.gateway.FetchPage(ctx, cqrs.FetchHistoryPageQuery{
		Page:   page,
		Limit:  r.pageSize,
		Status: status.GatewayStatus(),
	})
	if err == nil && res == nil {
		err = &gateway.ProtocolError{Op: "fetch history", Err: errors.New("empty page")}
	}
	if err != nil {
		var httpErr *gateway.HTTPError
		if errors.As(err, &httpErr) && httpErr.Unauthorized() && r.credentials != nil {
			r.credentials.Fire(observable.Invalidation{Reason: httpErr.Reason})
		}
		return nil, err
	}
	return res, nil
}

// fail records a fetch error without touching the accumulated items.
// Callers hold r.mu.
func (r *Reconciler) fail(err error) State {
	next := r.state.Current()
	next.Loading = false
	next.Error = fetchErrorMessage(err)
	r.state.Set(next)
	r.logger.Warn("history fetch failed", zap.Error(err))
	return next
}

// merge appends records whose id has not been seen yet. The returned slice is
// always new so published snapshots stay untouched. Callers hold r.mu.
func (r *Reconciler) merge(existing, incoming []models.TransactionRecord) []models.TransactionRecord {
	items := make([]models.TransactionRecord, len(existing), len(existing)+len(incoming))
	copy(items, existing)
	for _, rec := range incoming {
		if _, dup := r.seen[rec.ID]; dup {
			continue
		}
		r.seen[rec.ID] = struct{}{}
		items = append(items, rec)
	}
	return items
}

// project filters items and sorts them newest first. Ties keep insertion order.
func project(items []models.TransactionRecord, status StatusFilter, dates DateRange) []models.TransactionRecord {
	out := make([]models.TransactionRecord, 0, len(items))
	for _, rec := range items {
		if matches(rec, status, dates) {
			out = append(out, rec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}

func pageTotals(p models.Pagination, page int) (totalPages, totalItems int) {
	totalPages = p.TotalPages
	if p.HasNext && totalPages <= page {
		totalPages = page + 1
	}
	if totalPages < page {
		totalPages = page
	}
	return totalPages, p.TotalItems
}

func fetchErrorMessage(err error) string {
	var httpErr *gateway.HTTPError
	var transportErr *gateway.TransportError
	switch {
	case errors.As(err, &httpErr):
		return fmt.Sprintf("Server error (%d %s). Please try again.", httpErr.Status, http.StatusText(httpErr.Status))
	case errors.As(err, &transportErr):
		return connectivityMessage
	default:
		return protocolMessage
	}
}
