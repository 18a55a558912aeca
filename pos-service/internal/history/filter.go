package history

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Kaosethi/MerchantApp-sub000/shared/models"
)

// ErrInvalidFilter wraps every rejected status or date filter.
var ErrInvalidFilter = errors.New("invalid history filter")

// StatusFilter is the status choice offered on the history screen.
type StatusFilter string

const (
	FilterAll      StatusFilter = "All"
	FilterApproved StatusFilter = "Approved"
	FilterPending  StatusFilter = "Pending"
	FilterDeclined StatusFilter = "Declined"
	FilterFailed   StatusFilter = "Failed"
)

// The backend knows fewer statuses than the screen offers; declined and
// failed both map to FAILED.
var gatewayStatuses = map[StatusFilter]string{
	FilterAll:      "",
	FilterApproved: "COMPLETED",
	FilterPending:  "PENDING",
	FilterDeclined: "FAILED",
	FilterFailed:   "FAILED",
}

// ParseStatusFilter accepts the screen labels case-insensitively. An empty
// string means All.
func ParseStatusFilter(s string) (StatusFilter, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return FilterAll, nil
	}
	for f := range gatewayStatuses {
		if strings.EqualFold(string(f), s) {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: unknown status %q", ErrInvalidFilter, s)
}

// GatewayStatus is the status query value sent to the backend, empty for All.
func (f StatusFilter) GatewayStatus() string {
	return gatewayStatuses[f]
}

// Matches reports whether a record status belongs to the filter's group.
func (f StatusFilter) Matches(status models.RecordStatus) bool {
	switch f {
	case FilterAll, "":
		return true
	case FilterApproved:
		return status == models.StatusApproved
	case FilterPending:
		return status == models.StatusPending
	case FilterDeclined, FilterFailed:
		return status == models.StatusDeclined || status == models.StatusFailed
	default:
		return false
	}
}

// DateRange is an optional inclusive range of calendar days. Days are taken
// in the location of Start and End.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

func (r DateRange) IsZero() bool {
	return r.Start == nil && r.End == nil
}

func (r DateRange) Validate() error {
	if r.Start != nil && r.End != nil && startOfDay(*r.End).Before(startOfDay(*r.Start)) {
		return fmt.Errorf("%w: end %s is before start %s", ErrInvalidFilter,
			r.End.Format(time.DateOnly), r.Start.Format(time.DateOnly))
	}
	return nil
}

// Contains reports whether ts falls on or after the start day and on or
// before the end day.
func (r DateRange) Contains(ts time.Time) bool {
	if r.Start != nil && ts.Before(startOfDay(*r.Start)) {
		return false
	}
	if r.End != nil && !ts.Before(startOfDay(*r.End).AddDate(0, 0, 1)) {
		return false
	}
	return true
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func matches(rec models.TransactionRecord, status StatusFilter, dates DateRange) bool {
	return status.Matches(rec.Status) && dates.Contains(rec.Timestamp)
}
