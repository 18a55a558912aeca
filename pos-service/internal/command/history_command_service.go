package command

import (
	"context"
	"errors"

	"github.com/Kaosethi/MerchantApp-sub000/pos-service/internal/history"
	"github.com/Kaosethi/MerchantApp-sub000/pos-service/internal/observable"
	"github.com/Kaosethi/MerchantApp-sub000/pos-service/internal/repository"
	"github.com/Kaosethi/MerchantApp-sub000/shared/cqrs"
	"github.com/Kaosethi/MerchantApp-sub000/shared/logging"
	"github.com/Kaosethi/MerchantApp-sub000/shared/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type HistorySettings struct {
	PageSize    int
	Credentials *observable.CredentialSignal
	Logger      *zap.Logger
}

// HistoryCommandService owns the live history sessions. Page fetch failures
// are not errors here: they are reported on the returned view.
type HistoryCommandService struct {
	sessions *repository.SessionStore[*history.Reconciler]
	gateway  history.HistoryGateway
	settings HistorySettings
	logger   *zap.Logger
	newID    func() string
}

func NewHistoryCommandService(
	sessions *repository.SessionStore[*history.Reconciler],
	gateway history.HistoryGateway,
	settings HistorySettings,
) *HistoryCommandService {
	return &HistoryCommandService{
		sessions: sessions,
		gateway:  gateway,
		settings: settings,
		logger:   logging.OrNop(settings.Logger),
		newID:    uuid.NewString,
	}
}

// OpenHistory opens a session and loads its first page.
func (s *HistoryCommandService) OpenHistory(ctx context.Context, cmd cqrs.OpenHistoryCommand) (*models.HistoryView, error) {
	status, err := history.ParseStatusFilter(cmd.Status)
	if err != nil {
		return nil, err
	}
	dates := history.DateRange{Start: cmd.Start, End: cmd.End}
	if err := dates.Validate(); err != nil {
		return nil, err
	}

	r := history.NewReconciler(s.gateway, history.Config{
		PageSize:    s.settings.PageSize,
		Credentials: s.settings.Credentials,
		Logger:      s.logger,
	})
	id := s.newID()
	s.sessions.Put(id, cmd.MerchantID, r)

	state, err := r.ApplyFilters(ctx, status, dates)
	if err := settle(err); err != nil {
		_ = s.sessions.Remove(id, cmd.MerchantID)
		return nil, err
	}
	s.logger.Info("history session opened",
		zap.String("sessionId", id),
		zap.String("merchantId", cmd.MerchantID),
		zap.String("status", string(status)),
	)
	return history.View(id, state), nil
}

func (s *HistoryCommandService) ApplyFilters(ctx context.Context, cmd cqrs.ApplyHistoryFiltersCommand) (*models.HistoryView, error) {
	r, err := s.sessions.Get(cmd.SessionID, cmd.MerchantID)
	if err != nil {
		return nil, err
	}
	status, err := history.ParseStatusFilter(cmd.Status)
	if err != nil {
		return nil, err
	}
	state, err := r.ApplyFilters(ctx, status, history.DateRange{Start: cmd.Start, End: cmd.End})
	if err := settle(err); err != nil {
		return nil, err
	}
	return history.View(cmd.SessionID, state), nil
}

func (s *HistoryCommandService) SetDateRange(cmd cqrs.SetHistoryDateRangeCommand) (*models.HistoryView, error) {
	r, err := s.sessions.Get(cmd.SessionID, cmd.MerchantID)
	if err != nil {
		return nil, err
	}
	state, err := r.SetDateRange(history.DateRange{Start: cmd.Start, End: cmd.End})
	if err != nil {
		return nil, err
	}
	return history.View(cmd.SessionID, state), nil
}

func (s *HistoryCommandService) LoadMore(ctx context.Context, cmd cqrs.LoadMoreHistoryCommand) (*models.HistoryView, error) {
	r, err := s.sessions.Get(cmd.SessionID, cmd.MerchantID)
	if err != nil {
		return nil, err
	}
	state, err := r.LoadMore(ctx)
	if err := settle(err); err != nil {
		return nil, err
	}
	return history.View(cmd.SessionID, state), nil
}

func (s *HistoryCommandService) Refresh(ctx context.Context, cmd cqrs.RefreshHistoryCommand) (*models.HistoryView, error) {
	r, err := s.sessions.Get(cmd.SessionID, cmd.MerchantID)
	if err != nil {
		return nil, err
	}
	state, err := r.Refresh(ctx)
	if err := settle(err); err != nil {
		return nil, err
	}
	return history.View(cmd.SessionID, state), nil
}

func (s *HistoryCommandService) CloseHistory(cmd cqrs.CloseHistoryCommand) error {
	return s.sessions.Remove(cmd.SessionID, cmd.MerchantID)
}

// settle drops fetch failures, which the snapshot already carries.
func settle(err error) error {
	var fetchErr *history.FetchError
	if errors.As(err, &fetchErr) {
		return nil
	}
	return err
}
