package query

import (
	"github.com/Kaosethi/MerchantApp-sub000/pos-service/internal/history"
	"github.com/Kaosethi/MerchantApp-sub000/pos-service/internal/repository"
	"github.com/Kaosethi/MerchantApp-sub000/shared/cqrs"
	"github.com/Kaosethi/MerchantApp-sub000/shared/models"
)

type HistoryQueryService struct {
	sessions *repository.SessionStore[*history.Reconciler]
}

func NewHistoryQueryService(sessions *repository.SessionStore[*history.Reconciler]) *HistoryQueryService {
	return &HistoryQueryService{sessions: sessions}
}

func (s *HistoryQueryService) GetHistory(q cqrs.GetHistoryQuery) (*models.HistoryView, error) {
	r, err := s.sessions.Get(q.SessionID, q.MerchantID)
	if err != nil {
		return nil, err
	}
	return history.View(q.SessionID, r.Current()), nil
}
