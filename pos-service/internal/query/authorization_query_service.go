package query

import (
	"context"

	"github.com/Kaosethi/MerchantApp-sub000/pos-service/internal/authorization"
	"github.com/Kaosethi/MerchantApp-sub000/pos-service/internal/repository"
	"github.com/Kaosethi/MerchantApp-sub000/shared/cqrs"
	"github.com/Kaosethi/MerchantApp-sub000/shared/models"
)

// ReceiptReader looks up a cached receipt, enforcing merchant ownership.
type ReceiptReader interface {
	GetByID(ctx context.Context, transactionID, merchantID string) (*models.ReceiptView, error)
}

// AuthorizationQueryService serves session snapshots and receipts. Ownership is
// always checked before anything is returned.
type AuthorizationQueryService struct {
	sessions *repository.SessionStore[*authorization.Flow]
	receipts ReceiptReader
}

func NewAuthorizationQueryService(sessions *repository.SessionStore[*authorization.Flow], receipts ReceiptReader) *AuthorizationQueryService {
	return &AuthorizationQueryService{sessions: sessions, receipts: receipts}
}

func (s *AuthorizationQueryService) GetAuthorization(q cqrs.GetAuthorizationQuery) (*models.AuthorizationView, error) {
	flow, err := s.sessions.Get(q.SessionID, q.MerchantID)
	if err != nil {
		return nil, err
	}
	view := authorization.View(q.SessionID, flow.Current())
	if err := flow.Ready(); err != nil {
		view.Error = err.Error()
	}
	return view, nil
}

func (s *AuthorizationQueryService) GetReceipt(ctx context.Context, q cqrs.GetReceiptQuery) (*models.ReceiptView, error) {
	return s.receipts.GetByID(ctx, q.TransactionID, q.MerchantID)
}
