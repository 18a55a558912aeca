package repository

import (
	"context"

	"github.com/Kaosethi/MerchantApp-sub000/shared/models"
)

// AttemptJournal records every classified PIN submission for audit.
type AttemptJournal interface {
	Record(ctx context.Context, rec *models.AttemptRecord) error
	ListBySession(ctx context.Context, sessionID string) ([]models.AttemptRecord, error)
	Close() error
}
