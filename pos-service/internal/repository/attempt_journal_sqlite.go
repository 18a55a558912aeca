package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Kaosethi/MerchantApp-sub000/shared/models"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// attemptRow is the on-device journal row.
type attemptRow struct {
	gorm.Model
	SessionID         string `gorm:"index"`
	MerchantID        string
	BeneficiaryID     string
	Amount            string
	Outcome           string
	AttemptsRemaining int
	TransactionID     string
	Message           string
	AttemptedAt       time.Time
}

func (attemptRow) TableName() string { return "authorization_attempts" }

// SQLiteAttemptJournal keeps the journal in a local SQLite file.
type SQLiteAttemptJournal struct {
	db *gorm.DB
}

func OpenSQLiteAttemptJournal(path string) (*SQLiteAttemptJournal, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open journal database: %w", err)
	}
	if err := db.AutoMigrate(&attemptRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate journal schema: %w", err)
	}
	return &SQLiteAttemptJournal{db: db}, nil
}

func (j *SQLiteAttemptJournal) Record(ctx context.Context, rec *models.AttemptRecord) error {
	row := &attemptRow{
		SessionID:         rec.SessionID,
		MerchantID:        rec.MerchantID,
		BeneficiaryID:     rec.BeneficiaryID,
		Amount:            rec.Amount.String(),
		Outcome:           rec.Outcome,
		AttemptsRemaining: rec.AttemptsRemaining,
		TransactionID:     rec.TransactionID,
		Message:           rec.Message,
		AttemptedAt:       rec.CreatedAt,
	}
	if err := j.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("failed to record attempt: %w", err)
	}
	return nil
}

func (j *SQLiteAttemptJournal) ListBySession(ctx context.Context, sessionID string) ([]models.AttemptRecord, error) {
	var rows []attemptRow
	err := j.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("attempted_at, id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}

	records := make([]models.AttemptRecord, 0, len(rows))
	for _, row := range rows {
		amount, err := decimal.NewFromString(row.Amount)
		if err != nil {
			return nil, fmt.Errorf("invalid stored amount %q: %w", row.Amount, err)
		}
		records = append(records, models.AttemptRecord{
			SessionID:         row.SessionID,
			MerchantID:        row.MerchantID,
			BeneficiaryID:     row.BeneficiaryID,
			Amount:            amount,
			Outcome:           row.Outcome,
			AttemptsRemaining: row.AttemptsRemaining,
			TransactionID:     row.TransactionID,
			Message:           row.Message,
			CreatedAt:         row.AttemptedAt,
		})
	}
	return records, nil
}

func (j *SQLiteAttemptJournal) Close() error {
	sqlDB, err := j.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
