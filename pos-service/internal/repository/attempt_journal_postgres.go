package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Kaosethi/MerchantApp-sub000/shared/models"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
)

const attemptSchema = `
	CREATE TABLE IF NOT EXISTS authorization_attempts (
		id                 BIGSERIAL PRIMARY KEY,
		session_id         TEXT NOT NULL,
		merchant_id        TEXT NOT NULL,
		beneficiary_id     TEXT NOT NULL,
		amount             NUMERIC(18, 2) NOT NULL,
		outcome            TEXT NOT NULL,
		attempts_remaining INTEGER NOT NULL,
		transaction_id     TEXT,
		message            TEXT,
		created_at         TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS authorization_attempts_session_idx
		ON authorization_attempts (session_id, created_at);
`

// PostgresAttemptJournal stores attempts in the authorization_attempts table.
type PostgresAttemptJournal struct {
	db *sql.DB
}

// OpenPostgresAttemptJournal connects to dsn and ensures the schema exists.
func OpenPostgresAttemptJournal(ctx context.Context, dsn string) (*PostgresAttemptJournal, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	j := NewPostgresAttemptJournal(db)
	if err := j.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return j, nil
}

func NewPostgresAttemptJournal(db *sql.DB) *PostgresAttemptJournal {
	return &PostgresAttemptJournal{db: db}
}

func (j *PostgresAttemptJournal) EnsureSchema(ctx context.Context) error {
	if _, err := j.db.ExecContext(ctx, attemptSchema); err != nil {
		return fmt.Errorf("failed to create attempt journal schema: %w", err)
	}
	return nil
}

func (j *PostgresAttemptJournal) Record(ctx context.Context, rec *models.AttemptRecord) error {
	query := `
		INSERT INTO authorization_attempts
			(session_id, merchant_id, beneficiary_id, amount, outcome, attempts_remaining, transaction_id, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := j.db.ExecContext(ctx, query,
		rec.SessionID, rec.MerchantID, rec.BeneficiaryID,
		rec.Amount.String(), rec.Outcome, rec.AttemptsRemaining,
		nullString(rec.TransactionID), nullString(rec.Message), rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record attempt: %w", err)
	}
	return nil
}

func (j *PostgresAttemptJournal) ListBySession(ctx context.Context, sessionID string) ([]models.AttemptRecord, error) {
	query := `
		SELECT session_id, merchant_id, beneficiary_id, amount, outcome, attempts_remaining, transaction_id, message, created_at
		FROM authorization_attempts
		WHERE session_id = $1
		ORDER BY created_at, id
	`
	rows, err := j.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}
	defer rows.Close()

	var records []models.AttemptRecord
	for rows.Next() {
		var rec models.AttemptRecord
		var amount string
		var transactionID, message sql.NullString

		if err := rows.Scan(
			&rec.SessionID, &rec.MerchantID, &rec.BeneficiaryID,
			&amount, &rec.Outcome, &rec.AttemptsRemaining,
			&transactionID, &message, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan attempt: %w", err)
		}
		if rec.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("invalid stored amount %q: %w", amount, err)
		}
		rec.TransactionID = transactionID.String
		rec.Message = message.String
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (j *PostgresAttemptJournal) Close() error {
	return j.db.Close()
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}
