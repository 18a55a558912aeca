package command

import (
	"context"
	"time"

	"github.com/Kaosethi/MerchantApp-sub000/pos-service/internal/authorization"
	"github.com/Kaosethi/MerchantApp-sub000/pos-service/internal/observable"
	"github.com/Kaosethi/MerchantApp-sub000/pos-service/internal/repository"
	"github.com/Kaosethi/MerchantApp-sub000/shared/cqrs"
	"github.com/Kaosethi/MerchantApp-sub000/shared/events"
	"github.com/Kaosethi/MerchantApp-sub000/shared/logging"
	"github.com/Kaosethi/MerchantApp-sub000/shared/models"
	"github.com/Kaosethi/MerchantApp-sub000/shared/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventPublisher appends an event to a stream.
type EventPublisher interface {
	Publish(ctx context.Context, stream, eventType string, data any) error
}

// ReceiptWriter caches the receipt of a successful transfer.
type ReceiptWriter interface {
	Save(ctx context.Context, view *models.ReceiptView)
}

type AuthorizationSettings struct {
	MaxAttempts int
	Credentials *observable.CredentialSignal
	Logger      *zap.Logger
}

// AuthorizationCommandService owns the live authorization sessions. Every
// classified attempt is journaled; one-shot outcomes are also published and a
// success caches the receipt.
type AuthorizationCommandService struct {
	sessions  *repository.SessionStore[*authorization.Flow]
	gateway   authorization.TransactionGateway
	journal   repository.AttemptJournal
	receipts  ReceiptWriter
	publisher EventPublisher
	settings  AuthorizationSettings
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string
}

func NewAuthorizationCommandService(
	sessions *repository.SessionStore[*authorization.Flow],
	gateway authorization.TransactionGateway,
	journal repository.AttemptJournal,
	receipts ReceiptWriter,
	publisher EventPublisher,
	settings AuthorizationSettings,
) *AuthorizationCommandService {
	return &AuthorizationCommandService{
		sessions:  sessions,
		gateway:   gateway,
		journal:   journal,
		receipts:  receipts,
		publisher: publisher,
		settings:  settings,
		logger:    logging.OrNop(settings.Logger),
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
}

// StartAuthorization opens a session. Invalid navigation params still open
// one; the view's Error reports why every submission will be refused.
func (s *AuthorizationCommandService) StartAuthorization(cmd cqrs.StartAuthorizationCommand) (*models.AuthorizationView, error) {
	flow := authorization.NewFlow(authorization.Params{
		Amount:          cmd.Amount,
		BeneficiaryID:   cmd.BeneficiaryID,
		BeneficiaryName: cmd.BeneficiaryName,
		Category:        cmd.Category,
	}, s.gateway, authorization.Config{
		MaxAttempts: s.settings.MaxAttempts,
		Credentials: s.settings.Credentials,
		Logger:      s.logger,
	})

	id := s.newID()
	s.sessions.Put(id, cmd.MerchantID, flow)

	view := authorization.View(id, flow.Current())
	if err := flow.Ready(); err != nil {
		view.Error = err.Error()
	}
	s.logger.Info("authorization session opened",
		zap.String("sessionId", id),
		zap.String("merchantId", cmd.MerchantID),
		zap.Bool("ready", view.Error == ""),
	)
	return view, nil
}

// SubmitPin sends one attempt. The transfer call is detached from ctx: once
// it starts, only the gateway's own timeout ends it.
func (s *AuthorizationCommandService) SubmitPin(ctx context.Context, cmd cqrs.SubmitPinCommand) (*models.AuthorizationView, error) {
	flow, err := s.sessions.Get(cmd.SessionID, cmd.MerchantID)
	if err != nil {
		return nil, err
	}
	snap, err := flow.Submit(context.WithoutCancel(ctx), cmd.Pin)
	if err != nil {
		return nil, err
	}
	s.recordAttempt(ctx, cmd.SessionID, cmd.MerchantID, snap)
	return authorization.View(cmd.SessionID, snap), nil
}

// EnterDigit appends a keypad digit. The request whose digit completes the PIN
// submits it.
func (s *AuthorizationCommandService) EnterDigit(ctx context.Context, cmd cqrs.EnterDigitCommand) (*models.AuthorizationView, error) {
	flow, err := s.sessions.Get(cmd.SessionID, cmd.MerchantID)
	if err != nil {
		return nil, err
	}
	snap, completed, err := flow.AppendDigit(cmd.Digit)
	if err != nil {
		return nil, err
	}
	if completed {
		if snap, err = flow.SubmitBuffered(context.WithoutCancel(ctx)); err != nil {
			return nil, err
		}
		s.recordAttempt(ctx, cmd.SessionID, cmd.MerchantID, snap)
	}
	return authorization.View(cmd.SessionID, snap), nil
}

func (s *AuthorizationCommandService) DeleteDigit(cmd cqrs.DeleteDigitCommand) (*models.AuthorizationView, error) {
	flow, err := s.sessions.Get(cmd.SessionID, cmd.MerchantID)
	if err != nil {
		return nil, err
	}
	return authorization.View(cmd.SessionID, flow.DeleteDigit()), nil
}

// TakeOutcome consumes the pending one-shot outcome. It returns nil when there
// is none.
func (s *AuthorizationCommandService) TakeOutcome(cmd cqrs.TakeOutcomeCommand) (*models.OutcomeView, error) {
	flow, err := s.sessions.Get(cmd.SessionID, cmd.MerchantID)
	if err != nil {
		return nil, err
	}
	outcome, ok := flow.TakeOutcome()
	if !ok {
		return nil, nil
	}
	return authorization.OutcomeView(outcome), nil
}

func (s *AuthorizationCommandService) EndAuthorization(cmd cqrs.EndAuthorizationCommand) error {
	if err := s.sessions.Remove(cmd.SessionID, cmd.MerchantID); err != nil {
		return err
	}
	s.logger.Info("authorization session closed", zap.String("sessionId", cmd.SessionID))
	return nil
}

// recordAttempt runs the side effects of one classified attempt. They outlive
// the request so a disconnecting terminal cannot drop the audit entry.
func (s *AuthorizationCommandService) recordAttempt(ctx context.Context, sessionID, merchantID string, snap authorization.Snapshot) {
	if snap.LastOutcome == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	outcome := *snap.LastOutcome

	if s.journal != nil {
		err := s.journal.Record(ctx, &models.AttemptRecord{
			SessionID:         sessionID,
			MerchantID:        merchantID,
			BeneficiaryID:     snap.BeneficiaryID,
			Amount:            snap.Amount,
			Outcome:           string(outcome.Kind),
			AttemptsRemaining: snap.AttemptsRemaining,
			TransactionID:     outcome.TransactionID,
			Message:           outcome.Message,
			CreatedAt:         s.now(),
		})
		if err != nil {
			s.logger.Error("failed to journal attempt", zap.String("sessionId", sessionID), zap.Error(err))
		}
	}

	if outcome.Kind == authorization.OutcomeSuccess && s.receipts != nil {
		s.receipts.Save(ctx, &models.ReceiptView{
			TransactionID:   outcome.TransactionID,
			MerchantID:      merchantID,
			BeneficiaryID:   snap.BeneficiaryID,
			BeneficiaryName: snap.BeneficiaryName,
			Amount:          snap.Amount,
			Category:        snap.Category,
			CreatedAt:       s.now(),
		})
	}

	if !outcome.Notify() || s.publisher == nil {
		return
	}
	eventType, data := outcomeEvent(sessionID, merchantID, snap, outcome)
	if err := s.publisher.Publish(ctx, events.AuthorizationEventsStream, eventType, data); err != nil {
		s.logger.Warn("failed to publish outcome event",
			zap.String("type", eventType),
			zap.String("beneficiary", utils.MaskID(snap.BeneficiaryID)),
			zap.Error(err),
		)
	}
}

func outcomeEvent(sessionID, merchantID string, snap authorization.Snapshot, outcome authorization.Outcome) (string, any) {
	switch outcome.Kind {
	case authorization.OutcomeSuccess:
		return events.TransactionAuthorized, events.TransactionAuthorizedEvent{
			SessionID:     sessionID,
			MerchantID:    merchantID,
			TransactionID: outcome.TransactionID,
			BeneficiaryID: snap.BeneficiaryID,
			Amount:        snap.Amount,
			Category:      snap.Category,
		}
	case authorization.OutcomeLocked:
		return events.AuthorizationLocked, events.AuthorizationLockedEvent{
			SessionID:     sessionID,
			MerchantID:    merchantID,
			BeneficiaryID: snap.BeneficiaryID,
			Amount:        snap.Amount,
		}
	default:
		return events.AuthorizationFailed, events.AuthorizationFailedEvent{
			SessionID:     sessionID,
			MerchantID:    merchantID,
			BeneficiaryID: snap.BeneficiaryID,
			Amount:        snap.Amount,
			Outcome:       string(outcome.Kind),
			Message:       outcome.Message,
		}
	}
}
