// Package authorization drives one PIN-authorized transfer: it owns the PIN
// buffer, the attempt budget and lockout, and classifies backend responses
// into outcomes.
package authorization

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/Kaosethi/MerchantApp-sub000/pos-service/internal/observable"
	"github.com/Kaosethi/MerchantApp-sub000/shared/cqrs"
	"github.com/Kaosethi/MerchantApp-sub000/shared/logging"
	"github.com/Kaosethi/MerchantApp-sub000/shared/models"
	"github.com/Kaosethi/MerchantApp-sub000/shared/utils"
	"go.uber.org/zap"
)

// DefaultMaxAttempts is the PIN attempt budget of a session.
const DefaultMaxAttempts = 7

// TransactionGateway performs the backend transfer call.
type TransactionGateway interface {
	Process(ctx context.Context, cmd cqrs.ProcessTransactionCommand) (*models.ProcessResult, error)
}

type Config struct {
	MaxAttempts int
	// Credentials is fired when the backend rejects the merchant credentials.
	Credentials *observable.CredentialSignal
	Logger      *zap.Logger
}

// Flow is the state machine of one authorization session. Snapshot
// subscribers are called synchronously while the flow lock is held and must
// not call back into the flow.
type Flow struct {
	gateway     TransactionGateway
	credentials *observable.CredentialSignal
	logger      *zap.Logger
	paramsErr   error

	mu      sync.Mutex
	pin     []byte
	closed  bool
	state   *observable.Cell[Snapshot]
	outcome *observable.Slot[Outcome]
}

// NewFlow opens a session in the Idle state. Invalid params do not fail
// construction; they are reported by Ready and every submission is refused.
func NewFlow(params Params, gateway TransactionGateway, cfg Config) *Flow {
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	amount, err := utils.ParseAmount(params.Amount)
	var paramsErr error
	switch {
	case err != nil:
		paramsErr = &ValidationError{Field: "amount", Message: err.Error()}
	case strings.TrimSpace(params.BeneficiaryID) == "":
		paramsErr = &ValidationError{Field: "beneficiaryId", Message: "beneficiary is required"}
	}

	return &Flow{
		gateway:     gateway,
		credentials: cfg.Credentials,
		logger:      logging.OrNop(cfg.Logger),
		paramsErr:   paramsErr,
		pin:         make([]byte, 0, utils.PinLength),
		state: observable.NewCell(Snapshot{
			Status:            StatusIdle,
			Amount:            amount,
			BeneficiaryID:     strings.TrimSpace(params.BeneficiaryID),
			BeneficiaryName:   strings.TrimSpace(params.BeneficiaryName),
			Category:          strings.TrimSpace(params.Category),
			AttemptsRemaining: maxAttempts,
		}),
		outcome: observable.NewSlot[Outcome](),
	}
}

// Ready reports whether the navigation params allow any submission at all.
func (f *Flow) Ready() error {
	return f.paramsErr
}

func (f *Flow) Current() Snapshot {
	return f.state.Current()
}

// Subscribe delivers the current snapshot and every later one to fn.
func (f *Flow) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	return f.state.Subscribe(fn)
}

// TakeOutcome consumes the pending one-shot outcome, if any.
func (f *Flow) TakeOutcome() (Outcome, bool) {
	return f.outcome.Take()
}

// AppendDigit adds one keypad digit to the PIN buffer. completed is true only
// for the call whose digit filled the buffer; that caller submits it.
func (f *Flow) AppendDigit(digit string) (snap Snapshot, completed bool, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	snap = f.state.Current()
	if err := f.checkOpen(snap); err != nil {
		return snap, false, err
	}
	if len(digit) != 1 || !utils.IsDigits(digit) {
		return snap, false, &ValidationError{Field: "digit", Message: "must be a single digit"}
	}
	if len(f.pin) >= utils.PinLength {
		return snap, false, ErrPinFull
	}
	f.pin = append(f.pin, digit[0])
	snap.PinLength = len(f.pin)
	f.state.Set(snap)
	return snap, len(f.pin) == utils.PinLength, nil
}

// DeleteDigit removes the last keypad digit, if any.
func (f *Flow) DeleteDigit() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	snap := f.state.Current()
	if f.closed || snap.IsSubmitting() || len(f.pin) == 0 {
		return snap
	}
	f.pin = f.pin[:len(f.pin)-1]
	snap.PinLength = len(f.pin)
	f.state.Set(snap)
	return snap
}

// ClearPin empties the PIN buffer.
func (f *Flow) ClearPin() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	snap := f.state.Current()
	if f.closed || snap.IsSubmitting() || len(f.pin) == 0 {
		return snap
	}
	f.pin = f.pin[:0]
	snap.PinLength = 0
	f.state.Set(snap)
	return snap
}

// SubmitBuffered submits the PIN currently held in the keypad buffer.
func (f *Flow) SubmitBuffered(ctx context.Context) (Snapshot, error) {
	f.mu.Lock()
	pin := string(f.pin)
	f.mu.Unlock()
	return f.Submit(ctx, pin)
}

// Submit sends one PIN attempt to the gateway and classifies the response.
// Local rejections return an error and leave the state untouched; gateway
// failures are reported through the snapshot's LastOutcome with a nil error.
func (f *Flow) Submit(ctx context.Context, pin string) (Snapshot, error) {
	cmd, err := f.begin(pin)
	if err != nil {
		return f.state.Current(), err
	}

	res, callErr := f.gateway.Process(ctx, cmd)

	snap, fail, err := f.finish(res, callErr)
	if fail.unauthorized && f.credentials != nil {
		f.credentials.Fire(observable.Invalidation{Reason: fail.message})
	}
	return snap, err
}

// Close tears the session down. A gateway response arriving afterwards is
// discarded.
func (f *Flow) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	for i := range f.pin {
		f.pin[i] = 0
	}
	f.pin = f.pin[:0]
}

func (f *Flow) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *Flow) checkOpen(snap Snapshot) error {
	switch {
	case f.closed:
		return ErrSessionClosed
	case f.paramsErr != nil:
		return f.paramsErr
	case snap.Locked:
		return ErrLocked
	case snap.Status == StatusSucceeded:
		return ErrAlreadyAuthorized
	case snap.IsSubmitting():
		return ErrSubmissionInFlight
	}
	return nil
}

func (f *Flow) begin(pin string) (cqrs.ProcessTransactionCommand, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	snap := f.state.Current()
	if err := f.checkOpen(snap); err != nil {
		return cqrs.ProcessTransactionCommand{}, err
	}
	if !utils.ValidatePin(pin) {
		return cqrs.ProcessTransactionCommand{}, &ValidationError{
			Field:   "pin",
			Message: fmt.Sprintf("must be exactly %d digits", utils.PinLength),
		}
	}

	snap.Status = StatusSubmitting
	f.state.Set(snap)

	return cqrs.ProcessTransactionCommand{
		BeneficiaryID: snap.BeneficiaryID,
		Pin:           pin,
		Amount:        snap.Amount.String(),
		Description:   snap.Category,
	}, nil
}

func (f *Flow) finish(res *models.ProcessResult, callErr error) (Snapshot, failure, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		f.logger.Debug("discarding gateway response for closed session",
			zap.String("beneficiary", utils.MaskID(f.state.Current().BeneficiaryID)))
		return f.state.Current(), failure{}, ErrSessionClosed
	}

	next := f.state.Current()
	f.pin = f.pin[:0]
	next.PinLength = 0
	next.Status = StatusAwaitingInput

	var outcome Outcome
	var fail failure
	switch {
	case callErr == nil && res != nil && res.TransactionID != "":
		next.Status = StatusSucceeded
		outcome = Success(res.TransactionID)
	case callErr == nil:
		outcome = UnknownError("response carried no transaction id")
	default:
		fail = classifyError(callErr)
		switch {
		case fail.transport:
			outcome = NetworkError()
		case fail.protocol:
			outcome = UnknownError(fail.message)
		case fail.class == classPinIncorrect:
			next.AttemptsRemaining--
			if next.AttemptsRemaining <= 0 {
				next.AttemptsRemaining = 0
				next.Locked = true
				next.Status = StatusLocked
				outcome = Locked()
			} else {
				outcome = PinIncorrect(next.AttemptsRemaining)
			}
		case fail.class == classInsufficientFunds:
			outcome = InsufficientFunds(fail.message)
		default:
			outcome = Declined(fail.message)
		}
	}

	next.LastOutcome = &outcome
	f.state.Set(next)
	if outcome.Notify() {
		f.outcome.Put(outcome)
	}

	f.logger.Info("authorization attempt classified",
		zap.String("beneficiary", utils.MaskID(next.BeneficiaryID)),
		zap.String("amount", next.Amount.String()),
		zap.String("outcome", string(outcome.Kind)),
		zap.Int("attemptsRemaining", next.AttemptsRemaining),
		zap.String("status", string(next.Status)),
	)
	return next, fail, nil
}
