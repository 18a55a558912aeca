package authorization

import (
	"errors"
	"fmt"
	"testing"

	"github.com/Kaosethi/MerchantApp-sub000/pos-service/internal/gateway"
)

func TestClassifyReason(t *testing.T) {
	tests := []struct {
		reason string
		want   declineClass
	}{
		{"Incorrect PIN", classPinIncorrect},
		{"INCORRECT PIN. 3 attempts left", classPinIncorrect},
		{"Insufficient Funds for account", classInsufficientFunds},
		{"wallet has insufficient balance", classInsufficientFunds},
		{"Daily limit exceeded", classDeclined},
		{"", classDeclined},
		{"pin incorrect", classDeclined},
	}
	for _, tt := range tests {
		if got := classifyReason(tt.reason); got != tt.want {
			t.Errorf("classifyReason(%q) = %d, want %d", tt.reason, got, tt.want)
		}
	}
}

func TestClassifyError_Wrapped(t *testing.T) {
	err := fmt.Errorf("submit: %w", &gateway.HTTPError{Status: 401, Reason: "token revoked"})
	f := classifyError(err)
	if f.transport || f.protocol || f.class != classDeclined || !f.unauthorized {
		t.Errorf("unexpected classification %+v", f)
	}

	f = classifyError(fmt.Errorf("submit: %w", &gateway.TransportError{Op: "op", Err: errors.New("reset")}))
	if !f.transport {
		t.Errorf("expected transport classification, got %+v", f)
	}

	f = classifyError(errors.New("boom"))
	if !f.protocol {
		t.Errorf("unknown errors classify as protocol errors, got %+v", f)
	}
}

func TestOutcomeString(t *testing.T) {
	tests := []struct {
		outcome Outcome
		want    string
	}{
		{Success("t1"), "success(t1)"},
		{PinIncorrect(3), "pin_incorrect(3)"},
		{Locked(), "locked"},
		{NetworkError(), "network_error"},
		{Declined("frozen"), "declined(frozen)"},
	}
	for _, tt := range tests {
		if got := tt.outcome.String(); got != tt.want {
			t.Errorf("expected %q got %q", tt.want, got)
		}
	}
}
