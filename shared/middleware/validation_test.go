package middleware

import (
	"testing"
)

func TestValidateRequest(t *testing.T) {
	type pinRequest struct {
		Pin   string `json:"pin" validate:"required,len=4,numeric"`
		Label string `validate:"max=3"`
	}

	tests := []struct {
		name      string
		req       any
		wantField string
		wantType  string
	}{
		{name: "valid", req: pinRequest{Pin: "1234"}},
		{name: "json name reported", req: pinRequest{Pin: "12"}, wantField: "pin", wantType: "len"},
		{name: "untagged field keeps go name", req: pinRequest{Pin: "1234", Label: "long"}, wantField: "Label", wantType: "max"},
		{name: "not a struct", req: "pin", wantField: "body", wantType: "invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateRequest(tt.req)
			if tt.wantField == "" {
				if errs != nil {
					t.Fatalf("expected no errors, got %+v", errs)
				}
				return
			}
			if len(errs) != 1 || errs[0].Field != tt.wantField || errs[0].Type != tt.wantType {
				t.Fatalf("unexpected errors: %+v", errs)
			}
		})
	}
}
