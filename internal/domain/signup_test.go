package domain

import (
	"errors"
	"testing"
)

func TestSignupRequestValidate(t *testing.T) {
	valid := SignupRequest{Email: "a@x.com", Password: "longenough", FullName: "Ana X"}

	tests := []struct {
		name      string
		mutate    func(r *SignupRequest)
		wantField string
	}{
		{name: "valid", mutate: func(r *SignupRequest) {}},
		{name: "missing email", mutate: func(r *SignupRequest) { r.Email = "" }, wantField: "email"},
		{name: "malformed email", mutate: func(r *SignupRequest) { r.Email = "not-an-address" }, wantField: "email"},
		{name: "short password", mutate: func(r *SignupRequest) { r.Password = "short" }, wantField: "password"},
		{name: "password at boundary", mutate: func(r *SignupRequest) { r.Password = "12345678" }},
		{name: "missing full name", mutate: func(r *SignupRequest) { r.FullName = "  " }, wantField: "full_name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			err := req.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("expected valid request, got %v", err)
				}
				return
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if ve.Field != tt.wantField {
				t.Fatalf("expected field %q, got %q", tt.wantField, ve.Field)
			}
		})
	}
}

func TestRetryRequestValidate(t *testing.T) {
	valid := RetryRequest{IdentityUserID: "kc-sub-1", Email: "a@x.com", FullName: "Ana X"}

	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid request, got %v", err)
	}

	missingID := valid
	missingID.IdentityUserID = ""
	var ve *ValidationError
	if err := missingID.Validate(); !errors.As(err, &ve) || ve.Field != "identity_user_id" {
		t.Fatalf("expected identity_user_id validation error, got %v", err)
	}
}
