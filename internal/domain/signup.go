/**
 * @description
 * This file defines the public request and response payloads for the signup
 * endpoints, along with their validation rules. Validation runs before any
 * outbound call is made, so a malformed request never touches the external
 * systems.
 */
package domain

import (
	"fmt"
	"net/mail"
	"strings"
)

const minPasswordLength = 8

// SignupRequest is the payload for POST /signup. It is transient and never
// persisted by this service.
type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone,omitempty"`
	Document string `json:"document,omitempty"`
}

// RetryRequest is the payload for POST /signup/retry. It resumes a signup
// whose identity step already succeeded but whose buyer creation did not.
type RetryRequest struct {
	IdentityUserID string `json:"identity_user_id"`
	Email          string `json:"email"`
	FullName       string `json:"full_name"`
	Phone          string `json:"phone,omitempty"`
	Document       string `json:"document,omitempty"`
}

// SignupResult is returned to the caller on success. BuyerID is minted by the
// buyer registry; IdentityUserID is the identity provider's stable subject.
type SignupResult struct {
	IdentityUserID string `json:"identity_user_id"`
	BuyerID        string `json:"buyer_id"`
}

// ValidationError marks a request rejected before any outbound call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Validate checks the signup payload against the inbound contract.
func (r SignupRequest) Validate() error {
	if err := validateEmail(r.Email); err != nil {
		return err
	}
	if len(r.Password) < minPasswordLength {
		return &ValidationError{Field: "password", Reason: fmt.Sprintf("must be at least %d characters", minPasswordLength)}
	}
	if strings.TrimSpace(r.FullName) == "" {
		return &ValidationError{Field: "full_name", Reason: "is required"}
	}
	return nil
}

// Validate checks the retry payload against the inbound contract.
func (r RetryRequest) Validate() error {
	if strings.TrimSpace(r.IdentityUserID) == "" {
		return &ValidationError{Field: "identity_user_id", Reason: "is required"}
	}
	if err := validateEmail(r.Email); err != nil {
		return err
	}
	if strings.TrimSpace(r.FullName) == "" {
		return &ValidationError{Field: "full_name", Reason: "is required"}
	}
	return nil
}

func validateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return &ValidationError{Field: "email", Reason: "is required"}
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return &ValidationError{Field: "email", Reason: "is not a valid address"}
	}
	return nil
}
