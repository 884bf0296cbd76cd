/**
 * @description
 * This file contains the HTTP handlers for the signup endpoints. Handlers
 * stay thin: decode, validate before any outbound call, invoke the
 * orchestrator, and translate the outcome. Internal failure detail is never
 * leaked to the caller; errors surface as a stable machine-readable code.
 */
package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/fiap/signup-service/internal/domain"
	"github.com/fiap/signup-service/pkg/correlation"
)

// signupWorkflowTimeout bounds the detached workflow context. It covers the
// full sequential chain of outbound calls including retries.
const signupWorkflowTimeout = 90 * time.Second

// SignupOrchestrator runs the signup workflow. Implemented by app.SignupService.
type SignupOrchestrator interface {
	Signup(ctx context.Context, req domain.SignupRequest) (*domain.SignupResult, error)
	RetrySignup(ctx context.Context, req domain.RetryRequest) (*domain.SignupResult, error)
}

// SignupHandler handles the signup and retry endpoints.
type SignupHandler struct {
	service SignupOrchestrator
}

// NewSignupHandler creates a new handler for the signup endpoints.
func NewSignupHandler(service SignupOrchestrator) *SignupHandler {
	return &SignupHandler{service: service}
}

// HandleSignup processes POST /signup.
func (h *SignupHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req domain.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	ctx, cancel := h.workflowContext(r)
	defer cancel()

	result, err := h.service.Signup(ctx, req)
	if err != nil {
		log.Printf("ERROR: signup failed request_id=%s email=%s: %v", correlation.FromContext(r.Context()), req.Email, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "signup_failed"})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleRetry processes POST /signup/retry, completing a signup whose buyer
// step failed after the identity user was created.
func (h *SignupHandler) HandleRetry(w http.ResponseWriter, r *http.Request) {
	var req domain.RetryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	ctx, cancel := h.workflowContext(r)
	defer cancel()

	result, err := h.service.RetrySignup(ctx, req)
	if err != nil {
		log.Printf("ERROR: signup retry failed request_id=%s user_id=%s: %v", correlation.FromContext(r.Context()), req.IdentityUserID, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "signup_retry_failed"})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// workflowContext detaches the workflow from the inbound request context. A
// client disconnect must not abort a half-completed sequence of remote
// effects; partial completion has to reach a resumable state. Only the
// correlation id crosses over.
func (h *SignupHandler) workflowContext(r *http.Request) (context.Context, context.CancelFunc) {
	ctx := correlation.WithContext(context.Background(), correlation.FromContext(r.Context()))
	return context.WithTimeout(ctx, signupWorkflowTimeout)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("Failed to encode response body: %v", err)
	}
}
