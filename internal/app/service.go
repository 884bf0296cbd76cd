/**
 * @description
 * This file contains the core business logic for the signup service,
 * implemented as a `SignupService`. It orchestrates the signup workflow by
 * sequencing the identity provider and buyer registry clients: identity
 * creation, credential setup, best-effort role assignment, then buyer
 * creation keyed by the identity subject.
 *
 * @notes
 * - The workflow is strictly sequential; each step's input depends on the
 *   previous step's output, so there is nothing to parallelize.
 * - There is no compensating rollback. A created identity user is never
 *   deleted when buyer creation fails; callers recover through RetrySignup,
 *   which re-enters at the buyer step only.
 * - Password setting is always invoked and fatal on failure: a signup
 *   without a working credential is not a successful signup.
 */
package app

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/fiap/signup-service/internal/domain"
	"github.com/fiap/signup-service/pkg/correlation"
	"github.com/fiap/signup-service/pkg/keycloakclient"
)

// IdentityAdmin manages the identity-user lifecycle on the provider.
type IdentityAdmin interface {
	CreateOrGetUser(ctx context.Context, email, fullName string, enabled bool) (string, error)
	SetPassword(ctx context.Context, userID, password string, temporary bool) error
	AssignRealmRoles(ctx context.Context, userID string, roleNames []string) error
}

// BuyerRegistry creates buyer records on the external registry.
type BuyerRegistry interface {
	CreateBuyer(ctx context.Context, req domain.BuyerCreateRequest) (*domain.Buyer, error)
}

// EventPublisher publishes signup lifecycle events. Publishing is best
// effort and never fails the workflow.
type EventPublisher interface {
	Publish(ctx context.Context, exchange, routingKey string, body interface{}) error
}

// SignupService sequences the signup workflow across the two external
// systems.
type SignupService struct {
	identity      IdentityAdmin
	buyers        BuyerRegistry
	publisher     EventPublisher
	defaultRoles  []string
	eventExchange string
}

// NewSignupService creates a new instance of SignupService. publisher may be
// nil when no broker is configured.
func NewSignupService(identity IdentityAdmin, buyers BuyerRegistry, publisher EventPublisher, defaultRoles []string, eventExchange string) *SignupService {
	return &SignupService{
		identity:      identity,
		buyers:        buyers,
		publisher:     publisher,
		defaultRoles:  defaultRoles,
		eventExchange: eventExchange,
	}
}

// Signup runs the full workflow: create or resolve the identity user, set
// its credential, assign default roles (best effort), then create the buyer
// with the identity subject as external id.
func (s *SignupService) Signup(ctx context.Context, req domain.SignupRequest) (*domain.SignupResult, error) {
	userID, err := s.identity.CreateOrGetUser(ctx, req.Email, req.FullName, true)
	if err != nil {
		return nil, fmt.Errorf("identity step failed: %w", err)
	}
	log.Printf("Using identity user %s as external_id for buyer", userID)

	// Always set the password, whether the user is new or pre-existing. The
	// caller's credential must work after a successful signup.
	if err := s.identity.SetPassword(ctx, userID, req.Password, false); err != nil {
		return nil, fmt.Errorf("credential step failed for user %s: %w", userID, err)
	}

	if len(s.defaultRoles) > 0 {
		if err := s.identity.AssignRealmRoles(ctx, userID, s.defaultRoles); err != nil {
			var permErr *keycloakclient.PermissionError
			if !errors.As(err, &permErr) {
				return nil, fmt.Errorf("role step failed for user %s: %w", userID, err)
			}
			log.Printf("WARNING: Role assignment skipped for user %s: %v", userID, err)
		}
	}

	return s.createBuyer(ctx, userID, req.Email, req.FullName, req.Phone, req.Document)
}

// RetrySignup completes a partially-finished signup: the identity user
// already exists (steps 1-3 succeeded earlier), so only the buyer step runs.
// The identity user is never re-created or mutated here.
func (s *SignupService) RetrySignup(ctx context.Context, req domain.RetryRequest) (*domain.SignupResult, error) {
	return s.createBuyer(ctx, req.IdentityUserID, req.Email, req.FullName, req.Phone, req.Document)
}

func (s *SignupService) createBuyer(ctx context.Context, userID, email, fullName, phone, document string) (*domain.SignupResult, error) {
	buyer, err := s.buyers.CreateBuyer(ctx, domain.BuyerCreateRequest{
		Email:      email,
		FullName:   fullName,
		Phone:      phone,
		Document:   document,
		ExternalID: userID,
	})
	if err != nil {
		return nil, fmt.Errorf("buyer step failed for user %s: %w", userID, err)
	}

	result := &domain.SignupResult{IdentityUserID: userID, BuyerID: buyer.ID}
	s.publishCompleted(ctx, result, email)
	return result, nil
}

func (s *SignupService) publishCompleted(ctx context.Context, result *domain.SignupResult, email string) {
	if s.publisher == nil {
		return
	}
	event := domain.SignupCompletedEvent{
		IdentityUserID: result.IdentityUserID,
		BuyerID:        result.BuyerID,
		Email:          email,
		CorrelationID:  correlation.FromContext(ctx),
	}
	if err := s.publisher.Publish(ctx, s.eventExchange, "signup.completed", event); err != nil {
		log.Printf("WARNING: Failed to publish signup.completed for user %s: %v", result.IdentityUserID, err)
	}
}
