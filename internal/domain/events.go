/**
 * @description
 * This file defines the event payloads published to RabbitMQ after a signup
 * completes, so downstream services can react without being in the request
 * path.
 */
package domain

// SignupCompletedEvent is published (best effort) once both the identity
// user and the buyer record exist.
type SignupCompletedEvent struct {
	IdentityUserID string `json:"identity_user_id"`
	BuyerID        string `json:"buyer_id"`
	Email          string `json:"email"`
	CorrelationID  string `json:"correlation_id,omitempty"`
}
