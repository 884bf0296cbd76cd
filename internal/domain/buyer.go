/**
 * @description
 * This file defines the buyer-registry API shapes. The Buyer entity is owned
 * by the external registry; this service only references it. ExternalID is
 * the identity provider's subject and is the join key between the two
 * external systems.
 */
package domain

// BuyerCreateRequest is the payload posted to the buyer registry. ExternalID
// is always sourced from the identity provider's response, never from the
// inbound caller on the creation path.
type BuyerCreateRequest struct {
	Email      string `json:"email"`
	FullName   string `json:"full_name"`
	Phone      string `json:"phone,omitempty"`
	Document   string `json:"document,omitempty"`
	ExternalID string `json:"external_id,omitempty"`
}

// Buyer is the registry's record of a purchaser, echoed back on create and
// lookup responses.
type Buyer struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	FullName   string `json:"full_name"`
	Phone      string `json:"phone,omitempty"`
	Document   string `json:"document,omitempty"`
	ExternalID string `json:"external_id,omitempty"`
}
