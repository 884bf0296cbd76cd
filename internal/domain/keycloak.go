/**
 * @description
 * This file defines the Keycloak admin API shapes the identity client
 * produces and parses: user creation, credential reset, realm roles and the
 * client-credentials token grant.
 *
 * @notes
 * - Only the fields this service actually reads or writes are modeled;
 *   Keycloak representations carry many more attributes.
 */
package domain

// KeycloakUserRepresentation is the payload for creating a user. Username is
// the email; the provider enforces uniqueness per realm and answers 409 on
// duplicates.
type KeycloakUserRepresentation struct {
	ID            string `json:"id,omitempty"`
	Username      string `json:"username"`
	Email         string `json:"email"`
	Enabled       bool   `json:"enabled"`
	EmailVerified bool   `json:"emailVerified"`
	FirstName     string `json:"firstName,omitempty"`
}

// KeycloakCredential is the payload for the reset-password endpoint.
type KeycloakCredential struct {
	Type      string `json:"type"`
	Value     string `json:"value"`
	Temporary bool   `json:"temporary"`
}

// KeycloakRole is a realm role representation, resolved by name and posted
// back in a batched role-mapping assignment.
type KeycloakRole struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// KeycloakTokenResponse is the client-credentials grant response.
type KeycloakTokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	TokenType   string `json:"token_type"`
}
