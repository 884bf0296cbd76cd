/**
 * @description
 * This package provides a client for the Keycloak admin API. It manages the
 * identity-user lifecycle during signup: create-or-fetch by username, setting
 * the credential, and assigning realm roles. Every admin operation is
 * authenticated by a short-lived bearer token obtained via the
 * client-credentials grant.
 *
 * @dependencies
 * - github.com/fiap/signup-service/internal/domain: For the Keycloak API
 *   request/response structs.
 * - github.com/fiap/signup-service/pkg/httpclient: Resilient transport with
 *   retry, timeout and correlation-header injection.
 *
 * @notes
 * - A 409 from user creation is not a failure: the provider keys users by
 *   username within the realm, so the client falls back to an exact-username
 *   lookup and reuses the existing id.
 * - Tokens are fetched per call by default. The optional cache keeps the
 *   token until its own expiry; see token.go.
 */
package keycloakclient

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/fiap/signup-service/internal/domain"
	"github.com/fiap/signup-service/pkg/httpclient"
)

// Client talks to the Keycloak admin API for a single realm.
type Client struct {
	baseURL      string
	realm        string
	clientID     string
	clientSecret string
	http         *httpclient.Client
	cache        *tokenCache
}

// Config holds the settings for a Client.
type Config struct {
	BaseURL      string
	Realm        string
	ClientID     string
	ClientSecret string
	HTTP         *httpclient.Client
	// CacheTokens enables reuse of the admin token until its expiry. Off by
	// default: per-call fetch is the correctness baseline.
	CacheTokens bool
}

// ResolutionError reports that neither user creation nor the compensating
// lookup yielded an identity user id. This indicates inconsistent state on
// the provider side and is fatal to the calling workflow.
type ResolutionError struct {
	Username string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("could not resolve identity user id for username %q", e.Username)
}

// PermissionError reports that the service credentials were denied access to
// read or assign a role. Role assignment is best effort, so callers treat
// this as non-fatal.
type PermissionError struct {
	Op   string
	Role string
}

func (e *PermissionError) Error() string {
	if e.Role != "" {
		return fmt.Sprintf("forbidden to %s role %q", e.Op, e.Role)
	}
	return fmt.Sprintf("forbidden to %s roles", e.Op)
}

// NewClient creates a Keycloak admin client.
func NewClient(cfg Config) *Client {
	c := &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		realm:        cfg.Realm,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		http:         cfg.HTTP,
	}
	if cfg.CacheTokens {
		c.cache = &tokenCache{}
	}
	return c
}

// CreateOrGetUser attempts to create an identity user keyed by email. Both a
// fresh creation and an already-exists conflict resolve the id through an
// exact-username lookup, so the caller always receives the provider's stable
// subject for this email.
func (c *Client) CreateOrGetUser(ctx context.Context, email, fullName string, enabled bool) (string, error) {
	token, err := c.token(ctx)
	if err != nil {
		return "", err
	}

	payload := domain.KeycloakUserRepresentation{
		Username:      email,
		Email:         email,
		Enabled:       enabled,
		EmailVerified: false,
		FirstName:     fullName,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal user payload: %w", err)
	}

	_, err = c.http.Do(ctx, http.MethodPost, c.adminURL("/users"), c.headers(token, true), body)
	switch {
	case err == nil:
		log.Printf("Identity user created: %s", email)
	case httpclient.IsStatus(err, http.StatusConflict):
		log.Printf("Identity user already exists: %s", email)
	default:
		return "", fmt.Errorf("failed to create identity user: %w", err)
	}

	// Resolve the id for both the new and the pre-existing user.
	userID, err := c.FindUserIDByUsername(ctx, email, token)
	if err != nil {
		return "", err
	}
	if userID == "" {
		return "", &ResolutionError{Username: email}
	}
	return userID, nil
}

// FindUserIDByUsername looks up a user by exact username and returns its id,
// or the empty string when no user matches.
func (c *Client) FindUserIDByUsername(ctx context.Context, username, token string) (string, error) {
	if token == "" {
		var err error
		if token, err = c.token(ctx); err != nil {
			return "", err
		}
	}

	query := url.Values{}
	query.Set("username", username)
	query.Set("exact", "true")
	resp, err := c.http.Do(ctx, http.MethodGet, c.adminURL("/users")+"?"+query.Encode(), c.headers(token, false), nil)
	if err != nil {
		return "", fmt.Errorf("failed to look up identity user: %w", err)
	}

	var users []domain.KeycloakUserRepresentation
	if err := json.Unmarshal(resp.Body, &users); err != nil {
		return "", fmt.Errorf("failed to decode user lookup response: %w", err)
	}
	if len(users) == 0 {
		return "", nil
	}
	return users[0].ID, nil
}

// SetPassword sets the user's credential via the reset-password endpoint.
// The operation is idempotent, so signup invokes it for new and pre-existing
// users alike.
func (c *Client) SetPassword(ctx context.Context, userID, password string, temporary bool) error {
	token, err := c.token(ctx)
	if err != nil {
		return err
	}

	body, err := json.Marshal(domain.KeycloakCredential{Type: "password", Value: password, Temporary: temporary})
	if err != nil {
		return fmt.Errorf("failed to marshal credential payload: %w", err)
	}

	endpoint := c.adminURL("/users/" + url.PathEscape(userID) + "/reset-password")
	if _, err := c.http.Do(ctx, http.MethodPut, endpoint, c.headers(token, true), body); err != nil {
		return fmt.Errorf("failed to set password for user %s: %w", userID, err)
	}
	return nil
}

// AssignRealmRoles resolves each role name to its realm representation and
// assigns them to the user in one batched call. A 403 on either step is a
// *PermissionError.
func (c *Client) AssignRealmRoles(ctx context.Context, userID string, roleNames []string) error {
	token, err := c.token(ctx)
	if err != nil {
		return err
	}

	roles := make([]domain.KeycloakRole, 0, len(roleNames))
	for _, name := range roleNames {
		role, err := c.getRealmRole(ctx, name, token)
		if err != nil {
			return err
		}
		roles = append(roles, role)
	}

	body, err := json.Marshal(roles)
	if err != nil {
		return fmt.Errorf("failed to marshal role mappings: %w", err)
	}

	endpoint := c.adminURL("/users/" + url.PathEscape(userID) + "/role-mappings/realm")
	if _, err := c.http.Do(ctx, http.MethodPost, endpoint, c.headers(token, true), body); err != nil {
		if httpclient.IsStatus(err, http.StatusForbidden) {
			return &PermissionError{Op: "assign"}
		}
		return fmt.Errorf("failed to assign realm roles to user %s: %w", userID, err)
	}
	return nil
}

func (c *Client) getRealmRole(ctx context.Context, name, token string) (domain.KeycloakRole, error) {
	var role domain.KeycloakRole
	endpoint := c.adminURL("/roles/" + url.PathEscape(name))
	resp, err := c.http.Do(ctx, http.MethodGet, endpoint, c.headers(token, false), nil)
	if err != nil {
		if httpclient.IsStatus(err, http.StatusForbidden) {
			return role, &PermissionError{Op: "fetch", Role: name}
		}
		return role, fmt.Errorf("failed to fetch realm role %q: %w", name, err)
	}
	if err := json.Unmarshal(resp.Body, &role); err != nil {
		return role, fmt.Errorf("failed to decode realm role %q: %w", name, err)
	}
	return role, nil
}

func (c *Client) adminURL(path string) string {
	return fmt.Sprintf("%s/admin/realms/%s%s", c.baseURL, c.realm, path)
}

func (c *Client) headers(token string, withBody bool) http.Header {
	h := http.Header{}
	h.Set("Accept", "application/json")
	h.Set("Authorization", "Bearer "+token)
	if withBody {
		h.Set("Content-Type", "application/json")
	}
	return h
}
