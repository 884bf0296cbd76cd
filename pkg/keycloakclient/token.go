/**
 * @description
 * This file handles admin token acquisition for the Keycloak client. A token
 * is fetched via the client-credentials grant before every admin operation;
 * the grant itself rides the resilient transport, so transient token-endpoint
 * failures are retried under the same policy as any other call.
 *
 * @notes
 * - The optional cache reuses a token until shortly before its expiry. The
 *   expiry comes from the token's own exp claim when it parses as a JWT,
 *   falling back to the grant's expires_in. The cache mutex is never held
 *   across a network call, so a refetch cannot block in-flight requests.
 */
package keycloakclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/fiap/signup-service/internal/domain"
)

// tokenExpiryMargin is how long before the actual expiry a cached token is
// considered stale.
const tokenExpiryMargin = 10 * time.Second

type tokenCache struct {
	mu     sync.Mutex
	token  string
	expiry time.Time
}

func (tc *tokenCache) get(now time.Time) (string, bool) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	if tc.token == "" || !now.Before(tc.expiry.Add(-tokenExpiryMargin)) {
		return "", false
	}
	return tc.token, true
}

func (tc *tokenCache) put(token string, expiry time.Time) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.token = token
	tc.expiry = expiry
}

// token returns a bearer token for the admin API, from the cache when
// enabled and still valid, otherwise via a fresh client-credentials grant.
func (c *Client) token(ctx context.Context) (string, error) {
	if c.cache != nil {
		if tok, ok := c.cache.get(time.Now()); ok {
			return tok, nil
		}
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)

	header := http.Header{}
	header.Set("Accept", "application/json")
	header.Set("Content-Type", "application/x-www-form-urlencoded")

	endpoint := fmt.Sprintf("%s/realms/%s/protocol/openid-connect/token", c.baseURL, c.realm)
	resp, err := c.http.Do(ctx, http.MethodPost, endpoint, header, []byte(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to obtain admin token: %w", err)
	}

	var tokenResp domain.KeycloakTokenResponse
	if err := json.Unmarshal(resp.Body, &tokenResp); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return "", fmt.Errorf("token response contained no access token")
	}

	if c.cache != nil {
		c.cache.put(tokenResp.AccessToken, tokenExpiry(tokenResp, time.Now()))
	}
	return tokenResp.AccessToken, nil
}

// tokenExpiry derives the cache deadline for a token, preferring the exp
// claim embedded in the token over the advertised expires_in.
func tokenExpiry(resp domain.KeycloakTokenResponse, now time.Time) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(resp.AccessToken, claims); err == nil {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			return exp.Time
		}
	}
	return now.Add(time.Duration(resp.ExpiresIn) * time.Second)
}
