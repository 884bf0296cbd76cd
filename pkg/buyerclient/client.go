/**
 * @description
 * This package provides a client for the buyer-registry service. It creates
 * buyer records and resolves already-existing buyers, which is how the
 * signup workflow stays idempotent: a duplicate-creation signal is a cue to
 * look up and reuse the existing entity, never a failure in itself.
 *
 * @dependencies
 * - github.com/fiap/signup-service/internal/domain: For the buyer API structs.
 * - github.com/fiap/signup-service/pkg/httpclient: Resilient transport with
 *   retry, timeout and correlation-header injection.
 */
package buyerclient

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

// Client talks to the buyer-registry API.
type Client struct {
	baseURL string
	http    *httpclient.Client
}

// ResolutionError reports that the registry signaled a duplicate buyer but
// the compensating lookup found nothing. The registry's state is
// inconsistent; the error is fatal and not retried locally.
type ResolutionError struct {
	Email string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("buyer registry reported a duplicate for %q but no buyer was found", e.Email)
}

// NewClient creates a buyer-registry client.
func NewClient(baseURL string, httpClient *httpclient.Client) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// CreateBuyer posts a new buyer profile. On a 409 conflict (buyers are keyed
// by email) it falls back to a lookup and returns the existing record.
func (c *Client) CreateBuyer(ctx context.Context, req domain.BuyerCreateRequest) (*domain.Buyer, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal buyer payload: %w", err)
	}

	header := http.Header{}
	header.Set("Accept", "application/json")
	header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(ctx, http.MethodPost, c.baseURL+"/buyers", header, body)
	if err != nil {
		if httpclient.IsStatus(err, http.StatusConflict) {
			log.Printf("Buyer already exists for %s; fetching existing record", req.Email)
			existing, lookupErr := c.GetBuyerByEmail(ctx, req.Email)
			if lookupErr != nil {
				return nil, lookupErr
			}
			if existing == nil {
				return nil, &ResolutionError{Email: req.Email}
			}
			return existing, nil
		}
		return nil, fmt.Errorf("failed to create buyer: %w", err)
	}

	var buyer domain.Buyer
	if err := json.Unmarshal(resp.Body, &buyer); err != nil {
		return nil, fmt.Errorf("failed to decode buyer response: %w", err)
	}
	return &buyer, nil
}

// GetBuyerByEmail looks up a buyer by email. The first match is
// authoritative; a nil buyer with nil error means not found.
func (c *Client) GetBuyerByEmail(ctx context.Context, email string) (*domain.Buyer, error) {
	return c.lookup(ctx, url.Values{"email": []string{email}})
}

// GetBuyerByExternalID looks up a buyer by its external id, the identity
// provider's subject.
func (c *Client) GetBuyerByExternalID(ctx context.Context, externalID string) (*domain.Buyer, error) {
	return c.lookup(ctx, url.Values{"external_id": []string{externalID}})
}

func (c *Client) lookup(ctx context.Context, query url.Values) (*domain.Buyer, error) {
	header := http.Header{}
	header.Set("Accept", "application/json")

	resp, err := c.http.Do(ctx, http.MethodGet, c.baseURL+"/buyers?"+query.Encode(), header, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to look up buyer: %w", err)
	}

	var buyers []domain.Buyer
	if err := json.Unmarshal(resp.Body, &buyers); err != nil {
		return nil, fmt.Errorf("failed to decode buyer lookup response: %w", err)
	}
	if len(buyers) == 0 {
		return nil, nil
	}
	return &buyers[0], nil
}
