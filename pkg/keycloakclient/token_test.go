package keycloakclient

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/fiap/signup-service/internal/domain"
)

func signedTestToken(t *testing.T, expiry time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": expiry.Unix(),
		"azp": "admin-cli",
	}).SignedString([]byte("test-signing-key"))
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}
	return token
}

func TestTokenFetchedPerCallByDefault(t *testing.T) {
	fake := newFakeKeycloak(t)
	client := fake.client(false)

	for i := 0; i < 3; i++ {
		if err := client.SetPassword(context.Background(), "user-1", "s3cretpass", false); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if fake.tokenCalls != 3 {
		t.Fatalf("expected one token grant per call, got %d grants for 3 calls", fake.tokenCalls)
	}
}

func TestTokenCacheReusesTokenUntilExpiry(t *testing.T) {
	fake := newFakeKeycloak(t)
	fake.accessToken = signedTestToken(t, time.Now().Add(time.Hour))
	client := fake.client(true)

	for i := 0; i < 3; i++ {
		if err := client.SetPassword(context.Background(), "user-1", "s3cretpass", false); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if fake.tokenCalls != 1 {
		t.Fatalf("expected a single token grant with caching on, got %d", fake.tokenCalls)
	}
}

func TestTokenCacheRefetchesExpiredToken(t *testing.T) {
	fake := newFakeKeycloak(t)
	fake.accessToken = signedTestToken(t, time.Now().Add(-time.Minute))
	client := fake.client(true)

	for i := 0; i < 2; i++ {
		if err := client.SetPassword(context.Background(), "user-1", "s3cretpass", false); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if fake.tokenCalls != 2 {
		t.Fatalf("expected expired token to be refetched on each call, got %d grants", fake.tokenCalls)
	}
}

func TestTokenCacheConcurrentCallsAlwaysSucceed(t *testing.T) {
	fake := newFakeKeycloak(t)
	fake.accessToken = signedTestToken(t, time.Now().Add(15*time.Second))
	fake.users = []domain.KeycloakUserRepresentation{{ID: "user-1"}}
	client := fake.client(true)

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := client.FindUserIDByUsername(context.Background(), "a@x.com", ""); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent call failed: %v", err)
	}
	// The 15s expiry is inside the staleness margin window, so some goroutines
	// refetch while others still hold a valid token; every call must succeed
	// and at least one grant must have happened.
	if fake.tokenCalls < 1 {
		t.Fatalf("expected at least one token grant, got %d", fake.tokenCalls)
	}
}

func TestTokenExpiryPrefersExpClaim(t *testing.T) {
	now := time.Now()
	claimExpiry := now.Add(42 * time.Minute).Truncate(time.Second)
	resp := domain.KeycloakTokenResponse{
		AccessToken: signedTestToken(t, claimExpiry),
		ExpiresIn:   60,
	}
	got := tokenExpiry(resp, now)
	if !got.Equal(claimExpiry) {
		t.Fatalf("expected expiry from exp claim %v, got %v", claimExpiry, got)
	}
}

func TestTokenExpiryFallsBackToExpiresIn(t *testing.T) {
	now := time.Now()
	resp := domain.KeycloakTokenResponse{AccessToken: "opaque-token", ExpiresIn: 120}
	got := tokenExpiry(resp, now)
	if want := now.Add(120 * time.Second); !got.Equal(want) {
		t.Fatalf("expected expiry %v from expires_in, got %v", want, got)
	}
}
