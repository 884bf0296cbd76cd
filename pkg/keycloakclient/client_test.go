package keycloakclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fiap/signup-service/internal/domain"
	"github.com/fiap/signup-service/pkg/httpclient"
)

// fakeKeycloak is a minimal stand-in for the Keycloak admin API covering the
// endpoints this client uses.
type fakeKeycloak struct {
	mu             sync.Mutex
	tokenCalls     int
	createCalls    int
	lookupCalls    int
	createStatus   int
	roleStatus     int
	assignStatus   int
	users          []domain.KeycloakUserRepresentation
	lastCredential domain.KeycloakCredential
	lastAssigned   []domain.KeycloakRole
	accessToken    string
	expiresIn      int64

	server *httptest.Server
}

func newFakeKeycloak(t *testing.T) *fakeKeycloak {
	t.Helper()
	f := &fakeKeycloak{
		createStatus: http.StatusCreated,
		roleStatus:   http.StatusOK,
		assignStatus: http.StatusNoContent,
		accessToken:  "admin-token",
		expiresIn:    300,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/realms/fiap/protocol/openid-connect/token", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.tokenCalls++
		token, expires := f.accessToken, f.expiresIn
		f.mu.Unlock()
		if err := r.ParseForm(); err != nil || r.PostForm.Get("grant_type") != "client_credentials" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(domain.KeycloakTokenResponse{AccessToken: token, ExpiresIn: expires, TokenType: "Bearer"})
	})
	mux.HandleFunc("/admin/realms/fiap/users", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		switch r.Method {
		case http.MethodPost:
			f.createCalls++
			w.WriteHeader(f.createStatus)
		case http.MethodGet:
			f.lookupCalls++
			json.NewEncoder(w).Encode(f.users)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("/admin/realms/fiap/users/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		switch {
		case strings.HasSuffix(r.URL.Path, "/reset-password"):
			if err := json.NewDecoder(r.Body).Decode(&f.lastCredential); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		case strings.HasSuffix(r.URL.Path, "/role-mappings/realm"):
			if f.assignStatus == http.StatusForbidden {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			if err := json.NewDecoder(r.Body).Decode(&f.lastAssigned); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			w.WriteHeader(f.assignStatus)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	mux.HandleFunc("/admin/realms/fiap/roles/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		status := f.roleStatus
		f.mu.Unlock()
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		name := strings.TrimPrefix(r.URL.Path, "/admin/realms/fiap/roles/")
		json.NewEncoder(w).Encode(domain.KeycloakRole{ID: "role-id-" + name, Name: name})
	})

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeKeycloak) client(cacheTokens bool) *Client {
	return NewClient(Config{
		BaseURL:      f.server.URL,
		Realm:        "fiap",
		ClientID:     "admin-cli",
		ClientSecret: "secret",
		HTTP:         httpclient.New(httpclient.Config{Timeout: 2 * time.Second, MaxAttempts: 1}),
		CacheTokens:  cacheTokens,
	})
}

func TestCreateOrGetUserCreatesAndResolvesID(t *testing.T) {
	fake := newFakeKeycloak(t)
	fake.users = []domain.KeycloakUserRepresentation{{ID: "user-1", Username: "a@x.com"}}

	userID, err := fake.client(false).CreateOrGetUser(context.Background(), "a@x.com", "Ana X", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if userID != "user-1" {
		t.Fatalf("expected user-1, got %q", userID)
	}
	if fake.createCalls != 1 || fake.lookupCalls != 1 {
		t.Fatalf("expected 1 create and 1 lookup, got %d and %d", fake.createCalls, fake.lookupCalls)
	}
}

func TestCreateOrGetUserFallsBackOnConflict(t *testing.T) {
	fake := newFakeKeycloak(t)
	fake.createStatus = http.StatusConflict
	fake.users = []domain.KeycloakUserRepresentation{{ID: "existing-7", Username: "a@x.com"}}

	userID, err := fake.client(false).CreateOrGetUser(context.Background(), "a@x.com", "Ana X", true)
	if err != nil {
		t.Fatalf("conflict should resolve via lookup, got error: %v", err)
	}
	if userID != "existing-7" {
		t.Fatalf("expected existing-7, got %q", userID)
	}
}

func TestCreateOrGetUserFailsWhenLookupFindsNothing(t *testing.T) {
	fake := newFakeKeycloak(t)
	fake.createStatus = http.StatusConflict
	fake.users = nil

	_, err := fake.client(false).CreateOrGetUser(context.Background(), "ghost@x.com", "Ghost", true)
	var resErr *ResolutionError
	if !errors.As(err, &resErr) {
		t.Fatalf("expected ResolutionError, got %v", err)
	}
	if resErr.Username != "ghost@x.com" {
		t.Fatalf("expected username in error, got %q", resErr.Username)
	}
}

func TestSetPasswordSendsCredentialPayload(t *testing.T) {
	fake := newFakeKeycloak(t)

	if err := fake.client(false).SetPassword(context.Background(), "user-1", "s3cretpass", false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fake.lastCredential.Type != "password" || fake.lastCredential.Value != "s3cretpass" {
		t.Fatalf("unexpected credential payload: %+v", fake.lastCredential)
	}
	if fake.lastCredential.Temporary {
		t.Fatal("expected a permanent credential")
	}
}

func TestAssignRealmRolesBatchesResolvedRoles(t *testing.T) {
	fake := newFakeKeycloak(t)

	err := fake.client(false).AssignRealmRoles(context.Background(), "user-1", []string{"buyers_read", "buyers_write"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fake.lastAssigned) != 2 {
		t.Fatalf("expected 2 roles in one batched call, got %d", len(fake.lastAssigned))
	}
	if fake.lastAssigned[0].ID != "role-id-buyers_read" || fake.lastAssigned[1].Name != "buyers_write" {
		t.Fatalf("unexpected role mappings: %+v", fake.lastAssigned)
	}
}

func TestAssignRealmRolesPermissionDeniedOnFetch(t *testing.T) {
	fake := newFakeKeycloak(t)
	fake.roleStatus = http.StatusForbidden

	err := fake.client(false).AssignRealmRoles(context.Background(), "user-1", []string{"buyers_read"})
	var permErr *PermissionError
	if !errors.As(err, &permErr) {
		t.Fatalf("expected PermissionError, got %v", err)
	}
	if permErr.Role != "buyers_read" {
		t.Fatalf("expected role name on error, got %q", permErr.Role)
	}
}

func TestAssignRealmRolesPermissionDeniedOnAssign(t *testing.T) {
	fake := newFakeKeycloak(t)
	fake.assignStatus = http.StatusForbidden

	err := fake.client(false).AssignRealmRoles(context.Background(), "user-1", []string{"buyers_read"})
	var permErr *PermissionError
	if !errors.As(err, &permErr) {
		t.Fatalf("expected PermissionError, got %v", err)
	}
}
