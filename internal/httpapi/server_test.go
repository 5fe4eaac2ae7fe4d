package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prasanna1256/HiringScout-An-AI-Hiring-Assistant/internal/account"
	"github.com/prasanna1256/HiringScout-An-AI-Hiring-Assistant/internal/auth"
	"github.com/prasanna1256/HiringScout-An-AI-Hiring-Assistant/internal/config"
	"github.com/prasanna1256/HiringScout-An-AI-Hiring-Assistant/internal/genai"
	"github.com/prasanna1256/HiringScout-An-AI-Hiring-Assistant/internal/interview"
	"github.com/prasanna1256/HiringScout-An-AI-Hiring-Assistant/internal/observability"
	"github.com/prasanna1256/HiringScout-An-AI-Hiring-Assistant/internal/session"
)

// Each test registers its metrics under a unique namespace: promauto panics
// on duplicate registration in the default registry.
var metricsSeq atomic.Int64

func newTestServer(t *testing.T) (*Server, *session.Manager, account.Store) {
	t.Helper()

	cfg := config.Config{
		AllowAnyOrigin: true,
		HistoryLimit:   100,
	}
	metrics := observability.NewMetrics(fmt.Sprintf("test_httpapi_%d_%d", time.Now().UnixNano(), metricsSeq.Add(1)))

	store := account.NewFileStore(filepath.Join(t.TempDir(), "data.json"), auth.Hash, cfg.HistoryLimit, nil)
	if err := store.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	tokens, err := auth.NewTokenIssuer("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenIssuer() error = %v", err)
	}

	sessions := session.NewManager(time.Minute)
	orchestrator := interview.NewOrchestrator(sessions, genai.NewMockClient(), metrics, nil, 0)
	authn := auth.NewAuthenticator(store, nil)

	return New(cfg, store, authn, tokens, sessions, orchestrator, metrics, nil), sessions, store
}

func signupPayload() map[string]any {
	return map[string]any{
		"name":             "Asha Rao",
		"email":            "asha@example.com",
		"age":              27,
		"gender":           "Female",
		"skills":           "Go, SQL",
		"experience":       "Experienced",
		"password":         "hunter22",
		"confirm_password": "hunter22",
	}
}

func doJSON(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeAuth(t *testing.T, rr *httptest.ResponseRecorder) authResponse {
	t.Helper()
	var resp authResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode auth response: %v", err)
	}
	return resp
}

func TestSignupLoginProfileLogoutFlow(t *testing.T) {
	srv, _, _ := newTestServer(t)
	router := srv.Router()

	rr := doJSON(t, router, http.MethodPost, "/v1/auth/signup", "", signupPayload())
	if rr.Code != http.StatusCreated {
		t.Fatalf("signup status = %d, body %s", rr.Code, rr.Body.String())
	}
	created := decodeAuth(t, rr)
	if created.Token == "" || created.SessionID == "" {
		t.Fatalf("signup response missing token or session: %+v", created)
	}
	if created.User.PasswordHash != "" {
		t.Fatalf("signup response leaks the password digest")
	}

	rr = doJSON(t, router, http.MethodPost, "/v1/auth/login", "", map[string]string{
		"email":    "ASHA@example.com",
		"password": "hunter22",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", rr.Code, rr.Body.String())
	}
	logged := decodeAuth(t, rr)

	rr = doJSON(t, router, http.MethodGet, "/v1/profile", logged.Token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("profile status = %d, body %s", rr.Code, rr.Body.String())
	}
	var profile account.UserRecord
	if err := json.NewDecoder(rr.Body).Decode(&profile); err != nil {
		t.Fatalf("decode profile: %v", err)
	}
	if profile.Name != "Asha Rao" || profile.Email != "asha@example.com" {
		t.Fatalf("profile = %+v", profile)
	}

	rr = doJSON(t, router, http.MethodPost, "/v1/auth/logout", logged.Token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("logout status = %d, body %s", rr.Code, rr.Body.String())
	}

	// The token still parses but the session is gone.
	rr = doJSON(t, router, http.MethodGet, "/v1/profile", logged.Token, nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("profile after logout status = %d, want 401", rr.Code)
	}
}

func TestSignupValidationAndDuplicate(t *testing.T) {
	srv, _, _ := newTestServer(t)
	router := srv.Router()

	bad := signupPayload()
	bad["email"] = "not-an-email"
	rr := doJSON(t, router, http.MethodPost, "/v1/auth/signup", "", bad)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("invalid email status = %d, want 400", rr.Code)
	}

	if rr := doJSON(t, router, http.MethodPost, "/v1/auth/signup", "", signupPayload()); rr.Code != http.StatusCreated {
		t.Fatalf("first signup status = %d", rr.Code)
	}
	rr = doJSON(t, router, http.MethodPost, "/v1/auth/signup", "", signupPayload())
	if rr.Code != http.StatusConflict {
		t.Fatalf("duplicate signup status = %d, want 409", rr.Code)
	}
	var er errorResponse
	if err := json.NewDecoder(rr.Body).Decode(&er); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if er.Code != "duplicate_email" {
		t.Fatalf("duplicate signup code = %q", er.Code)
	}
}

func TestLoginFailuresAreGeneric(t *testing.T) {
	srv, _, _ := newTestServer(t)
	router := srv.Router()

	if rr := doJSON(t, router, http.MethodPost, "/v1/auth/signup", "", signupPayload()); rr.Code != http.StatusCreated {
		t.Fatalf("signup status = %d", rr.Code)
	}

	var bodies []string
	for _, creds := range []map[string]string{
		{"email": "asha@example.com", "password": "wrongpass"},
		{"email": "nobody@example.com", "password": "hunter22"},
	} {
		rr := doJSON(t, router, http.MethodPost, "/v1/auth/login", "", creds)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("login status = %d for %v, want 401", rr.Code, creds)
		}
		bodies = append(bodies, rr.Body.String())
	}
	if bodies[0] != bodies[1] {
		t.Fatalf("failure bodies differ:\n%s\n%s", bodies[0], bodies[1])
	}

	rr := doJSON(t, router, http.MethodPost, "/v1/auth/login", "", map[string]string{"email": "asha@example.com"})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("missing password status = %d, want 400", rr.Code)
	}
}

func TestProtectedRoutesRejectBadTokens(t *testing.T) {
	srv, _, _ := newTestServer(t)
	router := srv.Router()

	rr := doJSON(t, router, http.MethodGet, "/v1/profile", "", nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("no token status = %d, want 401", rr.Code)
	}
	rr = doJSON(t, router, http.MethodGet, "/v1/profile", "not.a.token", nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token status = %d, want 401", rr.Code)
	}
}

func TestLoginReplacesPreviousSession(t *testing.T) {
	srv, sessions, _ := newTestServer(t)
	router := srv.Router()

	first := decodeAuth(t, doJSON(t, router, http.MethodPost, "/v1/auth/signup", "", signupPayload()))
	second := decodeAuth(t, doJSON(t, router, http.MethodPost, "/v1/auth/login", "", map[string]string{
		"email":    "asha@example.com",
		"password": "hunter22",
	}))

	if _, err := sessions.Get(first.SessionID); err == nil {
		t.Fatalf("first session survived a second login")
	}
	if _, err := sessions.Get(second.SessionID); err != nil {
		t.Fatalf("second session missing: %v", err)
	}

	rr := doJSON(t, router, http.MethodGet, "/v1/profile", first.Token, nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("stale token status = %d, want 401", rr.Code)
	}
}

func TestLogoutPersistsChatHistory(t *testing.T) {
	srv, sessions, store := newTestServer(t)
	router := srv.Router()

	// Mirror the wiring in main: the session end hook hands the transcript
	// to the account store.
	sessions.SetEndHook(func(s *session.Session) {
		_ = store.SaveChatHistory(context.Background(), s.Email(), s.Transcript)
	})

	created := decodeAuth(t, doJSON(t, router, http.MethodPost, "/v1/auth/signup", "", signupPayload()))
	turns := []account.ConversationTurn{
		{Role: account.RoleUser, Parts: []string{"system prompt"}},
		{Role: account.RoleModel, Parts: []string{"hello Asha"}},
	}
	if err := sessions.SetTranscript(created.SessionID, turns); err != nil {
		t.Fatalf("SetTranscript() error = %v", err)
	}

	rr := doJSON(t, router, http.MethodPost, "/v1/auth/logout", created.Token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("logout status = %d", rr.Code)
	}

	rec, err := store.FindByCredentials(context.Background(), "asha@example.com", "hunter22")
	if err != nil {
		t.Fatalf("FindByCredentials() error = %v", err)
	}
	if len(rec.ChatHistory) != 2 || rec.ChatHistory[1].Parts[0] != "hello Asha" {
		t.Fatalf("persisted history = %+v", rec.ChatHistory)
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv, _, _ := newTestServer(t)
	rr := doJSON(t, srv.Router(), http.MethodGet, "/healthz", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("healthz status = %d", rr.Code)
	}
}
