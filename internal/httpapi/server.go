// Package httpapi is the UI boundary: a thin HTTP/websocket adapter over the
// account store, authenticator, session registry, and orchestrator. The core
// packages never depend on it.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/prasanna1256/HiringScout-An-AI-Hiring-Assistant/internal/account"
	"github.com/prasanna1256/HiringScout-An-AI-Hiring-Assistant/internal/auth"
	"github.com/prasanna1256/HiringScout-An-AI-Hiring-Assistant/internal/config"
	"github.com/prasanna1256/HiringScout-An-AI-Hiring-Assistant/internal/interview"
	"github.com/prasanna1256/HiringScout-An-AI-Hiring-Assistant/internal/logging"
	"github.com/prasanna1256/HiringScout-An-AI-Hiring-Assistant/internal/observability"
	"github.com/prasanna1256/HiringScout-An-AI-Hiring-Assistant/internal/session"
)

type Server struct {
	cfg          config.Config
	store        account.Store
	authn        *auth.Authenticator
	tokens       *auth.TokenIssuer
	sessions     *session.Manager
	orchestrator *interview.Orchestrator
	metrics      *observability.Metrics
	log          logging.Logger
	upgrader     websocket.Upgrader
}

func New(
	cfg config.Config,
	store account.Store,
	authn *auth.Authenticator,
	tokens *auth.TokenIssuer,
	sessions *session.Manager,
	orchestrator *interview.Orchestrator,
	metrics *observability.Metrics,
	log logging.Logger,
) *Server {
	return &Server{
		cfg:          cfg,
		store:        store,
		authn:        authn,
		tokens:       tokens,
		sessions:     sessions,
		orchestrator: orchestrator,
		metrics:      metrics,
		log:          logging.OrNop(log),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				// Only same-origin browser connections by default, so another
				// site cannot drive a candidate's screening session.
				if cfg.AllowAnyOrigin {
					return true
				}
				origin := strings.TrimSpace(r.Header.Get("Origin"))
				if origin == "" {
					// Non-browser clients often omit Origin. Allow them.
					return true
				}
				u, err := url.Parse(origin)
				if err != nil {
					return false
				}
				if u.Scheme != "http" && u.Scheme != "https" {
					return false
				}
				return strings.EqualFold(u.Host, r.Host)
			},
		},
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.handleHealth)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})

	r.Post("/v1/auth/signup", s.handleSignup)
	r.Post("/v1/auth/login", s.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(s.requireSession)
		r.Post("/v1/auth/logout", s.handleLogout)
		r.Get("/v1/profile", s.handleProfile)
	})

	// The websocket endpoint authenticates itself: browsers cannot attach an
	// Authorization header to a websocket upgrade, so it accepts ?token=.
	r.Get("/v1/chat/ws", s.handleChatWS)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":          "ok",
		"active_sessions": s.sessions.ActiveCount(),
	})
}

type authResponse struct {
	Token     string             `json:"token"`
	SessionID string             `json:"session_id"`
	User      account.UserRecord `json:"user"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var in account.SignupInput
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	rec, err := s.store.Create(r.Context(), in)
	if err != nil {
		var vErr *account.ValidationError
		switch {
		case errors.As(err, &vErr):
			s.metrics.SignupResults.WithLabelValues("validation_error").Inc()
			respondError(w, http.StatusBadRequest, "validation_error", vErr.Error())
		case errors.Is(err, account.ErrDuplicateEmail):
			// Signup keeps the original's distinct duplicate message; only
			// the login path is required to stay undifferentiated.
			s.metrics.SignupResults.WithLabelValues("duplicate_email").Inc()
			respondError(w, http.StatusConflict, "duplicate_email",
				"User with this email already exists. Please login or use a different email.")
		default:
			s.log.Error(r.Context(), "signup failed", "err", err)
			s.metrics.SignupResults.WithLabelValues("storage_error").Inc()
			respondError(w, http.StatusInternalServerError, "storage_error", "Error creating account.")
		}
		return
	}
	s.metrics.SignupResults.WithLabelValues("created").Inc()

	s.respondWithSession(w, r, rec, http.StatusCreated)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "Please enter both email and password.")
		return
	}

	rec, err := s.authn.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.metrics.AuthAttempts.WithLabelValues("failure").Inc()
		respondError(w, http.StatusUnauthorized, "auth_failure", "Invalid email or password. Please try again.")
		return
	}
	s.metrics.AuthAttempts.WithLabelValues("success").Inc()

	s.respondWithSession(w, r, rec, http.StatusOK)
}

func (s *Server) respondWithSession(w http.ResponseWriter, r *http.Request, rec account.UserRecord, status int) {
	sess := s.sessions.Create(rec)
	s.metrics.ActiveSessions.Set(float64(s.sessions.ActiveCount()))
	s.metrics.SessionEvents.WithLabelValues("created").Inc()

	token, err := s.tokens.Issue(sess.User.Email, sess.ID)
	if err != nil {
		s.log.Error(r.Context(), "token issue failed", "err", err)
		respondError(w, http.StatusInternalServerError, "token_error", "Failed to generate token.")
		return
	}

	respondJSON(w, status, authResponse{
		Token:     token,
		SessionID: sess.ID,
		User:      sess.User,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	if _, err := s.sessions.End(sess.ID); err != nil {
		respondError(w, http.StatusNotFound, "session_not_found", err.Error())
		return
	}
	// The registry's end hook persists the transcript and counts the event;
	// nothing more to do here.
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "You have been logged out successfully!",
	})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	respondJSON(w, http.StatusOK, sess.User)
}

type ctxKey int

const sessionCtxKey ctxKey = iota

// requireSession resolves the bearer token to an active session and passes
// it to the handler as an explicit context value; there is no process-wide
// current-user state.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.authenticate(r)
		if !ok {
			respondError(w, http.StatusUnauthorized, "unauthorized", "Missing or invalid token.")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionCtxKey, sess)))
	})
}

func (s *Server) authenticate(r *http.Request) (*session.Session, bool) {
	raw := bearerToken(r)
	if raw == "" {
		return nil, false
	}
	claims, err := s.tokens.Validate(raw)
	if err != nil {
		return nil, false
	}
	sess, err := s.sessions.Get(claims.SessionID)
	if err != nil || sess.Status != session.StatusActive {
		return nil, false
	}
	if !strings.EqualFold(sess.User.Email, claims.Email) {
		return nil, false
	}
	return sess, true
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return strings.TrimSpace(r.URL.Query().Get("token"))
}

func sessionFromContext(ctx context.Context) *session.Session {
	sess, _ := ctx.Value(sessionCtxKey).(*session.Session)
	return sess
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

var errEmptyBody = errors.New("empty body")

func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(out); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "eof") {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}
