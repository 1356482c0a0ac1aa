// Package demoapi is a small in-memory user API used as a benchmark target.
// It serves the routes exercised by the sample benchmark files: user
// creation and listing, login, and token-protected routes.
package demoapi

import (
	"encoding/json"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RoleAdmin grants access to /api/admin.
const RoleAdmin = "Admin"

type user struct {
	ID       string   `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
	password string
}

type createUserRequest struct {
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Roles    []string `json:"roles"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Server holds users and issued tokens in memory.
type Server struct {
	logger *zap.Logger

	mu      sync.RWMutex
	byEmail map[string]*user
	tokens  map[string]*user
}

// New creates an empty server.
func New(logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		logger:  logger,
		byEmail: make(map[string]*user),
		tokens:  make(map[string]*user),
	}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("healthy"))
	})
	mux.HandleFunc("/api/users", s.users)
	mux.HandleFunc("/api/auth", s.login)
	mux.HandleFunc("/api/me", s.me)
	mux.HandleFunc("/api/admin", s.admin)
	return mux
}

// NewHTTPServer wraps the handler with timeouts tuned for load testing.
func (s *Server) NewHTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      5 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		ReadHeaderTimeout: 2 * time.Second,
	}
}

func (s *Server) users(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listUsers(w)
	case http.MethodPost:
		s.createUser(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusUnprocessableEntity, "email and password are required")
		return
	}
	if len(req.Roles) == 0 {
		req.Roles = []string{"User"}
	}

	u := &user{
		ID:       uuid.NewString(),
		Username: req.Username,
		Email:    strings.ToLower(req.Email),
		Roles:    req.Roles,
		password: req.Password,
	}

	s.mu.Lock()
	if _, exists := s.byEmail[u.Email]; exists {
		s.mu.Unlock()
		writeError(w, http.StatusConflict, "email already registered")
		return
	}
	s.byEmail[u.Email] = u
	s.mu.Unlock()

	s.logger.Debug("user created", zap.String("email", u.Email))
	writeJSON(w, http.StatusCreated, u)
}

func (s *Server) listUsers(w http.ResponseWriter) {
	s.mu.RLock()
	list := make([]*user, 0, len(s.byEmail))
	for _, u := range s.byEmail {
		list = append(list, u)
	}
	s.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool { return list[i].Email < list[j].Email })
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byEmail[strings.ToLower(req.Email)]
	if !ok || u.password != req.Password {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token := uuid.NewString()
	s.tokens[token] = u
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// authenticate resolves the bearer token of r.
func (s *Server) authenticate(r *http.Request) (*user, bool) {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || token == "" {
		return nil, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.tokens[token]
	return u, ok
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	u, ok := s.authenticate(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing or invalid token")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) admin(w http.ResponseWriter, r *http.Request) {
	u, ok := s.authenticate(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing or invalid token")
		return
	}
	for _, role := range u.Roles {
		if role == RoleAdmin {
			writeJSON(w, http.StatusOK, map[string]string{"message": "authenticated"})
			return
		}
	}
	writeError(w, http.StatusForbidden, "admin role required")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
