// Package http is the agent's local control surface. It exposes the signed-in
// user's actions over a small chi router so scripts and operators drive the
// coin flows without touching the backend API directly.
package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"coinclass/agent/internal/api"
	"coinclass/agent/internal/attendance"
	"coinclass/agent/internal/balance"
	"coinclass/agent/internal/session"
)

type Server struct {
	session  *session.Session
	client   *api.Client
	svc      *attendance.Service
	balances *balance.Cache
	validate *validator.Validate
}

func NewServer(sess *session.Session, client *api.Client, svc *attendance.Service, balances *balance.Cache) *Server {
	return &Server{
		session:  sess,
		client:   client,
		svc:      svc,
		balances: balances,
		validate: validator.New(),
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/login", s.handleLogin)
	r.Post("/logout", s.handleLogout)

	r.With(s.requireRole(session.RoleTeacher)).Get("/classes", s.handleListClasses)
	r.With(s.requireRole(session.RoleTeacher)).Get("/classes/{classID}/roster", s.handleRoster)
	r.With(s.requireRole(session.RoleTeacher)).Post("/classes/{classID}/attendance", s.handleSubmitAttendance)
	r.With(s.requireRole(session.RoleTeacher)).Post("/awards", s.handleQuickAward)
	r.With(s.requireSession).Get("/balance", s.handleBalance)

	return r
}

// Auth

func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.session.Active() {
			writeError(w, http.StatusUnauthorized, "not_logged_in")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !s.session.Active() {
				writeError(w, http.StatusUnauthorized, "not_logged_in")
				return
			}
			if s.session.Role() != role {
				writeError(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Handlers

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}
	if err := s.session.Login(r.Context(), s.client, req.Username, req.Password); err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			writeError(w, http.StatusUnauthorized, "invalid username or password")
			return
		}
		s.writeFlowError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"role":      s.session.Role(),
		"full_name": s.session.FullName(),
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, _ *http.Request) {
	s.session.Clear()
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

func (s *Server) handleListClasses(w http.ResponseWriter, r *http.Request) {
	classes, err := s.svc.ListClasses(r.Context())
	if err != nil {
		s.writeFlowError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"classes": classes})
}

func (s *Server) handleRoster(w http.ResponseWriter, r *http.Request) {
	classID, err := strconv.Atoi(chi.URLParam(r, "classID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_class_id")
		return
	}
	roster, err := s.svc.LoadRoster(r.Context(), classID)
	if err != nil {
		s.writeFlowError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, roster)
}

func (s *Server) handleSubmitAttendance(w http.ResponseWriter, r *http.Request) {
	classID, err := strconv.Atoi(chi.URLParam(r, "classID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_class_id")
		return
	}
	var form attendance.FormState
	if err := decodeJSON(r, &form); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}
	if err := s.validate.Struct(form); err != nil {
		writeError(w, http.StatusBadRequest, "invalid attendance form")
		return
	}
	result, err := s.svc.Submit(r.Context(), classID, form)
	if err != nil {
		s.writeFlowError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type quickAwardRequest struct {
	StudentID int     `json:"student_id" validate:"required,gt=0"`
	Amount    float64 `json:"amount" validate:"required,gt=0"`
	Reason    string  `json:"reason"`
}

func (s *Server) handleQuickAward(w http.ResponseWriter, r *http.Request) {
	var req quickAwardRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "student_id and a positive amount are required")
		return
	}
	msg, err := s.svc.QuickAward(r.Context(), req.StudentID, req.Amount, req.Reason)
	if err != nil {
		s.writeFlowError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"msg": msg})
}

func (s *Server) handleBalance(w http.ResponseWriter, _ *http.Request) {
	value, updatedAt, known := s.balances.Get()
	if !known {
		writeJSON(w, http.StatusOK, map[string]interface{}{"known": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"known":      true,
		"balance":    value,
		"updated_at": updatedAt,
	})
}

// writeFlowError maps the client error classes onto local HTTP statuses.
// Validation never reached the backend, 401 means the backend session died,
// and everything else is the backend failing behind us.
func (s *Server) writeFlowError(w http.ResponseWriter, err error) {
	var validationErr *api.ValidationError
	if errors.As(err, &validationErr) {
		writeError(w, http.StatusBadRequest, validationErr.Msg)
		return
	}
	if errors.Is(err, api.ErrUnauthorized) {
		writeError(w, http.StatusUnauthorized, "session_expired")
		return
	}
	var requestErr *api.RequestError
	if errors.As(err, &requestErr) {
		writeError(w, http.StatusBadGateway, requestErr.Msg)
		return
	}
	var transportErr *api.TransportError
	if errors.As(err, &transportErr) {
		writeError(w, http.StatusBadGateway, "backend unreachable")
		return
	}
	writeError(w, http.StatusInternalServerError, "internal_error")
}

func decodeJSON(r *http.Request, out interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(out)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
