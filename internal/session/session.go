// Package session holds the authenticated backend session for one agent
// process: the bearer token, the role the backend assigned at login, and the
// display name. It replaces the browser's ambient token storage with an
// explicit object created at login and destroyed at logout or on a 401.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleTeacher = "teacher"
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

var ErrNotAuthenticated = errors.New("not authenticated")

// Claims is the subset of the backend token the agent reads. The token is
// decoded without verification; the backend remains the authority on whether
// it is still acceptable.
type Claims struct {
	Subject   string
	ExpiresAt time.Time
}

type Session struct {
	mu       sync.RWMutex
	token    string
	role     string
	fullName string
}

func New() *Session {
	return &Session{}
}

// SetFromLogin installs the credentials returned by the login endpoint.
func (s *Session) SetFromLogin(token, role, fullName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.role = role
	s.fullName = fullName
}

// Clear destroys the session. Called on logout and whenever any backend call
// answers 401.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.role = ""
	s.fullName = ""
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) Role() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.role
}

func (s *Session) FullName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fullName
}

func (s *Session) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != ""
}

// Claims decodes the stored token without signature verification and returns
// the subject and expiry. Returns ErrNotAuthenticated when no token is held.
func (s *Session) Claims() (Claims, error) {
	token := s.Token()
	if token == "" {
		return Claims{}, ErrNotAuthenticated
	}
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return Claims{}, err
	}
	claims := Claims{}
	if sub, err := parsed.Claims.GetSubject(); err == nil {
		claims.Subject = sub
	}
	if exp, err := parsed.Claims.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	return claims, nil
}
