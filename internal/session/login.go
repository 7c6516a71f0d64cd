package session

import (
	"context"
	"errors"
)

// Poster is the slice of the API client login needs.
type Poster interface {
	Post(ctx context.Context, path string, body, out interface{}) error
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
	FullName    string `json:"full_name"`
}

// Login authenticates against the backend and installs the returned
// credentials. A 2xx answer without a token is treated as a failed login.
func (s *Session) Login(ctx context.Context, client Poster, username, password string) error {
	var resp loginResponse
	if err := client.Post(ctx, "/auth/login", loginRequest{Username: username, Password: password}, &resp); err != nil {
		return err
	}
	if resp.AccessToken == "" {
		return errors.New("login response missing token")
	}
	s.SetFromLogin(resp.AccessToken, resp.Role, resp.FullName)
	return nil
}
