package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/medtrack-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/medtrack-backend/internal/dto"
	"github.com/tidwall/gjson"
)

var ErrAuthNotConfigured = &UnavailableError{Message: "Auth service not configured"}

// SupabaseUser is the subset of a GoTrue user this service reads.
type SupabaseUser struct {
	ID           string                 `json:"id"`
	Email        string                 `json:"email"`
	Role         string                 `json:"role"`
	UserMetadata map[string]interface{} `json:"user_metadata,omitempty"`
}

// Name returns user_metadata.name, or "" when unset.
func (u *SupabaseUser) Name() string {
	if name, ok := u.UserMetadata["name"].(string); ok {
		return name
	}
	return ""
}

func (u *SupabaseUser) Response() dto.UserResponse {
	return dto.UserResponse{ID: u.ID, Email: u.Email, Name: u.Name()}
}

// AuthService talks to the Supabase GoTrue REST API.
type AuthService struct {
	baseURL    string
	serviceKey string
	anonKey    string
	client     *http.Client
}

func NewAuthService(cfg *config.Config) *AuthService {
	timeout := cfg.AuthTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &AuthService{
		baseURL:    strings.TrimRight(cfg.SupabaseURL, "/"),
		serviceKey: cfg.SupabaseServiceRoleKey,
		anonKey:    cfg.SupabaseAnonKey,
		client:     &http.Client{Timeout: timeout},
	}
}

// publicKey is sent as the apikey header on user-scoped calls.
func (s *AuthService) publicKey() string {
	if s.anonKey != "" {
		return s.anonKey
	}
	return s.serviceKey
}

// Signup creates an already-confirmed account through the admin API.
func (s *AuthService) Signup(ctx context.Context, req *dto.SignupRequest) (*dto.UserResponse, error) {
	email := strings.TrimSpace(req.Email)
	name := strings.TrimSpace(req.Name)
	if email == "" || req.Password == "" || name == "" {
		return nil, invalid("Email, password, and name are required")
	}
	if s.serviceKey == "" {
		return nil, ErrAuthNotConfigured
	}

	body := map[string]interface{}{
		"email":         email,
		"password":      req.Password,
		"email_confirm": true,
		"user_metadata": map[string]string{"name": name},
	}

	status, resp, err := s.do(ctx, http.MethodPost, "/auth/v1/admin/users", s.serviceKey, s.serviceKey, body)
	if err != nil {
		return nil, err
	}
	if status >= 500 {
		return nil, fmt.Errorf("%w: signup returned %d: %s", ErrUpstream, status, providerMessage(resp))
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return nil, &ProviderError{Status: status, Message: providerMessage(resp), kind: ErrSignupRejected}
	}

	var user SupabaseUser
	if err := json.Unmarshal(resp, &user); err != nil {
		return nil, fmt.Errorf("%w: decode signup response: %v", ErrUpstream, err)
	}
	out := user.Response()
	return &out, nil
}

func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.SessionResponse, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return nil, invalid("Email and password are required")
	}
	if s.publicKey() == "" {
		return nil, ErrAuthNotConfigured
	}

	body := map[string]string{"email": email, "password": req.Password}
	status, resp, err := s.do(ctx, http.MethodPost, "/auth/v1/token?grant_type=password", s.publicKey(), "", body)
	if err != nil {
		return nil, err
	}
	switch {
	case status == http.StatusOK:
	case status == http.StatusBadRequest || status == http.StatusUnauthorized:
		return nil, ErrInvalidCredentials
	default:
		return nil, fmt.Errorf("%w: login returned %d: %s", ErrUpstream, status, providerMessage(resp))
	}

	var session struct {
		AccessToken  string       `json:"access_token"`
		RefreshToken string       `json:"refresh_token"`
		TokenType    string       `json:"token_type"`
		ExpiresIn    int          `json:"expires_in"`
		User         SupabaseUser `json:"user"`
	}
	if err := json.Unmarshal(resp, &session); err != nil {
		return nil, fmt.Errorf("%w: decode session: %v", ErrUpstream, err)
	}

	return &dto.SessionResponse{
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		TokenType:    session.TokenType,
		ExpiresIn:    session.ExpiresIn,
		User:         session.User.Response(),
	}, nil
}

// Logout revokes the session behind token.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return ErrUnauthorized
	}
	status, resp, err := s.do(ctx, http.MethodPost, "/auth/v1/logout", s.publicKey(), token, nil)
	if err != nil {
		return err
	}
	switch {
	case status == http.StatusOK || status == http.StatusNoContent:
		return nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ErrUnauthorized
	default:
		return fmt.Errorf("%w: logout returned %d: %s", ErrUpstream, status, providerMessage(resp))
	}
}

// GetUser resolves a bearer token through the provider's session lookup.
// Any failure, including an unreachable provider, is reported as ErrUnauthorized.
func (s *AuthService) GetUser(ctx context.Context, token string) (*SupabaseUser, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}

	status, resp, err := s.do(ctx, http.MethodGet, "/auth/v1/user", s.publicKey(), token, nil)
	if err != nil {
		slog.Warn("session lookup failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: session lookup returned %d: %s", ErrUnauthorized, status, providerMessage(resp))
	}

	var user SupabaseUser
	if err := json.Unmarshal(resp, &user); err != nil || user.ID == "" {
		return nil, fmt.Errorf("%w: malformed user payload", ErrUnauthorized)
	}
	return &user, nil
}

func (s *AuthService) do(ctx context.Context, method, path, apiKey, bearer string, body interface{}) (int, []byte, error) {
	if s.baseURL == "" {
		return 0, nil, ErrAuthNotConfigured
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("apikey", apiKey)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, nil, fmt.Errorf("%w: read response: %v", ErrUpstream, err)
	}
	return resp.StatusCode, respBody, nil
}

// providerMessage pulls the human-readable message out of a GoTrue error body.
// GoTrue has used msg, message, error_description and error over time.
func providerMessage(body []byte) string {
	for _, path := range []string{"msg", "message", "error_description", "error"} {
		if v := gjson.GetBytes(body, path); v.Type == gjson.String && v.String() != "" {
			return v.String()
		}
	}
	if len(body) == 0 {
		return "request rejected by identity provider"
	}
	return strings.TrimSpace(string(body))
}
