// internal/backend/client.go
//
// HTTP client for the owning backend: the unified multipart signup
// endpoint, the step-scoped attachment-link endpoints, and login. Every
// call is one round trip; retry policy belongs to the caller.

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTimeout bounds each backend round trip.
const DefaultTimeout = 30 * time.Second

// stepPaths maps file fields to their step-scoped update endpoints.
var stepPaths = map[string]string{
	"cv_file":        "/api/auth/signup/step5",
	"portfolio_file": "/api/auth/signup/step3",
}

// Client talks to the owning backend over HTTP.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// New builds a client for the given base URL.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: timeout},
	}
}

// SignupFiles echoes which attachments the backend stored.
type SignupFiles struct {
	PortfolioUploaded bool `json:"portfolio_uploaded"`
	CVUploaded        bool `json:"cv_uploaded"`
}

// SignupResponse is the unified signup endpoint's success body.
type SignupResponse struct {
	Message string          `json:"message"`
	User    json.RawMessage `json:"user"`
	Files   SignupFiles     `json:"files"`
}

// Signup posts the full multipart submission to the unified signup
// endpoint. The body must already carry the multipart boundary in
// contentType.
func (c *Client) Signup(ctx context.Context, contentType string, body io.Reader) (SignupResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/auth/signup", body)
	if err != nil {
		return SignupResponse{}, fmt.Errorf("backend: build signup request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	resp, err := c.httpc.Do(req)
	if err != nil {
		return SignupResponse{}, fmt.Errorf("backend: signup: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return SignupResponse{}, apiError("signup", resp)
	}
	var out SignupResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return SignupResponse{}, fmt.Errorf("backend: decode signup response: %w", err)
	}
	return out, nil
}

// LinkAttachment associates a durable reference with the user record via
// the field's step-scoped update endpoint. The bearer token is explicit:
// this client holds no ambient session state.
func (c *Client) LinkAttachment(ctx context.Context, field, reference, token string) error {
	path, ok := stepPaths[field]
	if !ok {
		return fmt.Errorf("backend: no link endpoint for field %q", field)
	}
	payload, err := json.Marshal(map[string]string{field: reference})
	if err != nil {
		return fmt.Errorf("backend: encode link payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("backend: build link request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("backend: link %s: %w", field, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apiError("link "+field, resp)
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}

// LoginResponse is the login endpoint's success body.
type LoginResponse struct {
	AccessToken string          `json:"access_token"`
	User        json.RawMessage `json:"user"`
	UserType    string          `json:"user_type"`
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password, userType string) (LoginResponse, error) {
	payload, err := json.Marshal(map[string]string{
		"email":     email,
		"password":  password,
		"user_type": userType,
	})
	if err != nil {
		return LoginResponse{}, fmt.Errorf("backend: encode login payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/auth/login", bytes.NewReader(payload))
	if err != nil {
		return LoginResponse{}, fmt.Errorf("backend: build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpc.Do(req)
	if err != nil {
		return LoginResponse{}, fmt.Errorf("backend: login: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return LoginResponse{}, apiError("login", resp)
	}
	var out LoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return LoginResponse{}, fmt.Errorf("backend: decode login response: %w", err)
	}
	if out.AccessToken == "" {
		return LoginResponse{}, fmt.Errorf("backend: login response missing access token")
	}
	return out, nil
}

// apiError surfaces the backend's own error detail verbatim when present,
// otherwise a generic failure keyed by HTTP status.
func apiError(op string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	var parsed struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Detail != "" {
			return fmt.Errorf("%s", parsed.Detail)
		}
		if parsed.Message != "" {
			return fmt.Errorf("%s", parsed.Message)
		}
	}
	return fmt.Errorf("backend: %s failed (status %d)", op, resp.StatusCode)
}
