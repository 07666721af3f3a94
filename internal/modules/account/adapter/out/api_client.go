package out

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	accountout "watchless/internal/modules/account/port/out"
	authdomain "watchless/internal/modules/auth/domain"
	authdto "watchless/internal/modules/auth/dto"
	apperrors "watchless/internal/platform/errors"
)

const (
	maxResponseBytes      = 1 << 20
	defaultRequestTimeout = 15 * time.Second
)

var _ accountout.Backend = APIClient{}

// APIClient talks to the WatchLess backend over its JSON envelope API.
type APIClient struct {
	BaseURL        string
	HTTPClient     *http.Client
	RequestTimeout time.Duration
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

func (c APIClient) Login(ctx context.Context, credential string) (authdomain.User, string, error) {
	payload, err := json.Marshal(map[string]string{"credential": credential})
	if err != nil {
		return authdomain.User{}, "", fmt.Errorf("encode login request: %w", err)
	}
	env, err := c.do(ctx, http.MethodPost, "/api/auth/login", "", payload)
	if err != nil {
		return authdomain.User{}, "", fmt.Errorf("login: %w", err)
	}
	var out authdto.LoginOutput
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return authdomain.User{}, "", fmt.Errorf("decode login response: %w", err)
	}
	if out.Token == "" || out.User.ID == "" {
		return authdomain.User{}, "", errors.New("login response missing user or token")
	}
	return out.User.ToDomain(), out.Token, nil
}

func (c APIClient) Logout(ctx context.Context, token string) error {
	if _, err := c.do(ctx, http.MethodPost, "/api/auth/logout", token, nil); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

func (c APIClient) do(ctx context.Context, method, path, token string, body []byte) (envelope, error) {
	endpoint, err := buildAPIURL(c.BaseURL, path)
	if err != nil {
		return envelope{}, err
	}
	requestCtx, cancel := c.requestContext(ctx)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(requestCtx, method, endpoint, reader)
	if err != nil {
		return envelope{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return envelope{}, fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var env envelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&env); err != nil {
		return envelope{}, fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices || !env.Success {
		return envelope{}, statusError(resp.StatusCode, env.Error)
	}
	return env, nil
}

func statusError(status int, message string) error {
	if message == "" {
		message = http.StatusText(status)
	}
	switch status {
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", apperrors.ErrInvalidCredential, message)
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", apperrors.ErrMissingToken, message)
	case http.StatusForbidden:
		return fmt.Errorf("%w: %s", apperrors.ErrInvalidToken, message)
	default:
		return fmt.Errorf("backend returned %d: %s", status, message)
	}
}

func (c APIClient) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := c.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

func (c APIClient) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func buildAPIURL(baseURL, path string) (string, error) {
	base := strings.TrimSpace(baseURL)
	if base == "" {
		return "", fmt.Errorf("%w: api base url is required", apperrors.ErrInvalidInput)
	}
	parsed, err := url.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", fmt.Errorf("%w: api base url %q is not absolute", apperrors.ErrInvalidInput, baseURL)
	}
	return strings.TrimRight(base, "/") + path, nil
}
