package iam

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"noahs-ark/internal/platform/httpclient"
	"noahs-ark/internal/ports/auth"

	"github.com/go-resty/resty/v2"
)

var (
	ErrNotConfigured = errors.New("iam client not configured")
	ErrMissingAPIKey = errors.New("iam api key required")
	ErrUnauthorized  = errors.New("iam unauthorized")
	ErrUpstream      = errors.New("iam upstream error")
)

const verifyPath = "/v1/tokens/verify"

// Config del cliente IAM. Viene de IAM_BASE_URL / IAM_API_KEY / IAM_TIMEOUT.
type Config struct {
	BaseURL string
	APIKey  string

	// Si está vacío, se usa "X-Api-Key".
	APIKeyHeader string

	Timeout time.Duration
}

type Client struct {
	http         *resty.Client
	apiKey       string
	apiKeyHeader string
}

// NewClient sin BaseURL devuelve un cliente no configurado (VerifyToken => ErrNotConfigured).
// Con BaseURL, la API key es obligatoria.
func NewClient(cfg Config) (*Client, error) {
	h := strings.TrimSpace(cfg.APIKeyHeader)
	if h == "" {
		h = "X-Api-Key"
	}
	c := &Client{
		apiKey:       strings.TrimSpace(cfg.APIKey),
		apiKeyHeader: h,
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return c, nil
	}
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	hc, err := httpclient.New(httpclient.Config{BaseURL: cfg.BaseURL, Timeout: cfg.Timeout, Retries: 1})
	if err != nil {
		return nil, fmt.Errorf("iam: %w", err)
	}
	c.http = hc
	return c, nil
}

func (c *Client) IsConfigured() bool {
	return c != nil && c.http != nil && c.apiKey != ""
}

type verifyResponse struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   string `json:"role"`
}

// VerifyToken valida el token contra el IAM y trae identidad y rol.
func (c *Client) VerifyToken(ctx context.Context, token string) (auth.Claims, error) {
	if !c.IsConfigured() {
		return auth.Claims{}, ErrNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrUnauthorized
	}

	var out verifyResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader(c.apiKeyHeader, c.apiKey).
		SetAuthToken(token).
		SetBody(map[string]string{"token": token}).
		SetResult(&out).
		ForceContentType("application/json").
		Post(verifyPath)
	if err := httpclient.Check(resp, err); err != nil {
		var he *httpclient.StatusError
		if errors.As(err, &he) && he.Unauthorized() {
			return auth.Claims{}, ErrUnauthorized
		}
		return auth.Claims{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	out.UserID = strings.TrimSpace(out.UserID)
	if out.UserID == "" {
		return auth.Claims{}, fmt.Errorf("%w: response missing user_id", ErrUpstream)
	}

	// rol desconocido o ausente => usuario común
	role, ok := auth.ParseRole(out.Role)
	if !ok {
		role = auth.RoleUser
	}

	return auth.Claims{
		UserID: out.UserID,
		Email:  strings.TrimSpace(out.Email),
		Name:   strings.TrimSpace(out.Name),
		Role:   role,
	}, nil
}
