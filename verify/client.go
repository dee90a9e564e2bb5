package verify

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

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/jonwraymond/credwatch/health"
)

// Config configures a Client.
type Config struct {
	// Endpoint is the absolute URL verification requests are POSTed to.
	Endpoint string

	// SigningKey signs the HS256 bearer token.
	SigningKey []byte

	// Issuer is the token iss claim.
	// Default: "credwatch"
	Issuer string

	// Audience is the token aud claim, if set.
	Audience string

	// TokenTTL bounds each token's lifetime.
	// Default: 1 minute
	TokenTTL time.Duration

	// MaxBodyBytes caps how much of a response is read.
	// Default: 64 KiB
	MaxBodyBytes int64

	// HTTPClient sends requests. Attempt deadlines come from the context.
	// Default: a client with no timeout of its own
	HTTPClient *http.Client

	// Now stamps tokens.
	// Default: time.Now
	Now func() time.Time
}

// Client implements health.Verifier over HTTP.
type Client struct {
	cfg Config
}

// NewClient creates a verification client.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, ErrMissingEndpoint
	}
	if _, err := url.ParseRequestURI(cfg.Endpoint); err != nil {
		return nil, fmt.Errorf("verify: invalid endpoint %q: %w", cfg.Endpoint, err)
	}
	if len(cfg.SigningKey) == 0 {
		return nil, ErrMissingSigningKey
	}
	if cfg.Issuer == "" {
		cfg.Issuer = "credwatch"
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = time.Minute
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 64 << 10
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Client{cfg: cfg}, nil
}

type request struct {
	Service   string  `json:"service"`
	Candidate *string `json:"candidate,omitempty"`
}

// response is the verification reply. Every field is optional on the wire.
type response struct {
	Valid     *bool    `json:"valid"`
	Status    *string  `json:"status"`
	LatencyMS *float64 `json:"latencyMs"`
	Message   *string  `json:"message"`
}

// Verify asks the endpoint whether the stored credential for service, or
// candidate when non-nil, is accepted.
func (c *Client) Verify(ctx context.Context, service string, candidate *string) (health.Outcome, error) {
	token, err := c.token(service)
	if err != nil {
		return health.Outcome{}, err
	}

	body, err := json.Marshal(request{Service: service, Candidate: candidate})
	if err != nil {
		return health.Outcome{}, fmt.Errorf("verify: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return health.Outcome{}, fmt.Errorf("verify: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		return health.Outcome{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, c.cfg.MaxBodyBytes))
	if err != nil {
		return health.Outcome{}, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return health.Outcome{}, &health.StatusError{Code: resp.StatusCode, Body: raw}
	}

	return decode(raw)
}

func (c *Client) token(service string) (string, error) {
	now := c.cfg.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    c.cfg.Issuer,
		Subject:   service,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.cfg.TokenTTL)),
		ID:        uuid.NewString(),
	}
	if c.cfg.Audience != "" {
		claims.Audience = jwt.ClaimStrings{c.cfg.Audience}
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.cfg.SigningKey)
	if err != nil {
		return "", fmt.Errorf("verify: sign token: %w", err)
	}
	return signed, nil
}

var errNoVerdict = errors.New("response has neither valid nor status")

func decode(raw []byte) (health.Outcome, error) {
	var r response
	if err := json.Unmarshal(raw, &r); err != nil {
		return health.Outcome{}, &health.MalformedResponseError{Err: err}
	}

	var out health.Outcome
	switch {
	case r.Valid != nil:
		out.Valid = *r.Valid
	case r.Status != nil:
		out.Valid = acceptedStatus(*r.Status)
	default:
		return health.Outcome{}, &health.MalformedResponseError{Err: errNoVerdict}
	}

	if r.LatencyMS != nil && *r.LatencyMS > 0 {
		out.Latency = time.Duration(*r.LatencyMS * float64(time.Millisecond))
	}
	if r.Message != nil {
		out.Message = *r.Message
	}
	if !out.Valid {
		out.Payload = raw
	}
	return out, nil
}

func acceptedStatus(status string) bool {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "operational", "ok", "valid", "success":
		return true
	default:
		return false
	}
}

// Ensure Client implements health.Verifier
var _ health.Verifier = (*Client)(nil)
