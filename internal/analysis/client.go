package analysis

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

	"github.com/sirupsen/logrus"

	"scenario-analysis/web/internal/util"
)

// DefaultEndpoint is where the analysis backend listens unless configured otherwise.
const DefaultEndpoint = "http://localhost:8080/scenario/analyze"

// DefaultTimeout bounds a single analysis call.
const DefaultTimeout = 60 * time.Second

// Analyzer submits one scenario for analysis.
type Analyzer interface {
	Analyze(ctx context.Context, req Request) (Response, error)
}

// Config holds analysis backend parameters.
type Config struct {
	Endpoint string
	Timeout  time.Duration
}

// Client implements Analyzer against the HTTP analysis backend.
type Client struct {
	httpClient *http.Client
	endpoint   string
	timeout    time.Duration
}

var (
	// ErrAnalysisFailed wraps every failure of an analysis call.
	ErrAnalysisFailed = errors.New("analysis failed")
	// ErrStatus marks a non-2xx reply from the backend.
	ErrStatus = errors.New("unexpected status")
	// ErrInvalidEndpoint is returned for endpoints that are not absolute http(s) URLs.
	ErrInvalidEndpoint = errors.New("invalid analysis endpoint")
)

// NewClient constructs a Client, filling defaults for unset fields.
func NewClient(cfg Config) (*Client, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if err := ValidateEndpoint(endpoint); err != nil {
		return nil, err
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   endpoint,
		timeout:    timeout,
	}, nil
}

// ValidateEndpoint checks that endpoint is an absolute http or https URL.
func ValidateEndpoint(endpoint string) error {
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEndpoint, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%w: scheme %q", ErrInvalidEndpoint, parsed.Scheme)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%w: missing host", ErrInvalidEndpoint)
	}
	return nil
}

// Endpoint returns the URL analysis requests are posted to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Timeout returns the per-call HTTP timeout.
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// Analyze posts req to the backend and decodes its reply.
func (c *Client) Analyze(ctx context.Context, req Request) (Response, error) {
	if c == nil {
		return Response{}, fmt.Errorf("%w: client is nil", ErrAnalysisFailed)
	}
	if req.Constraints == nil {
		req.Constraints = []string{}
	}

	timer := util.StartTimer()
	body, err := json.Marshal(req)
	if err != nil {
		return Response{}, fmt.Errorf("%w: marshal request: %w", ErrAnalysisFailed, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("%w: create request: %w", ErrAnalysisFailed, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Response{}, fmt.Errorf("%w: post %s: %w", ErrAnalysisFailed, c.endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Response{}, fmt.Errorf("%w: %w %d: %s", ErrAnalysisFailed, ErrStatus, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var decoded Response
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return Response{}, fmt.Errorf("%w: decode response: %w", ErrAnalysisFailed, err)
	}

	logrus.WithFields(timer.Fields()).WithFields(logrus.Fields{
		"endpoint":    c.endpoint,
		"constraints": len(req.Constraints),
	}).Debug("analysis completed")

	return decoded, nil
}
