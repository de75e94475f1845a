package quote

import (
	"context"
	"crypto/rand"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

const (
	// PrimaryURL is the hitokoto sentence API.
	PrimaryURL = "https://v1.hitokoto.cn/"
	// FallbackURL is used when the primary API fails.
	FallbackURL = "https://api.apiopen.top/api/sentences"

	// DefaultTimeout bounds each endpoint request.
	DefaultTimeout = 10 * time.Second

	defaultUserAgent    = "hitotop/1.0"
	maxResponseBodySize = 1 << 20
)

// primaryResponse is the body returned by the primary API.
type primaryResponse struct {
	Hitokoto string `json:"hitokoto"`
	From     string `json:"from"`
}

// fallbackResponse is the envelope returned by the fallback API.
type fallbackResponse struct {
	Code   float64 `json:"code"` // a JSON number; some gateways send 200.0
	Result *struct {
		Name string `json:"name"`
		From string `json:"from"`
	} `json:"result"`
}

// Client performs single fetch attempts against the primary and fallback
// endpoints. It holds no quote state; see Fetcher for that.
type Client struct {
	primaryURL  string
	fallbackURL string
	http        *http.Client
	userAgent   string
	logger      *slog.Logger

	timeout    time.Duration
	verifyTLS  bool
	customHTTP bool
}

// ClientOption mutates the client during construction.
type ClientOption func(*Client)

// WithPrimaryURL overrides the primary endpoint (tests only; endpoints are
// not user configurable).
func WithPrimaryURL(url string) ClientOption {
	return func(c *Client) { c.primaryURL = url }
}

// WithFallbackURL overrides the fallback endpoint.
func WithFallbackURL(url string) ClientOption {
	return func(c *Client) { c.fallbackURL = url }
}

// WithTimeout sets the per-endpoint request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithVerifyTLS turns certificate verification on or off. It is off by
// default, matching the behaviour users of the overlay have always had.
func WithVerifyTLS(verify bool) ClientOption {
	return func(c *Client) { c.verifyTLS = verify }
}

// WithHTTPClient installs a custom http.Client. Timeout and TLS options are
// not applied to it.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.http = hc
		c.customHTTP = hc != nil
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) { c.userAgent = ua }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) { c.logger = logger }
}

// NewClient builds a client for the built-in endpoints.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		primaryURL:  PrimaryURL,
		fallbackURL: FallbackURL,
		userAgent:   defaultUserAgent,
		timeout:     DefaultTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if !c.customHTTP {
		c.http = newHTTPClient(c.timeout, c.verifyTLS)
	}
	return c
}

// VerifiesTLS reports whether certificate verification is enabled.
func (c *Client) VerifiesTLS() bool {
	return c.verifyTLS
}

func newHTTPClient(timeout time.Duration, verifyTLS bool) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{
		// Both quote APIs have a history of certificate problems; the
		// overlay has always accepted any certificate.
		InsecureSkipVerify: !verifyTLS, //nolint:gosec
	}
	return &http.Client{Timeout: timeout, Transport: transport}
}

// FetchOnce tries the primary endpoint and, if it fails for any reason, the
// fallback endpoint. It never panics on bad input and always returns an
// Outcome; Outcome.Err is a *FetchError when both endpoints failed.
func (c *Client) FetchOnce(ctx context.Context) Outcome {
	if ctx == nil {
		ctx = context.Background()
	}

	id := newFetchID()
	logger := c.logger.With("fetch_id", id)
	start := time.Now()

	q, primaryErr := c.fetchPrimary(ctx)
	if primaryErr == nil {
		logger.Info("fetched quote", "endpoint", EndpointPrimary, "text", q.Display(), "elapsed", time.Since(start))
		return Outcome{Quote: q, Endpoint: EndpointPrimary, ID: id, FetchedAt: time.Now()}
	}
	logger.Warn("primary endpoint failed, trying fallback", "error", primaryErr)

	q, fallbackErr := c.fetchFallback(ctx)
	if fallbackErr == nil {
		logger.Info("fetched quote", "endpoint", EndpointFallback, "text", q.Display(), "elapsed", time.Since(start))
		return Outcome{Quote: q, Endpoint: EndpointFallback, ID: id, FetchedAt: time.Now()}
	}
	logger.Warn("fallback endpoint failed", "error", fallbackErr)

	return Outcome{
		Err:       &FetchError{Primary: primaryErr, Fallback: fallbackErr},
		ID:        id,
		FetchedAt: time.Now(),
	}
}

func (c *Client) fetchPrimary(ctx context.Context) (Quote, error) {
	var body primaryResponse
	if err := c.getJSON(ctx, EndpointPrimary, c.primaryURL, &body); err != nil {
		return Quote{}, err
	}

	if body.Hitokoto == "" {
		return Quote{}, &EndpointError{
			Endpoint: EndpointPrimary,
			Kind:     KindMalformed,
			Err:      errors.New(`missing "hitokoto"`),
		}
	}
	return Quote{Text: body.Hitokoto, Source: body.From}, nil
}

func (c *Client) fetchFallback(ctx context.Context) (Quote, error) {
	var body fallbackResponse
	if err := c.getJSON(ctx, EndpointFallback, c.fallbackURL, &body); err != nil {
		return Quote{}, err
	}

	if body.Code != http.StatusOK {
		return Quote{}, &EndpointError{
			Endpoint:   EndpointFallback,
			Kind:       KindStatus,
			StatusCode: int(body.Code),
			Err:        errors.New("envelope code is not 200"),
		}
	}
	if body.Result == nil || body.Result.Name == "" {
		return Quote{}, &EndpointError{
			Endpoint: EndpointFallback,
			Kind:     KindMalformed,
			Err:      errors.New(`missing "result.name"`),
		}
	}
	return Quote{
		Text:   body.Result.Name,
		Source: body.Result.From,
	}, nil
}

// getJSON performs a GET and decodes a 200 response into out.
func (c *Client) getJSON(ctx context.Context, endpoint Endpoint, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &EndpointError{Endpoint: endpoint, Kind: KindTransport, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if ua := strings.TrimSpace(c.userAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &EndpointError{Endpoint: endpoint, Kind: KindTransport, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return &EndpointError{Endpoint: endpoint, Kind: KindTransport, StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return &EndpointError{Endpoint: endpoint, Kind: KindStatus, StatusCode: resp.StatusCode}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return &EndpointError{Endpoint: endpoint, Kind: KindMalformed, StatusCode: resp.StatusCode, Err: err}
	}
	return nil
}

func newFetchID() string {
	id, err := ulid.New(ulid.Timestamp(time.Now()), rand.Reader)
	if err != nil {
		return ""
	}
	return id.String()
}
