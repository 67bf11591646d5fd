package github

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"ghpool-go/internal/config"
	"ghpool-go/internal/constants"
	"ghpool-go/internal/tokenring"

	"golang.org/x/time/rate"
)

// Recorder receives request/rotation outcomes for usage accounting. All
// methods must be cheap and non-blocking; a nil Recorder disables recording.
type Recorder interface {
	RecordRequest(token tokenring.Token, method string, status int, transportErr bool)
	RecordRotation(from, to tokenring.Token, trigger string)
	RecordRemaining(token tokenring.Token, remaining int)
}

// Options configure a Client directly, bypassing the config file.
type Options struct {
	BaseURL           string
	Tokens            []tokenring.Token
	RotationThreshold int
	MaxRetries        int
	DefaultHeaders    map[string]string
	// HTTPClient overrides the built transport; used by tests.
	HTTPClient *http.Client
	Throttle   *rate.Limiter
	Recorder   Recorder
}

// Client is a rate-limit-aware API client that rotates among a fixed pool of
// tokens. HTTP error statuses are returned to the caller as data; only
// transport failures surface as errors.
type Client struct {
	baseURL        string
	ring           *tokenring.Ring
	rotateAt       int
	maxRetries     int
	defaultHeaders map[string]string
	cli            *http.Client
	limiter        *rate.Limiter
	recorder       Recorder

	// Serializes rotation passes so concurrent triggers do not stack
	// redundant probe cycles.
	rotateMu sync.Mutex
}

// New builds a client from explicit options.
func New(opts Options) (*Client, error) {
	ring, err := tokenring.New(opts.Tokens)
	if err != nil {
		return nil, err
	}

	rotateAt := opts.RotationThreshold
	if rotateAt == 0 {
		rotateAt = constants.DefaultRotationThreshold
	}
	if rotateAt < 0 || rotateAt >= constants.ServiceQuotaCeiling {
		return nil, fmt.Errorf("rotation threshold %d out of range [0, %d)", rotateAt, constants.ServiceQuotaCeiling)
	}

	maxRetries := opts.MaxRetries
	if maxRetries == 0 {
		maxRetries = constants.DefaultMaxRetries
	}
	if maxRetries < 1 {
		return nil, fmt.Errorf("max retries must be at least 1, got %d", maxRetries)
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = constants.DefaultBaseURL
	}

	headers := make(map[string]string, len(opts.DefaultHeaders)+1)
	for k, v := range opts.DefaultHeaders {
		headers[k] = v
	}
	if _, ok := headers["User-Agent"]; !ok {
		headers["User-Agent"] = constants.DefaultUserAgent
	}

	cli := opts.HTTPClient
	if cli == nil {
		cli = newHTTPClient(nil)
	}

	return &Client{
		baseURL:        baseURL,
		ring:           ring,
		rotateAt:       rotateAt,
		maxRetries:     maxRetries,
		defaultHeaders: headers,
		cli:            cli,
		limiter:        opts.Throttle,
		recorder:       opts.Recorder,
	}, nil
}

// FromConfig builds a client from the runtime configuration, loading the
// token file when one is set and constructing the transport from the
// configured timeouts. recorder may be nil.
func FromConfig(cfg *config.Config, recorder Recorder) (*Client, error) {
	tokens := make([]tokenring.Token, 0, len(cfg.Tokens))
	for _, t := range cfg.Tokens {
		tokens = append(tokens, tokenring.Token(t))
	}
	if cfg.TokenFile != "" {
		fileTokens, err := tokenring.LoadTokenFile(cfg.TokenFile)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, fileTokens...)
	}

	var limiter *rate.Limiter
	if cfg.ThrottleEnabled {
		burst := cfg.ThrottleBurst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.ThrottleRPS), burst)
	}

	return New(Options{
		BaseURL:           cfg.BaseURL,
		Tokens:            tokens,
		RotationThreshold: cfg.RotationThreshold,
		MaxRetries:        cfg.MaxRetries,
		DefaultHeaders:    cfg.DefaultHeaders,
		HTTPClient:        newHTTPClient(cfg),
		Throttle:          limiter,
		Recorder:          recorder,
	})
}

// SetRotationThreshold adjusts the threshold at runtime (config reload).
func (c *Client) SetRotationThreshold(n int) {
	if n >= 0 && n < constants.ServiceQuotaCeiling {
		c.rotateMu.Lock()
		c.rotateAt = n
		c.rotateMu.Unlock()
	}
}

// Ring exposes the token ring for status reporting.
func (c *Client) Ring() *tokenring.Ring { return c.ring }

func (c *Client) threshold() int {
	c.rotateMu.Lock()
	defer c.rotateMu.Unlock()
	return c.rotateAt
}

func newHTTPClient(cfg *config.Config) *http.Client {
	dialTO := constants.DefaultDialTimeout
	tlsTO := constants.DefaultTLSHandshakeTimeout
	hdrTO := constants.DefaultResponseHeaderTimeout
	expTO := constants.DefaultExpectContinueTimeout
	proxyURL := ""
	if cfg != nil {
		dialTO = durationOrDefault(cfg.DialTimeoutSec, dialTO)
		tlsTO = durationOrDefault(cfg.TLSHandshakeTimeoutSec, tlsTO)
		hdrTO = durationOrDefault(cfg.ResponseHeaderTimeoutSec, hdrTO)
		expTO = durationOrDefault(cfg.ExpectContinueTimeoutSec, expTO)
		proxyURL = cfg.ProxyURL
	}

	tr := &http.Transport{
		Proxy: proxyFunc(proxyURL),
		DialContext: (&net.Dialer{
			Timeout:   dialTO,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   tlsTO,
		ResponseHeaderTimeout: hdrTO,
		ExpectContinueTimeout: expTO,
		MaxIdleConns:          constants.BaseMaxIdleConns,
		MaxIdleConnsPerHost:   constants.BaseMaxIdleConnsPerHost,
		IdleConnTimeout:       90 * time.Second,
	}
	return &http.Client{Transport: tr, Timeout: 0}
}

func proxyFunc(proxyURL string) func(*http.Request) (*url.URL, error) {
	if proxyURL != "" {
		if parsed, err := url.Parse(proxyURL); err == nil {
			return http.ProxyURL(parsed)
		}
	}
	return http.ProxyFromEnvironment
}

func durationOrDefault(seconds int, fallback time.Duration) time.Duration {
	if seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	return fallback
}

func (c *Client) recordRequest(token tokenring.Token, method string, status int, transportErr bool) {
	if c.recorder != nil {
		c.recorder.RecordRequest(token, method, status, transportErr)
	}
}

func (c *Client) recordRotation(from, to tokenring.Token, trigger string) {
	if c.recorder != nil {
		c.recorder.RecordRotation(from, to, trigger)
	}
}

func (c *Client) recordRemaining(token tokenring.Token, remaining int) {
	if c.recorder != nil {
		c.recorder.RecordRemaining(token, remaining)
	}
}
