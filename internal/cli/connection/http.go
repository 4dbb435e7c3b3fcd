package connection

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/time/rate"

	"github.com/yndnr/hyperlocal-go/internal/infra/buildinfo"
	"github.com/yndnr/hyperlocal-go/internal/telemetry/logger"
	"github.com/yndnr/hyperlocal-go/internal/telemetry/metric"
)

// DefaultTimeout bounds a request when the caller's context has no deadline.
const DefaultTimeout = 30 * time.Second

// maxBodySize caps how much of a response body is read.
const maxBodySize = 8 << 20

// Session is the part of the session store the client needs.
type Session interface {
	Token() string
	Clear(ctx context.Context) error
}

// Request is a single API call.
type Request struct {
	Method string
	Path   string
	Body   any
	Header http.Header
}

// Response is a decoded 2xx response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	RequestID  string
}

// Decode parses the JSON body into target. An empty body leaves target
// untouched.
func (r *Response) Decode(target any) error {
	if target == nil || len(bytes.TrimSpace(r.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, target); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

// HTTPClient sends requests to the backend on behalf of the session.
type HTTPClient struct {
	baseURL      string
	client       *http.Client
	session      Session
	userAgent    string
	limiter      *rate.Limiter
	logger       logger.Logger
	metrics      *metric.Registry
	unauthorized handlerSet
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithTimeout sets the http.Client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) {
		c.client.Timeout = d
	}
}

// WithTLSConfig sets the TLS configuration, e.g. custom CA roots.
func WithTLSConfig(cfg *tls.Config) Option {
	return func(c *HTTPClient) {
		if cfg == nil {
			return
		}
		tr := http.DefaultTransport.(*http.Transport).Clone()
		tr.TLSClientConfig = cfg
		c.client.Transport = tr
	}
}

// WithRateLimit limits outgoing requests to rps per second with the given
// burst. rps <= 0 disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *HTTPClient) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *HTTPClient) {
		c.logger = l
	}
}

// WithMetrics records request metrics into reg.
func WithMetrics(reg *metric.Registry) Option {
	return func(c *HTTPClient) {
		c.metrics = reg
	}
}

// NewHTTPClient creates a client for baseURL. A missing scheme defaults to
// https and a trailing slash is dropped.
func NewHTTPClient(baseURL string, session Session, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL:   normalizeBaseURL(baseURL),
		client:    &http.Client{Timeout: DefaultTimeout},
		session:   session,
		userAgent: buildinfo.UserAgent(),
		logger:    logger.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func normalizeBaseURL(s string) string {
	s = strings.TrimSpace(s)
	if s != "" && !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		s = "https://" + s
	}
	return strings.TrimRight(s, "/")
}

// BaseURL returns the base URL of the client.
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// OnUnauthorized registers h to run after a 401 cleared the session.
func (c *HTTPClient) OnUnauthorized(h UnauthorizedHandler) {
	c.unauthorized.add(h)
}

// Send dispatches req and classifies the outcome.
func (c *HTTPClient) Send(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: nil request", ErrInvalidRequest)
	}
	method := strings.ToUpper(req.Method)
	if err := validate(method, req.Path); err != nil {
		return nil, err
	}

	var body io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: marshal body: %v", ErrInvalidRequest, err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+req.Path, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	requestID := ulid.Make().String()
	c.addHeaders(httpReq, req, requestID)

	log := c.logger.With("request_id", requestID, "method", method, "path", req.Path)
	route := routeLabel(req.Path)

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &NetworkError{Method: method, Path: req.Path, Err: fmt.Errorf("rate limit: %w", err)}
		}
	}

	log.Debug("api request", slog.Group("headers", headerAttrs(httpReq.Header)...))
	start := time.Now()
	resp, err := c.client.Do(httpReq)
	elapsed := time.Since(start)
	if err != nil {
		c.observe(method, route, 0, elapsed)
		if c.metrics != nil {
			c.metrics.NetworkErrors.Inc()
		}
		log.Warn("api request failed", "error", err)
		return nil, &NetworkError{Method: method, Path: req.Path, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	c.observe(method, route, resp.StatusCode, elapsed)
	if err != nil {
		if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
			return nil, &NetworkError{Method: method, Path: req.Path, Err: fmt.Errorf("read body: %w", err)}
		}
		// The status line arrived; classify it with whatever body was read.
		log.Warn("api response body truncated", "status", resp.StatusCode, "error", err)
	}
	log.Debug("api response", "status", resp.StatusCode, "duration", elapsed, "bytes", len(data))

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, c.handleUnauthorized(ctx, method, req.Path, requestID, data)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, newAPIError(resp.StatusCode, requestID, data)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
		RequestID:  requestID,
	}, nil
}

// Do sends a request and decodes the 2xx body into out (which may be nil).
func (c *HTTPClient) Do(ctx context.Context, method, path string, body, out any) error {
	resp, err := c.Send(ctx, &Request{Method: method, Path: path, Body: body})
	if err != nil {
		return err
	}
	return resp.Decode(out)
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

// Post performs a POST request with a JSON body.
func (c *HTTPClient) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

// Put performs a PUT request with a JSON body.
func (c *HTTPClient) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, body, out)
}

// Delete performs a DELETE request.
func (c *HTTPClient) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodDelete, path, nil, out)
}

// addHeaders sets auth and common headers. Caller headers are applied
// first so they cannot replace Authorization.
func (c *HTTPClient) addHeaders(httpReq *http.Request, req *Request, requestID string) {
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}

	httpReq.Header.Del("Authorization")
	if c.session != nil {
		if tok := c.session.Token(); tok != "" {
			httpReq.Header.Set("Authorization", "Bearer "+tok)
		}
	}
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set("X-Request-ID", requestID)
}

func (c *HTTPClient) handleUnauthorized(ctx context.Context, method, path, requestID string, data []byte) error {
	log := c.logger.With("request_id", requestID)
	if c.metrics != nil {
		c.metrics.UnauthorizedTotal.Inc()
	}
	if c.session != nil {
		if err := c.session.Clear(ctx); err != nil {
			log.Warn("failed to persist session clear", "error", err)
		}
	}
	log.Info("session rejected by server", "method", method, "path", path)

	c.unauthorized.emit(ctx, UnauthorizedEvent{Method: method, Path: path, RequestID: requestID})

	var p errorPayload
	_ = json.Unmarshal(data, &p)
	return &UnauthorizedError{Method: method, Path: path, RequestID: requestID, Message: p.Message}
}

func (c *HTTPClient) observe(method, route string, status int, elapsed time.Duration) {
	if c.metrics == nil {
		return
	}
	c.metrics.RequestsTotal.WithLabelValues(method, route, metric.StatusClass(status)).Inc()
	c.metrics.RequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func newAPIError(status int, requestID string, data []byte) *APIError {
	var p errorPayload
	_ = json.Unmarshal(data, &p)
	msg := p.text()
	if msg == "" {
		msg = fmt.Sprintf("request failed with status %d", status)
	}
	return &APIError{StatusCode: status, Message: msg, Code: p.Code, RequestID: requestID}
}

var allowedMethods = map[string]bool{
	http.MethodGet:    true,
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodPatch:  true,
	http.MethodDelete: true,
}

func validate(method, path string) error {
	if !allowedMethods[method] {
		return fmt.Errorf("%w: unsupported method %q", ErrInvalidRequest, method)
	}
	if !strings.HasPrefix(path, "/") || strings.Contains(path, "://") {
		return fmt.Errorf("%w: path must be relative to the API base and start with /: %q", ErrInvalidRequest, path)
	}
	return nil
}

// routeLabel replaces numeric path segments so metrics stay low-cardinality.
func routeLabel(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	parts := strings.Split(path, "/")
	for i, p := range parts {
		if _, err := strconv.ParseInt(p, 10, 64); err == nil {
			parts[i] = ":id"
		}
	}
	return strings.Join(parts, "/")
}

func headerAttrs(h http.Header) []any {
	attrs := make([]any, 0, len(h))
	for k := range h {
		attrs = append(attrs, slog.String(k, h.Get(k)))
	}
	return attrs
}
