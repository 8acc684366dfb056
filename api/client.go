package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/regulus-console/internal/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	contentTypeJSON = "application/json"

	HeaderRequestID    = "X-Request-ID"
	HeaderForwardedFor = "X-Forwarded-For"
	HeaderDeviceID     = "X-Device-Id"

	DefaultDeviceID     = "regulus-ui"
	DefaultForwardedFor = "127.0.0.1"
)

// Session is the part of the session store the pipeline depends on.
type Session interface {
	oauth2.TokenSource
	// Invalidate clears the credential carrying token after a 401 and publishes
	// session-expired when a credential was actually removed.
	Invalidate(token string) bool
}

// Request describes one outbound call.
type Request struct {
	Method  string
	Path    string
	Body    any
	Headers map[string]string
}

// Client executes authorized calls against the monitoring API and classifies
// every outcome into data, RequestError or NetworkError.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	session      Session
	deviceID     string
	forwardedFor string
	limiter      *rate.Limiter
	metrics      *metrics
	requestID    func() string
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithDeviceID(deviceID string) Option {
	return func(c *Client) {
		c.deviceID = deviceID
	}
}

func WithForwardedFor(forwardedFor string) Option {
	return func(c *Client) {
		c.forwardedFor = forwardedFor
	}
}

// WithRateLimit caps outbound requests per second. A non-positive rps disables it.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
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

func WithRequestIDFunc(fn func() string) Option {
	return func(c *Client) {
		c.requestID = fn
	}
}

func New(baseURL string, session Session, options ...Option) *Client {
	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		httpClient:   http.DefaultClient,
		session:      session,
		deviceID:     DefaultDeviceID,
		forwardedFor: DefaultForwardedFor,
		requestID:    func() string { return uuid.New().String() },
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// BaseURL returns the API root requests are resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get executes a GET for path.
func (c *Client) Get(ctx context.Context, path string) (json.RawMessage, error) {
	return c.Execute(ctx, Request{Method: http.MethodGet, Path: path})
}

// Post executes a POST for path with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return c.Execute(ctx, Request{Method: http.MethodPost, Path: path, Body: body})
}

// Execute runs req and returns the JSON body unchanged. Empty success bodies
// return nil.
func (c *Client) Execute(ctx context.Context, req Request) (json.RawMessage, error) {
	body, err := c.send(ctx, req, true)
	if err != nil {
		return nil, err
	}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if !json.Valid(trimmed) {
		return nil, errors.Wrapf(errors.ErrInvalidResponse, "%s %s", req.method(), req.Path)
	}
	return json.RawMessage(trimmed), nil
}

// Download runs req and returns the raw response body, for binary documents.
// The request carries no Content-Type header.
func (c *Client) Download(ctx context.Context, req Request) ([]byte, error) {
	return c.send(ctx, req, false)
}

func (c *Client) send(ctx context.Context, req Request, jsonBody bool) ([]byte, error) {
	method := req.method()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%s %s: rate limit wait: %w", method, req.Path, err)
		}
	}

	httpReq, requestID, sent, err := c.build(ctx, req, jsonBody)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, c.transportFailure(ctx, method, req.Path, start, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.transportFailure(ctx, method, req.Path, start, err)
	}

	log.Debug().
		Str("method", method).
		Str("path", req.Path).
		Str("request_id", requestID).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("API request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		failure := classify(resp, body)
		if failure.Unauthorized() {
			c.session.Invalidate(sent)
			c.metrics.observe(method, outcomeUnauthorized, start)
		} else {
			c.metrics.observe(method, outcomeDomain, start)
		}
		return nil, failure
	}

	c.metrics.observe(method, outcomeSuccess, start)
	return body, nil
}

// build returns the request, its correlation id and the bearer token it carries.
func (c *Client) build(ctx context.Context, req Request, jsonBody bool) (*http.Request, string, string, error) {
	var reader io.Reader
	if req.Body != nil {
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return nil, "", "", errors.Wrapf(errors.ErrInvalidInput, "encode %s %s body: %v", req.method(), req.Path, err)
		}
		reader = bytes.NewReader(encoded)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method(), c.baseURL+req.Path, reader)
	if err != nil {
		return nil, "", "", errors.Wrapf(errors.ErrInvalidInput, "build %s %s: %v", req.method(), req.Path, err)
	}

	requestID := c.requestID()
	if jsonBody {
		httpReq.Header.Set("Content-Type", contentTypeJSON)
	}
	httpReq.Header.Set(HeaderRequestID, requestID)
	httpReq.Header.Set(HeaderForwardedFor, c.forwardedFor)
	httpReq.Header.Set(HeaderDeviceID, c.deviceID)
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	// Absent token means the request goes out unauthenticated; the server decides
	var sent string
	if token, err := c.session.Token(); err == nil {
		token.SetAuthHeader(httpReq)
		sent = token.AccessToken
	}
	return httpReq, requestID, sent, nil
}

func (c *Client) transportFailure(ctx context.Context, method, path string, start time.Time, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s %s: %w", method, path, ctxErr)
	}
	c.metrics.observe(method, outcomeNetwork, start)
	log.Err(err).Str("method", method).Str("path", path).Msg("API unreachable")
	return &NetworkError{Method: method, Path: path, Err: err}
}

// classify turns a non-2xx response into a RequestError. JSON bodies supply
// message and error_code; anything else is used verbatim as the message.
func classify(resp *http.Response, body []byte) *RequestError {
	failure := &RequestError{Status: resp.StatusCode}

	trimmed := bytes.TrimSpace(body)
	isJSON := strings.Contains(resp.Header.Get("Content-Type"), contentTypeJSON) ||
		(len(trimmed) > 0 && trimmed[0] == '{')

	parsed := false
	if isJSON {
		var payload struct {
			Message   string `json:"message"`
			ErrorCode string `json:"error_code"`
		}
		if err := json.Unmarshal(trimmed, &payload); err == nil {
			failure.Message = payload.Message
			failure.Code = payload.ErrorCode
			parsed = true
		}
	}
	if !parsed {
		failure.Message = string(trimmed)
	}
	if failure.Message == "" {
		failure.Message = defaultFailureMessage
	}
	return failure
}

func (r Request) method() string {
	if r.Method == "" {
		return http.MethodGet
	}
	return r.Method
}
