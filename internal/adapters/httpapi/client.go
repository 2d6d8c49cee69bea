// Package httpapi is the REST client for the marketplace backend. Every
// request carries the shared cookie jar; a 401 triggers one silent refresh
// followed by one retry.
package httpapi

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

	"github.com/bnema/ibuy-cli/internal/domain"
	"go.uber.org/zap"
)

const (
	maxResponseBytes      = 1 << 20
	defaultRequestTimeout = 30 * time.Second
	refreshPath           = "auth/refresh"
)

type Client struct {
	BaseURL        string
	HTTPClient     *http.Client
	RequestTimeout time.Duration
	Logger         *zap.Logger
}

// NewClient validates baseURL and returns a client whose requests share jar.
func NewClient(baseURL string, jar http.CookieJar, logger *zap.Logger) (*Client, error) {
	if _, err := parseBaseURL(baseURL); err != nil {
		return nil, err
	}

	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Jar: jar},
		Logger:     logger,
	}, nil
}

type MutateOptions struct {
	// Method defaults to POST.
	Method string
	// Body is JSON encoded unless it is a *Multipart.
	Body any
}

// Get issues an authenticated GET and decodes the JSON response into T.
func Get[T any](ctx context.Context, c *Client, path string) (T, error) {
	var out T
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// Mutate issues an authenticated POST/PUT/PATCH/DELETE and decodes the JSON
// response into T.
func Mutate[T any](ctx context.Context, c *Client, path string, opts MutateOptions) (T, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodPost
	}

	var out T
	if err := c.do(ctx, method, path, opts.Body, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

type encodedBody struct {
	data        []byte
	contentType string
}

type rawResponse struct {
	status int
	body   []byte
}

func (r rawResponse) ok() bool {
	return r.status >= http.StatusOK && r.status < http.StatusMultipleChoices
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	payload, err := encodeBody(body)
	if err != nil {
		return err
	}

	resp, err := c.send(ctx, method, path, payload)
	if err != nil {
		return err
	}

	switch {
	case resp.status == http.StatusUnauthorized:
		if !c.refresh(ctx) {
			return &domain.AuthError{Status: http.StatusUnauthorized, Message: "authentication failed"}
		}
		retry, err := c.send(ctx, method, path, payload)
		if err != nil {
			return err
		}
		if !retry.ok() {
			c.logger().Debug("retry after refresh failed", zap.String("path", path), zap.Int("status", retry.status))
			return &domain.AuthError{Status: http.StatusUnauthorized, Message: "authentication failed"}
		}
		return decodeResponse(retry.body, out)
	case resp.status == http.StatusForbidden:
		return &domain.AuthError{Status: http.StatusForbidden, Message: "access forbidden"}
	case !resp.ok():
		return &domain.HTTPError{Status: resp.status, Message: errorMessage(resp)}
	}

	return decodeResponse(resp.body, out)
}

func (c *Client) send(ctx context.Context, method, path string, payload *encodedBody) (rawResponse, error) {
	endpoint, err := c.endpoint(path)
	if err != nil {
		return rawResponse{}, err
	}

	requestCtx, cancel := c.requestContext(ctx)
	defer cancel()

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload.data)
	}
	req, err := http.NewRequestWithContext(requestCtx, method, endpoint, reader)
	if err != nil {
		return rawResponse{}, fmt.Errorf("create %s %s request: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", payload.contentType)
	} else {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return rawResponse{}, ctxErr
		}
		return rawResponse{}, &domain.NetworkError{Err: fmt.Errorf("%s %s: %w", method, path, err)}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return rawResponse{}, &domain.NetworkError{Err: fmt.Errorf("read %s %s response: %w", method, path, err)}
	}

	c.logger().Debug("http request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
	)

	return rawResponse{status: resp.StatusCode, body: data}, nil
}

// refresh asks the backend to rotate the access cookie. Any failure,
// including transport errors, counts as not refreshed.
func (c *Client) refresh(ctx context.Context) bool {
	resp, err := c.send(ctx, http.MethodPost, refreshPath, nil)
	if err != nil {
		c.logger().Debug("token refresh failed", zap.Error(err))
		return false
	}
	return resp.ok()
}

func (c *Client) endpoint(path string) (string, error) {
	base, err := parseBaseURL(c.BaseURL)
	if err != nil {
		return "", err
	}

	ref, err := url.Parse(strings.TrimLeft(path, "/"))
	if err != nil {
		return "", fmt.Errorf("parse api path %q: %w", path, err)
	}
	return base.ResolveReference(ref).String(), nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c *Client) logger() *zap.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return zap.NewNop()
}

func (c *Client) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}

	timeout := c.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

func parseBaseURL(baseURL string) (*url.URL, error) {
	if baseURL == "" {
		return nil, errors.New("api base url is required")
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, errors.New("api base url must use http or https")
	}
	if parsed.Host == "" {
		return nil, errors.New("api base url host is required")
	}
	if !strings.HasSuffix(parsed.Path, "/") {
		parsed.Path += "/"
	}
	return parsed, nil
}

func encodeBody(body any) (*encodedBody, error) {
	switch value := body.(type) {
	case nil:
		return nil, nil
	case *Multipart:
		data, contentType, err := value.encode()
		if err != nil {
			return nil, fmt.Errorf("encode multipart body: %w", err)
		}
		return &encodedBody{data: data, contentType: contentType}, nil
	default:
		data, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		return &encodedBody{data: data, contentType: "application/json"}, nil
	}
}

func decodeResponse(body []byte, out any) error {
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	// Opaque tokens may come back as a JSON string or as plain text.
	if text, ok := out.(*string); ok {
		if err := json.Unmarshal(body, text); err != nil {
			*text = strings.TrimSpace(string(body))
		}
		return nil
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func errorMessage(resp rawResponse) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(resp.body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}

	if text := strings.TrimSpace(string(resp.body)); text != "" && !json.Valid(resp.body) {
		return text
	}

	return fmt.Sprintf("HTTP %d", resp.status)
}
