package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"clinical-agent/internal/logger"
)

const (
	defaultRequestTimeout   = 30 * time.Second
	defaultMaxResponseBytes = 100000
)

// RequestOptions configures the transport shared by the requests tools.
type RequestOptions struct {
	Headers          map[string]string
	Timeout          time.Duration
	RetryCount       int
	MaxResponseBytes int
	UserAgent        string

	// Transport replaces the default HTTP transport (tests, proxies).
	Transport http.RoundTripper

	// Cache, when set, serves repeated GETs without a network round trip.
	Cache    ResponseCache
	CacheTTL time.Duration

	// Logger receives transport warnings such as retries.
	Logger *zap.Logger
}

// RequestsWrapper performs HTTP requests on behalf of the requests tools and
// returns response bodies as text.
type RequestsWrapper struct {
	client   *resty.Client
	maxBytes int
	cache    ResponseCache
	cacheTTL time.Duration
}

// NewRequestsWrapper creates a wrapper. No connection is opened until the
// first request.
func NewRequestsWrapper(opts RequestOptions) *RequestsWrapper {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	maxBytes := opts.MaxResponseBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxResponseBytes
	}

	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(opts.RetryCount)
	if opts.Transport != nil {
		client.SetTransport(opts.Transport)
	}
	if opts.UserAgent != "" {
		client.SetHeader("User-Agent", opts.UserAgent)
	}
	if len(opts.Headers) > 0 {
		client.SetHeaders(opts.Headers)
	}
	if opts.Logger != nil {
		client.SetLogger(opts.Logger.Named("requests").Sugar())
	}

	return &RequestsWrapper{
		client:   client,
		maxBytes: maxBytes,
		cache:    opts.Cache,
		cacheTTL: opts.CacheTTL,
	}
}

// Get fetches url and returns the body.
func (w *RequestsWrapper) Get(ctx context.Context, url string) (string, error) {
	key := cacheKey(http.MethodGet, url)
	if w.cache != nil {
		if body, ok, err := w.cache.Get(ctx, key); err == nil && ok {
			return body, nil
		}
	}

	body, status, err := w.do(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	if w.cache != nil && status >= 200 && status < 300 {
		_ = w.cache.Set(ctx, key, body, w.cacheTTL)
	}
	return body, nil
}

// Post sends data as a JSON body.
func (w *RequestsWrapper) Post(ctx context.Context, url string, data any) (string, error) {
	body, _, err := w.do(ctx, http.MethodPost, url, data)
	return body, err
}

// Patch sends data as a JSON body.
func (w *RequestsWrapper) Patch(ctx context.Context, url string, data any) (string, error) {
	body, _, err := w.do(ctx, http.MethodPatch, url, data)
	return body, err
}

// Put sends data as a JSON body.
func (w *RequestsWrapper) Put(ctx context.Context, url string, data any) (string, error) {
	body, _, err := w.do(ctx, http.MethodPut, url, data)
	return body, err
}

// Delete issues a DELETE for url.
func (w *RequestsWrapper) Delete(ctx context.Context, url string) (string, error) {
	body, _, err := w.do(ctx, http.MethodDelete, url, nil)
	return body, err
}

// do returns the body of any response, including non-2xx ones: the model
// reads API error messages as observations.
func (w *RequestsWrapper) do(ctx context.Context, method, url string, data any) (string, int, error) {
	if url == "" {
		return "", 0, fmt.Errorf("url is required")
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return "", 0, fmt.Errorf("unsupported url %q: only http and https are allowed", url)
	}

	req := w.client.R().SetContext(ctx)
	if data != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(data)
	}

	resp, err := req.Execute(method, url)
	if err != nil {
		return "", 0, fmt.Errorf("%s %s: %w", method, url, err)
	}

	body := string(resp.Body())
	logger.FromContext(ctx).Debug("http request",
		zap.String("method", method),
		zap.String("url", url),
		zap.Int("status", resp.StatusCode()),
		zap.Int("bytes", len(body)),
		zap.Duration("elapsed", resp.Time()))
	if len(body) > w.maxBytes {
		body = Clip(body, w.maxBytes) + "\n... (truncated)"
	}
	return body, resp.StatusCode(), nil
}

// LoadRequestsTools builds the requests tool family. The GET tool comes first.
func LoadRequestsTools(opts RequestOptions) ([]Tool, error) {
	w := NewRequestsWrapper(opts)
	return []Tool{
		NewFunc("requests_get",
			"A portal to the internet. Use this when you need to get specific content from a website. "+
				"Input should be a url (i.e. https://www.google.com). The output will be the text response of the GET request.",
			func(ctx context.Context, input string) (string, error) {
				return w.Get(ctx, cleanURL(input))
			}),
		NewFunc("requests_post", bodyToolDescription("POST"), bodyTool(w.Post)),
		NewFunc("requests_patch", bodyToolDescription("PATCH"), bodyTool(w.Patch)),
		NewFunc("requests_put", bodyToolDescription("PUT"), bodyTool(w.Put)),
		NewFunc("requests_delete",
			"A portal to the internet. Use this when you need to make a DELETE request to a URL. "+
				"Input should be a specific url, and the output will be the text response of the DELETE request.",
			func(ctx context.Context, input string) (string, error) {
				return w.Delete(ctx, cleanURL(input))
			}),
	}, nil
}

func bodyToolDescription(method string) string {
	return fmt.Sprintf("Use this when you want to %s to a website. "+
		`Input should be a json string with two keys: "url" and "data". `+
		`The value of "url" should be a string, and the value of "data" should be a dictionary of key-value pairs you want to %s to the url. `+
		"Be careful to always use double quotes for strings in the json string. "+
		"The output will be the text response of the %s request.", method, method, method)
}

type bodyInput struct {
	URL  string          `json:"url"`
	Data json.RawMessage `json:"data"`
}

func bodyTool(send func(ctx context.Context, url string, data any) (string, error)) RunFunc {
	return func(ctx context.Context, input string) (string, error) {
		var in bodyInput
		if err := json.Unmarshal([]byte(stripFence(input)), &in); err != nil {
			return "", fmt.Errorf("invalid input, expected json with \"url\" and \"data\": %w", err)
		}
		var data any
		if len(in.Data) > 0 {
			data = []byte(in.Data)
		}
		return send(ctx, cleanURL(in.URL), data)
	}
}

// cleanURL strips whitespace, quotes and backticks a model tends to wrap
// around a URL.
func cleanURL(s string) string {
	return strings.Trim(strings.TrimSpace(s), "`'\" \n\t")
}

// stripFence removes a surrounding markdown code fence.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}
