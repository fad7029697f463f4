package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/suitenumerique/drive-sub001/internal/common"
	"github.com/suitenumerique/drive-sub001/internal/logging"
)

const (
	// DefaultAPIVersion is the API version used when none is configured.
	DefaultAPIVersion = "1.0"

	// DefaultCSRFBootstrapPath is fetched to obtain the anti-forgery cookie.
	DefaultCSRFBootstrapPath = "config/"

	bootstrapKey     = "csrf"
	bootstrapTimeout = 10 * time.Second
)

// Opts contains parameters for FetchAPI and CallJSON.
type Opts struct {
	Method  string      // GET when empty
	Body    any         // JSON encoded when set
	RawBody io.Reader   // sent as is when Body is nil
	Params  url.Values  // merged into the query string
	Header  http.Header // extra request headers

	// Timeout aborts the request after the given duration; 0 means none.
	Timeout time.Duration

	// NoRedirectOn40x keeps 401/403 as plain API errors instead of sending
	// the navigator to the error page.
	NoRedirectOn40x bool
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client. A cookie jar is added when
// the client has none.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithAPIVersion overrides DefaultAPIVersion.
func WithAPIVersion(v string) Option {
	return func(c *Client) { c.apiVersion = v }
}

// WithAppOrigin sets the origin of the application front end, used for the
// 401/403 error pages.
func WithAppOrigin(origin string) Option {
	return func(c *Client) { c.appOrigin = strings.TrimRight(origin, "/") }
}

// WithCSRFBootstrapPath overrides DefaultCSRFBootstrapPath.
func WithCSRFBootstrapPath(p string) Option {
	return func(c *Client) { c.bootstrapPath = p }
}

// WithNavigator sets the location redirected on 401/403.
func WithNavigator(n Navigator) Option {
	return func(c *Client) { c.navigator = n }
}

// WithRedirectStore sets where the post-login return URL is saved.
func WithRedirectStore(s RedirectStore) Option {
	return func(c *Client) { c.redirects = s }
}

// WithTranslator sets the message localizer.
func WithTranslator(t Translator) Option {
	return func(c *Client) { c.translate = t }
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithRateLimit throttles outgoing requests; rps <= 0 disables throttling.
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

// Client talks to one drive API origin. It is safe for concurrent use.
type Client struct {
	httpClient    *http.Client
	apiOrigin     string
	apiVersion    string
	appOrigin     string
	bootstrapPath string
	baseURL       *url.URL

	bootstrap singleflight.Group
	limiter   *rate.Limiter
	navigator Navigator
	redirects RedirectStore
	translate Translator
	logger    logging.Logger
}

// New returns a Client for apiOrigin (scheme://host[:port]).
func New(apiOrigin string, opts ...Option) (*Client, error) {
	c := &Client{
		apiOrigin:     strings.TrimRight(apiOrigin, "/"),
		apiVersion:    DefaultAPIVersion,
		bootstrapPath: DefaultCSRFBootstrapPath,
		navigator:     noopNavigator{},
		redirects:     noopRedirectStore{},
		translate:     defaultTranslator,
		logger:        logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	if c.httpClient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("cookie jar: %w", err)
		}
		hc := *c.httpClient
		hc.Jar = jar
		c.httpClient = &hc
	}
	if c.appOrigin == "" {
		c.appOrigin = c.apiOrigin
	}

	base, err := url.Parse(fmt.Sprintf("%s/api/v%s/", c.apiOrigin, c.apiVersion))
	if err != nil {
		return nil, fmt.Errorf("invalid api origin %q: %w", apiOrigin, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid api origin %q: scheme and host required", apiOrigin)
	}
	c.baseURL = base
	return c, nil
}

// BaseURL returns the versioned API root, e.g. http://host/api/v1.0/.
func (c *Client) BaseURL() string { return c.baseURL.String() }

// AppOrigin returns the front-end origin.
func (c *Client) AppOrigin() string { return c.appOrigin }

// HTTPClient returns the underlying HTTP client, sharing the cookie jar.
func (c *Client) HTTPClient() *http.Client { return c.httpClient }

// SetCookie stores a cookie for the API origin, e.g. an existing session.
func (c *Client) SetCookie(name, value string) {
	c.httpClient.Jar.SetCookies(c.baseURL, []*http.Cookie{{Name: name, Value: value, Path: "/"}})
}

// CSRFToken returns the anti-forgery token from the jar, or "".
func (c *Client) CSRFToken() string {
	for _, ck := range c.httpClient.Jar.Cookies(c.baseURL) {
		if ck.Name == common.CSRFCookieName {
			return ck.Value
		}
	}
	return ""
}

// URL resolves path against the API root and merges params.
func (c *Client) URL(path string, params url.Values) (string, error) {
	rel, err := url.Parse(strings.TrimLeft(path, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid path %q: %w", path, err)
	}
	u := c.baseURL.ResolveReference(rel)

	if len(params) > 0 {
		q := u.Query()
		for k, vs := range params {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// FetchAPI performs one API request and returns the raw 2xx response. The
// caller must close the response body.
func (c *Client) FetchAPI(ctx context.Context, path string, opts *Opts) (*http.Response, error) {
	if opts == nil {
		opts = &Opts{}
	}
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	target, err := c.URL(path, opts.Params)
	if err != nil {
		return nil, err
	}

	if !isSafeMethod(method) && c.CSRFToken() == "" {
		c.ensureCSRF(ctx)
	}

	body, err := requestBody(opts)
	if err != nil {
		return nil, err
	}

	cancel := context.CancelFunc(func() {})
	if opts.Timeout > 0 {
		ctx, cancel = context.WithTimeoutCause(ctx, opts.Timeout, errRequestTimeout)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			cancel()
			return nil, c.classify(ctx, opts, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		cancel()
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token := c.CSRFToken(); token != "" {
		req.Header.Set(common.CSRFHeaderName, token)
	}
	for k, vs := range opts.Header {
		req.Header.Del(k)
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		cancel()
		err = c.classify(ctx, opts, err)
		c.logger.Warn(ctx, "api request failed", "method", method, "path", path, "error", err)
		return nil, err
	}
	c.logger.Debug(ctx, "api request", "method", method, "path", path, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
		return resp, nil
	}
	defer cancel()

	if !opts.NoRedirectOn40x && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
		drain(resp.Body)
		c.redirect(resp.StatusCode)
		return nil, &APIError{Status: resp.StatusCode}
	}

	return nil, errorFromResponse(resp)
}

// CallJSON runs FetchAPI and decodes a JSON response into out (skipped when
// out is nil or the response has no content).
func (c *Client) CallJSON(ctx context.Context, path string, opts *Opts, out any) error {
	resp, err := c.FetchAPI(ctx, path, opts)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil || resp.StatusCode == http.StatusNoContent {
		drain(resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if err == io.EOF {
			return nil
		}
		if cause := context.Cause(resp.Request.Context()); cause == errRequestTimeout {
			return c.timeoutError(opts.Timeout)
		}
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// ensureCSRF fetches the bootstrap path once for all concurrent callers.
// Failures are logged; the request proceeds and the server decides.
func (c *Client) ensureCSRF(ctx context.Context) {
	_, err, shared := c.bootstrap.Do(bootstrapKey, func() (any, error) {
		if c.CSRFToken() != "" {
			return nil, nil
		}

		bctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), bootstrapTimeout)
		defer cancel()

		target, err := c.URL(c.bootstrapPath, nil)
		if err != nil {
			return nil, err
		}
		req, err := http.NewRequestWithContext(bctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		drain(resp.Body)
		return nil, nil
	})
	if err != nil {
		c.logger.Warn(ctx, "csrf bootstrap failed", "error", err, "shared", shared)
	}
}

func (c *Client) redirect(status int) {
	if status == http.StatusUnauthorized {
		c.redirects.SaveRedirectAfterLogin(c.navigator.CurrentURL())
	}
	c.navigator.Navigate(fmt.Sprintf("%s/%d", c.appOrigin, status))
}

// classify turns a deadline hit by our own timeout into a TimeoutError and
// leaves every other error as it is.
func (c *Client) classify(ctx context.Context, opts *Opts, err error) error {
	if opts.Timeout > 0 && context.Cause(ctx) == errRequestTimeout {
		return c.timeoutError(opts.Timeout)
	}
	return fmt.Errorf("api request: %w", err)
}

func (c *Client) timeoutError(d time.Duration) *TimeoutError {
	return &TimeoutError{Message: c.translate(MsgRequestTimeout), Timeout: d}
}

func errorFromResponse(resp *http.Response) error {
	defer resp.Body.Close()

	apiErr := &APIError{Status: resp.StatusCode}
	b, err := io.ReadAll(resp.Body)
	if err != nil || len(bytes.TrimSpace(b)) == 0 {
		return apiErr
	}

	var data any
	if json.Unmarshal(b, &data) == nil {
		apiErr.Data = data
	}
	return apiErr
}

func requestBody(opts *Opts) (io.Reader, error) {
	if opts.Body != nil {
		b, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		return bytes.NewReader(b), nil
	}
	return opts.RawBody, nil
}

func isSafeMethod(method string) bool {
	switch strings.ToUpper(method) {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}

func drain(rc io.ReadCloser) {
	_, _ = io.Copy(io.Discard, rc)
	_ = rc.Close()
}

// cancelOnClose releases the request context once the caller is done with
// the body, so a timeout keeps covering the body read.
type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}
