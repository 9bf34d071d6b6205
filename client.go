package qbt

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/qbtkit/qbt/request"
)

const (
	// DefaultRequestTimeout bounds one HTTP round trip.
	DefaultRequestTimeout = request.DefaultTimeout
	// DefaultUserAgent is sent when Config.UserAgent is empty.
	DefaultUserAgent = "qbt-go/1.0"

	maxResponseBody = 256 << 20
)

// Config contains runtime client settings. Credentials are not part of it;
// they are passed to Login and dropped once the call returns.
type Config struct {
	// BaseURL is the WebUI root, e.g. http://localhost:8080.
	BaseURL string
	// RequestTimeout bounds one HTTP round trip. Zero uses DefaultRequestTimeout.
	RequestTimeout time.Duration
	// Proxy is an http(s):// or socks5:// proxy URL.
	Proxy              string
	InsecureSkipVerify bool
	// RateLimit paces outgoing requests, e.g. "10/second". Empty disables pacing.
	// A call may wait for its slot; the wait ends early when ctx is done.
	RateLimit string
	UserAgent string
	// Logger receives exchange and session events. Nil logs nowhere unless Debug is set.
	Logger *zerolog.Logger
	Debug  bool
	// HTTPClient replaces the built-in transport; Proxy, RequestTimeout and
	// InsecureSkipVerify are ignored when it is set.
	HTTPClient request.Doer
}

// Client is a qBittorrent WebUI API client holding one session.
// It is safe for concurrent use.
type Client struct {
	mu        sync.RWMutex
	base      *url.URL
	doer      request.Doer
	userAgent string
	logger    zerolog.Logger

	session session
}

type transportConfig struct {
	base      *url.URL
	doer      request.Doer
	userAgent string
	logger    zerolog.Logger
}

// New creates a client. No request is sent until Login.
func New(config Config) (*Client, error) {
	tc, err := buildTransport(config)
	if err != nil {
		return nil, err
	}
	c := &Client{}
	c.apply(tc)
	return c, nil
}

func buildTransport(config Config) (*transportConfig, error) {
	base, err := parseBaseURL(config.BaseURL)
	if err != nil {
		return nil, err
	}

	doer := config.HTTPClient
	if doer == nil {
		timeout := config.RequestTimeout
		if timeout <= 0 {
			timeout = DefaultRequestTimeout
		}
		hc, err := request.NewHTTPClient(request.TransportOptions{
			Timeout:            timeout,
			Proxy:              config.Proxy,
			InsecureSkipVerify: config.InsecureSkipVerify,
		})
		if err != nil {
			e := invalidParams("", "Proxy", "invalid proxy configuration")
			e.Err = err
			return nil, e
		}
		doer = hc
	}

	if config.RateLimit != "" {
		limiter := request.ParseRateLimit(config.RateLimit)
		if limiter == nil {
			return nil, invalidParams("", "RateLimit", "rate limit must look like 10/second, 60/minute or 100/hour")
		}
		doer = request.WithRateLimit(doer, limiter)
	}

	userAgent := config.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	return &transportConfig{
		base:      base,
		doer:      doer,
		userAgent: userAgent,
		logger:    newLogger(config),
	}, nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, invalidParams("", "BaseURL", "base URL is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		e := invalidParams("", "BaseURL", "base URL is not a valid URL")
		e.Err = err
		return nil, e
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, invalidParams("", "BaseURL", "base URL must use http or https")
	}
	if u.Host == "" {
		return nil, invalidParams("", "BaseURL", "base URL has no host")
	}
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}

func newLogger(config Config) zerolog.Logger {
	if config.Logger != nil {
		return config.Logger.With().Str("component", "qbt").Logger()
	}
	if config.Debug {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
			Level(zerolog.DebugLevel).
			With().Timestamp().Str("component", "qbt").Logger()
	}
	return zerolog.Nop()
}

func (c *Client) apply(tc *transportConfig) {
	c.base = tc.base
	c.doer = tc.doer
	c.userAgent = tc.userAgent
	c.logger = tc.logger
}

func (c *Client) transport() transportConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return transportConfig{base: c.base, doer: c.doer, userAgent: c.userAgent, logger: c.logger}
}

// Update swaps the base URL and transport. The current session belongs to
// the old server and is dropped.
func (c *Client) Update(config Config) error {
	tc, err := buildTransport(config)
	if err != nil {
		return err
	}

	c.session.mu.Lock()
	defer c.session.mu.Unlock()
	c.mu.Lock()
	c.apply(tc)
	c.mu.Unlock()

	c.session.clearLocked()
	tc.logger.Info().Str("base_url", tc.base.Redacted()).Msg("client reconfigured, session cleared")
	return nil
}

// SessionState reports the current session state.
func (c *Client) SessionState() SessionState {
	state, _ := c.session.snapshot()
	return state
}

// Login authenticates with the WebUI. Success requires the "Ok." marker and
// a session cookie. creds is not retained.
func (c *Client) Login(ctx context.Context, creds Credentials) error {
	if err := checkVar(OpLogin, "username", creds.Username, tagRequired); err != nil {
		return err
	}
	ep := lookup(OpLogin)
	log := c.transport().logger

	c.session.mu.Lock()
	defer c.session.mu.Unlock()

	// Only an answer from the server ends the current session; a canceled
	// or failed round trip leaves it as it was.
	replacing := c.session.state == SessionAuthenticated
	fail := func(err error) error {
		if replacing {
			c.session.clearLocked()
			log.Info().Msg("session cleared after failed re-login")
		}
		return err
	}

	params := request.NewParams().
		Set("username", creds.Username).
		Set("password", creds.Password)

	res, err := c.exchange(ctx, ep, params, nil)
	if err != nil {
		return err
	}
	if _, cerr := classifyResponse(ep, res.status, res.body); cerr != nil {
		return fail(cerr)
	}

	var accepted bool
	if err := decodeBody(ep, res.body, &accepted); err != nil {
		return fail(withStatus(err, res.status))
	}
	if !accepted {
		e := newOpError(OpLogin, ErrorCodeAuthenticationFailed, "invalid username or password")
		e.StatusCode = res.status
		return fail(e)
	}

	cookie := findSessionCookie(res.cookies)
	if cookie == nil {
		e := newOpError(OpLogin, ErrorCodeDecodeError, "login accepted but no session cookie was returned")
		e.StatusCode = res.status
		return fail(e)
	}

	c.session.setLocked(cookie)
	log.Info().Str("cookie", cookie.Name).Msg("logged in")
	return nil
}

// Logout ends the session. Local state is cleared even when the remote call
// fails; that failure is still returned.
func (c *Client) Logout(ctx context.Context) error {
	ep := lookup(OpLogout)
	log := c.transport().logger

	c.session.mu.Lock()
	defer c.session.mu.Unlock()

	state, cookie := c.session.state, c.session.cookie
	defer func() {
		c.session.clearLocked()
		log.Info().Str("from", state.String()).Msg("logged out")
	}()

	if state != SessionAuthenticated {
		return nil
	}

	res, err := c.exchange(ctx, ep, nil, cookie)
	if err != nil {
		return err
	}
	if _, cerr := classifyResponse(ep, res.status, res.body); cerr != nil {
		return cerr
	}
	return withStatus(decodeBody(ep, res.body, nil), res.status)
}

// Close logs out.
func (c *Client) Close() error {
	return c.Logout(context.Background())
}

// SetSessionCookie installs a session obtained elsewhere, e.g. persisted by
// the caller from an earlier run. An empty name defaults to SID.
func (c *Client) SetSessionCookie(name, value string) error {
	if name == "" {
		name = sessionCookieName
	}
	if !isSessionCookie(name) {
		return invalidParams("", "name", "not a session cookie name: "+name)
	}
	if err := checkVar("", "value", value, tagRequired); err != nil {
		return err
	}

	c.session.mu.Lock()
	defer c.session.mu.Unlock()
	c.session.setLocked(&http.Cookie{Name: name, Value: value})
	return nil
}

// SessionCookie returns a copy of the held session cookie.
func (c *Client) SessionCookie() (*http.Cookie, bool) {
	state, cookie := c.session.snapshot()
	if state != SessionAuthenticated || cookie == nil {
		return nil, false
	}
	return &http.Cookie{Name: cookie.Name, Value: cookie.Value}, true
}

func (c *Client) ensureAuthenticated(op Operation) (*http.Cookie, error) {
	state, cookie := c.session.snapshot()
	switch state {
	case SessionAuthenticated:
		return cookie, nil
	case SessionInvalidated:
		return nil, newOpError(op, ErrorCodeSessionInvalidated, "session was rejected by the server, login again")
	default:
		return nil, newOpError(op, ErrorCodeNotAuthenticated, "login required")
	}
}

type exchangeResult struct {
	status  int
	body    []byte
	cookies []*http.Cookie
}

// do runs one authenticated operation and decodes the result into out.
func (c *Client) do(ctx context.Context, op Operation, params *request.Params, out any) error {
	cookie, err := c.ensureAuthenticated(op)
	if err != nil {
		return err
	}

	ep := lookup(op)
	res, err := c.exchange(ctx, ep, params, cookie)
	if err != nil {
		return err
	}

	class, cerr := classifyResponse(ep, res.status, res.body)
	if class == classSuccess {
		return withStatus(decodeBody(ep, res.body, out), res.status)
	}
	// A banned client cannot use its session either.
	if class == classAuthRequired || cerr.Code == ErrorCodeForbidden {
		if c.session.invalidate(cookie) {
			log := c.transport().logger
			log.Warn().Str("op", string(op)).Int("status", res.status).Msg("session invalidated")
		}
	}
	return cerr
}

// exchange sends exactly one request. It never touches session state.
func (c *Client) exchange(ctx context.Context, ep Endpoint, params *request.Params, cookie *http.Cookie) (*exchangeResult, error) {
	if err := ep.checkParams(params); err != nil {
		e := invalidParams(ep.Op, "", err.Error())
		return nil, e
	}

	tc := c.transport()
	req, err := request.New(tc.base, ep.target(),
		request.WithContext(ctx),
		request.WithParams(params),
		request.WithCookie(cookie),
		request.WithHeaders(map[string]string{
			"Referer":    tc.base.String(),
			"User-Agent": tc.userAgent,
		}),
	)
	if err != nil {
		e := invalidParams(ep.Op, "", "cannot build request")
		e.Err = err
		return nil, e
	}

	start := time.Now()
	resp, err := tc.doer.Do(req)
	if err != nil {
		tc.logger.Debug().Str("op", string(ep.Op)).Err(err).Dur("duration", time.Since(start)).Msg("transport failure")
		return nil, transportFailure(ep.Op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, transportFailure(ep.Op, err)
	}

	tc.logger.Debug().
		Str("op", string(ep.Op)).
		Str("method", ep.Method).
		Str("path", ep.Path).
		Int("status", resp.StatusCode).
		Int("bytes", len(body)).
		Dur("duration", time.Since(start)).
		Msg("exchange")

	return &exchangeResult{status: resp.StatusCode, body: body, cookies: resp.Cookies()}, nil
}

func transportFailure(op Operation, err error) *ClientError {
	classified := ClassifyError(err)
	e := *classified
	e.Op = op
	if e.Code != ErrorCodeTransportFailure {
		e.Code = ErrorCodeTransportFailure
		e.Err = err
	}
	return &e
}

// withStatus records the HTTP status on a decode error.
func withStatus(err error, status int) error {
	if err == nil {
		return nil
	}
	if ce, ok := err.(*ClientError); ok && ce.StatusCode == 0 {
		ce.StatusCode = status
	}
	return err
}

// annotate names the identifying parameter on errors from the server.
func annotate(err error, param string) error {
	if ce, ok := err.(*ClientError); ok && ce.Param == "" {
		ce.Param = param
	}
	return err
}
