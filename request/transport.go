package request

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/ratelimit"
	"golang.org/x/net/proxy"
)

// DefaultTimeout bounds one HTTP round trip when no timeout is configured.
const DefaultTimeout = 30 * time.Second

// Doer sends one request and returns the raw response.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// TransportOptions configures NewHTTPClient.
type TransportOptions struct {
	Timeout            time.Duration
	Proxy              string // http(s):// or socks5:// URL; empty uses the environment
	InsecureSkipVerify bool
}

// NewHTTPClient builds the default transport. Redirects are not followed so
// the caller always sees the status the service answered with.
func NewHTTPClient(opts TransportOptions) (*http.Client, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
	}
	if opts.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}

	if opts.Proxy != "" {
		proxyURL, err := url.Parse(opts.Proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy url: %w", err)
		}

		switch proxyURL.Scheme {
		case "socks5", "socks5h":
			var auth *proxy.Auth
			if proxyURL.User != nil {
				password, _ := proxyURL.User.Password()
				auth = &proxy.Auth{User: proxyURL.User.Username(), Password: password}
			}
			dialer, err := proxy.SOCKS5("tcp", proxyURL.Host, auth, proxy.Direct)
			if err != nil {
				return nil, fmt.Errorf("creating socks5 dialer: %w", err)
			}
			transport.Proxy = nil
			if cd, ok := dialer.(proxy.ContextDialer); ok {
				transport.DialContext = cd.DialContext
			} else {
				transport.DialContext = func(_ context.Context, network, addr string) (net.Conn, error) {
					return dialer.Dial(network, addr)
				}
			}
		case "http", "https":
			transport.Proxy = http.ProxyURL(proxyURL)
		default:
			return nil, fmt.Errorf("unsupported proxy scheme %q", proxyURL.Scheme)
		}
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}, nil
}

// limitedDoer paces outgoing requests. It never retries.
type limitedDoer struct {
	next    Doer
	limiter ratelimit.Limiter
}

// WithRateLimit wraps d so every request first takes a slot from limiter.
// A nil limiter returns d unchanged.
func WithRateLimit(d Doer, limiter ratelimit.Limiter) Doer {
	if limiter == nil {
		return d
	}
	return &limitedDoer{next: d, limiter: limiter}
}

// Do waits for a slot or for the request context, whichever comes first.
// A canceled wait still uses up the slot once the limiter hands it out.
func (l *limitedDoer) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	taken := make(chan struct{})
	go func() {
		l.limiter.Take()
		close(taken)
	}()

	select {
	case <-taken:
		return l.next.Do(req)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// ParseRateLimit turns "10/second", "60/min" or "1000/hour" into a limiter.
// Empty or malformed input yields nil.
func ParseRateLimit(rateStr string) ratelimit.Limiter {
	if rateStr == "" {
		return nil
	}
	parts := strings.SplitN(rateStr, "/", 2)
	if len(parts) != 2 {
		return nil
	}

	count, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || count <= 0 {
		return nil
	}

	unit := strings.ToLower(strings.TrimSpace(parts[1]))
	unit = strings.TrimSuffix(unit, "s")
	switch unit {
	case "second", "sec":
		return ratelimit.New(count, ratelimit.Per(time.Second))
	case "minute", "min":
		return ratelimit.New(count, ratelimit.Per(time.Minute))
	case "hour", "hr":
		return ratelimit.New(count, ratelimit.Per(time.Hour))
	default:
		return nil
	}
}
