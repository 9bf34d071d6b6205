package qbt

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/qbtkit/qbt/request"
)

const (
	testUser     = "admin"
	testPassword = "adminadmin"
)

// recordedRequest is what the fake server saw for one call.
type recordedRequest struct {
	Method      string
	Path        string
	Query       url.Values
	Form        url.Values
	Files       map[string][]byte
	FileNames   map[string]string
	Cookie      string
	Referer     string
	UserAgent   string
	ContentType string
}

// fakeQBittorrent mimics the WebUI: login sets a SID cookie, every other
// path answers 403 without a valid one.
type fakeQBittorrent struct {
	t   testing.TB
	srv *httptest.Server

	mu       sync.Mutex
	sid      string
	requests []recordedRequest
	handlers map[string]http.HandlerFunc
}

func newFakeQBittorrent(t testing.TB) *fakeQBittorrent {
	t.Helper()
	f := &fakeQBittorrent{
		t:        t,
		sid:      "sid-1",
		handlers: map[string]http.HandlerFunc{},
	}
	f.srv = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.srv.Close)
	return f
}

// handle installs a handler for an API path such as "app/version".
func (f *fakeQBittorrent) handle(path string, h http.HandlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[apiPrefix+path] = h
}

// reply installs a handler answering status and body.
func (f *fakeQBittorrent) reply(path string, status int, body string) {
	f.handle(path, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	})
}

// expireSession makes the server forget the current SID.
func (f *fakeQBittorrent) expireSession() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sid = f.sid + "-expired"
}

func (f *fakeQBittorrent) serve(w http.ResponseWriter, r *http.Request) {
	rec := recordedRequest{
		Method:      r.Method,
		Path:        r.URL.Path,
		Query:       r.URL.Query(),
		Referer:     r.Header.Get("Referer"),
		UserAgent:   r.Header.Get("User-Agent"),
		ContentType: r.Header.Get("Content-Type"),
	}
	if c, err := r.Cookie(sessionCookieName); err == nil {
		rec.Cookie = c.Value
	}

	if strings.HasPrefix(rec.ContentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			f.t.Errorf("parsing multipart body: %v", err)
		}
		rec.Form = url.Values(r.MultipartForm.Value)
		rec.Files = map[string][]byte{}
		rec.FileNames = map[string]string{}
		for name, headers := range r.MultipartForm.File {
			for _, fh := range headers {
				file, err := fh.Open()
				if err != nil {
					f.t.Errorf("opening part %s: %v", name, err)
					continue
				}
				data, err := io.ReadAll(file)
				file.Close()
				if err != nil {
					f.t.Errorf("reading part %s: %v", name, err)
				}
				rec.Files[name] = data
				rec.FileNames[name] = fh.Filename
			}
		}
	} else {
		if err := r.ParseForm(); err != nil {
			f.t.Errorf("parsing form body: %v", err)
		}
		rec.Form = r.PostForm
	}

	f.mu.Lock()
	f.requests = append(f.requests, rec)
	sid := f.sid
	h := f.handlers[r.URL.Path]
	f.mu.Unlock()

	if r.URL.Path == apiPrefix+"auth/login" {
		if h != nil {
			h(w, r)
			return
		}
		if r.PostForm.Get("username") == testUser && r.PostForm.Get("password") == testPassword {
			http.SetCookie(w, &http.Cookie{Name: sessionCookieName, Value: sid, Path: "/"})
			_, _ = io.WriteString(w, "Ok.")
			return
		}
		_, _ = io.WriteString(w, "Fails.")
		return
	}

	if rec.Cookie != sid {
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, "Forbidden")
		return
	}
	if h != nil {
		h(w, r)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (f *fakeQBittorrent) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

// last returns the most recent request to an API path.
func (f *fakeQBittorrent) last(path string) recordedRequest {
	f.t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.requests) - 1; i >= 0; i-- {
		if f.requests[i].Path == apiPrefix+path {
			return f.requests[i]
		}
	}
	f.t.Fatalf("no request to %s", path)
	return recordedRequest{}
}

func (f *fakeQBittorrent) config() Config {
	return Config{BaseURL: f.srv.URL, HTTPClient: f.srv.Client()}
}

func (f *fakeQBittorrent) newClient() *Client {
	f.t.Helper()
	c, err := New(f.config())
	require.NoError(f.t, err)
	return c
}

func (f *fakeQBittorrent) loggedInClient() *Client {
	f.t.Helper()
	c := f.newClient()
	require.NoError(f.t, c.Login(context.Background(), Credentials{Username: testUser, Password: testPassword}))
	return c
}

// failingDoer fails every request once broken is set.
type failingDoer struct {
	next   request.Doer
	broken atomic.Bool
	calls  atomic.Int32
}

var errLinkDown = errors.New("dial tcp 127.0.0.1:8080: connect: connection refused")

func (d *failingDoer) Do(req *http.Request) (*http.Response, error) {
	d.calls.Add(1)
	if d.broken.Load() {
		return nil, errLinkDown
	}
	return d.next.Do(req)
}

func requireCode(t *testing.T, err error, code ErrorCode) *ClientError {
	t.Helper()
	require.Error(t, err)
	var ce *ClientError
	require.True(t, errors.As(err, &ce), "expected *ClientError, got %T: %v", err, err)
	require.Equal(t, code, ce.Code, "error: %v", err)
	return ce
}
