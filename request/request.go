package request

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
)

// Encoding selects how parameters travel with a request.
type Encoding int

const (
	// EncodingNone sends no parameters.
	EncodingNone Encoding = iota
	// EncodingQuery appends parameters to the URL.
	EncodingQuery
	// EncodingForm sends an application/x-www-form-urlencoded body.
	EncodingForm
	// EncodingMultipart sends a multipart/form-data body.
	EncodingMultipart
)

func (e Encoding) String() string {
	switch e {
	case EncodingNone:
		return "none"
	case EncodingQuery:
		return "query"
	case EncodingForm:
		return "form"
	case EncodingMultipart:
		return "multipart"
	default:
		return fmt.Sprintf("encoding(%d)", int(e))
	}
}

const (
	ContentTypeForm    = "application/x-www-form-urlencoded"
	ContentTypeTorrent = "application/x-bittorrent"
)

// Target describes where and how a request is sent.
type Target struct {
	Method   string
	Path     string
	Encoding Encoding
}

// RequestOptions holds everything New needs besides the target.
type RequestOptions struct {
	Ctx     context.Context
	Headers map[string]string
	Cookie  *http.Cookie
	Params  *Params
}

// RequestOption customizes RequestOptions.
type RequestOption func(*RequestOptions)

// WithContext sets the request context; cancellation is left to the transport.
func WithContext(ctx context.Context) RequestOption {
	return func(o *RequestOptions) {
		o.Ctx = ctx
	}
}

// WithHeader adds one header.
func WithHeader(key, value string) RequestOption {
	return func(o *RequestOptions) {
		if o.Headers == nil {
			o.Headers = make(map[string]string)
		}
		o.Headers[key] = value
	}
}

// WithHeaders adds several headers at once.
func WithHeaders(headers map[string]string) RequestOption {
	return func(o *RequestOptions) {
		if o.Headers == nil {
			o.Headers = make(map[string]string)
		}
		for k, v := range headers {
			o.Headers[k] = v
		}
	}
}

// WithCookie attaches the session cookie. A nil cookie is ignored.
func WithCookie(cookie *http.Cookie) RequestOption {
	return func(o *RequestOptions) {
		o.Cookie = cookie
	}
}

// WithParams sets the parameters encoded according to the target encoding.
func WithParams(params *Params) RequestOption {
	return func(o *RequestOptions) {
		o.Params = params
	}
}

// New builds a fresh *http.Request for target relative to base.
func New(base *url.URL, target Target, opts ...RequestOption) (*http.Request, error) {
	options := &RequestOptions{
		Ctx: context.Background(),
	}
	for _, opt := range opts {
		opt(options)
	}

	if base == nil {
		return nil, fmt.Errorf("base url is nil")
	}

	u := *base
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(target.Path, "/")
	u.RawQuery = ""

	fields := options.Params.Fields()
	var (
		body        io.Reader
		contentType string
	)

	switch target.Encoding {
	case EncodingNone:
		if len(fields) > 0 {
			return nil, fmt.Errorf("%s %s takes no parameters, got %d", target.Method, target.Path, len(fields))
		}
	case EncodingQuery:
		values, err := textValues(fields)
		if err != nil {
			return nil, err
		}
		u.RawQuery = values.Encode()
	case EncodingForm:
		values, err := textValues(fields)
		if err != nil {
			return nil, err
		}
		body = strings.NewReader(values.Encode())
		contentType = ContentTypeForm
	case EncodingMultipart:
		buf, ct, err := multipartBody(fields)
		if err != nil {
			return nil, err
		}
		body = buf
		contentType = ct
	default:
		return nil, fmt.Errorf("unknown encoding %s", target.Encoding)
	}

	req, err := http.NewRequestWithContext(options.Ctx, target.Method, u.String(), body)
	if err != nil {
		return nil, err
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for k, v := range options.Headers {
		req.Header.Set(k, v)
	}
	if options.Cookie != nil && options.Cookie.Value != "" {
		req.AddCookie(&http.Cookie{Name: options.Cookie.Name, Value: options.Cookie.Value})
	}

	return req, nil
}

func textValues(fields []Field) (url.Values, error) {
	values := url.Values{}
	for _, f := range fields {
		if f.File != nil {
			return nil, fmt.Errorf("file parameter %q requires multipart encoding", f.Name)
		}
		values.Add(f.Name, f.Value)
	}
	return values, nil
}

func multipartBody(fields []Field) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	for _, f := range fields {
		if f.File == nil {
			if err := w.WriteField(f.Name, f.Value); err != nil {
				return nil, "", err
			}
			continue
		}

		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			escapeQuotes(f.Name), escapeQuotes(f.File.Filename)))
		h.Set("Content-Type", ContentTypeTorrent)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(f.File.Data); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
