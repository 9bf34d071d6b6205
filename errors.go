package qbt

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

// ErrorCode represents a specific error kind for client-side handling
type ErrorCode string

const (
	// ErrorCodeNone indicates no error
	ErrorCodeNone ErrorCode = ""

	// ErrorCodeAuthenticationFailed indicates the login was rejected by the credential check
	ErrorCodeAuthenticationFailed ErrorCode = "AUTHENTICATION_FAILED"

	// ErrorCodeNotAuthenticated indicates an operation was attempted without a session
	ErrorCodeNotAuthenticated ErrorCode = "NOT_AUTHENTICATED"

	// ErrorCodeSessionInvalidated indicates the server rejected a previously valid session
	ErrorCodeSessionInvalidated ErrorCode = "SESSION_INVALIDATED"

	// ErrorCodeForbidden indicates the request was understood but denied (IP ban)
	ErrorCodeForbidden ErrorCode = "FORBIDDEN"

	// ErrorCodeNotFound indicates the referenced torrent, category or tag does not exist
	ErrorCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrorCodeConflict indicates the state conflicts with the requested transition
	ErrorCodeConflict ErrorCode = "CONFLICT"

	// ErrorCodeInvalidParameters indicates a structural validation failure
	ErrorCodeInvalidParameters ErrorCode = "INVALID_PARAMETERS"

	// ErrorCodeTransportFailure indicates a network-level failure
	ErrorCodeTransportFailure ErrorCode = "TRANSPORT_FAILURE"

	// ErrorCodeDecodeError indicates the response did not match the declared result shape
	ErrorCodeDecodeError ErrorCode = "DECODE_ERROR"
)

// Sentinels for errors.Is. They match any *ClientError with the same code.
var (
	ErrAuthenticationFailed = &ClientError{Code: ErrorCodeAuthenticationFailed, Message: "authentication failed"}
	ErrNotAuthenticated     = &ClientError{Code: ErrorCodeNotAuthenticated, Message: "not authenticated"}
	ErrSessionInvalidated   = &ClientError{Code: ErrorCodeSessionInvalidated, Message: "session invalidated"}
	ErrForbidden            = &ClientError{Code: ErrorCodeForbidden, Message: "forbidden"}
	ErrNotFound             = &ClientError{Code: ErrorCodeNotFound, Message: "not found"}
	ErrConflict             = &ClientError{Code: ErrorCodeConflict, Message: "conflict"}
	ErrInvalidParameters    = &ClientError{Code: ErrorCodeInvalidParameters, Message: "invalid parameters"}
	ErrTransportFailure     = &ClientError{Code: ErrorCodeTransportFailure, Message: "transport failure"}
	ErrDecodeError          = &ClientError{Code: ErrorCodeDecodeError, Message: "decode error"}
)

// maxErrorBody caps the response body kept on an error.
const maxErrorBody = 512

// ClientError represents a structured error with classification
type ClientError struct {
	Code ErrorCode
	// Op is the operation that failed, empty for errors raised outside a call.
	Op      Operation
	Message string
	// StatusCode and Body are set when the error came from an HTTP response.
	StatusCode int
	Body       string
	// Param names the identifying parameter (hash, category, tag) when known.
	Param string
	Err   error
	// Permanent indicates whether this error requires user intervention (true)
	// or may go away on its own (false). The client never retries either way.
	Permanent bool
}

func (e *ClientError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Code))
	if e.Op != "" {
		b.WriteString(" [")
		b.WriteString(string(e.Op))
		b.WriteString("]")
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (status %d)", e.StatusCode)
	}
	if e.Param != "" {
		fmt.Fprintf(&b, " (%s)", e.Param)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, " (%v)", e.Err)
	}
	return b.String()
}

func (e *ClientError) Unwrap() error {
	return e.Err
}

// Is matches sentinels by code.
func (e *ClientError) Is(target error) bool {
	var t *ClientError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// IsPermanent returns true if the error requires user intervention
func (e *ClientError) IsPermanent() bool {
	return e.Permanent
}

// NewClientError creates a new ClientError
func NewClientError(code ErrorCode, message string, err error, permanent bool) *ClientError {
	return &ClientError{
		Code:      code,
		Message:   message,
		Err:       err,
		Permanent: permanent,
	}
}

func newOpError(op Operation, code ErrorCode, message string) *ClientError {
	return &ClientError{
		Code:      code,
		Op:        op,
		Message:   message,
		Permanent: permanentCodes[code],
	}
}

var permanentCodes = map[ErrorCode]bool{
	ErrorCodeAuthenticationFailed: true,
	ErrorCodeNotAuthenticated:     true,
	ErrorCodeSessionInvalidated:   true,
	ErrorCodeForbidden:            true,
	ErrorCodeNotFound:             true,
	ErrorCodeConflict:             true,
	ErrorCodeInvalidParameters:    true,
	ErrorCodeDecodeError:          true,
}

func invalidParams(op Operation, param, message string) *ClientError {
	e := newOpError(op, ErrorCodeInvalidParameters, message)
	e.Param = param
	return e
}

func truncateBody(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxErrorBody {
		return s[:maxErrorBody] + "..."
	}
	return s
}

// ClassifyError analyzes an error and returns a structured ClientError.
// Network failures are all TRANSPORT_FAILURE; the message names the cause.
func ClassifyError(err error) *ClientError {
	if err == nil {
		return nil
	}

	// Already a ClientError
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr
	}

	if errors.Is(err, context.Canceled) {
		return transportError("Request canceled", err, false)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return transportError("Request timed out", err, false)
	}

	// DNS errors
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return transportError(fmt.Sprintf("Failed to resolve hostname: %s", dnsErr.Name), err, true)
	}

	// Network operation errors (connection refused, timeout, etc.)
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return classifyOpError(opErr, err)
	}

	// URL errors
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return transportError("Request timed out", err, false)
		}
	}

	// TLS/SSL errors
	var certErr *tls.CertificateVerificationError
	if errors.As(err, &certErr) {
		return transportError("SSL certificate verification failed", err, true)
	}

	return classifyByMessage(err.Error(), err)
}

func transportError(message string, err error, permanent bool) *ClientError {
	return NewClientError(ErrorCodeTransportFailure, message, err, permanent)
}

// classifyOpError classifies net.OpError errors
func classifyOpError(opErr *net.OpError, originalErr error) *ClientError {
	if opErr.Op == "dial" {
		msg := opErr.Error()
		if strings.Contains(msg, "connection refused") {
			return transportError("Connection refused - server may be down or port is incorrect", originalErr, false)
		}
		if strings.Contains(msg, "no route to host") || strings.Contains(msg, "network is unreachable") {
			return transportError("Network unreachable - check network connectivity", originalErr, false)
		}
	}

	if opErr.Timeout() {
		return transportError("Connection timed out", originalErr, false)
	}

	return transportError("Network operation failed", originalErr, false)
}

// classifyByMessage classifies errors based on error message patterns
func classifyByMessage(errStr string, err error) *ClientError {
	lowerErr := strings.ToLower(errStr)

	switch {
	case strings.Contains(lowerErr, "timeout"),
		strings.Contains(lowerErr, "deadline exceeded"):
		return transportError("Request timed out", err, false)

	case strings.Contains(lowerErr, "context canceled"):
		return transportError("Request canceled", err, false)

	// Checked before the generic TLS patterns, both mention tls.
	case strings.Contains(lowerErr, "malformed http response"),
		strings.Contains(lowerErr, "first record does not look like a tls handshake"),
		strings.Contains(lowerErr, "server gave http response to https client"):
		return transportError("Protocol mismatch - check http vs https in the base URL", err, true)

	case strings.Contains(lowerErr, "certificate"),
		strings.Contains(lowerErr, "x509"),
		strings.Contains(lowerErr, "tls"),
		strings.Contains(lowerErr, "ssl"):
		return transportError("SSL/TLS connection failed - check certificate configuration", err, true)

	case strings.Contains(lowerErr, "connection refused"):
		return transportError("Connection refused - server may be down", err, false)

	case strings.Contains(lowerErr, "no such host"),
		strings.Contains(lowerErr, "lookup"),
		strings.Contains(lowerErr, "dns"):
		return transportError("DNS resolution failed - check hostname", err, true)
	}

	return transportError("Network operation failed", err, false)
}

// IsPermanentError returns true if the error requires user intervention
func IsPermanentError(err error) bool {
	if err == nil {
		return false
	}
	return ClassifyError(err).Permanent
}

// GetErrorCode extracts the error code from an error
func GetErrorCode(err error) ErrorCode {
	if err == nil {
		return ErrorCodeNone
	}
	return ClassifyError(err).Code
}
