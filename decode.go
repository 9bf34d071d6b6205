package qbt

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/tidwall/gjson"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Shape is the declared result type of an endpoint.
type Shape int

const (
	// ShapeUnit is an empty body.
	ShapeUnit Shape = iota
	// ShapeText is a bare string such as a version.
	ShapeText
	// ShapeOkFails is the "Ok." / "Fails." marker.
	ShapeOkFails
	// ShapeNumber is a bare JSON number.
	ShapeNumber
	// ShapeObject is a JSON object.
	ShapeObject
	// ShapeArray is a JSON array.
	ShapeArray
)

func (s Shape) String() string {
	switch s {
	case ShapeUnit:
		return "unit"
	case ShapeText:
		return "text"
	case ShapeOkFails:
		return "okFails"
	case ShapeNumber:
		return "number"
	case ShapeObject:
		return "object"
	case ShapeArray:
		return "array"
	default:
		return fmt.Sprintf("shape(%d)", int(s))
	}
}

const (
	bodyOk    = "Ok."
	bodyFails = "Fails."
)

// responseClass is the first decoding step, before any body parsing.
type responseClass int

const (
	classSuccess responseClass = iota
	classAuthRequired
	classRejected
	classUnexpected
)

func (c responseClass) String() string {
	switch c {
	case classSuccess:
		return "success"
	case classAuthRequired:
		return "auth-required"
	case classRejected:
		return "rejected"
	default:
		return "unexpected"
	}
}

// classifyResponse maps a status to a class and, for anything but success,
// the error the caller sees.
func classifyResponse(ep Endpoint, status int, body []byte) (responseClass, *ClientError) {
	if status >= 200 && status < 300 {
		return classSuccess, nil
	}

	var (
		class = classRejected
		err   *ClientError
	)
	switch status {
	case http.StatusUnauthorized:
		if ep.Op == OpLogin {
			err = newOpError(ep.Op, ErrorCodeAuthenticationFailed, "login rejected by server")
			break
		}
		class = classAuthRequired
		err = newOpError(ep.Op, ErrorCodeSessionInvalidated, "session rejected by server, login again")
	case http.StatusForbidden:
		if ep.Op == OpLogin || mentionsBan(body) {
			err = newOpError(ep.Op, ErrorCodeForbidden, "request denied, the client IP may be banned")
		} else {
			class = classAuthRequired
			err = newOpError(ep.Op, ErrorCodeSessionInvalidated, "session rejected by server, login again")
		}
	case http.StatusBadRequest:
		err = newOpError(ep.Op, ErrorCodeInvalidParameters, "server rejected the parameters")
	case http.StatusNotFound:
		err = newOpError(ep.Op, ErrorCodeNotFound, "not found")
	case http.StatusConflict:
		err = newOpError(ep.Op, ErrorCodeConflict, "conflicting state")
	default:
		class = classUnexpected
		err = newOpError(ep.Op, ErrorCodeDecodeError, "unexpected status")
	}
	err.StatusCode = status
	err.Body = truncateBody(body)
	return class, err
}

func mentionsBan(body []byte) bool {
	return bytes.Contains(bytes.ToLower(body), []byte("banned"))
}

// decodeBody parses a successful body into out according to ep.Result.
// out is ignored for ShapeUnit and must be a *string for ShapeText and a
// *bool for ShapeOkFails.
func decodeBody(ep Endpoint, body []byte, out any) error {
	trimmed := bytes.TrimSpace(body)
	mismatch := func(format string, args ...any) *ClientError {
		e := newOpError(ep.Op, ErrorCodeDecodeError, fmt.Sprintf(format, args...))
		e.Body = truncateBody(body)
		return e
	}

	switch ep.Result {
	case ShapeUnit:
		if len(trimmed) != 0 {
			return mismatch("expected empty body, got %d bytes", len(trimmed))
		}
		return nil

	case ShapeText:
		if gjson.ValidBytes(trimmed) {
			if r := gjson.ParseBytes(trimmed); r.IsObject() || r.IsArray() {
				return mismatch("expected text, got JSON")
			}
		}
		s, ok := out.(*string)
		if !ok {
			return mismatch("text result needs *string, got %T", out)
		}
		*s = string(trimmed)
		return nil

	case ShapeOkFails:
		b, ok := out.(*bool)
		if !ok {
			return mismatch("marker result needs *bool, got %T", out)
		}
		switch string(trimmed) {
		case bodyOk:
			*b = true
		case bodyFails:
			*b = false
		default:
			return mismatch("expected %q or %q", bodyOk, bodyFails)
		}
		return nil

	case ShapeNumber:
		if !gjson.ValidBytes(trimmed) || gjson.ParseBytes(trimmed).Type != gjson.Number {
			return mismatch("expected a number")
		}

	case ShapeObject:
		if !gjson.ValidBytes(trimmed) || !gjson.ParseBytes(trimmed).IsObject() {
			return mismatch("expected a JSON object")
		}

	case ShapeArray:
		if !gjson.ValidBytes(trimmed) || !gjson.ParseBytes(trimmed).IsArray() {
			return mismatch("expected a JSON array")
		}

	default:
		return mismatch("unknown result shape %s", ep.Result)
	}

	if err := json.Unmarshal(trimmed, out); err != nil {
		e := mismatch("cannot decode %s: %s", ep.Result, firstLine(err.Error()))
		e.Err = err
		return e
	}
	return nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
