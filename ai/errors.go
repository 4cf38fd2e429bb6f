package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a provider failure.
type ErrorKind string

const (
	KindAuth        ErrorKind = "auth"
	KindRateLimit   ErrorKind = "rate_limit"
	KindTimeout     ErrorKind = "timeout"
	KindMalformed   ErrorKind = "malformed_response"
	KindUnavailable ErrorKind = "unavailable"
)

// Error is a classified LLM provider failure.
type Error struct {
	Provider string
	Kind     ErrorKind
	Status   int // HTTP status when applicable, 0 otherwise
	Message  string
	Err      error
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Provider)
	sb.WriteString(": ")
	sb.WriteString(string(e.Kind))
	if e.Status != 0 {
		fmt.Fprintf(&sb, " (%d)", e.Status)
	}
	if e.Message != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Message)
	}
	return sb.String()
}

func (e *Error) Unwrap() error { return e.Err }

// fromStatus maps a non-2xx HTTP response to a classified error.
func fromStatus(provider string, status int, body []byte) *Error {
	kind := KindUnavailable
	switch {
	case status == 401 || status == 403:
		kind = KindAuth
	case status == 429:
		kind = KindRateLimit
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 400 {
		msg = msg[:400] + "..."
	}
	return &Error{Provider: provider, Kind: kind, Status: status, Message: msg}
}

// wrapTransport classifies request/transport failures.
func wrapTransport(provider string, err error) *Error {
	kind := KindUnavailable
	if errors.Is(err, context.DeadlineExceeded) {
		kind = KindTimeout
	}
	return &Error{Provider: provider, Kind: kind, Message: err.Error(), Err: err}
}

// malformed reports a response that came back 200 but could not be used.
func malformed(provider, message string) *Error {
	return &Error{Provider: provider, Kind: KindMalformed, Message: message}
}
