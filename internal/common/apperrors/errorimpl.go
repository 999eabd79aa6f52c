package apperrors

import (
	"errors"
	"strings"
)

type appError struct {
	msg        string
	base       error   // template error, drives errors.Is matching
	causes     []error // attached cause chain
	statusCode int
	expand     bool
	prefix     string
	suffix     string
}

// New creates a root error. Packages declare their error trees from roots
// and derive the rest.
func New(msg string) Error {
	return &appError{msg: msg}
}

func (e *appError) Error() string {
	msg := e.msg
	if e.prefix != "" {
		msg = e.prefix + ": " + msg
	}
	if e.suffix != "" {
		msg = msg + ": " + e.suffix
	}
	return msg
}

// ErrorAll renders the message followed by every cause when expansion is
// enabled, otherwise it is identical to Error.
func (e *appError) ErrorAll() string {
	if !e.expand {
		return e.Error()
	}
	var b strings.Builder
	b.WriteString(e.Error())
	for _, cause := range e.causes {
		b.WriteString("; ")
		b.WriteString(cause.Error())
	}
	return b.String()
}

func (e *appError) Unwrap() error {
	return e.base
}

func (e *appError) UnwrapAll() []error {
	return e.causes
}

// New derives a fresh error that matches the receiver under errors.Is but
// carries its own message. The status code is inherited.
func (e *appError) New(msg string) Error {
	return &appError{
		msg:        msg,
		base:       e,
		statusCode: e.statusCode,
	}
}

// Msg derives an error with a replacement message, keeping the receiver as
// both template and first cause.
func (e *appError) Msg(msg string) Error {
	return &appError{
		msg:        msg,
		base:       e,
		causes:     append([]error{e}, e.causes...),
		statusCode: e.statusCode,
	}
}

// MsgErr derives an error with a replacement message and attaches errs as
// causes after the receiver.
func (e *appError) MsgErr(msg string, errs ...error) Error {
	return &appError{
		msg:        msg,
		base:       e,
		causes:     append([]error{e}, errs...),
		statusCode: e.statusCode,
	}
}

// Err derives an error that keeps the receiver's message and attaches errs
// as causes.
func (e *appError) Err(errs ...error) Error {
	return &appError{
		msg:        e.msg,
		base:       e,
		causes:     append([]error{e}, errs...),
		statusCode: e.statusCode,
	}
}

func (e *appError) Prefix(p string) Error {
	cp := *e
	cp.prefix = p
	return &cp
}

func (e *appError) Suffix(s string) Error {
	cp := *e
	cp.suffix = s
	return &cp
}

func (e *appError) SetExpandError(flag bool) Error {
	cp := *e
	cp.expand = flag
	return &cp
}

func (e *appError) SetStatusCode(code int) Error {
	cp := *e
	cp.statusCode = code
	return &cp
}

func (e *appError) StatusCode() int {
	return e.statusCode
}

// Is matches against the template chain and every attached cause, so a
// derived error still answers true for its root.
func (e *appError) Is(target error) bool {
	if target == nil {
		return false
	}
	if errors.Is(e.base, target) {
		return true
	}
	for _, cause := range e.causes {
		if errors.Is(cause, target) {
			return true
		}
	}
	return false
}
