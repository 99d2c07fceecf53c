// Package errs carries typed errors through the content store so that the
// HTTP layer can decide on a status code and a client-facing message without
// knowing where the failure happened.
package errs

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// Kind classifies an error.
type Kind uint8

const (
	Other Kind = iota
	InvalidRequest
	Unauthenticated
	TooLarge
	Internal
	IO
	Database
)

func (k Kind) String() string {
	switch k {
	case InvalidRequest:
		return "invalid_request"
	case Unauthenticated:
		return "unauthenticated"
	case TooLarge:
		return "too_large"
	case Internal:
		return "internal"
	case IO:
		return "io"
	case Database:
		return "database"
	default:
		return "other"
	}
}

// Op is the operation that produced the error, e.g. "contentService.AddPresentation".
type Op string

// Parameter names the request parameter that was at fault.
type Parameter string

// Msg is the message returned to the client.
type Msg string

type Error struct {
	Kind  Kind
	Op    Op
	Param Parameter
	Msg   Msg
	Err   error
}

func (e *Error) Error() string {
	var b strings.Builder

	if e.Op != "" {
		b.WriteString(string(e.Op))
	}

	if e.Param != "" {
		if b.Len() > 0 {
			b.WriteString(": ")
		}
		b.WriteString("param ")
		b.WriteString(string(e.Param))
	}

	if e.Err != nil {
		if b.Len() > 0 {
			b.WriteString(": ")
		}
		b.WriteString(e.Err.Error())
	}

	if b.Len() == 0 {
		return e.Kind.String()
	}

	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// E builds an *Error from its arguments. Arguments are matched by type:
// Kind, Op, Parameter, Msg, string (treated as an error text) and error.
// When no Kind is given the kind of a wrapped *Error is inherited.
func E(args ...interface{}) error {
	if len(args) == 0 {
		return &Error{Kind: Other, Err: errors.New("errs.E called without arguments")}
	}

	e := &Error{}

	for _, arg := range args {
		switch a := arg.(type) {
		case Kind:
			e.Kind = a
		case Op:
			e.Op = a
		case Parameter:
			e.Param = a
		case Msg:
			e.Msg = a
		case string:
			e.Err = errors.New(a)
		case *Error:
			cp := *a
			e.Err = &cp
		case error:
			e.Err = a
		case nil:
		default:
			e.Err = fmt.Errorf("errs.E: unknown argument type %T, value %v", a, a)
		}
	}

	var inner *Error
	if e.Kind == Other && errors.As(e.Err, &inner) {
		e.Kind = inner.Kind
	}

	return e
}

// Str returns an error with the given text, for use as an argument to E.
func Str(text string) error {
	return errors.New(text)
}

// KindIs reports whether err is an *Error of the given kind.
func KindIs(kind Kind, err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}

	return false
}

// OpStack returns the chain of operations recorded in err, outermost first.
func OpStack(err error) []string {
	var ops []string

	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			break
		}

		if e.Op != "" {
			ops = append(ops, string(e.Op))
		}

		err = e.Err
	}

	return ops
}

// clientMessage returns the outermost Msg in the chain, falling back to the
// error text for invalid requests.
func clientMessage(err error) string {
	for cur := err; cur != nil; {
		var e *Error
		if !errors.As(cur, &e) {
			break
		}

		if e.Msg != "" {
			return string(e.Msg)
		}

		cur = e.Err
	}

	switch {
	case KindIs(InvalidRequest, err):
		return rootCause(err).Error()
	case KindIs(Unauthenticated, err):
		return "unauthorized"
	case KindIs(TooLarge, err):
		return "request body too large"
	}

	return "internal server error"
}

func rootCause(err error) error {
	for {
		var e *Error
		if !errors.As(err, &e) || e.Err == nil {
			return err
		}

		err = e.Err
	}
}

// HTTPStatus maps the error kind to an HTTP status code.
func HTTPStatus(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}

	switch e.Kind {
	case InvalidRequest:
		return http.StatusBadRequest
	case Unauthenticated:
		return http.StatusUnauthorized
	case TooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// HTTPErrorResponse writes {"error": "<message>"} with the status derived
// from err. Server-side failures are logged with their op stack.
func HTTPErrorResponse(w http.ResponseWriter, logger zerolog.Logger, err error) {
	if err == nil {
		logger.Error().Msg("HTTPErrorResponse called with nil error")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	status := HTTPStatus(err)
	msg := clientMessage(err)

	event := logger.Info()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}

	event.Err(err).
		Int("status", status).
		Strs("stack", OpStack(err)).
		Msg(msg)

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(errorResponse{Error: msg})
}
