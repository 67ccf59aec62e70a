package moreremesas

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies every error returned by the client.
type Kind int

const (
	// KindTransport is a network or HTTP level failure, possibly after retries.
	KindTransport Kind = iota + 1
	// KindFault is a structured application error returned by the provider.
	KindFault
	// KindAuth is a credential rejection or a token refresh failure.
	KindAuth
	// KindValidation is a local pre-flight failure. It never reaches the network.
	KindValidation
	// KindServer is a response that could not be understood.
	KindServer
)

var (
	// ErrTransport matches every KindTransport error with errors.Is.
	ErrTransport = errors.New("transport error")
	// ErrFault matches every KindFault error with errors.Is.
	ErrFault = errors.New("provider fault")
	// ErrAuth matches every KindAuth error with errors.Is.
	ErrAuth = errors.New("authentication error")
	// ErrValidation matches every KindValidation error with errors.Is.
	ErrValidation = errors.New("validation error")
	// ErrServer matches every KindServer error with errors.Is.
	ErrServer = errors.New("unexpected server response")
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindFault:
		return "fault"
	case KindAuth:
		return "auth"
	case KindValidation:
		return "validation"
	case KindServer:
		return "server"
	default:
		return "unknown"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindTransport:
		return ErrTransport
	case KindFault:
		return ErrFault
	case KindAuth:
		return ErrAuth
	case KindValidation:
		return ErrValidation
	case KindServer:
		return ErrServer
	default:
		return nil
	}
}

// Error is the single concrete error type returned by the client.
type Error struct {
	Kind Kind
	// Op is the facade operation that failed, e.g. "order_calc".
	Op string
	// Code is the provider supplied code (faultcode or ResponseCode), if any.
	Code string
	// Status is the HTTP status of the last response, 0 when none was received.
	Status int
	// Message is human readable and never contains credentials.
	Message string
	// Fields lists the offending request fields of a KindValidation error.
	Fields []string
	// Response is the parsed provider Response of a fault raised by a failing
	// ResponseCode. It keeps every message code the provider sent.
	Response *Node
	// Err is the underlying cause.
	Err error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.String())
	if e.Code != "" {
		fmt.Fprintf(&b, " [%s]", e.Code)
	}
	if e.Status != 0 {
		fmt.Fprintf(&b, " (HTTP %d)", e.Status)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes both the kind sentinel and the cause, so errors.Is(err, ErrAuth)
// and errors.Is(err, ErrTransport) both hold for an auth failure caused by the network.
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if s := e.Kind.sentinel(); s != nil {
		errs = append(errs, s)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// KindOf returns the kind of the outermost *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func validationError(op string, fields ...string) *Error {
	return &Error{
		Kind:    KindValidation,
		Op:      op,
		Message: "missing or invalid fields: " + strings.Join(fields, ", "),
		Fields:  fields,
	}
}

func withOp(err error, op string) error {
	var e *Error
	if errors.As(err, &e) && e.Op == "" {
		e.Op = op
	}
	return err
}
