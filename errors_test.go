package moreremesas

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMatchesKindAndCause(t *testing.T) {
	err := &Error{Kind: KindAuth, Op: "auth", Message: "authentication failed", Err: context.DeadlineExceeded}

	assert.ErrorIs(t, err, ErrAuth)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotErrorIs(t, err, ErrTransport)
	assert.Equal(t, KindAuth, KindOf(err))
}

func TestErrorMatchesNestedKinds(t *testing.T) {
	cause := &Error{Kind: KindTransport, Status: 503, Message: "Service Unavailable"}
	err := fmt.Errorf("calc: %w", &Error{Kind: KindAuth, Op: "auth", Err: cause})

	assert.ErrorIs(t, err, ErrAuth)
	assert.ErrorIs(t, err, ErrTransport)
	assert.Equal(t, KindAuth, KindOf(err))

	var e *Error
	assert.True(t, errors.As(err, &e))
	assert.Equal(t, "auth", e.Op)
}

func TestErrorString(t *testing.T) {
	err := &Error{Kind: KindFault, Op: "order_import", Code: "1005", Status: 200, Message: "invalid branch"}
	assert.Equal(t, "order_import: fault [1005] (HTTP 200): invalid branch", err.Error())

	err = &Error{Kind: KindTransport, Message: "request failed", Err: errors.New("connection refused")}
	assert.Equal(t, "transport: request failed: connection refused", err.Error())
}

func TestKindOfForeignError(t *testing.T) {
	assert.Equal(t, Kind(0), KindOf(errors.New("boom")))
	assert.Equal(t, Kind(0), KindOf(nil))
	assert.Equal(t, "unknown", Kind(0).String())
}

func TestValidationError(t *testing.T) {
	err := validationError("order_calc", "CountryTo", "Amount")

	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, []string{"CountryTo", "Amount"}, err.Fields)
	assert.Contains(t, err.Error(), "CountryTo, Amount")
}

func TestWithOpKeepsExistingOp(t *testing.T) {
	inner := &Error{Kind: KindAuth, Op: "auth"}
	assert.Equal(t, "auth", opOf(withOp(inner, "rates")))

	bare := &Error{Kind: KindServer}
	assert.Equal(t, "rates", opOf(withOp(bare, "rates")))
}

// opOf returns the Op of the outermost *Error.
func opOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Op
	}
	return ""
}
