package moreremesas

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptrace"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// RequestIDHeader carries the per-attempt trace identifier.
const RequestIDHeader = "X-Request-Id"

// transport posts envelopes to the provider and retries transient failures.
type transport struct {
	client      *http.Client
	baseURL     string
	userAgent   string
	maxAttempts int
	backoff     time.Duration
	maxBackoff  time.Duration
	debug       bool
	logger      *slog.Logger
	metrics     *metrics

	// sleep waits between attempts; replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// attemptResult is the outcome of a single HTTP exchange.
type attemptResult struct {
	body       []byte
	status     int
	err        error
	transient  bool
	sent       bool
	retryAfter time.Duration
}

// retriable reports whether the attempt may be repeated for op. Mutating
// operations are repeated only when the provider cannot have acted on the
// request: it was never written, or it was refused with 429.
func (r attemptResult) retriable(op operation) bool {
	if !r.transient {
		return false
	}
	if !op.mutating {
		return true
	}
	return !r.sent || r.status == http.StatusTooManyRequests
}

func (t *transport) post(ctx context.Context, op operation, payload []byte) ([]byte, error) {
	var last attemptResult

	for attempt := 1; attempt <= t.maxAttempts; attempt++ {
		if attempt > 1 {
			wait := t.backoffFor(attempt-1, last.retryAfter)
			t.logger.Warn("retrying request",
				"operation", op.name,
				"attempt", attempt,
				"wait", wait,
				"error", last.err,
			)
			if err := t.sleep(ctx, wait); err != nil {
				return nil, &Error{Kind: KindTransport, Status: last.status, Message: "retry aborted", Err: err}
			}
		}

		last = t.attempt(ctx, op, payload, attempt)
		if last.err == nil {
			return last.body, nil
		}
		if !last.retriable(op) {
			return nil, last.err
		}
	}

	return nil, &Error{
		Kind:    KindTransport,
		Status:  last.status,
		Message: fmt.Sprintf("giving up after %d attempts", t.maxAttempts),
		Err:     last.err,
	}
}

func (t *transport) attempt(ctx context.Context, op operation, payload []byte, n int) attemptResult {
	requestID := uuid.NewString()
	log := t.logger.With("operation", op.name, "request_id", requestID, "attempt", n)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+op.path, bytes.NewReader(payload))
	if err != nil {
		return attemptResult{err: &Error{Kind: KindTransport, Message: "failed to create request", Err: err}}
	}

	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("Accept", "text/xml")
	req.Header.Set("SOAPAction", op.soapAction())
	req.Header.Set(RequestIDHeader, requestID)
	if t.userAgent != "" {
		req.Header.Set("User-Agent", t.userAgent)
	}

	var wrote atomic.Bool
	req = req.WithContext(httptrace.WithClientTrace(req.Context(), &httptrace.ClientTrace{
		WroteRequest: func(httptrace.WroteRequestInfo) { wrote.Store(true) },
	}))

	if t.debug {
		log.Debug("request", "body", scrubXML(string(payload)))
	}

	start := time.Now()
	resp, err := t.client.Do(req)
	if err != nil {
		t.metrics.recordAttempt(op.name, 0, time.Since(start))
		log.Debug("request failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
		return attemptResult{
			err:       &Error{Kind: KindTransport, Message: "request failed", Err: err},
			transient: ctx.Err() == nil,
			sent:      wrote.Load(),
		}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	elapsed := time.Since(start)
	t.metrics.recordAttempt(op.name, resp.StatusCode, elapsed)
	log.Debug("response", "status", resp.StatusCode, "duration_ms", elapsed.Milliseconds())

	if err != nil {
		return attemptResult{
			status:    resp.StatusCode,
			err:       &Error{Kind: KindTransport, Status: resp.StatusCode, Message: "failed to read response", Err: err},
			transient: ctx.Err() == nil,
			sent:      true,
		}
	}

	if t.debug {
		log.Debug("response body", "body", scrubXML(string(data)))
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return attemptResult{body: data, status: resp.StatusCode}
	}

	// A fault is an application answer whatever the status: never retried.
	if fault := detectFault(data); fault != nil {
		fault.Status = resp.StatusCode
		return attemptResult{status: resp.StatusCode, err: fault, sent: true}
	}

	result := attemptResult{status: resp.StatusCode, sent: true}
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		result.err = &Error{Kind: KindAuth, Status: resp.StatusCode, Message: "access token rejected"}
	case resp.StatusCode == http.StatusTooManyRequests:
		result.err = &Error{Kind: KindTransport, Status: resp.StatusCode, Message: "rate limited"}
		result.transient = true
		result.retryAfter = parseRetryAfter(resp.Header.Get("Retry-After"))
	case resp.StatusCode >= 500:
		result.err = &Error{Kind: KindTransport, Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		result.transient = true
	default:
		result.err = &Error{Kind: KindTransport, Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}
	return result
}

// backoffFor returns the wait before retry number n (1-based): the base
// backoff doubled per retry, or the server's Retry-After, capped at maxBackoff.
func (t *transport) backoffFor(n int, retryAfter time.Duration) time.Duration {
	wait := t.backoff
	for i := 1; i < n; i++ {
		wait *= 2
		if wait >= t.maxBackoff {
			break
		}
	}
	if retryAfter > wait {
		wait = retryAfter
	}
	if t.maxBackoff > 0 && wait > t.maxBackoff {
		wait = t.maxBackoff
	}
	return wait
}

func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
