package moreremesas

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// session is the result of one successful authentication.
type session struct {
	token string
	// due is the provider-declared expiry; zero when the provider sent none
	// we could parse, in which case the token is kept until rejected.
	due time.Time
	doc *Node
	// seq orders authentications by start time.
	seq uint64
}

type loginFunc func(ctx context.Context) (*session, error)

// tokenManager owns the access token. Refreshes are single-flight: callers
// that find the token missing or about to expire share one auth call.
type tokenManager struct {
	mu      sync.RWMutex
	current *session
	started uint64

	margin  time.Duration
	now     func() time.Time
	login   loginFunc
	group   singleflight.Group
	metrics *metrics
	logger  *slog.Logger
}

func newTokenManager(login loginFunc, margin time.Duration, m *metrics, logger *slog.Logger) *tokenManager {
	return &tokenManager{
		margin:  margin,
		now:     time.Now,
		login:   login,
		metrics: m,
		logger:  logger,
	}
}

// valid returns the held session when its remaining lifetime is at least the margin.
func (m *tokenManager) valid() *session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := m.current
	if s == nil || s.token == "" {
		return nil
	}
	if !s.due.IsZero() && s.due.Sub(m.now()) < m.margin {
		return nil
	}
	return s
}

// ensure returns a usable token, authenticating first when needed.
func (m *tokenManager) ensure(ctx context.Context) (string, error) {
	if s := m.valid(); s != nil {
		return s.token, nil
	}
	s, err := m.refresh(ctx, false)
	if err != nil {
		return "", err
	}
	return s.token, nil
}

// refresh authenticates through a shared flight. Unless forced, a flight
// started after another one completed returns that session without a new
// auth call. Forced refreshes never join an unforced flight, so they always
// get a token issued after the call began.
func (m *tokenManager) refresh(ctx context.Context, force bool) (*session, error) {
	key := "token"
	if force {
		key = "token-forced"
	}
	ch := m.group.DoChan(key, func() (any, error) {
		if !force {
			if s := m.valid(); s != nil {
				return s, nil
			}
		}
		// The flight is shared, so one caller's cancellation must not fail the others.
		return m.authenticate(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return nil, &Error{Kind: KindAuth, Message: "waiting for token refresh", Err: ctx.Err()}
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*session), nil
	}
}

func (m *tokenManager) authenticate(ctx context.Context) (*session, error) {
	m.mu.Lock()
	m.started++
	seq := m.started
	m.mu.Unlock()

	s, err := m.login(ctx)
	m.metrics.recordRefresh(err)

	m.mu.Lock()
	defer m.mu.Unlock()

	// A flight started later already settled the held token.
	superseded := m.current != nil && m.current.seq > seq

	if err != nil {
		if !superseded {
			m.current = nil
		}
		m.logger.Warn("authentication failed", "error", err)
		return nil, &Error{Kind: KindAuth, Op: "auth", Message: "authentication failed", Err: err}
	}

	s.seq = seq
	if !superseded {
		m.current = s
	}
	m.logger.Info("authenticated", "token", redact(s.token), "due", s.due)
	return s, nil
}

// invalidate drops token if it is still the held one. A stale rejection
// never discards a newer token.
func (m *tokenManager) invalidate(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != nil && m.current.token == token {
		m.current = nil
	}
}

var dueDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	dateLayout,
}

// parseDueDate reads the provider DueDate. Timestamps without an offset are UTC.
func parseDueDate(v string) (time.Time, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, false
	}
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
