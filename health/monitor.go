// Package health tracks whether the backend is reachable.
package health

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	DefaultInterval = 60 * time.Second
	DefaultTimeout  = 5 * time.Second
)

type Status int

const (
	StatusUnknown Status = iota
	StatusAvailable
	StatusUnavailable
)

func (s Status) String() string {
	switch s {
	case StatusAvailable:
		return "available"
	case StatusUnavailable:
		return "unavailable"
	}
	return "unknown"
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// State is the result of the most recent check.
type State struct {
	Status    Status    `json:"status"`
	CheckedAt time.Time `json:"checkedAt,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// Pinger performs a single availability check.
type Pinger interface {
	Health(ctx context.Context) error
}

// Listener is told about a change between available and unavailable. The
// first check, leaving the unknown state, is not reported.
type Listener func(previous, current State)

type Monitor struct {
	pinger   Pinger
	interval time.Duration
	timeout  time.Duration
	nowFunc  func() time.Time
	log      zerolog.Logger

	mu        sync.RWMutex
	state     State
	listeners map[int]Listener
	nextID    int
}

type Option func(*Monitor)

func WithInterval(d time.Duration) Option {
	return func(m *Monitor) {
		m.interval = d
	}
}

func WithTimeout(d time.Duration) Option {
	return func(m *Monitor) {
		m.timeout = d
	}
}

func WithLogger(log zerolog.Logger) Option {
	return func(m *Monitor) {
		m.log = log
	}
}

// WithNowTime sets the clock used to stamp checks (primarily for testing)
func WithNowTime(now func() time.Time) Option {
	return func(m *Monitor) {
		m.nowFunc = now
	}
}

func NewMonitor(pinger Pinger, options ...Option) (*Monitor, error) {
	if pinger == nil {
		return nil, errors.New("[NewMonitor] pinger is required")
	}
	m := &Monitor{
		pinger:    pinger,
		interval:  DefaultInterval,
		timeout:   DefaultTimeout,
		nowFunc:   time.Now,
		log:       zerolog.Nop(),
		listeners: make(map[int]Listener),
	}
	for _, opt := range options {
		opt(m)
	}
	if m.interval <= 0 {
		return nil, errors.New("[NewMonitor] interval must be positive")
	}
	if m.timeout <= 0 {
		return nil, errors.New("[NewMonitor] timeout must be positive")
	}
	return m, nil
}

func (m *Monitor) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Subscribe registers l and returns a func removing it.
func (m *Monitor) Subscribe(l Listener) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	m.listeners[id] = l
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.listeners, id)
	}
}

// Check pings the backend once, bounded by the monitor's timeout.
func (m *Monitor) Check(ctx context.Context) State {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	current := State{Status: StatusAvailable}
	if err := m.pinger.Health(ctx); err != nil {
		current = State{Status: StatusUnavailable, Error: err.Error()}
	}
	current.CheckedAt = m.nowFunc()

	m.mu.Lock()
	previous := m.state
	m.state = current
	var notify []Listener
	if previous.Status != StatusUnknown && previous.Status != current.Status {
		for _, l := range m.listeners {
			notify = append(notify, l)
		}
	}
	m.mu.Unlock()

	switch {
	case len(notify) == 0:
	case current.Status == StatusAvailable:
		m.log.Info().Msg("backend connected")
	default:
		m.log.Warn().Str("error", current.Error).Msg("backend unavailable")
	}
	for _, l := range notify {
		l(previous, current)
	}
	return current
}

// Run checks immediately and then on every interval until ctx is done.
func (m *Monitor) Run(ctx context.Context) {
	m.Check(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Check(ctx)
		}
	}
}
