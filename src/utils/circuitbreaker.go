package utils

import (
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type BreakerState int

const (
	StateClosed BreakerState = iota
	StateOpen
	StateHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

// CircuitBreaker stops calling a failing dependency after threshold
// consecutive failures and lets a single trial call through once
// resetTimeout has elapsed.
type CircuitBreaker struct {
	name         string
	mu           sync.Mutex
	state        BreakerState
	failureCount int
	threshold    int
	resetTimeout time.Duration
	lastFailure  time.Time
	logger       *logrus.Entry
	now          func() time.Time
}

func NewCircuitBreaker(name string, threshold int, resetTimeout time.Duration, logger *logrus.Entry) *CircuitBreaker {
	if threshold <= 0 {
		threshold = 1
	}
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &CircuitBreaker{
		name:         name,
		threshold:    threshold,
		resetTimeout: resetTimeout,
		state:        StateClosed,
		logger:       logger.WithField("breaker", name),
		now:          time.Now,
	}
}

// State reports the current state without attempting a transition.
func (cb *CircuitBreaker) State() BreakerState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Execute runs action unless the circuit is open.
func (cb *CircuitBreaker) Execute(action func() error) error {
	cb.mu.Lock()
	switch cb.state {
	case StateOpen:
		if cb.now().Sub(cb.lastFailure) <= cb.resetTimeout {
			cb.mu.Unlock()
			return ErrCircuitOpen
		}
		cb.logger.Info("circuit transitioning to half-open")
		cb.state = StateHalfOpen
	case StateHalfOpen:
		// a trial call is already in flight
		cb.mu.Unlock()
		return ErrCircuitOpen
	}
	cb.mu.Unlock()

	err := action()

	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err != nil {
		cb.failureCount++
		cb.lastFailure = cb.now()
		if cb.state == StateHalfOpen || cb.failureCount >= cb.threshold {
			if cb.state != StateOpen {
				cb.logger.WithField("failures", cb.failureCount).Warn("circuit opened")
			}
			cb.state = StateOpen
		}
		return err
	}

	if cb.state == StateHalfOpen {
		cb.logger.Info("circuit closed")
	}
	cb.state = StateClosed
	cb.failureCount = 0
	return nil
}
