// Package engine runs the maintenance operations: consolidating history,
// generating yearly plans and reconciling them with what was done.
package engine

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"fleet-maintenance-backend/config"
	"fleet-maintenance-backend/internal/catalog"
	"fleet-maintenance-backend/internal/followup"
	"fleet-maintenance-backend/internal/store"
)

var (
	// ErrInvalidYear rejects years outside the plannable range.
	ErrInvalidYear = errors.New("invalid year")
	// ErrUnknownOperation rejects operation codes missing from the catalog.
	ErrUnknownOperation = errors.New("unknown operation")
	// ErrInvalidRule rejects malformed rule edits.
	ErrInvalidRule = errors.New("invalid rule")
)

const minYear = 1900

// AlertPusher delivers the alerts of one equipment to its subscribers.
type AlertPusher interface {
	Dispatch(matricule string, alerts []followup.Alert)
}

// Option customizes a Service.
type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithAlertPusher enables DispatchAlerts.
func WithAlertPusher(p AlertPusher) Option {
	return func(s *Service) { s.pusher = p }
}

// OnReferenceChange registers a hook run after reference data changed.
func OnReferenceChange(fn func()) Option {
	return func(s *Service) { s.onChange = append(s.onChange, fn) }
}

// Service holds shared dependencies of the engine operations.
type Service struct {
	store   store.Store
	matcher *catalog.Matcher
	engine  config.EngineConfig
	imports config.ImportConfig

	now      func() time.Time
	pusher   AlertPusher
	onChange []func()

	// planMu is held for reading by every plan write of a single year and
	// for writing by ClearPlan of every year.
	planMu  sync.RWMutex
	scopeMu sync.Mutex
	scopes  map[string]*sync.Mutex
}

// NewService creates the engine.
func NewService(s store.Store, matcher *catalog.Matcher, cfg *config.Config, opts ...Option) *Service {
	svc := &Service{
		store:   s,
		matcher: matcher,
		engine:  cfg.Engine,
		imports: cfg.Import,
		now:     time.Now,
		scopes:  make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// lock serializes writers of one scope and returns the unlock function.
func (s *Service) lock(scope string) func() {
	s.scopeMu.Lock()
	mu, ok := s.scopes[scope]
	if !ok {
		mu = &sync.Mutex{}
		s.scopes[scope] = mu
	}
	s.scopeMu.Unlock()

	mu.Lock()
	return mu.Unlock
}

func (s *Service) validateYear(year int) error {
	last := s.now().Year() + s.engine.MaxPlanningYearUp
	if year < minYear || year > last {
		return fmt.Errorf("%w: %d (expected %d..%d)", ErrInvalidYear, year, minYear, last)
	}
	return nil
}

func (s *Service) referenceChanged() {
	for _, fn := range s.onChange {
		fn()
	}
}

// Operations returns the maintenance catalog.
func (s *Service) Operations() []catalog.OperationType {
	return catalog.All()
}
