package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/leadchat/internal/logging"
	"github.com/aretw0/leadchat/internal/runtime"
	"github.com/aretw0/leadchat/pkg/domain"
	"github.com/aretw0/leadchat/pkg/ports"
	"github.com/google/uuid"
)

// DefaultLockTTL bounds how long a distributed lock survives a crashed holder.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Observer is notified with the changes each successful operation made.
type Observer func(ctx context.Context, diff *domain.ConversationDiff)

// Manager orchestrates session access, ensuring safe concurrent operations.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	graph     *domain.Graph
	store     ports.ConversationStore
	deliverer ports.LeadDeliverer

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker     ports.DistributedLocker // Optional distributed locker
	lockTTL    time.Duration
	logger     *slog.Logger
	engineOpts []runtime.Option
	observers  []Observer
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager and its engines.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithEngineOptions are applied to every engine the Manager builds.
func WithEngineOptions(opts ...runtime.Option) Option {
	return func(m *Manager) {
		m.engineOpts = append(m.engineOpts, opts...)
	}
}

// WithObserver registers a change observer (e.g. an SSE broadcaster).
func WithObserver(o Observer) Option {
	return func(m *Manager) {
		m.observers = append(m.observers, o)
	}
}

// NewManager creates a Manager for one graph.
func NewManager(graph *domain.Graph, store ports.ConversationStore, deliverer ports.LeadDeliverer, opts ...Option) *Manager {
	m := &Manager{
		graph:     graph,
		store:     store,
		deliverer: deliverer,
		locks:     make(map[string]*lockEntry),
		lockTTL:   DefaultLockTTL,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Graph returns the graph conversations are driven through.
func (m *Manager) Graph() *domain.Graph { return m.graph }

// Store returns the underlying conversation store.
func (m *Manager) Store() ports.ConversationStore { return m.store }

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// WithLock executes a function while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			// Released with a fresh context so a canceled request still unlocks.
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

func (m *Manager) engine(sessionID string) *runtime.Engine {
	opts := make([]runtime.Option, 0, len(m.engineOpts)+2)
	opts = append(opts, runtime.WithLogger(m.logger))
	opts = append(opts, m.engineOpts...)
	opts = append(opts, runtime.WithSessionID(sessionID))
	return runtime.NewEngine(m.graph, m.deliverer, opts...)
}

// mutate loads (or, with create, initialises) the session, applies fn and
// saves the result when fn succeeds.
func (m *Manager) mutate(ctx context.Context, sessionID string, create bool, fn func(*runtime.Engine) error) (*runtime.Engine, error) {
	var eng *runtime.Engine
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		eng = m.engine(sessionID)

		old, err := m.store.Load(ctx, sessionID)
		switch {
		case err == nil:
			if err := eng.Restore(old); err != nil {
				return fmt.Errorf("session %s: %w", sessionID, err)
			}
		case errors.Is(err, domain.ErrSessionNotFound) && create:
			old = nil
		default:
			return err
		}

		if err := fn(eng); err != nil {
			return err
		}

		updated := eng.Snapshot()
		if err := m.store.Save(ctx, sessionID, updated); err != nil {
			return fmt.Errorf("failed to save session %s: %w", sessionID, err)
		}
		m.notify(ctx, old, updated)
		return nil
	})
	return eng, err
}

func (m *Manager) notify(ctx context.Context, old, updated *domain.Conversation) {
	if len(m.observers) == 0 {
		return
	}
	diff := domain.Diff(old, updated)
	if diff == nil {
		return
	}
	for _, o := range m.observers {
		o(ctx, diff)
	}
}

// Start begins a conversation. An empty sessionID gets a generated one.
// Starting an existing session restarts it.
func (m *Manager) Start(ctx context.Context, sessionID string) (domain.View, error) {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	eng, err := m.mutate(ctx, sessionID, true, func(e *runtime.Engine) error {
		e.Start(ctx)
		return nil
	})
	if err != nil {
		return domain.View{}, err
	}
	return eng.View(), nil
}

// Get returns the current view of a session.
func (m *Manager) Get(ctx context.Context, sessionID string) (domain.View, error) {
	var view domain.View
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		conv, err := m.store.Load(ctx, sessionID)
		if err != nil {
			return err
		}
		eng := m.engine(sessionID)
		if err := eng.Restore(conv); err != nil {
			return err
		}
		view = eng.View()
		return nil
	})
	return view, err
}

// Choose applies the option with the given value.
func (m *Manager) Choose(ctx context.Context, sessionID, value string) (domain.Turn, domain.View, error) {
	return m.choose(ctx, sessionID, func(e *runtime.Engine) (domain.Turn, error) {
		return e.ChooseValue(ctx, value)
	})
}

// ChooseIndex applies the option at position i of the current node.
func (m *Manager) ChooseIndex(ctx context.Context, sessionID string, i int) (domain.Turn, domain.View, error) {
	return m.choose(ctx, sessionID, func(e *runtime.Engine) (domain.Turn, error) {
		return e.ChooseIndex(ctx, i)
	})
}

func (m *Manager) choose(ctx context.Context, sessionID string, fn func(*runtime.Engine) (domain.Turn, error)) (domain.Turn, domain.View, error) {
	var turn domain.Turn
	eng, err := m.mutate(ctx, sessionID, false, func(e *runtime.Engine) error {
		var err error
		turn, err = fn(e)
		return err
	})
	if err != nil {
		return domain.Turn{}, domain.View{}, err
	}
	return turn, eng.View(), nil
}

// Selection is the outcome of Select.
type Selection struct {
	View domain.View
	// Turn is nil when no transition happened.
	Turn *domain.Turn
	// Navigation is set when the option is a host navigation action.
	Navigation *domain.NavigationAction
}

// Select resolves an option of the current node by zero-based index (when
// index >= 0) or by value, answers navigation actions without moving, and
// applies every other option.
func (m *Manager) Select(ctx context.Context, sessionID, value string, index int) (Selection, error) {
	var sel Selection
	eng, err := m.mutate(ctx, sessionID, false, func(e *runtime.Engine) error {
		view := e.View()
		switch view.Status {
		case domain.StatusSubmitting:
			return domain.ErrSubmissionInFlight
		case domain.StatusIdle, domain.StatusAwaitingLeadInput:
			return fmt.Errorf("choose while %s: %w", view.Status, domain.ErrInvalidState)
		}

		idx := index
		if idx < 0 {
			for i, opt := range view.Options {
				if opt.Value == value {
					idx = i
					break
				}
			}
		}
		if idx < 0 || idx >= len(view.Options) {
			return fmt.Errorf("node %q: %w", view.NodeID, domain.ErrUnknownOption)
		}

		opt := view.Options[idx]
		if nav, ok := e.IsNavigation(opt); ok {
			sel.Navigation = &nav
			if opt.NextID == "" {
				return nil
			}
		}
		turn, err := e.ChooseIndex(ctx, idx)
		if err != nil {
			return err
		}
		sel.Turn = &turn
		return nil
	})
	if err != nil {
		return Selection{}, err
	}
	sel.View = eng.View()
	return sel, nil
}

// SubmitLead validates and delivers a lead. The session lock is held only
// while preparing and resolving, never during delivery.
func (m *Manager) SubmitLead(ctx context.Context, sessionID string, fields domain.LeadFields) (domain.LeadResult, domain.View, error) {
	var (
		pending *domain.PendingLead
		res     domain.LeadResult
	)
	eng, err := m.mutate(ctx, sessionID, false, func(e *runtime.Engine) error {
		var err error
		pending, res, err = e.PrepareLead(fields)
		return err
	})
	if err != nil {
		return domain.LeadResult{}, domain.View{}, err
	}
	if pending == nil {
		return res, eng.View(), nil
	}

	deliveryErr := eng.Deliver(ctx, pending)

	// The request may have been canceled during delivery; the outcome still
	// has to be recorded or the session would stay in submitting.
	eng, err = m.mutate(context.WithoutCancel(ctx), sessionID, false, func(e *runtime.Engine) error {
		res = e.ResolveLead(ctx, pending, deliveryErr)
		return nil
	})
	if err != nil {
		return domain.LeadResult{}, domain.View{}, err
	}
	return res, eng.View(), nil
}

// Reset restarts the session, discarding any in-flight submission result.
func (m *Manager) Reset(ctx context.Context, sessionID string) (domain.View, error) {
	eng, err := m.mutate(ctx, sessionID, false, func(e *runtime.Engine) error {
		e.Reset(ctx)
		return nil
	})
	if err != nil {
		return domain.View{}, err
	}
	return eng.View(), nil
}

// Snapshot returns the stored conversation.
func (m *Manager) Snapshot(ctx context.Context, sessionID string) (*domain.Conversation, error) {
	return m.store.Load(ctx, sessionID)
}

// Delete removes the session from the store.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Delete(ctx, sessionID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}
