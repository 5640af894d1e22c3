package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/leadchat/internal/logging"
	"github.com/aretw0/leadchat/pkg/domain"
	"github.com/aretw0/leadchat/pkg/ports"
	"github.com/google/uuid"
)

// Engine drives a single conversation through an immutable graph.
// All methods are safe for concurrent use; calls are serialised per instance.
type Engine struct {
	graph     *domain.Graph
	deliverer ports.LeadDeliverer

	logger         *slog.Logger
	hooks          domain.LifecycleHooks
	now            func() time.Time
	newID          func() string
	timeout        time.Duration
	sessionID      string
	failureMessage string

	mu     sync.Mutex
	conv   *domain.Conversation
	queued []func()
}

// NewEngine creates an idle engine. Call Start (or Restore) before anything else.
func NewEngine(graph *domain.Graph, deliverer ports.LeadDeliverer, opts ...Option) *Engine {
	e := &Engine{
		graph:          graph,
		deliverer:      deliverer,
		logger:         logging.NewNop(),
		now:            time.Now,
		newID:          uuid.NewString,
		timeout:        DefaultDeliveryTimeout,
		failureMessage: DefaultFailureMessage,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.sessionID == "" {
		e.sessionID = e.newID()
	}
	e.logger = e.logger.With("session_id", e.sessionID)
	e.conv = domain.NewConversation(e.sessionID, e.now())
	return e
}

// SessionID returns the ID of the conversation driven by this engine.
func (e *Engine) SessionID() string { return e.sessionID }

// Graph returns the graph the engine walks.
func (e *Engine) Graph() *domain.Graph { return e.graph }

// Start clears the transcript and data and shows the entry node.
func (e *Engine) Start(ctx context.Context) domain.View {
	e.mu.Lock()
	defer e.unlock()

	e.start(ctx)
	return e.view()
}

// Reset abandons the current conversation, including any in-flight submission
// (its result will be discarded), and starts again.
func (e *Engine) Reset(ctx context.Context) domain.View {
	e.mu.Lock()
	defer e.unlock()

	e.logger.Debug("conversation reset", "status", e.conv.Status)
	if e.hooks.OnReset != nil {
		ev := &domain.EventBase{Timestamp: e.now(), Type: domain.EventReset, SessionID: e.sessionID}
		e.queue(func() { e.hooks.OnReset(ctx, ev) })
	}
	e.start(ctx)
	return e.view()
}

func (e *Engine) start(ctx context.Context) {
	entry, _ := e.graph.Node(e.graph.EntryID())
	ts := e.now()

	c := e.conv
	c.Generation++
	c.PendingLead = ""
	c.Transcript = []domain.TranscriptEntry{}
	c.Data = make(map[string]string)
	c.CurrentNodeID = entry.ID
	c.Status = domain.StatusAwaitingChoice
	c.Transcript = append(c.Transcript, e.botEntry(entry.Message, entry.Options, ts))
	c.UpdatedAt = ts

	e.logger.Debug("conversation started", "node", entry.ID)
	if e.hooks.OnStart != nil {
		ev := e.nodeEvent(domain.EventStart, entry.ID, ts)
		e.queue(func() { e.hooks.OnStart(ctx, ev) })
	}
	e.emitNodeEnter(ctx, entry.ID, ts)
}

// Choose applies an option offered by the current node.
// Exactly one user entry and one bot entry are appended on success.
func (e *Engine) Choose(ctx context.Context, option domain.Option) (domain.Turn, error) {
	e.mu.Lock()
	defer e.unlock()

	return e.choose(ctx, func(opts []domain.Option) (domain.Option, bool) {
		value := option.Value
		if value == "" {
			value = option.Label
		}
		for _, o := range opts {
			if o.Value == value && (option.NextID == "" || o.NextID == option.NextID) {
				return o, true
			}
		}
		return domain.Option{}, false
	})
}

// ChooseValue applies the current node's option whose value matches.
func (e *Engine) ChooseValue(ctx context.Context, value string) (domain.Turn, error) {
	return e.Choose(ctx, domain.Option{Value: value})
}

// ChooseIndex applies the current node's option at position i (zero-based).
func (e *Engine) ChooseIndex(ctx context.Context, i int) (domain.Turn, error) {
	e.mu.Lock()
	defer e.unlock()

	return e.choose(ctx, func(opts []domain.Option) (domain.Option, bool) {
		if i < 0 || i >= len(opts) {
			return domain.Option{}, false
		}
		return opts[i], true
	})
}

func (e *Engine) choose(ctx context.Context, pick func([]domain.Option) (domain.Option, bool)) (domain.Turn, error) {
	c := e.conv
	switch c.Status {
	case domain.StatusAwaitingChoice, domain.StatusTerminalThanked:
	case domain.StatusSubmitting:
		return domain.Turn{}, fmt.Errorf("choose while %s: %w", c.Status, domain.ErrSubmissionInFlight)
	default:
		return domain.Turn{}, fmt.Errorf("choose while %s: %w", c.Status, domain.ErrInvalidState)
	}

	current, ok := e.graph.Node(c.CurrentNodeID)
	if !ok {
		return domain.Turn{}, fmt.Errorf("current node %q: %w", c.CurrentNodeID, domain.ErrInvalidState)
	}

	opt, ok := pick(current.Options)
	if !ok {
		return domain.Turn{}, fmt.Errorf("node %q: %w", current.ID, domain.ErrUnknownOption)
	}
	if opt.NextID == "" {
		return domain.Turn{}, fmt.Errorf("option %q: %w", opt.Value, domain.ErrNavigationOption)
	}

	next, ok := e.graph.Node(opt.NextID)
	if !ok {
		// NewGraph rejects dangling targets, so this is a programming error.
		return domain.Turn{}, fmt.Errorf("option %q points to missing node %q: %w", opt.Value, opt.NextID, domain.ErrInvalidState)
	}

	if c.Status == domain.StatusTerminalThanked {
		c.Data = make(map[string]string)
	}

	ts := e.now()
	turn := domain.Turn{User: e.userEntry(opt.Label, ts)}
	c.Transcript = append(c.Transcript, turn.User)
	c.Data[current.ID] = opt.Value

	if next.LeadCapture {
		turn.Bot = e.botEntry(next.Message, nil, ts)
		turn.LeadCapture = true
		turn.LeadContext = next.LeadContext
		c.Data[domain.KeyLeadContext] = next.LeadContext
		c.Status = domain.StatusAwaitingLeadInput
	} else {
		turn.Bot = e.botEntry(next.Message, next.Options, ts)
		c.Status = domain.StatusAwaitingChoice
	}
	c.Transcript = append(c.Transcript, turn.Bot)
	c.CurrentNodeID = next.ID
	c.UpdatedAt = ts

	e.logger.Debug("option chosen", "from", current.ID, "to", next.ID, "value", opt.Value)
	if e.hooks.OnChoice != nil {
		ev := &domain.ChoiceEvent{
			EventBase:  domain.EventBase{Timestamp: ts, Type: domain.EventChoice, SessionID: e.sessionID},
			FromNodeID: current.ID,
			ToNodeID:   next.ID,
			Value:      opt.Value,
		}
		e.queue(func() { e.hooks.OnChoice(ctx, ev) })
	}
	e.emitNodeEnter(ctx, next.ID, ts)
	if next.LeadCapture && e.hooks.OnLeadCapture != nil {
		ev := &domain.LeadEvent{
			EventBase:   domain.EventBase{Timestamp: ts, Type: domain.EventLeadCapture, SessionID: e.sessionID},
			NodeID:      next.ID,
			LeadContext: next.LeadContext,
		}
		e.queue(func() { e.hooks.OnLeadCapture(ctx, ev) })
	}

	return turn, nil
}

// IsNavigation reports whether the option value is a registered navigation
// action that the host should handle instead of calling Choose.
func (e *Engine) IsNavigation(option domain.Option) (domain.NavigationAction, bool) {
	value := option.Value
	if value == "" {
		value = option.Label
	}
	return e.graph.Navigation(value)
}

// View returns the host-facing projection of the conversation.
func (e *Engine) View() domain.View {
	e.mu.Lock()
	defer e.unlock()
	return e.view()
}

func (e *Engine) view() domain.View {
	c := e.conv
	v := domain.View{
		SessionID:  c.SessionID,
		Status:     c.Status,
		NodeID:     c.CurrentNodeID,
		Transcript: c.Clone().Transcript,
	}
	switch c.Status {
	case domain.StatusAwaitingLeadInput, domain.StatusSubmitting:
		v.ShowLeadForm = true
		v.LeadContext = c.Data[domain.KeyLeadContext]
	case domain.StatusAwaitingChoice, domain.StatusTerminalThanked:
		if n, ok := e.graph.Node(c.CurrentNodeID); ok {
			v.Options = n.Options
		}
		v.Terminal = len(v.Options) == 0
	}
	return v
}

// Status returns the current lifecycle status.
func (e *Engine) Status() domain.Status {
	e.mu.Lock()
	defer e.unlock()
	return e.conv.Status
}

// Snapshot returns a deep copy of the conversation state.
func (e *Engine) Snapshot() *domain.Conversation {
	e.mu.Lock()
	defer e.unlock()
	return e.conv.Clone()
}

// Restore replaces the engine state with a previously taken snapshot.
func (e *Engine) Restore(conv *domain.Conversation) error {
	if conv == nil {
		return fmt.Errorf("restore nil conversation: %w", domain.ErrInvalidState)
	}
	if conv.Status != domain.StatusIdle {
		if _, ok := e.graph.Node(conv.CurrentNodeID); !ok {
			return fmt.Errorf("restore: node %q not in graph: %w", conv.CurrentNodeID, domain.ErrInvalidState)
		}
	}

	e.mu.Lock()
	defer e.unlock()

	e.conv = conv.Clone()
	if e.conv.Data == nil {
		e.conv.Data = make(map[string]string)
	}
	if conv.SessionID != "" && conv.SessionID != e.sessionID {
		e.sessionID = conv.SessionID
		e.logger = e.logger.With("session_id", e.sessionID)
	}
	e.conv.SessionID = e.sessionID
	e.recoverLostSubmission()
	return nil
}

// recoverLostSubmission fails a restored submission whose delivery window
// has passed (the process that started it is gone), so the lead form is
// usable again. Its late result, if any, no longer matches and is discarded.
func (e *Engine) recoverLostSubmission() {
	c := e.conv
	if c.Status != domain.StatusSubmitting {
		return
	}
	ts := e.now()
	if ts.Sub(c.UpdatedAt) <= e.timeout+submitGrace {
		return
	}
	e.logger.Warn("lost lead submission treated as failed", "since", c.UpdatedAt)
	c.Status = domain.StatusAwaitingLeadInput
	c.PendingLead = ""
	c.UpdatedAt = ts
}

func (e *Engine) botEntry(text string, options []domain.Option, ts time.Time) domain.TranscriptEntry {
	return domain.TranscriptEntry{ID: e.newID(), Text: text, Sender: domain.SenderBot, Options: options, Timestamp: ts}
}

func (e *Engine) userEntry(text string, ts time.Time) domain.TranscriptEntry {
	return domain.TranscriptEntry{ID: e.newID(), Text: text, Sender: domain.SenderUser, Timestamp: ts}
}

func (e *Engine) nodeEvent(t domain.EventType, nodeID string, ts time.Time) *domain.NodeEvent {
	return &domain.NodeEvent{
		EventBase: domain.EventBase{Timestamp: ts, Type: t, SessionID: e.sessionID},
		NodeID:    nodeID,
	}
}

func (e *Engine) emitNodeEnter(ctx context.Context, nodeID string, ts time.Time) {
	if e.hooks.OnNodeEnter != nil {
		ev := e.nodeEvent(domain.EventNodeEnter, nodeID, ts)
		e.queue(func() { e.hooks.OnNodeEnter(ctx, ev) })
	}
}

// queue defers a hook call until the engine lock is released, so hooks may
// call back into the engine.
func (e *Engine) queue(fire func()) {
	e.queued = append(e.queued, fire)
}

// unlock releases the engine lock, then runs the hooks queued while it was held.
func (e *Engine) unlock() {
	queued := e.queued
	e.queued = nil
	e.mu.Unlock()
	for _, fire := range queued {
		fire()
	}
}
