package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStart         EventType = "start"
	EventNodeEnter     EventType = "node_enter"
	EventChoice        EventType = "choice"
	EventLeadCapture   EventType = "lead_capture"
	EventLeadDelivered EventType = "lead_delivered"
	EventLeadFailed    EventType = "lead_failed"
	EventReset         EventType = "reset"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
}

// NodeEvent is emitted when the conversation enters a node.
type NodeEvent struct {
	EventBase
	NodeID string `json:"node_id"`
}

// ChoiceEvent is emitted after an option was applied.
type ChoiceEvent struct {
	EventBase
	FromNodeID string `json:"from_node_id"`
	ToNodeID   string `json:"to_node_id"`
	Value      string `json:"value"`
}

// LeadEvent covers lead capture, delivery and delivery failures.
// It never carries the contact fields.
type LeadEvent struct {
	EventBase
	NodeID      string        `json:"node_id,omitempty"`
	LeadContext string        `json:"lead_context,omitempty"`
	Duration    time.Duration `json:"duration,omitempty"`
	Err         error         `json:"-"`
}

// LifecycleHooks defines callbacks for engine observability.
// The engine calls them after releasing its lock, in event order, so a hook
// may read the engine (View, Snapshot).
type LifecycleHooks struct {
	OnStart         func(context.Context, *NodeEvent)
	OnNodeEnter     func(context.Context, *NodeEvent)
	OnChoice        func(context.Context, *ChoiceEvent)
	OnLeadCapture   func(context.Context, *LeadEvent)
	OnLeadDelivered func(context.Context, *LeadEvent)
	OnLeadFailed    func(context.Context, *LeadEvent)
	OnReset         func(context.Context, *EventBase)
}

// Merge returns hooks that call h first, then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnStart:         chain(h.OnStart, other.OnStart),
		OnNodeEnter:     chain(h.OnNodeEnter, other.OnNodeEnter),
		OnChoice:        chain(h.OnChoice, other.OnChoice),
		OnLeadCapture:   chain(h.OnLeadCapture, other.OnLeadCapture),
		OnLeadDelivered: chain(h.OnLeadDelivered, other.OnLeadDelivered),
		OnLeadFailed:    chain(h.OnLeadFailed, other.OnLeadFailed),
		OnReset:         chain(h.OnReset, other.OnReset),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
