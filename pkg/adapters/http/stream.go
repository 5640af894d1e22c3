package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/aretw0/leadchat/internal/logging"
	"github.com/aretw0/leadchat/pkg/domain"
)

// StreamManager handles active SSE connections.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{} // SessionID -> Set of Channels
	logger      *slog.Logger
}

// NewStreamManager creates an empty StreamManager.
func NewStreamManager(logger *slog.Logger) *StreamManager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a buffered channel for the session. The returned
// function unsubscribes and closes it.
func (sm *StreamManager) Subscribe(sessionID string) (<-chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[sessionID]; !ok {
		sm.subscribers[sessionID] = make(map[chan<- string]struct{})
	}
	sm.subscribers[sessionID][ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			sm.mu.Lock()
			defer sm.mu.Unlock()
			if subs, ok := sm.subscribers[sessionID]; ok {
				delete(subs, ch)
				close(ch)
				if len(subs) == 0 {
					delete(sm.subscribers, sessionID)
				}
			}
		})
	}
}

// Broadcast sends msg to every subscriber of the session. Slow clients drop
// messages instead of blocking the caller.
func (sm *StreamManager) Broadcast(sessionID string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[sessionID] {
		select {
		case ch <- msg:
		default:
			sm.logger.Warn("SSE: Client buffer full, dropping message", "session_id", sessionID)
		}
	}
}

// Observe is a session.Observer that broadcasts conversation diffs.
func (sm *StreamManager) Observe(_ context.Context, diff *domain.ConversationDiff) {
	if diff == nil || diff.IsEmpty() {
		return
	}
	b, err := json.Marshal(diff)
	if err != nil {
		sm.logger.Error("SSE: diff encode failed", "session_id", diff.SessionID, "err", err)
		return
	}
	sm.Broadcast(diff.SessionID, string(b))
}

// matchesWatch reports whether the diff touches any watched field:
// transcript, status, node or data.
func matchesWatch(diff *domain.ConversationDiff, watch []string) bool {
	for _, field := range watch {
		switch field {
		case "transcript":
			if len(diff.Appended) > 0 || diff.Replaced {
				return true
			}
		case "status":
			if diff.Status != nil {
				return true
			}
		case "node":
			if diff.CurrentNodeID != nil {
				return true
			}
		case "data":
			if len(diff.Data) > 0 {
				return true
			}
		}
	}
	return false
}
