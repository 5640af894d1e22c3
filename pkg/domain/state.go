package domain

import "time"

// Status defines where a conversation is in its lifecycle.
type Status string

const (
	StatusIdle              Status = "idle"                // Not started
	StatusAwaitingChoice    Status = "awaiting_choice"     // Current node shows options
	StatusAwaitingLeadInput Status = "awaiting_lead_input" // Lead form visible
	StatusSubmitting        Status = "submitting"          // Delivery in flight
	StatusTerminalThanked   Status = "terminal_thanked"    // Lead delivered, thanks shown
)

// Conversation is the serialisable snapshot of one running conversation.
// Stores persist it as-is; engines are rebuilt from it with Restore.
type Conversation struct {
	SessionID     string `json:"session_id"`
	Status        Status `json:"status"`
	CurrentNodeID string `json:"current_node_id,omitempty"`

	Transcript []TranscriptEntry `json:"transcript"`

	// Data maps visited node IDs to the chosen option value.
	// KeyLeadContext holds the context of the reached lead-capture node.
	Data map[string]string `json:"data"`

	// Generation is bumped on every reset so late submission results can be detected.
	Generation uint64 `json:"generation"`

	// PendingLead holds the token of the in-flight submission (if Status == StatusSubmitting).
	PendingLead string `json:"pending_lead,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewConversation creates an idle conversation with empty transcript and data.
func NewConversation(sessionID string, now time.Time) *Conversation {
	return &Conversation{
		SessionID:  sessionID,
		Status:     StatusIdle,
		Transcript: []TranscriptEntry{},
		Data:       make(map[string]string),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Clone returns a deep copy.
func (c *Conversation) Clone() *Conversation {
	if c == nil {
		return nil
	}
	out := *c
	out.Transcript = make([]TranscriptEntry, len(c.Transcript))
	for i, e := range c.Transcript {
		e.Options = cloneOptions(e.Options)
		out.Transcript[i] = e
	}
	out.Data = make(map[string]string, len(c.Data))
	for k, v := range c.Data {
		out.Data[k] = v
	}
	return &out
}

// LastEntry returns the most recent transcript entry, if any.
func (c *Conversation) LastEntry() (TranscriptEntry, bool) {
	if len(c.Transcript) == 0 {
		return TranscriptEntry{}, false
	}
	return c.Transcript[len(c.Transcript)-1], true
}
