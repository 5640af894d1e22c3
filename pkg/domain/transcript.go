package domain

import "time"

// Sender identifies who produced a transcript entry.
type Sender string

const (
	SenderBot  Sender = "bot"
	SenderUser Sender = "user"
)

// TranscriptEntry is one append-only message of a conversation.
type TranscriptEntry struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Sender    Sender    `json:"sender"`
	Options   []Option  `json:"options,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Turn is the outcome of a single choice: one user entry and one bot entry.
type Turn struct {
	User        TranscriptEntry `json:"user"`
	Bot         TranscriptEntry `json:"bot"`
	LeadCapture bool            `json:"lead_capture"`
	LeadContext string          `json:"lead_context,omitempty"`
}

// View is what a host needs to render a conversation.
type View struct {
	SessionID  string            `json:"session_id"`
	Status     Status            `json:"status"`
	NodeID     string            `json:"node_id,omitempty"`
	Transcript []TranscriptEntry `json:"transcript"`
	Options    []Option          `json:"options,omitempty"`

	// ShowLeadForm tells the host to render the contact form.
	ShowLeadForm bool   `json:"show_lead_form"`
	LeadContext  string `json:"lead_context,omitempty"`

	// Terminal is set when the current node offers nothing to choose.
	Terminal bool `json:"terminal"`
}
