package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(id, text string, s Sender) TranscriptEntry {
	return TranscriptEntry{ID: id, Text: text, Sender: s}
}

func TestDiff(t *testing.T) {
	awaiting := StatusAwaitingChoice
	lead := StatusAwaitingLeadInput
	welcome := "welcome"

	tests := []struct {
		name     string
		old      *Conversation
		new      *Conversation
		wantDiff *ConversationDiff
	}{
		{
			name: "Initial Load (Old is Nil)",
			old:  nil,
			new: &Conversation{
				SessionID:     "sess-1",
				CurrentNodeID: "welcome",
				Status:        StatusAwaitingChoice,
				Data:          map[string]string{},
				Transcript:    []TranscriptEntry{entry("e1", "Hi", SenderBot)},
			},
			wantDiff: &ConversationDiff{
				SessionID:     "sess-1",
				CurrentNodeID: &welcome,
				Status:        &awaiting,
				Appended:      []TranscriptEntry{entry("e1", "Hi", SenderBot)},
			},
		},
		{
			name: "No Changes",
			old: &Conversation{
				SessionID:     "sess-1",
				CurrentNodeID: "welcome",
				Status:        StatusAwaitingChoice,
				Transcript:    []TranscriptEntry{entry("e1", "Hi", SenderBot)},
			},
			new: &Conversation{
				SessionID:     "sess-1",
				CurrentNodeID: "welcome",
				Status:        StatusAwaitingChoice,
				Transcript:    []TranscriptEntry{entry("e1", "Hi", SenderBot)},
			},
			wantDiff: nil,
		},
		{
			name: "Choice Appends And Records Data",
			old: &Conversation{
				SessionID:     "sess-1",
				CurrentNodeID: "welcome",
				Status:        StatusAwaitingChoice,
				Data:          map[string]string{},
				Transcript:    []TranscriptEntry{entry("e1", "Hi", SenderBot)},
			},
			new: &Conversation{
				SessionID:     "sess-1",
				CurrentNodeID: "welcome",
				Status:        StatusAwaitingLeadInput,
				Data:          map[string]string{"welcome": "a"},
				Transcript: []TranscriptEntry{
					entry("e1", "Hi", SenderBot),
					entry("e2", "A", SenderUser),
					entry("e3", "Give details", SenderBot),
				},
			},
			wantDiff: &ConversationDiff{
				SessionID: "sess-1",
				Status:    &lead,
				Data:      map[string]any{"welcome": "a"},
				Appended: []TranscriptEntry{
					entry("e2", "A", SenderUser),
					entry("e3", "Give details", SenderBot),
				},
			},
		},
		{
			name: "Reset Replaces Transcript And Deletes Data",
			old: &Conversation{
				SessionID:     "sess-1",
				CurrentNodeID: "welcome",
				Status:        StatusAwaitingChoice,
				Data:          map[string]string{"welcome": "a"},
				Transcript: []TranscriptEntry{
					entry("e1", "Hi", SenderBot),
					entry("e2", "A", SenderUser),
				},
			},
			new: &Conversation{
				SessionID:     "sess-1",
				CurrentNodeID: "welcome",
				Status:        StatusAwaitingChoice,
				Data:          map[string]string{},
				Transcript:    []TranscriptEntry{entry("e9", "Hi", SenderBot)},
			},
			wantDiff: &ConversationDiff{
				SessionID: "sess-1",
				Data:      map[string]any{"welcome": nil},
				Appended:  []TranscriptEntry{entry("e9", "Hi", SenderBot)},
				Replaced:  true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Diff(tt.old, tt.new)
			assert.Equal(t, tt.wantDiff, got)
		})
	}
}

func TestDiff_NilNew(t *testing.T) {
	assert.Nil(t, Diff(&Conversation{SessionID: "x"}, nil))
}

func TestDiff_JSONOmitsUnchanged(t *testing.T) {
	old := &Conversation{SessionID: "s", Status: StatusAwaitingChoice, CurrentNodeID: "welcome"}
	updated := old.Clone()
	updated.Status = StatusSubmitting

	b, err := json.Marshal(Diff(old, updated))
	require.NoError(t, err)
	assert.JSONEq(t, `{"session_id":"s","status":"submitting"}`, string(b))
}
