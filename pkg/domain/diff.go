package domain

// ConversationDiff represents the changes between two snapshots.
// It is designed to be serialized to JSON for partial updates on the client.
type ConversationDiff struct {
	// SessionID is always present to identify the target.
	SessionID string `json:"session_id"`

	CurrentNodeID *string `json:"current_node_id,omitempty"`
	Status        *Status `json:"status,omitempty"`

	// Data contains only changed, added or deleted keys.
	// For deletions, the key is present with a nil value.
	Data map[string]any `json:"data,omitempty"`

	// Appended contains transcript entries added since the old snapshot.
	Appended []TranscriptEntry `json:"appended,omitempty"`

	// Replaced is set when the transcript was rewritten (reset); Appended then
	// carries the whole new transcript.
	Replaced bool `json:"replaced,omitempty"`
}

// Diff calculates the difference between old and new.
// If old is nil, it returns a diff representing the entire new snapshot.
// It returns nil when nothing changed.
func Diff(old, new *Conversation) *ConversationDiff {
	if new == nil {
		return nil
	}

	diff := &ConversationDiff{SessionID: new.SessionID}

	if old == nil || old.CurrentNodeID != new.CurrentNodeID {
		id := new.CurrentNodeID
		diff.CurrentNodeID = &id
	}
	if old == nil || old.Status != new.Status {
		st := new.Status
		diff.Status = &st
	}

	diff.Data = diffData(old, new)
	diff.Appended, diff.Replaced = diffTranscript(old, new)

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func diffData(old, new *Conversation) map[string]any {
	delta := make(map[string]any)

	if old == nil {
		for k, v := range new.Data {
			delta[k] = v
		}
	} else {
		for k, v := range new.Data {
			if ov, ok := old.Data[k]; !ok || ov != v {
				delta[k] = v
			}
		}
		for k := range old.Data {
			if _, ok := new.Data[k]; !ok {
				delta[k] = nil
			}
		}
	}

	if len(delta) == 0 {
		return nil
	}
	return delta
}

// diffTranscript assumes append-only behavior unless the prefix diverged.
func diffTranscript(old, new *Conversation) ([]TranscriptEntry, bool) {
	if old == nil {
		if len(new.Transcript) == 0 {
			return nil, false
		}
		return new.Transcript, false
	}

	oldLen, newLen := len(old.Transcript), len(new.Transcript)
	if newLen < oldLen || (oldLen > 0 && (newLen == 0 || new.Transcript[oldLen-1].ID != old.Transcript[oldLen-1].ID)) {
		return new.Transcript, true
	}
	if newLen > oldLen {
		return new.Transcript[oldLen:], false
	}
	return nil, false
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *ConversationDiff) IsEmpty() bool {
	return d.CurrentNodeID == nil &&
		d.Status == nil &&
		len(d.Data) == 0 &&
		len(d.Appended) == 0 &&
		!d.Replaced
}
