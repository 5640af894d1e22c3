package domain

// DefaultEntryNodeID is the node every conversation starts from.
const DefaultEntryNodeID = "welcome"

// DefaultThanksNodeID is the node shown after a lead was delivered.
const DefaultThanksNodeID = "thanks"

// KeyLeadContext is the reserved conversation-data key holding the lead context
// of the lead-capture node that was reached.
const KeyLeadContext = "leadContext"

// Option is a user-selectable answer on a node.
type Option struct {
	Label  string `json:"label" yaml:"label" mapstructure:"label"`
	NextID string `json:"next_id,omitempty" yaml:"next,omitempty" mapstructure:"next"`

	// Value is recorded in the conversation data under the current node ID.
	// Navigation values (see NavigationAction) are handled by the host.
	Value string `json:"value,omitempty" yaml:"value,omitempty" mapstructure:"value"`
}

// Node represents one step of the scripted conversation.
type Node struct {
	ID      string   `json:"id" yaml:"id"`
	Message string   `json:"message" yaml:"message"`
	Options []Option `json:"options,omitempty" yaml:"options,omitempty"`

	// LeadCapture marks nodes where the host renders the contact form
	// instead of further options.
	LeadCapture bool `json:"lead_capture,omitempty" yaml:"lead_capture,omitempty"`

	// LeadContext tags the lead with the topic the visitor was interested in.
	LeadContext string `json:"lead_context,omitempty" yaml:"lead_context,omitempty"`

	// Metadata allows for extensible key-value pairs.
	Metadata map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// IsTerminal reports whether the node offers nothing to choose.
func (n *Node) IsTerminal() bool {
	return len(n.Options) == 0
}

// NavigationAction describes an option value that leaves the chat
// (client-side routing or a new tab) instead of moving through the graph.
type NavigationAction struct {
	Value  string `json:"value" yaml:"value" mapstructure:"value"`
	URL    string `json:"url" yaml:"url" mapstructure:"url"`
	NewTab bool   `json:"new_tab,omitempty" yaml:"new_tab,omitempty" mapstructure:"new_tab"`
}

func cloneOptions(opts []Option) []Option {
	if opts == nil {
		return nil
	}
	out := make([]Option, len(opts))
	copy(out, opts)
	return out
}
