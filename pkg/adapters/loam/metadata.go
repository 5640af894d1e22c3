package loam

import (
	"github.com/aretw0/leadchat/pkg/domain"
)

// FlowDocumentID is the document holding graph-level settings
// (entry, thanks, navigation) instead of a node.
const FlowDocumentID = "_flow"

// NodeMetadata represents the frontmatter of a node document.
// The document body is the node message.
//
// Loam decodes frontmatter through encoding/json, so the json tags are the
// authored keys.
type NodeMetadata struct {
	ID          string            `json:"id" mapstructure:"id"`
	Options     []LoaderOption    `json:"options" mapstructure:"options"`
	LeadCapture bool              `json:"lead_capture" mapstructure:"lead_capture"`
	LeadContext string            `json:"lead_context" mapstructure:"lead_context"`
	Metadata    map[string]string `json:"metadata" mapstructure:"metadata"`

	// Only read from the FlowDocumentID document.
	Entry      string                    `json:"entry" mapstructure:"entry"`
	Thanks     string                    `json:"thanks" mapstructure:"thanks"`
	Navigation []domain.NavigationAction `json:"navigation" mapstructure:"navigation"`
}

// LoaderOption is an option as authored in frontmatter.
// `next` is the documented key; `next_id` (the JSON API name) is accepted too.
type LoaderOption struct {
	Label  string `json:"label" mapstructure:"label"`
	Next   string `json:"next" mapstructure:"next"`
	NextID string `json:"next_id" mapstructure:"next_id"`
	Value  string `json:"value" mapstructure:"value"`
}

func buildOptions(opts []LoaderOption) []domain.Option {
	if len(opts) == 0 {
		return nil
	}
	out := make([]domain.Option, 0, len(opts))
	for _, o := range opts {
		next := o.Next
		if next == "" {
			next = o.NextID
		}
		out = append(out, domain.Option{Label: o.Label, NextID: next, Value: o.Value})
	}
	return out
}
