package dsl

import "github.com/aretw0/leadchat/pkg/domain"

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	node    domain.Node
	builder *Builder
}

// Say sets the bot message of the node.
func (n *NodeBuilder) Say(message string) *NodeBuilder {
	n.node.Message = message
	return n
}

// Option adds an answer that moves to target. An empty value defaults to
// the label.
func (n *NodeBuilder) Option(label, target, value string) *NodeBuilder {
	n.node.Options = append(n.node.Options, domain.Option{
		Label:  label,
		NextID: target,
		Value:  value,
	})
	return n
}

// Link adds an answer whose value is a navigation action declared with
// Builder.Navigate.
func (n *NodeBuilder) Link(label, value string) *NodeBuilder {
	n.node.Options = append(n.node.Options, domain.Option{
		Label: label,
		Value: value,
	})
	return n
}

// CaptureLead turns the node into a lead form tagged with leadContext.
// Options added before are dropped.
func (n *NodeBuilder) CaptureLead(leadContext string) *NodeBuilder {
	n.node.LeadCapture = true
	n.node.LeadContext = leadContext
	n.node.Options = nil
	return n
}

// Meta adds a metadata entry.
func (n *NodeBuilder) Meta(key, value string) *NodeBuilder {
	if n.node.Metadata == nil {
		n.node.Metadata = make(map[string]string)
	}
	n.node.Metadata[key] = value
	return n
}

// Add starts the next node on the same builder.
func (n *NodeBuilder) Add(id string) *NodeBuilder {
	return n.builder.Add(id)
}

// Build returns the underlying domain.Node.
// This is primarily used by the Builder, but exposed for advanced usage.
func (n *NodeBuilder) Build() domain.Node {
	out := n.node
	out.Options = append([]domain.Option(nil), n.node.Options...)
	return out
}
