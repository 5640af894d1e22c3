package dsl

import (
	"fmt"

	"github.com/aretw0/leadchat/pkg/adapters/memory"
	"github.com/aretw0/leadchat/pkg/domain"
)

// Builder manages the graph construction.
type Builder struct {
	nodes map[string]*NodeBuilder
	order []string
	cfg   domain.GraphConfig
}

// New creates a new graph builder.
func New() *Builder {
	return &Builder{
		nodes: make(map[string]*NodeBuilder),
	}
}

// Add creates a new node in the graph.
// If the node already exists, it returns the existing builder.
func (b *Builder) Add(id string) *NodeBuilder {
	if nb, ok := b.nodes[id]; ok {
		return nb
	}
	nb := &NodeBuilder{
		node: domain.Node{
			ID: id,
		},
		builder: b,
	}
	b.nodes[id] = nb
	b.order = append(b.order, id)
	return nb
}

// Entry overrides the entry node (default "welcome").
func (b *Builder) Entry(id string) *Builder {
	b.cfg.EntryID = id
	return b
}

// Thanks overrides the node shown after a delivered lead (default "thanks").
func (b *Builder) Thanks(id string) *Builder {
	b.cfg.ThanksID = id
	return b
}

// Navigate declares an option value that opens url instead of moving
// through the graph.
func (b *Builder) Navigate(value, url string, newTab bool) *Builder {
	b.cfg.Navigation = append(b.cfg.Navigation, domain.NavigationAction{Value: value, URL: url, NewTab: newTab})
	return b
}

// Loader returns the nodes as a memory loader, in declaration order.
// Nothing is validated until the loader is used.
func (b *Builder) Loader() *memory.Loader {
	nodes := make([]domain.Node, 0, len(b.order))
	for _, id := range b.order {
		nodes = append(nodes, b.nodes[id].Build())
	}
	cfg := b.cfg
	cfg.Navigation = append([]domain.NavigationAction(nil), b.cfg.Navigation...)
	return memory.NewLoader(nodes...).WithConfig(cfg)
}

// Build validates the nodes and returns the graph.
func (b *Builder) Build() (*domain.Graph, error) {
	nodes := make([]domain.Node, 0, len(b.order))
	for _, id := range b.order {
		nodes = append(nodes, b.nodes[id].Build())
	}

	g, err := domain.NewGraph(nodes, b.cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build graph: %w", err)
	}
	return g, nil
}

// MustBuild is like Build but panics on authoring errors.
func (b *Builder) MustBuild() *domain.Graph {
	g, err := b.Build()
	if err != nil {
		panic(err)
	}
	return g
}
