package domain

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultThanksMessage is used when the graph does not author its own thanks node.
const DefaultThanksMessage = "Thank you! Your details are on their way and I'll get back to you shortly."

// GraphConfig carries the graph-level settings that sit next to the nodes.
type GraphConfig struct {
	EntryID    string             `json:"entry,omitempty" yaml:"entry,omitempty" mapstructure:"entry"`
	ThanksID   string             `json:"thanks,omitempty" yaml:"thanks,omitempty" mapstructure:"thanks"`
	Navigation []NavigationAction `json:"navigation,omitempty" yaml:"navigation,omitempty" mapstructure:"navigation"`
}

// Graph is the validated, immutable conversation graph.
// The zero value is not usable; build one with NewGraph.
type Graph struct {
	nodes      map[string]Node
	order      []string
	entryID    string
	thanksID   string
	navigation map[string]NavigationAction
}

// GraphError lists every authoring problem found while building a graph.
type GraphError struct {
	Problems []string
}

func (e *GraphError) Error() string {
	if len(e.Problems) == 1 {
		return "invalid conversation graph: " + e.Problems[0]
	}
	return fmt.Sprintf("invalid conversation graph: found %d errors:\n- %s", len(e.Problems), strings.Join(e.Problems, "\n- "))
}

// NewGraph validates the nodes and returns an immutable graph.
// Empty option values default to the option label.
func NewGraph(nodes []Node, cfg GraphConfig) (*Graph, error) {
	g := &Graph{
		nodes:      make(map[string]Node, len(nodes)+1),
		entryID:    cfg.EntryID,
		thanksID:   cfg.ThanksID,
		navigation: make(map[string]NavigationAction, len(cfg.Navigation)),
	}
	if g.entryID == "" {
		g.entryID = DefaultEntryNodeID
	}
	if g.thanksID == "" {
		g.thanksID = DefaultThanksNodeID
	}

	var problems []string

	for _, nav := range cfg.Navigation {
		switch {
		case nav.Value == "":
			problems = append(problems, "navigation action with empty value")
			continue
		case nav.URL == "":
			problems = append(problems, fmt.Sprintf("navigation action %q has no url", nav.Value))
		}
		if _, dup := g.navigation[nav.Value]; dup {
			problems = append(problems, fmt.Sprintf("navigation action %q declared twice", nav.Value))
		}
		g.navigation[nav.Value] = nav
	}

	for _, n := range nodes {
		if n.ID == "" {
			problems = append(problems, "node with empty id")
			continue
		}
		if _, dup := g.nodes[n.ID]; dup {
			problems = append(problems, fmt.Sprintf("node %q declared twice", n.ID))
			continue
		}
		n.Options = cloneOptions(n.Options)
		for i := range n.Options {
			if n.Options[i].Value == "" {
				n.Options[i].Value = n.Options[i].Label
			}
		}
		g.nodes[n.ID] = n
		g.order = append(g.order, n.ID)
	}

	if _, ok := g.nodes[g.entryID]; !ok {
		problems = append(problems, fmt.Sprintf("entry node %q not found", g.entryID))
	}

	if _, ok := g.nodes[g.thanksID]; !ok {
		g.nodes[g.thanksID] = Node{
			ID:      g.thanksID,
			Message: DefaultThanksMessage,
			Options: []Option{{Label: "Start over", NextID: g.entryID, Value: "restart"}},
		}
		g.order = append(g.order, g.thanksID)
	} else if g.nodes[g.thanksID].LeadCapture {
		problems = append(problems, fmt.Sprintf("thanks node %q cannot be a lead capture node", g.thanksID))
	}

	for _, id := range g.order {
		problems = append(problems, g.checkNode(g.nodes[id])...)
	}

	if len(problems) > 0 {
		return nil, &GraphError{Problems: problems}
	}
	return g, nil
}

// MustGraph is like NewGraph but panics on authoring errors.
// Use it for graphs compiled into the binary.
func MustGraph(nodes []Node, cfg GraphConfig) *Graph {
	g, err := NewGraph(nodes, cfg)
	if err != nil {
		panic(err)
	}
	return g
}

func (g *Graph) checkNode(n Node) []string {
	var problems []string
	if n.LeadCapture && len(n.Options) > 0 {
		problems = append(problems, fmt.Sprintf("lead capture node %q must not declare options", n.ID))
	}
	for i, opt := range n.Options {
		if strings.TrimSpace(opt.Label) == "" {
			problems = append(problems, fmt.Sprintf("node %q option %d has no label", n.ID, i))
		}
		if opt.NextID == "" {
			if _, ok := g.navigation[opt.Value]; !ok {
				problems = append(problems, fmt.Sprintf("node %q option %q has no target and is not a navigation action", n.ID, opt.Label))
			}
			continue
		}
		if _, ok := g.nodes[opt.NextID]; !ok {
			problems = append(problems, fmt.Sprintf("node %q option %q points to missing node %q", n.ID, opt.Label, opt.NextID))
		}
	}
	return problems
}

// EntryID returns the ID of the node every conversation starts from.
func (g *Graph) EntryID() string { return g.entryID }

// ThanksID returns the ID of the node shown after a delivered lead.
func (g *Graph) ThanksID() string { return g.thanksID }

// Node returns a copy of the node with the given ID.
func (g *Graph) Node(id string) (Node, bool) {
	n, ok := g.nodes[id]
	if !ok {
		return Node{}, false
	}
	n.Options = cloneOptions(n.Options)
	return n, true
}

// Nodes returns copies of all nodes, entry first, then sorted by ID.
func (g *Graph) Nodes() []Node {
	ids := make([]string, 0, len(g.order))
	for _, id := range g.order {
		if id != g.entryID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	ids = append([]string{g.entryID}, ids...)

	out := make([]Node, 0, len(ids))
	for _, id := range ids {
		n, _ := g.Node(id)
		out = append(out, n)
	}
	return out
}

// Len returns the number of nodes, including a synthesised thanks node.
func (g *Graph) Len() int { return len(g.nodes) }

// Navigation looks up the navigation action registered for an option value.
func (g *Graph) Navigation(value string) (NavigationAction, bool) {
	nav, ok := g.navigation[value]
	return nav, ok
}

// NavigationActions returns all registered navigation actions sorted by value.
func (g *Graph) NavigationActions() []NavigationAction {
	out := make([]NavigationAction, 0, len(g.navigation))
	for _, nav := range g.navigation {
		out = append(out, nav)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Value < out[j].Value })
	return out
}
