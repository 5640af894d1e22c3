package memory

import (
	"context"
	"fmt"

	"github.com/aretw0/leadchat/pkg/domain"
)

// Loader implements ports.GraphLoader over nodes held in memory.
type Loader struct {
	nodes []domain.Node
	cfg   domain.GraphConfig
}

// NewLoader creates a Loader from domain nodes. Graph settings default to
// the "welcome" entry and "thanks" nodes.
func NewLoader(nodes ...domain.Node) *Loader {
	return &Loader{nodes: nodes}
}

// WithConfig sets the graph-level settings returned alongside the nodes.
func (l *Loader) WithConfig(cfg domain.GraphConfig) *Loader {
	l.cfg = cfg
	return l
}

// LoadNodes returns copies of the stored nodes.
func (l *Loader) LoadNodes(ctx context.Context) ([]domain.Node, domain.GraphConfig, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.GraphConfig{}, fmt.Errorf("load nodes: %w", err)
	}
	out := make([]domain.Node, len(l.nodes))
	for i, n := range l.nodes {
		n.Options = append([]domain.Option(nil), n.Options...)
		out[i] = n
	}
	cfg := l.cfg
	cfg.Navigation = append([]domain.NavigationAction(nil), l.cfg.Navigation...)
	return out, cfg, nil
}
