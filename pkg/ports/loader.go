package ports

import (
	"context"

	"github.com/aretw0/leadchat/pkg/domain"
)

// GraphLoader defines how the engine retrieves node definitions.
// This allows the storage layer (YAML file, Loam, Memory) to be decoupled.
type GraphLoader interface {
	// LoadNodes returns every authored node plus the graph-level settings.
	// Validation happens afterwards in domain.NewGraph.
	LoadNodes(ctx context.Context) ([]domain.Node, domain.GraphConfig, error)
}

// LoadGraph loads and validates a graph in one step.
func LoadGraph(ctx context.Context, loader GraphLoader) (*domain.Graph, error) {
	nodes, cfg, err := loader.LoadNodes(ctx)
	if err != nil {
		return nil, err
	}
	return domain.NewGraph(nodes, cfg)
}
