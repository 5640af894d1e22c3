// Package flows embeds the default conversation flow.
package flows

import (
	"context"
	_ "embed"

	"github.com/aretw0/leadchat/pkg/adapters/file"
	"github.com/aretw0/leadchat/pkg/domain"
	"github.com/aretw0/leadchat/pkg/ports"
)

// PortfolioName labels the embedded flow in logs and errors.
const PortfolioName = "portfolio.yaml"

//go:embed portfolio.yaml
var Portfolio []byte

// Loader returns a GraphLoader for the embedded portfolio flow.
func Loader() ports.GraphLoader {
	return file.NewLoaderFromBytes(PortfolioName, Portfolio)
}

// PortfolioGraph loads and validates the embedded portfolio flow.
func PortfolioGraph(ctx context.Context) (*domain.Graph, error) {
	return ports.LoadGraph(ctx, Loader())
}
