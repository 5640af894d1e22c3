package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/leadchat/pkg/adapters/memory"
	"github.com/aretw0/leadchat/pkg/domain"
	"github.com/aretw0/leadchat/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoader_LoadGraph(t *testing.T) {
	loader := memory.NewLoader(
		domain.Node{ID: "start", Message: "Hello", Options: []domain.Option{{Label: "Go", NextID: "end"}}},
		domain.Node{ID: "end", Message: "Goodbye"},
	).WithConfig(domain.GraphConfig{EntryID: "start"})

	g, err := ports.LoadGraph(context.Background(), loader)
	require.NoError(t, err)
	assert.Equal(t, "start", g.EntryID())
	assert.Equal(t, 3, g.Len())
}

func TestLoader_ReturnsCopies(t *testing.T) {
	loader := memory.NewLoader(domain.Node{ID: "welcome", Message: "Hi", Options: []domain.Option{{Label: "x", NextID: "welcome"}}})

	nodes, _, err := loader.LoadNodes(context.Background())
	require.NoError(t, err)
	nodes[0].Options[0].Label = "mutated"

	again, _, _ := loader.LoadNodes(context.Background())
	assert.Equal(t, "x", again[0].Options[0].Label)
}

func TestLoader_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := memory.NewLoader().LoadNodes(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
