package flows_test

import (
	"context"
	"testing"

	"github.com/aretw0/leadchat/internal/flows"
	"github.com/aretw0/leadchat/internal/validator"
	"github.com/aretw0/leadchat/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPortfolioGraph_IsValid(t *testing.T) {
	g, err := flows.PortfolioGraph(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.DefaultEntryNodeID, g.EntryID())
	for _, id := range []string{"services", "pricing", "projects", "process", "thanks"} {
		_, ok := g.Node(id)
		assert.True(t, ok, id)
	}

	leadNodes := 0
	for _, n := range g.Nodes() {
		if n.LeadCapture {
			leadNodes++
			assert.NotEmpty(t, n.LeadContext, n.ID)
			assert.Empty(t, n.Options, n.ID)
		}
	}
	assert.GreaterOrEqual(t, leadNodes, 5)

	nav, ok := g.Navigation("book_call")
	require.True(t, ok)
	assert.True(t, nav.NewTab)
}

func TestPortfolioGraph_EveryNodeReachable(t *testing.T) {
	g, err := flows.PortfolioGraph(context.Background())
	require.NoError(t, err)

	assert.Empty(t, validator.Lint(g))
}

func TestPortfolioGraph_WelcomeOptions(t *testing.T) {
	g, err := flows.PortfolioGraph(context.Background())
	require.NoError(t, err)

	welcome, ok := g.Node(g.EntryID())
	require.True(t, ok)
	require.NotEmpty(t, welcome.Options)

	targets := map[string]string{}
	for _, opt := range welcome.Options {
		assert.NotEmpty(t, opt.Label)
		targets[opt.Label] = opt.NextID
	}
	assert.Equal(t, "pricing", targets["What does it cost?"])
}
