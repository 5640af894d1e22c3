package graph_test

import (
	"testing"

	"github.com/aretw0/leadchat/internal/presentation/graph"
	"github.com/aretw0/leadchat/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGraph(t *testing.T) *domain.Graph {
	t.Helper()
	g, err := domain.NewGraph([]domain.Node{
		{ID: "welcome", Message: "Hi", Options: []domain.Option{
			{Label: "Web apps", NextID: "web-lead", Value: "web"},
			{Label: `See "work"`, Value: "view_portfolio"},
		}},
		{ID: "web-lead", Message: "Details?", LeadCapture: true, LeadContext: "web_development"},
	}, domain.GraphConfig{
		Navigation: []domain.NavigationAction{{Value: "view_portfolio", URL: "/portfolio"}},
	})
	require.NoError(t, err)
	return g
}

func TestGenerateMermaid(t *testing.T) {
	got := graph.GenerateMermaid(testGraph(t), nil)

	tests := []struct {
		name string
		want string
	}{
		{"Entry Shape", `welcome(("welcome"))`},
		{"Lead Capture Shape", `web_lead[/"web-lead <br/> web_development"/]`},
		{"Thanks Shape", `thanks[["thanks"]]`},
		{"Option Edge", `welcome -- "Web apps" --> web_lead`},
		{"Navigation Edge Escaping", `welcome -. "See 'work'" .-> nav_view_portfolio`},
		{"Navigation Node", `nav_view_portfolio>"/portfolio"]`},
		{"Thanks Restart Edge", `thanks -- "Start over" --> welcome`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, got, tt.want)
		})
	}
	assert.NotContains(t, got, "classDef")
}

func TestGenerateMermaid_Overlay(t *testing.T) {
	g := testGraph(t)
	conv := &domain.Conversation{
		CurrentNodeID: "web-lead",
		Data:          map[string]string{"welcome": "web", domain.KeyLeadContext: "web_development"},
	}

	got := graph.GenerateMermaid(g, graph.OverlayFor(g, conv))
	assert.Contains(t, got, "class welcome visited;")
	assert.Contains(t, got, "class web_lead current;")
	assert.NotContains(t, got, "leadContext")
}
