package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/leadchat/pkg/adapters/memory"
	"github.com/aretw0/leadchat/pkg/domain"
	"github.com/aretw0/leadchat/pkg/ports"
	"github.com/aretw0/leadchat/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) *Server {
	t.Helper()
	g, err := domain.NewGraph([]domain.Node{
		{ID: "welcome", Message: "Hi", Options: []domain.Option{
			{Label: "Hire me", NextID: "lead", Value: "hire"},
			{Label: "Portfolio", Value: "view_portfolio"},
		}},
		{ID: "lead", Message: "Details?", LeadCapture: true, LeadContext: "hiring"},
	}, domain.GraphConfig{Navigation: []domain.NavigationAction{{Value: "view_portfolio", URL: "/portfolio"}}})
	require.NoError(t, err)

	d := ports.DelivererFunc(func(context.Context, *domain.LeadRecord) error { return nil })
	return NewServer(session.NewManager(g, memory.NewStore(), d))
}

func TestServer_ChatTools(t *testing.T) {
	s := newServer(t)
	ctx := context.Background()
	req := mcp.CallToolRequest{}

	resp, err := s.handleStart(ctx, req, StartArgs{SessionID: "s1"})
	require.NoError(t, err)
	assert.Equal(t, "s1", resp.View.SessionID)

	one := 1.0
	resp, err = s.handleChoose(ctx, req, ChooseArgs{SessionID: "s1", Index: &one})
	require.NoError(t, err)
	require.NotNil(t, resp.Navigation)
	assert.Nil(t, resp.Turn)

	resp, err = s.handleChoose(ctx, req, ChooseArgs{SessionID: "s1", Value: "hire"})
	require.NoError(t, err)
	require.NotNil(t, resp.Turn)
	assert.True(t, resp.View.ShowLeadForm)

	resp, err = s.handleSubmitLead(ctx, req, LeadArgs{SessionID: "s1", Name: "Ada", Email: "nope"})
	require.NoError(t, err)
	assert.Equal(t, domain.LeadInvalid, resp.Result.Outcome)

	resp, err = s.handleSubmitLead(ctx, req, LeadArgs{SessionID: "s1", Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)
	assert.Equal(t, domain.LeadAccepted, resp.Result.Outcome)
	assert.Equal(t, domain.StatusTerminalThanked, resp.View.Status)

	resp, err = s.handleReset(ctx, req, SessionArgs{SessionID: "s1"})
	require.NoError(t, err)
	assert.Len(t, resp.View.Transcript, 1)
}

func TestServer_ChooseErrors(t *testing.T) {
	s := newServer(t)
	ctx := context.Background()

	_, err := s.handleChoose(ctx, mcp.CallToolRequest{}, ChooseArgs{SessionID: "ghost", Value: "hire"})
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	_, err = s.handleChoose(ctx, mcp.CallToolRequest{}, ChooseArgs{SessionID: "s1"})
	assert.Error(t, err)
}

func TestServer_Graph(t *testing.T) {
	s := newServer(t)

	res, err := s.handleGetGraph(context.Background(), mcp.CallToolRequest{})
	require.NoError(t, err)
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)

	var doc struct {
		Entry string        `json:"entry"`
		Nodes []domain.Node `json:"nodes"`
	}
	require.NoError(t, json.Unmarshal([]byte(text.Text), &doc))
	assert.Equal(t, "welcome", doc.Entry)
	assert.Len(t, doc.Nodes, 3)

	contents, err := s.readGraph(context.Background(), mcp.ReadResourceRequest{})
	require.NoError(t, err)
	require.Len(t, contents, 1)
	assert.Equal(t, GraphURI, contents[0].(mcp.TextResourceContents).URI)
}
