package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/leadchat"
	"github.com/aretw0/leadchat/internal/logging"
	"github.com/aretw0/leadchat/pkg/domain"
	"github.com/aretw0/leadchat/pkg/runner"
	"github.com/aretw0/leadchat/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// GraphURI is the resource exposing the graph definition.
const GraphURI = "leadchat://graph"

// ChatResponse is the structured result of every chat tool.
type ChatResponse struct {
	View       domain.View              `json:"view" jsonschema_description:"The conversation as the user sees it"`
	Turn       *domain.Turn             `json:"turn,omitempty" jsonschema_description:"Entries appended by a choice"`
	Navigation *domain.NavigationAction `json:"navigation,omitempty" jsonschema_description:"Navigation the host should perform instead of a transition"`
	Result     *domain.LeadResult       `json:"result,omitempty" jsonschema_description:"Outcome of a lead submission"`
}

// StartArgs are the arguments of chat_start.
type StartArgs struct {
	SessionID string `json:"session_id,omitempty"`
}

// ChooseArgs are the arguments of chat_choose.
type ChooseArgs struct {
	SessionID string   `json:"session_id"`
	Value     string   `json:"value,omitempty"`
	Index     *float64 `json:"index,omitempty"`
}

// LeadArgs are the arguments of chat_submit_lead.
type LeadArgs struct {
	SessionID string `json:"session_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Company   string `json:"company,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// SessionArgs carry only a session ID.
type SessionArgs struct {
	SessionID string `json:"session_id"`
}

// Server exposes a session manager as an MCP server.
type Server struct {
	sessions  *session.Manager
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures the logger. It must not write to Stdout when
// serving over stdio.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(sessions *session.Manager, opts ...Option) *Server {
	s := &Server{
		sessions:  sessions,
		mcpServer: server.NewMCPServer("leadchat-mcp", strings.TrimSpace(leadchat.Version)),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying server (e.g. for in-process clients).
func (s *Server) MCPServer() *server.MCPServer { return s.mcpServer }

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves MCP over SSE on addr until ctx is canceled.
func (s *Server) ServeSSE(ctx context.Context, addr string) error {
	baseURL := "http://localhost" + addr
	if !strings.HasPrefix(addr, ":") {
		baseURL = "http://" + addr
	}
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("chat_start",
		mcp.WithDescription("Start (or restart) a conversation and return the welcome message with its options."),
		mcp.WithString("session_id", mcp.Description("Session to start; generated when omitted")),
		mcp.WithOutputSchema[ChatResponse](),
	), mcp.NewStructuredToolHandler(s.handleStart))

	s.mcpServer.AddTool(mcp.NewTool("chat_choose",
		mcp.WithDescription("Choose one of the options of the current message, by value or by zero-based index."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
		mcp.WithString("value", mcp.Description("Option value")),
		mcp.WithNumber("index", mcp.Description("Zero-based option index, used when value is omitted")),
		mcp.WithOutputSchema[ChatResponse](),
	), mcp.NewStructuredToolHandler(s.handleChoose))

	s.mcpServer.AddTool(mcp.NewTool("chat_submit_lead",
		mcp.WithDescription("Submit contact details while the lead form is shown."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
		mcp.WithString("name", mcp.Required(), mcp.Description("Full name")),
		mcp.WithString("email", mcp.Required(), mcp.Description("Email address")),
		mcp.WithString("company", mcp.Description("Company (optional)")),
		mcp.WithString("phone", mcp.Description("Phone (optional)")),
		mcp.WithOutputSchema[ChatResponse](),
	), mcp.NewStructuredToolHandler(s.handleSubmitLead))

	s.mcpServer.AddTool(mcp.NewTool("chat_reset",
		mcp.WithDescription("Reset the conversation to the welcome message."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
		mcp.WithOutputSchema[ChatResponse](),
	), mcp.NewStructuredToolHandler(s.handleReset))

	s.mcpServer.AddTool(mcp.NewTool("get_graph",
		mcp.WithDescription("Get the full graph definition for introspection."),
	), s.handleGetGraph)
}

func (s *Server) handleStart(ctx context.Context, _ mcp.CallToolRequest, args StartArgs) (ChatResponse, error) {
	id, err := runner.SanitizeInput(strings.TrimSpace(args.SessionID))
	if err != nil {
		return ChatResponse{}, fmt.Errorf("input rejected: %w", err)
	}
	view, err := s.sessions.Start(ctx, id)
	if err != nil {
		return ChatResponse{}, fmt.Errorf("start failed: %w", err)
	}
	return ChatResponse{View: view}, nil
}

func (s *Server) handleChoose(ctx context.Context, _ mcp.CallToolRequest, args ChooseArgs) (ChatResponse, error) {
	value, err := runner.SanitizeInput(strings.TrimSpace(args.Value))
	if err != nil {
		s.logger.Warn("MCP Choose: Input rejected", "err", err, "size", len(args.Value))
		return ChatResponse{}, fmt.Errorf("input rejected: %w", err)
	}

	index := -1
	switch {
	case value != "":
	case args.Index != nil && *args.Index >= 0:
		index = int(*args.Index)
	default:
		return ChatResponse{}, fmt.Errorf("value or a non-negative index is required")
	}

	sel, err := s.sessions.Select(ctx, args.SessionID, value, index)
	if err != nil {
		return ChatResponse{}, fmt.Errorf("choose failed: %w", err)
	}
	return ChatResponse{View: sel.View, Turn: sel.Turn, Navigation: sel.Navigation}, nil
}

func (s *Server) handleSubmitLead(ctx context.Context, _ mcp.CallToolRequest, args LeadArgs) (ChatResponse, error) {
	fields, err := runner.SanitizeLead(domain.LeadFields{Name: args.Name, Email: args.Email, Company: args.Company, Phone: args.Phone})
	if err != nil {
		return ChatResponse{}, fmt.Errorf("input rejected: %w", err)
	}

	res, view, err := s.sessions.SubmitLead(ctx, args.SessionID, fields)
	if err != nil {
		return ChatResponse{}, fmt.Errorf("submit failed: %w", err)
	}
	return ChatResponse{View: view, Result: &res}, nil
}

func (s *Server) handleReset(ctx context.Context, _ mcp.CallToolRequest, args SessionArgs) (ChatResponse, error) {
	view, err := s.sessions.Reset(ctx, args.SessionID)
	if err != nil {
		return ChatResponse{}, fmt.Errorf("reset failed: %w", err)
	}
	return ChatResponse{View: view}, nil
}

func (s *Server) graphJSON() (string, error) {
	g := s.sessions.Graph()
	b, err := json.Marshal(map[string]any{
		"entry":      g.EntryID(),
		"thanks":     g.ThanksID(),
		"nodes":      g.Nodes(),
		"navigation": g.NavigationActions(),
	})
	return string(b), err
}

func (s *Server) handleGetGraph(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := s.graphJSON()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("inspect failed: %v", err)), nil
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(GraphURI, "Current Graph Definition",
		mcp.WithMIMEType("application/json"),
	), s.readGraph)
}

func (s *Server) readGraph(ctx context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	text, err := s.graphJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to inspect graph: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      GraphURI,
			MIMEType: "application/json",
			Text:     text,
		},
	}, nil
}
