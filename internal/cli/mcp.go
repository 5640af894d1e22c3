package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/aretw0/leadchat/pkg/adapters/mcp"
	"github.com/aretw0/leadchat/pkg/domain"
)

// Transports supported by RunMCP.
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
)

// RunMCP exposes the chat tools over MCP. Logs always go to Stderr so
// they never corrupt JSON-RPC on Stdout.
func RunMCP(ctx context.Context, opts MCPOptions) error {
	logger, err := createLogger(opts.Config.LogLevel, opts.Debug)
	if err != nil {
		return err
	}

	var hooks []domain.LifecycleHooks
	if opts.Debug {
		hooks = append(hooks, createDebugHooks(logger))
	}
	bot, err := createBot(opts.Config, logger, hooks...)
	if err != nil {
		return err
	}

	stores, err := createStore(ctx, opts.Config)
	if err != nil {
		return err
	}
	defer stores.Close()

	sessions := bot.Sessions(stores.Store)
	srv := mcp.NewServer(sessions, mcp.WithLogger(logger))

	switch opts.Transport {
	case "", TransportStdio:
		logger.Info("Starting leadchat MCP Server (Stdio)...")
		return srv.ServeStdio()
	case TransportSSE:
		logger.Info("Starting leadchat MCP Server (SSE)", "address", opts.Config.Addr)
		if err := srv.ServeSSE(ctx, opts.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		logger.Info("MCP Server stopped gracefully")
		return nil
	default:
		return fmt.Errorf("unknown transport %q, supported: stdio, sse", opts.Transport)
	}
}
