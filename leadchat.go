package leadchat

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/leadchat/internal/flows"
	"github.com/aretw0/leadchat/internal/logging"
	"github.com/aretw0/leadchat/internal/runtime"
	"github.com/aretw0/leadchat/pkg/adapters/file"
	loamAdapter "github.com/aretw0/leadchat/pkg/adapters/loam"
	"github.com/aretw0/leadchat/pkg/domain"
	"github.com/aretw0/leadchat/pkg/ports"
	"github.com/aretw0/leadchat/pkg/session"
)

// Version is the release version, overridden at build time with
// -ldflags "-X github.com/aretw0/leadchat.Version=...".
var Version = "0.1.0-dev"

// Engine drives a single conversation.
type Engine = runtime.Engine

// Bot is the high-level entry point for the library. It owns a validated
// graph and builds engines (one per conversation) or a session manager
// (for stateless hosts) that share the same configuration.
type Bot struct {
	graph       *domain.Graph
	loader      ports.GraphLoader
	deliverer   ports.LeadDeliverer
	hooks       domain.LifecycleHooks
	logger      *slog.Logger
	runtimeOpts []runtime.Option
	Name        string
}

// Option defines a functional option for configuring the Bot.
type Option func(*Bot)

// WithLoader injects a custom GraphLoader. The flow path is then only a label.
func WithLoader(l ports.GraphLoader) Option {
	return func(b *Bot) {
		b.loader = l
	}
}

// WithGraph uses an already validated graph.
func WithGraph(g *domain.Graph) Option {
	return func(b *Bot) {
		b.graph = g
	}
}

// WithDeliverer configures where submitted leads go.
func WithDeliverer(d ports.LeadDeliverer) Option {
	return func(b *Bot) {
		b.deliverer = d
	}
}

// WithLifecycleHooks registers observability hooks. Repeated calls merge.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(b *Bot) {
		b.hooks = b.hooks.Merge(hooks)
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bot) {
		b.logger = logger
	}
}

// WithDeliveryTimeout bounds each lead delivery attempt.
func WithDeliveryTimeout(d time.Duration) Option {
	return func(b *Bot) {
		b.runtimeOpts = append(b.runtimeOpts, runtime.WithDeliveryTimeout(d))
	}
}

// WithContactFallback names a direct contact in delivery failure messages.
func WithContactFallback(contact string) Option {
	return func(b *Bot) {
		b.runtimeOpts = append(b.runtimeOpts, runtime.WithContactFallback(contact))
	}
}

// New loads and validates the flow at flowPath: a directory of Markdown
// nodes (loam), a YAML or JSON flow file, or, when empty, the embedded
// portfolio flow.
func New(flowPath string, opts ...Option) (*Bot, error) {
	bot := &Bot{}
	for _, opt := range opts {
		opt(bot)
	}
	if bot.logger == nil {
		bot.logger = logging.NewNop()
	}

	if bot.graph == nil {
		if bot.loader == nil {
			loader, name, err := resolveLoader(flowPath)
			if err != nil {
				return nil, err
			}
			bot.loader = loader
			bot.Name = name
		} else if flowPath != "" {
			bot.Name = filepath.Base(flowPath)
		}

		g, err := ports.LoadGraph(context.Background(), bot.loader)
		if err != nil {
			return nil, err
		}
		bot.graph = g
	}

	if bot.Name != "" {
		bot.logger = bot.logger.With("graph", bot.Name)
	}
	return bot, nil
}

func resolveLoader(flowPath string) (ports.GraphLoader, string, error) {
	if flowPath == "" {
		return flows.Loader(), flows.PortfolioName, nil
	}

	absPath, err := filepath.Abs(flowPath)
	if err != nil {
		return nil, "", fmt.Errorf("invalid path: %w", err)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, "", fmt.Errorf("flow %s: %w", flowPath, err)
	}
	name := filepath.Base(absPath)

	if info.IsDir() {
		l, err := loamAdapter.Open(absPath)
		if err != nil {
			return nil, "", err
		}
		return l, name, nil
	}

	switch strings.ToLower(filepath.Ext(absPath)) {
	case ".yaml", ".yml", ".json":
		return file.NewLoader(absPath), name, nil
	}
	return nil, "", fmt.Errorf("flow %s: unsupported file type (want a directory, .yaml, .yml or .json)", flowPath)
}

// Graph returns the validated conversation graph.
func (b *Bot) Graph() *domain.Graph { return b.graph }

// Logger returns the Bot logger.
func (b *Bot) Logger() *slog.Logger { return b.logger }

// EngineOptions returns the runtime options every conversation shares.
func (b *Bot) EngineOptions() []runtime.Option {
	opts := []runtime.Option{
		runtime.WithLogger(b.logger),
		runtime.WithLifecycleHooks(b.hooks),
	}
	return append(opts, b.runtimeOpts...)
}

// NewEngine creates an engine for one conversation. An empty sessionID
// gets a generated one.
func (b *Bot) NewEngine(sessionID string) *Engine {
	opts := b.EngineOptions()
	if sessionID != "" {
		opts = append(opts, runtime.WithSessionID(sessionID))
	}
	return runtime.NewEngine(b.graph, b.deliverer, opts...)
}

// Sessions creates a session manager over store for stateless hosts.
func (b *Bot) Sessions(store ports.ConversationStore, opts ...session.Option) *session.Manager {
	base := []session.Option{
		session.WithLogger(b.logger),
		session.WithEngineOptions(b.runtimeOpts...),
		session.WithEngineOptions(runtime.WithLifecycleHooks(b.hooks)),
	}
	return session.NewManager(b.graph, store, b.deliverer, append(base, opts...)...)
}
