package cli

import (
	"context"
	"fmt"

	"github.com/aretw0/leadchat"
	"github.com/aretw0/leadchat/internal/logging"
	"github.com/aretw0/leadchat/internal/presentation/tui"
	"github.com/aretw0/leadchat/pkg/domain"
	"github.com/aretw0/leadchat/pkg/runner"
)

// RunChat runs one conversation in the terminal. With a session ID the
// conversation is persisted in the session directory and resumed next time.
func RunChat(ctx context.Context, opts ChatOptions) error {
	logger := logging.NewNop()
	if opts.Debug {
		var err error
		if logger, err = createLogger(opts.Config.LogLevel, true); err != nil {
			return err
		}
	}

	in, out := opts.stdin(), opts.stdout()
	interactive := isTerminal(out) && !opts.Plain
	if interactive {
		tui.PrintBanner(out, "Portfolio assistant "+leadchat.Version)
	}

	var hooks []domain.LifecycleHooks
	if opts.Debug {
		hooks = append(hooks, createDebugHooks(logger))
	}
	bot, err := createBot(opts.Config, logger, hooks...)
	if err != nil {
		return err
	}

	handlerOpts := []runner.TextHandlerOption{}
	if interactive {
		handlerOpts = append(handlerOpts, runner.WithTextHandlerRenderer(tui.NewRenderer()))
	}
	runnerOpts := []runner.Option{
		runner.WithLogger(logger),
		runner.WithInputHandler(runner.NewTextHandler(in, out, handlerOpts...)),
	}

	if opts.SessionID != "" {
		store, closeStore, err := OpenStore(ctx, opts.Config)
		if err != nil {
			return err
		}
		defer closeStore()
		if opts.Fresh {
			if err := store.Delete(ctx, opts.SessionID); err != nil {
				return fmt.Errorf("reset session %s: %w", opts.SessionID, err)
			}
		}
		runnerOpts = append(runnerOpts, runner.WithStore(store), runner.WithSessionID(opts.SessionID))
		printSystemMessage(out, "Session '%s' active.", opts.SessionID)
	}

	r := runner.NewRunner(runnerOpts...)
	runErr := r.Run(ctx, bot.NewEngine(opts.SessionID))
	if ctx.Err() != nil && runErr == nil {
		runErr = ctx.Err()
	}
	if isInterrupted(runErr) {
		fmt.Fprintln(out)
		printSystemMessage(out, "Bye!")
	}
	return handleExecutionError(runErr)
}
