package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/leadchat/internal/logging"
	"github.com/aretw0/leadchat/pkg/domain"
	"golang.org/x/term"
)

// createLogger configures the application logger on Stderr.
// Debug wins over the configured level.
func createLogger(level string, debug bool) (*slog.Logger, error) {
	if debug {
		return logging.New(slog.LevelDebug), nil
	}
	lvl, err := logging.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("config LEADCHAT_LOG_LEVEL: %w", err)
	}
	return logging.New(lvl), nil
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func createDebugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter: func(ctx context.Context, e *domain.NodeEvent) {
			logger.Debug("Enter Node", "session_id", e.SessionID, "node_id", e.NodeID)
		},
		OnChoice: func(ctx context.Context, e *domain.ChoiceEvent) {
			logger.Debug("Choice", "session_id", e.SessionID, "from", e.FromNodeID, "to", e.ToNodeID, "value", e.Value)
		},
		OnLeadCapture: func(ctx context.Context, e *domain.LeadEvent) {
			logger.Debug("Lead Form", "session_id", e.SessionID, "lead_context", e.LeadContext)
		},
		OnLeadDelivered: func(ctx context.Context, e *domain.LeadEvent) {
			logger.Debug("Lead Delivered", "session_id", e.SessionID, "duration", e.Duration)
		},
		OnLeadFailed: func(ctx context.Context, e *domain.LeadEvent) {
			logger.Debug("Lead Failed", "session_id", e.SessionID, "duration", e.Duration, "err", e.Err)
		},
		OnReset: func(ctx context.Context, e *domain.EventBase) {
			logger.Debug("Reset", "session_id", e.SessionID)
		},
	}
}

func isInterrupted(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, io.EOF)
}

func handleExecutionError(err error) error {
	if err == nil || isInterrupted(err) {
		return nil // Exit 0 for interruptions
	}
	return err
}
