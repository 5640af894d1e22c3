package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/aretw0/leadchat/internal/logging"
	"github.com/aretw0/leadchat/pkg/domain"
	"github.com/aretw0/leadchat/pkg/ports"
)

// Commands recognised at every prompt.
const (
	CommandRestart = "restart"
	CommandExit    = "exit"
	CommandQuit    = "quit"
)

var errQuit = errors.New("quit")

// Runner handles the terminal chat loop using the provided IO.
type Runner struct {
	// Handler is the strategy for IO. If nil, a TextHandler on Stdin/Stdout is used.
	Handler IOHandler

	// Logger is used for internal debug logging.
	// If nil, a no-op logger is used.
	Logger *slog.Logger

	// Store is the persistence adapter. If nil, sessions are ephemeral.
	Store     ports.ConversationStore
	SessionID string

	// Renderer is applied by the default TextHandler.
	Renderer ContentRenderer

	shown int // transcript entries already presented
}

// NewRunner creates a Runner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{Logger: logging.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run drives the conversation until the user exits, input ends or ctx is
// canceled. A session found in the Store is resumed.
func (r *Runner) Run(ctx context.Context, engine Engine) error {
	handler := r.resolveHandler()

	view, err := r.resolveInitialView(ctx, handler, engine)
	if err != nil {
		return err
	}

	for {
		if err := r.present(ctx, handler, view); err != nil {
			return fmt.Errorf("output error: %w", err)
		}

		var next domain.View
		switch {
		case view.ShowLeadForm:
			next, err = r.leadStep(ctx, handler, engine)
		case len(view.Options) == 0:
			next, err = r.endStep(ctx, handler, engine, view)
		default:
			next, err = r.choiceStep(ctx, handler, engine, view)
		}

		if errors.Is(err, errQuit) || errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
			return r.save(context.WithoutCancel(ctx), engine)
		}
		if err != nil {
			return err
		}

		if err := r.save(ctx, engine); err != nil {
			return fmt.Errorf("critical persistence error: %w", err)
		}
		view = next
	}
}

func (r *Runner) resolveHandler() IOHandler {
	if r.Handler == nil {
		r.Handler = NewTextHandler(os.Stdin, os.Stdout, WithTextHandlerRenderer(r.Renderer))
	}
	return r.Handler
}

func (r *Runner) resolveInitialView(ctx context.Context, h IOHandler, engine Engine) (domain.View, error) {
	if r.Store == nil || r.SessionID == "" {
		return engine.Start(ctx), nil
	}

	conv, err := r.Store.Load(ctx, r.SessionID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return engine.Start(ctx), nil
	}
	if err != nil {
		return domain.View{}, fmt.Errorf("failed to load session %s: %w", r.SessionID, err)
	}
	if err := engine.Restore(conv); err != nil {
		return domain.View{}, fmt.Errorf("failed to resume session %s: %w", r.SessionID, err)
	}

	view := engine.View()
	switch view.Status {
	case domain.StatusIdle:
		return engine.Start(ctx), nil
	case domain.StatusSubmitting:
		// A previous process died mid-delivery; the outcome is unknown.
		return engine.Reset(ctx), nil
	}

	r.shown = max(len(view.Transcript)-1, 0)
	r.Logger.Debug("session resumed", "session_id", r.SessionID, "node_id", view.NodeID)
	return view, h.SystemOutput(ctx, "Resuming your conversation.")
}

// present outputs the bot entries not shown yet.
func (r *Runner) present(ctx context.Context, h IOHandler, view domain.View) error {
	if r.shown > len(view.Transcript) {
		r.shown = 0
	}
	for _, entry := range view.Transcript[r.shown:] {
		if entry.Sender != domain.SenderBot {
			continue
		}
		if err := h.Say(ctx, entry); err != nil {
			return err
		}
	}
	r.shown = len(view.Transcript)
	return nil
}

func (r *Runner) restart(ctx context.Context, engine Engine) domain.View {
	r.shown = 0
	return engine.Reset(ctx)
}

// prompt reads one line and applies the global commands.
func (r *Runner) prompt(ctx context.Context, h IOHandler, engine Engine, label string) (string, *domain.View, error) {
	input, err := h.Prompt(ctx, label)
	if err != nil {
		return "", nil, err
	}
	switch strings.ToLower(input) {
	case CommandExit, CommandQuit:
		return "", nil, errQuit
	case CommandRestart:
		view := r.restart(ctx, engine)
		return "", &view, nil
	}
	return input, nil, nil
}

func (r *Runner) choiceStep(ctx context.Context, h IOHandler, engine Engine, view domain.View) (domain.View, error) {
	input, restarted, err := r.prompt(ctx, h, engine, "")
	if err != nil || restarted != nil {
		return deref(restarted), err
	}

	idx := matchOption(view.Options, input)
	if idx < 0 {
		return view, h.SystemOutput(ctx, fmt.Sprintf("Please pick a number between 1 and %d.", len(view.Options)))
	}

	opt := view.Options[idx]
	if nav, ok := engine.IsNavigation(opt); ok {
		if err := h.SystemOutput(ctx, "Opening "+nav.URL); err != nil {
			return view, err
		}
		if opt.NextID == "" {
			return view, nil
		}
	}

	if _, err := engine.ChooseIndex(ctx, idx); err != nil {
		return view, fmt.Errorf("choice error: %w", err)
	}
	return engine.View(), nil
}

// matchOption accepts a 1-based number, a label or a value.
func matchOption(options []domain.Option, input string) int {
	if n, err := strconv.Atoi(input); err == nil {
		if n < 1 || n > len(options) {
			return -1
		}
		return n - 1
	}
	for i, opt := range options {
		if strings.EqualFold(opt.Label, input) || strings.EqualFold(opt.Value, input) {
			return i
		}
	}
	return -1
}

var leadPrompts = []struct {
	label string
	field func(*domain.LeadFields) *string
}{
	{"Name", func(f *domain.LeadFields) *string { return &f.Name }},
	{"Email", func(f *domain.LeadFields) *string { return &f.Email }},
	{"Company (optional)", func(f *domain.LeadFields) *string { return &f.Company }},
	{"Phone (optional)", func(f *domain.LeadFields) *string { return &f.Phone }},
}

var fieldOrder = []string{domain.FieldName, domain.FieldEmail, domain.FieldCompany, domain.FieldPhone}

func (r *Runner) leadStep(ctx context.Context, h IOHandler, engine Engine) (domain.View, error) {
	var fields domain.LeadFields
	for _, p := range leadPrompts {
		input, restarted, err := r.prompt(ctx, h, engine, p.label)
		if err != nil || restarted != nil {
			return deref(restarted), err
		}
		*p.field(&fields) = input
	}

	for {
		if err := h.SystemOutput(ctx, "Sending your details..."); err != nil {
			return domain.View{}, err
		}
		res, err := engine.SubmitLead(ctx, fields)
		if err != nil {
			return domain.View{}, fmt.Errorf("submit error: %w", err)
		}

		switch res.Outcome {
		case domain.LeadInvalid:
			for _, k := range fieldOrder {
				if msg, ok := res.FieldErrors[k]; ok {
					if err := h.SystemOutput(ctx, msg); err != nil {
						return domain.View{}, err
					}
				}
			}
			return engine.View(), nil
		case domain.LeadFailed:
			if err := h.SystemOutput(ctx, res.Message); err != nil {
				return domain.View{}, err
			}
			answer, restarted, err := r.prompt(ctx, h, engine, "Try again? [Y/n]")
			if err != nil || restarted != nil {
				return deref(restarted), err
			}
			if a := strings.ToLower(answer); a == "n" || a == "no" {
				return r.restart(ctx, engine), nil
			}
			continue
		}
		return engine.View(), nil
	}
}

func (r *Runner) endStep(ctx context.Context, h IOHandler, engine Engine, view domain.View) (domain.View, error) {
	if err := h.SystemOutput(ctx, "Type restart to begin again, or exit to leave."); err != nil {
		return view, err
	}
	_, restarted, err := r.prompt(ctx, h, engine, "")
	if err != nil || restarted != nil {
		return deref(restarted), err
	}
	return view, nil
}

func (r *Runner) save(ctx context.Context, engine Engine) error {
	if r.Store == nil || r.SessionID == "" {
		return nil
	}
	conv := engine.Snapshot()
	if err := r.Store.Save(ctx, r.SessionID, conv); err != nil {
		return err
	}
	r.Logger.Debug("conversation saved", "session_id", r.SessionID, "node_id", conv.CurrentNodeID)
	return nil
}

func deref(v *domain.View) domain.View {
	if v == nil {
		return domain.View{}
	}
	return *v
}
