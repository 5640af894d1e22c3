package process

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/aretw0/leadchat/internal/logging"
	"github.com/aretw0/leadchat/pkg/domain"
)

// EnvPrefix prefixes the variables describing the lead.
const EnvPrefix = "LEADCHAT_LEAD_"

// waitDelay bounds how long output pipes are drained after the command is killed.
const waitDelay = time.Second

// Deliverer implements ports.LeadDeliverer by running a local command.
// The lead is written to stdin as JSON; a zero exit status is success.
// The command and its arguments are fixed by configuration; lead data only
// reaches the process through stdin and environment variables.
type Deliverer struct {
	cfg    Config
	logger *slog.Logger
}

// Option configures the Deliverer.
type Option func(*Deliverer)

// WithLogger configures a logger for command failures.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Deliverer) {
		d.logger = logger
	}
}

// NewDeliverer creates a Deliverer for cfg.
func NewDeliverer(cfg Config, opts ...Option) *Deliverer {
	d := &Deliverer{
		cfg:    cfg,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Deliver runs the command once for lead.
func (d *Deliverer) Deliver(ctx context.Context, lead *domain.LeadRecord) error {
	if d.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.cfg.Timeout)
		defer cancel()
	}

	payload, err := json.Marshal(lead)
	if err != nil {
		return fmt.Errorf("encode lead: %w", err)
	}

	cmd := exec.CommandContext(ctx, d.cfg.Command, d.cfg.Args...)
	cmd.Dir = d.cfg.Dir
	cmd.WaitDelay = waitDelay
	cmd.Stdin = bytes.NewReader(payload)
	cmd.Env = append(cmd.Environ(), d.env(lead)...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("delivery command: %w", ctx.Err())
		}
		msg := strings.TrimSpace(stderr.String())
		d.logger.Warn("delivery command failed", "command", d.cfg.Command, "lead_context", lead.LeadContext, "err", err)
		if msg != "" {
			return fmt.Errorf("delivery command failed: %w: %s", err, msg)
		}
		return fmt.Errorf("delivery command failed: %w", err)
	}
	return nil
}

func (d *Deliverer) env(lead *domain.LeadRecord) []string {
	env := make([]string, 0, len(d.cfg.Environment)+7)
	for k, v := range d.cfg.Environment {
		env = append(env, k+"="+v)
	}
	vars := map[string]string{
		"SESSION_ID": lead.SessionID,
		"CONTEXT":    lead.LeadContext,
		"NAME":       lead.Fields.Name,
		"EMAIL":      lead.Fields.Email,
		"COMPANY":    lead.Fields.Company,
		"PHONE":      lead.Fields.Phone,
		"SUBJECT":    lead.Subject(),
	}
	for k, v := range vars {
		env = append(env, EnvPrefix+k+"="+v)
	}
	return env
}
