package runtime

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/leadchat/pkg/domain"
)

var errNoDeliverer = errors.New("no lead deliverer configured")

// SubmitLead validates the fields, delivers the lead and applies the outcome.
//
// Validation and delivery failures are reported through the LeadResult.
// The returned error is reserved for misuse: ErrInvalidState when no lead form
// is shown, ErrSubmissionInFlight while another submission is pending.
// The engine lock is not held during delivery, so Reset is never blocked;
// if the conversation moves on meanwhile, the result is LeadDiscarded.
func (e *Engine) SubmitLead(ctx context.Context, fields domain.LeadFields) (domain.LeadResult, error) {
	pending, res, err := e.PrepareLead(fields)
	if err != nil || pending == nil {
		return res, err
	}
	return e.ResolveLead(ctx, pending, e.Deliver(ctx, pending)), nil
}

// PrepareLead is the first phase of SubmitLead. On valid fields it moves the
// conversation to submitting and returns the pending submission; on invalid
// fields it returns a nil pending lead and a LeadInvalid result without
// touching the conversation.
func (e *Engine) PrepareLead(fields domain.LeadFields) (*domain.PendingLead, domain.LeadResult, error) {
	e.mu.Lock()
	defer e.unlock()

	c := e.conv
	switch c.Status {
	case domain.StatusAwaitingLeadInput:
	case domain.StatusSubmitting:
		return nil, domain.LeadResult{}, domain.ErrSubmissionInFlight
	default:
		return nil, domain.LeadResult{}, fmt.Errorf("submit lead while %s: %w", c.Status, domain.ErrInvalidState)
	}

	fields = fields.Normalize()
	if errs := fields.Validate(); errs != nil {
		return nil, domain.LeadResult{Outcome: domain.LeadInvalid, FieldErrors: errs}, nil
	}

	data := make(map[string]string, len(c.Data))
	for k, v := range c.Data {
		data[k] = v
	}

	ts := e.now()
	pending := &domain.PendingLead{
		SessionID:  e.sessionID,
		Generation: c.Generation,
		Token:      e.newID(),
		Record: &domain.LeadRecord{
			SessionID:        e.sessionID,
			Fields:           fields,
			ConversationData: data,
			LeadContext:      c.Data[domain.KeyLeadContext],
			SubmittedAt:      ts,
		},
	}

	c.Status = domain.StatusSubmitting
	c.PendingLead = pending.Token
	c.UpdatedAt = ts

	e.logger.Debug("lead prepared", "lead_context", pending.Record.LeadContext)
	return pending, domain.LeadResult{}, nil
}

// Deliver hands the pending lead to the deliverer, bounded by the delivery
// timeout. It does not touch the conversation. A deliverer that ignores ctx
// is abandoned when the deadline passes.
func (e *Engine) Deliver(ctx context.Context, pending *domain.PendingLead) error {
	if e.deliverer == nil {
		return errNoDeliverer
	}

	dctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- e.deliverer.Deliver(dctx, pending.Record)
	}()

	select {
	case err := <-done:
		return err
	case <-dctx.Done():
		return fmt.Errorf("lead delivery: %w", dctx.Err())
	}
}

// ResolveLead is the last phase of SubmitLead: it applies the delivery
// outcome if the pending lead still belongs to the current conversation.
func (e *Engine) ResolveLead(ctx context.Context, pending *domain.PendingLead, deliveryErr error) domain.LeadResult {
	e.mu.Lock()
	defer e.unlock()

	c := e.conv
	if pending == nil || c.Status != domain.StatusSubmitting ||
		c.Generation != pending.Generation || c.PendingLead != pending.Token {
		e.logger.Debug("stale lead result discarded")
		return domain.LeadResult{Outcome: domain.LeadDiscarded}
	}

	ts := e.now()
	c.PendingLead = ""
	c.UpdatedAt = ts
	ev := &domain.LeadEvent{
		EventBase:   domain.EventBase{Timestamp: ts, SessionID: e.sessionID},
		NodeID:      c.CurrentNodeID,
		LeadContext: pending.Record.LeadContext,
		Duration:    ts.Sub(pending.Record.SubmittedAt),
	}

	if deliveryErr != nil {
		c.Status = domain.StatusAwaitingLeadInput

		e.logger.Warn("lead delivery failed", "lead_context", ev.LeadContext, "err", deliveryErr)
		if e.hooks.OnLeadFailed != nil {
			ev.Type = domain.EventLeadFailed
			ev.Err = deliveryErr
			e.queue(func() { e.hooks.OnLeadFailed(ctx, ev) })
		}
		return domain.LeadResult{Outcome: domain.LeadFailed, Message: e.failureMessage}
	}

	thanks, _ := e.graph.Node(e.graph.ThanksID())
	entry := e.botEntry(thanks.Message, thanks.Options, ts)
	c.Transcript = append(c.Transcript, entry)
	c.CurrentNodeID = thanks.ID
	c.Status = domain.StatusTerminalThanked

	e.logger.Info("lead delivered", "lead_context", ev.LeadContext)
	if e.hooks.OnLeadDelivered != nil {
		ev.Type = domain.EventLeadDelivered
		e.queue(func() { e.hooks.OnLeadDelivered(ctx, ev) })
	}
	e.emitNodeEnter(ctx, thanks.ID, ts)

	return domain.LeadResult{Outcome: domain.LeadAccepted, Entry: &entry}
}
