package runner

import (
	"context"

	"github.com/aretw0/leadchat/pkg/domain"
)

// IOHandler defines the strategy for interacting with the user.
type IOHandler interface {
	// Say presents one bot transcript entry together with its options.
	Say(ctx context.Context, entry domain.TranscriptEntry) error

	// Prompt reads one line of input after showing label.
	Prompt(ctx context.Context, label string) (string, error)

	// SystemOutput presents a meta-message (status, validation feedback).
	SystemOutput(ctx context.Context, msg string) error
}

// ContentRenderer transforms bot messages before output (e.g. markdown to ANSI).
type ContentRenderer func(string) (string, error)

// Engine is the subset of the conversation engine the runner drives.
type Engine interface {
	SessionID() string
	Start(ctx context.Context) domain.View
	Reset(ctx context.Context) domain.View
	View() domain.View
	ChooseIndex(ctx context.Context, i int) (domain.Turn, error)
	SubmitLead(ctx context.Context, fields domain.LeadFields) (domain.LeadResult, error)
	IsNavigation(option domain.Option) (domain.NavigationAction, bool)
	Snapshot() *domain.Conversation
	Restore(conv *domain.Conversation) error
}
