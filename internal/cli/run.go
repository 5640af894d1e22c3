package cli

import (
	"io"
	"os"

	"github.com/aretw0/leadchat/internal/config"
)

// Options carries the settings shared by every command.
type Options struct {
	Config config.Config
	Debug  bool

	In  io.Reader
	Out io.Writer
}

func (o Options) stdin() io.Reader {
	if o.In == nil {
		return os.Stdin
	}
	return o.In
}

func (o Options) stdout() io.Writer {
	if o.Out == nil {
		return os.Stdout
	}
	return o.Out
}

// ChatOptions configures RunChat.
type ChatOptions struct {
	Options
	SessionID string
	Fresh     bool
	Plain     bool
}

// ServeOptions configures RunServe.
type ServeOptions struct {
	Options
}

// MCPOptions configures RunMCP.
type MCPOptions struct {
	Options
	Transport string
}
