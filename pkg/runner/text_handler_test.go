package runner

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/aretw0/leadchat/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextHandler_Say(t *testing.T) {
	out := &bytes.Buffer{}
	h := NewTextHandler(strings.NewReader(""), out, WithTextHandlerRenderer(func(s string) (string, error) {
		return "Rendered: " + s, nil
	}))

	err := h.Say(context.Background(), domain.TranscriptEntry{
		Text:    "Hello",
		Options: []domain.Option{{Label: "Services"}, {Label: "Pricing"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Rendered: Hello\n  1) Services\n  2) Pricing\n", out.String())
}

func TestTextHandler_Prompt(t *testing.T) {
	out := &bytes.Buffer{}
	h := NewTextHandler(strings.NewReader("  my input \n\x1b[1mbold\n"), out)

	val, err := h.Prompt(context.Background(), "Name")
	require.NoError(t, err)
	assert.Equal(t, "my input", val)

	val, err = h.Prompt(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "[1mbold", val)

	_, err = h.Prompt(context.Background(), "")
	assert.ErrorIs(t, err, io.EOF)
	assert.True(t, strings.HasPrefix(out.String(), "Name> > "))
}

func TestTextHandler_PromptCanceled(t *testing.T) {
	r, _ := io.Pipe()
	h := NewTextHandler(r, io.Discard)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := h.Prompt(ctx, "")
	assert.ErrorIs(t, err, context.Canceled)
}
