package runner

import (
	"strings"
	"testing"

	"github.com/aretw0/leadchat/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeInput_SizeLimit(t *testing.T) {
	limit := DefaultMaxInputSize

	tests := []struct {
		name      string
		inputSize int
		wantErr   bool
	}{
		{"Under Limit", limit - 1, false},
		{"Exact Limit", limit, false},
		{"Over Limit", limit + 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SanitizeInput(strings.Repeat("a", tt.inputSize))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInputTooLarge)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSanitizeInput_ControlChars(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Normal Text", "Hello World", "Hello World"},
		{"Safe Controls", "Line1\nLine2\tTabbed", "Line1\nLine2\tTabbed"},
		{"ANSI Code", "\x1b[31mRed\x1b[0m", "[31mRed[0m"},
		{"Null Byte", "Null\x00Byte", "NullByte"},
		{"Bell", "Ding\x07", "Ding"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeInput(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestSanitizeInput_InvalidUTF8(t *testing.T) {
	_, err := SanitizeInput("bad \xff byte")
	assert.ErrorIs(t, err, ErrInvalidUTF8)
}

func TestSanitizeInput_EnvOverride(t *testing.T) {
	t.Setenv(EnvMaxInputSize, "8")

	_, err := SanitizeInput("123456789")
	assert.ErrorIs(t, err, ErrInputTooLarge)

	got, err := SanitizeInput("12345678")
	require.NoError(t, err)
	assert.Equal(t, "12345678", got)

	t.Setenv(EnvMaxInputSize, "nonsense")
	assert.Equal(t, DefaultMaxInputSize, MaxInputSize())
}

func TestSanitizeLead_FoldsLineBreaks(t *testing.T) {
	got, err := SanitizeLead(domain.LeadFields{
		Name:    "  Ada\r\nBcc: spam@example.com ",
		Email:   "ada@example.com\n",
		Company: "Analytical\tEngines\x00",
		Phone:   "",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ada Bcc: spam@example.com", got.Name)
	assert.Equal(t, "ada@example.com", got.Email)
	assert.Equal(t, "Analytical Engines", got.Company)
	assert.Empty(t, got.Phone)
}

func TestSanitizeLead_RejectsOversizedField(t *testing.T) {
	t.Setenv(EnvMaxInputSize, "8")

	_, err := SanitizeLead(domain.LeadFields{Name: "Ada", Company: "far too long"})
	assert.ErrorIs(t, err, ErrInputTooLarge)

	_, err = SanitizeLead(domain.LeadFields{Email: "bad \xff"})
	assert.ErrorIs(t, err, ErrInvalidUTF8)
}
