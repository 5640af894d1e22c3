package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLeadFields_Validate(t *testing.T) {
	tests := []struct {
		name   string
		fields LeadFields
		want   FieldErrors
	}{
		{"valid", LeadFields{Name: "Ada", Email: "ada@example.com"}, nil},
		{"missing name", LeadFields{Email: "ada@example.com"}, FieldErrors{FieldName: "Name is required"}},
		{"missing email", LeadFields{Name: "Ada"}, FieldErrors{FieldEmail: "Email is required"}},
		{"malformed email", LeadFields{Name: "Ada", Email: "ada@example"}, FieldErrors{FieldEmail: "Please enter a valid email address"}},
		{"email with space", LeadFields{Name: "Ada", Email: "ada lovelace@example.com"}, FieldErrors{FieldEmail: "Please enter a valid email address"}},
		{"both missing", LeadFields{}, FieldErrors{FieldName: "Name is required", FieldEmail: "Email is required"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.fields.Validate())
		})
	}
}

func TestLeadFields_Normalize(t *testing.T) {
	f := LeadFields{Name: "  Ada ", Email: " ada@example.com\n", Company: "\tACME"}.Normalize()
	assert.Equal(t, LeadFields{Name: "Ada", Email: "ada@example.com", Company: "ACME"}, f)
}

func TestFieldErrors_Error(t *testing.T) {
	err := FieldErrors{FieldName: "Name is required", FieldEmail: "Email is required"}
	assert.Equal(t, "invalid lead: email: Email is required; name: Name is required", err.Error())
}

func TestLeadRecord_SubjectAndSummary(t *testing.T) {
	r := &LeadRecord{
		SessionID:        "s1",
		Fields:           LeadFields{Name: "Ada", Email: "ada@example.com", Phone: "555"},
		ConversationData: map[string]string{"welcome": "services", "services": "web", KeyLeadContext: "web_development"},
		LeadContext:      "web_development",
		SubmittedAt:      time.Unix(0, 0),
	}

	assert.Equal(t, "New chat lead from Ada (web_development)", r.Subject())
	assert.Equal(t, "Name: Ada\n"+
		"Email: ada@example.com\n"+
		"Phone: 555\n"+
		"Interested in: web_development\n"+
		"\nConversation:\n"+
		"- services: web\n"+
		"- welcome: services\n", r.Summary())

	r.LeadContext = ""
	assert.Equal(t, "New chat lead from Ada", r.Subject())
}
