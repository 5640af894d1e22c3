package domain

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator"
)

// Field names used in FieldErrors and relay payloads.
const (
	FieldName    = "name"
	FieldEmail   = "email"
	FieldCompany = "company"
	FieldPhone   = "phone"
)

// LeadFields is the contact data typed into the lead form.
type LeadFields struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Company string `json:"company,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

// leadValidator reports fields by their json name. Validate is safe for
// concurrent use and caches struct metadata.
var leadValidator = newLeadValidator()

func newLeadValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		return name
	})
	return v
}

var fieldLabels = map[string]string{
	FieldName:    "Name",
	FieldEmail:   "Email",
	FieldCompany: "Company",
	FieldPhone:   "Phone",
}

// Normalize trims surrounding whitespace from every field.
func (f LeadFields) Normalize() LeadFields {
	return LeadFields{
		Name:    strings.TrimSpace(f.Name),
		Email:   strings.TrimSpace(f.Email),
		Company: strings.TrimSpace(f.Company),
		Phone:   strings.TrimSpace(f.Phone),
	}
}

// Validate returns nil when the fields can be submitted.
func (f LeadFields) Validate() FieldErrors {
	err := leadValidator.Struct(f)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return FieldErrors{"": err.Error()}
	}
	errs := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		errs[fe.Field()] = fieldMessage(fe.Field(), fe.Tag())
	}
	return errs
}

func fieldMessage(field, tag string) string {
	switch tag {
	case "required":
		return fieldLabels[field] + " is required"
	case "email":
		return "Please enter a valid email address"
	}
	return fmt.Sprintf("%s is invalid", fieldLabels[field])
}

// FieldErrors maps a field name to a message meant for inline display.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, fe[k]))
	}
	return "invalid lead: " + strings.Join(parts, "; ")
}

// LeadRecord is what gets handed to the delivery collaborator.
type LeadRecord struct {
	SessionID        string            `json:"session_id"`
	Fields           LeadFields        `json:"fields"`
	ConversationData map[string]string `json:"conversation_data"`
	LeadContext      string            `json:"lead_context,omitempty"`
	SubmittedAt      time.Time         `json:"submitted_at"`
}

// Subject is the one-line title of the lead notification.
func (r *LeadRecord) Subject() string {
	if r.LeadContext == "" {
		return fmt.Sprintf("New chat lead from %s", r.Fields.Name)
	}
	return fmt.Sprintf("New chat lead from %s (%s)", r.Fields.Name, r.LeadContext)
}

// Summary renders the lead as plain text, conversation path sorted by node ID.
func (r *LeadRecord) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\n", r.Fields.Name)
	fmt.Fprintf(&b, "Email: %s\n", r.Fields.Email)
	if r.Fields.Company != "" {
		fmt.Fprintf(&b, "Company: %s\n", r.Fields.Company)
	}
	if r.Fields.Phone != "" {
		fmt.Fprintf(&b, "Phone: %s\n", r.Fields.Phone)
	}
	if r.LeadContext != "" {
		fmt.Fprintf(&b, "Interested in: %s\n", r.LeadContext)
	}

	keys := make([]string, 0, len(r.ConversationData))
	for k := range r.ConversationData {
		if k != KeyLeadContext {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	if len(keys) > 0 {
		b.WriteString("\nConversation:\n")
		for _, k := range keys {
			fmt.Fprintf(&b, "- %s: %s\n", k, r.ConversationData[k])
		}
	}
	return b.String()
}

// LeadOutcome classifies the result of a submission.
type LeadOutcome string

const (
	LeadAccepted  LeadOutcome = "accepted"
	LeadInvalid   LeadOutcome = "invalid"
	LeadFailed    LeadOutcome = "failed"
	LeadDiscarded LeadOutcome = "discarded" // conversation moved on while delivering
)

// LeadResult is the displayable outcome of SubmitLead.
type LeadResult struct {
	Outcome     LeadOutcome      `json:"outcome"`
	FieldErrors FieldErrors      `json:"field_errors,omitempty"`
	Message     string           `json:"message,omitempty"`
	Entry       *TranscriptEntry `json:"entry,omitempty"`
}

// OK reports whether the lead was delivered.
func (r LeadResult) OK() bool { return r.Outcome == LeadAccepted }

// PendingLead ties an in-flight delivery to the conversation generation it
// was prepared in.
type PendingLead struct {
	SessionID  string      `json:"session_id"`
	Generation uint64      `json:"generation"`
	Token      string      `json:"token"`
	Record     *LeadRecord `json:"record"`
}
