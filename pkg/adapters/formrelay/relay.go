// Package formrelay delivers leads to a third-party form relay
// (Web3Forms, Formspree and similar) as a form-encoded POST.
package formrelay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aretw0/leadchat/internal/logging"
	"github.com/aretw0/leadchat/pkg/domain"
)

// DeliveryError describes a relay response or transport failure.
type DeliveryError struct {
	StatusCode int // zero for transport errors
	Retryable  bool
	Err        error
}

func (e *DeliveryError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("form relay returned %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("form relay unreachable: %v", e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// Client implements ports.LeadDeliverer.
type Client struct {
	endpoint   string
	accessKey  string
	fromName   string
	httpClient *http.Client
	attempts   int
	backoff    time.Duration
	logger     *slog.Logger
}

// Option configures the Client.
type Option func(*Client)

// WithAccessKey sets the relay's access key field.
func WithAccessKey(key string) Option {
	return func(c *Client) { c.accessKey = key }
}

// WithFromName sets the sender name shown in the relay's notification.
func WithFromName(name string) Option {
	return func(c *Client) { c.fromName = name }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithAttempts sets how many times a retryable failure is tried (default 2).
func WithAttempts(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.attempts = n
		}
	}
}

// WithBackoff sets the pause between attempts (default 500ms).
func WithBackoff(d time.Duration) Option {
	return func(c *Client) { c.backoff = d }
}

// WithLogger configures a logger for retries.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New creates a relay client posting to endpoint.
func New(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{},
		attempts:   2,
		backoff:    500 * time.Millisecond,
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Deliver posts the lead. 2xx is success; 4xx fails immediately; network
// errors and 5xx are retried until attempts run out or ctx is done.
func (c *Client) Deliver(ctx context.Context, lead *domain.LeadRecord) error {
	form, err := c.Form(lead)
	if err != nil {
		return err
	}
	body := form.Encode()

	var lastErr error
	for i := 0; i < c.attempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.backoff):
			}
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		err := c.post(ctx, body)
		if err == nil {
			return nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		lastErr = err

		var derr *DeliveryError
		if errors.As(err, &derr) && !derr.Retryable {
			return err
		}
		c.logger.Debug("form relay attempt failed", "attempt", i+1, "err", err)
	}
	return lastErr
}

func (c *Client) post(ctx context.Context, body string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(body))
	if err != nil {
		return &DeliveryError{Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &DeliveryError{Retryable: true, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return &DeliveryError{
		StatusCode: resp.StatusCode,
		Retryable:  resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests,
		Err:        errors.New(strings.TrimSpace(string(snippet))),
	}
}

// Form builds the relay payload for a lead.
func (c *Client) Form(lead *domain.LeadRecord) (url.Values, error) {
	blob, err := json.Marshal(lead.ConversationData)
	if err != nil {
		return nil, fmt.Errorf("failed to encode conversation data: %w", err)
	}

	form := url.Values{}
	form.Set(domain.FieldName, lead.Fields.Name)
	form.Set(domain.FieldEmail, lead.Fields.Email)
	form.Set(domain.FieldCompany, lead.Fields.Company)
	form.Set(domain.FieldPhone, lead.Fields.Phone)
	form.Set("subject", lead.Subject())
	form.Set("message", lead.Summary())
	form.Set("conversation_data", string(blob))
	if lead.LeadContext != "" {
		form.Set("lead_context", lead.LeadContext)
	}
	if c.accessKey != "" {
		form.Set("access_key", c.accessKey)
	}
	if c.fromName != "" {
		form.Set("from_name", c.fromName)
	}
	return form, nil
}
