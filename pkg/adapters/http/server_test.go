package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/leadchat/pkg/adapters/memory"
	"github.com/aretw0/leadchat/pkg/domain"
	"github.com/aretw0/leadchat/pkg/ports"
	"github.com/aretw0/leadchat/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGraph(t *testing.T) *domain.Graph {
	t.Helper()
	g, err := domain.NewGraph([]domain.Node{
		{ID: "welcome", Message: "Hi", Options: []domain.Option{
			{Label: "Hire me", NextID: "lead", Value: "hire"},
			{Label: "Portfolio", Value: "view_portfolio"},
		}},
		{ID: "lead", Message: "Details?", LeadCapture: true, LeadContext: "hiring"},
	}, domain.GraphConfig{
		Navigation: []domain.NavigationAction{{Value: "view_portfolio", URL: "/portfolio", NewTab: true}},
	})
	require.NoError(t, err)
	return g
}

type fixture struct {
	handler http.Handler
	streams *StreamManager
}

func newFixture(t *testing.T, d ports.LeadDeliverer, opts ...Option) fixture {
	t.Helper()
	streams := NewStreamManager(nil)
	mgr := session.NewManager(testGraph(t), memory.NewStore(), d, session.WithObserver(streams.Observe))
	return fixture{
		handler: NewHandler(mgr, append([]Option{WithStreams(streams)}, opts...)...),
		streams: streams,
	}
}

func (f fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body == nil {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestServer_ChatFlow(t *testing.T) {
	var got *domain.LeadRecord
	f := newFixture(t, ports.DelivererFunc(func(_ context.Context, lead *domain.LeadRecord) error {
		got = lead
		return nil
	}))

	rec := f.do(t, http.MethodPost, "/chats", StartRequest{SessionID: "s1"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	view := decodeBody[domain.View](t, rec)
	assert.Equal(t, "s1", view.SessionID)
	assert.Len(t, view.Options, 2)

	rec = f.do(t, http.MethodPost, "/chats/s1/choices", ChoiceRequest{Value: "hire"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	choice := decodeBody[ChoiceResponse](t, rec)
	require.NotNil(t, choice.Turn)
	assert.True(t, choice.Turn.LeadCapture)
	assert.True(t, choice.View.ShowLeadForm)

	rec = f.do(t, http.MethodPost, "/chats/s1/lead", domain.LeadFields{Name: "Ada", Email: "ada@example.com"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	lead := decodeBody[LeadResponse](t, rec)
	assert.Equal(t, domain.LeadAccepted, lead.Result.Outcome)
	assert.Equal(t, domain.StatusTerminalThanked, lead.View.Status)
	require.NotNil(t, got)
	assert.Equal(t, "hire", got.ConversationData["welcome"])

	rec = f.do(t, http.MethodGet, "/chats/s1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	// welcome, the choice and its reply, thanks.
	assert.Len(t, decodeBody[domain.View](t, rec).Transcript, 4)

	rec = f.do(t, http.MethodPost, "/chats/s1/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[domain.View](t, rec).Transcript, 1)

	rec = f.do(t, http.MethodDelete, "/chats/s1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = f.do(t, http.MethodGet, "/chats/s1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_StartWithoutBody(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.do(t, http.MethodPost, "/chats", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotEmpty(t, decodeBody[domain.View](t, rec).SessionID)
}

func TestServer_NavigationDoesNotTransition(t *testing.T) {
	f := newFixture(t, nil)
	f.do(t, http.MethodPost, "/chats", StartRequest{SessionID: "s1"})

	index := 1
	rec := f.do(t, http.MethodPost, "/chats/s1/choices", ChoiceRequest{Index: &index})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decodeBody[ChoiceResponse](t, rec)
	require.NotNil(t, resp.Navigation)
	assert.Equal(t, "/portfolio", resp.Navigation.URL)
	assert.True(t, resp.Navigation.NewTab)
	assert.Nil(t, resp.Turn)
	assert.Len(t, resp.View.Transcript, 1)
}

func TestServer_LeadStatusCodes(t *testing.T) {
	f := newFixture(t, ports.DelivererFunc(func(context.Context, *domain.LeadRecord) error {
		return errors.New("relay down")
	}))
	f.do(t, http.MethodPost, "/chats", StartRequest{SessionID: "s1"})

	rec := f.do(t, http.MethodPost, "/chats/s1/lead", domain.LeadFields{Name: "Ada", Email: "ada@example.com"})
	assert.Equal(t, http.StatusConflict, rec.Code, "no lead form yet")

	f.do(t, http.MethodPost, "/chats/s1/choices", ChoiceRequest{Value: "hire"})

	rec = f.do(t, http.MethodPost, "/chats/s1/lead", domain.LeadFields{Name: "", Email: "bad"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	invalid := decodeBody[LeadResponse](t, rec)
	assert.Equal(t, domain.LeadInvalid, invalid.Result.Outcome)
	assert.Contains(t, invalid.Result.FieldErrors, domain.FieldName)
	assert.Contains(t, invalid.Result.FieldErrors, domain.FieldEmail)

	rec = f.do(t, http.MethodPost, "/chats/s1/lead", domain.LeadFields{Name: "Ada", Email: "ada@example.com"})
	require.Equal(t, http.StatusBadGateway, rec.Code)
	failed := decodeBody[LeadResponse](t, rec)
	assert.Equal(t, domain.LeadFailed, failed.Result.Outcome)
	assert.True(t, failed.View.ShowLeadForm)

	rec = f.do(t, http.MethodPost, "/chats/s1/choices", ChoiceRequest{Value: "hire"})
	assert.Equal(t, http.StatusConflict, rec.Code, "choices are refused while the form is shown")
}

func TestServer_SubmissionInFlight(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	f := newFixture(t, ports.DelivererFunc(func(context.Context, *domain.LeadRecord) error {
		close(entered)
		<-release
		return nil
	}))
	f.do(t, http.MethodPost, "/chats", StartRequest{SessionID: "s1"})
	f.do(t, http.MethodPost, "/chats/s1/choices", ChoiceRequest{Value: "hire"})

	done := make(chan int, 1)
	go func() {
		done <- f.do(t, http.MethodPost, "/chats/s1/lead", domain.LeadFields{Name: "Ada", Email: "ada@example.com"}).Code
	}()
	<-entered

	rec := f.do(t, http.MethodPost, "/chats/s1/lead", domain.LeadFields{Name: "Ada", Email: "ada@example.com"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	close(release)
	assert.Equal(t, http.StatusOK, <-done)
}

func TestServer_BadRequests(t *testing.T) {
	f := newFixture(t, nil)
	f.do(t, http.MethodPost, "/chats", StartRequest{SessionID: "s1"})

	tests := []struct {
		name string
		path string
		body string
		want int
	}{
		{"Malformed JSON", "/chats/s1/choices", "{", http.StatusBadRequest},
		{"Unknown Field", "/chats/s1/choices", `{"nope":1}`, http.StatusBadRequest},
		{"Missing Value", "/chats/s1/choices", `{}`, http.StatusBadRequest},
		{"Unknown Option", "/chats/s1/choices", `{"value":"nope"}`, http.StatusBadRequest},
		{"Index Out Of Range", "/chats/s1/choices", `{"index":9}`, http.StatusBadRequest},
		{"Oversized Input", "/chats/s1/choices", `{"value":"` + strings.Repeat("a", 5000) + `"}`, http.StatusBadRequest},
		{"Unknown Session", "/chats/ghost/choices", `{"value":"hire"}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			f.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, tt.path, strings.NewReader(tt.body)))
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestServer_GraphAndInfo(t *testing.T) {
	f := newFixture(t, nil, WithMetricsHandler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("metrics"))
	})))

	rec := f.do(t, http.MethodGet, "/graph", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	g := decodeBody[GraphResponse](t, rec)
	assert.Equal(t, "welcome", g.Entry)
	assert.Equal(t, "thanks", g.Thanks)
	assert.Len(t, g.Nodes, 3)
	assert.Len(t, g.Navigation, 1)

	rec = f.do(t, http.MethodGet, "/graph/mermaid", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "graph TD\n"))

	rec = f.do(t, http.MethodGet, "/health", nil)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/info", nil)
	assert.Contains(t, rec.Body.String(), `"app":"leadchat-http"`)

	rec = f.do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, "metrics", rec.Body.String())
}

func TestServer_ChatMermaidOverlay(t *testing.T) {
	f := newFixture(t, nil)
	f.do(t, http.MethodPost, "/chats", StartRequest{SessionID: "s1"})
	f.do(t, http.MethodPost, "/chats/s1/choices", ChoiceRequest{Value: "hire"})

	rec := f.do(t, http.MethodGet, "/chats/s1/mermaid", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "class welcome visited;")
	assert.Contains(t, rec.Body.String(), "class lead current;")
}

func TestServer_CORS(t *testing.T) {
	f := newFixture(t, nil, WithAllowedOrigin("https://example.com"))

	rec := f.do(t, http.MethodOptions, "/chats/s1/lead", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

// syncRecorder guards the body so the test can read it while the handler streams.
type syncRecorder struct {
	*httptest.ResponseRecorder
	mu sync.Mutex
}

func (r *syncRecorder) Write(b []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ResponseRecorder.Write(b)
}

func (r *syncRecorder) body() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ResponseRecorder.Body.String()
}

func TestServer_SubscribeEvents(t *testing.T) {
	f := newFixture(t, nil)
	f.do(t, http.MethodPost, "/chats", StartRequest{SessionID: "s1"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sub := &syncRecorder{ResponseRecorder: httptest.NewRecorder()}
	req := httptest.NewRequest(http.MethodGet, "/chats/s1/events?watch=transcript", nil).WithContext(ctx)

	finished := make(chan struct{})
	go func() {
		f.handler.ServeHTTP(sub, req)
		close(finished)
	}()

	require.Eventually(t, func() bool {
		return strings.Contains(sub.body(), "event: ping")
	}, time.Second, 10*time.Millisecond)

	f.do(t, http.MethodPost, "/chats/s1/choices", ChoiceRequest{Value: "hire"})

	require.Eventually(t, func() bool {
		return strings.Contains(sub.body(), `"text":"Details?"`)
	}, time.Second, 10*time.Millisecond)

	cancel()
	<-finished
}

func TestServer_SubscribeEventsUnknownSession(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.do(t, http.MethodGet, "/chats/ghost/events", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
