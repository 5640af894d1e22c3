package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aretw0/leadchat/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Hooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)
	hooks := c.Hooks()
	ctx := context.Background()

	hooks.OnStart(ctx, &domain.NodeEvent{NodeID: "welcome"})
	hooks.OnNodeEnter(ctx, &domain.NodeEvent{NodeID: "welcome"})
	hooks.OnNodeEnter(ctx, &domain.NodeEvent{NodeID: "welcome"})
	hooks.OnChoice(ctx, &domain.ChoiceEvent{FromNodeID: "welcome", ToNodeID: "lead", Value: "hire"})
	hooks.OnLeadCapture(ctx, &domain.LeadEvent{LeadContext: "hiring"})
	hooks.OnLeadFailed(ctx, &domain.LeadEvent{LeadContext: "hiring", Duration: 2 * time.Second})
	hooks.OnLeadDelivered(ctx, &domain.LeadEvent{LeadContext: "hiring", Duration: time.Second})
	hooks.OnReset(ctx, &domain.EventBase{})

	assert.Equal(t, 1.0, testutil.ToFloat64(c.sessions))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.resets))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.nodeVisits.WithLabelValues("welcome")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.choices.WithLabelValues("welcome", "hire")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.leads.WithLabelValues("captured", "hiring")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.leads.WithLabelValues("failed", "hiring")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.leads.WithLabelValues("delivered", "hiring")))
	assert.Equal(t, 2, testutil.CollectAndCount(c.delivery))
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)
	c.Hooks().OnStart(context.Background(), &domain.NodeEvent{})

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "leadchat_sessions_started_total 1")
}
