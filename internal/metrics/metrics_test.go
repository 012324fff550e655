package metrics

import (
	"github.com/ZilDuck/nft-marketplace/internal/entity"
	"github.com/ZilDuck/nft-marketplace/internal/event"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestListenTracksActiveListings(t *testing.T) {
	m := New()
	events := event.NewManager()
	m.Listen(events)

	m.SetActive(2)
	events.EmitEvent(event.ListingCreatedEvent, entity.ListingEvent{Type: string(event.ListingCreatedEvent)})
	events.EmitEvent(event.ListingSoldEvent, entity.ListingEvent{Type: string(event.ListingSoldEvent)})
	events.EmitEvent(event.ListingRetiredEvent, entity.ListingEvent{Type: string(event.ListingRetiredEvent)})
	events.Close()

	require.Equal(t, float64(1), testutil.ToFloat64(m.active))
	require.Equal(t, float64(1), testutil.ToFloat64(m.events.WithLabelValues("listing.sold")))
}

func TestFailure(t *testing.T) {
	m := New()
	m.Failure("FeeMismatch")
	m.Failure("FeeMismatch")

	require.Equal(t, float64(2), testutil.ToFloat64(m.failures.WithLabelValues("FeeMismatch")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.Failure("PriceMismatch")
	m.ObserveRequest("/sales", http.StatusConflict, 0.01)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, string(body), `marketplace_failures_total{kind="PriceMismatch"} 1`)
	require.Contains(t, string(body), "marketplace_http_request_duration_seconds")
}
