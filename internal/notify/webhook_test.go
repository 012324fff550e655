package notify

import (
	"context"
	"encoding/json"
	"github.com/ZilDuck/nft-marketplace/internal/entity"
	"github.com/ZilDuck/nft-marketplace/internal/event"
	"github.com/stretchr/testify/require"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestNotifySignsPayload(t *testing.T) {
	var received entity.ListingEvent
	var signature, eventType string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		signature = r.Header.Get(SignatureHeader)
		eventType = r.Header.Get("X-Marketplace-Event")
		require.Equal(t, Sign("secret", body), signature)
		_ = json.Unmarshal(body, &received)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	s := NewWebhook(server.URL, "secret", NewClient(0, time.Second))
	err := s.Notify(context.Background(), entity.ListingEvent{
		Id:      "abc",
		Type:    string(event.ListingCreatedEvent),
		Listing: &entity.Listing{Id: 9},
	})
	require.NoError(t, err)

	require.Equal(t, "abc", received.Id)
	require.Equal(t, uint64(9), received.Listing.Id)
	require.Equal(t, "listing.created", eventType)
	require.NotEmpty(t, signature)
}

func TestNotifyRetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(2, time.Second)
	client.RetryWaitMin = time.Millisecond
	client.RetryWaitMax = 5 * time.Millisecond

	require.NoError(t, NewWebhook(server.URL, "", client).Notify(context.Background(), entity.ListingEvent{Id: "abc"}))
	require.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestNotifyReportsRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Empty(t, r.Header.Get(SignatureHeader))
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	err := NewWebhook(server.URL, "", NewClient(0, time.Second)).Notify(context.Background(), entity.ListingEvent{Id: "abc"})
	require.Error(t, err)
}

func TestSign(t *testing.T) {
	require.Equal(t, Sign("a", []byte("body")), Sign("a", []byte("body")))
	require.NotEqual(t, Sign("a", []byte("body")), Sign("b", []byte("body")))
}
