package evidence

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itsatony/mediabase-sub001/internal/domain"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func newTestClient(baseURL string) *Client {
	return NewClient(ClientConfig{
		BaseURL:    baseURL,
		Timeout:    5 * time.Second,
		RateLimit:  1000,
		RetryCount: 1,
	}, testLogger())
}

func TestClient_FetchBundle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/evidence/BRAF", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"subject": "BRAF",
			"clinical_annotations": [{"tier": "1A", "significance_bonus": 1.5, "source": "PharmGKB"}],
			"trials": [{"trial_id": "NCT00949702", "phase": "IV_APPROVED"}],
			"safety": {"is_fda_approved": true, "toxicity_count": 2, "drug_interaction_count": 1}
		}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	bundle, err := client.FetchBundle(context.Background(), "BRAF")
	require.NoError(t, err)

	assert.Equal(t, "BRAF", bundle.Subject)
	require.Len(t, bundle.Annotations, 1)
	assert.Equal(t, domain.TIER_1A, bundle.Annotations[0].Tier)
	require.Len(t, bundle.Trials, 1)
	assert.Equal(t, domain.PHASE_APPROVED, bundle.Trials[0].Phase)
	require.NotNil(t, bundle.Safety)
	assert.True(t, bundle.Safety.IsFDAApproved)
	assert.Equal(t, 2, bundle.Safety.ToxicityCount)
	assert.False(t, bundle.GatheredAt.IsZero())
}

func TestClient_FetchBundle_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.FetchBundle(context.Background(), "UNKNOWN_GENE")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestClient_FetchBundle_EmptySubject(t *testing.T) {
	client := newTestClient("http://localhost:1")

	_, err := client.FetchBundle(context.Background(), "  ")
	require.Error(t, err)

	var valErr *domain.ValidationError
	assert.ErrorAs(t, err, &valErr)
}

func TestClient_FetchBundle_RetriesServerErrors(t *testing.T) {
	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt64(&calls, 1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"subject": "EGFR"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	bundle, err := client.FetchBundle(context.Background(), "EGFR")
	require.NoError(t, err)
	assert.Equal(t, "EGFR", bundle.Subject)
	assert.Equal(t, int64(2), atomic.LoadInt64(&calls))
}

func TestClient_FetchBundle_ClientErrorNotRetried(t *testing.T) {
	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.FetchBundle(context.Background(), "BRAF")
	require.Error(t, err)
	assert.Equal(t, int64(1), atomic.LoadInt64(&calls))
}

func TestClient_CircuitBreakerOpens(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		BaseURL:    server.URL,
		Timeout:    5 * time.Second,
		RateLimit:  1000,
		RetryCount: 1,
	}, testLogger())

	// Trip the breaker with repeated failures.
	for i := 0; i < 5; i++ {
		_, err := client.FetchBundle(context.Background(), "BRAF")
		require.Error(t, err)
	}

	_, err := client.FetchBundle(context.Background(), "BRAF")
	require.Error(t, err)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}

func TestClient_HalfLifeForwarded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "3650", r.URL.Query().Get("half_life_days"))
		assert.Equal(t, "/var/cache/mediabase", r.URL.Query().Get("cache_dir"))
		w.Write([]byte(`{"subject": "BRAF"}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		BaseURL:      server.URL,
		RateLimit:    1000,
		HalfLifeDays: 3650,
		CacheDir:     "/var/cache/mediabase",
	}, testLogger())

	_, err := client.FetchBundle(context.Background(), "BRAF")
	require.NoError(t, err)
}
