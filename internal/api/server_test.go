package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itsatony/mediabase-sub001/internal/batch"
	"github.com/itsatony/mediabase-sub001/internal/domain"
	"github.com/itsatony/mediabase-sub001/internal/scoring"
)

type stubProvider struct{}

func (stubProvider) FetchBundle(_ context.Context, subject string) (*domain.EvidenceBundle, error) {
	return &domain.EvidenceBundle{
		Subject: subject,
		Annotations: []domain.ClinicalAnnotation{
			{Tier: domain.TIER_1A, SignificanceBonus: 1.5, Source: "PharmGKB"},
		},
		Safety: &domain.SafetyProfile{IsFDAApproved: true},
	}, nil
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	engine, err := scoring.NewEngine(testLogger(), scoring.Options{})
	require.NoError(t, err)

	runner, err := batch.NewRunner(engine, stubProvider{}, 2, 16, testLogger())
	require.NoError(t, err)

	cfg := &domain.Config{
		Logging: domain.LoggingConfig{Level: "error"},
	}
	return NewServer(cfg, engine, runner, nil, testLogger())
}

func doRequest(server *Server, method, path, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	server.Router().ServeHTTP(recorder, req)
	return recorder
}

func TestServer_Health(t *testing.T) {
	server := newTestServer(t)

	resp := doRequest(server, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, resp.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, domain.ScoringVersion, body["scoring_version"])
	assert.NotEmpty(t, resp.Header().Get("X-Request-ID"))
}

func TestServer_Score(t *testing.T) {
	server := newTestServer(t)

	body := `{
		"subject": "BRAF",
		"clinical_annotations": [{"tier": "1A", "significance_bonus": 1.5}],
		"trials": [{"phase": "IV_APPROVED"}],
		"pgx_variants": [
			{"impact_score": 85, "is_actionable": true, "is_cancer_relevant": true},
			{"impact_score": 85, "is_actionable": true, "is_cancer_relevant": true}
		],
		"safety": {"is_fda_approved": true}
	}`

	resp := doRequest(server, http.MethodPost, "/api/v1/score", body)
	require.Equal(t, http.StatusOK, resp.Code)

	var record domain.ScoreRecord
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &record))

	assert.Equal(t, "BRAF", record.Subject)
	require.Len(t, record.UseCaseScores, len(domain.UseCases))
	assert.InDelta(t, 38.0, record.UseCaseScores[domain.THERAPEUTIC_TARGETING].OverallScore, 1e-9)
}

func TestServer_Score_MissingSubject(t *testing.T) {
	server := newTestServer(t)

	resp := doRequest(server, http.MethodPost, "/api/v1/score", `{"trials": []}`)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestServer_Score_MalformedBody(t *testing.T) {
	server := newTestServer(t)

	resp := doRequest(server, http.MethodPost, "/api/v1/score", `{"subject": `)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestServer_ScoreBatch(t *testing.T) {
	server := newTestServer(t)

	resp := doRequest(server, http.MethodPost, "/api/v1/score/batch",
		`{"subjects": ["BRAF", "EGFR"]}`)
	require.Equal(t, http.StatusOK, resp.Code)

	var body batchResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Len(t, body.Records, 2)
	assert.Empty(t, body.Errors)
}

func TestServer_ScoreBatch_Empty(t *testing.T) {
	server := newTestServer(t)

	resp := doRequest(server, http.MethodPost, "/api/v1/score/batch", `{"subjects": []}`)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestServer_Rankings_WithoutPersistence(t *testing.T) {
	server := newTestServer(t)

	resp := doRequest(server, http.MethodGet, "/api/v1/rankings/therapeutic_targeting", "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
}

func TestServer_CORSPreflight(t *testing.T) {
	server := newTestServer(t)

	resp := doRequest(server, http.MethodOptions, "/api/v1/score", "")
	assert.Equal(t, http.StatusNoContent, resp.Code)
	assert.Equal(t, "*", resp.Header().Get("Access-Control-Allow-Origin"))
}
