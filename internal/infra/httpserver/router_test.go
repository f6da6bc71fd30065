package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/audit-compliance/internal/application"
	appcompliance "github.com/bryanwahyu/audit-compliance/internal/application/compliance"
	"github.com/bryanwahyu/audit-compliance/internal/domain/ai"
	"github.com/bryanwahyu/audit-compliance/internal/domain/controls"
	"github.com/bryanwahyu/audit-compliance/internal/infra/store/memory"
	"github.com/bryanwahyu/audit-compliance/internal/middleware"
)

type stubCompleter struct {
	reply string
	err   error
	calls int
}

func (s *stubCompleter) Complete(context.Context, ai.CompletionRequest) (string, error) {
	s.calls++
	return s.reply, s.err
}

type stubArtifacts struct{ key string }

func (s *stubArtifacts) Upload(_ context.Context, key string, _ []byte, _ string) (string, error) {
	s.key = key
	return "http://minio:9000/audit-interactions/" + key, nil
}

type fixture struct {
	handler http.Handler
	log     *memory.Store
	client  *stubCompleter
	svc     *appcompliance.Service
}

func newFixture(t *testing.T, backend ai.Backend) fixture {
	t.Helper()
	client := &stubCompleter{reply: "generated text"}
	if backend == nil {
		backend = ai.Configured{Client: client}
	}
	log := memory.NewStore()
	svc := &appcompliance.Service{
		Catalogue: controls.Default(),
		Backend:   backend,
		Log:       log,
		Clock:     application.FixedClock{T: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)},
		Timeout:   time.Second,
		Logger:    zerolog.Nop(),
	}
	h := NewRouter(svc, Options{Logger: zerolog.Nop(), Metrics: middleware.NewMetrics()})
	return fixture{handler: h, log: log, client: client, svc: svc}
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}

func TestIndex_ServesPage(t *testing.T) {
	f := newFixture(t, nil)
	rr := do(t, f.handler, http.MethodGet, "/", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rr.Body.String(), "ISO/IEC 27001")
}

func TestControls_StableOrder(t *testing.T) {
	f := newFixture(t, nil)

	var first, second controlsResponse
	rr := do(t, f.handler, http.MethodGet, "/api/controls", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &first))
	rr = do(t, f.handler, http.MethodGet, "/api/controls", "")
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &second))

	require.Len(t, first.Controls, 9)
	assert.Equal(t, first, second)
	assert.Equal(t, "A.5.1", first.Controls[0].ID)
	assert.Equal(t, controls.CategoryOrganizational, first.Controls[0].Category)
	assert.Equal(t, "A.8.3", first.Controls[8].ID)
}

func TestAssess_ValidControlRecordsOnce(t *testing.T) {
	f := newFixture(t, nil)

	rr := do(t, f.handler, http.MethodPost, "/api/assess", `{"control_id":"A.8.1"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "generated text", decode(t, rr)["assessment"])

	snap, err := f.log.Snapshot(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.Assessments, 1)
	assert.Equal(t, "A.8.1", snap.Assessments[0].ControlID)
	assert.Equal(t, "generated text", snap.Assessments[0].Assessment)
}

func TestAssess_UnknownControl(t *testing.T) {
	f := newFixture(t, nil)

	rr := do(t, f.handler, http.MethodPost, "/api/assess", `{"control_id":"Z.9.9"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Invalid control ID: Z.9.9", decode(t, rr)["error"])
	assert.Zero(t, f.client.calls)

	snap, _ := f.log.Snapshot(context.Background())
	assert.Empty(t, snap.Assessments)
}

func TestAssess_DisabledBackend(t *testing.T) {
	f := newFixture(t, ai.Disabled{})

	for _, id := range []string{"A.8.1", "Z.9.9"} {
		rr := do(t, f.handler, http.MethodPost, "/api/assess", `{"control_id":"`+id+`"}`)
		assert.Equal(t, http.StatusInternalServerError, rr.Code, id)
		assert.Equal(t, ai.DefaultDisabledReason, decode(t, rr)["error"])
	}
}

func TestAssess_UpstreamFailure(t *testing.T) {
	f := newFixture(t, nil)
	f.client.err = errors.New("bad gateway")

	rr := do(t, f.handler, http.MethodPost, "/api/assess", `{"control_id":"A.5.1"}`)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "bad gateway", decode(t, rr)["error"])

	snap, _ := f.log.Snapshot(context.Background())
	assert.Empty(t, snap.Assessments)
}

func TestAssess_BodyRejected(t *testing.T) {
	f := newFixture(t, nil)

	cases := map[string]string{
		"unknown field": `{"control_id":"A.8.1","extra":true}`,
		"trailing data": `{"control_id":"A.8.1"}{"control_id":"A.8.2"}`,
		"not json":      `control_id=A.8.1`,
		"wrong type":    `{"control_id":81}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rr := do(t, f.handler, http.MethodPost, "/api/assess", body)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.NotEmpty(t, decode(t, rr)["error"])
		})
	}

	rr := do(t, f.handler, http.MethodPost, "/api/assess", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "request body is required", decode(t, rr)["error"])
	assert.Zero(t, f.client.calls)
}

func TestChat_RecordsTurn(t *testing.T) {
	f := newFixture(t, nil)
	f.client.reply = "Annex A lists 93 controls."

	rr := do(t, f.handler, http.MethodPost, "/api/chat", `{"message":"What is Annex A?"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "Annex A lists 93 controls.", decode(t, rr)["response"])

	snap, _ := f.log.Snapshot(context.Background())
	require.Len(t, snap.ChatHistory, 1)
	assert.Equal(t, "What is Annex A?", snap.ChatHistory[0].User)
	assert.Equal(t, "Annex A lists 93 controls.", snap.ChatHistory[0].Assistant)
}

func TestChat_DisabledBackend(t *testing.T) {
	f := newFixture(t, ai.Disabled{Reason: "no key"})

	rr := do(t, f.handler, http.MethodPost, "/api/chat", `{"message":"hi"}`)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "no key", decode(t, rr)["error"])
}

func TestGapAnalysis(t *testing.T) {
	f := newFixture(t, nil)
	f.client.reply = "Status: Partial"

	rr := do(t, f.handler, http.MethodPost, "/api/gap-analysis",
		`{"control_id":"A.5.1","description":"We have a draft policy."}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "Status: Partial", decode(t, rr)["analysis"])

	snap, _ := f.log.Snapshot(context.Background())
	assert.Empty(t, snap.Assessments)
	assert.Empty(t, snap.ChatHistory)

	rr = do(t, f.handler, http.MethodPost, "/api/gap-analysis", `{"control_id":"Z.0.0","description":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Invalid control ID", decode(t, rr)["error"])
	assert.Equal(t, 1, f.client.calls)
}

func TestHistory(t *testing.T) {
	f := newFixture(t, nil)

	rr := do(t, f.handler, http.MethodGet, "/api/history", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"assessments":[],"chat_history":[]}`, rr.Body.String())

	do(t, f.handler, http.MethodPost, "/api/assess", `{"control_id":"A.6.1"}`)
	do(t, f.handler, http.MethodPost, "/api/chat", `{"message":"hello"}`)

	rr = do(t, f.handler, http.MethodGet, "/api/history", "")
	body := decode(t, rr)
	assert.Len(t, body["assessments"], 1)
	assert.Len(t, body["chat_history"], 1)
}

func TestArchive(t *testing.T) {
	f := newFixture(t, nil)

	rr := do(t, f.handler, http.MethodPost, "/api/history/archive", "")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "archive storage not configured", decode(t, rr)["error"])

	artifacts := &stubArtifacts{}
	f.svc.Artifacts = artifacts
	rr = do(t, f.handler, http.MethodPost, "/api/history/archive", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.True(t, strings.HasPrefix(artifacts.key, "interactions/2024-03-01/100000-"))
	assert.Equal(t, "http://minio:9000/audit-interactions/"+artifacts.key, decode(t, rr)["object_url"])
}

func TestHealthAndMetrics(t *testing.T) {
	f := newFixture(t, nil)

	rr := do(t, f.handler, http.MethodGet, "/health/live", "")
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, f.handler, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rr.Code)

	do(t, f.handler, http.MethodGet, "/api/controls", "")
	rr = do(t, f.handler, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `route="/api/controls"`)
}

func TestCORS_Preflight(t *testing.T) {
	f := newFixture(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)

	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequiredText_Rejected(t *testing.T) {
	f := newFixture(t, nil)

	rr := do(t, f.handler, http.MethodPost, "/api/chat", `{"message":""}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "message is required", decode(t, rr)["error"])

	rr = do(t, f.handler, http.MethodPost, "/api/gap-analysis", `{"control_id":"A.5.1"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "description is required", decode(t, rr)["error"])

	assert.Zero(t, f.client.calls)
	snap, _ := f.log.Snapshot(context.Background())
	assert.Empty(t, snap.ChatHistory)
}
