package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meddoc-assistant-api/internal/europepmc"
	"github.com/meddoc-assistant-api/internal/models"
	"github.com/meddoc-assistant-api/internal/services"
)

const threeHitsJSON = `{
  "resultList": {
    "result": [
      {"id": "1", "title": "Influenza and fever", "abstractText": "a1", "journalTitle": "J1", "pubYear": "2020"},
      {"id": "2", "title": "Cough etiologies", "abstractText": "a2", "journalTitle": "J2", "pubYear": "2021"},
      {"id": "3", "title": "Viral infections", "abstractText": "a3", "journalTitle": "J3", "pubYear": "2022"}
    ]
  }
}`

// newTestAPI wires a handler against a fake Europe PMC server. The upstream
// handler records the pageSize it received. Ranking is left disabled so
// match order is the upstream order.
func newTestAPI(t *testing.T, upstreamStatus int, upstreamBody string) (*echo.Echo, *string, func()) {
	t.Helper()
	var gotPageSize string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPageSize = r.URL.Query().Get("pageSize")
		w.WriteHeader(upstreamStatus)
		fmt.Fprint(w, upstreamBody)
	}))

	client := europepmc.NewClient(ts.URL)
	client.HTTPClient = ts.Client()
	pipeline := services.NewQueryPipeline(client, services.NewEmbeddingRanker(false))

	e := echo.New()
	NewQueryHandler(pipeline).RegisterRoutes(e.Group("/api"))
	return e, &gotPageSize, ts.Close
}

func postQuery(e *echo.Echo, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/query", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestQueryNoSymptoms(t *testing.T) {
	e, _, done := newTestAPI(t, http.StatusOK, threeHitsJSON)
	defer done()

	for _, body := range []string{
		`{"symptoms": ""}`,
		`{"symptoms": "   "}`,
		`{"symptoms": "\t\n"}`,
		`{}`,
	} {
		rec := postQuery(e, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body: %s", body)

		var errResp models.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
		assert.Equal(t, "No symptoms provided", errResp.Detail)
	}
}

func TestQueryInvalidBody(t *testing.T) {
	e, _, done := newTestAPI(t, http.StatusOK, threeHitsJSON)
	defer done()

	rec := postQuery(e, `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQueryUpstreamFailure(t *testing.T) {
	e, _, done := newTestAPI(t, http.StatusServiceUnavailable, `{"error":"down"}`)
	defer done()

	rec := postQuery(e, `{"symptoms": "fever cough"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	var errResp models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.NotEmpty(t, errResp.Detail)
}

func TestQuerySuccessScenario(t *testing.T) {
	e, gotPageSize, done := newTestAPI(t, http.StatusOK, threeHitsJSON)
	defer done()

	rec := postQuery(e, `{"symptoms": "fever cough", "top_k": 3}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "3", *gotPageSize)

	var resp models.QueryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	require.Len(t, resp.Matches, 3)
	require.Len(t, resp.Citations, 3)
	assert.Contains(t, resp.Summary, "3")

	// Ranking disabled: upstream order preserved.
	assert.Equal(t, "Influenza and fever", resp.Matches[0].Title)
	assert.Equal(t, "Cough etiologies", resp.Matches[1].Title)
	assert.Equal(t, "Viral infections", resp.Matches[2].Title)
	assert.Equal(t, "EuropePMC", resp.Matches[0].Source)

	assert.Equal(t, "Influenza and fever — J1 (2020) — https://europepmc.org/article/pmc/1", resp.Citations[0])
}

func TestQueryTopKDefaultAndClamp(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		wantPageSize string
	}{
		{"default when omitted", `{"symptoms": "fever"}`, "5"},
		{"default when non-positive", `{"symptoms": "fever", "top_k": -1}`, "5"},
		{"passed through in range", `{"symptoms": "fever", "top_k": 12}`, "12"},
		{"clamped above bound", `{"symptoms": "fever", "top_k": 5000}`, "50"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, gotPageSize, done := newTestAPI(t, http.StatusOK, threeHitsJSON)
			defer done()

			rec := postQuery(e, tt.body)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.wantPageSize, *gotPageSize)
		})
	}
}

func TestQueryRepeatedRequestsIdentical(t *testing.T) {
	e, _, done := newTestAPI(t, http.StatusOK, threeHitsJSON)
	defer done()

	first := postQuery(e, `{"symptoms": "fever cough", "top_k": 3}`)
	second := postQuery(e, `{"symptoms": "fever cough", "top_k": 3}`)
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
}
