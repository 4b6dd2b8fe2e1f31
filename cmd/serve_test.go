package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brandscope/brandscope-cli/internal/model"
	"github.com/brandscope/brandscope-cli/internal/store"
)

// stubAnalyzer returns a canned pipeline result.
type stubAnalyzer struct {
	result *model.PipelineRun
}

func (s *stubAnalyzer) Run(_ context.Context, in model.RunInput) *model.PipelineRun {
	r := *s.result
	r.Input = in
	return &r
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func analyzedResult() *model.PipelineRun {
	acme := model.Candidate{
		Name:     "Acme Meditations",
		Category: model.CategoryIndirect,
		X:        3,
		Y:        9,
		Regions:  []string{model.RegionGlobal},
	}
	return &model.PipelineRun{
		Candidates: []model.Candidate{acme},
		Markets: map[string]model.RegionMarket{
			model.RegionGlobal: {
				Region: model.RegionGlobal,
				Matrix: []model.MatrixSlot{{Role: model.SlotCategoryKing, Candidate: acme}},
			},
			"India": {
				Region:      "India",
				GapDetected: true,
			},
		},
		WhiteSpace: model.WhiteSpaceReport{Verdict: model.VerdictGreen},
		Meta:       model.RunMeta{DurationMs: 1500},
	}
}

func TestRouter_Health(t *testing.T) {
	router := newRouter(newTestStore(t), &stubAnalyzer{result: analyzedResult()})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestRouter_Analyze_Valid(t *testing.T) {
	st := newTestStore(t)
	router := newRouter(st, &stubAnalyzer{result: analyzedResult()})

	payload := map[string]any{
		"brand_name":  "Zenflow",
		"category":    "YouTube Channel",
		"positioning": "Mid-Range",
		"countries":   []string{"India", "USA"},
	}
	body, _ := json.Marshal(payload)

	req := httptest.NewRequest(http.MethodPost, "/v1/analyze", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp analyzeResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.RunID)
	require.NotNil(t, resp.GlobalMatrix)
	assert.Equal(t, "Acme Meditations", resp.GlobalMatrix.Matrix[0].Candidate.Name)
	assert.True(t, resp.CountryAnalysis["India"].GapDetected)
	assert.NotContains(t, resp.CountryAnalysis, model.RegionGlobal)
	assert.Equal(t, model.VerdictGreen, resp.WhiteSpaceAnalysis.Verdict)
	assert.Len(t, resp.AllCompetitors, 1)

	// The run was persisted as complete with the result attached.
	run, err := st.GetRun(context.Background(), resp.RunID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, run.Status)
	require.NotNil(t, run.Result)
}

func TestRouter_Analyze_MissingBrand(t *testing.T) {
	router := newRouter(newTestStore(t), &stubAnalyzer{result: analyzedResult()})

	body, _ := json.Marshal(map[string]any{"category": "YouTube Channel"})
	req := httptest.NewRequest(http.MethodPost, "/v1/analyze", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "brand_name is required")
}

func TestRouter_Analyze_MissingCategory(t *testing.T) {
	router := newRouter(newTestStore(t), &stubAnalyzer{result: analyzedResult()})

	body, _ := json.Marshal(map[string]any{"brand_name": "Zenflow"})
	req := httptest.NewRequest(http.MethodPost, "/v1/analyze", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "category is required")
}

func TestRouter_Analyze_InvalidBody(t *testing.T) {
	router := newRouter(newTestStore(t), &stubAnalyzer{result: analyzedResult()})

	req := httptest.NewRequest(http.MethodPost, "/v1/analyze", bytes.NewReader([]byte("{not json")))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid request body")
}

func TestRouter_Analyze_EmptyResultPersistsEmptyStatus(t *testing.T) {
	st := newTestStore(t)
	empty := &model.PipelineRun{
		Markets:    map[string]model.RegionMarket{},
		WhiteSpace: model.WhiteSpaceReport{Verdict: model.VerdictYellow},
	}
	router := newRouter(st, &stubAnalyzer{result: empty})

	body, _ := json.Marshal(map[string]any{
		"brand_name": "Obscurium",
		"category":   "Underwater Basket Weaving",
	})
	req := httptest.NewRequest(http.MethodPost, "/v1/analyze", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp analyzeResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))

	run, err := st.GetRun(context.Background(), resp.RunID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusEmpty, run.Status)
}

func TestRouter_ListRuns(t *testing.T) {
	st := newTestStore(t)
	_, err := st.CreateRun(context.Background(), model.RunInput{BrandName: "Zenflow", Category: "YouTube Channel"})
	require.NoError(t, err)

	router := newRouter(st, &stubAnalyzer{result: analyzedResult()})

	req := httptest.NewRequest(http.MethodGet, "/v1/runs?limit=10", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Runs []model.Run `json:"runs"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Runs, 1)
	assert.Equal(t, "Zenflow", resp.Runs[0].Input.BrandName)
}

func TestRouter_ListRuns_InvalidLimit(t *testing.T) {
	router := newRouter(newTestStore(t), &stubAnalyzer{result: analyzedResult()})

	req := httptest.NewRequest(http.MethodGet, "/v1/runs?limit=bogus", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRouter_GetRun_NotFound(t *testing.T) {
	router := newRouter(newTestStore(t), &stubAnalyzer{result: analyzedResult()})

	req := httptest.NewRequest(http.MethodGet, "/v1/runs/nonexistent", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRouter_GetRun_StoreFailureIs500(t *testing.T) {
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, st.Migrate(context.Background()))
	router := newRouter(st, &stubAnalyzer{result: analyzedResult()})

	// A closed store fails with a driver error, not a missing run.
	require.NoError(t, st.Close())

	req := httptest.NewRequest(http.MethodGet, "/v1/runs/some-id", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestThemeKeywords(t *testing.T) {
	assert.Equal(t, []string{"meditation"}, themeKeywords(analyzeRequest{ThemeKeywords: []string{"meditation"}}))
	assert.Equal(t, []string{"calm", "sleep", "focus"},
		themeKeywords(analyzeRequest{Understanding: "calm, sleep, focus, extra"}))
	assert.Nil(t, themeKeywords(analyzeRequest{}))
}
