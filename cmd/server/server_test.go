package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pcdash/review-dashboard/internal/monitoring"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newTestRouter(t *testing.T, cfg config) *gin.Engine {
	t.Helper()
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = time.Minute
	}
	return setupRouter(cfg, monitoring.NewMetrics(), monitoring.NewLogger())
}

func writeReview(t *testing.T, dir, name, submission, score, confidence, text string) {
	t.Helper()
	content := fmt.Sprintf(`<review submission=%q title="Paper %s" authors="A. Author" id="%s" pc_member="pc-%s">
  <field name="Overall evaluation"><text>%s</text><score>%s</score></field>
  <field name="Reviewer's confidence"><score>%s</score></field>
</review>`, submission, submission, name, name, text, score, confidence)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".xml"), []byte(content), 0o644))
}

func fixtureFolder(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeReview(t, dir, "r1", "12", "6", "2", "Too short to judge.")
	writeReview(t, dir, "r2", "12", "9", "4", "Strong results. Clear writing. Thorough evaluation across benchmarks.")
	writeReview(t, dir, "r3", "7", "4", "", "Middling contribution, sound methodology.")
	writeReview(t, dir, "r4", "3", "", "3", "Could not assess the proofs.")
	return dir
}

func doGet(t *testing.T, r *gin.Engine, path string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	w := httptest.NewRecorder()
	req, err := http.NewRequest(http.MethodGet, path, nil)
	require.NoError(t, err)
	r.ServeHTTP(w, req)

	var body map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	}
	return w, body
}

func TestHealthEndpoint(t *testing.T) {
	r := newTestRouter(t, config{})

	w, body := doGet(t, r, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])
	assert.Contains(t, body, "metrics")
}

func TestReviewsRequiresFolder(t *testing.T) {
	r := newTestRouter(t, config{})

	w, body := doGet(t, r, "/api/reviews")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, body["ok"])
	assert.Contains(t, body["error"], "No review folder specified")
}

func TestReviewsMissingFolder(t *testing.T) {
	r := newTestRouter(t, config{})

	w, body := doGet(t, r, "/api/reviews?dir="+filepath.Join(t.TempDir(), "nope"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, body["ok"])
	assert.Contains(t, body["error"], "folder not found")
}

func TestReviewsEndpoint(t *testing.T) {
	dir := fixtureFolder(t)
	r := newTestRouter(t, config{})

	w, body := doGet(t, r, "/api/reviews?dir="+dir)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["ok"])

	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(3), data["paperCount"])
	assert.Equal(t, float64(4), data["reviewCount"])
	assert.Equal(t, float64(3), data["reviewerCount"], "reviewer r4 has no score, no baseline")
	assert.Equal(t, float64(4), data["xmlFiles"])
	assert.Equal(t, float64(4), data["parsedFiles"])
	assert.Empty(t, data["parseErrors"])

	papers := data["papers"].([]interface{})
	require.Len(t, papers, 3)

	// Papers arrive in first-seen (file name) order: r1 seeds paper 12.
	first := papers[0].(map[string]interface{})
	assert.Equal(t, "12", first["submission"])
	assert.Equal(t, 7.5, first["avgScore"])
	assert.Equal(t, 3.0, first["scoreDiscrepancy"])
	assert.Equal(t, 7.65, first["confidenceWeightedScore"])

	// Paper 3 has no scored review: score-derived fields are null.
	for _, raw := range papers {
		p := raw.(map[string]interface{})
		if p["submission"] == "3" {
			assert.Nil(t, p["avgScore"])
			assert.Nil(t, p["scoreDiscrepancy"])
			assert.Nil(t, p["confidenceWeightedScore"])
			assert.Nil(t, p["reviewerAdjustedScore"])
			assert.Equal(t, 3.0, p["avgConfidence"])
		}
	}
}

func TestReviewsUsesDefaultDataDir(t *testing.T) {
	dir := fixtureFolder(t)
	r := newTestRouter(t, config{DataDir: dir})

	w, body := doGet(t, r, "/api/reviews")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["ok"])
}

func TestPapersSorting(t *testing.T) {
	dir := fixtureFolder(t)
	r := newTestRouter(t, config{})

	w, body := doGet(t, r, "/api/reviews/papers?dir="+dir+"&sort=avgScore&order=desc")
	require.Equal(t, http.StatusOK, w.Code)

	data := body["data"].(map[string]interface{})
	papers := data["papers"].([]interface{})
	require.Len(t, papers, 3)

	ids := make([]string, len(papers))
	for i, raw := range papers {
		ids[i] = raw.(map[string]interface{})["submission"].(string)
	}
	// 12 (7.5) before 7 (4.0); unscored paper 3 last despite descending.
	assert.Equal(t, []string{"12", "7", "3"}, ids)
}

func TestPapersRejectsUnknownSortField(t *testing.T) {
	dir := fixtureFolder(t)
	r := newTestRouter(t, config{})

	w, body := doGet(t, r, "/api/reviews/papers?dir="+dir+"&sort=bogus")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, body["error"], "unknown sort field")
}

func TestRowsFiltering(t *testing.T) {
	dir := fixtureFolder(t)
	r := newTestRouter(t, config{})

	w, body := doGet(t, r, "/api/reviews/rows?dir="+dir+"&minConfidence=3")
	require.Equal(t, http.StatusOK, w.Code)

	data := body["data"].(map[string]interface{})
	rows := data["rows"].([]interface{})
	// r1 (confidence 2) is excluded; r3 has no confidence and passes.
	assert.Equal(t, float64(3), data["rowCount"])
	for _, raw := range rows {
		row := raw.(map[string]interface{})
		assert.NotEqual(t, "r1", row["reviewId"])
	}
}

func TestRowsValidatesBounds(t *testing.T) {
	dir := fixtureFolder(t)
	r := newTestRouter(t, config{})

	w, body := doGet(t, r, "/api/reviews/rows?dir="+dir+"&minWords=-1")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, body["error"], "invalid filter parameters")

	w, _ = doGet(t, r, "/api/reviews/rows?dir="+dir+"&maxConfidence=9")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHistogramEndpoint(t *testing.T) {
	dir := fixtureFolder(t)
	r := newTestRouter(t, config{})

	w, body := doGet(t, r, "/api/reviews/histogram?dir="+dir+"&metric=reviewerAdjustedScore")
	require.Equal(t, http.StatusOK, w.Code)

	data := body["data"].(map[string]interface{})
	counts := data["counts"].([]interface{})
	assert.Len(t, counts, 12)
	heights := data["barHeights"].([]interface{})
	assert.Len(t, heights, 12)

	w, body = doGet(t, r, "/api/reviews/histogram?dir="+dir+"&metric=bogus")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, body["error"], "unknown histogram metric")
}

func TestReviewsResponseIsCached(t *testing.T) {
	dir := fixtureFolder(t)
	r := newTestRouter(t, config{})

	w1, body1 := doGet(t, r, "/api/reviews?dir="+dir)
	require.Equal(t, http.StatusOK, w1.Code)

	// Remove the folder; the cached response must still be served.
	require.NoError(t, os.RemoveAll(dir))

	w2, body2 := doGet(t, r, "/api/reviews?dir="+dir)
	require.Equal(t, http.StatusOK, w2.Code)
	assert.Equal(t, body1, body2)
}
