package httpapi

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talentsol-engine/internal/cache"
	"talentsol-engine/internal/config"
	"talentsol-engine/internal/events"
	"talentsol-engine/internal/rank"
	"talentsol-engine/internal/ratelimit"
	"talentsol-engine/internal/store"
)

func newTestServer(t *testing.T) (*httptest.Server, *sql.DB) {
	t.Helper()

	db, err := store.Open(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, store.Migrate(db.Pool))

	mgr := cache.NewManager(cache.New(time.Minute, time.Minute), time.Minute)
	for _, s := range []struct {
		prefix string
		ttl    time.Duration
	}{{"dashboard", 5 * time.Minute}, {"trend", 15 * time.Minute}, {"list", time.Minute}} {
		mgr.SetStrategy(s.prefix, s.ttl)
	}

	cfg := config.Default()
	var cfgVal atomic.Value
	cfgVal.Store(cfg)
	var intakeStatus atomic.Value
	intakeStatus.Store(IntakeStatus{})

	mux := NewMux(Deps{
		DB:           db.Pool,
		Hub:          events.NewHub(),
		Cache:        mgr,
		Scorer:       rank.RuleScorer{Cfg: cfg},
		CfgVal:       &cfgVal,
		IntakeStatus: &intakeStatus,
		UserCfgPath:  filepath.Join(t.TempDir(), "config.yml"),
		LoadCfg:      func() (config.Config, error) { return cfgVal.Load().(config.Config), nil },
		RunIntake: func(ctx context.Context, pool *sql.DB, c config.Config, onImported func(int64)) (int, error) {
			return 0, nil
		},
	})

	srv := httptest.NewServer(Chain(mux, RequestID, Recover))
	t.Cleanup(srv.Close)
	return srv, db.Pool
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, rd)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeInto(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestCandidateLifecycle(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/candidates", map[string]any{
		"firstName": "Grace", "lastName": "Hopper",
		"email": "grace@example.com", "skills": []string{"go"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created store.Candidate
	decodeInto(t, resp, &created)
	assert.NotZero(t, created.ID)

	// duplicate email comes back as a conflict envelope
	resp = doJSON(t, http.MethodPost, srv.URL+"/candidates", map[string]any{
		"email": "GRACE@example.com",
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	var apiErr APIError
	decodeInto(t, resp, &apiErr)
	assert.Equal(t, "conflict", apiErr.Error.Code)
	assert.NotEmpty(t, apiErr.Error.RequestID)

	// missing email is a 400
	resp = doJSON(t, http.MethodPost, srv.URL+"/candidates", map[string]any{"firstName": "X"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// unknown id is a 404 envelope
	resp = doJSON(t, http.MethodGet, srv.URL+"/candidates/9999", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	decodeInto(t, resp, &apiErr)
	assert.Equal(t, "not_found", apiErr.Error.Code)

	// list envelope
	resp = doJSON(t, http.MethodGet, srv.URL+"/candidates?limit=10", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var page struct {
		Data        []store.Candidate `json:"data"`
		Total       int               `json:"total"`
		TotalPages  int               `json:"totalPages"`
		CurrentPage int               `json:"currentPage"`
	}
	decodeInto(t, resp, &page)
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, 1, page.TotalPages)
	require.Len(t, page.Data, 1)

	// delete
	resp = doJSON(t, http.MethodDelete, srv.URL+"/candidates/"+int64String(created.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func int64String(id int64) string {
	return strconv.FormatInt(id, 10)
}

func TestApplicationPipelineOverHTTP(t *testing.T) {
	srv, _ := newTestServer(t)

	var cand store.Candidate
	resp := doJSON(t, http.MethodPost, srv.URL+"/candidates", map[string]any{
		"email": "pipe@example.com", "yearsExperience": 6, "educationLevel": "master",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	decodeInto(t, resp, &cand)

	var job store.Job
	resp = doJSON(t, http.MethodPost, srv.URL+"/jobs", map[string]any{"title": "Backend Engineer"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	decodeInto(t, resp, &job)

	var app store.Application
	resp = doJSON(t, http.MethodPost, srv.URL+"/applications", map[string]any{
		"candidateId": cand.ID, "jobId": job.ID,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	decodeInto(t, resp, &app)
	assert.Equal(t, "applied", app.Status)
	assert.Greater(t, app.Score, 0, "scorer runs on intake")

	// invalid jump straight to hired
	resp = doJSON(t, http.MethodPatch, srv.URL+"/applications/"+int64String(app.ID), map[string]any{"status": "hired"})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	var apiErr APIError
	decodeInto(t, resp, &apiErr)
	assert.Equal(t, "bad_transition", apiErr.Error.Code)

	// a legal move
	resp = doJSON(t, http.MethodPatch, srv.URL+"/applications/"+int64String(app.ID), map[string]any{"status": "screening"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var moved store.Application
	decodeInto(t, resp, &moved)
	assert.Equal(t, "screening", moved.Status)
}

func TestAnalyticsCacheHitMissAndInvalidation(t *testing.T) {
	srv, _ := newTestServer(t)

	get := func() (*http.Response, string) {
		resp, err := http.Get(srv.URL + "/analytics/dashboard")
		require.NoError(t, err)
		return resp, resp.Header.Get("X-Cache")
	}

	resp, xc := get()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "MISS", xc)
	resp.Body.Close()

	resp, xc = get()
	assert.Equal(t, "HIT", xc)
	resp.Body.Close()

	// a candidate write invalidates the dashboard entry
	resp = doJSON(t, http.MethodPost, srv.URL+"/candidates", map[string]any{"email": "inv@example.com"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp, xc = get()
	assert.Equal(t, "MISS", xc)

	var sum store.DashboardSummary
	decodeInto(t, resp, &sum)
	assert.Equal(t, 1, sum.TotalCandidates, "refreshed entry sees the write")
}

func TestCacheAdminEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	// populate one entry
	resp, err := http.Get(srv.URL + "/analytics/pipeline")
	require.NoError(t, err)
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, srv.URL+"/cache/stats", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var stats cache.Stats
	decodeInto(t, resp, &stats)
	assert.Equal(t, 1, stats.Entries)

	resp = doJSON(t, http.MethodPost, srv.URL+"/cache/invalidate", map[string]any{"prefixes": []string{"dashboard"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out map[string]any
	decodeInto(t, resp, &out)
	assert.Equal(t, float64(1), out["dropped"])

	resp = doJSON(t, http.MethodPost, srv.URL+"/cache/invalidate", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := ratelimit.NewClientLimiter(1, 2)
	limited := httptest.NewServer(Chain(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }),
		RequestID, RateLimit(limiter),
	))
	defer limited.Close()

	ok := 0
	tooMany := 0
	for i := 0; i < 5; i++ {
		resp, err := http.Get(limited.URL + "/candidates")
		require.NoError(t, err)
		switch resp.StatusCode {
		case http.StatusOK:
			ok++
		case http.StatusTooManyRequests:
			tooMany++
			assert.Equal(t, "1", resp.Header.Get("Retry-After"))
		}
		resp.Body.Close()
	}
	assert.Equal(t, 2, ok, "burst of 2 passes")
	assert.Equal(t, 3, tooMany)

	// exempt paths never 429
	for i := 0; i < 5; i++ {
		resp, err := http.Get(limited.URL + "/health")
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()
	}
}

func TestDocumentUploadAndDownload(t *testing.T) {
	srv, _ := newTestServer(t)

	var cand store.Candidate
	resp := doJSON(t, http.MethodPost, srv.URL+"/candidates", map[string]any{"email": "docs@example.com"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	decodeInto(t, resp, &cand)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("candidate", int64String(cand.ID)))
	fw, err := mw.CreateFormFile("file", "resume.txt")
	require.NoError(t, err)
	_, err = fw.Write([]byte("plain text resume body"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/documents", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var doc store.Document
	decodeInto(t, resp, &doc)
	require.NotEmpty(t, doc.Key)

	resp, err = http.Get(srv.URL + "/documents/" + doc.Key)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	b, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "plain text resume body", string(b))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "resume.txt")

	resp = doJSON(t, http.MethodGet, srv.URL+"/documents?candidate="+int64String(cand.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var docs []store.Document
	decodeInto(t, resp, &docs)
	require.Len(t, docs, 1)
}

func TestHealthAndMethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodDelete, srv.URL+"/health", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	resp.Body.Close()
}
