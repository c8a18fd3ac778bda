package httpapi

import (
	"context"
	"database/sql"
	"net/http"
	"strconv"

	"talentsol-engine/internal/cache"
	"talentsol-engine/internal/store"
)

type AnalyticsHandler struct {
	DB    *sql.DB
	Cache *cache.Manager
}

// serveCached is the cache middleware for analytics GETs: read-through with
// an X-Cache: HIT|MISS stamp so the dashboard (and tests) can see what the
// cache did.
func (h AnalyticsHandler) serveCached(w http.ResponseWriter, r *http.Request, prefix string, parts []string, load cache.Loader) {
	v, hit, err := h.Cache.GetOrLoad(r.Context(), prefix, parts, load)
	if err != nil {
		writeStoreErr(w, r, err)
		return
	}
	if hit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	writeJSON(w, v)
}

func (h AnalyticsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	h.serveCached(w, r, "dashboard", nil, func(ctx context.Context) (any, error) {
		return store.Dashboard(ctx, h.DB)
	})
}

func (h AnalyticsHandler) ApplicationsOverTime(w http.ResponseWriter, r *http.Request) {
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))
	if days <= 0 || days > 365 {
		days = 30
	}
	h.serveCached(w, r, "trend", []string{"apps-over-time", strconv.Itoa(days)}, func(ctx context.Context) (any, error) {
		return store.ApplicationsOverTime(ctx, h.DB, days)
	})
}

func (h AnalyticsHandler) Pipeline(w http.ResponseWriter, r *http.Request) {
	h.serveCached(w, r, "dashboard", []string{"pipeline"}, func(ctx context.Context) (any, error) {
		return store.Pipeline(ctx, h.DB)
	})
}

func (h AnalyticsHandler) Sources(w http.ResponseWriter, r *http.Request) {
	h.serveCached(w, r, "dashboard", []string{"sources"}, func(ctx context.Context) (any, error) {
		return store.Sources(ctx, h.DB)
	})
}

func (h AnalyticsHandler) TimeToHire(w http.ResponseWriter, r *http.Request) {
	h.serveCached(w, r, "trend", []string{"time-to-hire"}, func(ctx context.Context) (any, error) {
		return store.TimeToHireStats(ctx, h.DB)
	})
}

func (h AnalyticsHandler) InterviewsThisWeek(w http.ResponseWriter, r *http.Request) {
	h.serveCached(w, r, "list", []string{"interviews-week"}, func(ctx context.Context) (any, error) {
		return store.InterviewsThisWeek(ctx, h.DB)
	})
}
