package httpapi

import (
	"database/sql"
	"net/http"
	"strconv"

	"talentsol-engine/internal/cache"
	"talentsol-engine/internal/store"
)

type SeedHandler struct {
	DB    *sql.DB
	Cache *cache.Manager
}

// Seed fills an empty-ish database with demo data. ?candidates=N controls
// volume; everything downstream (analytics, pipeline, interviews) derives
// from what gets generated here.
func (h SeedHandler) Seed(w http.ResponseWriter, r *http.Request) {
	n, _ := strconv.Atoi(r.URL.Query().Get("candidates"))

	res, err := store.SeedDemoData(r.Context(), h.DB, n)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "seed_failed", err.Error())
		return
	}

	// Everything changed at once; start the cache over.
	h.Cache.Flush()
	writeJSON(w, res)
}
