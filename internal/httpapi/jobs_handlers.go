package httpapi

import (
	"database/sql"
	"net/http"
	"strconv"
	"strings"

	"talentsol-engine/internal/cache"
	"talentsol-engine/internal/events"
	"talentsol-engine/internal/store"
)

type JobsHandler struct {
	DB    *sql.DB
	Hub   *events.Hub
	Cache *cache.Manager
}

func (h JobsHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit, err := parsePagination(r)
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	q := r.URL.Query()
	jobs, total, err := store.ListJobs(r.Context(), h.DB, store.ListJobsOpts{
		Status: q.Get("status"),
		Search: q.Get("search"),
		Sort:   q.Get("sort"),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		writeStoreErr(w, r, err)
		return
	}
	writeJSON(w, pageEnvelope(jobs, total, page, limit))
}

func (h JobsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "/jobs/")
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	j, err := store.GetJob(r.Context(), h.DB, id)
	if err != nil {
		writeStoreErr(w, r, err)
		return
	}
	writeJSON(w, j)
}

func (h JobsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var j store.Job
	if err := decodeBody(r, &j); err != nil {
		WriteError(w, r, http.StatusBadRequest, "bad_request", "invalid JSON: "+err.Error())
		return
	}
	if strings.TrimSpace(j.Title) == "" {
		WriteError(w, r, http.StatusBadRequest, "bad_request", "title is required")
		return
	}

	created, err := store.CreateJob(r.Context(), h.DB, j)
	if err != nil {
		writeStoreErr(w, r, err)
		return
	}

	h.Cache.OnWrite("job")
	reqID := RequestIDFrom(r.Context())
	h.Hub.Publish(events.MakeEvent(reqID, events.TypeJobCreated, 1, map[string]any{"id": created.ID}))
	WriteJSON(w, http.StatusCreated, created)
}

func (h JobsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "/jobs/")
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	var j store.Job
	if err := decodeBody(r, &j); err != nil {
		WriteError(w, r, http.StatusBadRequest, "bad_request", "invalid JSON: "+err.Error())
		return
	}
	j.ID = id

	updated, err := store.UpdateJob(r.Context(), h.DB, j)
	if err != nil {
		writeStoreErr(w, r, err)
		return
	}

	h.Cache.OnWrite("job")
	reqID := RequestIDFrom(r.Context())
	h.Hub.Publish(events.MakeEvent(reqID, events.TypeJobUpdated, 1, map[string]any{"id": id}))
	writeJSON(w, updated)
}

func (h JobsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "/jobs/")
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	if err := store.DeleteJob(r.Context(), h.DB, id); err != nil {
		writeStoreErr(w, r, err)
		return
	}

	h.Cache.OnWrite("job")
	reqID := RequestIDFrom(r.Context())
	h.Hub.Publish(events.MakeEvent(reqID, events.TypeJobDeleted, 1, map[string]any{"id": id}))
	writeJSON(w, map[string]any{"ok": true, "id": id})
}

// TopCandidates serves /jobs/{id}/top: applicants ranked by score.
func (h JobsHandler) TopCandidates(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/jobs/")
	path = strings.TrimSuffix(path, "/top")
	id, err := strconv.ParseInt(strings.Trim(path, "/"), 10, 64)
	if err != nil || id <= 0 {
		WriteError(w, r, http.StatusBadRequest, "bad_request", "invalid job id")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	ranked, err := store.TopCandidates(r.Context(), h.DB, id, limit)
	if err != nil {
		writeStoreErr(w, r, err)
		return
	}
	writeJSON(w, ranked)
}
