package httpapi

import (
	"database/sql"
	"net/http"

	"talentsol-engine/internal/cache"
	"talentsol-engine/internal/events"
	"talentsol-engine/internal/store"
)

type InterviewsHandler struct {
	DB    *sql.DB
	Hub   *events.Hub
	Cache *cache.Manager
}

func (h InterviewsHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit, err := parsePagination(r)
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	q := r.URL.Query()
	ivs, total, err := store.ListInterviews(r.Context(), h.DB, store.ListInterviewsOpts{
		ApplicationID: queryInt64(r, "application"),
		Status:        q.Get("status"),
		Window:        q.Get("window"),
		Page:          page,
		Limit:         limit,
	})
	if err != nil {
		writeStoreErr(w, r, err)
		return
	}
	writeJSON(w, pageEnvelope(ivs, total, page, limit))
}

func (h InterviewsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "/interviews/")
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	iv, err := store.GetInterview(r.Context(), h.DB, id)
	if err != nil {
		writeStoreErr(w, r, err)
		return
	}
	writeJSON(w, iv)
}

func (h InterviewsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var iv store.Interview
	if err := decodeBody(r, &iv); err != nil {
		WriteError(w, r, http.StatusBadRequest, "bad_request", "invalid JSON: "+err.Error())
		return
	}
	if iv.ApplicationID <= 0 {
		WriteError(w, r, http.StatusBadRequest, "bad_request", "applicationId is required")
		return
	}

	created, err := store.CreateInterview(r.Context(), h.DB, iv)
	if err != nil {
		writeStoreErr(w, r, err)
		return
	}

	h.Cache.OnWrite("interview")
	reqID := RequestIDFrom(r.Context())
	h.Hub.Publish(events.MakeEvent(reqID, events.TypeInterviewScheduled, 1, map[string]any{"id": created.ID}))
	WriteJSON(w, http.StatusCreated, created)
}

func (h InterviewsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "/interviews/")
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	var iv store.Interview
	if err := decodeBody(r, &iv); err != nil {
		WriteError(w, r, http.StatusBadRequest, "bad_request", "invalid JSON: "+err.Error())
		return
	}
	iv.ID = id

	updated, err := store.UpdateInterview(r.Context(), h.DB, iv)
	if err != nil {
		writeStoreErr(w, r, err)
		return
	}

	h.Cache.OnWrite("interview")
	reqID := RequestIDFrom(r.Context())
	h.Hub.Publish(events.MakeEvent(reqID, events.TypeInterviewUpdated, 1, map[string]any{"id": id}))
	writeJSON(w, updated)
}

func (h InterviewsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "/interviews/")
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	if err := store.DeleteInterview(r.Context(), h.DB, id); err != nil {
		writeStoreErr(w, r, err)
		return
	}

	h.Cache.OnWrite("interview")
	writeJSON(w, map[string]any{"ok": true, "id": id})
}
