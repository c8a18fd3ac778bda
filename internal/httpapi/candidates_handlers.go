package httpapi

import (
	"database/sql"
	"net/http"
	"strings"

	"talentsol-engine/internal/cache"
	"talentsol-engine/internal/events"
	"talentsol-engine/internal/store"
)

type CandidatesHandler struct {
	DB    *sql.DB
	Hub   *events.Hub
	Cache *cache.Manager
}

func (h CandidatesHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit, err := parsePagination(r)
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	q := r.URL.Query()
	cands, total, err := store.ListCandidates(r.Context(), h.DB, store.ListCandidatesOpts{
		Search: q.Get("search"),
		Sort:   q.Get("sort"),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		writeStoreErr(w, r, err)
		return
	}
	writeJSON(w, pageEnvelope(cands, total, page, limit))
}

func (h CandidatesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "/candidates/")
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	c, err := store.GetCandidate(r.Context(), h.DB, id)
	if err != nil {
		writeStoreErr(w, r, err)
		return
	}
	writeJSON(w, c)
}

func (h CandidatesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var c store.Candidate
	if err := decodeBody(r, &c); err != nil {
		WriteError(w, r, http.StatusBadRequest, "bad_request", "invalid JSON: "+err.Error())
		return
	}
	if strings.TrimSpace(c.Email) == "" {
		WriteError(w, r, http.StatusBadRequest, "bad_request", "email is required")
		return
	}

	created, err := store.CreateCandidate(r.Context(), h.DB, c)
	if err != nil {
		writeStoreErr(w, r, err)
		return
	}

	h.Cache.OnWrite("candidate")
	reqID := RequestIDFrom(r.Context())
	h.Hub.Publish(events.MakeEvent(reqID, events.TypeCandidateCreated, 1, map[string]any{"id": created.ID}))
	WriteJSON(w, http.StatusCreated, created)
}

func (h CandidatesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "/candidates/")
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	var c store.Candidate
	if err := decodeBody(r, &c); err != nil {
		WriteError(w, r, http.StatusBadRequest, "bad_request", "invalid JSON: "+err.Error())
		return
	}
	c.ID = id

	updated, err := store.UpdateCandidate(r.Context(), h.DB, c)
	if err != nil {
		writeStoreErr(w, r, err)
		return
	}

	h.Cache.OnWrite("candidate")
	reqID := RequestIDFrom(r.Context())
	h.Hub.Publish(events.MakeEvent(reqID, events.TypeCandidateUpdated, 1, map[string]any{"id": id}))
	writeJSON(w, updated)
}

func (h CandidatesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "/candidates/")
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	if err := store.DeleteCandidate(r.Context(), h.DB, id); err != nil {
		writeStoreErr(w, r, err)
		return
	}

	h.Cache.OnWrite("candidate")
	reqID := RequestIDFrom(r.Context())
	h.Hub.Publish(events.MakeEvent(reqID, events.TypeCandidateDeleted, 1, map[string]any{"id": id}))
	writeJSON(w, map[string]any{"ok": true, "id": id})
}
