package httpapi

import (
	"database/sql"
	"net/http"

	"talentsol-engine/internal/cache"
	"talentsol-engine/internal/domain"
	"talentsol-engine/internal/events"
	"talentsol-engine/internal/rank"
	"talentsol-engine/internal/store"
)

type ApplicationsHandler struct {
	DB     *sql.DB
	Hub    *events.Hub
	Cache  *cache.Manager
	Scorer rank.Scorer
}

func (h ApplicationsHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit, err := parsePagination(r)
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	q := r.URL.Query()
	apps, total, err := store.ListApplications(r.Context(), h.DB, store.ListApplicationsOpts{
		CandidateID: queryInt64(r, "candidate"),
		JobID:       queryInt64(r, "job"),
		Status:      q.Get("status"),
		Window:      q.Get("window"),
		Page:        page,
		Limit:       limit,
	})
	if err != nil {
		writeStoreErr(w, r, err)
		return
	}
	writeJSON(w, pageEnvelope(apps, total, page, limit))
}

func (h ApplicationsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "/applications/")
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	a, err := store.GetApplication(r.Context(), h.DB, id)
	if err != nil {
		writeStoreErr(w, r, err)
		return
	}
	writeJSON(w, a)
}

func (h ApplicationsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var a store.Application
	if err := decodeBody(r, &a); err != nil {
		WriteError(w, r, http.StatusBadRequest, "bad_request", "invalid JSON: "+err.Error())
		return
	}
	if a.CandidateID <= 0 || a.JobID <= 0 {
		WriteError(w, r, http.StatusBadRequest, "bad_request", "candidateId and jobId are required")
		return
	}

	// Score on intake unless the caller supplied one.
	if a.Score == 0 && h.Scorer != nil {
		c, err := store.GetCandidate(r.Context(), h.DB, a.CandidateID)
		if err != nil {
			writeStoreErr(w, r, err)
			return
		}
		a.Score, a.Tags = h.Scorer.Score(domain.CandidateProfile{
			FirstName:       c.FirstName,
			LastName:        c.LastName,
			Email:           c.Email,
			Phone:           c.Phone,
			Location:        c.Location,
			Skills:          c.Skills,
			YearsExperience: c.YearsExperience,
			EducationLevel:  c.EducationLevel,
			Source:          c.Source,
		})
	}

	created, err := store.CreateApplication(r.Context(), h.DB, a)
	if err != nil {
		writeStoreErr(w, r, err)
		return
	}

	h.Cache.OnWrite("application")
	reqID := RequestIDFrom(r.Context())
	h.Hub.Publish(events.MakeEvent(reqID, events.TypeApplicationCreated, 1, map[string]any{"id": created.ID}))
	WriteJSON(w, http.StatusCreated, created)
}

type transitionReq struct {
	Status string `json:"status"`
}

// Transition handles PATCH /applications/{id}: one pipeline move at a time.
func (h ApplicationsHandler) Transition(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "/applications/")
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	var req transitionReq
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "bad_request", "invalid JSON: "+err.Error())
		return
	}

	updated, err := store.TransitionApplication(r.Context(), h.DB, id, req.Status)
	if err != nil {
		writeStoreErr(w, r, err)
		return
	}

	h.Cache.OnWrite("application")
	reqID := RequestIDFrom(r.Context())
	h.Hub.Publish(events.MakeEvent(reqID, events.TypeApplicationMoved, 1, map[string]any{
		"id": id, "status": updated.Status,
	}))
	writeJSON(w, updated)
}

func (h ApplicationsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "/applications/")
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	if err := store.DeleteApplication(r.Context(), h.DB, id); err != nil {
		writeStoreErr(w, r, err)
		return
	}

	h.Cache.OnWrite("application")
	reqID := RequestIDFrom(r.Context())
	h.Hub.Publish(events.MakeEvent(reqID, events.TypeApplicationDeleted, 1, map[string]any{"id": id}))
	writeJSON(w, map[string]any{"ok": true, "id": id})
}
