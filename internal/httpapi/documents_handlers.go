package httpapi

import (
	"database/sql"
	"io"
	"net/http"
	"strconv"
	"strings"

	"talentsol-engine/internal/events"
	"talentsol-engine/internal/store"
)

type DocumentsHandler struct {
	DB  *sql.DB
	Hub *events.Hub
}

// Upload accepts a multipart form with a "file" part and a "candidate" field.
func (h DocumentsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(store.MaxDocumentBytes + 64*1024); err != nil {
		WriteError(w, r, http.StatusBadRequest, "bad_request", "invalid multipart form: "+err.Error())
		return
	}

	candID, err := strconv.ParseInt(r.FormValue("candidate"), 10, 64)
	if err != nil || candID <= 0 {
		WriteError(w, r, http.StatusBadRequest, "bad_request", "candidate field is required")
		return
	}

	// the candidate must exist; FK errors read badly as a response
	if _, err := store.GetCandidate(r.Context(), h.DB, candID); err != nil {
		writeStoreErr(w, r, err)
		return
	}

	f, hdr, err := r.FormFile("file")
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "bad_request", "file part is required")
		return
	}
	defer f.Close()

	b, err := io.ReadAll(io.LimitReader(f, store.MaxDocumentBytes+1))
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "bad_request", "read upload: "+err.Error())
		return
	}
	if len(b) > store.MaxDocumentBytes {
		WriteError(w, r, http.StatusRequestEntityTooLarge, "too_large", "document exceeds the 2MB limit")
		return
	}

	d, err := store.PutDocument(r.Context(), h.DB, candID, hdr.Filename, hdr.Header.Get("Content-Type"), b)
	if err != nil {
		writeStoreErr(w, r, err)
		return
	}

	reqID := RequestIDFrom(r.Context())
	h.Hub.Publish(events.MakeEvent(reqID, events.TypeDocumentUploaded, 1, map[string]any{
		"key": d.Key, "candidateId": candID,
	}))
	WriteJSON(w, http.StatusCreated, d)
}

// List serves /documents?candidate=N (metadata only).
func (h DocumentsHandler) List(w http.ResponseWriter, r *http.Request) {
	candID := queryInt64(r, "candidate")
	if candID <= 0 {
		WriteError(w, r, http.StatusBadRequest, "bad_request", "candidate query param is required")
		return
	}
	docs, err := store.ListDocuments(r.Context(), h.DB, candID)
	if err != nil {
		writeStoreErr(w, r, err)
		return
	}
	writeJSON(w, docs)
}

// GetByPath streams the blob at /documents/{key}.
func (h DocumentsHandler) GetByPath(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimSpace(strings.TrimPrefix(r.URL.Path, "/documents/"))
	if key == "" {
		WriteError(w, r, http.StatusBadRequest, "bad_request", "missing key")
		return
	}

	d, b, err := store.GetDocument(r.Context(), h.DB, key)
	if err != nil {
		writeStoreErr(w, r, err)
		return
	}

	ct := d.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ct)
	w.Header().Set("Content-Disposition", `attachment; filename="`+d.Name+`"`)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	_, _ = w.Write(b)
}

func (h DocumentsHandler) DeleteByPath(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimSpace(strings.TrimPrefix(r.URL.Path, "/documents/"))
	if key == "" {
		WriteError(w, r, http.StatusBadRequest, "bad_request", "missing key")
		return
	}

	if err := store.DeleteDocument(r.Context(), h.DB, key); err != nil {
		writeStoreErr(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"ok": true, "key": key})
}
