package httpapi

import (
	"net/http"

	"talentsol-engine/internal/cache"
)

type CacheHandler struct {
	Cache *cache.Manager
}

func (h CacheHandler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.Cache.Stats())
}

type invalidateReq struct {
	Prefixes []string `json:"prefixes"`
}

// Invalidate drops the named prefixes, or everything when none are given.
func (h CacheHandler) Invalidate(w http.ResponseWriter, r *http.Request) {
	var req invalidateReq
	if r.ContentLength > 0 {
		if err := decodeBody(r, &req); err != nil {
			WriteError(w, r, http.StatusBadRequest, "bad_request", "invalid JSON: "+err.Error())
			return
		}
	}

	if len(req.Prefixes) == 0 {
		h.Cache.Flush()
		writeJSON(w, map[string]any{"ok": true, "flushed": true})
		return
	}

	n := h.Cache.Invalidate(req.Prefixes...)
	writeJSON(w, map[string]any{"ok": true, "dropped": n})
}

func (h CacheHandler) Warm(w http.ResponseWriter, r *http.Request) {
	n, err := h.Cache.Warm(r.Context())
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "warm_failed", err.Error())
		return
	}
	writeJSON(w, map[string]any{"ok": true, "warmed": n})
}
