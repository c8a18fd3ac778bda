package httpapi

import (
	"context"
	"database/sql"
	"net/http"
	"sync/atomic"
	"time"

	"talentsol-engine/internal/cache"
	"talentsol-engine/internal/config"
	"talentsol-engine/internal/events"
)

type IntakeHandler struct {
	DB           *sql.DB
	CfgVal       *atomic.Value // config.Config
	IntakeStatus *atomic.Value // httpapi.IntakeStatus
	Hub          *events.Hub
	Cache        *cache.Manager
	RunIntake    func(ctx context.Context, db *sql.DB, cfg config.Config, onImported func(appID int64)) (added int, err error)
}

func (h IntakeHandler) Status(w http.ResponseWriter, r *http.Request) {
	st := h.IntakeStatus.Load().(IntakeStatus)
	writeJSON(w, st)
}

func (h IntakeHandler) Run(w http.ResponseWriter, r *http.Request) {
	st := h.IntakeStatus.Load().(IntakeStatus)
	if st.Running {
		writeJSON(w, map[string]any{"ok": false, "msg": "already running"})
		return
	}

	h.IntakeStatus.Store(IntakeStatus{
		LastRunAt: time.Now().Format(time.RFC3339),
		Running:   true,
		LastError: "",
		LastAdded: 0,
		LastOkAt:  st.LastOkAt,
	})

	reqID := RequestIDFrom(r.Context())
	go func() {
		cfg := h.CfgVal.Load().(config.Config)
		added, err := h.RunIntake(context.Background(), h.DB, cfg, func(appID int64) {
			h.Cache.OnWrite("application")
			h.Hub.Publish(events.MakeEvent(reqID, events.TypeIntakeImported, 1, map[string]any{"applicationId": appID}))
		})

		now := time.Now().Format(time.RFC3339)
		next := h.IntakeStatus.Load().(IntakeStatus)
		next.Running = false
		next.LastRunAt = now
		next.LastAdded = added
		if err != nil {
			next.LastError = err.Error()
		} else {
			next.LastError = ""
			next.LastOkAt = now
		}
		h.IntakeStatus.Store(next)
	}()

	writeJSON(w, map[string]any{"ok": true})
}
