package httpapi

import (
	"net/http"
	"strings"
)

// NewMux returns the raw mux so main() can wrap it in the middleware chain.
func NewMux(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	// Candidates
	cah := CandidatesHandler{DB: d.DB, Hub: d.Hub, Cache: d.Cache}
	mux.HandleFunc("/candidates", methodMux(map[string]http.HandlerFunc{
		http.MethodGet:  cah.List,
		http.MethodPost: cah.Create,
	}))
	mux.HandleFunc("/candidates/", methodMux(map[string]http.HandlerFunc{
		http.MethodGet:    cah.Get,
		http.MethodPut:    cah.Update,
		http.MethodDelete: cah.Delete,
	}))

	// Jobs; /jobs/{id}/top shares the subtree with /jobs/{id}
	jh := JobsHandler{DB: d.DB, Hub: d.Hub, Cache: d.Cache}
	mux.HandleFunc("/jobs", methodMux(map[string]http.HandlerFunc{
		http.MethodGet:  jh.List,
		http.MethodPost: jh.Create,
	}))
	mux.HandleFunc("/jobs/", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: func(w http.ResponseWriter, r *http.Request) {
			if strings.HasSuffix(r.URL.Path, "/top") {
				jh.TopCandidates(w, r)
				return
			}
			jh.Get(w, r)
		},
		http.MethodPut:    jh.Update,
		http.MethodDelete: jh.Delete,
	}))

	// Applications; PATCH moves the pipeline
	aph := ApplicationsHandler{DB: d.DB, Hub: d.Hub, Cache: d.Cache, Scorer: d.Scorer}
	mux.HandleFunc("/applications", methodMux(map[string]http.HandlerFunc{
		http.MethodGet:  aph.List,
		http.MethodPost: aph.Create,
	}))
	mux.HandleFunc("/applications/", methodMux(map[string]http.HandlerFunc{
		http.MethodGet:    aph.Get,
		http.MethodPatch:  aph.Transition,
		http.MethodDelete: aph.Delete,
	}))

	// Interviews
	ivh := InterviewsHandler{DB: d.DB, Hub: d.Hub, Cache: d.Cache}
	mux.HandleFunc("/interviews", methodMux(map[string]http.HandlerFunc{
		http.MethodGet:  ivh.List,
		http.MethodPost: ivh.Create,
	}))
	mux.HandleFunc("/interviews/", methodMux(map[string]http.HandlerFunc{
		http.MethodGet:    ivh.Get,
		http.MethodPut:    ivh.Update,
		http.MethodDelete: ivh.Delete,
	}))

	// Documents
	dh := DocumentsHandler{DB: d.DB, Hub: d.Hub}
	mux.HandleFunc("/documents", methodMux(map[string]http.HandlerFunc{
		http.MethodGet:  dh.List,
		http.MethodPost: dh.Upload,
	}))
	mux.HandleFunc("/documents/", methodMux(map[string]http.HandlerFunc{
		http.MethodGet:    dh.GetByPath,
		http.MethodDelete: dh.DeleteByPath,
	}))

	// Analytics (cached)
	anh := AnalyticsHandler{DB: d.DB, Cache: d.Cache}
	mux.HandleFunc("/analytics/dashboard", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: anh.Dashboard,
	}))
	mux.HandleFunc("/analytics/applications-over-time", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: anh.ApplicationsOverTime,
	}))
	mux.HandleFunc("/analytics/pipeline", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: anh.Pipeline,
	}))
	mux.HandleFunc("/analytics/sources", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: anh.Sources,
	}))
	mux.HandleFunc("/analytics/time-to-hire", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: anh.TimeToHire,
	}))
	mux.HandleFunc("/analytics/interviews-this-week", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: anh.InterviewsThisWeek,
	}))

	// Cache admin
	csh := CacheHandler{Cache: d.Cache}
	mux.HandleFunc("/cache/stats", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: csh.Stats,
	}))
	mux.HandleFunc("/cache/invalidate", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: csh.Invalidate,
	}))
	mux.HandleFunc("/cache/warm", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: csh.Warm,
	}))

	// Config
	ch := ConfigHandler{
		CfgVal:      d.CfgVal,
		UserCfgPath: d.UserCfgPath,
		LoadCfg:     d.LoadCfg,
	}
	mux.HandleFunc("/config", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Get,
		http.MethodPut: ch.Put,
	}))
	mux.HandleFunc("/config/path", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Path,
	}))
	mux.HandleFunc("/config/validate", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Validate,
	}))

	// Secrets (use cfgVal, NOT a snapshot cfg)
	sh := SecretsHandler{CfgVal: d.CfgVal}
	mux.HandleFunc("/api/secrets/imap", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: sh.SetIMAPPassword,
	}))

	// Email intake
	inh := IntakeHandler{
		DB:           d.DB,
		CfgVal:       d.CfgVal,
		IntakeStatus: d.IntakeStatus,
		Hub:          d.Hub,
		Cache:        d.Cache,
		RunIntake:    d.RunIntake,
	}
	mux.HandleFunc("/intake/status", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: inh.Status,
	}))
	mux.HandleFunc("/intake/run", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: inh.Run,
	}))

	// SSE events
	eh := EventsHandler{Hub: d.Hub}
	mux.HandleFunc("/events", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: eh.ServeSSE,
	}))

	// Demo data
	sdh := SeedHandler{DB: d.DB, Cache: d.Cache}
	mux.HandleFunc("/seed", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: sdh.Seed,
	}))

	// Maintenance
	dbh := DBHandler{DB: d.DB}
	mux.HandleFunc("/db/checkpoint", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: dbh.Checkpoint,
	}))

	hh := HealthHandler{DB: d.DB}
	mux.HandleFunc("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: hh.Health,
	}))

	return mux
}
