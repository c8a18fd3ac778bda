package httpapi

import (
	"context"
	"database/sql"
	"sync/atomic"

	"talentsol-engine/internal/cache"
	"talentsol-engine/internal/config"
	"talentsol-engine/internal/events"
	"talentsol-engine/internal/rank"
)

type Deps struct {
	DB *sql.DB

	Hub   *events.Hub
	Cache *cache.Manager

	Scorer rank.Scorer

	// Atomic stores
	CfgVal       *atomic.Value // stores config.Config
	IntakeStatus *atomic.Value // stores httpapi.IntakeStatus

	// Config persistence
	UserCfgPath string
	LoadCfg     func() (config.Config, error)

	// Intake entrypoint (inject for testability)
	RunIntake func(ctx context.Context, db *sql.DB, cfg config.Config, onImported func(appID int64)) (added int, err error)
}
