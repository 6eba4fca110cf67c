package app

import (
	"database/sql"
	"time"

	"github.com/shiftcal/shiftcal/internal/config"
	"github.com/shiftcal/shiftcal/internal/utils"
	"github.com/shiftcal/shiftcal/pkg/gcal"
	"github.com/shiftcal/shiftcal/pkg/schedule"
	"github.com/shiftcal/shiftcal/pkg/scraper"
	"github.com/shiftcal/shiftcal/pkg/sync"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	Extractor  scraper.Extractor
	Normalizer *schedule.Normalizer

	Authenticator *gcal.Authenticator
	EventStore    sync.EventStore

	Reconciler  *sync.Reconciler
	RunRepo     sync.RunRepository
	SyncService sync.Service
	SyncHandler *sync.Handler

	Clock utils.Clock
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(db *sql.DB, cfg config.Application) (*Dependencies, error) {
	location, err := time.LoadLocation(cfg.Sync.Timezone)
	if err != nil {
		return nil, err
	}

	deps := &Dependencies{}
	deps.Clock = utils.SystemClock{}

	deps.Extractor = scraper.NewChromeExtractor(cfg.Site)
	deps.Normalizer = schedule.NewNormalizer(location, deps.Clock)

	deps.Authenticator = gcal.NewAuthenticator(db, cfg)
	deps.EventStore = gcal.NewStore(deps.Authenticator, cfg, deps.Clock)

	deps.Reconciler = sync.NewReconciler(deps.EventStore, deps.Clock)
	deps.RunRepo = sync.NewRunRepo(db)
	deps.SyncService = sync.NewService(deps.Extractor, deps.Normalizer, deps.Reconciler,
		deps.Authenticator, deps.RunRepo, cfg.Sync.Interactive)
	deps.SyncHandler = sync.NewHandler(deps.SyncService)

	return deps, nil
}
