package app

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/shiftcal/shiftcal/internal/config"
	"github.com/shiftcal/shiftcal/internal/database"
	log "github.com/sirupsen/logrus"
)

// Application wires configuration, database, router, and server lifecycle.
type Application struct {
	cfg    config.Application
	deps   *Dependencies
	router *mux.Router
	srv    *http.Server
}

// NewApplication constructs the full application: either served over HTTP
// via Run() or driven once through Deps() by the CLI commands.
func NewApplication(configPath string) (*Application, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, err
	}
	// db stays open for the process lifetime; closed on process exit.
	if err := database.Migrate(cfg.Database); err != nil {
		return nil, err
	}

	deps, err := BuildDependencies(db, cfg)
	if err != nil {
		return nil, err
	}

	r := mux.NewRouter()
	SetupMiddleware(r, deps, cfg)
	RegisterRoutes(r, deps, cfg)

	srv := &http.Server{
		Handler: r,
		Addr:    ":8184",
		// Sync runs scrape a website and talk to Google serially; they take
		// a while, so the write timeout is generous.
		WriteTimeout: 5 * time.Minute,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Application{cfg: cfg, deps: deps, router: r, srv: srv}, nil
}

// Deps exposes the wired services for the one-shot CLI commands.
func (a *Application) Deps() *Dependencies {
	return a.deps
}

// Run starts the HTTP server and blocks.
func (a *Application) Run() error {
	log.Infof("Starting server on %s", a.srv.Addr)
	return a.srv.ListenAndServe()
}
