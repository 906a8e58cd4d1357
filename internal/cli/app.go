package cli

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/hongminglow/medtour-be/internal/auth"
	"github.com/hongminglow/medtour-be/internal/cache"
	"github.com/hongminglow/medtour-be/internal/config"
	"github.com/hongminglow/medtour-be/internal/remote"
	"github.com/hongminglow/medtour-be/internal/statesync"
)

// app holds the collaborators one command invocation needs.
type app struct {
	cfg    config.PlannerConfig
	client *remote.Client
	local  *cache.SQLite
	sync   *statesync.Synchronizer
}

func newApp() (*app, error) {
	_ = godotenv.Load()
	cfg, err := config.LoadPlanner()
	if err != nil {
		return nil, err
	}

	var subject string
	if cfg.Token != "" {
		subject, err = auth.SubjectFromToken(cfg.Token)
		if err != nil {
			return nil, fmt.Errorf("PLANNER_TOKEN: %w", err)
		}
	}

	local, err := cache.OpenSQLite(cfg.CachePath)
	if err != nil {
		return nil, err
	}
	client := remote.New(cfg.APIURL, cfg.Token)
	s := statesync.New(client, local, statesync.StaticSubject(subject), statesync.WithDebounce(cfg.Debounce()))
	return &app{cfg: cfg, client: client, local: local, sync: s}, nil
}

func (a *app) close() {
	if err := a.local.Close(); err != nil {
		log.Printf("close cache: %v", err)
	}
}

func requireScope() error {
	if scopeID == "" {
		return fmt.Errorf("--scope is required")
	}
	return nil
}
