// README: Dependency wiring; builds the engine and its collaborators from
// config.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"saguaro/internal/ai"
	"saguaro/internal/config"
	"saguaro/internal/infra"
	"saguaro/internal/logger"
	"saguaro/internal/maps"
	"saguaro/internal/modules/appointments"
	"saguaro/internal/modules/policy"
	"saguaro/internal/modules/scheduling"
	"saguaro/internal/modules/zoning"
)

type App struct {
	Cfg      *config.Config
	Policies *policy.Set
	Engine   *scheduling.Engine
	Parser   ai.WindowParser
	Source   appointments.Source

	rdb     *redis.Client
	gemini  *ai.GeminiParser
	closeDB func()
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	policies, err := policy.Default()
	if err != nil {
		return nil, fmt.Errorf("load policies: %w", err)
	}

	classifier, err := zoning.LoadClassifier(cfg.Zones.Path)
	if err != nil {
		return nil, fmt.Errorf("load zones: %w", err)
	}

	a := &App{Cfg: cfg, Policies: policies}

	a.rdb = infra.NewRedis(cfg.Redis.Addr)
	geocoder, err := maps.NewGeocoder(cfg.Maps.APIKey, a.rdb, logger.New("maps"))
	if err != nil {
		return nil, err
	}

	a.Engine = scheduling.NewEngine(policies, geocoder, classifier, logger.New("engine"))

	if cfg.AI.GeminiKey != "" {
		a.gemini, err = ai.NewGeminiParser(ctx, cfg.AI.GeminiKey, policies.Location, logger.New("ai"))
		if err != nil {
			return nil, err
		}
		a.Parser = a.gemini
	}

	var source appointments.Source
	switch cfg.Source.Backend {
	case "clickup":
		source = appointments.NewClickUpClient(cfg.Source.ClickUpToken, cfg.Source.ClickUpListID, policies.Location, logger.New("clickup"))
	case "postgres":
		pool, err := infra.NewDB(ctx, cfg.Source.PostgresDSN)
		if err != nil {
			return nil, err
		}
		a.closeDB = pool.Close
		source = appointments.NewStore(pool, policies.Location)
	default:
		return nil, fmt.Errorf("unknown source backend %q", cfg.Source.Backend)
	}
	a.Source = appointments.NewCachedSource(source, cfg.Cache.Dir,
		time.Duration(cfg.Cache.TTLMinutes)*time.Minute, logger.New("cache"))

	return a, nil
}

// Snapshot fetches the cached existing-appointment snapshot.
func (a *App) Snapshot(ctx context.Context) ([]scheduling.ExistingAppointment, error) {
	return a.Source.Snapshot(ctx)
}

func (a *App) Close() {
	if a.gemini != nil {
		a.gemini.Close()
	}
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
	if a.closeDB != nil {
		a.closeDB()
	}
}
