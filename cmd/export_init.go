package main

import (
	"context"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/climateledger/disclosure-export/internal/catalog"
	"github.com/climateledger/disclosure-export/internal/db"
	"github.com/climateledger/disclosure-export/internal/history"
	"github.com/climateledger/disclosure-export/internal/model"
	"github.com/climateledger/disclosure-export/internal/workbook"
)

// exportEnv holds the initialized provider, catalogue, and assembler
// shared by the export/batch/serve commands.
type exportEnv struct {
	Provider  history.Provider
	Catalog   catalog.Catalog
	Schema    workbook.Schema
	Assembler *workbook.Assembler
}

// Close releases resources held by the export environment.
func (e *exportEnv) Close() {
	if e.Provider != nil {
		_ = e.Provider.Close()
	}
}

// initExport sets up the history provider, catalogue, and assembler from
// config. Callers should defer env.Close().
func initExport(ctx context.Context) (*exportEnv, error) {
	if err := cfg.Validate("export"); err != nil {
		return nil, err
	}

	env := &exportEnv{}

	var pool db.Pool
	switch cfg.Store.Driver {
	case "postgres":
		p, err := db.Connect(ctx, cfg.Store.DatabaseURL, &cfg.Store.Pool)
		if err != nil {
			return nil, err
		}
		pool = p
		env.Provider = history.NewPostgres(pool, pool.Close)
	case "sqlite":
		p, err := history.NewSQLite(cfg.Store.DatabaseURL)
		if err != nil {
			return nil, err
		}
		env.Provider = p
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}

	var base catalog.Catalog
	switch {
	case cfg.Catalog.FixturePath != "":
		s, err := catalog.LoadStaticFromFile(cfg.Catalog.FixturePath)
		if err != nil {
			env.Close()
			return nil, err
		}
		base = s
	case pool != nil:
		base = catalog.NewPostgres(pool)
	default:
		env.Close()
		return nil, eris.New("catalog: sqlite store requires catalog.fixture_path")
	}

	var lim *rate.Limiter
	if cfg.Catalog.LookupRatePerSec > 0 {
		burst := cfg.Catalog.LookupBurst
		if burst <= 0 {
			burst = 1
		}
		lim = rate.NewLimiter(rate.Limit(cfg.Catalog.LookupRatePerSec), burst)
	}
	env.Catalog = catalog.NewCached(base, lim)

	env.Schema = workbook.DefaultSchema()
	if cfg.Export.SchemaPath != "" {
		s, err := workbook.LoadSchema(cfg.Export.SchemaPath)
		if err != nil {
			env.Close()
			return nil, err
		}
		env.Schema = s
	}

	years := model.YearRange{First: cfg.Export.YearFirst, Last: cfg.Export.YearLast}
	env.Assembler = workbook.New(env.Provider, env.Catalog, env.Schema, years)

	return env, nil
}
