package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/finlens/backend/internal/analysisconfig"
	"github.com/finlens/backend/internal/contracts"
	"github.com/finlens/backend/internal/loader"
	"github.com/finlens/backend/pkg/config"
	"github.com/finlens/backend/pkg/database"
	"github.com/finlens/backend/pkg/logger"
)

// bootstrap loads the process config, logger, analysis profile and the
// configured snapshot source. The returned cleanup closes the database
// pool when one was opened.
func bootstrap() (*config.Config, *logger.Logger, *analysisconfig.Config, contracts.SnapshotSource, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, nil, nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	log := logger.New(cfg)

	profile := analysisconfig.Default()
	if cfg.AnalysisConfigPath != "" {
		profile, _, err = analysisconfig.Load(cfg.AnalysisConfigPath)
		if err != nil {
			return nil, nil, nil, nil, nil, fmt.Errorf("load analysis config: %w", err)
		}
		hash, _ := analysisconfig.Hash(profile)
		log.WithFields(map[string]interface{}{
			"profile": profile.Meta.ProfileID,
			"hash":    hash,
		}).Info("Analysis profile loaded")
	}

	source, cleanup, err := newSource(cfg, log)
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}

	return cfg, log, profile, source, cleanup, nil
}

// newSource builds the snapshot source named by SNAPSHOT_SOURCE.
func newSource(cfg *config.Config, log *logger.Logger) (contracts.SnapshotSource, func(), error) {
	switch cfg.Source {
	case "postgres":
		db, err := database.New(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		log.Info("Connected to database")
		return loader.NewRepository(db.Pool), db.Close, nil
	default:
		store, err := loader.NewFileStore(cfg.DataDir, log)
		if err != nil {
			return nil, nil, fmt.Errorf("open snapshot directory: %w", err)
		}
		return store, func() {}, nil
	}
}

// printJSON pretty-prints a result to stdout.
func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
