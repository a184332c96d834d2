// Package cli wires configuration, store and engine for the stance
// commands.
package cli

import (
	"context"
	"fmt"
	"log"

	"github.com/cognicore/stance/pkg/stance"
	"github.com/cognicore/stance/pkg/stance/config"
	"github.com/cognicore/stance/pkg/stance/store"
	"github.com/cognicore/stance/pkg/stance/store/sqlite"
)

// LoadConfig reads the YAML file (defaults when path is empty) and applies
// the environment overlay.
func LoadConfig(path, envFile string) (*config.Config, error) {
	cfg := config.Defaults()
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}
	if err := config.ApplyEnv(cfg, envFile); err != nil {
		return nil, err
	}
	return cfg, nil
}

// BuildEngine loads the configured lists, lexicon and store and returns an
// engine without a corpus. The cleanup function closes the store.
func BuildEngine(ctx context.Context, cfg *config.Config) (*stance.Engine, *config.Components, func(), error) {
	loader, err := cfg.Loader()
	if err != nil {
		return nil, nil, nil, err
	}
	components, err := loader.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	var st store.Store
	if cfg.Store.Path != "" {
		st, err = sqlite.OpenSQLite(ctx, cfg.Store.Path)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("open store: %w", err)
		}
	}

	engine := stance.New(stance.Options{
		Store:        st,
		Analyzer:     components.Pipeline,
		Filter:       components.Stoplist,
		MinFrequency: cfg.Filter.MinFrequency,
		ModelName:    cfg.Model.Name,
		Logf:         log.Printf,
	})

	cleanup := func() {
		if err := engine.Close(); err != nil {
			log.Printf("close store: %v", err)
		}
	}
	return engine, components, cleanup, nil
}

// LoadCorpus validates the configuration and loads the configured corpus
// into the engine.
func LoadCorpus(ctx context.Context, engine *stance.Engine, cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if _, err := engine.LoadCorpus(ctx, cfg.Corpus.Positive, cfg.Corpus.Negative); err != nil {
		return fmt.Errorf("load corpus: %w", err)
	}
	return nil
}
