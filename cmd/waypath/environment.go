// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"log/slog"
	"os"

	"github.com/bureau-foundation/waypath/cmd/waypath/cli"
	"github.com/bureau-foundation/waypath/lib/config"
	"github.com/bureau-foundation/waypath/lib/trail"
	"github.com/bureau-foundation/waypath/lib/trailstore"
)

// storeParams are the flags shared by every command that opens the
// path directory.
type storeParams struct {
	Config    string `flag:"config,c" desc:"config file (default: $WAYPATH_CONFIG)"`
	Directory string `flag:"dir,d" desc:"path directory, overriding the config file"`
	Verbose   bool   `flag:"verbose,v" desc:"log debug detail to stderr"`
}

// environment is an opened path directory and what was needed to open it.
type environment struct {
	config *config.Config
	store  *trailstore.Store
	logger *slog.Logger
}

// loadConfig resolves the configuration: --config, then
// WAYPATH_CONFIG, then built-in defaults when --dir names the
// directory outright. --dir always wins over the configured directory.
func (p *storeParams) loadConfig() (*config.Config, error) {
	var cfg *config.Config
	switch {
	case p.Config != "":
		loaded, err := config.LoadFile(p.Config)
		if err != nil {
			return nil, cli.Validation("%w", err)
		}
		cfg = loaded
	case os.Getenv(config.EnvironmentVariable) != "":
		loaded, err := config.Load()
		if err != nil {
			return nil, cli.Validation("%w", err)
		}
		cfg = loaded
	case p.Directory != "":
		cfg = config.Default()
	default:
		return nil, cli.Validation("no path directory: pass --config or --dir, or set %s", config.EnvironmentVariable)
	}

	if p.Directory != "" {
		cfg.Paths.Paths = p.Directory
	}
	if err := cfg.Validate(); err != nil {
		return nil, cli.Validation("invalid configuration: %w", err)
	}
	return cfg, nil
}

// open loads the configuration and opens the path directory. The
// caller must close the returned environment.
func (p *storeParams) open(command string) (*environment, error) {
	logger := cli.NewCommandLogger(p.Verbose).With("command", command)

	cfg, err := p.loadConfig()
	if err != nil {
		return nil, err
	}
	store, err := trailstore.Open(trailstore.Config{
		Directory: cfg.Paths.Paths,
		Logger:    logger,
	})
	if err != nil {
		if errors.Is(err, trailstore.ErrLocked) {
			return nil, cli.Conflict("%w (is a server running against %s?)", err, cfg.Paths.Paths)
		}
		return nil, cli.Internal("%w", err)
	}
	logger.Debug("path directory opened", "directory", store.Directory())
	return &environment{config: cfg, store: store, logger: logger}, nil
}

func (e *environment) Close() error {
	return e.store.Close()
}

// load reads one path, mapping lookup failures to the CLI's error
// categories.
func (e *environment) load(name string) (*trail.Path, error) {
	path, err := e.store.Load(name)
	switch {
	case err == nil:
		return path, nil
	case errors.Is(err, trail.ErrInvalidName):
		return nil, cli.Validation("%w", err)
	case errors.Is(err, trail.ErrNotFound):
		return nil, cli.NotFound("no stored path named %q", name)
	default:
		return nil, cli.Internal("%w", err)
	}
}

// namesOrAll returns names, or every stored path name when names is
// empty.
func (e *environment) namesOrAll(names []string) ([]string, error) {
	if len(names) > 0 {
		return names, nil
	}
	all, err := e.store.List()
	if err != nil {
		return nil, cli.Internal("listing %s: %w", e.store.Directory(), err)
	}
	return all, nil
}
