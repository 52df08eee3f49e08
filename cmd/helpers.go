package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"

	"github.com/parcelworks/sitescreen/internal/config"
	"github.com/parcelworks/sitescreen/internal/layers"
	"github.com/parcelworks/sitescreen/internal/model"
	"github.com/parcelworks/sitescreen/internal/store"
)

// initStore opens and migrates the run store.
func initStore(ctx context.Context) (store.Store, error) {
	st, err := store.NewSQLite(cfg.Store.Path)
	if err != nil {
		return nil, eris.Wrap(err, "init store")
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

// loadLayerStore loads the reference-layer snapshot. An empty dir falls back
// to the configured snapshot directory.
func loadLayerStore(dir string) (*layers.Store, error) {
	if dir == "" {
		dir = cfg.Layers.SnapshotDir
	}
	snap, err := layers.LoadSnapshot(dir)
	if err != nil {
		return nil, err
	}
	return layers.NewStore(snap)
}

// loadRuleBook loads the rule tables. An empty path falls back to the
// configured rules file, and from there to the built-in defaults.
func loadRuleBook(path string) (*config.RuleBook, error) {
	if path == "" {
		path = cfg.Rules.Path
	}
	return config.LoadRuleBook(path)
}

// readSites parses a JSON array of sites from a file.
func readSites(path string) ([]model.Site, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read sites %s", path)
	}

	var sites []model.Site
	if err := json.Unmarshal(raw, &sites); err != nil {
		return nil, eris.Wrapf(err, "parse sites %s", path)
	}
	if len(sites) == 0 {
		return nil, eris.Errorf("no sites in %s", path)
	}
	return sites, nil
}
