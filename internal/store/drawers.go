package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"toolcrib/pkg/domain"
)

// LoadDrawerConfig returns the drawer grid configuration. A missing or
// unreadable file yields an empty configuration, so every drawer uses the
// default grid.
func (s *Store) LoadDrawerConfig(ctx context.Context) domain.DrawerConfig {
	if s.drawers != nil {
		return s.drawers.Clone()
	}
	start := time.Now()
	cfg, err := s.readDrawerConfig()
	s.observe(ctx, "load_drawer_config", start, err)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Error("load drawer config failed", "path", s.paths.DrawerConfig, "error", err)
		}
		return domain.DrawerConfig{}
	}
	s.drawers = cfg
	return cfg.Clone()
}

func (s *Store) readDrawerConfig() (domain.DrawerConfig, error) {
	// #nosec G304 -- path comes from the store configuration
	raw, err := os.ReadFile(s.paths.DrawerConfig)
	if err != nil {
		return nil, err
	}
	cfg := domain.DrawerConfig{}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = domain.DrawerConfig{}
	}
	return cfg, nil
}

// SaveDrawerConfig writes cfg as indented JSON and replaces the cache.
func (s *Store) SaveDrawerConfig(ctx context.Context, cfg domain.DrawerConfig) error {
	start := time.Now()
	payload, err := json.MarshalIndent(cfg, "", "    ")
	if err == nil {
		err = s.writeFile(ctx, s.paths.DrawerConfig, payload)
	}
	s.observe(ctx, "save_drawer_config", start, err)
	if err != nil {
		s.logger.Error("save drawer config failed", "path", s.paths.DrawerConfig, "error", err)
		return fmt.Errorf("save drawer config: %w", err)
	}
	s.drawers = cfg.Clone()
	return nil
}

// DrawerGrid returns the grid of (cabinet, drawer), defaulting to 4x6.
func (s *Store) DrawerGrid(ctx context.Context, cabinet, drawer int) domain.DrawerGrid {
	return s.LoadDrawerConfig(ctx).Grid(cabinet, drawer)
}
