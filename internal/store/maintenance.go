package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"
)

// DatabaseHealth captures diagnostic details about the SQLite file.
type DatabaseHealth struct {
	DBPath           string
	DatabaseExists   bool
	DatabaseReadable bool
	SchemaVersion    int
	MissingTables    []string
	IntegrityCheck   bool
	TotalSpots       int
	Error            string
}

var expectedTables = []string{
	"spots",
	"programming_schedules",
	"schedule_market_assignments",
	"language_blocks",
	"spot_language_block_assignments",
	"roadblock_spots",
}

// CheckHealth returns diagnostic information about the database.
func (s *Store) CheckHealth(ctx context.Context) (DatabaseHealth, error) {
	health := DatabaseHealth{DBPath: s.path}

	if s.path == "" {
		return health, errors.New("database path is unknown")
	}

	info, err := os.Stat(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return health, nil
		}
		return health, fmt.Errorf("stat database: %w", err)
	}
	if info.IsDir() {
		return health, fmt.Errorf("database path %q is a directory", s.path)
	}
	health.DatabaseExists = true

	if s.db == nil {
		return health, errors.New("database connection unavailable")
	}

	connCtx, cancel := context.WithTimeout(ensureContext(ctx), 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(connCtx); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("ping database: %w", err)
	}
	health.DatabaseReadable = true

	if err := s.db.GetContext(connCtx, &health.SchemaVersion, "SELECT version FROM schema_version LIMIT 1"); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("read schema version: %w", err)
	}

	var tables []string
	if err := s.db.SelectContext(connCtx, &tables, "SELECT name FROM sqlite_master WHERE type = 'table'"); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("list tables: %w", err)
	}
	present := make(map[string]struct{}, len(tables))
	for _, name := range tables {
		present[name] = struct{}{}
	}
	for _, name := range expectedTables {
		if _, ok := present[name]; !ok {
			health.MissingTables = append(health.MissingTables, name)
		}
	}
	sort.Strings(health.MissingTables)

	if _, ok := present["spots"]; ok {
		if err := s.db.GetContext(connCtx, &health.TotalSpots, "SELECT COUNT(*) FROM spots"); err != nil {
			health.Error = err.Error()
			return health, fmt.Errorf("count spots: %w", err)
		}
	}

	var integrityResult string
	if err := s.db.GetContext(connCtx, &integrityResult, "PRAGMA integrity_check"); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("integrity check: %w", err)
	}
	health.IntegrityCheck = strings.EqualFold(integrityResult, "ok")

	return health, nil
}

// Healthy reports whether the database passed every check.
func (h DatabaseHealth) Healthy() bool {
	return h.DatabaseExists && h.DatabaseReadable && h.SchemaVersion == schemaVersion &&
		len(h.MissingTables) == 0 && h.IntegrityCheck && h.Error == ""
}
