// Package roadblocks answers which spots were sold as roadblocks (the same
// creative run simultaneously across language blocks) in a broadcast year.
//
// The partition treats the oracle as a required capability: Unavailable
// reports ErrUnavailable instead of an empty set so callers cannot mistake a
// missing data source for "no roadblocks".
package roadblocks

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"spotgrid/internal/config"
	"spotgrid/internal/store"
)

// ErrUnavailable indicates no roadblock data source is configured.
var ErrUnavailable = errors.New("roadblock source unavailable")

// Source returns the roadblock spot ids for a year. Year zero means every
// year.
type Source interface {
	SpotIDs(ctx context.Context, year int) (map[int64]struct{}, error)
}

// StoreSource reads the roadblock_spots table.
type StoreSource struct {
	Store *store.Store
}

// SpotIDs implements Source.
func (s StoreSource) SpotIDs(ctx context.Context, year int) (map[int64]struct{}, error) {
	if s.Store == nil {
		return nil, ErrUnavailable
	}
	return s.Store.RoadblockSpotIDs(ctx, year)
}

// FileSource reads a YAML document of the form:
//
//	years:
//	  2024: [1001, 1002]
type FileSource struct {
	Path string
}

type fileDocument struct {
	Years map[int][]int64 `yaml:"years"`
}

// SpotIDs implements Source. The file is read on every call.
func (f FileSource) SpotIDs(_ context.Context, year int) (map[int64]struct{}, error) {
	if f.Path == "" {
		return nil, ErrUnavailable
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s does not exist", ErrUnavailable, f.Path)
		}
		return nil, fmt.Errorf("read roadblocks file: %w", err)
	}
	var doc fileDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse roadblocks file %s: %w", f.Path, err)
	}
	out := make(map[int64]struct{})
	for y, ids := range doc.Years {
		if year != 0 && y != year {
			continue
		}
		for _, id := range ids {
			out[id] = struct{}{}
		}
	}
	return out, nil
}

// Unavailable is the explicit "no oracle" source.
type Unavailable struct{}

// SpotIDs implements Source.
func (Unavailable) SpotIDs(context.Context, int) (map[int64]struct{}, error) {
	return nil, ErrUnavailable
}

// FromConfig selects the source named by cfg.Roadblocks.
func FromConfig(cfg *config.Config, st *store.Store) Source {
	switch cfg.Roadblocks.Source {
	case config.RoadblocksFile:
		return FileSource{Path: cfg.Roadblocks.File}
	case config.RoadblocksStore:
		return StoreSource{Store: st}
	default:
		return Unavailable{}
	}
}
