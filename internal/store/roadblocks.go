package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// AddRoadblocks records spot ids as roadblocks for a year. Duplicates are ignored.
func (s *Store) AddRoadblocks(ctx context.Context, year int, spotIDs ...int64) error {
	if len(spotIDs) == 0 {
		return nil
	}
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		for _, id := range spotIDs {
			if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO roadblock_spots (year, spot_id) VALUES (?, ?)`, year, id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("add roadblocks for %d: %w", year, err)
	}
	return nil
}

// RoadblockSpotIDs returns the roadblock set for a year. Year zero returns the
// union over every year.
func (s *Store) RoadblockSpotIDs(ctx context.Context, year int) (map[int64]struct{}, error) {
	var ids []int64
	var err error
	if year == 0 {
		err = s.db.SelectContext(ctx, &ids, `SELECT DISTINCT spot_id FROM roadblock_spots`)
	} else {
		err = s.db.SelectContext(ctx, &ids, `SELECT spot_id FROM roadblock_spots WHERE year = ?`, year)
	}
	if err != nil {
		return nil, fmt.Errorf("roadblocks for %d: %w", year, err)
	}
	out := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out, nil
}
