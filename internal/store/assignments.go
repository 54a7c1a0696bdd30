package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"spotgrid/internal/spots"
)

const assignmentColumns = "spot_id, schedule_id, block_id, primary_block_id, customer_intent, spans_multiple_blocks, spanned_blocks, requires_attention, alert_reason, degraded, assignment_method, assigned_at"

type assignmentRow struct {
	SpotID            int64          `db:"spot_id"`
	ScheduleID        sql.NullInt64  `db:"schedule_id"`
	BlockID           sql.NullInt64  `db:"block_id"`
	PrimaryBlockID    sql.NullInt64  `db:"primary_block_id"`
	Intent            string         `db:"customer_intent"`
	SpansMultiple     bool           `db:"spans_multiple_blocks"`
	SpannedBlocks     sql.NullString `db:"spanned_blocks"`
	RequiresAttention bool           `db:"requires_attention"`
	Reason            sql.NullString `db:"alert_reason"`
	Degraded          bool           `db:"degraded"`
	Method            sql.NullString `db:"assignment_method"`
	AssignedAt        string         `db:"assigned_at"`
}

func (r assignmentRow) toAssignment() (spots.Assignment, error) {
	a := spots.Assignment{
		SpotID:            r.SpotID,
		ScheduleID:        ptrInt(r.ScheduleID),
		BlockID:           ptrInt(r.BlockID),
		PrimaryBlockID:    ptrInt(r.PrimaryBlockID),
		Intent:            spots.Intent(r.Intent),
		SpansMultiple:     r.SpansMultiple,
		RequiresAttention: r.RequiresAttention,
		Reason:            r.Reason.String,
		Degraded:          r.Degraded,
		Method:            r.Method.String,
	}
	if r.SpannedBlocks.Valid && r.SpannedBlocks.String != "" {
		if err := json.Unmarshal([]byte(r.SpannedBlocks.String), &a.SpannedBlockIDs); err != nil {
			return a, fmt.Errorf("spot %d spanned_blocks: %w", r.SpotID, err)
		}
	}
	if assignedAt, err := time.Parse(time.RFC3339Nano, r.AssignedAt); err == nil {
		a.AssignedAt = assignedAt
	}
	return a, nil
}

// ReplaceAssignment atomically swaps the assignment row for a spot: any
// existing row is deleted and the new one inserted in the same transaction.
func (s *Store) ReplaceAssignment(ctx context.Context, a spots.Assignment) error {
	if !a.Intent.Valid() {
		return fmt.Errorf("replace assignment for spot %d: unknown intent %q", a.SpotID, a.Intent)
	}
	var spanned any
	if len(a.SpannedBlockIDs) > 0 {
		encoded, err := json.Marshal(a.SpannedBlockIDs)
		if err != nil {
			return fmt.Errorf("encode spanned blocks: %w", err)
		}
		spanned = string(encoded)
	}
	assignedAt := a.AssignedAt
	if assignedAt.IsZero() {
		assignedAt = time.Now()
	}

	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM spot_language_block_assignments WHERE spot_id = ?`, a.SpotID); err != nil {
			return fmt.Errorf("delete previous: %w", err)
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO spot_language_block_assignments (`+assignmentColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			a.SpotID,
			nullableInt(a.ScheduleID),
			nullableInt(a.BlockID),
			nullableInt(a.PrimaryBlockID),
			string(a.Intent),
			boolToInt(a.SpansMultiple),
			spanned,
			boolToInt(a.RequiresAttention),
			nullableString(a.Reason),
			boolToInt(a.Degraded),
			nullableString(a.Method),
			assignedAt.UTC().Format(time.RFC3339Nano),
		)
		if err != nil {
			return fmt.Errorf("insert: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("replace assignment for spot %d: %w", a.SpotID, err)
	}
	return nil
}

// GetAssignment returns the assignment for a spot, or nil when none exists.
func (s *Store) GetAssignment(ctx context.Context, spotID int64) (*spots.Assignment, error) {
	var row assignmentRow
	err := s.db.GetContext(ctx, &row, `SELECT `+assignmentColumns+` FROM spot_language_block_assignments WHERE spot_id = ?`, spotID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get assignment: %w", err)
	}
	a, err := row.toAssignment()
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// AssignmentsForYear returns assignments keyed by spot id for spots aired in
// year. Year zero returns every assignment.
func (s *Store) AssignmentsForYear(ctx context.Context, year int) (map[int64]spots.Assignment, error) {
	var rows []assignmentRow
	var err error
	if year == 0 {
		err = s.db.SelectContext(ctx, &rows, `SELECT `+assignmentColumns+` FROM spot_language_block_assignments`)
	} else {
		from, to := yearRange(year)
		err = s.db.SelectContext(ctx, &rows, `SELECT `+prefixed("a", assignmentColumns)+`
			FROM spot_language_block_assignments a
			JOIN spots s ON s.id = a.spot_id
			WHERE s.air_date >= ? AND s.air_date < ?`, from, to)
	}
	if err != nil {
		return nil, fmt.Errorf("list assignments for %d: %w", year, err)
	}
	out := make(map[int64]spots.Assignment, len(rows))
	for _, r := range rows {
		a, err := r.toAssignment()
		if err != nil {
			return nil, err
		}
		out[a.SpotID] = a
	}
	return out, nil
}

// CountAssignmentRows returns how many assignment rows exist for a spot.
func (s *Store) CountAssignmentRows(ctx context.Context, spotID int64) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(1) FROM spot_language_block_assignments WHERE spot_id = ?`, spotID); err != nil {
		return 0, fmt.Errorf("count assignments: %w", err)
	}
	return n, nil
}

// AssignmentStats summarizes stored assignments.
type AssignmentStats struct {
	Spots             int                  `json:"spots"`
	Assigned          int                  `json:"assigned"`
	ByIntent          map[spots.Intent]int `json:"by_intent"`
	RequiresAttention int                  `json:"requires_attention"`
	SpansMultiple     int                  `json:"spans_multiple"`
	Degraded          int                  `json:"degraded"`
}

// Unassigned returns the number of spots without an assignment row.
func (a AssignmentStats) Unassigned() int {
	return a.Spots - a.Assigned
}

// AssignmentStats counts assignments by intent and flag.
func (s *Store) AssignmentStats(ctx context.Context) (AssignmentStats, error) {
	stats := AssignmentStats{ByIntent: make(map[spots.Intent]int)}
	var err error
	if stats.Spots, err = s.CountSpots(ctx); err != nil {
		return stats, err
	}

	var byIntent []struct {
		Intent string `db:"customer_intent"`
		Count  int    `db:"n"`
	}
	if err := s.db.SelectContext(ctx, &byIntent,
		`SELECT customer_intent, COUNT(1) AS n FROM spot_language_block_assignments GROUP BY customer_intent`); err != nil {
		return stats, fmt.Errorf("assignment stats: %w", err)
	}
	for _, row := range byIntent {
		stats.ByIntent[spots.Intent(row.Intent)] = row.Count
		stats.Assigned += row.Count
	}

	var flags struct {
		Attention sql.NullInt64 `db:"attention"`
		Spanning  sql.NullInt64 `db:"spanning"`
		Degraded  sql.NullInt64 `db:"degraded"`
	}
	if err := s.db.GetContext(ctx, &flags, `SELECT
			SUM(requires_attention) AS attention,
			SUM(spans_multiple_blocks) AS spanning,
			SUM(degraded) AS degraded
		FROM spot_language_block_assignments`); err != nil {
		return stats, fmt.Errorf("assignment flag stats: %w", err)
	}
	stats.RequiresAttention = int(flags.Attention.Int64)
	stats.SpansMultiple = int(flags.Spanning.Int64)
	stats.Degraded = int(flags.Degraded.Int64)
	return stats, nil
}
