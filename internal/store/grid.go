package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"spotgrid/internal/grid"
	"spotgrid/internal/spots"
)

type scheduleRow struct {
	ID             int64          `db:"id"`
	Name           string         `db:"name"`
	EffectiveStart sql.NullString `db:"effective_start"`
	EffectiveEnd   sql.NullString `db:"effective_end"`
	Active         bool           `db:"is_active"`
}

type bindingRow struct {
	ScheduleID     int64          `db:"schedule_id"`
	MarketID       int64          `db:"market_id"`
	EffectiveStart sql.NullString `db:"effective_start"`
	EffectiveEnd   sql.NullString `db:"effective_end"`
	Priority       int            `db:"priority"`
}

type blockRow struct {
	ID         int64          `db:"id"`
	ScheduleID int64          `db:"schedule_id"`
	DayOfWeek  string         `db:"day_of_week"`
	TimeStart  string         `db:"time_start"`
	TimeEnd    string         `db:"time_end"`
	Language   sql.NullString `db:"language"`
	Name       sql.NullString `db:"block_name"`
	BlockType  sql.NullString `db:"block_type"`
	DayPart    sql.NullString `db:"day_part"`
}

// CreateSchedule inserts a schedule and returns its id. A non-zero ID is kept.
func (s *Store) CreateSchedule(ctx context.Context, sched grid.Schedule) (int64, error) {
	if sched.Name == "" {
		return 0, errors.New("create schedule: name is required")
	}
	var id any
	if sched.ID != 0 {
		id = sched.ID
	}
	lastID, err := s.execWithRetry(ctx,
		`INSERT INTO programming_schedules (id, name, effective_start, effective_end, is_active) VALUES (?, ?, ?, ?, ?)`,
		id, sched.Name, nullableString(formatDate(sched.EffectiveStart)), nullableDate(sched.EffectiveEnd), boolToInt(sched.Active),
	)
	if err != nil {
		return 0, fmt.Errorf("create schedule %q: %w", sched.Name, err)
	}
	return lastID, nil
}

// SetScheduleActive toggles whether a schedule participates in resolution.
func (s *Store) SetScheduleActive(ctx context.Context, id int64, active bool) error {
	if _, err := s.execWithRetry(ctx, `UPDATE programming_schedules SET is_active = ? WHERE id = ?`, boolToInt(active), id); err != nil {
		return fmt.Errorf("update schedule %d: %w", id, err)
	}
	return nil
}

// BindSchedule attaches a schedule to a market for a date range.
func (s *Store) BindSchedule(ctx context.Context, b grid.Binding) error {
	if _, err := s.execWithRetry(ctx,
		`INSERT INTO schedule_market_assignments (schedule_id, market_id, effective_start, effective_end, priority) VALUES (?, ?, ?, ?, ?)`,
		b.ScheduleID, b.MarketID, nullableString(formatDate(b.EffectiveStart)), nullableDate(b.EffectiveEnd), b.Priority,
	); err != nil {
		return fmt.Errorf("bind schedule %d to market %d: %w", b.ScheduleID, b.MarketID, err)
	}
	return nil
}

// AddBlock inserts an active language block and returns its id. A non-zero ID is kept.
func (s *Store) AddBlock(ctx context.Context, b grid.Block) (int64, error) {
	var id any
	if b.ID != 0 {
		id = b.ID
	}
	lastID, err := s.execWithRetry(ctx,
		`INSERT INTO language_blocks (id, schedule_id, day_of_week, time_start, time_end, language, block_name, block_type, day_part, is_active)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 1)`,
		id, b.ScheduleID, spots.DayName(b.Day), b.Start.String(), b.End.String(),
		nullableString(b.Language), nullableString(b.Name), nullableString(b.BlockType), nullableString(b.DayPart),
	)
	if err != nil {
		return 0, fmt.Errorf("add block to schedule %d: %w", b.ScheduleID, err)
	}
	return lastID, nil
}

// SetBlockActive toggles whether a block is loaded into grid snapshots.
func (s *Store) SetBlockActive(ctx context.Context, id int64, active bool) error {
	if _, err := s.execWithRetry(ctx, `UPDATE language_blocks SET is_active = ? WHERE id = ?`, boolToInt(active), id); err != nil {
		return fmt.Errorf("update block %d: %w", id, err)
	}
	return nil
}

// LoadGrid reads every schedule, binding, and active block into an immutable
// snapshot. Rows whose day or times cannot be parsed are left out and
// reported as issues alongside the snapshot.
func (s *Store) LoadGrid(ctx context.Context) (*grid.Snapshot, []grid.Issue, error) {
	var (
		scheduleRows []scheduleRow
		bindingRows  []bindingRow
		blockRows    []blockRow
	)
	if err := s.db.SelectContext(ctx, &scheduleRows,
		`SELECT id, name, effective_start, effective_end, is_active FROM programming_schedules ORDER BY id`); err != nil {
		return nil, nil, fmt.Errorf("load schedules: %w", err)
	}
	if err := s.db.SelectContext(ctx, &bindingRows,
		`SELECT schedule_id, market_id, effective_start, effective_end, priority FROM schedule_market_assignments ORDER BY id`); err != nil {
		return nil, nil, fmt.Errorf("load schedule bindings: %w", err)
	}
	if err := s.db.SelectContext(ctx, &blockRows,
		`SELECT id, schedule_id, day_of_week, time_start, time_end, language, block_name, block_type, day_part
		 FROM language_blocks WHERE is_active = 1 ORDER BY id`); err != nil {
		return nil, nil, fmt.Errorf("load language blocks: %w", err)
	}

	var issues []grid.Issue
	schedules := make([]grid.Schedule, 0, len(scheduleRows))
	for _, r := range scheduleRows {
		sched := grid.Schedule{ID: r.ID, Name: r.Name, Active: r.Active}
		if r.EffectiveStart.Valid && r.EffectiveStart.String != "" {
			start, err := parseDate(r.EffectiveStart.String)
			if err != nil {
				issues = append(issues, grid.Issue{ScheduleID: r.ID, Message: "unreadable effective_start: " + err.Error()})
				continue
			}
			sched.EffectiveStart = start
		}
		end, err := parseNullDate(r.EffectiveEnd)
		if err != nil {
			issues = append(issues, grid.Issue{ScheduleID: r.ID, Message: "unreadable effective_end: " + err.Error()})
			continue
		}
		sched.EffectiveEnd = end
		schedules = append(schedules, sched)
	}

	bindings := make([]grid.Binding, 0, len(bindingRows))
	for _, r := range bindingRows {
		b := grid.Binding{ScheduleID: r.ScheduleID, MarketID: r.MarketID, Priority: r.Priority}
		if r.EffectiveStart.Valid && r.EffectiveStart.String != "" {
			start, err := parseDate(r.EffectiveStart.String)
			if err != nil {
				issues = append(issues, grid.Issue{ScheduleID: r.ScheduleID, Message: fmt.Sprintf("market %d binding: unreadable effective_start: %v", r.MarketID, err)})
				continue
			}
			b.EffectiveStart = start
		}
		end, err := parseNullDate(r.EffectiveEnd)
		if err != nil {
			issues = append(issues, grid.Issue{ScheduleID: r.ScheduleID, Message: fmt.Sprintf("market %d binding: unreadable effective_end: %v", r.MarketID, err)})
			continue
		}
		b.EffectiveEnd = end
		bindings = append(bindings, b)
	}

	blocks := make([]grid.Block, 0, len(blockRows))
	for _, r := range blockRows {
		block, err := r.toBlock()
		if err != nil {
			issues = append(issues, grid.Issue{ScheduleID: r.ScheduleID, BlockIDs: []int64{r.ID}, Message: err.Error()})
			continue
		}
		blocks = append(blocks, block)
	}

	return grid.NewSnapshot(schedules, bindings, blocks), issues, nil
}

func (r blockRow) toBlock() (grid.Block, error) {
	day, err := spots.ParseDay(r.DayOfWeek)
	if err != nil {
		return grid.Block{}, err
	}
	start, err := spots.ParseClock(r.TimeStart)
	if err != nil {
		return grid.Block{}, fmt.Errorf("time_start: %w", err)
	}
	end, err := spots.ParseClock(r.TimeEnd)
	if err != nil {
		return grid.Block{}, fmt.Errorf("time_end: %w", err)
	}
	return grid.Block{
		ID:         r.ID,
		ScheduleID: r.ScheduleID,
		Day:        day,
		Start:      start,
		End:        end,
		Language:   r.Language.String,
		Name:       r.Name.String,
		BlockType:  r.BlockType.String,
		DayPart:    r.DayPart.String,
	}, nil
}
