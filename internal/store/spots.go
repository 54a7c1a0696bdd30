package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"spotgrid/internal/spots"
)

const spotColumns = "id, market_id, air_date, day_of_week, time_in, time_out, language_code, customer_name, agency_name, bill_code, gross_rate_cents, spot_type, revenue_type"

type spotRow struct {
	ID          int64          `db:"id"`
	MarketID    int64          `db:"market_id"`
	AirDate     string         `db:"air_date"`
	DayOfWeek   sql.NullString `db:"day_of_week"`
	TimeIn      sql.NullString `db:"time_in"`
	TimeOut     sql.NullString `db:"time_out"`
	Language    sql.NullString `db:"language_code"`
	Customer    sql.NullString `db:"customer_name"`
	Agency      sql.NullString `db:"agency_name"`
	BillCode    sql.NullString `db:"bill_code"`
	GrossRate   sql.NullInt64  `db:"gross_rate_cents"`
	SpotType    string         `db:"spot_type"`
	RevenueType sql.NullString `db:"revenue_type"`
}

func (r spotRow) toSpot() spots.Spot {
	spot := spots.Spot{
		ID:          r.ID,
		MarketID:    r.MarketID,
		DayOfWeek:   r.DayOfWeek.String,
		StartTime:   r.TimeIn.String,
		EndTime:     r.TimeOut.String,
		Language:    r.Language.String,
		Customer:    r.Customer.String,
		Agency:      r.Agency.String,
		BillCode:    r.BillCode.String,
		SpotType:    spots.ParseSpotType(r.SpotType),
		RevenueType: r.RevenueType.String,
	}
	// Unparseable dates stay zero so validation reports the spot instead of
	// the read failing.
	if airDate, err := parseDate(r.AirDate); err == nil {
		spot.AirDate = airDate
	}
	if r.GrossRate.Valid {
		rate := spots.Cents(r.GrossRate.Int64)
		spot.GrossRate = &rate
	}
	return spot
}

func spotsFromRows(rows []spotRow) []spots.Spot {
	out := make([]spots.Spot, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toSpot())
	}
	return out
}

// UpsertSpot inserts or replaces the ingested fields of a spot.
func (s *Store) UpsertSpot(ctx context.Context, spot spots.Spot) error {
	if spot.ID == 0 {
		return errors.New("upsert spot: id is required")
	}
	var rate any
	if spot.GrossRate != nil {
		rate = int64(*spot.GrossRate)
	}
	spotType := spot.SpotType
	if spotType == "" {
		spotType = spots.SpotTypeStandard
	}
	args := map[string]any{
		"id":               spot.ID,
		"market_id":        spot.MarketID,
		"air_date":         formatDate(spot.AirDate),
		"day_of_week":      nullableString(spot.DayOfWeek),
		"time_in":          nullableString(spot.StartTime),
		"time_out":         nullableString(spot.EndTime),
		"language_code":    nullableString(spot.Language),
		"customer_name":    nullableString(spot.Customer),
		"agency_name":      nullableString(spot.Agency),
		"bill_code":        nullableString(spot.BillCode),
		"gross_rate_cents": rate,
		"spot_type":        string(spotType),
		"revenue_type":     nullableString(spot.RevenueType),
	}
	const query = `INSERT INTO spots (` + spotColumns + `)
		VALUES (:id, :market_id, :air_date, :day_of_week, :time_in, :time_out, :language_code, :customer_name, :agency_name, :bill_code, :gross_rate_cents, :spot_type, :revenue_type)
		ON CONFLICT(id) DO UPDATE SET
			market_id = excluded.market_id,
			air_date = excluded.air_date,
			day_of_week = excluded.day_of_week,
			time_in = excluded.time_in,
			time_out = excluded.time_out,
			language_code = excluded.language_code,
			customer_name = excluded.customer_name,
			agency_name = excluded.agency_name,
			bill_code = excluded.bill_code,
			gross_rate_cents = excluded.gross_rate_cents,
			spot_type = excluded.spot_type,
			revenue_type = excluded.revenue_type,
			updated_at = CURRENT_TIMESTAMP`
	ctx = ensureContext(ctx)
	if err := retryOnBusy(ctx, func() error {
		_, err := s.db.NamedExecContext(ctx, query, args)
		return err
	}); err != nil {
		return fmt.Errorf("upsert spot %d: %w", spot.ID, err)
	}
	return nil
}

// GetSpot returns a spot by id, or nil when it does not exist.
func (s *Store) GetSpot(ctx context.Context, id int64) (*spots.Spot, error) {
	var row spotRow
	err := s.db.GetContext(ctx, &row, `SELECT `+spotColumns+` FROM spots WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get spot: %w", err)
	}
	spot := row.toSpot()
	return &spot, nil
}

// UnassignedSpots returns spots without an assignment row in id order. A
// non-positive limit returns all of them.
func (s *Store) UnassignedSpots(ctx context.Context, limit int) ([]spots.Spot, error) {
	return s.UnassignedSpotsAfter(ctx, 0, limit)
}

// UnassignedSpotsAfter is UnassignedSpots restricted to ids greater than
// afterID, for paging past spots that cannot be assigned.
func (s *Store) UnassignedSpotsAfter(ctx context.Context, afterID int64, limit int) ([]spots.Spot, error) {
	if limit <= 0 {
		limit = -1
	}
	var rows []spotRow
	err := s.db.SelectContext(ctx, &rows, `SELECT `+prefixed("s", spotColumns)+`
		FROM spots s
		LEFT JOIN spot_language_block_assignments a ON a.spot_id = s.id
		WHERE a.id IS NULL AND s.id > ?
		ORDER BY s.id
		LIMIT ?`, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("list unassigned spots: %w", err)
	}
	return spotsFromRows(rows), nil
}

// SpotsForYear returns every spot aired in year, in id order. Year zero
// returns the whole population.
func (s *Store) SpotsForYear(ctx context.Context, year int) ([]spots.Spot, error) {
	var rows []spotRow
	var err error
	if year == 0 {
		err = s.db.SelectContext(ctx, &rows, `SELECT `+spotColumns+` FROM spots ORDER BY id`)
	} else {
		from, to := yearRange(year)
		err = s.db.SelectContext(ctx, &rows,
			`SELECT `+spotColumns+` FROM spots WHERE air_date >= ? AND air_date < ? ORDER BY id`, from, to)
	}
	if err != nil {
		return nil, fmt.Errorf("list spots for %d: %w", year, err)
	}
	return spotsFromRows(rows), nil
}

// CountSpots returns the number of stored spots.
func (s *Store) CountSpots(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(1) FROM spots`); err != nil {
		return 0, fmt.Errorf("count spots: %w", err)
	}
	return n, nil
}
