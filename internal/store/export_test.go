package store

import "context"

// ForceSchemaVersion overwrites the recorded schema version.
func (s *Store) ForceSchemaVersion(ctx context.Context, version int) error {
	_, err := s.db.ExecContext(ctx, "UPDATE schema_version SET version = ?", version)
	return err
}

// SetRawAirDate writes an air_date value without parsing it.
func (s *Store) SetRawAirDate(ctx context.Context, spotID int64, value string) error {
	_, err := s.db.ExecContext(ctx, "UPDATE spots SET air_date = ? WHERE id = ?", value, spotID)
	return err
}
