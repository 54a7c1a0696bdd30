package roadblocks_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spotgrid/internal/config"
	"spotgrid/internal/roadblocks"
	"spotgrid/internal/testsupport"
)

func TestFileSource(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithRoadblocksFile("years:\n  2024: [11, 12]\n  2023: [9]\n"))
	src := roadblocks.FromConfig(cfg, nil)
	require.IsType(t, roadblocks.FileSource{}, src)

	ids, err := src.SpotIDs(context.Background(), 2024)
	require.NoError(t, err)
	assert.Len(t, ids, 2)
	assert.Contains(t, ids, int64(11))

	empty, err := src.SpotIDs(context.Background(), 2022)
	require.NoError(t, err)
	assert.Empty(t, empty)

	all, err := src.SpotIDs(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, map[int64]struct{}{9: {}, 11: {}, 12: {}}, all)
}

func TestFileSourceMissingFileIsUnavailable(t *testing.T) {
	src := roadblocks.FileSource{Path: filepath.Join(t.TempDir(), "absent.yaml")}
	_, err := src.SpotIDs(context.Background(), 2024)
	assert.ErrorIs(t, err, roadblocks.ErrUnavailable)
}

func TestFileSourceMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	testsupport.WriteFile(t, path, "years: [not, a, map]\n")
	_, err := roadblocks.FileSource{Path: path}.SpotIDs(context.Background(), 2024)
	require.Error(t, err)
	assert.NotErrorIs(t, err, roadblocks.ErrUnavailable)
}

func TestStoreSource(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	require.NoError(t, st.AddRoadblocks(context.Background(), 2024, 3))
	require.NoError(t, st.AddRoadblocks(context.Background(), 2023, 1))

	src := roadblocks.FromConfig(cfg, st)
	ids, err := src.SpotIDs(context.Background(), 2024)
	require.NoError(t, err)
	assert.Equal(t, map[int64]struct{}{3: {}}, ids)

	all, err := src.SpotIDs(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, map[int64]struct{}{1: {}, 3: {}}, all)
}

func TestUnavailable(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Roadblocks.Source = config.RoadblocksNone
	_, err := roadblocks.FromConfig(cfg, nil).SpotIDs(context.Background(), 2024)
	assert.ErrorIs(t, err, roadblocks.ErrUnavailable)
}
