package main

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/traffic-insights/internal/domain"
)

func TestGenerate_Deterministic(t *testing.T) {
	opts := genOptions{Rows: 200, Seed: 42, MissingRate: 0.1}

	a, err := generate(opts)
	require.NoError(t, err)
	b, err := generate(opts)
	require.NoError(t, err)

	if diff := cmp.Diff(a.Rows(), b.Rows()); diff != "" {
		t.Fatalf("generated tables differ (-first +second):\n%s", diff)
	}

	opts.Seed = 43
	c, err := generate(opts)
	require.NoError(t, err)
	assert.NotEqual(t, a.Rows(), c.Rows())
}

func TestGenerate_Shape(t *testing.T) {
	tbl, err := generate(genOptions{Rows: 500, Seed: 1, MissingRate: 0})
	require.NoError(t, err)

	assert.Equal(t, 500, tbl.Len())
	assert.Equal(t, rawColumnsOrder, tbl.Columns())
	assert.Equal(t, 0, domain.DropMissing(tbl).Len()-tbl.Len())

	for _, rec := range tbl.Records() {
		h, err := rec.Int(domain.ColHourOfDay)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, h, 0)
		assert.LessOrEqual(t, h, 23)

		speed, err := rec.Float(domain.ColSpeed)
		require.NoError(t, err)
		assert.Positive(t, speed)
	}
}

func TestGenerate_FeedsCleaning(t *testing.T) {
	tbl, err := generate(genOptions{Rows: 1000, Seed: 7, MissingRate: 0.2})
	require.NoError(t, err)

	cleaned, stats, err := domain.Clean(tbl, domain.DefaultCleanOptions())
	require.NoError(t, err)

	assert.Positive(t, stats.DroppedMissing)
	assert.Positive(t, stats.DroppedExcluded)
	assert.Equal(t, stats.RawRows-stats.DroppedMissing-stats.DroppedExcluded, cleaned.Len())
}

func TestIsPeak(t *testing.T) {
	assert.True(t, isPeak(7))
	assert.True(t, isPeak(19))
	assert.False(t, isPeak(6))
	assert.False(t, isPeak(12))
}
