package testkit

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func TestSeedTable(t *testing.T) {
	db, err := sqlx.Open("sqlite", filepath.Join(t.TempDir(), "seed.db"))
	require.NoError(t, err)
	defer db.Close()

	cfg := DefaultCampaignConfig()
	cfg.Days = 5
	cfg.MissingRate = 0.1
	c, err := GenerateCampaigns(cfg)
	require.NoError(t, err)

	require.NoError(t, SeedTable(context.Background(), db, "campaigns", c))

	var count int
	require.NoError(t, db.Get(&count, "SELECT COUNT(*) FROM campaigns"))
	assert.Equal(t, len(c.Rows), count)

	var first string
	require.NoError(t, db.Get(&first, "SELECT campaign FROM campaigns LIMIT 1"))
	assert.Equal(t, "search_brand", first)
}

func TestSeedTableRejectsBadIdentifier(t *testing.T) {
	db, err := sqlx.Open("sqlite", filepath.Join(t.TempDir(), "seed.db"))
	require.NoError(t, err)
	defer db.Close()

	c, err := GenerateCampaigns(DefaultCampaignConfig())
	require.NoError(t, err)
	assert.Error(t, SeedTable(context.Background(), db, "campaigns; DROP TABLE x", c))
}
