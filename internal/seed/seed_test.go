package seed

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/smallbiznis/counterreport/internal/catalog/domain"
	counterdomain "github.com/smallbiznis/counterreport/internal/counter/domain"
	"github.com/smallbiznis/counterreport/internal/migration"
	"github.com/smallbiznis/counterreport/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureDemoData(t *testing.T) {
	conn := db.NewTest(t)
	require.NoError(t, migration.AutoMigrate(conn))
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	now := time.Date(2019, 4, 15, 0, 0, 0, 0, time.UTC)
	ctx := context.Background()

	written, err := EnsureDemoData(ctx, conn, node, now)
	require.NoError(t, err)
	// (1+2+3)*(1+2+3) requests, each paired with an investigation
	assert.Equal(t, 2*6*6, written)

	var titles int64
	require.NoError(t, conn.Model(&catalogdomain.Title{}).Count(&titles).Error)
	assert.Equal(t, int64(3), titles)

	var first counterdomain.UsageEvent
	require.NoError(t, conn.Order("id ASC").First(&first).Error)
	assert.True(t, first.CreatedAt.After(time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, first.CreatedAt.Before(time.Date(2019, 2, 1, 0, 0, 0, 0, time.UTC)))

	written, err = EnsureDemoData(ctx, conn, node, now)
	require.NoError(t, err)
	assert.Zero(t, written)

	var inst int64
	require.NoError(t, conn.Model(&counterdomain.Institution{}).Count(&inst).Error)
	assert.Equal(t, int64(1), inst)
}

func TestEnsureDemoDataRequiresHandles(t *testing.T) {
	_, err := EnsureDemoData(context.Background(), nil, nil, time.Now())
	assert.Error(t, err)
}
