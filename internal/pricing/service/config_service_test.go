package service

import (
	"context"
	"testing"
	"time"

	"github.com/carewise/escortcare/internal/clock"
	pricingdomain "github.com/carewise/escortcare/internal/pricing/domain"
	pricingrepo "github.com/carewise/escortcare/internal/pricing/repository"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/bwmarrin/snowflake"
)

func setupConfigService(t *testing.T) (pricingdomain.ConfigService, *clock.FakeClock) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&pricingdomain.Config{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fake := clock.NewFakeClock(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))

	svc := NewConfigService(ConfigParams{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: fake,
		Repo:  pricingrepo.ProvideConfig(),
	})
	return svc, fake
}

func TestConfigCurrentFallsBackToDefaults(t *testing.T) {
	svc, _ := setupConfigService(t)

	cfg, err := svc.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, string(pricingdomain.StackModeMultiply), cfg.StackMode)
	assert.True(t, cfg.MinPayable.Equal(decimal.RequireFromString("0.01")), "min payable %s", cfg.MinPayable)
}

func TestConfigUpdateAppendsAndWins(t *testing.T) {
	svc, fake := setupConfigService(t)

	enabled := false
	updated, err := svc.Update(context.Background(), pricingdomain.UpdateConfigRequest{
		StackMode:       "best-of",
		CampaignEnabled: &enabled,
		MinPayable:      "1.00",
	})
	require.NoError(t, err)
	assert.Equal(t, string(pricingdomain.StackModeBestOf), updated.StackMode)
	assert.False(t, updated.CampaignEnabled)

	// Untouched fields carry over from the previous configuration.
	assert.True(t, updated.PointsEnabled)
	assert.True(t, updated.PointsMaxPercent.Equal(decimal.NewFromInt(50)), "max percent %s", updated.PointsMaxPercent)

	fake.Advance(time.Minute)
	current, err := svc.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, updated.ID, current.ID)
}

func TestConfigUpdateRejectsBadValues(t *testing.T) {
	svc, _ := setupConfigService(t)

	_, err := svc.Update(context.Background(), pricingdomain.UpdateConfigRequest{StackMode: "halvsies"})
	assert.ErrorIs(t, err, pricingdomain.ErrInvalidStackMode)

	_, err = svc.Update(context.Background(), pricingdomain.UpdateConfigRequest{PointsMaxPercent: "120"})
	assert.ErrorIs(t, err, pricingdomain.ErrInvalidConfig)

	_, err = svc.Update(context.Background(), pricingdomain.UpdateConfigRequest{PointsExchangeRate: "0"})
	assert.ErrorIs(t, err, pricingdomain.ErrInvalidConfig)

	_, err = svc.Update(context.Background(), pricingdomain.UpdateConfigRequest{MinPayable: "-1"})
	assert.ErrorIs(t, err, pricingdomain.ErrInvalidConfig)
}
