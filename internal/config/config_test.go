package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("CATALOG_SNAPSHOT_TTL", "")
	t.Setenv("PREVIEW_RATE_LIMIT", "")

	cfg := Load()

	assert.False(t, cfg.Kafka.Enabled())
	assert.False(t, cfg.RateLimit.Enabled())
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, 8*time.Hour, cfg.CatalogSnapshotTTL)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("DEFAULT_ORG", "42")
	t.Setenv("CATALOG_SNAPSHOT_TTL", "30m")
	t.Setenv("PREVIEW_RATE_LIMIT", "2.5")
	t.Setenv("PREVIEW_RATE_BURST", "10")

	cfg := Load()

	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, int64(42), cfg.DefaultOrgID)
	assert.Equal(t, 30*time.Minute, cfg.CatalogSnapshotTTL)
	assert.True(t, cfg.RateLimit.Enabled())
	assert.Equal(t, 2.5, cfg.RateLimit.PreviewRate)
	assert.Equal(t, 10, cfg.RateLimit.PreviewBurst)
}

func TestGetenvBool(t *testing.T) {
	t.Setenv("GLAZIER_FLAG", "yes")
	assert.True(t, getenvBool("GLAZIER_FLAG", false))
	t.Setenv("GLAZIER_FLAG", "garbage")
	assert.True(t, getenvBool("GLAZIER_FLAG", true))
}

func TestPricingConfigDefaultsWithoutFile(t *testing.T) {
	holder, err := newPricingConfigHolder(zap.NewNop(), t.TempDir())
	require.NoError(t, err)

	cfg := holder.Get()
	assert.Equal(t, DefaultPricingConfig(), cfg)
	assert.Equal(t, "30", cfg.DefaultDeduction().String())
}

func TestPricingConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	content := []byte("pricing:\n  currency: EUR\n  precision: 2\n  defaultDeductionPercent: 20\n  maxDeductionPercent: 50\n  deductionLabel: Labor credit\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pricing.yml"), content, 0o600))

	holder, err := newPricingConfigHolder(zap.NewNop(), dir)
	require.NoError(t, err)

	cfg := holder.Get()
	assert.Equal(t, "EUR", cfg.Currency)
	assert.Equal(t, float64(50), cfg.MaxDeductionPercent)
	assert.Equal(t, "Labor credit", cfg.DeductionLabel)
}

func TestPricingConfigRejectsInvalidFile(t *testing.T) {
	dir := t.TempDir()
	content := []byte("pricing:\n  currency: EUR\n  defaultDeductionPercent: 80\n  maxDeductionPercent: 50\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pricing.yml"), content, 0o600))

	_, err := newPricingConfigHolder(zap.NewNop(), dir)
	assert.Error(t, err)
}
