package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "data", cfg.Data.Dir)
	assert.Equal(t, "id-business.csv", cfg.Data.IdentityFile)
	assert.Equal(t, "full-shop-infos.csv", cfg.Data.MetadataFile)
	assert.Equal(t, "google-reviews.csv", cfg.Data.ReviewsFile)
	assert.Equal(t, "sms-surveys.csv", cfg.Data.SurveysFile)
	assert.Equal(t, "clean_output", cfg.OutputDir)
	assert.InDelta(t, 0.95, cfg.Validation.Threshold, 1e-9)
	assert.InDelta(t, 0.99, cfg.Validation.DistributionCeiling, 1e-9)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), cfg.Validation.DateMin)
	// The window upper bound covers the whole final day.
	assert.Equal(t, time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC), cfg.Validation.DateMax)
	assert.Equal(t, "0 0 6 * * *", cfg.Schedule)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("CX_DATA_DIR", "/srv/extracts")
	t.Setenv("CX_THRESHOLD", "0.9")
	t.Setenv("CX_DATE_MIN", "2024-06-01")
	t.Setenv("CX_DATE_MAX", "2024-12-31")
	t.Setenv("CX_SCHEDULE", "0 30 5 * * *")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, "/srv/extracts", cfg.Data.Dir)
	assert.InDelta(t, 0.9, cfg.Validation.Threshold, 1e-9)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), cfg.Validation.DateMin)
	assert.Equal(t, time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC), cfg.Validation.DateMax)
	assert.Equal(t, "0 30 5 * * *", cfg.Schedule)
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Run("bad env", func(t *testing.T) {
		t.Setenv("ENV", "sandbox")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ENV must be one of")
	})

	t.Run("threshold out of range", func(t *testing.T) {
		t.Setenv("CX_THRESHOLD", "1.5")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "CX_THRESHOLD")
	})

	t.Run("inverted date window", func(t *testing.T) {
		t.Setenv("CX_DATE_MIN", "2025-12-31")
		t.Setenv("CX_DATE_MAX", "2025-01-01")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "CX_DATE_MAX precedes CX_DATE_MIN")
	})
}

func TestSourceFiles(t *testing.T) {
	t.Setenv("CX_SURVEYS_FILE", "surveys_2025.csv")

	cfg, err := Load()
	require.NoError(t, err)

	files := cfg.SourceFiles()
	assert.Equal(t, "id-business.csv", files["id_business"])
	assert.Equal(t, "surveys_2025.csv", files["sms_surveys"])
}
