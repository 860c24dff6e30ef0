package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_USER", "ninja")
	t.Setenv("DB_NAME", "pocketninja")
	t.Setenv("JWT_SECRET_KEY", "secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, 0.85, cfg.Catalog.MatchThreshold)
	assert.Equal(t, int64(10<<20), cfg.Upload.MaxBytes)
	assert.Equal(t, 3, cfg.Upload.BadUploadLimit)
	assert.Equal(t, 24*time.Hour, cfg.Upload.BadUploadWindow)
	assert.Equal(t, "gemini-2.5-flash", cfg.Gemini.Model)
	assert.False(t, cfg.AWS.TextCheckEnabled)
	assert.Equal(t, 256, cfg.Worker.RewardQueueSize)
	assert.Empty(t, cfg.S3.Bucket)
	assert.Equal(t, cfg.AWS.Region, cfg.S3.Region)
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("MATCH_THRESHOLD", "0.9")
	t.Setenv("BAD_UPLOAD_WINDOW", "12h")
	t.Setenv("AWS_TEXT_CHECK_ENABLED", "true")
	t.Setenv("MAX_UPLOAD_MB", "4")
	t.Setenv("TARGET_CITY", "Otaru")
	t.Setenv("AWS_REGION", "us-west-2")
	t.Setenv("S3_BUCKET", "receipts")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 0.9, cfg.Catalog.MatchThreshold)
	assert.Equal(t, 12*time.Hour, cfg.Upload.BadUploadWindow)
	assert.True(t, cfg.AWS.TextCheckEnabled)
	assert.Equal(t, int64(4<<20), cfg.Upload.MaxBytes)
	assert.Equal(t, "Otaru", cfg.Catalog.TargetCity)
	assert.Equal(t, "receipts", cfg.S3.Bucket)
	assert.Equal(t, "us-west-2", cfg.S3.Region, "the archive follows AWS_REGION by default")
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"missing db host", map[string]string{"DB_HOST": ""}, "database configuration incomplete"},
		{"missing jwt secret", map[string]string{"JWT_SECRET_KEY": ""}, "JWT_SECRET_KEY"},
		{"threshold out of range", map[string]string{"MATCH_THRESHOLD": "1.5"}, "MATCH_THRESHOLD"},
		{"bad duration", map[string]string{"BAD_UPLOAD_WINDOW": "soon"}, "BAD_UPLOAD_WINDOW"},
		{"negative duration", map[string]string{"REWARD_TIMEOUT": "-1s"}, "REWARD_TIMEOUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
