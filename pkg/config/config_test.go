package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestSchedulerDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)

	assert.True(t, cfg.Scheduler.Enabled)
	assert.Equal(t, 8, cfg.Scheduler.MaxAttempts)
	assert.Equal(t, 1.0, cfg.Scheduler.LabLoadTolerance)
	assert.Equal(t, 50, cfg.Scheduler.AttemptFactor)
	assert.Equal(t, 3, cfg.Scheduler.MaxPerDay)
	assert.Equal(t, 10*time.Minute, cfg.Scheduler.DisplayCacheTTL)
	assert.Equal(t, 30*time.Minute, cfg.Scheduler.ProposalTTL)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
}

func TestSchedulerOverridesAndFallbacks(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("SCHEDULER_MAX_ATTEMPTS", 20)
	v.Set("SCHEDULER_LAB_LOAD_TOLERANCE", 0.5)
	v.Set("SCHEDULER_WORKERS", -1)
	v.Set("SCHEDULER_DISPLAY_CACHE_TTL", "not-a-duration")
	v.Set("ALLOWED_ORIGINS", " http://a.test , ,http://b.test")
	v.Set("CORS_MAX_AGE", "90s")

	cfg := fromViper(v)

	assert.Equal(t, 20, cfg.Scheduler.MaxAttempts)
	assert.Equal(t, 1.0, cfg.Scheduler.LabLoadTolerance)
	assert.Equal(t, 2, cfg.Scheduler.Workers)
	assert.Equal(t, 10*time.Minute, cfg.Scheduler.DisplayCacheTTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 90*time.Second, cfg.CORS.MaxAge)
}
