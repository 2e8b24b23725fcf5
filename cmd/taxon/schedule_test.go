package main

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/Veraticus/taxon/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduleCmdFlags(t *testing.T) {
	cmd := scheduleCmd()

	for _, name := range []string{"cron", "no-history", "no-report", "records", "mapping", "output", "workers"} {
		assert.NotNil(t, cmd.Flag(name), "flag %q should exist", name)
	}
	assert.Nil(t, cmd.Flag("dry-run"), "scheduled runs always write")
}

func TestRunSchedule_InvalidCron(t *testing.T) {
	settings := testSettings(t)
	settings.ScheduleCron = "every night"

	err := runSchedule(context.Background(), settings, runOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestRunSchedule_StopsOnCancel(t *testing.T) {
	settings := testSettings(t)
	settings.ScheduleCron = "0 3 * * *"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runSchedule(ctx, settings, runOptions{}) }()

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}

	_, err := os.Stat(settings.StatsPath)
	assert.True(t, os.IsNotExist(err), "no run happens before the first tick")
}
