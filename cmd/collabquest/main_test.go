// cmd/collabquest/main_test.go
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"collabquest/internal/common/database"
	"collabquest/internal/common/logger"
	"collabquest/internal/models"
	cc "collabquest/internal/workers/matching/compute-compatibility"
	ssv "collabquest/internal/workers/verification/start-skill-verification"
	sbv "collabquest/internal/workers/verification/submit-skill-verification"
	"collabquest/pkg/registry"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSkillsArg(t *testing.T) {
	v, err := parseSkillsArg(`["Python", "SQL"]`)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"Python", "SQL"}, v)

	v, err = parseSkillsArg(" Python, React ,,")
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"Python", "React"}, v)

	v, err = parseSkillsArg(`{"Go": true, "Rust": false}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "Rust"}, v)
}

func TestScoreCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"score", "Python,Machine Learning,Data Analysis", `["Python","Web Development","React"]`})
	require.NoError(t, rootCmd.Execute())

	var res models.CompatibilityResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	assert.Equal(t, 30.6, res.Score)
	assert.Equal(t, "1 exact skill match • Good collaboration fit", res.Reason)
}

func TestRetryWithBackoff(t *testing.T) {
	attempts := 0
	err := retryWithBackoff(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return errors.New("not yet")
		}
		return nil
	}, 5, time.Millisecond, logger.NewTestLogger(t), "dial")
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)

	attempts = 0
	err = retryWithBackoff(context.Background(), func() error {
		attempts++
		return errors.New("refused")
	}, 2, time.Millisecond, logger.NewTestLogger(t), "dial")
	require.Error(t, err)
	assert.Equal(t, 2, attempts)
	assert.Contains(t, err.Error(), "dial failed after 2 attempts: refused")
}

func TestRetryWithBackoff_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := retryWithBackoff(ctx, func() error { return errors.New("refused") }, 5, time.Hour, logger.NewTestLogger(t), "dial")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestActivityRegistryMatchesWorkers(t *testing.T) {
	reg, err := registry.LoadRegistry(filepath.Join("..", "..", "configs", "activities.json"))
	require.NoError(t, err)

	assert.Equal(t, []string{cc.TaskType, ssv.TaskType, sbv.TaskType}, reg.TaskTypes())
}

func TestWorkersCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"workers", "--registry", filepath.Join("..", "..", "configs", "activities.json")})
	require.NoError(t, rootCmd.Execute())

	assert.Contains(t, out.String(), "start-skill-verification")
	assert.Contains(t, out.String(), "SESSION_NOT_FOUND")
}

func TestBackends_Close(t *testing.T) {
	log := logger.NewTestLogger(t)

	assert.NotPanics(t, func() { (&backends{}).close(log) })

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.ExpectClose()

	mr := miniredis.RunT(t)
	rdb := &database.RedisClient{Client: redis.NewClient(&redis.Options{Addr: mr.Addr()})}
	require.NoError(t, rdb.Ping(context.Background()))

	b := &backends{pg: &database.PostgresClient{DB: db}, redis: rdb}
	b.close(log)

	assert.NoError(t, mock.ExpectationsWereMet())
	assert.ErrorIs(t, rdb.Client.Ping(context.Background()).Err(), redis.ErrClosed)
}
