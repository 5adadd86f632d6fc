// test/e2e/e2e_test.go
package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"collabquest/internal/api"
	"collabquest/internal/common/camunda"
	"collabquest/internal/common/config"
	"collabquest/internal/common/database"
	"collabquest/internal/common/logger"
	"collabquest/internal/compatibility"
	"collabquest/internal/models"
	"collabquest/internal/partners"
	"collabquest/internal/userstore"
	"collabquest/internal/verification"
)

// These tests need running services. Start them, then:
//
//	COLLABQUEST_E2E=1 POSTGRES_PASSWORD=... go test ./test/e2e/...
func loadE2EConfig(t *testing.T) *config.Config {
	t.Helper()
	if os.Getenv("COLLABQUEST_E2E") != "1" {
		t.Skip("set COLLABQUEST_E2E=1 to run end-to-end tests against live services")
	}
	cfg, err := config.LoadFromFile(filepath.Join("..", "..", "configs", "config.yaml"))
	require.NoError(t, err)
	return cfg
}

type fixedQuiz struct{}

func (fixedQuiz) Generate(context.Context, string) ([]models.QuizQuestion, error) {
	return []models.QuizQuestion{
		{ID: "q1", Question: "Which keyword declares a goroutine?", Options: []string{"go", "spawn"}, CorrectAnswer: "go"},
		{ID: "q2", Question: "Which type is a reference type?", Options: []string{"map", "array"}, CorrectAnswer: "map"},
	}, nil
}

func seedUsers(t *testing.T, ctx context.Context, pg *database.PostgresClient) {
	t.Helper()
	_, err := pg.Migrate(ctx, filepath.Join("..", "..", "migrations"))
	require.NoError(t, err)

	_, err = pg.DB.ExecContext(ctx, `DELETE FROM users WHERE id LIKE 'e2e-%'`)
	require.NoError(t, err)

	rows := []struct {
		id, username, dept, skills string
	}{
		{"e2e-alice", "e2e_alice", "CSE", `["Python","Machine Learning","Data Analysis"]`},
		{"e2e-bob", "e2e_bob", "CSE", `["Python","Web Development","React"]`},
		{"e2e-carol", "e2e_carol", "ECE", `{"Go": true, "Docker": true}`},
	}
	for _, r := range rows {
		_, err := pg.DB.ExecContext(ctx,
			`INSERT INTO users (id, username, name, department, skills) VALUES ($1, $2, $2, $3, $4::jsonb)`,
			r.id, r.username, r.dept, r.skills)
		require.NoError(t, err)
	}
	t.Cleanup(func() {
		_, _ = pg.DB.ExecContext(context.Background(), `DELETE FROM users WHERE id LIKE 'e2e-%'`)
	})
}

func postJSON(t *testing.T, url string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestFullE2E(t *testing.T) {
	cfg := loadE2EConfig(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	log := logger.NewTestLogger(t)

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err, "PostgreSQL connection failed")
	require.NoError(t, pg.Ping(ctx), "PostgreSQL ping failed")
	defer pg.Close()

	rdb, err := database.NewRedis(cfg.Database.Redis)
	require.NoError(t, err, "Redis client creation failed")
	require.NoError(t, rdb.Ping(ctx), "Redis ping failed")
	defer rdb.Close()

	seedUsers(t, ctx, pg)

	store := userstore.NewPostgresStore(pg.DB, rdb.Client, time.Minute, log)
	engine := verification.New(fixedQuiz{}, userstore.NewQuizVerifier(store), verification.NewRedisStore(rdb.Client), log, verification.Options{})
	scorer := compatibility.NewScorer(log, nil)
	server := api.NewServer(api.Dependencies{
		Store:        store,
		Scorer:       scorer,
		Verification: engine,
		Ranker:       partners.NewRanker(store, scorer),
		Logger:       log,
	})

	srv := httptest.NewServer(server.Handler())
	defer srv.Close()

	t.Run("compute compatibility", func(t *testing.T) {
		status, body := postJSON(t, srv.URL+"/compatibility/compute", map[string]string{"user1": "e2e_alice", "user2": "e2e-bob"})
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, 30.6, body["score"])
	})

	t.Run("ranked partners", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/compatibility/ranked/e2e_alice")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var ranked models.RankedPartners
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&ranked))
		assert.Equal(t, "e2e-alice", ranked.User)
		assert.NotEmpty(t, ranked.Results)
	})

	t.Run("verify a skill through a quiz", func(t *testing.T) {
		status, start := postJSON(t, srv.URL+"/verification/start", map[string]string{"user_id": "e2e-carol", "skill": "Go"})
		require.Equal(t, http.StatusOK, status)

		status, result := postJSON(t, srv.URL+"/verification/submit", map[string]interface{}{
			"session_id": start["session_id"],
			"answers":    map[string]string{"q1": "Go", "q2": "MAP"},
		})
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, true, result["passed"])
		assert.Equal(t, true, result["verification_recorded"])

		user, err := store.GetUser(ctx, "e2e-carol")
		require.NoError(t, err)
		assert.Equal(t, models.VerificationMethodQuiz, user.VerifiedSkills["Go"].Method)

		status, _ = postJSON(t, srv.URL+"/verification/submit", map[string]interface{}{"session_id": start["session_id"]})
		assert.Equal(t, http.StatusNotFound, status)
	})

	if cfg.Camunda.Enabled {
		t.Run("zeebe gateway reachable", func(t *testing.T) {
			client, err := camunda.Connect(ctx, cfg.Camunda)
			require.NoError(t, err)
			defer client.Close()
		})
	}
}
