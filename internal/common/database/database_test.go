package database

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"collabquest/internal/common/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisClient_Ping(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rc, err := NewRedis(config.RedisConfig{Address: mr.Addr()})
	require.NoError(t, err)
	defer rc.Close()

	assert.NoError(t, rc.Ping(context.Background()))

	mr.Close()
	assert.Error(t, rc.Ping(context.Background()))
}

func TestNewRedis_RequiresAddress(t *testing.T) {
	_, err := NewRedis(config.RedisConfig{})
	assert.ErrorIs(t, err, ErrRedisAddressMissing)
}

func TestNewRedis_PoolSize(t *testing.T) {
	rc, err := NewRedis(config.RedisConfig{Address: "localhost:6379", PoolSize: 4})
	require.NoError(t, err)
	defer rc.Close()
	assert.Equal(t, 4, rc.Client.Options().PoolSize)
	assert.Equal(t, 2, rc.Client.Options().MinIdleConns)
}

func TestElasticsearchClient_Ping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	es, err := NewElasticsearch(config.ElasticsearchConfig{URL: srv.URL})
	require.NoError(t, err)
	assert.NoError(t, es.Ping(context.Background()))
}

func TestElasticsearchClient_PingErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	es, err := NewElasticsearch(config.ElasticsearchConfig{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	assert.Error(t, es.Ping(context.Background()))
}

func TestNewElasticsearch_RequiresAddress(t *testing.T) {
	_, err := NewElasticsearch(config.ElasticsearchConfig{})
	assert.Error(t, err)
}

func TestElasticsearchClient_EnsureIndex(t *testing.T) {
	tests := []struct {
		name        string
		existStatus int
		wantCreated bool
		wantErr     bool
		wantPut     bool
	}{
		{"already exists", http.StatusOK, false, false, false},
		{"missing is created", http.StatusNotFound, true, false, true},
		{"cluster error", http.StatusInternalServerError, false, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var putBody string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("X-Elastic-Product", "Elasticsearch")
				switch r.Method {
				case http.MethodHead:
					w.WriteHeader(tt.existStatus)
				case http.MethodPut:
					raw, _ := io.ReadAll(r.Body)
					putBody = string(raw)
					w.Header().Set("Content-Type", "application/json")
					_, _ = w.Write([]byte(`{"acknowledged":true}`))
				}
			}))
			defer srv.Close()

			es, err := NewElasticsearch(config.ElasticsearchConfig{URL: srv.URL})
			require.NoError(t, err)

			created, err := es.EnsureIndex(context.Background(), "users", []byte(`{"mappings":{}}`))
			assert.Equal(t, tt.wantErr, err != nil)
			assert.Equal(t, tt.wantCreated, created)
			if tt.wantPut {
				assert.JSONEq(t, `{"mappings":{}}`, putBody)
			} else {
				assert.Empty(t, putBody)
			}
		})
	}
}

func writeMigrations(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
	}
	return dir
}

func TestPostgresClient_Migrate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	dir := writeMigrations(t, map[string]string{
		"001_users.sql": "CREATE TABLE users (id TEXT)",
		"002_index.sql": "CREATE INDEX idx ON users (id)",
		"notes.txt":     "ignored",
	})

	exists := regexp.QuoteMeta(`SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)`)
	record := regexp.QuoteMeta(`INSERT INTO schema_migrations (version) VALUES ($1)`)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(exists).WithArgs("001_users").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(exists).WithArgs("002_index").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("CREATE INDEX idx ON users (id)")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(record).WithArgs("002_index").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	applied, err := (&PostgresClient{DB: db}).Migrate(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"002_index"}, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresClient_MigrateRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	dir := writeMigrations(t, map[string]string{"001_users.sql": "CREATE TABLE users (id TEXT)"})

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT EXISTS").WithArgs("001_users").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE users (id TEXT)")).WillReturnError(errors.New("permission denied"))
	mock.ExpectRollback()

	applied, err := (&PostgresClient{DB: db}).Migrate(context.Background(), dir)
	assert.ErrorContains(t, err, "apply migration 001_users")
	assert.Empty(t, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

func TestCheckAll(t *testing.T) {
	assert.NoError(t, CheckAll(context.Background(),
		Check{Name: "postgres", Pinger: fakePinger{}},
		Check{Name: "skipped"},
	))

	err := CheckAll(context.Background(),
		Check{Name: "postgres", Pinger: fakePinger{}},
		Check{Name: "redis", Pinger: fakePinger{err: errors.New("connection refused")}},
	)
	assert.EqualError(t, err, "redis: connection refused")
}
