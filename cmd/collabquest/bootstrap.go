// cmd/collabquest/bootstrap.go
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	commonaws "collabquest/internal/common/aws"
	"collabquest/internal/common/config"
	"collabquest/internal/common/database"
	"collabquest/internal/common/logger"
	"collabquest/internal/notify"
	"collabquest/internal/userstore"
	"collabquest/internal/verification"
)

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

// retryWithBackoff runs operation until it succeeds or maxRetries attempts
// have failed, doubling the delay after each failure.
func retryWithBackoff(ctx context.Context, operation func() error, maxRetries int, initialDelay time.Duration, log logger.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		if err = operation(); err == nil {
			return nil
		}
		if i == maxRetries-1 {
			break
		}

		log.Warn(fmt.Sprintf("%s failed, retrying...", operationName), map[string]interface{}{
			"error":       err.Error(),
			"attempt":     i + 1,
			"maxRetries":  maxRetries,
			"nextRetryIn": delay.String(),
		})
		select {
		case <-ctx.Done():
			return fmt.Errorf("%s aborted: %w", operationName, ctx.Err())
		case <-time.After(delay):
		}
		delay *= 2
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

// backends holds the connections opened for the configured user store and
// session store. Nil fields were not needed.
type backends struct {
	pg    *database.PostgresClient
	es    *database.ElasticsearchClient
	redis *database.RedisClient
}

func (b *backends) ping(ctx context.Context) error {
	var checks []database.Check
	if b.pg != nil {
		checks = append(checks, database.Check{Name: "postgres", Pinger: b.pg})
	}
	if b.es != nil {
		checks = append(checks, database.Check{Name: "elasticsearch", Pinger: b.es})
	}
	if b.redis != nil {
		checks = append(checks, database.Check{Name: "redis", Pinger: b.redis})
	}
	return database.CheckAll(ctx, checks...)
}

// migrate prepares the user store schema: SQL files from dir for postgres,
// the users index mapping for elasticsearch.
func (b *backends) migrate(ctx context.Context, dir, index string, log logger.Logger) error {
	if b.es != nil {
		created, err := b.es.EnsureIndex(ctx, index, userstore.IndexMapping)
		if err != nil {
			return err
		}
		log.Info("Elasticsearch index ready", map[string]interface{}{"index": index, "created": created})
	}
	if b.pg != nil {
		applied, err := b.pg.Migrate(ctx, dir)
		if err != nil {
			return err
		}
		log.Info("Migrations applied", map[string]interface{}{"dir": dir, "versions": applied})
	}
	return nil
}

// close releases the pooled connections. The elasticsearch client has no
// connection state of its own to release.
func (b *backends) close(log logger.Logger) {
	if b.pg != nil {
		if err := b.pg.Close(); err != nil {
			log.Error("Error closing postgres", map[string]interface{}{"error": err.Error()})
		}
	}
	if b.redis != nil {
		if err := b.redis.Close(); err != nil {
			log.Error("Error closing redis", map[string]interface{}{"error": err.Error()})
		}
	}
}

func connectBackends(ctx context.Context, cfg *config.Config, log logger.Logger) (*backends, error) {
	b := &backends{}

	switch cfg.UserStore.Backend {
	case config.BackendElasticsearch:
		err := retryWithBackoff(ctx, func() error {
			var err error
			if b.es, err = database.NewElasticsearch(cfg.Database.Elasticsearch); err != nil {
				return err
			}
			return b.es.Ping(ctx)
		}, 15, 2*time.Second, log, "Elasticsearch connection")
		if err != nil {
			return nil, err
		}
		log.Info("Elasticsearch connected successfully", nil)
	default:
		err := retryWithBackoff(ctx, func() error {
			var err error
			if b.pg, err = database.NewPostgres(cfg.Database.Postgres); err != nil {
				return err
			}
			return b.pg.Ping(ctx)
		}, 15, 2*time.Second, log, "PostgreSQL connection")
		if err != nil {
			return nil, err
		}
		log.Info("PostgreSQL connected successfully", nil)
	}

	// Redis backs the session store and the postgres user cache; both are optional.
	if cfg.Database.Redis.Address != "" {
		err := retryWithBackoff(ctx, func() error {
			var err error
			if b.redis, err = database.NewRedis(cfg.Database.Redis); err != nil {
				return err
			}
			return b.redis.Ping(ctx)
		}, 10, 2*time.Second, log, "Redis connection")
		if err != nil {
			if cfg.Verification.SessionStore == config.SessionStoreRedis {
				b.close(log)
				return nil, err
			}
			log.Warn("Redis unavailable, user cache disabled", map[string]interface{}{"error": err.Error()})
			b.redis = nil
		} else {
			log.Info("Redis connected successfully", nil)
		}
	}

	return b, nil
}

func buildUserStore(ctx context.Context, cfg *config.Config, b *backends, log logger.Logger) (userstore.Store, error) {
	var store userstore.Store
	if b.es != nil {
		store = userstore.NewElasticStore(b.es.Client, cfg.UserStore.Index)
	} else {
		if b.redis != nil {
			store = userstore.NewPostgresStore(b.pg.DB, b.redis.Client, config.GetDuration(cfg.UserStore.CacheTTL), log)
		} else {
			store = userstore.NewPostgresStore(b.pg.DB, nil, 0, log)
		}
	}

	n := cfg.Notifications
	if !n.Email.Enabled && !n.Events.Enabled {
		return store, nil
	}

	clients, err := commonaws.NewClients(ctx, n.AWS.Region)
	if err != nil {
		return nil, err
	}
	var email notify.EmailAPI
	if n.Email.Enabled {
		email = clients.SES
	}
	var events notify.EventAPI
	if n.Events.Enabled {
		events = clients.SNS
	}
	notifier := notify.NewNotifier(email, n.Email.FromEmail, events, n.Events.TopicARN, log)
	log.Info("Skill notifications enabled", map[string]interface{}{
		"email":  n.Email.Enabled,
		"events": n.Events.Enabled,
	})
	return notify.Wrap(store, notifier, log), nil
}

func buildSessionStore(ctx context.Context, cfg *config.Config, b *backends, log logger.Logger) verification.SessionStore {
	if cfg.Verification.SessionStore == config.SessionStoreRedis && b.redis != nil {
		return verification.NewRedisStore(b.redis.Client)
	}
	mem := verification.NewMemoryStore()
	go mem.RunSweeper(ctx, config.GetDuration(cfg.Verification.SweepInterval), log)
	return mem
}
