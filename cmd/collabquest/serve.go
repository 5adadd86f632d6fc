// cmd/collabquest/serve.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/spf13/cobra"

	"collabquest/internal/api"
	"collabquest/internal/common/camunda"
	"collabquest/internal/common/config"
	"collabquest/internal/common/logger"
	"collabquest/internal/common/observability"
	"collabquest/internal/compatibility"
	"collabquest/internal/partners"
	"collabquest/internal/quizgen"
	"collabquest/internal/userstore"
	"collabquest/internal/verification"
	cc "collabquest/internal/workers/matching/compute-compatibility"
	ssv "collabquest/internal/workers/verification/start-skill-verification"
	sbv "collabquest/internal/workers/verification/submit-skill-verification"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and, when enabled, the Camunda job workers",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("migrate", "", "prepare the user store before serving: apply SQL migrations from this directory (postgres) or create the users index (elasticsearch)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	log.Info("Starting collabquest", map[string]interface{}{
		"version":     version,
		"environment": cfg.App.Environment,
		"userStore":   cfg.UserStore.Backend,
		"sessions":    cfg.Verification.SessionStore,
		"genai":       cfg.APIs.GenAI.Provider,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	obs := observability.New(cfg.Observability.ServiceName, cfg.Observability.JaegerEndpoint)
	defer obs.Shutdown(context.Background())

	b, err := connectBackends(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer b.close(log)

	if dir, _ := cmd.Flags().GetString("migrate"); dir != "" {
		if err := b.migrate(ctx, dir, cfg.UserStore.Index, log); err != nil {
			return err
		}
	}

	store, err := buildUserStore(ctx, cfg, b, log)
	if err != nil {
		return err
	}

	completer, err := quizgen.NewCompleter(ctx, cfg.APIs.GenAI)
	if err != nil {
		return err
	}
	generator := quizgen.NewGenerator(completer, cfg.Verification.QuestionCount, log)

	engine := verification.New(generator, userstore.NewQuizVerifier(store), buildSessionStore(ctx, cfg, b, log), log,
		verification.Options{
			SessionTTL:    config.GetDuration(cfg.Verification.SessionTTL),
			PassThreshold: cfg.Verification.PassThreshold,
		})
	scorer := compatibility.NewScorer(log, obs)

	if cfg.Camunda.Enabled {
		registry, client, err := startWorkers(ctx, cfg, store, scorer, engine, log)
		if err != nil {
			return err
		}
		defer func() {
			registry.Close()
			_ = client.Close()
		}()
	}

	server := api.NewServer(api.Dependencies{
		Store:          store,
		Scorer:         scorer,
		Verification:   engine,
		Ranker:         partners.NewRanker(store, scorer),
		Obs:            obs,
		Logger:         log,
		Ready:          b.ping,
		RequestTimeout: config.GetDuration(cfg.Server.RequestTimeout),
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      server.Handler(),
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", map[string]interface{}{"address": cfg.Server.Address})
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		log.Info("Shutdown signal received, stopping...", nil)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown failed", map[string]interface{}{"error": err.Error()})
	}

	log.Info("collabquest stopped", nil)
	return nil
}

func startWorkers(ctx context.Context, cfg *config.Config, store userstore.Store, scorer *compatibility.Scorer, engine *verification.Engine, log logger.Logger) (*camunda.Registry, zbc.Client, error) {
	var client zbc.Client
	err := retryWithBackoff(ctx, func() error {
		var err error
		client, err = camunda.Connect(ctx, cfg.Camunda)
		return err
	}, 10, 2*time.Second, log, "Zeebe client initialization")
	if err != nil {
		return nil, nil, err
	}
	log.Info("Zeebe client connected successfully", nil)

	registry := camunda.NewRegistry(client, log)

	ccCfg := config.GetWorkerConfig(cfg, cc.TaskType)
	registry.Start(cc.TaskType, ccCfg, cc.NewHandler(cc.LoadConfig(ccCfg), store, scorer, log))

	ssvCfg := config.GetWorkerConfig(cfg, ssv.TaskType)
	registry.Start(ssv.TaskType, ssvCfg, ssv.NewHandler(ssv.LoadConfig(ssvCfg), store, engine, log))

	sbvCfg := config.GetWorkerConfig(cfg, sbv.TaskType)
	registry.Start(sbv.TaskType, sbvCfg, sbv.NewHandler(sbv.LoadConfig(sbvCfg), engine, log))

	return registry, client, nil
}
