// Command server starts the AI mock interview HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"

	"github.com/fairyhunter13/ai-mock-interview/internal/adapter/ai/gemini"
	"github.com/fairyhunter13/ai-mock-interview/internal/adapter/docintel"
	httpserver "github.com/fairyhunter13/ai-mock-interview/internal/adapter/httpserver"
	"github.com/fairyhunter13/ai-mock-interview/internal/adapter/observability"
	"github.com/fairyhunter13/ai-mock-interview/internal/adapter/queue/redpanda"
	"github.com/fairyhunter13/ai-mock-interview/internal/adapter/repo/postgres"
	"github.com/fairyhunter13/ai-mock-interview/internal/adapter/sessionstore/memory"
	redisstore "github.com/fairyhunter13/ai-mock-interview/internal/adapter/sessionstore/redis"
	"github.com/fairyhunter13/ai-mock-interview/internal/adapter/speech"
	"github.com/fairyhunter13/ai-mock-interview/internal/app"
	"github.com/fairyhunter13/ai-mock-interview/internal/config"
	"github.com/fairyhunter13/ai-mock-interview/internal/domain"
	"github.com/fairyhunter13/ai-mock-interview/internal/service/ratelimiter"
	"github.com/fairyhunter13/ai-mock-interview/internal/usecase"
)

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)
	observability.InitMetrics()

	shutdownTracer, err := observability.SetupTracing(cfg)
	if err != nil {
		slog.Error("failed to setup tracing", slog.Any("error", err))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	srv := &httpserver.Server{Cfg: cfg}
	var (
		pinger      app.Pinger
		redisClient app.RedisClient
	)

	// Postgres: interview configurations and attempts.
	var (
		interviews domain.InterviewRepository
		attempts   domain.AttemptRepository
	)
	if cfg.DBEnabled() {
		pool, err := postgres.NewPool(ctx, cfg.DBURL)
		if err != nil {
			return err
		}
		defer pool.Close()
		if err := postgres.Migrate(ctx, pool); err != nil {
			return err
		}
		interviews = postgres.NewInterviewRepo(pool)
		attempts = postgres.NewAttemptRepo(pool)
		pinger = pool

		cleanup := postgres.NewCleanupService(postgres.BeginnerFromPool(pool), cfg.AttemptRetentionDays)
		go cleanup.RunPeriodic(ctx, cfg.CleanupInterval)
		slog.Info("cleanup service started",
			slog.Int("retention_days", cleanup.RetentionDays),
			slog.Duration("interval", cfg.CleanupInterval))
	} else {
		slog.Warn("DB_URL not set; interview management and attempt history are disabled")
	}

	// Redis: shared sessions and the upstream rate limiter.
	var (
		store   domain.SessionStore
		limiter ratelimiter.Limiter
	)
	if cfg.RedisEnabled() {
		opts, err := goredis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("op=server.redis: %w", err)
		}
		rdb := goredis.NewClient(opts)
		defer func() { _ = rdb.Close() }()
		store = redisstore.New(rdb, cfg.SessionTTL)
		redisClient = app.FromGoRedis(rdb)
		if cfg.LLMRatePerMin > 0 {
			limiter = ratelimiter.NewRedisLuaLimiter(rdb, map[string]ratelimiter.BucketConfig{
				gemini.LimiterKey: ratelimiter.NewBucketConfigFromPerMinute(cfg.LLMRatePerMin),
			})
		}
	} else {
		mem := memory.New(cfg.SessionTTL)
		go app.NewSessionSweeper(mem, time.Minute).Run(ctx)
		store = mem
		slog.Warn("REDIS_URL not set; sessions are kept in process memory")
	}

	// Kafka: evaluation events.
	var events domain.EventPublisher = redpanda.NoopPublisher{}
	if cfg.KafkaEnabled() {
		pub, err := redpanda.NewPublisher(ctx, cfg.KafkaBrokers, cfg.KafkaTopicEvaluated)
		if err != nil {
			return err
		}
		defer func() {
			if err := pub.Close(); err != nil {
				slog.Error("failed to close publisher", slog.Any("error", err))
			}
		}()
		events = pub
	}

	var geminiOpts []gemini.Option
	if limiter != nil {
		geminiOpts = append(geminiOpts, gemini.WithLimiter(limiter))
	}
	llm, err := gemini.New(ctx, cfg, geminiOpts...)
	if err != nil {
		return err
	}

	questions := usecase.NewQuestionService(llm, usecase.QuestionOptions{
		MaxCVTokens:    cfg.PromptMaxCVTokens,
		LocalSelection: cfg.LocalSelection(),
		Seed:           cfg.QuestionSelectionSeed,
	})
	evaluator := usecase.NewEvaluationService(llm)
	names := usecase.NewNameService(llm, cfg.PromptMaxCVTokens)

	sessions := usecase.NewSessionService(store, questions, evaluator)
	sessions.Interviews = interviews
	sessions.Attempts = attempts
	sessions.Events = events
	defer func() { _ = sessions.Close() }()

	srv.Questions = questions
	srv.Evaluator = evaluator
	srv.Names = names
	srv.CVIntake = usecase.NewCVIntakeService(docintel.New(cfg, nil), questions, names)
	srv.Interviews = usecase.NewInterviewService(interviews)
	srv.Sessions = sessions
	srv.Speech = speech.NewAzureTokenIssuer(cfg, nil)
	srv.TTS = speech.NewElevenLabs(cfg, nil)
	srv.DBCheck, srv.RedisCheck = app.BuildReadinessChecks(pinger, redisClient)

	httpSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           app.BuildRouter(cfg, srv),
		ReadTimeout:       cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server starting", slog.Int("port", cfg.Port))
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("op=server.listen: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}
