package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	_ "foodflow/docs"
	"foodflow/pkg/api"
	"foodflow/pkg/config"
	"foodflow/pkg/logger"
	"foodflow/pkg/otel"
	"foodflow/pkg/session"
	"foodflow/pkg/store"
)

// @title FoodFlow API
// @version 1.0
// @description CRUD and paging over food nutrition records
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-Session-Id
// @description Session ID returned by POST /login, sent in this header or in the session_id cookie.
func main() {
	configPath := flag.String("config", os.Getenv("FOODFLOW_CONFIG"), "path to the YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		os.Exit(1)
	}
}

func run(configPath string) error {
	boot := logger.New(os.Stdout, logger.LevelInfo, "foodflow", otel.GetTraceID)
	cfg, err := config.Load(configPath)
	if err != nil {
		boot.Error(context.Background(), "load config", "error", err)
		return err
	}

	log := logger.New(os.Stdout, logger.ParseLevel(cfg.Log.Level), cfg.Service, otel.GetTraceID)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tp, shutdownTracing, err := otel.InitTracing(log, otel.Config{
		ServiceName: cfg.Service,
		Host:        cfg.Tracing.Host,
		Probability: cfg.Tracing.Probability,
	})
	if err != nil {
		log.Error(ctx, "init tracing", "error", err)
		return err
	}
	defer shutdownTracing(context.Background())

	repo, closeStore, err := store.Open(ctx, cfg.Store, log)
	if err != nil {
		log.Error(ctx, "open store", "type", cfg.Store.Type, "error", err)
		return err
	}
	defer closeStore()

	opts := api.Options{
		Repo:           repo,
		Log:            log,
		Tracer:         tp.Tracer(cfg.Service),
		RateLimit:      cfg.HTTP.RateLimit,
		RateLimitBurst: cfg.HTTP.RateLimitBurst,
	}
	if cfg.Auth.Enabled {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Auth.RedisAddr})
		defer rdb.Close()
		sessions := session.NewRedisStore(rdb, cfg.Auth.SessionTTL)
		log.Info(ctx, "session auth enabled", "redis_addr", cfg.Auth.RedisAddr, "session_ttl", sessions.TTL().String())
		opts.Sessions = sessions
	}

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      api.New(opts).Router(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info(gctx, "listening", "addr", cfg.HTTP.Addr, "store", cfg.Store.Type, "tls", cfg.HTTP.TLSCert != "")
		var err error
		if cfg.HTTP.TLSCert != "" {
			err = srv.ListenAndServeTLS(cfg.HTTP.TLSCert, cfg.HTTP.TLSKey)
		} else {
			err = srv.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		log.Info(shutdownCtx, "shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error(context.Background(), "server closed", "error", err)
		return err
	}
	log.Info(context.Background(), "server stopped")
	return nil
}
