package app

import (
	"context"
	"net/http"
	"time"

	"github.com/RubachokBoss/clubtrack/internal/assets"
	"github.com/RubachokBoss/clubtrack/internal/auth"
	"github.com/RubachokBoss/clubtrack/internal/config"
	"github.com/RubachokBoss/clubtrack/internal/coordinator"
	"github.com/RubachokBoss/clubtrack/internal/delivery/httpd"
	"github.com/RubachokBoss/clubtrack/internal/devicecache"
	"github.com/RubachokBoss/clubtrack/internal/engine"
	"github.com/RubachokBoss/clubtrack/internal/gateway"
	"github.com/RubachokBoss/clubtrack/internal/listener"
	"github.com/RubachokBoss/clubtrack/internal/seed"
	"github.com/RubachokBoss/clubtrack/internal/service"
	"github.com/RubachokBoss/clubtrack/internal/service/integration"
	"github.com/RubachokBoss/clubtrack/internal/store"
	"github.com/RubachokBoss/clubtrack/internal/worker"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

type App struct {
	server    *http.Server
	logger    zerolog.Logger
	config    *config.Config
	cache     *devicecache.Cache
	pool      *worker.WorkerPool
	engine    *engine.Engine
	generator integration.ContentGenerator
}

func New(cfg *config.Config, log zerolog.Logger) (*App, error) {
	cache, err := devicecache.Open(cfg.Device.CachePath, log)
	if err != nil {
		return nil, err
	}

	verifier := auth.NewBcryptVerifier(bcrypt.DefaultCost)
	admin, err := seed.Admin(cfg.Seed, verifier)
	if err != nil {
		cache.Close()
		return nil, err
	}

	// Локальные данные для офлайн старта
	st := store.New()
	st.Classes.Replace(seed.Classes())
	st.Sessions.Replace(seed.Sessions())
	if cfg.Seed.DemoStudents > 0 {
		st.Students.Replace(seed.DemoStudents(cfg.Seed.DemoStudents, time.Now()))
	}

	pool := worker.NewWorkerPool(cfg.Sync.Workers, cfg.Sync.QueueSize, log)
	gw := gateway.New(cfg.Sync.PushTimeout, log)

	coord := coordinator.New(st, gw, pool, cache, coordinator.Options{
		DefaultAdmin: admin,
		DefaultLogos: seed.Logos(),
	}, log)

	changeListener := listener.New(st, gw, log)

	syncEngine := engine.New(
		coord,
		gw,
		changeListener,
		cache,
		engine.NewDialer(cfg, log),
		cfg.Sync.ConnectTimeout,
		log,
	)

	images, err := assets.NewImageStore(cfg.Assets, log)
	if err != nil {
		cache.Close()
		return nil, err
	}

	generator, err := integration.NewGeminiClient(
		context.Background(),
		cfg.Generation.APIKey,
		cfg.Generation.Model,
		cfg.Generation.Timeout,
		log,
	)
	if err != nil {
		cache.Close()
		return nil, err
	}

	services := service.NewServices(service.Deps{
		Coordinator:  coord,
		Verifier:     verifier,
		Sessions:     cache,
		Images:       images,
		Generator:    generator,
		DefaultLogos: seed.Logos(),
		Logger:       log,
	})

	handler := httpd.NewHandler(services, syncEngine, log)

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		ExposedHeaders:   cfg.CORS.ExposedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           cfg.CORS.MaxAge,
	}))

	handler.RegisterRoutes(router)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &App{
		server:    server,
		logger:    log,
		config:    cfg,
		cache:     cache,
		pool:      pool,
		engine:    syncEngine,
		generator: generator,
	}, nil
}

func (a *App) Run() error {
	ctx := context.Background()
	if err := a.pool.Start(ctx); err != nil {
		a.logger.Error().Err(err).Msg("Failed to start push workers")
		return err
	}

	a.engine.Start(ctx)

	a.logger.Info().Msgf("Starting clubtrack on %s", a.config.Server.Address)
	return a.server.ListenAndServe()
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info().Msg("Shutting down clubtrack...")

	if err := a.server.Shutdown(ctx); err != nil {
		a.logger.Error().Err(err).Msg("Failed to shutdown server")
	}

	// Сначала дожидаемся отправки изменений, потом рвем соединение
	a.engine.Close()

	if err := a.pool.Stop(); err != nil {
		a.logger.Error().Err(err).Msg("Failed to stop push workers")
	}

	if err := a.generator.Close(); err != nil {
		a.logger.Error().Err(err).Msg("Failed to close content generator")
	}

	if err := a.cache.Close(); err != nil {
		a.logger.Error().Err(err).Msg("Failed to close device cache")
		return err
	}

	return nil
}
