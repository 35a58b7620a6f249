package cmd

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

	"github.com/frahmantamala/crm-auth/internal"
	"github.com/frahmantamala/crm-auth/internal/auth"
	authpostgres "github.com/frahmantamala/crm-auth/internal/auth/postgres"
	"github.com/frahmantamala/crm-auth/internal/core/events"
	"github.com/frahmantamala/crm-auth/internal/position"
	positionpostgres "github.com/frahmantamala/crm-auth/internal/position/postgres"
	"github.com/frahmantamala/crm-auth/internal/transport"
	"github.com/frahmantamala/crm-auth/internal/transport/middleware"
	"github.com/frahmantamala/crm-auth/internal/transport/rest"
	"github.com/frahmantamala/crm-auth/internal/transport/swagger"
	"github.com/frahmantamala/crm-auth/internal/user"
	userpostgres "github.com/frahmantamala/crm-auth/internal/user/postgres"
	"github.com/frahmantamala/crm-auth/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return startHTTPServer()
	},
}

type Dependencies struct {
	Config  *internal.Config
	DB      *sqlx.DB
	Gorm    *gorm.DB
	Bus     *events.EventBus
	Metrics *middleware.Metrics
	Router  *chi.Mux
	Logger  *slog.Logger
}

func startHTTPServer() error {
	deps, err := initializeDependencies()
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}

	setupRoutes(deps)

	cfg := deps.Config.Server
	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		deps.Logger.Info("starting HTTP server", "address", addr, "env", cfg.Env)
		serverErrChan <- server.ListenAndServe()
	}()

	var runErr error
	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			runErr = fmt.Errorf("server failed: %w", err)
		}
	}

	deps.Bus.Wait()
	if err := deps.DB.Close(); err != nil {
		deps.Logger.Error("database close error", "error", err)
	}

	deps.Logger.Info("server stopped")
	return runErr
}

func setupRoutes(deps *Dependencies) {
	cfg := deps.Config
	lg := deps.Logger
	base := transport.NewBaseHandler(lg)

	hasher := auth.NewBcryptHasher(cfg.Security.BCryptCost)
	tokens := auth.NewJWTTokenGenerator(cfg.Security.JWTSecret, cfg.Security.AccessTokenDuration, cfg.Security.RefreshTokenDuration)
	checker := auth.NewPermissionChecker()

	positionService := position.NewService(positionpostgres.NewPositionRepository(deps.Gorm), lg)
	authService := auth.NewService(authpostgres.NewRepository(deps.Gorm), positionService, tokens, hasher, deps.Bus, lg)
	userService := user.NewService(userpostgres.NewUserRepository(deps.Gorm), positionService, hasher, auth.NewABACPolicy(checker), deps.Bus, lg)

	openAPIPath := cfg.Server.OpenAPIPath
	if _, err := swagger.LoadSpec(context.Background(), openAPIPath); err != nil {
		lg.Warn("OpenAPI document unavailable, docs routes disabled", "path", openAPIPath, "error", err)
		openAPIPath = ""
	}

	routes := rest.Routes{
		Base:           base,
		Health:         rest.NewHealthHandler(base, deps.DB.DB),
		Auth:           auth.NewHandler(base, authService),
		Users:          user.NewHandler(base, userService),
		Positions:      position.NewHandler(base, positionService),
		RBAC:           auth.NewRBACAuthorization(checker, lg),
		LoginLimiter:   middleware.NewRateLimiter(base, cfg.Security.LoginRatePerMinute, cfg.Security.LoginRateBurst, cfg.Server.TrustProxyHeaders),
		AllowedOrigins: cfg.Server.Origins(),
		OpenAPIPath:    openAPIPath,
	}
	if deps.Metrics != nil {
		routes.Metrics = deps.Metrics
		routes.MetricsPath = cfg.Observability.Metrics.Path
	}

	rest.RegisterAllRoutes(deps.Router, routes)
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	lg := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gdb, err := initGorm(db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	bus := events.NewEventBus(lg)
	events.RegisterAuditLog(bus, lg)

	var metrics *middleware.Metrics
	if config.Observability.Metrics.Enabled {
		metrics = middleware.NewMetrics()
		metrics.SubscribeEvents(bus)
		metrics.Registry().MustRegister(collectors.NewDBStatsCollector(db.DB, config.Database.Name))
	}

	return &Dependencies{
		Config:  config,
		DB:      db,
		Gorm:    gdb,
		Bus:     bus,
		Metrics: metrics,
		Router:  chi.NewRouter(),
		Logger:  lg,
	}, nil
}

// initDB opens the single pgx pool shared by sqlx and gorm.
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := sqlx.ConnectContext(ctx, driver, cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return db, nil
}

// initGorm wraps an existing pool; gorm never opens its own connections.
func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), &gorm.Config{
		Logger:               gormlogger.Default.LogMode(gormlogger.Warn),
		DisableAutomaticPing: true,
		TranslateError:       true,
	})
}
