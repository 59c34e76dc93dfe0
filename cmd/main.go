package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/grpc/health"

	grpcHealth "github.com/dtroode/taskflow-server/internal/api/grpc/health"
	grpcRouter "github.com/dtroode/taskflow-server/internal/api/grpc/router"
	grpcServer "github.com/dtroode/taskflow-server/internal/api/grpc/server"
	httpContext "github.com/dtroode/taskflow-server/internal/api/http/context"
	httpRouter "github.com/dtroode/taskflow-server/internal/api/http/router"
	httpServer "github.com/dtroode/taskflow-server/internal/api/http/server"
	"github.com/dtroode/taskflow-server/internal/cache"
	"github.com/dtroode/taskflow-server/internal/config"
	"github.com/dtroode/taskflow-server/internal/logger"
	"github.com/dtroode/taskflow-server/internal/model"
	"github.com/dtroode/taskflow-server/internal/password"
	"github.com/dtroode/taskflow-server/internal/repository/memory"
	"github.com/dtroode/taskflow-server/internal/repository/postgres"
	"github.com/dtroode/taskflow-server/internal/server"
	"github.com/dtroode/taskflow-server/internal/service"
	"github.com/dtroode/taskflow-server/internal/telemetry"
	"github.com/dtroode/taskflow-server/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

const shutdownTimeout = 10 * time.Second

type stores struct {
	users  model.UserStore
	tasks  model.TaskStore
	pinger model.Pinger
	close  func() error
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel, cfg.LogFormat)

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Tracing)
	if err != nil {
		logger.Fatal("failed to initialize tracing", "error", err)
	}

	st, err := openStores(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err, "driver", cfg.Database.Driver)
	}
	defer func() {
		if err := st.close(); err != nil {
			logger.Error("failed to close storage", "error", err)
		}
	}()

	tasks := st.tasks
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			logger.Fatal("failed to parse redis url", "error", err)
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, task list cache will fall back to the store", "error", err)
		}
		tasks = cache.NewTaskCache(st.tasks, rdb, cfg.Redis.TTL, logger)
		logger.Info("task list cache enabled", "ttl", cfg.Redis.TTL)
	}

	tokenManager, err := token.NewJWT(cfg.JWT.Secret, cfg.JWT.Algorithm)
	if err != nil {
		logger.Fatal("failed to initialize token manager", "error", err)
	}

	tokenService := service.NewTokenService(tokenManager, logger)
	authService := service.NewAuth(st.users, password.NewBcrypt(bcrypt.DefaultCost), tokenService, logger)
	taskService := service.NewTask(tasks, logger)

	e := httpRouter.New(authService, taskService, tokenService, httpContext.NewManager(), st.pinger, logger, httpRouter.Options{
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		Development:    cfg.IsDevelopment(),
		ServiceName:    cfg.Tracing.ServiceName,
	}).Register()

	servers := []model.Server{
		httpServer.NewHTTPServer(e, fmt.Sprintf(":%s", cfg.HTTP.Port)),
	}

	var wg sync.WaitGroup

	if cfg.GRPC.Enabled {
		hs := health.NewServer()
		checker := grpcHealth.NewChecker(hs, st.pinger, cfg.GRPC.HealthInterval, logger)
		wg.Add(1)
		go func() {
			defer wg.Done()
			checker.Run(ctx)
		}()

		gs := grpcRouter.New(hs, logger).Register()
		servers = append(servers, grpcServer.NewGRPCServer(gs, fmt.Sprintf(":%s", cfg.GRPC.Port)))
	}

	sl := server.NewSecurityLayer(cfg.HTTP.EnableHTTPS, cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName)

	for _, s := range servers {
		wg.Add(1)
		go func(s model.Server) {
			defer wg.Done()
			logger.Info("Starting server on", "address", s.Address())
			if err := s.Start(sl); err != nil {
				logger.Error("failed to start server", "error", err, "address", s.Address())
				stop()
			}
		}(s)
	}

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	for _, s := range servers {
		if err := s.Stop(shutdownCtx); err != nil {
			logger.Error("error during server shutdown", "error", err, "address", s.Address())
		}
	}

	wg.Wait()

	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("failed to flush traces", "error", err)
	}

	logger.Info("shutdown complete")
}

func openStores(ctx context.Context, cfg config.Database) (stores, error) {
	if cfg.Driver == config.DatabaseDriverMemory {
		tasks := memory.NewTaskRepository()
		return stores{
			users:  memory.NewUserRepository(),
			tasks:  tasks,
			pinger: tasks,
			close:  func() error { return nil },
		}, nil
	}

	db, err := postgres.NewConnection(ctx, cfg.DSN)
	if err != nil {
		return stores{}, err
	}
	return stores{
		users:  postgres.NewUserRepository(db),
		tasks:  postgres.NewTaskRepository(db),
		pinger: db,
		close:  db.Close,
	}, nil
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
