package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/xxxsen/vocabnote/internal/config"
	"github.com/xxxsen/vocabnote/internal/db"
	"github.com/xxxsen/vocabnote/internal/feishu"
	"github.com/xxxsen/vocabnote/internal/handler"
	"github.com/xxxsen/vocabnote/internal/job"
	"github.com/xxxsen/vocabnote/internal/metrics"
	"github.com/xxxsen/vocabnote/internal/middleware"
	"github.com/xxxsen/vocabnote/internal/repo"
	"github.com/xxxsen/vocabnote/internal/schedule"
	"github.com/xxxsen/vocabnote/internal/service"
	"github.com/xxxsen/vocabnote/internal/session"
	"github.com/xxxsen/vocabnote/internal/wordcache"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "vocabnote",
		Short: "vocabnote backend server",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run vocabnote server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger.Init(
				cfg.LogConfig.File,
				cfg.LogConfig.Level,
				cfg.LogConfig.FileCount,
				cfg.LogConfig.FileSize,
				cfg.LogConfig.KeepDays,
				cfg.LogConfig.Console,
			)
			logutil.GetLogger(context.Background()).Info("config loaded",
				zap.String("config", configPath), zap.String("env", cfg.Env))

			conn, err := db.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer conn.Close()
			if err := db.ApplyMigrations(conn); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
			return runServer(cfg, conn)
		},
	}

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "validate the config and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := config.Load(configPath); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "config ok")
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.json, defaults to ./config.json")
	rootCmd.AddCommand(runCmd, checkCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func runServer(cfg *config.Config, conn *sql.DB) error {
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("base_id", cfg.Feishu.BaseID),
		zap.String("table_id", cfg.Feishu.TableID),
		zap.Bool("per_user_filter", cfg.Records.PerUserFilter),
	)
	metrics.MustRegister(prometheus.DefaultRegisterer)

	client := feishu.NewClient(feishu.Options{
		BaseURL:       cfg.Feishu.BaseURL,
		AppID:         cfg.Feishu.AppID,
		AppSecret:     cfg.Feishu.AppSecret,
		BaseID:        cfg.Feishu.BaseID,
		TableID:       cfg.Feishu.TableID,
		OwnerField:    cfg.Fields.Owner,
		Timeout:       time.Duration(cfg.Feishu.TimeoutSeconds) * time.Second,
		PageSize:      cfg.Feishu.PageSize,
		MaxPages:      cfg.Feishu.MaxPages,
		RetryAttempts: cfg.Feishu.RetryAttempts,
		RefreshSkew:   time.Duration(cfg.Feishu.TokenRefreshSkewSeconds) * time.Second,
	})
	defer client.Close()

	records := wordcache.Wrap(client, cfg.Records.CacheSize, time.Duration(cfg.Records.CacheTTLSeconds)*time.Second)

	userRepo := repo.NewUserRepo(conn)
	authService := service.NewAuthService(userRepo, cfg.Properties.EnableUserRegister)
	wordService := service.NewWordService(records, client, cfg.Fields, cfg.Records.PerUserFilter)

	gate := session.NewGate(time.Duration(cfg.Session.IdleTimeoutMinutes)*time.Minute, cfg.Session.LoginPath, nil)
	sessions := session.NewCookieStore(
		cfg.Session.CookieName,
		[]byte(cfg.SessionSecret),
		time.Duration(cfg.Session.MaxLifetimeHours)*time.Hour,
		cfg.Session.Secure,
	)

	deps := handler.RouterDeps{
		Auth:           handler.NewAuthHandler(authService, gate, sessions),
		Words:          handler.NewWordHandler(wordService, cfg.Records.ListPath, cfg.Records.StrictNotFound),
		Properties:     handler.NewPropertiesHandler(cfg.Properties, cfg.Session.LoginPath),
		Health:         handler.NewHealthHandler(cfg.Env),
		Metrics:        promhttp.Handler(),
		Gate:           gate,
		Sessions:       sessions,
		LoginRateLimit: time.Duration(cfg.Properties.LoginRateLimitSeconds) * time.Second,
	}

	addr := fmt.Sprintf("0.0.0.0:%d", cfg.Port)
	engine, err := webapi.NewEngine(
		"/api/v1",
		addr,
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.Metrics(),
			middleware.CORS(cfg.CORSAllowlist),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Feishu.TokenWarmupCron != "" {
		scheduler := schedule.NewCronScheduler()
		if err := scheduler.AddJob(job.NewTokenWarmupJob(client.Tokens(), 0), cfg.Feishu.TokenWarmupCron); err != nil {
			return err
		}
		scheduler.Start(ctx)
		defer scheduler.Stop()
	}

	logutil.GetLogger(context.Background()).Info("http server listening", zap.String("addr", addr))
	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}
