package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	githubadapter "github.com/assignwatch/assignwatch/internal/adapter/driven/github"
	"github.com/assignwatch/assignwatch/internal/adapter/driven/repofile"
	sqliteadapter "github.com/assignwatch/assignwatch/internal/adapter/driven/sqlite"
	"github.com/assignwatch/assignwatch/internal/adapter/driving/webhook"
	"github.com/assignwatch/assignwatch/internal/application"
	"github.com/assignwatch/assignwatch/internal/config"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (.env first, fail fast on missing required vars).
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"repos_file", cfg.ReposFile,
		"cron_schedule", cfg.CronSchedule,
		"warning_interval", cfg.WarningInterval,
		"disqualify_interval", cfg.DisqualifyInterval,
		"dry_run", cfg.DryRun,
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open database (dual reader/writer with WAL mode) and migrate.
	db, err := sqliteadapter.NewDB(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}
	slog.Info("database ready", "path", cfg.DBPath)

	// 4. Wire adapters.
	stateStore := sqliteadapter.NewStateRepo(db)
	repoSource := repofile.NewSource(cfg.ReposFile)
	ghClient := githubadapter.NewClient(cfg.GitHubToken, cfg.DryRun)

	// 5. Create services.
	engine := application.NewReminderService(ghClient, stateStore, cfg.BotLogin, cfg.WarningInterval, cfg.DisqualifyInterval)
	watchdog := application.NewWatchdog(repoSource, ghClient, ghClient, stateStore, engine, application.WatchdogConfig{
		WarningInterval:    cfg.WarningInterval,
		DisqualifyInterval: cfg.DisqualifyInterval,
		RequirePullRequest: cfg.RequirePullRequest,
		HostOwner:          cfg.HostOwner,
		HostRepo:           cfg.HostRepo,
	})

	// 6. Schedule periodic sweeps, one invocation per watched repo per tick.
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.CronSchedule, func() {
		sweep(ctx, watchdog, repoSource)
	}); err != nil {
		return err
	}
	scheduler.Start()
	defer scheduler.Stop()

	// 7. Webhook HTTP server for assignment events.
	mux := http.NewServeMux()
	webhook.RegisterRoutes(mux, webhook.NewHandler(watchdog, cfg.WebhookSecret, slog.Default()))
	handler := webhook.ApplyMiddleware(mux, slog.Default())

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
		}
	}()

	slog.Info("assignwatch started")

	// 8. Wait for shutdown signal, then drain.
	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}

// sweep runs one scheduled watchdog invocation per watched repository.
func sweep(ctx context.Context, watchdog *application.Watchdog, repoSource *repofile.Source) {
	repos, err := repoSource.WatchedRepos(ctx)
	if err != nil {
		slog.Error("sweep aborted, watch list unreadable", "error", err)
		return
	}

	start := time.Now()
	for _, repo := range repos {
		if ctx.Err() != nil {
			return
		}

		res, err := watchdog.Run(ctx, application.Trigger{
			Kind:   application.TriggerSchedule,
			RepoID: repo.ID,
			Owner:  repo.Owner,
			Repo:   repo.Name,
		})
		if err != nil {
			slog.Error("sweep run failed", "repo", repo.FullName(), "error", err)
			continue
		}
		slog.Info("sweep run complete", "repo", repo.FullName(), "result", res.Message)
	}

	slog.Info("sweep complete",
		"repos", len(repos),
		"duration", time.Since(start).Round(time.Millisecond),
	)
}
