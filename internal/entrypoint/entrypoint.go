package entrypoint

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/easyreads/easyreads/internal/auth"
	"github.com/easyreads/easyreads/internal/config"
	http_controllers "github.com/easyreads/easyreads/internal/http"
	"github.com/easyreads/easyreads/internal/scheduler"
	"github.com/easyreads/easyreads/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs the HTTP server until ctx is cancelled, then shuts it down
// within the configured timeout.
func Serve(ctx context.Context, handler http.Handler, cfg *config.Config, onShutdown ShutdownFunc) error {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	listener, err := net.Listen("tcp", fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port))
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("Starting server at %s", listener.Addr())
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Call shutdown callback first (e.g., to stop task queue)
	if onShutdown != nil {
		onShutdown(shutdownCtx)
	}

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	log.Println("Server exiting")
	return nil
}

// Run wires every component and serves HTTP until SIGINT or SIGTERM.
func Run(cfg *config.Config, version string) error {
	log.Printf("Starting EasyReads v%s", version)

	if err := ensureSessionSecret(&cfg.Auth); err != nil {
		return err
	}

	app, err := NewApp(cfg)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.FromAppConfig(cfg.Tasks))
		if err != nil {
			return fmt.Errorf("initialize task queue: %w", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(
			tasks.NewImportBookQueue(app.Reader),
			tasks.NewCleanupOrphansQueue(app.Annotations, app.Comments),
		)
		app.Reader.SetScheduler(taskClient)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
	}

	var cleanupScheduler *scheduler.OrphanCleanupScheduler
	if cfg.OrphanCleanup.Enabled {
		if taskClient == nil {
			log.Printf("[SCHEDULER] Orphan cleanup needs the task queue, set TASKS_ENABLED=true to enable it")
		} else {
			cleanupScheduler = scheduler.NewOrphanCleanupScheduler(taskClient, cfg.OrphanCleanup.Schedule)
			if err := cleanupScheduler.Start(ctx); err != nil {
				return fmt.Errorf("start orphan cleanup: %w", err)
			}
		}
	}

	sqlDB, err := app.DB.DB.DB()
	if err != nil {
		return fmt.Errorf("get SQL DB for sessions: %w", err)
	}
	sessionManager, err := auth.NewSessionManager(sqlDB, cfg.Auth)
	if err != nil {
		return fmt.Errorf("initialize session manager: %w", err)
	}

	if hasUsers, err := app.Auth.HasUsers(ctx); err == nil && !hasUsers {
		log.Printf("No users found. Visit /register or run 'easyreads create-user' to create one.")
	}

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		Reader:         app.Reader,
		Notes:          app.Notes,
		Database:       app.DB,
		AuthService:    app.Auth,
		SessionManager: sessionManager,
		AuthConfig:     cfg.Auth,
		CSRFSecret:     csrfKey(cfg.Auth.SessionSecret),
		TemplatesPath:  cfg.UI.TemplatesPath,
		StaticPath:     cfg.UI.StaticPath,
		TaskClient:     taskClient,
		Version:        version,
	})

	onShutdown := func(ctx context.Context) {
		if cleanupScheduler != nil {
			cleanupScheduler.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
		router.Stop()
	}

	return Serve(ctx, router, cfg, onShutdown)
}

// ensureSessionSecret generates a session secret when none is configured.
// Sessions and tokens then do not survive a restart.
func ensureSessionSecret(cfg *config.Auth) error {
	if cfg.SessionSecret != "" {
		return nil
	}
	secret, err := auth.GenerateSecret()
	if err != nil {
		return fmt.Errorf("generate session secret: %w", err)
	}
	cfg.SessionSecret = secret
	log.Printf("Generated session secret (set AUTH_SESSION_SECRET to persist)")
	return nil
}

// csrfKey derives the 32-byte CSRF key from the session secret.
func csrfKey(secret string) []byte {
	sum := sha256.Sum256([]byte("csrf:" + secret))
	return sum[:]
}
