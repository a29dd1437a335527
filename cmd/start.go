package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sitesync/core/config"
	"sitesync/core/loader"
	"sitesync/core/logger"
	"sitesync/core/middleware/auth"
	"sitesync/core/middleware/rayid"
	"sitesync/core/site"
	"sitesync/feature/sitemap"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Serve the sitemap and follow file changes",
	Long: `Scans the source directories, builds the resource list once and starts the
HTTP server. File changes are picked up while the server runs.`,
	RunE: runStart,
}

func init() {
	RootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logg.Sync()
	zap.ReplaceGlobals(logg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := site.New(cfg, logg, false)
	if err != nil {
		return err
	}

	defer s.Close()

	// Bulk discovery happens while the site is starting, so it costs one rebuild.
	if err := s.Boot(ctx); err != nil {
		return fmt.Errorf("failed to scan source directories: %w", err)
	}
	if err := s.Ready(); err != nil {
		return fmt.Errorf("failed to build resource list: %w", err)
	}

	app := newApp(cfg, s, logg)

	watchErr := make(chan error, 1)
	go func() {
		watchErr <- s.Watch(ctx)
	}()

	serveErr := make(chan error, 1)
	go func() {
		logg.Info("Starting server", zap.String("port", cfg.Server.Port))
		serveErr <- app.Listen(cfg.Server.Address())
	}()

	select {
	case <-ctx.Done():
	case err := <-watchErr:
		if err != nil && !errors.Is(err, context.Canceled) {
			logg.Error("File watcher stopped", zap.Error(err))
		}
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	}

	logg.Info("Shutting down server...")
	stop()
	timeout := time.Duration(cfg.Server.ShutdownSeconds) * time.Second
	if err := app.ShutdownWithTimeout(timeout); err != nil {
		logg.Warn("Server shutdown incomplete", zap.Error(err))
	}
	return nil
}

// newApp builds the fiber application with middleware and features.
func newApp(cfg *config.Config, s *site.Site, logg *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	// RayID must be first to trace everything.
	app.Use(rayid.New())

	app.Use(func(c *fiber.Ctx) error {
		l := logger.WithRayID(logg, c)
		l.Info("Request started",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("ip", c.IP()),
		)
		err := c.Next()
		if err != nil {
			l.Error("Request error", zap.Error(err))
		}
		return err
	})

	app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

	mgr := loader.NewManager()
	mgr.Register(sitemap.NewFeature(s, logg))
	if err := mgr.LoadAll(app); err != nil {
		// Features only register routes; a failure here is a programming error.
		logg.Fatal("Failed to load features", zap.Error(err))
	}

	return app
}
