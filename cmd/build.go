package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"sitesync/core/config"
	"sitesync/core/database"
	"sitesync/core/logger"
	"sitesync/core/site"
	"sitesync/core/storage"
	"sitesync/feature/publish"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	publishBuild bool
	dryRunBuild  bool
	yesConfirm   bool
)

// buildCmd runs a one-off build and optionally publishes it.
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the resource list once (and optionally publish it)",
	Long: `Scans the source directories and builds the resource list in batch mode:
file changes never trigger rebuilds while the build runs.

Examples:
  # Build and report
  build

  # Show what publishing would change
  build --publish --dry-run

  # Publish with interactive confirmation
  build --publish

  # Publish without prompting
  build --publish --yes`,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().BoolVar(&publishBuild, "publish", false, "Publish the build to object storage")
	buildCmd.Flags().BoolVar(&dryRunBuild, "dry-run", false, "Plan the publish without changing the bucket")
	buildCmd.Flags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm the publish (non-interactive)")

	RootCmd.AddCommand(buildCmd)
}

// buildSite boots a batch-build site and brings its resource list up to date.
func buildSite(ctx context.Context, cfg *config.Config, l *zap.Logger) (*site.Site, error) {
	s, err := site.New(cfg, l, true)
	if err != nil {
		return nil, err
	}
	if err := s.Boot(ctx); err != nil {
		return nil, fmt.Errorf("failed to scan source directories: %w", err)
	}
	if err := s.Ready(); err != nil {
		return nil, fmt.Errorf("failed to build resource list: %w", err)
	}
	// The build driver owns the final rebuild in batch mode.
	if err := s.Store().EnsureResourceListUpdated(); err != nil {
		return nil, fmt.Errorf("failed to build resource list: %w", err)
	}
	return s, nil
}

func runBuild(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer l.Sync()

	s, err := buildSite(ctx, cfg, l)
	if err != nil {
		return err
	}

	stats := s.Store().Stats()
	l.Info("Build complete",
		zap.Int("files", s.Registry().Len()),
		zap.Int("resources", stats.Resources),
		zap.Int("rebuilds", stats.Rebuilds),
	)

	if !publishBuild {
		l.Info("No publish requested. Use --publish to upload the build.")
		return nil
	}

	client, err := storage.NewClient(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to connect to storage: %w", err)
	}
	if err := storage.EnsureBucket(ctx, client, cfg.Storage); err != nil {
		return err
	}

	svc := publish.NewService(client, cfg.Storage.Bucket, cfg.Publish, s.Store(), openRecorder(ctx, cfg, l), l)

	plan, err := svc.Plan(ctx)
	if err != nil {
		return fmt.Errorf("failed to plan publish: %w", err)
	}
	printPublishReport(l, plan)

	if dryRunBuild {
		l.Info("Dry-run mode: No changes were made.")
		return nil
	}

	if !confirmPublish(cmd.InOrStdin(), cmd.OutOrStdout()) {
		l.Warn("Publish cancelled by user. No changes were made.")
		return nil
	}

	result, err := svc.Apply(ctx, plan, publish.Options{Confirmed: true})
	if err != nil {
		return fmt.Errorf("failed to publish: %w", err)
	}

	l.Info("Published site",
		zap.Int("uploaded", result.Uploaded),
		zap.Int("deleted", result.Deleted),
		zap.Int("unchanged", result.Unchanged),
		zap.String("manifest", result.Manifest),
	)
	return nil
}

// openRecorder returns a history recorder when a database is configured.
// The history is optional, so connection problems only produce a warning.
func openRecorder(ctx context.Context, cfg *config.Config, l *zap.Logger) *publish.Recorder {
	if !cfg.Database.Enabled {
		return nil
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		l.Warn("Optional database connection failed", zap.Error(err))
		return nil
	}

	rec := publish.NewRecorder(db)
	if err := rec.Migrate(ctx); err != nil {
		l.Warn("Publish history disabled", zap.Error(err))
		return nil
	}
	return rec
}

// printPublishReport logs a summary and a sample of the planned actions.
func printPublishReport(l *zap.Logger, plan *publish.Plan) {
	l.Info("Publish report",
		zap.String("bucket", plan.Bucket),
		zap.String("prefix", plan.Prefix),
		zap.Int("uploads", len(plan.Uploads())),
		zap.Int("deletes", len(plan.Deletes())),
		zap.Int("unchanged", plan.Unchanged),
	)

	maxShow := min(5, len(plan.Actions))
	for _, action := range plan.Actions[:maxShow] {
		l.Info("Sample action",
			zap.String("type", string(action.Type)),
			zap.String("key", action.Key),
			zap.String("reason", action.Reason),
		)
	}
	if len(plan.Actions) > maxShow {
		l.Info("Additional actions not shown", zap.Int("count", len(plan.Actions)-maxShow))
	}
}

// confirmPublish prompts for confirmation unless --yes was given.
func confirmPublish(in io.Reader, out io.Writer) bool {
	if yesConfirm {
		fmt.Fprintln(out, "\n✓ Auto-confirmed via --yes flag")
		return true
	}

	fmt.Fprint(out, "\n⚠️  Type 'yes' to publish: ")
	response, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && response == "" {
		return false
	}
	return strings.TrimSpace(response) == "yes"
}
