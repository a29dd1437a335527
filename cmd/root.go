package cmd

import (
	"fmt"
	"os"

	"sitesync/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "sitesync",
	Short: "Static site sync service",
	Long: `sitesync keeps a site's resource list in sync with the files on disk.
It can serve the sitemap over HTTP while watching for changes, or run a one-off
build and publish the result to S3 compatible storage.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits with status 1 on failure.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Console encoding with debug level gives readable ISO8601 output for CLI users.
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}
