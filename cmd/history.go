package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"sitesync/core/config"
	"sitesync/core/database"
	"sitesync/feature/publish"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var historyLimit int

// historyCmd prints recent publish runs.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Print recent publish runs",
	Long:  `Reads the publish history from the configured database and prints the most recent runs.`,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 10, "Number of runs to show")
	RootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if !cfg.Database.Enabled {
		return errors.New("publish history requires DATABASE_ENABLED=true")
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return err
	}

	rec := publish.NewRecorder(db)
	if err := rec.Migrate(ctx); err != nil {
		return err
	}
	runs, err := rec.History(ctx, historyLimit)
	if err != nil {
		return err
	}

	renderHistory(cmd.OutOrStdout(), runs)
	return nil
}

// renderHistory writes publish runs as a table, newest first.
func renderHistory(w io.Writer, runs []publish.PublishRun) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Run", "Finished", "Bucket", "Prefix", "Uploaded", "Deleted", "Unchanged"})
	for _, r := range runs {
		table.Append([]string{
			fmt.Sprintf("%d", r.ID),
			r.FinishedAt.Format("2006-01-02 15:04:05"),
			r.Bucket,
			r.Prefix,
			fmt.Sprintf("%d", r.Uploaded),
			fmt.Sprintf("%d", r.Deleted),
			fmt.Sprintf("%d", r.Unchanged),
		})
	}
	table.Render()
}
