package cmd

import (
	"context"
	"fmt"
	"io"

	"sitesync/core/config"
	"sitesync/core/sitemap"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// listCmd prints the resource list as a table.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the sitemap",
	Long:  `Builds the resource list once and prints every resource with its source file.`,
	RunE:  runList,
}

func init() {
	RootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// The table is the output; keep logs out of it.
	s, err := buildSite(ctx, cfg, zap.NewNop())
	if err != nil {
		return err
	}

	renderResources(cmd.OutOrStdout(), s.Store().Resources())
	return nil
}

// renderResources writes the resources as a table.
func renderResources(w io.Writer, resources sitemap.ResourceList) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Path", "Source", "Kind"})
	table.SetAutoWrapText(false)
	for _, r := range resources {
		table.Append([]string{r.Path, r.Source.RelativePath, string(r.Source.Kind)})
	}
	table.SetFooter([]string{"", "Total", fmt.Sprintf("%d", len(resources))})
	table.Render()
}
