package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/paduszym/bomtool/internal/manifest"
	"github.com/paduszym/bomtool/internal/nodesource"
)

var manifestCmd = &cobra.Command{
	Use:   "manifest <dir>",
	Short: "Print a directory as a tab-separated manifest",
	Long: `Walk dir and print its entries as the tab-separated textual manifest
format "bomtool build --manifest" accepts, without building a BOM.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runManifest(args[0])
	},
}

func init() {
	rootCmd.AddCommand(manifestCmd)
}

func runManifest(dir string) error {
	source := nodesource.NewFileSystemSource(dir)
	records, err := source.Nodes()
	if err != nil {
		return err
	}
	if err := manifest.Print(os.Stdout, records); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}
