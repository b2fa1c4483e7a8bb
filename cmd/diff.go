package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/paduszym/bomtool/pkg/bomfile"
)

var diffCmd = &cobra.Command{
	Use:   "diff <a.bom> <b.bom>",
	Short: "Compare two BOM files' path metadata",
	Long: `Parse both BOM files, reconstruct their path sets, and report paths
added in b, removed from a, and paths present in both whose metadata
(type, mode, uid, gid, size, checksum, link target) differs.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDiff(args[0], args[1])
	},
}

func init() {
	rootCmd.AddCommand(diffCmd)
}

func runDiff(aPath, bPath string) error {
	a, err := os.ReadFile(aPath)
	if err != nil {
		return fmt.Errorf("read %s: %w", aPath, err)
	}
	b, err := os.ReadFile(bPath)
	if err != nil {
		return fmt.Errorf("read %s: %w", bPath, err)
	}
	return bomfile.Diff(a, b, os.Stdout)
}
