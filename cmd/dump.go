package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/paduszym/bomtool/pkg/bomfile"
)

var dumpCmd = &cobra.Command{
	Use:   "dump <in.bom>",
	Short: "Print a BOM's structure",
	Long: `Open a BOM image and print a recursive structural report: the
header, every named variable, and the shape of every tree-shaped
variable it recognizes.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDump(args[0])
	},
}

func init() {
	rootCmd.AddCommand(dumpCmd)
}

func runDump(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	return bomfile.New().Dump(context.Background(), f, os.Stdout)
}
