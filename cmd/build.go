package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/paduszym/bomtool/internal/nodesource"
	"github.com/paduszym/bomtool/pkg/bomfile"
)

var (
	buildManifest string
	buildUID      int64
	buildGID      int64
	buildCompress bool
)

var buildCmd = &cobra.Command{
	Use:   "build <dir> <out.bom>",
	Short: "Build a BOM from a directory or textual manifest",
	Long: `Build a BOM from a directory tree, or from a textual manifest given
via --manifest, and write it to out.bom.

Examples:
  bomtool build ./payload out.bom
  bomtool build --manifest files.txt - out.bom
  bomtool build --uid 501 --gid 20 ./payload out.bom`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBuild(args[0], args[1])
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().StringVar(&buildManifest, "manifest", "", "read nodes from a textual manifest file instead of walking a directory")
	buildCmd.Flags().Int64Var(&buildUID, "uid", -1, "override every entry's uid when walking a directory; not applied with --manifest (default: from config, or none)")
	buildCmd.Flags().Int64Var(&buildGID, "gid", -1, "override every entry's gid when walking a directory; not applied with --manifest (default: from config, or none)")
	buildCmd.Flags().BoolVar(&buildCompress, "compress", false, "zstd-compress the output image")
}

func runBuild(src, out string) error {
	outFile, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create %s: %w", out, err)
	}
	defer outFile.Close()

	svc := bomfile.New()
	ctx := context.Background()

	if buildManifest != "" {
		manifestFile, err := os.Open(buildManifest)
		if err != nil {
			return fmt.Errorf("open manifest %s: %w", buildManifest, err)
		}
		defer manifestFile.Close()

		var result bomfile.BuildResult
		if buildCompress {
			return fmt.Errorf("--compress requires a directory source, not --manifest")
		}
		result, err = svc.BuildFromManifest(ctx, manifestFile, outFile)
		if err != nil {
			return err
		}
		fmt.Printf("built %s: %d paths, %d bytes (run %s)\n", out, result.PathCount, result.Bytes, result.RunID)
		return nil
	}

	fsSource := nodesource.NewFileSystemSource(src)
	if uid, gid, ok := resolveOwnerOverrides(); ok {
		fsSource.UID = uid
		fsSource.GID = gid
	}

	var result bomfile.BuildResult
	if buildCompress {
		result, err = svc.BuildAndCompress(ctx, fsSource, outFile)
	} else {
		result, err = svc.Build(ctx, fsSource, outFile)
	}
	if err != nil {
		return err
	}
	fmt.Printf("built %s: %d paths, %d bytes (run %s)\n", out, result.PathCount, result.Bytes, result.RunID)
	return nil
}

// resolveOwnerOverrides applies --uid/--gid when set, falling back to the
// loaded config's defaults.
func resolveOwnerOverrides() (uid, gid *uint32, ok bool) {
	if buildUID >= 0 {
		v := uint32(buildUID)
		uid = &v
	} else {
		uid = cfg.DefaultUID
	}
	if buildGID >= 0 {
		v := uint32(buildGID)
		gid = &v
	} else {
		gid = cfg.DefaultGID
	}
	return uid, gid, uid != nil || gid != nil
}
