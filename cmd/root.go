// Package cmd is the bomtool command tree: build, dump, manifest, and
// diff subcommands layered over pkg/bomfile, following the
// rootCmd/PersistentFlags/init-registration structure go-apfs's cmd
// package uses.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config holds the defaults --config loads: override uid/gid for builds
// that don't specify their own, and a default output format for dump.
type Config struct {
	DefaultUID   *uint32 `mapstructure:"default_uid"`
	DefaultGID   *uint32 `mapstructure:"default_gid"`
	OutputFormat string  `mapstructure:"output_format"`
}

var (
	cfgFile string
	cfg     Config
)

var rootCmd = &cobra.Command{
	Use:   "bomtool",
	Short: "Read and write Apple Bill of Materials (BOM) installer archives",
	Long: `bomtool builds and inspects the "BOMStore" binary container macOS
installer packages use to record a payload's file hierarchy: every file,
directory, and symlink, with owner, group, mode, size, and CRC-32.

Commands:
  build     build a BOM from a directory or textual manifest
  dump      print a BOM's structure
  manifest  print a directory as a textual manifest, without building
  diff      compare two BOM files' path metadata`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig()
	},
}

// Execute runs the command tree, exiting 1 on any error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "bomtool: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a bomtool config file (default: search ./bomtool.yaml, $HOME/.bomtool/bomtool.yaml, /etc/bomtool/bomtool.yaml)")
}

// loadConfig loads defaults from an optional YAML config file, following
// the LoadDMGConfig/viper.AddConfigPath search-path pattern.
func loadConfig() error {
	v := viper.New()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("bomtool")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.bomtool")
		v.AddConfigPath("/etc/bomtool")
	}
	v.SetDefault("output_format", "text")
	v.SetEnvPrefix("BOMTOOL")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return v.Unmarshal(&cfg)
}
