// Package cli implements shaded's operator surface: spf13/cobra
// subcommands configured through internal/config's viper-backed loader,
// the way goXRPLd's internal/cli wraps xrpld.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Ogstevyn/shade/internal/config"
)

var (
	configFile string
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:     "shaded",
	Short:   "shaded - Shade merchant payment protocol daemon",
	Version: "0.1.0-dev",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
		return nil
	},
}

// Execute runs the root command. Called once from cmd/shaded/main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "shaded: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "conf", "", "configuration file path (TOML)")
}
