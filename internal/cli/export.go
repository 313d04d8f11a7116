package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Ogstevyn/shade/internal/export"
)

var exportOutputPath string

var exportCmd = &cobra.Command{
	Use:   "export-events",
	Short: "Write the local event log to an lz4-compressed file for offline shipping",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportOutputPath, "out", "", "output path (default: <storage.path>/../events.log.lz4)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	srcPath := filepath.Join(filepath.Dir(cfg.Storage.Path), "events.log")
	dstPath := exportOutputPath
	if dstPath == "" {
		dstPath = srcPath + ".lz4"
	}
	if err := export.Events(srcPath, dstPath); err != nil {
		return fmt.Errorf("exporting events: %w", err)
	}
	fmt.Printf("wrote %s\n", dstPath)
	return nil
}
