// Package export ships internal/eventlog's local event log offline as a
// single lz4-compressed file, the way a merchant's own reconciliation
// systems would ingest it without standing up a database connection.
package export

import (
	"fmt"
	"io"
	"os"

	"github.com/pierrec/lz4"
)

// Events reads the event log at srcPath and writes an lz4-compressed copy
// to dstPath. The source format is untouched by compression: decompressing
// dstPath and re-framing it through internal/eventlog.ReadAll recovers the
// exact same records.
func Events(srcPath, dstPath string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("export: open %s: %w", srcPath, err)
	}
	defer src.Close()

	dst, err := os.Create(dstPath)
	if err != nil {
		return fmt.Errorf("export: create %s: %w", dstPath, err)
	}
	defer dst.Close()

	zw := lz4.NewWriter(dst)
	if _, err := io.Copy(zw, src); err != nil {
		zw.Close()
		return fmt.Errorf("export: compress: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("export: finalize: %w", err)
	}
	return nil
}
