package eventlog_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ogstevyn/shade/internal/eventlog"
)

func TestAppendAndReadAllRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.log")
	rec, err := eventlog.Open(path)
	require.NoError(t, err)

	require.NoError(t, rec.Append("InvoiceCreated", time.Unix(100, 0).UTC(), map[string]any{"InvoiceID": uint64(1)}))
	require.NoError(t, rec.Append("InvoicePaid", time.Unix(200, 0).UTC(), map[string]any{"InvoiceID": uint64(1)}))
	require.NoError(t, rec.Close())

	records, err := eventlog.ReadAll(path)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "InvoiceCreated", records[0].Topic)
	assert.Equal(t, "InvoicePaid", records[1].Topic)
}

func TestHandleNeverPanicsOnWriteFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.log")
	rec, err := eventlog.Open(path)
	require.NoError(t, err)
	require.NoError(t, rec.Close())

	assert.NotPanics(t, func() {
		rec.Handle("InvoiceCreated", map[string]any{"InvoiceID": uint64(1)})
	})
}
