package backup

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportArgs(t *testing.T) {
	assert.Equal(t, []string{"--export", "Ubuntu", "out.tar"}, exportArgs("Ubuntu", "out.tar", false))
	assert.Equal(t, []string{"--export", "--vhd", "Ubuntu", "-"}, exportArgs("Ubuntu", "-", true))
}

func TestCreateArchive(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out.vhdx")
	rec := newRecorder()
	b := New(nil, testSettings(), WithCommander(rec.command))

	code, err := b.CreateArchive(context.Background(), "Ubuntu", dest, true)
	require.NoError(t, err)
	assert.Equal(t, 0, code)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "archive:--vhd,Ubuntu", string(data))
}

func TestCreateArchiveFailure(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out.tar")
	rec := newRecorder("HELPER_EXPORT_FAIL=1")
	b := New(nil, testSettings(), WithCommander(rec.command))

	code, err := b.CreateArchive(context.Background(), "Ubuntu", dest, false)
	require.Error(t, err)
	assert.Equal(t, 1, code)
	assert.Contains(t, err.Error(), "Export failed")
}

func TestCreateArchiveCompress(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out.tar.zst")
	settings := testSettings()
	settings.ZstdArgs = []string{"-T0"}
	rec := newRecorder()
	logger, logs := testLogger()
	b := New(logger, settings, WithCommander(rec.command))

	code, err := b.CreateArchiveCompress(context.Background(), "Ubuntu", dest, false)
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.True(t, rec.calledWith("-T0"))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "zstd:archive:Ubuntu", string(data))
	assert.Contains(t, logs.String(), "compressed 14 bytes")
}

func TestCreateArchiveCompressExportFailure(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out.tar.zst")
	rec := newRecorder("HELPER_EXPORT_FAIL=1")
	b := New(nil, testSettings(), WithCommander(rec.command))

	_, err := b.CreateArchiveCompress(context.Background(), "Ubuntu", dest, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Export failed")
}

func TestCreateArchiveCompressTimeoutKillsBothStages(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out.tar.zst")
	settings := testSettings()
	settings.Timeout = 500 * time.Millisecond
	rec := newRecorder("HELPER_EXPORT_HANG=1", "HELPER_ZSTD_HANG=1")
	logger, logs := testLogger()
	b := New(logger, settings, WithCommander(rec.command))

	start := time.Now()
	code, err := b.CreateArchiveCompress(context.Background(), "Ubuntu", dest, false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.Timeout), "%v", err)
	assert.NotEqual(t, 0, code)
	assert.Less(t, time.Since(start), 20*time.Second)
	assert.Contains(t, logs.String(), "zstd started")
}
