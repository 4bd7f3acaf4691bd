package influx

import (
	"compress/gzip"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect_Disabled(t *testing.T) {
	m := NewManager(Config{}, zerolog.Nop(), filepath.Join(t.TempDir(), "backup.gz"))
	assert.ErrorIs(t, m.Connect(context.Background()), ErrDisabled)
}

func TestFramePoint(t *testing.T) {
	at := time.Unix(1700000000, 0)
	p := FramePoint("globe", FrameStats{Frame: 42, DT: 16 * time.Millisecond, Tubes: 4, Vertices: 100}, at)

	assert.Equal(t, "frame", p.Name())
	require.Len(t, p.TagList(), 1)
	assert.Equal(t, "demo", p.TagList()[0].Key)
	assert.Equal(t, "globe", p.TagList()[0].Value)
	assert.Equal(t, at, p.Time())

	fields := map[string]any{}
	for _, f := range p.FieldList() {
		fields[f.Key] = f.Value
	}
	assert.Equal(t, int64(42), fields["number"])
	assert.InDelta(t, 16.0, fields["dt_ms"], 1e-9)
	assert.EqualValues(t, 4, fields["tubes"])
}

func TestWriteFrame_BackupWhenUnreachable(t *testing.T) {
	backup := filepath.Join(t.TempDir(), "influx_backup.log.gz")
	m := NewManager(Config{Enabled: true, Protocol: "http", Host: "127.0.0.1", Port: "1"}, zerolog.Nop(), backup)

	require.NoError(t, m.Connect(context.Background()))
	assert.False(t, m.IsValid)

	require.NoError(t, m.WriteFrame("globe", FrameStats{Frame: 1, Tubes: 2}, time.Unix(10, 0)))
	require.NoError(t, m.WriteFrame("globe", FrameStats{Frame: 2, Tubes: 2}, time.Unix(11, 0)))
	require.NoError(t, m.Close())

	f, err := os.Open(backup)
	require.NoError(t, err)
	defer f.Close()
	gz, err := gzip.NewReader(f)
	require.NoError(t, err)
	data, err := io.ReadAll(gz)
	require.NoError(t, err)

	assert.NotContains(t, string(data), "\n\n", "one line per point")
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "frame,demo=globe "))
	assert.Contains(t, lines[1], "number=2i")
}

func TestWritePoint_NotInitialized(t *testing.T) {
	m := NewManager(Config{}, zerolog.Nop(), "")
	err := m.WritePoint(BucketFrames, FramePoint("globe", FrameStats{}, time.Now()))
	assert.Error(t, err)
}

func TestConfig_URL(t *testing.T) {
	assert.Equal(t, "http://localhost:8086", Config{Protocol: "http", Host: "localhost", Port: "8086"}.URL())
}

func TestStatusPoint(t *testing.T) {
	p := StatusPoint("globe", FrameStats{Frame: 3}, 59.5, time.Unix(0, 0))
	assert.Equal(t, "status", p.Name())

	var fps any
	for _, f := range p.FieldList() {
		if f.Key == "fps" {
			fps = f.Value
		}
	}
	assert.Equal(t, 59.5, fps)
}
