package export

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/globe-viz/globe/internal/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frame(n uint64) *scene.Frame {
	return &scene.Frame{
		Demo:   "globe",
		Number: n,
		Time:   float64(n) / 60,
		Drawables: []scene.Drawable{
			{Node: "dots", Kind: scene.KindPoints, Points: []float32{float32(n), 0, 0}},
		},
	}
}

func TestRecorder_WriteAndRead(t *testing.T) {
	for _, compress := range []bool{false, true} {
		dir := t.TempDir()
		r := NewRecorder("globe", Config{OutputDir: dir, Compress: compress})
		for n := uint64(1); n <= 5; n++ {
			require.NoError(t, r.Record(frame(n)))
		}

		path, err := r.Write()
		require.NoError(t, err)
		assert.Equal(t, path, r.LastPath())
		assert.Equal(t, dir, filepath.Dir(path))
		assert.Equal(t, compress, strings.HasSuffix(path, ".json.gz"))

		rec, err := Read(path)
		require.NoError(t, err)
		assert.Equal(t, "globe", rec.Demo)
		assert.Equal(t, 5, rec.FrameCount)
		assert.Equal(t, uint64(5), rec.EndFrame)
		assert.InDelta(t, 5.0/60, rec.Duration, 1e-12)

		var f scene.Frame
		require.NoError(t, json.Unmarshal(rec.Frames[2], &f))
		assert.Equal(t, uint64(3), f.Number)
		assert.Equal(t, []float32{3, 0, 0}, f.Drawables[0].Points)
	}
}

func TestRecorder_EveryAndMax(t *testing.T) {
	r := NewRecorder("globe", Config{OutputDir: t.TempDir(), Every: 3, MaxFrames: 2})
	for n := uint64(1); n <= 20; n++ {
		require.NoError(t, r.Record(frame(n)))
	}
	assert.Equal(t, 2, r.Len())

	path, err := r.Write()
	require.NoError(t, err)
	rec, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, uint64(6), rec.EndFrame)
}

func TestRecorder_CopiesFrameAtRecordTime(t *testing.T) {
	r := NewRecorder("globe", Config{OutputDir: t.TempDir()})
	f := frame(1)
	require.NoError(t, r.Record(f))
	f.Drawables[0].Points[0] = 99

	path, err := r.Write()
	require.NoError(t, err)
	rec, err := Read(path)
	require.NoError(t, err)

	var got scene.Frame
	require.NoError(t, json.Unmarshal(rec.Frames[0], &got))
	assert.Equal(t, float32(1), got.Drawables[0].Points[0])
}

func TestRecorder_NoFrames(t *testing.T) {
	r := NewRecorder("globe", Config{OutputDir: t.TempDir()})
	_, err := r.Write()
	assert.ErrorIs(t, err, ErrNoFrames)
}

func TestRecorder_Filename(t *testing.T) {
	r := NewRecorder("globe dot:1", Config{})
	assert.True(t, strings.HasPrefix(r.Filename(), "globe_dot_1_"))
	assert.True(t, strings.HasSuffix(r.Filename(), ".json"))
}

func TestRead_Missing(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
