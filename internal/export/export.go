// Package export records frames and writes them to a JSON file when the
// demo ends.
package export

import (
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/globe-viz/globe/internal/scene"
)

// ErrNoFrames is returned by Write when nothing was recorded.
var ErrNoFrames = errors.New("no frames recorded")

// Config controls what the recorder keeps and where it writes.
type Config struct {
	OutputDir string
	Compress  bool
	Every     int // keep every Nth frame; 0 or 1 keeps all
	MaxFrames int // 0 means unlimited
}

// Recording is the root JSON structure of an export file.
type Recording struct {
	Demo       string            `json:"demo"`
	StartedAt  time.Time         `json:"startedAt"`
	EndFrame   uint64            `json:"endFrame"`
	Duration   float64           `json:"duration"` // seconds
	FrameCount int               `json:"frameCount"`
	Frames     []json.RawMessage `json:"frames"`
}

// Recorder collects frames from the frame loop.
type Recorder struct {
	cfg  Config
	demo string

	mu        sync.Mutex
	startedAt time.Time
	frames    []json.RawMessage
	last      *scene.Frame
	lastPath  string
}

// NewRecorder creates a recorder for demo.
func NewRecorder(demo string, cfg Config) *Recorder {
	if cfg.Every < 1 {
		cfg.Every = 1
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "."
	}
	return &Recorder{cfg: cfg, demo: demo, startedAt: time.Now()}
}

// Record encodes f right away, since its tube buffers are reused by later
// frames. Frames past MaxFrames are ignored.
func (r *Recorder) Record(f *scene.Frame) error {
	if f.Number%uint64(r.cfg.Every) != 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cfg.MaxFrames > 0 && len(r.frames) >= r.cfg.MaxFrames {
		return nil
	}

	raw, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("encoding frame %d: %w", f.Number, err)
	}
	r.frames = append(r.frames, raw)
	r.last = &scene.Frame{Number: f.Number, Time: f.Time}
	return nil
}

// Len returns the number of recorded frames.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.frames)
}

// Filename returns the export file name for the recorder's demo.
func (r *Recorder) Filename() string {
	name := strings.NewReplacer(" ", "_", ":", "_", "/", "_").Replace(r.demo)
	timestamp := r.startedAt.Format("20060102_150405")
	if r.cfg.Compress {
		return fmt.Sprintf("%s_%s.json.gz", name, timestamp)
	}
	return fmt.Sprintf("%s_%s.json", name, timestamp)
}

// Write exports the recording and returns the file path.
func (r *Recorder) Write() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.frames) == 0 {
		return "", ErrNoFrames
	}

	rec := Recording{
		Demo:       r.demo,
		StartedAt:  r.startedAt.UTC(),
		EndFrame:   r.last.Number,
		Duration:   r.last.Time,
		FrameCount: len(r.frames),
		Frames:     r.frames,
	}

	if err := os.MkdirAll(r.cfg.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	outputPath := filepath.Join(r.cfg.OutputDir, r.Filename())

	var err error
	if r.cfg.Compress {
		err = writeGzipJSON(outputPath, rec)
	} else {
		err = writeJSON(outputPath, rec)
	}
	if err != nil {
		return "", err
	}
	r.lastPath = outputPath
	return outputPath, nil
}

// LastPath returns the path of the last successful Write.
func (r *Recorder) LastPath() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastPath
}

// Read loads a recording written by Write, compressed or not.
func Read(path string) (*Recording, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var dec *json.Decoder
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("opening gzip stream: %w", err)
		}
		defer gz.Close()
		dec = json.NewDecoder(gz)
	} else {
		dec = json.NewDecoder(f)
	}

	var rec Recording
	if err := dec.Decode(&rec); err != nil {
		return nil, fmt.Errorf("decoding recording: %w", err)
	}
	return &rec, nil
}

func writeJSON(path string, data Recording) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	return json.NewEncoder(f).Encode(data)
}

func writeGzipJSON(path string, data Recording) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	gzWriter := gzip.NewWriter(f)
	if err := json.NewEncoder(gzWriter).Encode(data); err != nil {
		gzWriter.Close()
		return err
	}
	return gzWriter.Close()
}
