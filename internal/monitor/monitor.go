// Package monitor periodically reports the health of a running demo to a
// status file, the database and InfluxDB.
package monitor

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/globe-viz/globe/internal/influx"
	"github.com/globe-viz/globe/internal/scene"
	"gorm.io/gorm"
)

// StatusFile is the name of the file rewritten every interval.
const StatusFile = "status.json"

// Dependencies holds all dependencies for the monitor service.
type Dependencies struct {
	Context   *scene.Context
	Logger    *slog.Logger
	StatusDir string
	Interval  time.Duration

	// optional sinks
	DB     *gorm.DB
	Influx *influx.Manager
}

// Status is one snapshot of the running demo.
type Status struct {
	ID               uint      `json:"-" gorm:"primarykey"`
	Time             time.Time `json:"time" gorm:"index"`
	Demo             string    `json:"demo" gorm:"size:64"`
	Frames           uint64    `json:"frames"`
	ElapsedSeconds   float64   `json:"elapsedSeconds"`
	FPS              float64   `json:"fps"`
	LiveTubes        int       `json:"liveTubes"`
	LiveVertices     int       `json:"liveVertices"`
	Tweens           int       `json:"tweens"`
	PendingMutations int       `json:"pendingMutations"`
}

// TableName keeps status rows in one table across drivers.
func (Status) TableName() string {
	return "performance"
}

// Service manages status monitoring.
type Service struct {
	deps      Dependencies
	isRunning bool
	mu        sync.RWMutex
	stopChan  chan struct{}
	doneChan  chan struct{}

	lastFrames uint64
	lastTime   time.Time
}

// NewService creates a new monitor service.
func NewService(deps Dependencies) *Service {
	if deps.Interval <= 0 {
		deps.Interval = time.Second
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Service{deps: deps}
}

// IsRunning returns whether the status monitor is running.
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Collect returns the current status. FPS is measured since the previous
// call.
func (s *Service) Collect(now time.Time) Status {
	c := s.deps.Context
	frames := c.Frames()

	st := Status{
		Time:             now,
		Demo:             c.Name,
		Frames:           frames,
		ElapsedSeconds:   c.Elapsed().Seconds(),
		LiveTubes:        c.Tubes.Live(),
		LiveVertices:     c.Tubes.LiveVertices(),
		Tweens:           c.Scheduler.Len(),
		PendingMutations: c.Pending(),
	}

	s.mu.Lock()
	if !s.lastTime.IsZero() {
		if d := now.Sub(s.lastTime).Seconds(); d > 0 {
			st.FPS = float64(frames-s.lastFrames) / d
		}
	}
	s.lastFrames, s.lastTime = frames, now
	s.mu.Unlock()
	return st
}

// Report collects a status and writes it to every configured sink.
func (s *Service) Report(now time.Time) (Status, error) {
	st := s.Collect(now)
	logger := s.deps.Logger

	if err := s.writeStatusFile(st); err != nil {
		return st, err
	}

	if s.deps.DB != nil {
		if err := s.deps.DB.Create(&st).Error; err != nil {
			logger.Error("Error writing status to database", "error", err)
		}
	}

	if s.deps.Influx != nil {
		p := influx.StatusPoint(st.Demo, influx.FrameStats{
			Frame:    st.Frames,
			Tubes:    st.LiveTubes,
			Vertices: st.LiveVertices,
			Tweens:   st.Tweens,
		}, st.FPS, now)
		if err := s.deps.Influx.WritePoint(influx.BucketPerformance, p); err != nil {
			logger.Error("Error writing status to InfluxDB", "error", err)
		}
	}
	return st, nil
}

func (s *Service) writeStatusFile(st Status) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding status: %w", err)
	}
	path := filepath.Join(s.deps.StatusDir, StatusFile)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("writing status file: %w", err)
	}
	return os.Rename(tmp, path)
}

// Start starts the status monitor goroutine.
func (s *Service) Start() error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	if s.deps.DB != nil {
		if err := s.deps.DB.AutoMigrate(&Status{}); err != nil {
			s.mu.Unlock()
			return fmt.Errorf("failed to migrate status table: %w", err)
		}
	}
	if err := os.MkdirAll(s.deps.StatusDir, 0755); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to create status directory: %w", err)
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.doneChan = make(chan struct{})
	stop, done := s.stopChan, s.doneChan
	s.mu.Unlock()

	go func() {
		defer close(done)
		defer func() {
			s.mu.Lock()
			s.isRunning = false
			s.mu.Unlock()
		}()

		logger := s.deps.Logger
		logger.Debug("Starting status monitor goroutine", "interval", s.deps.Interval)

		ticker := time.NewTicker(s.deps.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case now := <-ticker.C:
				if _, err := s.Report(now); err != nil {
					logger.Error("Error reporting status", "error", err)
				}
			}
		}
	}()

	return nil
}

// Stop stops the status monitor and waits for it to exit.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	close(s.stopChan)
	done := s.doneChan
	s.mu.Unlock()
	<-done
}
