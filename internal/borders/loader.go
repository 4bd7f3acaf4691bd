package borders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/globe-viz/globe/internal/scene"
	"github.com/globe-viz/globe/internal/storage"
)

// Cache stores raw datasets between runs.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
}

// Loader fetches the border dataset once and hands the resulting line loops
// to the frame loop.
type Loader struct {
	Client *Client
	Cache  Cache // optional
	Logger *slog.Logger

	// Object is the TopoJSON object holding the countries.
	Object string
	// Parent names the group the loops are added to. The scene root is used
	// when no such node exists.
	Parent string
	Radius float64
}

// Load fetches (or reads from cache), decodes and enqueues the borders on sc.
func (l *Loader) Load(ctx context.Context, sc *scene.Context) error {
	data, err := l.dataset(ctx)
	if err != nil {
		return err
	}

	object := l.Object
	if object == "" {
		object = "countries"
	}
	countries, err := Decode(data, object)
	if err != nil {
		return fmt.Errorf("decoding borders: %w", err)
	}

	nodes := Nodes(countries, l.Radius)
	parent := l.Parent
	sc.Enqueue(func(s *scene.Scene) error {
		target := s.Root.Find(parent)
		if parent == "" || target == nil {
			target = s.Root
		}
		target.Add(nodes...)
		return nil
	})

	l.logger().Info("country borders loaded", "countries", len(countries), "loops", len(nodes))
	return nil
}

// Start runs Load in the background. Failures are logged and the scene is
// left without borders. The returned channel closes when loading is over.
func (l *Loader) Start(ctx context.Context, sc *scene.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := l.Load(ctx, sc); err != nil {
			l.logger().Error("failed to load country borders", "error", err)
		}
	}()
	return done
}

func (l *Loader) dataset(ctx context.Context) ([]byte, error) {
	key := l.Client.URL()

	if l.Cache != nil {
		data, err := l.Cache.Get(ctx, key)
		if err == nil {
			l.logger().Debug("border dataset served from cache", "key", key, "bytes", len(data))
			return data, nil
		}
		if !errors.Is(err, storage.ErrCacheMiss) {
			l.logger().Warn("dataset cache read failed", "error", err)
		}
	}

	data, err := l.Client.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	if l.Cache != nil {
		if err := l.Cache.Put(ctx, key, data); err != nil {
			l.logger().Warn("dataset cache write failed", "error", err)
		}
	}
	return data, nil
}

func (l *Loader) logger() *slog.Logger {
	if l.Logger == nil {
		return slog.Default()
	}
	return l.Logger
}
