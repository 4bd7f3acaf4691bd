package logging

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// FrameInfo identifies the frame a record was logged during.
type FrameInfo struct {
	Demo    string
	Frame   uint64
	Elapsed time.Duration
}

// FrameSource reports the frame being produced, or false when no demo runs.
type FrameSource func() (FrameInfo, bool)

// frameHandler fans every record out to its outputs and stamps it with the
// current demo, frame number and simulated time.
type frameHandler struct {
	outputs []slog.Handler
	source  FrameSource
}

func newFrameHandler(source FrameSource, outputs ...slog.Handler) *frameHandler {
	h := &frameHandler{source: source}
	for _, o := range outputs {
		if o != nil {
			h.outputs = append(h.outputs, o)
		}
	}
	return h
}

func (h *frameHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, o := range h.outputs {
		if o.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle writes r to every output that accepts its level. A failing output
// does not stop the others; their errors are joined.
func (h *frameHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.source != nil {
		if fi, ok := h.source(); ok {
			r.AddAttrs(
				slog.String("demo", fi.Demo),
				slog.Uint64("frame", fi.Frame),
				slog.Float64("t", fi.Elapsed.Seconds()),
			)
		}
	}

	var errs []error
	for _, o := range h.outputs {
		if !o.Enabled(ctx, r.Level) {
			continue
		}
		if err := o.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (h *frameHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h.derive(func(o slog.Handler) slog.Handler { return o.WithAttrs(attrs) })
}

func (h *frameHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return h.derive(func(o slog.Handler) slog.Handler { return o.WithGroup(name) })
}

func (h *frameHandler) derive(fn func(slog.Handler) slog.Handler) *frameHandler {
	outputs := make([]slog.Handler, len(h.outputs))
	for i, o := range h.outputs {
		outputs[i] = fn(o)
	}
	return &frameHandler{outputs: outputs, source: h.source}
}
