package canvas2d

import (
	"log/slog"
	"runtime"
)

// Default texture memory budgets.
const (
	DesktopMemoryBudget = 256 << 20
	MobileMemoryBudget  = 64 << 20

	// DefaultGlyphRunCache is the number of rasterized text runs kept.
	DefaultGlyphRunCache = 256
)

// Option configures a Manager.
//
// Example:
//
//	mgr, err := canvas2d.NewManager(dev,
//		canvas2d.WithMemoryBudget(32<<20),
//		canvas2d.WithLogger(slog.Default()),
//	)
type Option func(*options)

type options struct {
	memoryBudget  int64
	batchCapacity int
	logger        *slog.Logger
	text          TextRasterizer
	glyphRuns     int
	debug         bool
}

func defaultOptions() options {
	return options{
		memoryBudget:  defaultMemoryBudget(runtime.GOOS),
		batchCapacity: DefaultBatchCapacity,
		glyphRuns:     DefaultGlyphRunCache,
	}
}

// defaultMemoryBudget picks the texture budget for the platform. Mobile GPUs
// share memory with the system and get a smaller budget.
func defaultMemoryBudget(goos string) int64 {
	switch goos {
	case "android", "ios":
		return MobileMemoryBudget
	default:
		return DesktopMemoryBudget
	}
}

// WithMemoryBudget sets the texture byte budget. Values <= 0 keep the
// platform default.
func WithMemoryBudget(bytes int64) Option {
	return func(o *options) {
		if bytes > 0 {
			o.memoryBudget = bytes
		}
	}
}

// WithBatchCapacity sets how many quads are queued before a forced flush.
// NewManager rejects values outside 1..MaxBatchCapacity.
func WithBatchCapacity(quads int) Option {
	return func(o *options) {
		o.batchCapacity = quads
	}
}

// WithLogger sets the logger. By default the Manager logs nothing.
//
// Levels used:
//   - [slog.LevelDebug]: evictions, target switches, per-frame stats
//   - [slog.LevelInfo]: context loss and restore
//   - [slog.LevelWarn]: recoverable misuse such as drawing the screen
//   - [slog.LevelError]: shader compiler diagnostics
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithTextRasterizer sets the collaborator that turns text into glyph-run
// images. Without one, FillText and StrokeText draw nothing and MeasureText
// returns zero metrics.
func WithTextRasterizer(r TextRasterizer) Option {
	return func(o *options) {
		o.text = r
	}
}

// WithGlyphRunCache sets how many rasterized text runs are kept.
func WithGlyphRunCache(entries int) Option {
	return func(o *options) {
		if entries > 0 {
			o.glyphRuns = entries
		}
	}
}

// WithDebug logs FrameStats at debug level on every Present.
func WithDebug(enabled bool) Option {
	return func(o *options) {
		o.debug = enabled
	}
}
