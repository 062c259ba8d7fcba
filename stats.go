package canvas2d

import "log/slog"

// FrameStats holds per-frame draw metrics. The Manager accumulates them
// between calls to Present.
type FrameStats struct {
	DrawCalls       int // indexed draw calls issued
	Quads           int // quads submitted
	Flushes         int // non-empty flushes
	ProgramSwitches int // UseProgram calls
	Uploads         int // texture pixel uploads
	Evictions       int // textures evicted for budget
	ContextSwitches int // framebuffer target changes
	DroppedDraws    int // draws skipped while the device context was lost
}

// LogValue renders the stats as a structured log group.
func (s FrameStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("drawCalls", s.DrawCalls),
		slog.Int("quads", s.Quads),
		slog.Int("flushes", s.Flushes),
		slog.Int("programSwitches", s.ProgramSwitches),
		slog.Int("uploads", s.Uploads),
		slog.Int("evictions", s.Evictions),
		slog.Int("contextSwitches", s.ContextSwitches),
		slog.Int("droppedDraws", s.DroppedDraws),
	)
}
