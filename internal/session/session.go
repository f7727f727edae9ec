// Package session ties the user-facing triggers to dataset loading, analysis, plotting
// and the action log.
package session

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/KaramelBytes/tabviz/internal/actionlog"
	"github.com/KaramelBytes/tabviz/internal/analysis"
	"github.com/KaramelBytes/tabviz/internal/plot"
)

// Session holds the current dataset snapshot and the action log. Load replaces the
// snapshot atomically; every other operation reads it once and works on that snapshot.
type Session struct {
	mu       sync.Mutex // serializes loads
	current  atomic.Pointer[analysis.Dataset]
	log      *actionlog.Log
	logger   *zap.SugaredLogger
	source   analysis.Source
	opts     analysis.Options
	renderer plot.Renderer
}

// Option configures a Session.
type Option func(*Session)

func WithSource(src analysis.Source) Option { return func(s *Session) { s.source = src } }
func WithOptions(o analysis.Options) Option { return func(s *Session) { s.opts = o } }
func WithRenderer(r plot.Renderer) Option { return func(s *Session) { s.renderer = r } }
func WithLogger(l *zap.SugaredLogger) Option { return func(s *Session) { s.logger = l } }
func WithActionLog(l *actionlog.Log) Option { return func(s *Session) { s.log = l } }

// New returns a session with no dataset. Defaults: OS files, default parse options,
// PNG output in the working directory, a silent logger.
func New(opts ...Option) *Session {
	s := &Session{
		log:      actionlog.New(),
		logger:   zap.NewNop().Sugar(),
		source:   analysis.NewFileSource(),
		opts:     analysis.DefaultOptions(),
		renderer: plot.NewPNGRenderer("", 0, 0),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Dataset returns the current snapshot, or nil before the first successful load.
func (s *Session) Dataset() *analysis.Dataset { return s.current.Load() }

// Log returns the action log.
func (s *Session) Log() *actionlog.Log { return s.log }

// NumericColumns lists the numeric columns of the current snapshot.
func (s *Session) NumericColumns() []string { return analysis.Classify(s.current.Load()) }

// Load parses path and, on success, replaces the current dataset. A failed load keeps the
// previous dataset. Either way exactly one log entry is recorded.
func (s *Session) Load(path string) (*analysis.Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ds, err := analysis.Load(s.source, path, s.opts)
	if err != nil {
		s.log.Appendf("Failed to load %s: %v", path, cause(err))
		s.logger.Warnw("load failed", "path", path, "error", err)
		return nil, err
	}
	s.current.Store(ds)
	s.log.Appendf("Loaded %s: %d rows, %d columns", path, ds.Rows(), ds.NumCols())
	s.logger.Infow("dataset loaded", "path", path, "dataset_id", ds.ID, "rows", ds.Rows(), "cols", ds.NumCols(),
		"numeric", len(ds.NumericColumns()))
	return ds, nil
}

// RefreshStatistics summarizes the current dataset.
func (s *Session) RefreshStatistics() (*analysis.StatsReport, error) {
	ds := s.current.Load()
	rep, err := analysis.Summarize(ds)
	if err != nil {
		return nil, err
	}
	s.log.Append("Displayed data statistics")
	s.logger.Debugw("statistics computed", "dataset_id", ds.ID, "rows", rep.Rows, "cols", rep.Cols)
	return rep, nil
}

// Correlate computes the correlation matrix of the current dataset. Refusals leave the log
// untouched.
func (s *Session) Correlate() (*analysis.CorrMatrix, error) {
	ds := s.current.Load()
	m, err := analysis.Correlate(ds)
	if err != nil {
		return nil, err
	}
	s.log.Append("Computed correlation matrix")
	s.logger.Debugw("correlation computed", "dataset_id", ds.ID, "columns", len(m.Columns))
	return m, nil
}

// PlotCorrelation renders the pairwise scatter matrix and returns the output path.
func (s *Session) PlotCorrelation() (string, error) {
	p, err := plot.Scatter(s.current.Load())
	if err != nil {
		return "", err
	}
	path, err := s.renderer.RenderScatter(p)
	return s.rendered("correlation plot", "Built correlation plot of numeric columns", path, err)
}

// PlotHeatmap renders the correlation heatmap and returns the output path.
func (s *Session) PlotHeatmap() (string, error) {
	p, err := plot.Heatmap(s.current.Load())
	if err != nil {
		return "", err
	}
	path, err := s.renderer.RenderHeatmap(p)
	return s.rendered("correlation heatmap", "Built correlation heatmap", path, err)
}

// PlotLine renders column as a line chart over the row index and returns the output path.
func (s *Session) PlotLine(column string) (string, error) {
	p, err := plot.Line(s.current.Load(), column)
	if err != nil {
		return "", err
	}
	path, err := s.renderer.RenderLine(p)
	return s.rendered("line chart", "Built line chart for column: "+column, path, err)
}

func (s *Session) rendered(kind, msg, path string, err error) (string, error) {
	if err != nil {
		s.log.Appendf("Failed to render %s: %v", kind, err)
		s.logger.Errorw("render failed", "kind", kind, "error", err)
		return "", fmt.Errorf("render %s: %w", kind, err)
	}
	s.log.Append(msg)
	s.logger.Infow("plot written", "kind", kind, "path", path)
	return path, nil
}

// ClearLog empties the action log; the log then holds only the clear notice.
func (s *Session) ClearLog() {
	s.log.Clear()
	s.logger.Debug("action log cleared")
}

// cause strips the LoadError wrapper so log lines do not repeat the path.
func cause(err error) error {
	var le *analysis.LoadError
	if errors.As(err, &le) && le.Err != nil {
		return le.Err
	}
	return err
}
