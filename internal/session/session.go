// Package session keeps one report's design alive across reloads.
//
// A Session owns the displayed Design. Reload re-reads the report and, when
// its bytes changed, reconciles the freshly built tree into the displayed
// one so that node identities of unchanged subtrees survive. Parsed reports
// are cached by content hash and every stage is timed.
package session

import (
	"fmt"
	"path/filepath"
	"slices"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/yostat/yostat/internal/config"
	"github.com/yostat/yostat/internal/design"
	"github.com/yostat/yostat/internal/report"
)

// Session serializes loads and reloads of a single report.
type Session struct {
	mu       sync.Mutex
	path     string
	opts     design.Options
	log      log.FieldLogger
	current  *design.Design
	hash     string
	cache    *reportCache
	timing   *timingRecorder
	metrics  *stageMetrics
	debounce time.Duration
}

// Result describes one Reload.
type Result struct {
	// Unchanged is set when the report bytes were identical and nothing ran.
	Unchanged bool

	Events  []design.Event
	Summary design.Summary

	// CatalogChanged is set when the primitive columns differ from before.
	CatalogChanged bool
	Primitives     []string
}

// Open loads the report at path and builds its first design. A nil cfg
// means config.DefaultConfig().
func Open(path string, cfg *config.Config) (*Session, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve report path: %w", err)
	}

	size := 0
	if cfg.CacheEnabled() {
		size = cfg.Cache.Size
	}
	cache, err := newReportCache(size)
	if err != nil {
		return nil, err
	}

	logger := log.WithField("report", abs)
	s := &Session{
		path:     abs,
		opts:     design.Options{Top: cfg.Top, Logger: logger},
		log:      logger,
		cache:    cache,
		timing:   newTimingRecorder(time.Now(), cfg.TimingPath),
		metrics:  newStageMetrics(),
		debounce: time.Duration(cfg.Watch.DebounceMs) * time.Millisecond,
	}
	if err := s.timing.Err(); err != nil {
		logger.WithError(err).Warn("timing output disabled")
	}

	start := time.Now()
	d, hash, err := s.load()
	if err != nil {
		s.timing.Close()
		return nil, err
	}
	s.current = d
	s.hash = hash
	s.metrics.nodes.Update(int64(design.Len(d.Root)))
	s.timing.Record(StageTotal, s.path, "ok", start, time.Since(start))

	logger.WithFields(log.Fields{
		"top":        d.Top,
		"primitives": len(d.Primitives),
		"nodes":      design.Len(d.Root),
	}).Debug("design loaded")
	return s, nil
}

// Path is the absolute report path.
func (s *Session) Path() string {
	return s.path
}

// Design returns the displayed design. It must not be traversed while a
// Reload or Watch may run; use View for that.
func (s *Session) Design() *design.Design {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// View calls fn with the displayed design while holding the session lock.
func (s *Session) View(fn func(d *design.Design)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.current)
}

// Reload re-reads the report. On error the displayed design is left as it
// was; the error is a *report.ParseError.
func (s *Session) Reload() (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	s.metrics.reloads.Inc(1)

	var (
		data []byte
		hash string
	)
	err := s.timed(StageHash, func() error {
		var err error
		data, hash, err = readAndHash(s.path)
		return err
	})
	if err != nil {
		s.metrics.failures.Inc(1)
		return Result{}, &report.ParseError{Path: s.path, Err: err}
	}
	if hash == s.hash {
		s.metrics.unchanged.Inc(1)
		s.log.Debug("report unchanged")
		return Result{Unchanged: true, Primitives: slices.Clone(s.current.Primitives)}, nil
	}

	next, err := s.build(data, hash)
	if err != nil {
		s.metrics.failures.Inc(1)
		s.timing.Record(StageTotal, s.path, "error", start, time.Since(start))
		return Result{}, err
	}

	before := s.current.Primitives
	var events []design.Event
	_ = s.timed(StageReconcile, func() error {
		events = s.current.Reload(next)
		return nil
	})
	s.hash = hash

	result := Result{
		Events:         events,
		Summary:        design.Summarize(events),
		CatalogChanged: !slices.Equal(before, s.current.Primitives),
		Primitives:     slices.Clone(s.current.Primitives),
	}
	s.metrics.nodes.Update(int64(design.Len(s.current.Root)))
	s.timing.Record(StageTotal, s.path, "ok", start, time.Since(start))

	s.log.WithFields(log.Fields{
		"updated":         result.Summary.Updated,
		"added":           result.Summary.Added,
		"removed":         result.Summary.Removed,
		"catalog_changed": result.CatalogChanged,
	}).Debug("design reloaded")
	return result, nil
}

// Close releases the timing output. The session's design stays readable.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timing.Close()
}

func (s *Session) load() (*design.Design, string, error) {
	var (
		data []byte
		hash string
	)
	err := s.timed(StageHash, func() error {
		var err error
		data, hash, err = readAndHash(s.path)
		return err
	})
	if err != nil {
		return nil, "", &report.ParseError{Path: s.path, Err: err}
	}
	d, err := s.build(data, hash)
	if err != nil {
		return nil, "", err
	}
	return d, hash, nil
}

// build parses data, or takes the report from the cache, and builds a new
// design from it.
func (s *Session) build(data []byte, hash string) (*design.Design, error) {
	rep, ok := s.cache.Get(hash)
	if ok {
		s.metrics.cacheHits.Inc(1)
	} else {
		err := s.timed(StageParse, func() error {
			var err error
			rep, err = report.ParseBytes(data)
			return err
		})
		if err != nil {
			if pe, ok := err.(*report.ParseError); ok {
				pe.Path = s.path
			}
			return nil, err
		}
		s.cache.Put(hash, rep)
	}

	var d *design.Design
	_ = s.timed(StageBuild, func() error {
		d = design.New(rep, s.opts)
		return nil
	})
	return d, nil
}
