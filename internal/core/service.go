package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/JonMunkholm/crossfilter/internal/facet"
	"github.com/JonMunkholm/crossfilter/internal/ingest"
	"github.com/JonMunkholm/crossfilter/internal/logging"
)

// ErrSessionNotFound is returned for unknown or expired session IDs.
var ErrSessionNotFound = errors.New("session not found")

// ErrLoadInProgress is returned when a session is already ingesting a file.
var ErrLoadInProgress = errors.New("a load is already running for this session")

// ErrSampleTooLarge is returned when a sample regeneration asks for more
// records than the service allows.
var ErrSampleTooLarge = errors.New("sample size exceeds the limit")

// DefaultLoadTimeout bounds a single ingestion when Options.LoadTimeout is unset.
const DefaultLoadTimeout = 5 * time.Minute

// DefaultMaxSampleSize caps sample regeneration when Options.MaxSampleSize is unset.
const DefaultMaxSampleSize = 1_000_000

// Options configures a Service. Zero fields take defaults.
type Options struct {
	Schema         facet.Schema
	SampleSize     int
	MaxSampleSize  int
	PageSize       int
	IndexThreshold int
	SessionTTL     time.Duration
	LoadTimeout    time.Duration
}

func (o Options) withDefaults() Options {
	if o.Schema.Len() == 0 {
		o.Schema = facet.DefaultSchema()
	}
	if o.SampleSize <= 0 {
		o.SampleSize = ingest.DefaultSampleSize
	}
	if o.MaxSampleSize <= 0 {
		o.MaxSampleSize = DefaultMaxSampleSize
	}
	if o.MaxSampleSize < o.SampleSize {
		o.MaxSampleSize = o.SampleSize
	}
	if o.PageSize <= 0 {
		o.PageSize = DefaultPageSize
	}
	if o.SessionTTL <= 0 {
		o.SessionTTL = time.Hour
	}
	if o.LoadTimeout <= 0 {
		o.LoadTimeout = DefaultLoadTimeout
	}
	return o
}

// Service keeps the live sessions and routes ingestion into them.
type Service struct {
	opts    Options
	limiter *LoadLimiter
	metrics *Metrics

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewService creates a Service. Metrics register with reg; nil keeps them private.
func NewService(opts Options, limiter *LoadLimiter, reg prometheus.Registerer) *Service {
	if limiter == nil {
		limiter = NewLoadLimiter(DefaultMaxConcurrentLoads, DefaultMaxWaitTime)
	}
	return &Service{
		opts:     opts.withDefaults(),
		limiter:  limiter,
		metrics:  NewMetrics(reg),
		sessions: make(map[string]*Session),
	}
}

// Schema returns the schema new datasets are parsed with.
func (s *Service) Schema() facet.Schema {
	return s.opts.Schema
}

// PageSize returns the configured rows per page.
func (s *Service) PageSize() int {
	return s.opts.PageSize
}

// LimiterStatus reports load slot usage.
func (s *Service) LimiterStatus() LoadLimiterStatus {
	return s.limiter.Status()
}

// NewSession creates a session seeded with the sample dataset.
func (s *Service) NewSession(ctx context.Context) *Session {
	id := uuid.New().String()
	ds := ingest.GenerateSample(s.opts.SampleSize, s.opts.Schema)
	sess := NewSession(id, ds, "sample", s.opts.IndexThreshold, s.metrics)

	s.mu.Lock()
	s.sessions[id] = sess
	n := len(s.sessions)
	s.mu.Unlock()

	s.metrics.sessions.Set(float64(n))
	logging.FromContext(ctx).Info("session created", "session_id", id, "rows", ds.Len())
	return sess
}

// Session returns a live session and marks it as used.
func (s *Service) Session(id string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, ErrSessionNotFound)
	}
	sess.touch()
	return sess, nil
}

// SessionCount returns the number of live sessions.
func (s *Service) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// DeleteSession drops a session and its dataset.
func (s *Service) DeleteSession(ctx context.Context, id string) error {
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	n := len(s.sessions)
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("session %s: %w", id, ErrSessionNotFound)
	}
	s.metrics.sessions.Set(float64(n))
	logging.FromContext(ctx).Info("session deleted", "session_id", id)
	return nil
}

// Load parses r as the format implied by fileName and replaces the session's
// dataset with the result. size is the expected byte count of r, or 0 when
// unknown; it drives the progress reported in the session summary. On any
// error the session keeps its previous dataset and selection.
func (s *Service) Load(ctx context.Context, id, fileName string, r io.Reader, size int64) (*ingest.Report, error) {
	format, err := ingest.DetectFormat(fileName)
	if err != nil {
		return nil, err
	}

	sess, err := s.Session(id)
	if err != nil {
		return nil, err
	}
	if !sess.beginLoad() {
		return nil, ErrLoadInProgress
	}
	defer sess.endLoad()

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	loadCtx, cancel := context.WithTimeout(ctx, s.opts.LoadTimeout)
	defer cancel()

	counter := ingest.NewCountingReader(r, size)
	sess.trackProgress(counter)

	logger := logging.WithFields(ctx, "session_id", id, "file", fileName, "format", string(format))
	logger.Info("load started", callerFields(ctx)...)

	started := time.Now()
	ds, rep, err := ingest.Parse(loadCtx, format, counter, s.opts.Schema)
	s.metrics.observeLoad(string(format), started, rep, err)
	if err != nil {
		logger.Warn("load failed", "error", err)
		return nil, fmt.Errorf("load %s: %w", fileName, err)
	}

	sess.Replace(ds, fileName, rep)
	logger.Info("load completed",
		"rows", rep.Rows,
		"skipped", len(rep.Skipped),
		"coerced", rep.Coerced,
		"duration_ms", time.Since(started).Milliseconds(),
	)
	return rep, nil
}

// LoadSample replaces the session's dataset with n generated records.
// n <= 0 uses the configured sample size; n above MaxSampleSize is rejected.
// Generation holds a load slot like a file load.
func (s *Service) LoadSample(ctx context.Context, id string, n int) error {
	if n <= 0 {
		n = s.opts.SampleSize
	}
	if n > s.opts.MaxSampleSize {
		return fmt.Errorf("%w: %d records requested, at most %d allowed", ErrSampleTooLarge, n, s.opts.MaxSampleSize)
	}

	sess, err := s.Session(id)
	if err != nil {
		return err
	}
	if !sess.beginLoad() {
		return ErrLoadInProgress
	}
	defer sess.endLoad()

	if err := s.limiter.Acquire(ctx); err != nil {
		return err
	}
	defer s.limiter.Release()

	sess.Replace(ingest.GenerateSample(n, s.opts.Schema), "sample", nil)
	logging.FromContext(ctx).Info("sample loaded", "session_id", id, "rows", n)
	return nil
}

// Drain waits for running loads to finish.
func (s *Service) Drain(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}
