// Package live runs interactive re-scoring over a fixed precompute.
//
// Weight edits are collapsed with a debounce timer so a burst of edits costs
// one ApplyWeights call. Peer groups and normalization are never rebuilt here.
package live

import (
	"sync"
	"time"

	"github.com/huangsam/peerscore/core/algo"
	"github.com/huangsam/peerscore/schema"
	"go.uber.org/zap"
)

// Weights are the live inputs of phase 2.
type Weights struct {
	Metric schema.ScoringConfigs
	Peer   schema.PeerGroupWeights
}

func (w Weights) clone() Weights {
	return Weights{Metric: w.Metric.Clone(), Peer: w.Peer}
}

// Update is one applied edit.
type Update struct {
	Generation uint64
	Weights    Weights
	Results    []schema.ScoringResult
	Duration   time.Duration
}

// Session applies weight edits against one precompute.
type Session struct {
	engine  *algo.Engine
	pre     schema.Precomputed
	delay   time.Duration
	deliver func(Update)
	logger  *zap.Logger

	mu         sync.Mutex
	timer      *time.Timer
	desired    Weights
	generation uint64 // newest scheduled edit
	pending    bool
	closed     bool

	applyMu   sync.Mutex // orders apply and deliver
	delivered uint64
}

// NewSession returns a session starting from initial. deliver is called from
// the timer goroutine, or from Flush, once per applied edit.
func NewSession(engine *algo.Engine, pre schema.Precomputed, initial Weights, delay time.Duration, deliver func(Update)) *Session {
	return &Session{
		engine:  engine,
		pre:     pre,
		delay:   delay,
		deliver: deliver,
		logger:  zap.L().Named("live"),
		desired: initial.clone(),
	}
}

// Weights returns a copy of the newest weights, applied or not.
func (s *Session) Weights() Weights {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.desired.clone()
}

// SetPeerWeights schedules a peer-group weight change and returns its generation.
func (s *Session) SetPeerWeights(pw schema.PeerGroupWeights) uint64 {
	return s.edit(func(w *Weights) { w.Peer = pw })
}

// SetMetricWeight schedules a single metric weight change and returns its generation.
func (s *Session) SetMetricWeight(status schema.CompanyStatus, theme, key string, weight float64) uint64 {
	return s.edit(func(w *Weights) {
		if w.Metric == nil {
			w.Metric = schema.ScoringConfigs{}
		}
		w.Metric.Set(status, theme, key, weight)
	})
}

// edit mutates the desired weights and restarts the debounce timer.
// It returns 0 once the session is closed.
func (s *Session) edit(fn func(*Weights)) uint64 {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return 0
	}
	fn(&s.desired)
	s.generation++
	s.pending = true
	gen := s.generation

	if s.timer != nil {
		s.timer.Stop()
	}
	if s.delay <= 0 {
		s.timer = nil
		s.mu.Unlock()
		s.fire(gen)
		return gen
	}
	s.timer = time.AfterFunc(s.delay, func() { s.fire(gen) })
	s.mu.Unlock()
	return gen
}

// fire applies gen if it is still the newest pending edit.
func (s *Session) fire(gen uint64) {
	s.mu.Lock()
	if s.closed || !s.pending || gen != s.generation {
		s.mu.Unlock()
		s.logger.Debug("Dropping superseded edit", zap.Uint64("generation", gen))
		return
	}
	s.pending = false
	w := s.desired.clone()
	s.mu.Unlock()

	s.apply(gen, w)
}

// apply runs phase 2 and delivers the result unless a newer one was delivered.
func (s *Session) apply(gen uint64, w Weights) (Update, bool) {
	s.applyMu.Lock()
	defer s.applyMu.Unlock()

	if gen <= s.delivered {
		return Update{}, false
	}
	start := time.Now()
	results := s.engine.ApplyWeights(s.pre, w.Metric, w.Peer)
	u := Update{Generation: gen, Weights: w, Results: results, Duration: time.Since(start)}
	s.delivered = gen
	if s.deliver != nil {
		s.deliver(u)
	}
	return u, true
}

// Flush applies the pending edit synchronously. It reports false when there
// was nothing pending or the session is closed.
func (s *Session) Flush() (Update, bool) {
	s.mu.Lock()
	if s.closed || !s.pending {
		s.mu.Unlock()
		return Update{}, false
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.pending = false
	gen := s.generation
	w := s.desired.clone()
	s.mu.Unlock()

	return s.apply(gen, w)
}

// Score applies the newest weights immediately without touching the pending state.
func (s *Session) Score() []schema.ScoringResult {
	w := s.Weights()
	return s.engine.ApplyWeights(s.pre, w.Metric, w.Peer)
}

// Close stops the timer and drops any pending edit. Later edits are ignored.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.pending = false
	s.closed = true
}
