package live

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/huangsam/peerscore/core/algo"
	"github.com/huangsam/peerscore/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func producer(i int) schema.Company {
	f := float64(i)
	return schema.Company{
		ID:     fmt.Sprintf("p%02d", i),
		Name:   fmt.Sprintf("Producer %d", i),
		Status: schema.ProducerStatus,
		Data: map[string]any{
			"financials": map[string]any{
				"market_cap_value":       (500 + f*100) * 1e6,
				"enterprise_value_value": (550 + f*90) * 1e6,
				"free_cash_flow":         (10 + f*3) * 1e6,
				"revenue_value":          (100 + f*5) * 1e6,
				"ebitda":                 (30 + f) * 1e6,
				"cash_value":             (20 + f*2) * 1e6,
			},
			"costs":             map[string]any{"aisc_last_year": 1000 + f*50},
			"production":        map[string]any{"current_production_total_aueq_koz": 100 + f*20},
			"mineral_estimates": map[string]any{"reserves_total_aueq_moz": 1 + f*0.5},
		},
	}
}

func newTestSession(t *testing.T, delay time.Duration) (*Session, chan Update, *algo.Engine, schema.Precomputed) {
	t.Helper()
	companies := make([]schema.Company, 0, 8)
	for i := range 8 {
		companies = append(companies, producer(i))
	}
	engine := algo.NewEngine(algo.WithWorkers(2))
	pre := engine.Precompute(companies, schema.GetDefaultScoringConfigs(), schema.GetDefaultRationales())
	require.False(t, pre.Empty())

	updates := make(chan Update, 32)
	s := NewSession(engine, pre, Weights{Peer: schema.DefaultPeerGroupWeights}, delay, func(u Update) {
		updates <- u
	})
	t.Cleanup(s.Close)
	return s, updates, engine, pre
}

func TestSessionDebouncesBurst(t *testing.T) {
	s, updates, engine, pre := newTestSession(t, 100*time.Millisecond)

	var last schema.PeerGroupWeights
	for i := range 10 {
		last = schema.PeerGroupWeights{Status: float64(10 * i), Valuation: 100 - float64(10*i)}
		s.SetPeerWeights(last)
	}

	select {
	case u := <-updates:
		assert.Equal(t, uint64(10), u.Generation)
		assert.Equal(t, last, u.Weights.Peer)
		assert.Equal(t, engine.ApplyWeights(pre, nil, last), u.Results)
	case <-time.After(2 * time.Second):
		t.Fatal("no update delivered")
	}

	time.Sleep(250 * time.Millisecond)
	assert.Empty(t, updates)
}

func TestSessionFlush(t *testing.T) {
	s, updates, _, _ := newTestSession(t, time.Hour)

	_, ok := s.Flush()
	assert.False(t, ok)

	gen := s.SetMetricWeight(schema.ProducerStatus, "operations", schema.KeyAISC, 0)
	u, ok := s.Flush()
	require.True(t, ok)
	assert.Equal(t, gen, u.Generation)
	for _, r := range u.Results {
		for _, b := range r.Breakdown {
			assert.NotEqual(t, schema.KeyAISC, b.Key)
		}
	}
	require.Len(t, updates, 1)

	_, ok = s.Flush()
	assert.False(t, ok)
}

func TestSessionClose(t *testing.T) {
	s, updates, _, _ := newTestSession(t, 20*time.Millisecond)

	s.SetPeerWeights(schema.PeerGroupWeights{Status: 100})
	s.Close()

	time.Sleep(80 * time.Millisecond)
	assert.Empty(t, updates)

	assert.Zero(t, s.SetPeerWeights(schema.PeerGroupWeights{Valuation: 100}))
	_, ok := s.Flush()
	assert.False(t, ok)
}

func TestSessionZeroDelayAppliesInline(t *testing.T) {
	s, updates, _, _ := newTestSession(t, 0)

	gen := s.SetPeerWeights(schema.PeerGroupWeights{Operational: 100})
	require.Len(t, updates, 1)
	u := <-updates
	assert.Equal(t, gen, u.Generation)
	assert.Equal(t, 100.0, u.Weights.Peer.Operational)
}

func TestSessionDeliversInGenerationOrder(t *testing.T) {
	s, _, _, _ := newTestSession(t, 0)

	var mu sync.Mutex
	var delivered []uint64
	s.deliver = func(u Update) {
		mu.Lock()
		delivered = append(delivered, u.Generation)
		mu.Unlock()
	}

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Go(func() {
			s.SetPeerWeights(schema.PeerGroupWeights{Status: float64(i)})
		})
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, delivered)
	for i := 1; i < len(delivered); i++ {
		assert.Greater(t, delivered[i], delivered[i-1])
	}
}

func TestSessionWeightsAreCopies(t *testing.T) {
	s, _, _, _ := newTestSession(t, time.Hour)
	s.SetMetricWeight(schema.ProducerStatus, "valuation", schema.KeyMarketCap, 7)

	w := s.Weights()
	w.Metric.Set(schema.ProducerStatus, "valuation", schema.KeyMarketCap, 99)

	got, ok := s.Weights().Metric.Lookup(schema.ProducerStatus, "valuation", schema.KeyMarketCap)
	require.True(t, ok)
	assert.Equal(t, 7.0, got)
	assert.Len(t, s.Score(), 8)
}
