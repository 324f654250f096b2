package model

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadBalancerRoundRobin(t *testing.T) {
	cfg := &Config{LoadBalancing: RoundRobin, URL: []string{"u0", "u1", "u2"}, AuthToken: []string{"a0", "a1", "a2"}}
	lb := newLoadBalancer(cfg, 1)

	for i := 0; i < 9; i++ {
		p, err := lb.Acquire()
		require.NoError(t, err)
		assert.Equal(t, cfg.URL[i%3], p.URL)
		assert.Equal(t, cfg.AuthToken[i%3], p.AuthToken)
	}
}

func TestLoadBalancerSingleURL(t *testing.T) {
	cfg := &Config{LoadBalancing: LeastRequests, URL: []string{"only"}, AuthToken: []string{"tok"}}
	lb := newLoadBalancer(cfg, 1)
	p, err := lb.Acquire()
	require.NoError(t, err)
	assert.Equal(t, "only", p.URL)
	assert.Equal(t, "tok", p.AuthToken)
}

func TestLoadBalancerEmptyURLIsConfigError(t *testing.T) {
	cfg := &Config{LoadBalancing: LeastRequests}
	lb := newLoadBalancer(cfg, 1)
	_, err := lb.Acquire()
	require.Error(t, err)
}

// TestLoadBalancerLeastRequestsFairness verifies spec §8 invariant 4: for N
// URLs and R concurrent in-flight requests under least_requests, at any
// instant max(per-URL count) - min(per-URL count) <= ceil(R/N).
func TestLoadBalancerLeastRequestsFairness(t *testing.T) {
	urls := []string{"u0", "u1", "u2", "u3"}
	cfg := &Config{LoadBalancing: LeastRequests, URL: urls}
	lb := newLoadBalancer(cfg, 7)

	const concurrency = 17
	acquired := make([]string, concurrency)
	var wg sync.WaitGroup
	var mu sync.Mutex
	wg.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		go func(i int) {
			defer wg.Done()
			p, err := lb.Acquire()
			require.NoError(t, err)
			mu.Lock()
			acquired[i] = p.URL
			mu.Unlock()
		}(i)
	}
	wg.Wait()

	counts := make(map[string]int)
	for _, u := range acquired {
		counts[u]++
	}
	min, max := concurrency, 0
	for _, u := range urls {
		c := counts[u]
		if c < min {
			min = c
		}
		if c > max {
			max = c
		}
	}
	ceil := (concurrency + len(urls) - 1) / len(urls)
	assert.LessOrEqual(t, max-min, ceil)
}
