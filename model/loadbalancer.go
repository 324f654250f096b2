package model

import (
	"math/rand"
	"sync"

	"github.com/sygra-go/sygra/types"
)

// loadBalancer resolves the (URL, auth) pair for one logical call, per the
// configured strategy (spec §4.2 "Load balancing"; ported from
// custom_models.py's _get_model_params).
type loadBalancer struct {
	mu        sync.Mutex
	strategy  LoadBalancing
	urls      []string
	auth      []string
	callCount int64
	inFlight  map[string]int
	rng       *rand.Rand
}

func newLoadBalancer(cfg *Config, seed int64) *loadBalancer {
	lb := &loadBalancer{
		strategy: cfg.LoadBalancing,
		urls:     cfg.URL,
		auth:     cfg.AuthToken,
		inFlight: make(map[string]int, len(cfg.URL)),
		rng:      rand.New(rand.NewSource(seed)),
	}
	for _, u := range cfg.URL {
		lb.inFlight[u] = 0
	}
	return lb
}

// Acquire selects a URL/auth pair and marks it in-flight. The caller must
// call Release with the same URL once the call (success or final failure)
// completes.
func (lb *loadBalancer) Acquire() (types.ModelParams, error) {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	if len(lb.urls) == 0 {
		return types.ModelParams{}, types.NewError(types.ErrConfigInvalid, "model has no configured url")
	}
	if len(lb.urls) == 1 {
		lb.callCount++
		return lb.pairFor(0), nil
	}

	var idx int
	switch lb.strategy {
	case RoundRobin:
		idx = int(lb.callCount % int64(len(lb.urls)))
	case LeastRequests, "":
		idx = lb.pickLeastRequests()
	default:
		return types.ModelParams{}, types.NewError(types.ErrConfigInvalid, "unknown load_balancing strategy: "+string(lb.strategy))
	}
	lb.callCount++
	lb.inFlight[lb.urls[idx]]++
	return lb.pairFor(idx), nil
}

// Release decrements the in-flight counter for url. Safe to call even for
// single-URL / round_robin models where it is a no-op on bookkeeping that
// isn't read.
func (lb *loadBalancer) Release(url string) {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	if lb.inFlight[url] > 0 {
		lb.inFlight[url]--
	}
}

// pickLeastRequests finds the minimum in-flight count among all URLs and
// returns the index of a uniformly random URL among those tied at the
// minimum (spec §4.2, tested property §8 invariant 4).
func (lb *loadBalancer) pickLeastRequests() int {
	min := -1
	for _, u := range lb.urls {
		c := lb.inFlight[u]
		if min == -1 || c < min {
			min = c
		}
	}
	var tied []int
	for i, u := range lb.urls {
		if lb.inFlight[u] == min {
			tied = append(tied, i)
		}
	}
	return tied[lb.rng.Intn(len(tied))]
}

func (lb *loadBalancer) pairFor(idx int) types.ModelParams {
	params := types.ModelParams{URL: lb.urls[idx]}
	if len(lb.auth) == 1 {
		params.AuthToken = lb.auth[0]
	} else if idx < len(lb.auth) {
		params.AuthToken = lb.auth[idx]
	}
	return params
}

// CallCount returns the number of Acquire calls made so far (exposed for
// stats logging).
func (lb *loadBalancer) CallCount() int64 {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	return lb.callCount
}
