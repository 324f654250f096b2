package model

import (
	"testing"

	"pgregory.net/rapid"
)

// TestLeastRequestsStaysBalancedAcrossRandomSequences generalizes spec §8
// invariant 4 over an arbitrary number of URLs and a random number of
// Acquire calls without an intervening Release (i.e. sustained
// concurrent load): the spread between the busiest and idlest URL never
// exceeds 1, since pickLeastRequests always resolves ties uniformly among
// the minimum.
func TestLeastRequestsStaysBalancedAcrossRandomSequences(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		numURLs := rapid.IntRange(1, 8).Draw(rt, "numURLs")
		numAcquires := rapid.IntRange(0, 200).Draw(rt, "numAcquires")

		urls := make([]string, numURLs)
		for i := range urls {
			urls[i] = rapid.StringMatching(`u[0-9]{1,3}`).Draw(rt, "url")
		}
		cfg := &Config{LoadBalancing: LeastRequests, URL: urls}
		lb := newLoadBalancer(cfg, rapid.Int64().Draw(rt, "seed"))

		for i := 0; i < numAcquires; i++ {
			if _, err := lb.Acquire(); err != nil {
				rt.Fatalf("unexpected Acquire error: %v", err)
			}
		}

		min, max := -1, 0
		for _, u := range urls {
			c := lb.inFlight[u]
			if min == -1 || c < min {
				min = c
			}
			if c > max {
				max = c
			}
		}
		if max-min > 1 {
			rt.Fatalf("in-flight spread %d exceeds 1 across %d urls after %d acquires", max-min, numURLs, numAcquires)
		}
	})
}
