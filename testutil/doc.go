// Package testutil provides shared test helpers, fixtures, and mocks for
// the model client, graph runtime, and batch orchestrator packages.
package testutil
