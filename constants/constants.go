// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: constants.go - Harness Defaults & Spin Tunables
//
// Purpose:
//   - Default sizes for the ringbench scenario (capacity, item count)
//   - Core assignment for the pinned producer and consumer
//   - Spin policy tunables shared by the pinned loops
//   - Default endpoints for metrics and the run history store
//
// ⚠️ No runtime logic here; all values must be compile-time resolvable
// ─────────────────────────────────────────────────────────────────────────────

package constants

import "time"

// ───────────────────────────── Scenario sizing ──────────────────────────────

const (
	// DefaultCapacity is the queue capacity used by ringbench.
	DefaultCapacity = 4096

	// DefaultItems is how many items one run pushes through the queue.
	DefaultItems = 4096 * 16

	// DefaultRuns repeats the scenario this many times per invocation.
	DefaultRuns = 1
)

// ───────────────────────────── Core placement ───────────────────────────────

const (
	ProducerCore = 0
	ConsumerCore = 1
)

// ───────────────────────────── Spin policy ──────────────────────────────────

const (
	// SpinBudget is the number of empty polls before a cold loop relaxes
	// harder.
	SpinBudget = 256

	// HotWindow keeps a consumer in tight spin after its last delivery.
	HotWindow = 15 * time.Second

	// Cooldown clears the global hot flag after this much producer silence.
	Cooldown = 1 * time.Second

	// StallTimeout aborts a run whose consumer stops making progress.
	StallTimeout = 30 * time.Second
)

// ───────────────────────────── Endpoints ────────────────────────────────────

const (
	// MetricsAddr is where the prometheus handler listens when enabled.
	MetricsAddr = "127.0.0.1:9464"

	// ReportDB is the default sqlite file for run history.
	ReportDB = "ringbench.db"

	// EnvPrefix scopes environment overrides (RINGBENCH_ITEMS, ...).
	EnvPrefix = "RINGBENCH"
)
