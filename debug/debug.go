// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: debug.go - cold-path diagnostics (zero-alloc formatting)
//
// Purpose:
//   - Reports the rare events around ring queues: double dispose, allocator
//     release failures, affinity errors, harness lifecycle.
//   - Writes straight to stderr; no fmt, no log prefixes, no interfaces.
//
// ⚠️ Never invoke from Enqueue/Dequeue or any spin loop.
// ─────────────────────────────────────────────────────────────────────────────

package debug

import "os"

// DropError prints "<prefix>: <err>", or just "<prefix>" when err is nil
// (used as a cheap trace tag).
//
//go:nosplit
//go:inline
//go:registerparams
func DropError(prefix string, err error) {
	if err != nil {
		write(prefix + ": " + err.Error() + "\n")
		return
	}
	write(prefix + "\n")
}

// DropMessage prints "<prefix>: <message>".
//
//go:nosplit
//go:inline
//go:registerparams
func DropMessage(prefix, message string) {
	write(prefix + ": " + message + "\n")
}

// write is swapped out by tests.
var write = func(msg string) {
	_, _ = os.Stderr.WriteString(msg)
}
