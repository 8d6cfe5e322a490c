// Package scheduler provides the "next tick" primitive the module runtime is
// built on.
//
// # Why Scheduler Exists
//
// The module runtime never resolves a require synchronously. Every require is
// queued and the resolution wave is deferred to the next tick, so a caller can
// finish a batch of define and require calls before any resolution begins.
// The scheduler is the one place where "later" is defined.
//
// # How It Works
//
// A Loop is a FIFO queue of tasks:
//  1. Schedule appends a task. It is safe from any goroutine.
//  2. RunPending drains the queue on the calling goroutine, including tasks
//     scheduled while draining, and returns every task error joined.
//  3. Run blocks and drains tasks as they arrive until the context ends.
//
// Tasks never run concurrently with each other, which is what lets the module
// runtime keep its registry without locks.
package scheduler
