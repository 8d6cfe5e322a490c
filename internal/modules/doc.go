// Package modules is the asynchronous module-definition and dependency
// resolution runtime.
//
// Host code registers declarations with Define and asks for their exports
// with Require. Resolution never starts synchronously: the first Require of a
// tick schedules one resolution wave on the Runtime's scheduler, and every
// request queued before that wave runs is processed in FIFO order. This lets
// callers define a module after requiring it, as long as both happen before
// the scheduler runs.
//
// # Declarations
//
// Each Define creates a new declaration for a name. The previous declaration
// is kept as a link. With multiple declarations allowed (the default) the
// previous declaration becomes an implicit last dependency of the new one, so
// the newer factory receives the older exports and can decorate them. With
// multiple declarations disallowed, resolving such a module fails with
// ErrMultipleDeclarations.
//
// # States
//
// A declaration moves NOT_RESOLVED -> IN_RESOLVING -> RESOLVED. A failed
// resolution resets it to NOT_RESOLVED so that a later Require can retry once
// the cause (for example a missing module) is fixed.
//
// # Concurrency
//
// A Runtime is not safe for concurrent use. All calls, including factories
// and callbacks, must happen on the goroutine that drives its scheduler.
package modules
