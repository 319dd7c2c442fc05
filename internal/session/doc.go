// Package session ties one compilation unit's IR together.
//
// A Session owns exactly one resolver. Files are constructed in parallel,
// then the resolver's post-processing runs once every file is in place.
// Any error from construction, post-processing or invalidation is fatal:
// the session records it and refuses further work, since the reverse
// indexes may be half updated.
//
// Thread-safety: all exported methods are safe for concurrent use. They are
// serialized internally; parallelism happens only inside Build and Rebuild.
package session
