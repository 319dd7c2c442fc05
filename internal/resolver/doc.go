// Package resolver turns compiler node-ID cross references into live object
// references for one analysis session.
//
// Construction and resolution are two separate phases:
//
//  1. Construction: every file of a compilation unit is built top-down.
//     Each node registers its ID (RegisterNode). A node that refers to
//     another node by ID does not look it up; it queues a post-process
//     callback instead, because the target may live in a file that has not
//     been built yet.
//  2. Resolution: once every file is built, RunPostProcess drains the queue in
//     registration order. Callbacks call Resolve and may register destroy
//     callbacks describing how to undo what they did to other files' nodes.
//
// Invalidate(file) replays the destroy callbacks of that file and forgets its
// bindings, so rebuilding the file leaves every other file's state exactly as
// if the file had never been built before.
//
// Errors (diag.CodeDuplicateID, diag.CodeDanglingReference and whatever the
// callbacks return) are fatal for the session.
package resolver
