// Package store holds the client-side working set for one resource kind.
//
// A Store keeps the server-ordered collection plus two pieces of transient
// UI state: the recently-updated marker and a success/error banner. Both are
// cleared by timers the store owns, so closing the store cancels them and no
// callback ever fires against a discarded store.
//
// Loads are ticketed. Only the most recently issued ticket may commit, which
// gives last-response-wins display semantics without cancelling the
// in-flight request at the transport layer.
package store
