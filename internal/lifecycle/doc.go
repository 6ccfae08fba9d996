// Package lifecycle implements the apartment and contract workflows of the
// console: it gates each mutation on the session, validates input, calls the
// transport, and keeps the apartment and contract stores consistent with the
// server afterwards.
//
// Contract mutations always reload both stores, since a contract changes the
// derived occupancy of the apartment it references. The apartment status
// toggle and the removal of a contract without an apartment are the only
// operations that patch a store locally.
package lifecycle
