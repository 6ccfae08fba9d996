// Package api is the reference rentals HTTP server. It mounts the
// apartment, contract and auth routes on gin over a sqlite.Backend and runs
// the nightly contract expiry job.
//
// Reads are open; every mutating route requires a bearer token issued by
// POST /auth/login. Errors are returned as {"message": "..."} with the
// status codes the console expects: 400 for validation, 401 for missing or
// expired tokens, 404 for unknown ids and 409 for rule conflicts.
package api
