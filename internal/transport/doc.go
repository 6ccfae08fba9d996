// Package transport is the HTTP client for the rentals API. It implements
// the apartment and contract transports and the account endpoints, attaches
// the session's bearer credential, and turns failed responses into
// *types.RemoteError values carrying the server's message.
package transport
