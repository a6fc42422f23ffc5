// Package tokens owns the OAuth token lifecycle: the persisted token record,
// the single-file JSON store, and the manager that decides when a stored
// access token is still usable and refreshes it when it is not.
//
// The store holds at most one record. An absent file means "not logged in";
// a record is never deleted except by an explicit logout.
package tokens
