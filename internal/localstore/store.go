// Copyright (c) 2026 Meridia Health. All rights reserved.

/*
Package localstore provides the keyed local persistence layer shared by the
client-side stores.

It is the Go analog of the browser's local storage: a flat namespace of
string keys holding small opaque values. Two implementations exist:

  - File: One file per key under a state directory (durable across runs).
  - Memory: A map (tests and throwaway sessions).

Key scheme (shared with the web client):

	token                        → session credential
	user_preferences_{identity}  → full preference document JSON
*/
package localstore

// Store is a flat key-value namespace with last-write-wins semantics.
//
// # Concurrency
//
// Implementations must be safe for concurrent use; the client stores call
// them from mutation paths and from the sync worker.
type Store interface {
	/*
		Get retrieves the value stored under key.

		Returns:
		  - []byte: The stored value (nil when absent)
		  - bool: Whether the key was present
		  - error: Storage failures (absence is not an error)
	*/
	Get(key string) ([]byte, bool, error)

	/*
		Set stores value under key, replacing any previous value.

		Returns:
		  - error: Storage failures (quota, permissions)
	*/
	Set(key string, value []byte) error

	/*
		Delete removes key. Deleting an absent key is a no-op.

		Returns:
		  - error: Storage failures
	*/
	Delete(key string) error
}
