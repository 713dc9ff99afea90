package service

import "errors"

// Error kinds returned by Client. Check with errors.Is.
var (
	// ErrConfiguration means the client could not be built, e.g. the
	// credential is missing.
	ErrConfiguration = errors.New("configuration error")

	// ErrInvalidArgument means a required argument was empty.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound means a referenced local file does not exist.
	ErrNotFound = errors.New("not found")

	// ErrTransport wraps every failure of a remote round trip. The
	// underlying SDK error stays reachable through errors.As.
	ErrTransport = errors.New("transport error")

	// ErrProviderLogical marks an error reported by the provider inside an
	// otherwise successful response. It is logged and counted but never
	// returned: exhausting retries yields MaxRetriesReached instead.
	ErrProviderLogical = errors.New("provider reported an error")
)
