package domain

import "context"

// FetcherPort is the contract the dataset service exposes to other modules
type FetcherPort interface {
	// Fetch triggers a download unless one ran already
	// started is true only when this call launched a new download
	Fetch(ctx context.Context) (state FetchState, started bool)

	// Status returns the current snapshot without side effects
	Status() FetchState

	// Cancel aborts an in-flight download, Conflict when none is running
	Cancel() error

	// RawPath is where the verified complete file lives
	RawPath() string

	// RawExists reports whether a verified complete file is on disk
	RawExists() bool
}
