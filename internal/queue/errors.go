package queue

import "errors"

var (
	// ErrNotRegistered means the user has no battletag on file.
	ErrNotRegistered = errors.New("user is not registered")

	// ErrNotQueued means the user asked to leave a queue they are not in.
	ErrNotQueued = errors.New("user is not in the queue")

	// ErrNotFound means the targeted user has no queue entry.
	ErrNotFound = errors.New("queue entry not found")
)
