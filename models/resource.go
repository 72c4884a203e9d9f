package models

import "time"

// Resource is implemented by every entity that a client-side store can
// manage. Stores key their in-memory collections by the resource ID.
type Resource interface {
	GetID() uint
}

// Timestamped is implemented by resources that carry an update timestamp,
// which the server uses for optimistic-concurrency conflict checks.
type Timestamped interface {
	Resource
	GetUpdatedAt() time.Time
}
