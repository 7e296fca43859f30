package service

import "time"

// Clock abstracts time retrieval so business logic is deterministic in tests.
// Token expiry and activity timestamps both depend on it.
type Clock interface {
	Now() time.Time
}

// RealClock returns the actual current time.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }
