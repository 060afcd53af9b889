package cache

import "time"

// Clock supplies the current time. Eviction is asserted against an injected
// clock in tests instead of real sleeps.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the wall clock used in production.
var SystemClock Clock = systemClock{}
