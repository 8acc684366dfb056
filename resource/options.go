package resource

import "time"

type settings struct {
	key      any
	interval time.Duration
}

// Option configures a Synchronizer at construction.
type Option func(*settings)

// WithKey sets the initial dependency key.
func WithKey(key any) Option {
	return func(s *settings) {
		s.key = key
	}
}

// WithInterval refreshes the value in the background every d. Zero disables polling.
func WithInterval(d time.Duration) Option {
	return func(s *settings) {
		if d < 0 {
			d = 0
		}
		s.interval = d
	}
}
