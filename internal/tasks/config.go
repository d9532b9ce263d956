package tasks

import "time"

// Config tunes the background queue.
type Config struct {
	Workers         int           // concurrent workers, at least 1
	ReleaseAfter    time.Duration // a claimed task not finished by then is retried
	CleanupInterval time.Duration // how often finished tasks are purged
}

// withDefaults fills the zero fields the way an unset environment would.
func (c Config) withDefaults() Config {
	if c.Workers <= 0 {
		c.Workers = 1
	}
	if c.ReleaseAfter <= 0 {
		c.ReleaseAfter = 15 * time.Minute
	}
	if c.CleanupInterval <= 0 {
		c.CleanupInterval = time.Hour
	}
	return c
}
