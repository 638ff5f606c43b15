package service

import (
	"sync"
	"time"
)

const DefaultNotifyCooldown = 100 * time.Millisecond

// Deduper suppresses a message identical to the last emitted one while the
// cooldown since that emission has not elapsed.
type Deduper struct {
	mu       sync.Mutex
	cooldown time.Duration
	now      func() time.Time
	last     string
	lastAt   time.Time
}

func NewDeduper(cooldown time.Duration, now func() time.Time) *Deduper {
	if now == nil {
		now = time.Now
	}
	return &Deduper{cooldown: cooldown, now: now}
}

// Allow reports whether message should be emitted and records it if so.
func (d *Deduper) Allow(message string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	t := d.now()
	if message == d.last && t.Sub(d.lastAt) < d.cooldown {
		return false
	}

	d.last = message
	d.lastAt = t
	return true
}
