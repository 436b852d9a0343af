package audit

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

const (
	DefaultDelay = 2 * time.Second

	MinScore = 65
	MaxScore = 94
)

// Auditor produces a simulated site health score after a fixed delay.
type Auditor struct {
	delay time.Duration

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewAuditor(delay time.Duration) *Auditor {
	return NewAuditorWithSource(delay, rand.NewSource(time.Now().UnixNano()))
}

func NewAuditorWithSource(delay time.Duration, src rand.Source) *Auditor {
	if delay < 0 {
		delay = 0
	}
	return &Auditor{delay: delay, rnd: rand.New(src)}
}

// Run waits for the audit delay and returns a score in [MinScore, MaxScore].
// An empty url is a no-op and reports ok=false immediately, as does a
// context cancelled before the delay elapses.
func (a *Auditor) Run(ctx context.Context, url string) (score int, ok bool) {
	if url == "" {
		return 0, false
	}

	timer := time.NewTimer(a.delay)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
		return 0, false
	}

	return a.score(), true
}

func (a *Auditor) score() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.rnd.Intn(MaxScore-MinScore+1) + MinScore
}
