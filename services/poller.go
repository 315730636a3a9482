package services

import (
	"sync"
	"time"
)

const DefaultPollInterval = 5 * time.Second

// TickerFunc creates a ticker and returns its channel and stop function.
type TickerFunc func(d time.Duration) (<-chan time.Time, func())

func realTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

// Poller runs fn every interval. At most one loop runs at a time.
type Poller struct {
	interval  time.Duration
	newTicker TickerFunc

	mu     sync.Mutex
	stop   chan struct{}
	done   chan struct{}
	starts int
}

func NewPoller(interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{interval: interval, newTicker: realTicker}
}

// WithTicker replaces the ticker factory; used by tests.
func (p *Poller) WithTicker(f TickerFunc) *Poller {
	p.newTicker = f
	return p
}

// Start launches the poll loop. It is a no-op returning false if a loop is
// already running.
func (p *Poller) Start(fn func()) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stop != nil {
		return false
	}
	p.starts++
	stop := make(chan struct{})
	done := make(chan struct{})
	p.stop, p.done = stop, done

	ticks, stopTicker := p.newTicker(p.interval)
	go func() {
		defer close(done)
		defer stopTicker()
		for {
			select {
			case <-stop:
				return
			case <-ticks:
				fn()
			}
		}
	}()
	return true
}

// Stop cancels the running loop and waits for it to exit.
func (p *Poller) Stop() {
	p.mu.Lock()
	stop, done := p.stop, p.done
	p.stop, p.done = nil, nil
	p.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	<-done
}

func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stop != nil
}

// Starts reports how many loops have actually been launched.
func (p *Poller) Starts() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.starts
}

func (p *Poller) Interval() time.Duration {
	return p.interval
}
