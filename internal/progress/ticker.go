package progress

import (
	"sync"
	"time"

	"k8s.io/utils/clock"
)

// Interval is how often the elapsed time is recomputed.
const Interval = time.Second

// Tick is one interval event, tagged with the tracker generation it was
// started for.
type Tick struct {
	Gen int
	At  time.Time
}

// Ticker delivers Ticks on a channel until Stop. Once Stop returns no
// further Tick is delivered and the channel is closed, even if the
// underlying clock keeps firing.
type Ticker struct {
	clock    clock.WithTicker
	interval time.Duration

	mu   sync.Mutex
	out  chan Tick
	stop chan struct{}
	done chan struct{}
}

func NewTicker(c clock.WithTicker, interval time.Duration) *Ticker {
	if c == nil {
		c = clock.RealClock{}
	}
	if interval <= 0 {
		interval = Interval
	}
	return &Ticker{clock: c, interval: interval}
}

// Start begins ticking for gen, replacing any running interval.
func (t *Ticker) Start(gen int) <-chan Tick {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()

	src := t.clock.NewTicker(t.interval)
	out := make(chan Tick)
	stop := make(chan struct{})
	done := make(chan struct{})
	t.out, t.stop, t.done = out, stop, done

	go func() {
		defer close(done)
		defer src.Stop()
		for {
			select {
			case <-stop:
				return
			case at := <-src.C():
				select {
				case out <- Tick{Gen: gen, At: at}:
				case <-stop:
					return
				}
			}
		}
	}()
	return out
}

// Stop ends the current interval. It is safe to call when idle.
func (t *Ticker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
}

func (t *Ticker) stopLocked() {
	if t.stop == nil {
		return
	}
	close(t.stop)
	<-t.done
	close(t.out)
	t.out, t.stop, t.done = nil, nil, nil
}

// C is the channel of the current interval, nil when stopped.
func (t *Ticker) C() <-chan Tick {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.out
}

func (t *Ticker) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stop != nil
}
