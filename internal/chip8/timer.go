package chip8

import (
	"sync"
	"time"
)

// decayInterval is the real-time period between timer decrements (60 Hz).
const decayInterval = time.Second / 60

// Timer is one of the two countdown timers (delay, sound). Once set to a
// non-zero value it decays by one every 1/60 second until it reaches zero.
// A single long-lived goroutine performs the decay: it sleeps on a
// condition variable while the value is zero and is woken by the next
// non-zero write, so there is never more than one decayer per timer and
// writes during decay are observed without racing the decrement.
type Timer struct {
	mu     sync.Mutex
	cond   *sync.Cond
	value  uint8
	closed bool
}

// NewTimer returns a timer at zero and starts its decay goroutine.
func NewTimer() *Timer {
	t := &Timer{}
	t.cond = sync.NewCond(&t.mu)
	go t.decay()
	return t
}

// Read returns the current timer value.
func (t *Timer) Read() uint8 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.value
}

// Write sets the timer value. A non-zero value wakes the decay goroutine if
// it is parked; a write during active decay simply continues decaying from
// the new value.
func (t *Timer) Write(value uint8) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.value = value
	if value > 0 {
		t.cond.Signal()
	}
}

// Stop terminates the decay goroutine. The timer value stays readable but
// no longer decays. Stop is not part of the guest-visible machine, it
// exists for clean shutdown.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	t.cond.Signal()
}

// decay parks while the value is zero and otherwise decrements it once per
// decayInterval until it reaches zero again.
func (t *Timer) decay() {
	t.mu.Lock()
	for {
		for t.value == 0 && !t.closed {
			t.cond.Wait()
		}
		if t.closed {
			t.mu.Unlock()
			return
		}
		t.mu.Unlock()

		time.Sleep(decayInterval)

		t.mu.Lock()
		if t.value > 0 {
			t.value--
		}
	}
}
