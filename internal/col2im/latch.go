package col2im

import (
	"sync"
	"sync/atomic"
)

// countdownLatch is released once it has been counted down to zero, or drained.
// Once released it stays released.
type countdownLatch struct {
	count     atomic.Int64
	muRelease sync.Mutex
	done      chan struct{}
}

// newCountdownLatch returns a latch expecting n count downs; n <= 0 is released already.
func newCountdownLatch(n int64) *countdownLatch {
	l := &countdownLatch{done: make(chan struct{})}
	l.count.Store(n)
	if n <= 0 {
		l.release()
	}
	return l
}

// countDown decrements the count and reports whether this call released the latch.
func (l *countdownLatch) countDown() bool {
	if l.count.Add(-1) == 0 {
		return l.release()
	}
	return false
}

// drain forces the count to zero and releases the latch.
func (l *countdownLatch) drain() {
	l.count.Store(0)
	l.release()
}

// drainWith is drain, calling fn just before releasing. It reports whether this
// call released the latch; fn is not called if the latch was already released.
func (l *countdownLatch) drainWith(fn func()) bool {
	l.muRelease.Lock()
	defer l.muRelease.Unlock()
	if l.isReleased() {
		return false
	}
	l.count.Store(0)
	fn()
	close(l.done)
	return true
}

// release closes done if not yet closed, and reports whether it did.
func (l *countdownLatch) release() bool {
	l.muRelease.Lock()
	defer l.muRelease.Unlock()
	if l.isReleased() {
		return false
	}
	close(l.done)
	return true
}

// isReleased checks whether the latch has been released.
func (l *countdownLatch) isReleased() bool {
	select {
	case <-l.done:
		return true
	default:
		return false
	}
}

// remaining returns the number of count downs still expected.
func (l *countdownLatch) remaining() int64 {
	return max(l.count.Load(), 0)
}

// waitChan returns a channel closed when the latch is released.
func (l *countdownLatch) waitChan() <-chan struct{} {
	return l.done
}
