package col2im

import (
	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// unitAt maps a flat unit index to its (example, depth channel) pair.
func (t *Task) unitAt(s int64) (ex, d int) {
	return t.exampleFrom + int(s)/t.depthCount, t.depthFrom + int(s)%t.depthCount
}

// claim returns the next unclaimed unit index; it is >= t.numUnits once all
// units are claimed or the task was cancelled.
func (t *Task) claim() int64 {
	return t.claimed.Add(1) - 1
}

// work is the body of one worker: it claims units until none are left and runs them.
func (t *Task) work() {
	for s := t.claim(); s < t.numUnits; s = t.claim() {
		ex, d := t.unitAt(s)
		err := exceptions.TryCatch[error](func() {
			runUnit(t.col, t.img, t.params, ex, d)
		})
		if err != nil {
			t.fail(errors.Wrapf(ErrUnitFailed, "unit (example %d, depth %d): %v", ex, d, err))
			return
		}
		if t.latch.countDown() {
			klog.V(1).Infof("col2im: %d units done in %s", t.numUnits, t.elapsed())
		}
	}
}

// stopClaims pushes the claim counter past the unit space, so no further unit starts.
func (t *Task) stopClaims() {
	t.claimed.Add(t.numUnits)
}

// fail records the first failure, stops further claims and releases waiters.
func (t *Task) fail(err error) {
	t.mu.Lock()
	first := t.err == nil
	if first {
		t.err = err
	}
	t.mu.Unlock()
	if first {
		klog.Warningf("col2im: task failed: %v", err)
	}
	t.stopClaims()
	t.latch.drain()
}

// failure returns the recorded failure, if any.
func (t *Task) failure() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}
