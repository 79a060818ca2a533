package col2im

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/born-ml/col2im/internal/parallel"
	"github.com/born-ml/col2im/internal/tensor"
)

// State of a Task.
type State int

const (
	Pending   State = iota // Constructed, not invoked yet.
	Running                // Invoked, units still outstanding.
	Completed              // All units accumulated.
	Cancelled              // Cancelled before completion.
	Failed                 // A unit failed; see the error returned by Get.
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Cancelled:
		return "cancelled"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Task scatters the patches of a column tensor [examples, depth, kH, kW, outH, outW]
// back into an image tensor [examples, depth, imgHeight, imgWidth], summing overlaps.
//
// The (example, depth) pairs are the units of work: workers claim them one at a
// time from a shared counter, and each unit writes only its own image plane, so
// the result does not depend on the number of workers or their timing.
//
// A Task is used once: invoke it, then retrieve the image.
type Task struct {
	col, img *tensor.RawTensor
	params   Params

	exampleFrom, depthFrom int
	depthCount             int
	numUnits               int64

	parallelThreshold int
	executor          parallel.Executor

	claimed   atomic.Int64
	latch     *countdownLatch
	started   atomic.Bool
	cancelled atomic.Bool
	startTime time.Time

	mu  sync.Mutex
	err error
}

// New creates a Col2Im task for the column tensor col.
//
// Unless WithOutput is given, a zeroed image tensor [col[0], col[1], p.ImgHeight, p.ImgWidth]
// is allocated. Invalid geometry returns an error wrapping ErrInvalidGeometry.
//
// Example:
//
//	col, _ := tensor.NewRaw(tensor.Shape{1, 1, 2, 2, 2, 2}, tensor.Float32, tensor.Heap)
//	col.Fill(1)
//	task, _ := col2im.New(col, col2im.Params{StrideY: 1, StrideX: 1, ImgHeight: 3, ImgWidth: 3})
//	img, _ := task.Invoke(ctx) // [[1 2 1] [2 4 2] [1 2 1]]
func New(col *tensor.RawTensor, p Params, opts ...Option) (*Task, error) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := validateColumn(col, p); err != nil {
		return nil, err
	}
	img := cfg.output
	if img == nil {
		var err error
		img, err = NewOutput(col, p.ImgHeight, p.ImgWidth)
		if err != nil {
			return nil, err
		}
	}
	if err := validateImage(col, img, p); err != nil {
		return nil, err
	}

	shape := col.Shape()
	exFrom, exTo, err := validateRange("example", cfg.exampleRange, shape[0])
	if err != nil {
		return nil, err
	}
	dFrom, dTo, err := validateRange("depth", cfg.depthRange, shape[1])
	if err != nil {
		return nil, err
	}

	executor := cfg.executor
	if executor == nil {
		executor = parallel.NewExecutor(parallel.DefaultConfig())
	}

	t := &Task{
		col:               col,
		img:               img,
		params:            p,
		exampleFrom:       exFrom,
		depthFrom:         dFrom,
		depthCount:        dTo - dFrom,
		numUnits:          int64(exTo-exFrom) * int64(dTo-dFrom),
		parallelThreshold: cfg.parallelThreshold,
		executor:          executor,
	}
	t.latch = newCountdownLatch(t.numUnits)
	if klog.V(2).Enabled() {
		v, _ := variantOf(col)
		klog.Infof("col2im: new task col=%v img=%v params=%+v units=%d kernel=%s heightInnermost=%t parallelThreshold=%d (not consulted)",
			shape, img.Shape(), p, t.numUnits, v, heightInnermost(col), t.parallelThreshold)
	}
	return t, nil
}

// MustNew is New, but panics with the error on invalid geometry.
func MustNew(col *tensor.RawTensor, p Params, opts ...Option) *Task {
	t, err := New(col, p, opts...)
	if err != nil {
		exceptions.Panicf("%+v", err)
	}
	return t
}

// Invoke runs the task and waits for it, returning the image tensor.
func (t *Task) Invoke(ctx context.Context) (*tensor.RawTensor, error) {
	if err := t.InvokeAsync(); err != nil {
		return nil, err
	}
	return t.Wait(ctx)
}

// InvokeAsync submits the task's workers to the executor and returns.
// Use Get, GetTimeout or Wait to retrieve the result.
//
// One worker is submitted per unit of executor parallelism, at most one per unit.
// Executors that are saturated may make InvokeAsync wait for a free slot.
func (t *Task) InvokeAsync() error {
	if !t.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}
	t.startTime = time.Now()
	if t.numUnits == 0 {
		return nil
	}
	workers := int64(max(t.executor.Parallelism(), 1))
	workers = min(workers, t.numUnits)
	klog.V(1).Infof("col2im: dispatching %d units to %d workers", t.numUnits, workers)
	for range workers {
		t.executor.Execute(t.work)
	}
	return nil
}

// Get blocks until the task is done and returns the image tensor.
//
// A cancelled task returns the partially accumulated image and ErrCancelled.
func (t *Task) Get() (*tensor.RawTensor, error) {
	return t.Wait(context.Background())
}

// GetTimeout is Get, giving up after timeout with ErrTimeout.
// Workers keep running after a timeout.
func (t *Task) GetTimeout(timeout time.Duration) (*tensor.RawTensor, error) {
	if t.latch.isReleased() {
		return t.result()
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-t.latch.waitChan():
		return t.result()
	case <-timer.C:
		return nil, errors.Wrapf(ErrTimeout, "%d of %d units outstanding after %s",
			t.latch.remaining(), t.numUnits, timeout)
	}
}

// Wait is Get, returning an error wrapping both ErrInterrupted and ctx.Err()
// if ctx is done first. Workers keep running after an interruption.
func (t *Task) Wait(ctx context.Context) (*tensor.RawTensor, error) {
	if t.latch.isReleased() {
		return t.result()
	}
	select {
	case <-t.latch.waitChan():
		return t.result()
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", ErrInterrupted, ctx.Err())
	}
}

func (t *Task) result() (*tensor.RawTensor, error) {
	if err := t.failure(); err != nil {
		return nil, err
	}
	if t.cancelled.Load() {
		return t.img, ErrCancelled
	}
	return t.img, nil
}

// Cancel stops the task from starting any further unit and releases waiters.
// Units already running finish their accumulation.
//
// It returns false if the task was already done or cancelled.
func (t *Task) Cancel() bool {
	if t.IsDone() {
		return false
	}
	outstanding := t.latch.remaining()
	t.stopClaims()
	// The flag is set under the latch's release lock, so a task whose last unit
	// completes concurrently is never reported as cancelled.
	if !t.latch.drainWith(func() { t.cancelled.Store(true) }) {
		return false
	}
	klog.V(1).Infof("col2im: cancelled with %d of %d units outstanding", outstanding, t.numUnits)
	return true
}

// IsCancelled reports whether Cancel succeeded on the task.
func (t *Task) IsCancelled() bool {
	return t.cancelled.Load()
}

// IsDone reports whether the task completed, was cancelled or failed.
func (t *Task) IsDone() bool {
	return t.latch.isReleased()
}

// State returns the task's current state.
func (t *Task) State() State {
	switch {
	case t.failure() != nil:
		return Failed
	case t.cancelled.Load():
		return Cancelled
	case t.latch.isReleased():
		return Completed
	case t.started.Load():
		return Running
	default:
		return Pending
	}
}

// Output returns the image tensor the task accumulates into.
func (t *Task) Output() *tensor.RawTensor {
	return t.img
}

// NumUnits returns the number of (example, depth) units the task processes.
func (t *Task) NumUnits() int {
	return int(t.numUnits)
}

// ParallelThreshold returns the threshold given with WithParallelThreshold.
func (t *Task) ParallelThreshold() int {
	return t.parallelThreshold
}

func (t *Task) elapsed() time.Duration {
	return time.Since(t.startTime)
}
