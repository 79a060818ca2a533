// Package col2im implements the parallel Col2Im transform used by convolution
// backward passes.
//
// # Overview
//
// A column tensor [examples, depth, kH, kW, outH, outW] holds, for every output
// grid position (y, x), the kH×kW patch an Im2Col extracted from the image. Col2Im
// adds every patch back at its image position
//
//	img[ex, d, y*strideY - padHeight + kh, x*strideX - padWidth + kw] += col[ex, d, kh, kw, y, x]
//
// summing the contributions of overlapping patches and dropping those that fall
// in the (virtual) padding.
//
// # Execution
//
// Each (example, depth) pair is one unit of work. A Task submits workers to a
// parallel.Executor; workers claim units from an atomic counter and run the
// kernel executor matching the tensors' layout (heap or direct) and dtype
// (float32 or float64). Units write disjoint image planes, and each unit adds
// its patches in a fixed order, so results are bit-identical for any number of
// workers.
//
// # Basic Usage
//
//	task, err := col2im.New(col, col2im.Params{
//	    StrideY: 1, StrideX: 1,
//	    PadHeight: 1, PadWidth: 1,
//	    ImgHeight: 28, ImgWidth: 28,
//	}, col2im.WithExecutor(parallel.NewPool(8)))
//	if err != nil {
//	    return err
//	}
//	img, err := task.Invoke(ctx)
//
// Asynchronous use:
//
//	_ = task.InvokeAsync()
//	// ...
//	img, err := task.GetTimeout(time.Second)
//	if errors.Is(err, col2im.ErrTimeout) {
//	    task.Cancel()
//	}
//
// Build with -tags col2imdebug to validate every kernel address.
package col2im
