// Package main provides the col2im CLI.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gomlx/exceptions"
	"github.com/janpfeifer/must"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/born-ml/col2im/internal/col2im"
	"github.com/born-ml/col2im/internal/parallel"
	"github.com/born-ml/col2im/internal/tensor"
)

const version = "v0.1.0-dev"

func usage() {
	fmt.Println("col2im - parallel Col2Im for Go")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  version    Show version")
	fmt.Println("  demo       Run a Col2Im over a constant column tensor and print the image")
	fmt.Println("")
	fmt.Println("Run 'col2im demo -h' for the demo flags.")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	switch os.Args[1] {
	case "version":
		fmt.Printf("col2im %s\n", version)
	case "demo":
		err := exceptions.TryCatch[error](func() {
			runDemo(os.Args[2:])
		})
		if err != nil {
			klog.Fatalf("Failed with error: %+v", err)
		}
	default:
		usage()
		os.Exit(2)
	}
}

// demoConfig holds the demo's flags.
type demoConfig struct {
	dtype, layout     string
	workers           int
	examples, depth   int
	kernel, out       int
	stride, pad, img  int
	value             float64
	timeout           time.Duration
	parallelThreshold int
}

func parseDemoFlags(args []string) demoConfig {
	var cfg demoConfig
	fs := flag.NewFlagSet("demo", flag.ExitOnError)
	fs.StringVar(&cfg.dtype, "dtype", "float32", "Element type: float32 or float64.")
	fs.StringVar(&cfg.layout, "layout", "heap", "Buffer layout: heap or direct.")
	fs.IntVar(&cfg.workers, "workers", parallel.DefaultConfig().NumWorkers, "Number of workers; 1 runs inline.")
	fs.IntVar(&cfg.examples, "examples", 1, "Number of examples.")
	fs.IntVar(&cfg.depth, "depth", 1, "Number of depth channels.")
	fs.IntVar(&cfg.kernel, "kernel", 2, "Kernel height and width.")
	fs.IntVar(&cfg.out, "out", 2, "Output grid height and width.")
	fs.IntVar(&cfg.stride, "stride", 1, "Stride in both directions.")
	fs.IntVar(&cfg.pad, "pad", 0, "Padding in both directions.")
	fs.IntVar(&cfg.img, "img", 3, "Image height and width.")
	fs.Float64Var(&cfg.value, "value", 1, "Value every column element is set to.")
	fs.DurationVar(&cfg.timeout, "timeout", 10*time.Second, "Maximum time to wait for the result.")
	fs.IntVar(&cfg.parallelThreshold, "threshold", 0, "Parallelism threshold recorded on the task.")
	klog.InitFlags(fs)
	must.M(fs.Parse(args))
	return cfg
}

func runDemo(args []string) {
	cfg := parseDemoFlags(args)
	defer klog.Flush()

	dtype, ok := tensor.ParseDataType(cfg.dtype)
	if !ok {
		exceptions.Panicf("invalid -dtype %q, valid values are \"float32\" or \"float64\"", cfg.dtype)
	}
	layout, ok := tensor.ParseLayout(cfg.layout)
	if !ok {
		exceptions.Panicf("invalid -layout %q, valid values are \"heap\" or \"direct\"", cfg.layout)
	}

	colShape := tensor.Shape{cfg.examples, cfg.depth, cfg.kernel, cfg.kernel, cfg.out, cfg.out}
	col := must.M1(tensor.NewRaw(colShape, dtype, layout))
	// Workers may outlive a timeout, and they read col until they return.
	releaseCol := true
	defer func() {
		if releaseCol {
			must.M(col.Release())
		}
	}()
	col.Fill(cfg.value)

	exec := parallel.NewExecutor(parallel.Config{Enabled: cfg.workers > 1, NumWorkers: cfg.workers})
	task := must.M1(col2im.New(col, col2im.Params{
		StrideY: cfg.stride, StrideX: cfg.stride,
		PadHeight: cfg.pad, PadWidth: cfg.pad,
		ImgHeight: cfg.img, ImgWidth: cfg.img,
	}, col2im.WithExecutor(exec), col2im.WithParallelThreshold(cfg.parallelThreshold)))

	start := time.Now()
	must.M(task.InvokeAsync())
	img, settled, err := awaitResult(task, cfg.timeout)
	releaseCol = settled
	must.M(err)
	defer func() { must.M(img.Release()) }()
	elapsed := time.Since(start)

	fmt.Printf("column %v %s/%s: %s\n", col.Shape(), layout, dtype, humanize.Bytes(uint64(col.ByteSize())))
	fmt.Printf("image  %v %s/%s: %s\n", img.Shape(), layout, dtype, humanize.Bytes(uint64(img.ByteSize())))
	fmt.Printf("%s units on %d workers in %s\n", humanize.Comma(int64(task.NumUnits())), exec.Parallelism(), elapsed)
	fmt.Println("image[0, 0]:")
	fmt.Print(formatPlane(img, 0, 0))
}

// awaitResult waits up to timeout for task. On timeout the task is cancelled and
// settled is false: units already running may still be reading the column tensor.
func awaitResult(task *col2im.Task, timeout time.Duration) (img *tensor.RawTensor, settled bool, err error) {
	img, err = task.GetTimeout(timeout)
	if errors.Is(err, col2im.ErrTimeout) {
		task.Cancel()
		return nil, false, err
	}
	return img, true, err
}

// formatPlane renders img[ex, d] one row per line.
func formatPlane(img *tensor.RawTensor, ex, d int) string {
	s := img.Shape()
	var sb strings.Builder
	for y := 0; y < s[2]; y++ {
		row := make([]string, s[3])
		for x := range row {
			row[x] = fmt.Sprintf("%g", img.At(ex, d, y, x))
		}
		sb.WriteString("[" + strings.Join(row, " ") + "]\n")
	}
	return sb.String()
}
