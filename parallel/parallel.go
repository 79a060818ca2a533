// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package parallel provides the executors a col2im task submits its workers to.
package parallel

import (
	internalparallel "github.com/born-ml/col2im/internal/parallel"
)

// Executor runs submitted tasks and reports how many it can run concurrently.
type Executor = internalparallel.Executor

// Config configures NewExecutor.
type Config = internalparallel.Config

// Inline runs every task synchronously on the calling goroutine.
type Inline = internalparallel.Inline

// Pool runs tasks in goroutines, at most a fixed number at a time.
type Pool = internalparallel.Pool

// Compile-time checks that the executors implement Executor.
var (
	_ Executor = Inline{}
	_ Executor = (*Pool)(nil)
)

// DefaultConfig returns a parallel configuration with one worker per CPU.
func DefaultConfig() Config {
	return internalparallel.DefaultConfig()
}

// NewExecutor returns Inline when cfg disables parallelism, a Pool otherwise.
func NewExecutor(cfg Config) Executor {
	return internalparallel.NewExecutor(cfg)
}

// NewPool creates a pool running at most maxParallelism tasks at a time.
// 0 runs tasks inline; a negative value does not limit parallelism.
//
// Example:
//
//	task, _ := col2im.New(col, params, col2im.WithExecutor(parallel.NewPool(4)))
func NewPool(maxParallelism int) *Pool {
	return internalparallel.NewPool(maxParallelism)
}
