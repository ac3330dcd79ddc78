// Copyright 2025 go-highway Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package jobpool bounds the fan-out of a recursive fork-join build: the
// k-d tree builder (kdtree.Build) spawns a new job for each child subtree
// it splits off, and a Pool caps how many of those run concurrently so a
// deep, imbalanced tree doesn't spawn one goroutine per node.
//
// Adapted from go-highway's matmul workers pool, which bounds the same
// kind of recursive fan-out for blocked GEMM; the job here is "build a
// k-d subtree" rather than "multiply a block", but the admission-control
// shape (soft parallelism cap, inline fallback when saturated) is the
// same.
package jobpool

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool bounds how many build jobs run concurrently. A build job that
// can't get a slot runs inline on the calling goroutine instead of
// blocking, so a saturated Pool degrades to sequential recursion rather
// than deadlocking a worker waiting on a child that's waiting on a slot.
type Pool struct {
	// maxParallelism is the soft target for concurrent jobs.
	// 0 = disabled, -1 = unlimited, >0 = limited
	maxParallelism int

	mu         sync.Mutex
	cond       sync.Cond
	numRunning int

	// extraParallelism temporarily increases when a job sleeps
	extraParallelism atomic.Int32
}

// New creates a pool with default parallelism (2 * GOMAXPROCS).
func New() *Pool {
	p := &Pool{maxParallelism: 2 * runtime.GOMAXPROCS(0)}
	p.cond = sync.Cond{L: &p.mu}
	return p
}

// NewWithMax creates a pool with the given max parallelism. 0 disables
// concurrency (every job runs inline); negative is unlimited.
func NewWithMax(maxParallelism int) *Pool {
	p := &Pool{maxParallelism: maxParallelism}
	p.cond = sync.Cond{L: &p.mu}
	return p
}

// IsEnabled returns whether parallelism is enabled.
func (p *Pool) IsEnabled() bool {
	return p.maxParallelism != 0
}

// MaxParallelism returns the configured max parallelism.
func (p *Pool) MaxParallelism() int {
	return p.maxParallelism
}

// AdjustedMaxParallelism returns the effective parallelism (>= 1).
// For unlimited (-1), returns GOMAXPROCS.
// For disabled (0), returns 1.
// Otherwise, returns min(maxParallelism, GOMAXPROCS).
func (p *Pool) AdjustedMaxParallelism() int {
	if p.maxParallelism < 0 {
		return runtime.GOMAXPROCS(0)
	}
	return min(max(p.maxParallelism, 1), runtime.GOMAXPROCS(0))
}

// SetMaxParallelism updates the max parallelism.
// Should only be called before any jobs start.
func (p *Pool) SetMaxParallelism(maxParallelism int) {
	p.maxParallelism = maxParallelism
}

// lockedIsFull returns whether all slots are in use (must hold lock).
func (p *Pool) lockedIsFull() bool {
	if p.maxParallelism == 0 {
		return true // disabled
	}
	if p.maxParallelism < 0 {
		return false // unlimited
	}
	return p.numRunning >= p.maxParallelism+int(p.extraParallelism.Load())
}

// lockedRunJob starts a job in a goroutine (must hold lock).
func (p *Pool) lockedRunJob(job func()) {
	p.numRunning++
	go func() {
		job()
		p.mu.Lock()
		p.numRunning--
		p.cond.Signal()
		p.mu.Unlock()
	}()
}

// StartIfAvailable runs job in a new goroutine if a slot is free.
// Returns true if job was started, false if the pool is full, in which
// case the caller should run job inline.
func (p *Pool) StartIfAvailable(job func()) bool {
	if p.maxParallelism < 0 {
		// Unlimited: always start
		go job()
		return true
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.lockedIsFull() {
		return false
	}

	p.lockedRunJob(job)
	return true
}

// WaitToStart blocks until a slot is available, then runs job.
// If parallelism is disabled, runs inline.
func (p *Pool) WaitToStart(job func()) {
	if p.maxParallelism < 0 {
		go job()
		return
	}

	if p.maxParallelism == 0 {
		// Disabled: run inline
		job()
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	for p.lockedIsFull() {
		p.cond.Wait()
	}
	p.lockedRunJob(job)
}

// Saturate fans out as many jobs as slots allow, each running the given
// task. Jobs consume from a shared work source (typically a channel).
// When the first task completes (signaling no more work), it stops
// spawning. Returns when all started jobs have finished.
//
// Usage pattern:
//
//	workChan := make(chan workItem, numItems)
//	// ... fill workChan ...
//	close(workChan)
//	pool.Saturate(func() {
//	    for item := range workChan {
//	        process(item)
//	    }
//	})
func (p *Pool) Saturate(task func()) {
	if p.maxParallelism == 0 {
		// Disabled: run single task
		task()
		return
	}

	limit := p.maxParallelism
	if limit < 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	var wg sync.WaitGroup
	var doneFanningOut atomic.Bool

	p.mu.Lock()
	started := 0

	for !doneFanningOut.Load() {
		// Check limits
		unlimited := p.maxParallelism < 0
		if (unlimited && started >= limit) || (!unlimited && p.lockedIsFull()) {
			p.cond.Wait()
			if doneFanningOut.Load() {
				p.cond.Signal() // propagate to other waiters
				break
			}
			continue
		}

		started++
		wg.Add(1)
		p.lockedRunJob(func() {
			defer wg.Done()
			task()
			doneFanningOut.Store(true)
		})
	}
	p.mu.Unlock()
	wg.Wait()
}

// JobIsAsleep indicates a running job is blocked waiting on something
// else (e.g. a child job's slot) and temporarily increases available
// parallelism so that wait doesn't starve the rest of the pool. Call
// JobRestarted when done waiting.
func (p *Pool) JobIsAsleep() {
	p.extraParallelism.Add(1)
}

// JobRestarted indicates a sleeping job is active again.
func (p *Pool) JobRestarted() {
	p.extraParallelism.Add(-1)
}
