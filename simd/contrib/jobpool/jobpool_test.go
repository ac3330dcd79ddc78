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

package jobpool

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestPoolBasic(t *testing.T) {
	pool := NewWithMax(4)

	if !pool.IsEnabled() {
		t.Error("pool should be enabled")
	}
	if pool.MaxParallelism() != 4 {
		t.Errorf("MaxParallelism = %d, want 4", pool.MaxParallelism())
	}
}

func TestPoolDisabledRunsInline(t *testing.T) {
	pool := NewWithMax(0)

	if pool.IsEnabled() {
		t.Error("pool should be disabled")
	}

	var ran atomic.Bool
	pool.WaitToStart(func() {
		ran.Store(true)
	})

	if !ran.Load() {
		t.Error("job should have run inline")
	}
}

func TestPoolSaturate(t *testing.T) {
	pool := NewWithMax(4)

	work := make(chan int, 10)
	for i := 0; i < 10; i++ {
		work <- i
	}
	close(work)

	var processed atomic.Int32
	pool.Saturate(func() {
		for range work {
			processed.Add(1)
		}
	})

	if processed.Load() != 10 {
		t.Errorf("processed %d items, want 10", processed.Load())
	}
}

func TestPoolStartIfAvailable(t *testing.T) {
	pool := NewWithMax(2)

	var running atomic.Int32
	blocker := make(chan struct{})

	for i := 0; i < 2; i++ {
		ok := pool.StartIfAvailable(func() {
			running.Add(1)
			<-blocker
			running.Add(-1)
		})
		if !ok {
			t.Errorf("job %d should have started", i)
		}
	}

	time.Sleep(10 * time.Millisecond)

	ok := pool.StartIfAvailable(func() {
		t.Error("this should not run")
	})
	if ok {
		t.Error("third job should not have started while the pool is full")
	}

	close(blocker)
	time.Sleep(10 * time.Millisecond)

	var ran atomic.Bool
	ok = pool.StartIfAvailable(func() {
		ran.Store(true)
	})
	if !ok {
		t.Error("job should have started after the blockers finished")
	}

	time.Sleep(10 * time.Millisecond)
	if !ran.Load() {
		t.Error("job should have run")
	}
}

// TestPoolFallsBackInlineWhenFull mirrors how kdtree.builder.runChild
// treats a false return from StartIfAvailable: run the job on the
// calling goroutine rather than block, so a saturated pool can't
// deadlock a job that's itself occupying a slot.
func TestPoolFallsBackInlineWhenFull(t *testing.T) {
	pool := NewWithMax(1)

	blocker := make(chan struct{})
	started := pool.StartIfAvailable(func() { <-blocker })
	if !started {
		t.Fatal("first job should have started")
	}

	var ranInline bool
	job := func() { ranInline = true }
	if ok := pool.StartIfAvailable(job); ok {
		t.Fatal("second job should not have found a free slot")
	} else {
		job()
	}
	if !ranInline {
		t.Error("caller should fall back to running inline")
	}
	close(blocker)
}
