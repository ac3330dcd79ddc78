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

//go:build amd64 && !goexperiment.simd

package simd

import "golang.org/x/sys/cpu"

// Fallback for when GOEXPERIMENT=simd is not enabled. Without archsimd we
// cannot issue AVX2/AVX-512 instructions directly, so dispatch always
// selects the scalar path; we still probe cpu.X86 so HasAVX2/HasFMA are
// available to callers deciding tile sizes or logging the render
// environment.

var (
	hasAVX2 bool
	hasFMA  bool
)

func init() {
	detectCPUFeatures()
	if NoSimdEnv() {
		setScalarMode()
	}
}

func detectCPUFeatures() {
	hasAVX2 = cpu.X86.HasAVX2
	hasFMA = cpu.X86.HasFMA
	// Build with GOEXPERIMENT=simd for actual AVX2/AVX-512 dispatch; without
	// it we stay on the scalar path regardless of what the CPU supports.
	setScalarMode()
}

func setScalarMode() {
	currentLevel = DispatchScalar
	currentWidth = 16
}

// HasAVX2 reports whether the CPU supports AVX2 instructions, even though
// the current build cannot dispatch to them.
func HasAVX2() bool {
	return hasAVX2
}

// HasFMA reports whether the CPU supports fused multiply-add instructions.
func HasFMA() bool {
	return hasFMA
}
