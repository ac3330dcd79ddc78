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

//go:build !amd64

package simd

func init() {
	// arm64 and other architectures fall back to scalar mode for now.
	// A NEON dispatch path would live in its own dispatch_arm64.go file
	// built under goexperiment.simd.
	currentLevel = DispatchScalar
	currentWidth = 16
}

// HasAVX2 returns false on non-amd64 platforms.
func HasAVX2() bool {
	return false
}

// HasFMA returns false on non-amd64 platforms.
func HasFMA() bool {
	return false
}
