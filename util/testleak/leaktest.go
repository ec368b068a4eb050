// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Copyright 2016 PingCAP, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// See the License for the specific language governing permissions and
// limitations under the License.

// +build leak

package testleak

import (
	"runtime"
	"strings"
	"time"

	"github.com/pingcap/check"
)

// Stacks containing any of these belong to the runtime or the test harness.
var ignoredStacks = []string{
	"created by github.com/pingcap/copr.init",
	"testing.RunTests",
	"testing.(*T).Run",
	"testing.Main(",
	"check.(*resultTracker).start",
	"check.(*suiteRunner).runFunc",
	"check.(*suiteRunner).parallelRun",
	"runtime.goexit",
	"created by runtime.gc",
	"goroutineStacks",
}

const (
	retryCount    = 50
	retryInterval = 50 * time.Millisecond
)

func ignored(stack string) bool {
	for _, s := range ignoredStacks {
		if strings.Contains(stack, s) {
			return true
		}
	}
	return false
}

// goroutineStacks returns the stacks of the running goroutines, keyed by stack.
func goroutineStacks() map[string]struct{} {
	buf := make([]byte, 2<<20)
	buf = buf[:runtime.Stack(buf, true)]
	stacks := make(map[string]struct{})
	for _, g := range strings.Split(string(buf), "\n\n") {
		// The first line is the goroutine header, which carries its id and state.
		parts := strings.SplitN(g, "\n", 2)
		if len(parts) != 2 {
			continue
		}
		stack := strings.TrimSpace(parts[1])
		if stack == "" || ignored(stack) {
			continue
		}
		stacks[stack] = struct{}{}
	}
	return stacks
}

// AfterTest snapshots the running goroutines and returns a function that
// fails c for every goroutine started since and still running after a grace
// period. Usage: defer testleak.AfterTest(c)()
func AfterTest(c *check.C) func() {
	before := goroutineStacks()
	return func() {
		var leaked []string
		for i := 0; i < retryCount; i++ {
			leaked = leaked[:0]
			for g := range goroutineStacks() {
				if _, ok := before[g]; !ok {
					leaked = append(leaked, g)
				}
			}
			if len(leaked) == 0 {
				return
			}
			time.Sleep(retryInterval)
		}
		for _, g := range leaked {
			c.Errorf("Test %s appears to have leaked: %v", c.TestName(), g)
		}
	}
}
