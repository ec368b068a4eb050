// Copyright 2018 PingCAP, Inc.
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

// +build linux darwin freebsd unix

package signal

import (
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/pingcap/copr/util/logutil"
	"go.uber.org/zap"
)

var termSignals = []os.Signal{syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT}

// SetupSignalHandler calls shutdown once on the first terminating signal.
// SIGUSR1 dumps all goroutine stacks to the log.
func SetupSignalHandler(shutdown func(sig os.Signal)) {
	dumpCh := make(chan os.Signal, 1)
	signal.Notify(dumpCh, syscall.SIGUSR1)
	go func() {
		for range dumpCh {
			dumpStacks()
		}
	}()

	termCh := make(chan os.Signal, 1)
	signal.Notify(termCh, termSignals...)
	go waitTerm(termCh, shutdown)
}

func dumpStacks() {
	buf := make([]byte, 1<<16)
	for {
		n := runtime.Stack(buf, true)
		if n < len(buf) {
			logutil.BgLogger().Info("dump goroutine stack", zap.ByteString("stack", buf[:n]))
			return
		}
		buf = make([]byte, 2*len(buf))
	}
}

func waitTerm(termCh <-chan os.Signal, shutdown func(sig os.Signal)) {
	sig := <-termCh
	logutil.BgLogger().Info("got signal to exit", zap.Stringer("signal", sig))
	shutdown(sig)
}
