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

// +build windows

package signal

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/pingcap/copr/util/logutil"
	"go.uber.org/zap"
)

// SetupSignalHandler calls shutdown once on the first terminating signal.
func SetupSignalHandler(shutdown func(sig os.Signal)) {
	termCh := make(chan os.Signal, 1)
	signal.Notify(termCh, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		sig := <-termCh
		logutil.BgLogger().Info("got signal to exit", zap.Stringer("signal", sig))
		shutdown(sig)
	}()
}
