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

package printer

import (
	"encoding/json"
	"fmt"
	"runtime"
	"strings"

	"github.com/pingcap/copr/util/logutil"
	"go.uber.org/zap"
)

// Version information, set by -ldflags at build time.
var (
	CoprReleaseVersion = "None"
	CoprBuildTS        = "None"
	CoprGitHash        = "None"
	CoprGitBranch      = "None"
)

// PrintCoprInfo logs the version information and the loaded config.
func PrintCoprInfo(cfg interface{}) {
	logutil.BgLogger().Info("Welcome to cmpeval.",
		zap.String("Release Version", CoprReleaseVersion),
		zap.String("Git Commit Hash", CoprGitHash),
		zap.String("Git Branch", CoprGitBranch),
		zap.String("UTC Build Time", CoprBuildTS),
		zap.String("GoVersion", runtime.Version()))
	configJSON, err := json.Marshal(cfg)
	if err != nil {
		logutil.BgLogger().Warn("marshal config failed", zap.Error(err))
		return
	}
	logutil.BgLogger().Info("loaded config", zap.ByteString("config", configJSON))
}

// GetCoprInfo returns the version information of this binary.
func GetCoprInfo() string {
	return fmt.Sprintf("Release Version: %s\n"+
		"Git Commit Hash: %s\n"+
		"Git Branch: %s\n"+
		"UTC Build Time: %s\n"+
		"GoVersion: %s",
		CoprReleaseVersion,
		CoprGitHash,
		CoprGitBranch,
		CoprBuildTS,
		runtime.Version())
}

// GetPrintResult renders cols and rows as an ASCII table.
// It returns false when there is nothing to print or a row width differs from cols.
func GetPrintResult(cols []string, rows [][]string) (string, bool) {
	if len(cols) == 0 || len(rows) == 0 {
		return "", false
	}
	widths := make([]int, len(cols))
	for i, col := range cols {
		widths[i] = len(col)
	}
	for _, row := range rows {
		if len(row) != len(cols) {
			return "", false
		}
		for i, v := range row {
			if len(v) > widths[i] {
				widths[i] = len(v)
			}
		}
	}

	var sb strings.Builder
	divider := func() {
		for _, w := range widths {
			sb.WriteByte('+')
			sb.WriteString(strings.Repeat("-", w+2))
		}
		sb.WriteString("+\n")
	}
	line := func(cells []string) {
		for i, v := range cells {
			fmt.Fprintf(&sb, "| %-*s ", widths[i], v)
		}
		sb.WriteString("|\n")
	}

	divider()
	line(cols)
	divider()
	for _, row := range rows {
		line(row)
	}
	divider()
	return sb.String(), true
}
