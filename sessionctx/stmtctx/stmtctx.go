// Copyright 2017 PingCAP, Inc.
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

package stmtctx

import (
	"math"
	"strings"
	"sync"
	"time"

	"github.com/pingcap/errors"
)

// Warning levels, as shown by SHOW WARNINGS.
const (
	WarnLevelError   = "Error"
	WarnLevelWarning = "Warning"
	WarnLevelNote    = "Note"
)

// SQLWarn is a warning raised while evaluating, with its level.
type SQLWarn struct {
	Level string
	Err   error
}

// NullEQPolicy decides the result of `<=>` when at least one side is NULL.
type NullEQPolicy uint8

const (
	// NullEQEither makes `<=>` return 1 whenever either operand is NULL.
	// This is the behavior of the coprocessor and the default.
	NullEQEither NullEQPolicy = iota
	// NullEQBoth makes `<=>` return 1 only when both operands are NULL and 0
	// when exactly one of them is.
	NullEQBoth
)

var nullEQPolicyNames = map[string]NullEQPolicy{
	"":       NullEQEither,
	"either": NullEQEither,
	"both":   NullEQBoth,
}

// String implements fmt.Stringer interface.
func (p NullEQPolicy) String() string {
	if p == NullEQBoth {
		return "both"
	}
	return "either"
}

// ParseNullEQPolicy parses "either" or "both", case insensitive.
func ParseNullEQPolicy(s string) (NullEQPolicy, error) {
	if p, ok := nullEQPolicyNames[strings.ToLower(s)]; ok {
		return p, nil
	}
	return NullEQEither, errors.Errorf("invalid null-eq policy %q, should be either or both", s)
}

// NullEQResult returns the value of `<=>` given which sides are NULL.
// It must only be called when at least one side is NULL.
func (p NullEQPolicy) NullEQResult(lhsNull, rhsNull bool) int64 {
	if p == NullEQBoth && lhsNull != rhsNull {
		return 0
	}
	return 1
}

// maxWarnings caps the list, as the count is reported as uint16.
const maxWarnings = math.MaxUint16

type warnList struct {
	sync.Mutex
	list []SQLWarn
}

func (w *warnList) add(level string, err error) {
	w.Lock()
	if len(w.list) < maxWarnings {
		w.list = append(w.list, SQLWarn{Level: level, Err: err})
	}
	w.Unlock()
}

// StatementContext carries the settings of one evaluation run and collects
// its warnings. The settings are read only once evaluation starts, the
// warnings may be appended from several goroutines.
type StatementContext struct {
	IgnoreTruncate    bool
	TruncateAsWarning bool
	OverflowAsWarning bool

	NullEQPolicy NullEQPolicy

	// TimeZone is the location DATETIME and TIMESTAMP values are read in.
	TimeZone *time.Location

	warns warnList
}

// Location returns the time zone of the statement, UTC when unset or when
// sc is nil.
func (sc *StatementContext) Location() *time.Location {
	if sc != nil && sc.TimeZone != nil {
		return sc.TimeZone
	}
	return time.UTC
}

// GetWarnings returns a copy of the warnings.
func (sc *StatementContext) GetWarnings() []SQLWarn {
	sc.warns.Lock()
	defer sc.warns.Unlock()
	return append([]SQLWarn(nil), sc.warns.list...)
}

// WarningCount gets warning count.
func (sc *StatementContext) WarningCount() uint16 {
	sc.warns.Lock()
	defer sc.warns.Unlock()
	return uint16(len(sc.warns.list))
}

// SetWarnings replaces the warnings.
func (sc *StatementContext) SetWarnings(warns []SQLWarn) {
	sc.warns.Lock()
	sc.warns.list = warns
	sc.warns.Unlock()
}

// AppendWarning appends a warning with level 'Warning'.
func (sc *StatementContext) AppendWarning(warn error) { sc.warns.add(WarnLevelWarning, warn) }

// AppendNote appends a warning with level 'Note'.
func (sc *StatementContext) AppendNote(warn error) { sc.warns.add(WarnLevelNote, warn) }

// AppendError appends a warning with level 'Error'.
func (sc *StatementContext) AppendError(warn error) { sc.warns.add(WarnLevelError, warn) }

// HandleTruncate drops err under IgnoreTruncate, turns it into a warning
// under TruncateAsWarning and returns it otherwise.
func (sc *StatementContext) HandleTruncate(err error) error {
	switch {
	case err == nil, sc.IgnoreTruncate:
		return nil
	case sc.TruncateAsWarning:
		sc.AppendWarning(err)
		return nil
	}
	return err
}

// HandleOverflow returns err, or records warnErr instead under OverflowAsWarning.
func (sc *StatementContext) HandleOverflow(err error, warnErr error) error {
	if err == nil || !sc.OverflowAsWarning {
		return err
	}
	sc.AppendWarning(warnErr)
	return nil
}

// ResetForRetry drops the warnings so the context can be reused for another run.
func (sc *StatementContext) ResetForRetry() {
	sc.SetWarnings(nil)
}
