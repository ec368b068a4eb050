// Copyright 2019 PingCAP, Inc.
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

package types

import (
	"strconv"

	"github.com/pingcap/errors"
)

const (
	// UnspecifiedFsp is the unspecified fractional seconds part.
	UnspecifiedFsp = -1
	// MaxFsp is the maximum digit of fractional seconds part.
	MaxFsp = 6
	// MinFsp is the minimum digit of fractional seconds part.
	MinFsp = 0
	// DefaultFsp is the default digit of fractional seconds part.
	// MySQL use 0 as the default Fsp.
	DefaultFsp = 0
)

var pow10 = [...]int{1, 10, 100, 1000, 10000, 100000, 1000000}

// CheckFsp checks whether fsp is in valid range.
func CheckFsp(fsp int) (int, error) {
	if fsp == UnspecifiedFsp {
		return DefaultFsp, nil
	}
	if fsp < MinFsp || fsp > MaxFsp {
		return DefaultFsp, ErrInvalidFsp.GenWithStackByArgs(fsp)
	}
	return fsp, nil
}

// ParseFrac reads the digits after the decimal point and rounds them to fsp
// digits, returning the value in microseconds. overflow is set when rounding
// carries into the seconds, e.g. "999" with fsp 2.
func ParseFrac(s string, fsp int) (micro int, overflow bool, err error) {
	if len(s) == 0 {
		return 0, false, nil
	}
	fsp, err = CheckFsp(fsp)
	if err != nil {
		return 0, false, errors.Trace(err)
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false, errors.Errorf("invalid fraction %q", s)
		}
	}
	if len(s) <= fsp {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, false, errors.Trace(err)
		}
		return v * pow10[MaxFsp-len(s)], false, nil
	}

	// One extra digit decides the rounding.
	v, err := strconv.Atoi(s[:fsp+1])
	if err != nil {
		return 0, false, errors.Trace(err)
	}
	v = (v + 5) / 10
	if v >= pow10[fsp] {
		return 0, true, nil
	}
	return v * pow10[MaxFsp-fsp], false, nil
}
