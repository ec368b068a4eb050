// Copyright 2015 PingCAP, Inc.
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

package testutil

import (
	"github.com/pingcap/check"
	"github.com/pingcap/copr/types"
)

type datumEqualsChecker struct {
	*check.CheckerInfo
}

// DatumEquals checks that two datums hold the same value, e.g.
//     c.Assert(d, testutil.DatumEquals, types.NewIntDatum(42))
var DatumEquals check.Checker = &datumEqualsChecker{
	&check.CheckerInfo{Name: "DatumEquals", Params: []string{"obtained", "expected"}},
}

func (checker *datumEqualsChecker) Check(params []interface{}, names []string) (bool, string) {
	obtained, ok := params[0].(types.Datum)
	if !ok {
		return false, "obtained value must be a types.Datum"
	}
	expected, ok := params[1].(types.Datum)
	if !ok {
		return false, "expected value must be a types.Datum"
	}
	res, err := obtained.CompareDatum(&expected)
	if err != nil {
		return false, err.Error()
	}
	return res == 0, ""
}

// RowFromStrings builds a row of string datums, "NULL" becomes a NULL datum.
func RowFromStrings(args ...string) []types.Datum {
	row := make([]types.Datum, len(args))
	for i, v := range args {
		if v != "NULL" {
			row[i] = types.NewStringDatum(v)
		}
	}
	return row
}
