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

package types

import (
	"math"

	. "github.com/pingcap/check"
	"github.com/pingcap/copr/sessionctx/stmtctx"
	"github.com/pingcap/copr/util/testleak"
	"github.com/pingcap/parser/mysql"
)

var _ = Suite(&testConvertSuite{})

type testConvertSuite struct {
}

func (s *testConvertSuite) TestParseDatum(c *C) {
	defer testleak.AfterTest(c)()
	sc := &stmtctx.StatementContext{}

	d, err := ParseDatum(sc, " 12 ", NewFieldType(mysql.TypeLonglong))
	c.Assert(err, IsNil)
	c.Assert(d.Kind(), Equals, KindInt64)
	c.Assert(d.GetInt64(), Equals, int64(12))

	ft := NewFieldType(mysql.TypeLonglong)
	ft.Flag |= mysql.UnsignedFlag
	d, err = ParseDatum(sc, "18446744073709551615", ft)
	c.Assert(err, IsNil)
	c.Assert(d.GetUint64(), Equals, uint64(math.MaxUint64))

	d, err = ParseDatum(sc, "NaN", NewFieldType(mysql.TypeDouble))
	c.Assert(err, IsNil)
	c.Assert(math.IsNaN(d.GetFloat64()), IsTrue)

	d, err = ParseDatum(sc, "1.50", NewFieldType(mysql.TypeNewDecimal))
	c.Assert(err, IsNil)
	c.Assert(d.GetMysqlDecimal().Compare(NewDecFromInt(1)), Equals, 1)

	d, err = ParseDatum(sc, "abc", NewFieldType(mysql.TypeVarchar))
	c.Assert(err, IsNil)
	c.Assert(d.GetString(), Equals, "abc")

	d, err = ParseDatum(sc, "2019-01-01 10:00:00", NewFieldType(mysql.TypeDatetime))
	c.Assert(err, IsNil)
	c.Assert(d.GetMysqlTime().String(), Equals, "2019-01-01 10:00:00")

	d, err = ParseDatum(sc, "10:11:12", NewFieldType(mysql.TypeDuration))
	c.Assert(err, IsNil)
	c.Assert(d.GetMysqlDuration().String(), Equals, "10:11:12")

	d, err = ParseDatum(sc, `{"a":1}`, NewFieldType(mysql.TypeJSON))
	c.Assert(err, IsNil)
	c.Assert(d.GetMysqlJSON().String(), Equals, `{"a": 1}`)

	d, err = ParseDatum(sc, "whatever", NewFieldType(mysql.TypeNull))
	c.Assert(err, IsNil)
	c.Assert(d.IsNull(), IsTrue)

	_, err = ParseDatum(sc, "a", NewFieldType(mysql.TypeEnum))
	c.Assert(err, NotNil)
}

func (s *testConvertSuite) TestParseDatumStrict(c *C) {
	defer testleak.AfterTest(c)()
	sc := &stmtctx.StatementContext{}

	_, err := ParseDatum(sc, "abc", NewFieldType(mysql.TypeLonglong))
	c.Assert(ErrTruncatedWrongVal.Equal(err), IsTrue)
	_, err = ParseDatum(sc, "99999999999999999999", NewFieldType(mysql.TypeLonglong))
	c.Assert(ErrOverflow.Equal(err), IsTrue)
	_, err = ParseDatum(sc, "1.2.3", NewFieldType(mysql.TypeNewDecimal))
	c.Assert(ErrTruncatedWrongVal.Equal(err), IsTrue)
	_, err = ParseDatum(sc, "2019-13-01", NewFieldType(mysql.TypeDate))
	c.Assert(err, NotNil)
	_, err = ParseDatum(sc, "{", NewFieldType(mysql.TypeJSON))
	c.Assert(err, NotNil)
	c.Assert(sc.WarningCount(), Equals, uint16(0))
}

func (s *testConvertSuite) TestParseDatumLenient(c *C) {
	defer testleak.AfterTest(c)()
	sc := &stmtctx.StatementContext{TruncateAsWarning: true, OverflowAsWarning: true}

	d, err := ParseDatum(sc, "abc", NewFieldType(mysql.TypeLonglong))
	c.Assert(err, IsNil)
	c.Assert(d.IsNull(), IsTrue)

	d, err = ParseDatum(sc, "99999999999999999999", NewFieldType(mysql.TypeLonglong))
	c.Assert(err, IsNil)
	c.Assert(d.GetInt64(), Equals, int64(math.MaxInt64))

	d, err = ParseDatum(sc, "-1e400", NewFieldType(mysql.TypeDouble))
	c.Assert(err, IsNil)
	c.Assert(math.IsInf(d.GetFloat64(), -1), IsTrue)

	d, err = ParseDatum(sc, "10:61:00", NewFieldType(mysql.TypeDuration))
	c.Assert(err, IsNil)
	c.Assert(d.IsNull(), IsTrue)

	c.Assert(sc.WarningCount(), Equals, uint16(4))
	for _, warn := range sc.GetWarnings() {
		c.Assert(warn.Level, Equals, stmtctx.WarnLevelWarning)
	}
}
