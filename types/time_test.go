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
	"time"

	. "github.com/pingcap/check"
	"github.com/pingcap/copr/util/testleak"
	"github.com/pingcap/parser/mysql"
)

var _ = Suite(&testTimeSuite{})

type testTimeSuite struct {
}

func (s *testTimeSuite) TestParseTime(c *C) {
	defer testleak.AfterTest(c)()
	tests := []struct {
		input  string
		tp     byte
		fsp    int
		expect string
	}{
		{"2012-12-31 11:30:45", mysql.TypeDatetime, 0, "2012-12-31 11:30:45"},
		{"2012-12-31T11:30:45", mysql.TypeDatetime, 0, "2012-12-31 11:30:45"},
		{"2012-12-31 11:30:45.123456", mysql.TypeDatetime, 6, "2012-12-31 11:30:45.123456"},
		{"2012-12-31 11:30:45.125", mysql.TypeDatetime, 2, "2012-12-31 11:30:45.13"},
		{"2012-12-31 23:59:59.999", mysql.TypeDatetime, 2, "2013-01-01 00:00:00.00"},
		{"2012-12-31", mysql.TypeDate, 0, "2012-12-31"},
		{"2012-12-31 11:30:45", mysql.TypeDate, 0, "2012-12-31"},
		{"0000-00-00 00:00:00", mysql.TypeDatetime, 0, "0000-00-00 00:00:00"},
		{"2012-12-31 11:30:45", mysql.TypeTimestamp, UnspecifiedFsp, "2012-12-31 11:30:45"},
	}
	for _, t := range tests {
		tm, err := ParseTime(t.input, t.tp, t.fsp)
		c.Assert(err, IsNil, Commentf("%s", t.input))
		c.Assert(tm.String(), Equals, t.expect)
	}

	for _, bad := range []string{"2012-13-01", "2012-02-30 00:00:00", "2012-12-31 24:00:00", "abc", "2012-12", "2012-12-31 11:30:4x"} {
		_, err := ParseTime(bad, mysql.TypeDatetime, 0)
		c.Assert(ErrInvalidTimeFormat.Equal(err), IsTrue, Commentf("%s", bad))
	}
	_, err := ParseTime("2012-12-31", mysql.TypeDatetime, 7)
	c.Assert(ErrInvalidFsp.Equal(err), IsTrue)
}

func (s *testTimeSuite) TestTimeCompare(c *C) {
	defer testleak.AfterTest(c)()
	tests := []struct {
		a   string
		b   string
		cmp int
	}{
		{"2011-10-10 11:11:11", "2011-10-10 11:11:11", 0},
		{"2011-10-10 11:11:11.123456", "2011-10-10 11:11:11.1", 1},
		{"2011-10-10 11:11:11", "2011-10-10 11:11:11.123", -1},
		{"0000-00-00 00:00:00", "0001-01-01 00:00:00", -1},
		{"2010-01-01 00:00:00", "2009-12-31 23:59:59.999999", 1},
		{"9999-12-31 23:59:59", "1000-01-01 00:00:00", 1},
	}
	for _, t := range tests {
		a, err := ParseTime(t.a, mysql.TypeDatetime, MaxFsp)
		c.Assert(err, IsNil)
		b, err := ParseTime(t.b, mysql.TypeDatetime, MaxFsp)
		c.Assert(err, IsNil)
		c.Assert(a.Compare(b), Equals, t.cmp, Commentf("%v", t))
		c.Assert(b.Compare(a), Equals, -t.cmp, Commentf("%v", t))
	}

	// Type and fsp do not take part in ordering.
	date, err := ParseTime("2011-10-10", mysql.TypeDate, 0)
	c.Assert(err, IsNil)
	dt, err := ParseTime("2011-10-10 00:00:00.000", mysql.TypeDatetime, 3)
	c.Assert(err, IsNil)
	c.Assert(date.Compare(dt), Equals, 0)
}

func (s *testTimeSuite) TestPackedUint(c *C) {
	defer testleak.AfterTest(c)()
	for _, str := range []string{"0000-00-00 00:00:00", "2012-12-31 11:30:45.999999", "1970-01-01 00:00:01"} {
		t1, err := ParseTime(str, mysql.TypeDatetime, MaxFsp)
		c.Assert(err, IsNil)
		var t2 Time
		t2.Type, t2.Fsp = mysql.TypeDatetime, MaxFsp
		t2.FromPackedUint(t1.ToPackedUint())
		c.Assert(t2.Compare(t1), Equals, 0)
		c.Assert(t2.String(), Equals, t1.String())
	}
}

func (s *testTimeSuite) TestConvertTimeZone(c *C) {
	defer testleak.AfterTest(c)()
	loc := time.FixedZone("UTC+8", 8*3600)
	t, err := ParseTime("2019-06-30 20:00:00", mysql.TypeTimestamp, 0)
	c.Assert(err, IsNil)
	c.Assert(t.ConvertTimeZone(time.UTC, loc), IsNil)
	c.Assert(t.String(), Equals, "2019-07-01 04:00:00")

	zero := Time{Type: mysql.TypeTimestamp}
	c.Assert(zero.ConvertTimeZone(time.UTC, loc), IsNil)
	c.Assert(zero.IsZero(), IsTrue)
}

func (s *testTimeSuite) TestParseDuration(c *C) {
	defer testleak.AfterTest(c)()
	tests := []struct {
		input  string
		fsp    int
		expect string
	}{
		{"10:11:12", 0, "10:11:12"},
		{"101112", 0, "10:11:12"},
		{"10:11", 0, "10:11:00"},
		{"1 10:11:12", 0, "34:11:12"},
		{"-10:11:12.1", 1, "-10:11:12.1"},
		{"10:11:12.123456", 6, "10:11:12.123456"},
		{"10:11:12.5", 0, "10:11:13"},
		{"838:59:59", 0, "838:59:59"},
	}
	for _, t := range tests {
		d, err := ParseDuration(t.input, t.fsp)
		c.Assert(err, IsNil, Commentf("%s", t.input))
		c.Assert(d.String(), Equals, t.expect)
	}
	for _, bad := range []string{"839:00:00", "10:60:00", "10:11:12x", "abc", "x 10:00:00"} {
		_, err := ParseDuration(bad, 0)
		c.Assert(ErrInvalidDuration.Equal(err), IsTrue, Commentf("%s", bad))
	}
}

func (s *testTimeSuite) TestDurationCompare(c *C) {
	defer testleak.AfterTest(c)()
	tests := []struct {
		a   string
		b   string
		cmp int
	}{
		{"10:11:12", "10:11:12", 0},
		{"-10:11:12", "10:11:12", -1},
		{"10:11:12.1", "10:11:12", 1},
		{"1 00:00:00", "23:59:59", 1},
	}
	for _, t := range tests {
		a, err := ParseDuration(t.a, MaxFsp)
		c.Assert(err, IsNil)
		b, err := ParseDuration(t.b, MaxFsp)
		c.Assert(err, IsNil)
		c.Assert(a.Compare(b), Equals, t.cmp, Commentf("%v", t))
		c.Assert(b.Compare(a), Equals, -t.cmp, Commentf("%v", t))
	}
}
