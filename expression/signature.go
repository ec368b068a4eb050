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

package expression

import (
	"github.com/pingcap/parser/ast"
)

// cmpOp is a comparison operator. Its zero value is opLT, so the zero value
// of every signature type below is a valid signature.
type cmpOp uint8

const (
	opLT cmpOp = iota
	opLE
	opGT
	opGE
	opEQ
	opNE
	opNullEQ
)

var allCmpOps = [...]cmpOp{opLT, opLE, opGT, opGE, opEQ, opNE, opNullEQ}

var cmpOpNames = [...]string{
	opLT:     "LT",
	opLE:     "LE",
	opGT:     "GT",
	opGE:     "GE",
	opEQ:     "EQ",
	opNE:     "NE",
	opNullEQ: "NullEQ",
}

var cmpOpFuncNames = [...]string{
	opLT:     ast.LT,
	opLE:     ast.LE,
	opGT:     ast.GT,
	opGE:     ast.GE,
	opEQ:     ast.EQ,
	opNE:     ast.NE,
	opNullEQ: ast.NullEQ,
}

// holds maps a tri-state ordering to the truth of op. NullEQ uses the EQ rule,
// its NULL handling happens before any ordering exists.
func (op cmpOp) holds(cmp int) bool {
	switch op {
	case opLT:
		return cmp < 0
	case opLE:
		return cmp <= 0
	case opGT:
		return cmp > 0
	case opGE:
		return cmp >= 0
	case opNE:
		return cmp != 0
	}
	return cmp == 0
}

func (op cmpOp) String() string {
	return cmpOpNames[op]
}

// funcName is the lower case builtin name of the operator, e.g. "lt".
func (op cmpOp) funcName() string {
	return cmpOpFuncNames[op]
}

// IntCmpSig is a comparison signature of the integer domain.
type IntCmpSig struct{ op cmpOp }

// RealCmpSig is a comparison signature of the float64 domain.
type RealCmpSig struct{ op cmpOp }

// DecimalCmpSig is a comparison signature of the decimal domain.
type DecimalCmpSig struct{ op cmpOp }

// StringCmpSig is a comparison signature of the byte string domain.
type StringCmpSig struct{ op cmpOp }

// TimeCmpSig is a comparison signature of the DATE/DATETIME/TIMESTAMP domain.
type TimeCmpSig struct{ op cmpOp }

// DurationCmpSig is a comparison signature of the TIME domain.
type DurationCmpSig struct{ op cmpOp }

// JSONCmpSig is a comparison signature of the JSON domain.
type JSONCmpSig struct{ op cmpOp }

// Integer comparison signatures.
var (
	LTInt     = IntCmpSig{opLT}
	LEInt     = IntCmpSig{opLE}
	GTInt     = IntCmpSig{opGT}
	GEInt     = IntCmpSig{opGE}
	EQInt     = IntCmpSig{opEQ}
	NEInt     = IntCmpSig{opNE}
	NullEQInt = IntCmpSig{opNullEQ}
)

// Real comparison signatures.
var (
	LTReal     = RealCmpSig{opLT}
	LEReal     = RealCmpSig{opLE}
	GTReal     = RealCmpSig{opGT}
	GEReal     = RealCmpSig{opGE}
	EQReal     = RealCmpSig{opEQ}
	NEReal     = RealCmpSig{opNE}
	NullEQReal = RealCmpSig{opNullEQ}
)

// Decimal comparison signatures.
var (
	LTDecimal     = DecimalCmpSig{opLT}
	LEDecimal     = DecimalCmpSig{opLE}
	GTDecimal     = DecimalCmpSig{opGT}
	GEDecimal     = DecimalCmpSig{opGE}
	EQDecimal     = DecimalCmpSig{opEQ}
	NEDecimal     = DecimalCmpSig{opNE}
	NullEQDecimal = DecimalCmpSig{opNullEQ}
)

// String comparison signatures.
var (
	LTString     = StringCmpSig{opLT}
	LEString     = StringCmpSig{opLE}
	GTString     = StringCmpSig{opGT}
	GEString     = StringCmpSig{opGE}
	EQString     = StringCmpSig{opEQ}
	NEString     = StringCmpSig{opNE}
	NullEQString = StringCmpSig{opNullEQ}
)

// Time comparison signatures.
var (
	LTTime     = TimeCmpSig{opLT}
	LETime     = TimeCmpSig{opLE}
	GTTime     = TimeCmpSig{opGT}
	GETime     = TimeCmpSig{opGE}
	EQTime     = TimeCmpSig{opEQ}
	NETime     = TimeCmpSig{opNE}
	NullEQTime = TimeCmpSig{opNullEQ}
)

// Duration comparison signatures.
var (
	LTDuration     = DurationCmpSig{opLT}
	LEDuration     = DurationCmpSig{opLE}
	GTDuration     = DurationCmpSig{opGT}
	GEDuration     = DurationCmpSig{opGE}
	EQDuration     = DurationCmpSig{opEQ}
	NEDuration     = DurationCmpSig{opNE}
	NullEQDuration = DurationCmpSig{opNullEQ}
)

// JSON comparison signatures.
var (
	LTJSON     = JSONCmpSig{opLT}
	LEJSON     = JSONCmpSig{opLE}
	GTJSON     = JSONCmpSig{opGT}
	GEJSON     = JSONCmpSig{opGE}
	EQJSON     = JSONCmpSig{opEQ}
	NEJSON     = JSONCmpSig{opNE}
	NullEQJSON = JSONCmpSig{opNullEQ}
)

// Domain names, used in signature names and metrics labels.
const (
	DomainInt      = "Int"
	DomainReal     = "Real"
	DomainDecimal  = "Decimal"
	DomainString   = "String"
	DomainTime     = "Time"
	DomainDuration = "Duration"
	DomainJSON     = "JSON"
)

// String implements fmt.Stringer interface.
func (s IntCmpSig) String() string { return s.op.String() + DomainInt }

// String implements fmt.Stringer interface.
func (s RealCmpSig) String() string { return s.op.String() + DomainReal }

// String implements fmt.Stringer interface.
func (s DecimalCmpSig) String() string { return s.op.String() + DomainDecimal }

// String implements fmt.Stringer interface.
func (s StringCmpSig) String() string { return s.op.String() + DomainString }

// String implements fmt.Stringer interface.
func (s TimeCmpSig) String() string { return s.op.String() + DomainTime }

// String implements fmt.Stringer interface.
func (s DurationCmpSig) String() string { return s.op.String() + DomainDuration }

// String implements fmt.Stringer interface.
func (s JSONCmpSig) String() string { return s.op.String() + DomainJSON }
