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

package json

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"unicode/utf8"

	"github.com/pingcap/errors"
	"github.com/pingcap/parser/terror"
)

// BinaryJSON uses the MySQL 5.7 binary layout, with little-endian numbers.
//
// A container (object or array) starts with a header of two uint32, the
// element count and the size in bytes of the whole container. An object
// then has one key entry per key (uint32 offset, uint16 length) in sorted
// key order. Both kinds then have one value entry per element, a type code
// followed by a uint32 that is the literal itself for literals and the
// offset of the value otherwise. Offsets count from the container start.
// Keys and values follow the entries. A string is an uvarint length
// followed by its bytes.

// TypeCode indicates JSON type.
type TypeCode = byte

// Type codes of the binary layout.
const (
	TypeCodeObject  TypeCode = 0x01
	TypeCodeArray   TypeCode = 0x03
	TypeCodeLiteral TypeCode = 0x04
	TypeCodeInt64   TypeCode = 0x09
	TypeCodeUint64  TypeCode = 0x0a
	TypeCodeFloat64 TypeCode = 0x0b
	TypeCodeString  TypeCode = 0x0c
)

// Literal values, stored in a single byte.
const (
	LiteralNil   byte = 0x00
	LiteralTrue  byte = 0x01
	LiteralFalse byte = 0x02
)

const (
	containerHeaderLen = 8
	sizeFieldOff       = 4
	keyEntryLen        = 6
	valueEntryLen      = 5
	numberLen          = 8
)

var endian = binary.LittleEndian

var typeNames = map[TypeCode]string{
	TypeCodeObject:  "OBJECT",
	TypeCodeArray:   "ARRAY",
	TypeCodeInt64:   "INTEGER",
	TypeCodeUint64:  "UNSIGNED INTEGER",
	TypeCodeFloat64: "DOUBLE",
	TypeCodeString:  "STRING",
}

// BinaryJSON is a JSON document in binary form. Value holds the encoding
// of the top level value whose type is TypeCode.
type BinaryJSON struct {
	TypeCode TypeCode
	Value    []byte
}

// String returns the JSON text, with ", " and ": " separators.
func (bj BinaryJSON) String() string {
	out, err := bj.MarshalJSON()
	terror.Log(err)
	return string(out)
}

// Type returns the name JSON_TYPE would report. It panics on an unknown
// type code.
func (bj BinaryJSON) Type() string {
	if bj.TypeCode == TypeCodeLiteral {
		if bj.Value[0] == LiteralNil {
			return "NULL"
		}
		return "BOOLEAN"
	}
	name, ok := typeNames[bj.TypeCode]
	if !ok {
		panic(errUnknownTypeCode(bj.TypeCode))
	}
	return name
}

func errUnknownTypeCode(tp TypeCode) error {
	return errors.Errorf("unknown type code: %d", tp)
}

// GetInt64 gets the int64 value.
func (bj BinaryJSON) GetInt64() int64 { return int64(endian.Uint64(bj.Value)) }

// GetUint64 gets the uint64 value.
func (bj BinaryJSON) GetUint64() uint64 { return endian.Uint64(bj.Value) }

// GetFloat64 gets the float64 value.
func (bj BinaryJSON) GetFloat64() float64 { return math.Float64frombits(endian.Uint64(bj.Value)) }

// GetString gets the string value without its length prefix.
func (bj BinaryJSON) GetString() []byte {
	n, prefix := binary.Uvarint(bj.Value)
	return bj.Value[prefix : prefix+int(n)]
}

// GetElemCount gets the count of Object or Array.
func (bj BinaryJSON) GetElemCount() int { return int(endian.Uint32(bj.Value)) }

func (bj BinaryJSON) arrayGetElem(i int) BinaryJSON {
	return bj.valueAt(containerHeaderLen + i*valueEntryLen)
}

func (bj BinaryJSON) objectGetKey(i int) []byte {
	entry := bj.Value[containerHeaderLen+i*keyEntryLen:]
	off, n := endian.Uint32(entry), endian.Uint16(entry[4:])
	return bj.Value[off : off+uint32(n)]
}

func (bj BinaryJSON) objectGetVal(i int) BinaryJSON {
	return bj.valueAt(containerHeaderLen + bj.GetElemCount()*keyEntryLen + i*valueEntryLen)
}

// valueAt decodes the value entry at entryOff.
func (bj BinaryJSON) valueAt(entryOff int) BinaryJSON {
	tp := bj.Value[entryOff]
	payload := bj.Value[entryOff+1:]
	if tp == TypeCodeLiteral {
		return BinaryJSON{TypeCode: tp, Value: payload[:1]}
	}
	off := int(endian.Uint32(payload))
	var end int
	switch tp {
	case TypeCodeInt64, TypeCodeUint64, TypeCodeFloat64:
		end = off + numberLen
	case TypeCodeString:
		n, prefix := binary.Uvarint(bj.Value[off:])
		end = off + prefix + int(n)
	default:
		end = off + int(endian.Uint32(bj.Value[off+sizeFieldOff:]))
	}
	return BinaryJSON{TypeCode: tp, Value: bj.Value[off:end]}
}

// Validate checks that bj is well formed: every type code is known and
// every length and offset stays inside the value. A document that passes
// can be read by the getters and compared without panicking.
func (bj BinaryJSON) Validate() error {
	if err := validateValue(bj.TypeCode, bj.Value); err != nil {
		return ErrInvalidJSONText.GenWithStackByArgs(err)
	}
	return nil
}

func validateValue(tp TypeCode, v []byte) error {
	switch tp {
	case TypeCodeLiteral:
		if len(v) != 1 || v[0] > LiteralFalse {
			return errors.Errorf("invalid literal % x", v)
		}
	case TypeCodeInt64, TypeCodeUint64, TypeCodeFloat64:
		if len(v) != numberLen {
			return errors.Errorf("%s needs %d bytes, got %d", typeNames[tp], numberLen, len(v))
		}
	case TypeCodeString:
		n, prefix := binary.Uvarint(v)
		if prefix <= 0 || uint64(len(v)-prefix) != n {
			return errors.Errorf("string length does not match its %d bytes", len(v))
		}
	case TypeCodeObject, TypeCodeArray:
		return validateContainer(tp, v)
	default:
		return errUnknownTypeCode(tp)
	}
	return nil
}

func validateContainer(tp TypeCode, v []byte) error {
	size := uint64(len(v))
	if size < containerHeaderLen || uint64(endian.Uint32(v[sizeFieldOff:])) != size {
		return errors.Errorf("%s header does not match its %d bytes", typeNames[tp], size)
	}
	count := uint64(endian.Uint32(v))
	keyEntries := uint64(0)
	if tp == TypeCodeObject {
		keyEntries = count
	}
	valueEntries := containerHeaderLen + keyEntries*keyEntryLen
	if valueEntries+count*valueEntryLen > size {
		return errors.Errorf("%s of %d elements overflows its %d bytes", typeNames[tp], count, size)
	}
	for i := uint64(0); i < keyEntries; i++ {
		entry := v[containerHeaderLen+i*keyEntryLen:]
		off, n := uint64(endian.Uint32(entry)), uint64(endian.Uint16(entry[4:]))
		if off+n > size {
			return errors.Errorf("key %d out of bounds", i)
		}
	}
	for i := uint64(0); i < count; i++ {
		entry := v[valueEntries+i*valueEntryLen:]
		elemTp, off := entry[0], uint64(endian.Uint32(entry[1:]))
		if elemTp == TypeCodeLiteral {
			if off > uint64(LiteralFalse) {
				return errors.Errorf("invalid literal %d in element %d", off, i)
			}
			continue
		}
		if off >= size {
			return errors.Errorf("element %d out of bounds", i)
		}
		var end uint64
		switch elemTp {
		case TypeCodeInt64, TypeCodeUint64, TypeCodeFloat64:
			end = off + numberLen
		case TypeCodeString:
			n, prefix := binary.Uvarint(v[off:])
			if prefix <= 0 || n > size {
				return errors.Errorf("element %d has a bad string length", i)
			}
			end = off + uint64(prefix) + n
		case TypeCodeObject, TypeCodeArray:
			if off+containerHeaderLen > size {
				return errors.Errorf("element %d out of bounds", i)
			}
			end = off + uint64(endian.Uint32(v[off+sizeFieldOff:]))
		default:
			return errUnknownTypeCode(elemTp)
		}
		if end > size {
			return errors.Errorf("element %d out of bounds", i)
		}
		if err := validateValue(elemTp, v[off:end]); err != nil {
			return errors.Trace(err)
		}
	}
	return nil
}

// MarshalJSON implements the json.Marshaler interface.
func (bj BinaryJSON) MarshalJSON() ([]byte, error) {
	return bj.appendText(make([]byte, 0, len(bj.Value)*3/2))
}

func (bj BinaryJSON) appendText(buf []byte) ([]byte, error) {
	var err error
	switch bj.TypeCode {
	case TypeCodeLiteral:
		switch bj.Value[0] {
		case LiteralTrue:
			buf = append(buf, "true"...)
		case LiteralFalse:
			buf = append(buf, "false"...)
		default:
			buf = append(buf, "null"...)
		}
	case TypeCodeInt64:
		buf = strconv.AppendInt(buf, bj.GetInt64(), 10)
	case TypeCodeUint64:
		buf = strconv.AppendUint(buf, bj.GetUint64(), 10)
	case TypeCodeFloat64:
		f := bj.GetFloat64()
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return buf, &json.UnsupportedValueError{Str: strconv.FormatFloat(f, 'g', -1, 64)}
		}
		buf = strconv.AppendFloat(buf, f, 'g', -1, 64)
	case TypeCodeString:
		buf = appendQuoted(buf, bj.GetString())
	case TypeCodeArray:
		buf = append(buf, '[')
		for i, n := 0, bj.GetElemCount(); i < n && err == nil; i++ {
			if i > 0 {
				buf = append(buf, ", "...)
			}
			buf, err = bj.arrayGetElem(i).appendText(buf)
		}
		buf = append(buf, ']')
	case TypeCodeObject:
		buf = append(buf, '{')
		for i, n := 0, bj.GetElemCount(); i < n && err == nil; i++ {
			if i > 0 {
				buf = append(buf, ", "...)
			}
			buf = append(appendQuoted(buf, bj.objectGetKey(i)), ": "...)
			buf, err = bj.objectGetVal(i).appendText(buf)
		}
		buf = append(buf, '}')
	default:
		return nil, errUnknownTypeCode(bj.TypeCode)
	}
	if err != nil {
		return nil, errors.Trace(err)
	}
	return buf, nil
}

var shortEscapes = map[byte]string{
	'\\': `\\`,
	'"':  `\"`,
	'\n': `\n`,
	'\r': `\r`,
	'\t': `\t`,
}

const hexDigits = "0123456789abcdef"

// appendQuoted appends s as a JSON string. Invalid UTF-8 bytes become U+FFFD.
func appendQuoted(buf, s []byte) []byte {
	buf = append(buf, '"')
	for len(s) > 0 {
		b := s[0]
		if b >= utf8.RuneSelf {
			r, size := utf8.DecodeRune(s)
			if r == utf8.RuneError && size == 1 {
				buf = append(buf, string(utf8.RuneError)...)
			} else {
				buf = append(buf, s[:size]...)
			}
			s = s[size:]
			continue
		}
		if esc, ok := shortEscapes[b]; ok {
			buf = append(buf, esc...)
		} else if b < 0x20 {
			buf = append(buf, '\\', 'u', '0', '0', hexDigits[b>>4], hexDigits[b&0xF])
		} else {
			buf = append(buf, b)
		}
		s = s[1:]
	}
	return append(buf, '"')
}

// ParseBinaryFromString parses a JSON text. Any syntax error, including
// trailing data, is reported as ErrInvalidJSONText.
func ParseBinaryFromString(s string) (BinaryJSON, error) {
	if s == "" {
		return BinaryJSON{}, ErrInvalidJSONText.GenWithStackByArgs("The document is empty")
	}
	var bj BinaryJSON
	if err := bj.UnmarshalJSON([]byte(s)); err != nil {
		return BinaryJSON{}, ErrInvalidJSONText.GenWithStackByArgs(err)
	}
	return bj, nil
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (bj *BinaryJSON) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var in interface{}
	if err := dec.Decode(&in); err != nil {
		return errors.Trace(err)
	}
	if dec.More() {
		return errors.New("unexpected data after the JSON document")
	}
	enc := binaryEncoder{buf: make([]byte, 0, len(data))}
	tp, err := enc.encode(in)
	if err != nil {
		return errors.Trace(err)
	}
	*bj = BinaryJSON{TypeCode: tp, Value: enc.buf}
	return nil
}

// CreateBinary builds a BinaryJSON from Go values as produced by
// encoding/json, plus int, int64 and uint64. It panics on other types.
func CreateBinary(in interface{}) BinaryJSON {
	var enc binaryEncoder
	tp, err := enc.encode(in)
	if err != nil {
		panic(err)
	}
	return BinaryJSON{TypeCode: tp, Value: enc.buf}
}

// binaryEncoder appends the binary form of values to buf.
type binaryEncoder struct {
	buf []byte
}

func (e *binaryEncoder) putUint32(v uint32) {
	var b [4]byte
	endian.PutUint32(b[:], v)
	e.buf = append(e.buf, b[:]...)
}

func (e *binaryEncoder) putUint64(v uint64) {
	var b [numberLen]byte
	endian.PutUint64(b[:], v)
	e.buf = append(e.buf, b[:]...)
}

func (e *binaryEncoder) putString(s string) {
	var b [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(b[:], uint64(len(s)))
	e.buf = append(append(e.buf, b[:n]...), s...)
}

// encode appends in and returns its type code.
func (e *binaryEncoder) encode(in interface{}) (TypeCode, error) {
	switch x := in.(type) {
	case nil:
		e.buf = append(e.buf, LiteralNil)
		return TypeCodeLiteral, nil
	case bool:
		lit := LiteralFalse
		if x {
			lit = LiteralTrue
		}
		e.buf = append(e.buf, lit)
		return TypeCodeLiteral, nil
	case int:
		e.putUint64(uint64(x))
		return TypeCodeInt64, nil
	case int64:
		e.putUint64(uint64(x))
		return TypeCodeInt64, nil
	case uint64:
		e.putUint64(x)
		return TypeCodeUint64, nil
	case float64:
		e.putUint64(math.Float64bits(x))
		return TypeCodeFloat64, nil
	case json.Number:
		return e.encodeNumber(x)
	case string:
		e.putString(x)
		return TypeCodeString, nil
	case BinaryJSON:
		e.buf = append(e.buf, x.Value...)
		return x.TypeCode, nil
	case []interface{}:
		return TypeCodeArray, e.encodeContainer(len(x), nil, func(i int) interface{} { return x[i] })
	case map[string]interface{}:
		keys := make([]string, 0, len(x))
		for key := range x {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		return TypeCodeObject, e.encodeContainer(len(keys), keys, func(i int) interface{} { return x[keys[i]] })
	}
	return 0, errors.Errorf("unknown type: %T", in)
}

// encodeNumber keeps integers exact, using uint64 only beyond the int64 range.
func (e *binaryEncoder) encodeNumber(n json.Number) (TypeCode, error) {
	if i, err := n.Int64(); err == nil {
		e.putUint64(uint64(i))
		return TypeCodeInt64, nil
	}
	if u, err := strconv.ParseUint(n.String(), 10, 64); err == nil {
		e.putUint64(u)
		return TypeCodeUint64, nil
	}
	f, err := n.Float64()
	if err != nil {
		return 0, errors.Trace(err)
	}
	e.putUint64(math.Float64bits(f))
	return TypeCodeFloat64, nil
}

// encodeContainer appends an object when keys is not nil and an array
// otherwise. elem returns the i-th value.
func (e *binaryEncoder) encodeContainer(count int, keys []string, elem func(i int) interface{}) error {
	start := len(e.buf)
	e.putUint32(uint32(count))
	e.putUint32(0)

	keyEntries := len(e.buf)
	if keys != nil {
		e.buf = append(e.buf, make([]byte, count*keyEntryLen)...)
	}
	valueEntries := len(e.buf)
	e.buf = append(e.buf, make([]byte, count*valueEntryLen)...)

	for i, key := range keys {
		entry := e.buf[keyEntries+i*keyEntryLen:]
		endian.PutUint32(entry, uint32(len(e.buf)-start))
		endian.PutUint16(entry[4:], uint16(len(key)))
		e.buf = append(e.buf, key...)
	}
	for i := 0; i < count; i++ {
		valOff := len(e.buf) - start
		tp, err := e.encode(elem(i))
		if err != nil {
			return errors.Trace(err)
		}
		entry := e.buf[valueEntries+i*valueEntryLen:]
		entry[0] = tp
		if tp == TypeCodeLiteral {
			// Literals live in the entry, not after it.
			last := len(e.buf) - 1
			endian.PutUint32(entry[1:], uint32(e.buf[last]))
			e.buf = e.buf[:last]
			continue
		}
		endian.PutUint32(entry[1:], uint32(valOff))
	}
	endian.PutUint32(e.buf[start+sizeFieldOff:], uint32(len(e.buf)-start))
	return nil
}
