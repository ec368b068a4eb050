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

// Package codec holds the byte layouts constants travel in inside a
// coprocessor expression tree. Fixed width values are big endian and
// memcomparable: the encoded bytes sort like the values they hold.
package codec

import (
	"encoding/binary"
	"math"

	"github.com/pingcap/errors"
)

const signMask uint64 = 0x8000000000000000

var errInsufficientBytes = errors.New("insufficient bytes to decode value")

func appendUint64(b []byte, u uint64) []byte {
	var data [8]byte
	binary.BigEndian.PutUint64(data[:], u)
	return append(b, data[:]...)
}

func readUint64(b []byte) ([]byte, uint64, error) {
	if len(b) < 8 {
		return nil, 0, errors.Trace(errInsufficientBytes)
	}
	return b[8:], binary.BigEndian.Uint64(b), nil
}

// EncodeInt appends v to b with the sign bit flipped, so negative values
// sort before positive ones.
func EncodeInt(b []byte, v int64) []byte {
	return appendUint64(b, uint64(v)^signMask)
}

// DecodeInt decodes a value written by EncodeInt and returns the remaining bytes.
func DecodeInt(b []byte) ([]byte, int64, error) {
	b, u, err := readUint64(b)
	return b, int64(u ^ signMask), err
}

// EncodeUint appends v to b.
func EncodeUint(b []byte, v uint64) []byte {
	return appendUint64(b, v)
}

// DecodeUint decodes a value written by EncodeUint.
func DecodeUint(b []byte) ([]byte, uint64, error) {
	return readUint64(b)
}

// EncodeFloat appends v to b. Non-negative values get the sign bit set and
// negative ones are inverted, which keeps the byte order equal to the
// numeric order.
func EncodeFloat(b []byte, v float64) []byte {
	u := math.Float64bits(v)
	if v >= 0 {
		u |= signMask
	} else {
		u = ^u
	}
	return appendUint64(b, u)
}

// DecodeFloat decodes a value written by EncodeFloat.
func DecodeFloat(b []byte) ([]byte, float64, error) {
	b, u, err := readUint64(b)
	if err != nil {
		return nil, 0, err
	}
	if u&signMask != 0 {
		u &^= signMask
	} else {
		u = ^u
	}
	return b, math.Float64frombits(u), nil
}

// EncodeCompactBytes appends data prefixed by its varint length. The
// result is not memcomparable.
func EncodeCompactBytes(b []byte, data []byte) []byte {
	var lenBuf [binary.MaxVarintLen64]byte
	n := binary.PutVarint(lenBuf[:], int64(len(data)))
	if free := cap(b) - len(b); free < n+len(data) {
		grown := make([]byte, len(b), len(b)+n+len(data))
		copy(grown, b)
		b = grown
	}
	b = append(b, lenBuf[:n]...)
	return append(b, data...)
}

// DecodeCompactBytes decodes bytes written by EncodeCompactBytes. The
// returned data aliases b.
func DecodeCompactBytes(b []byte) ([]byte, []byte, error) {
	n, read := binary.Varint(b)
	switch {
	case read == 0:
		return nil, nil, errors.Trace(errInsufficientBytes)
	case read < 0:
		return nil, nil, errors.New("value larger than 64 bits")
	}
	b = b[read:]
	if n < 0 || int64(len(b)) < n {
		return nil, nil, errors.Errorf("insufficient bytes to decode value, expected length: %v", n)
	}
	return b[n:], b[:n], nil
}
