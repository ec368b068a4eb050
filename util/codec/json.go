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

package codec

import (
	"github.com/pingcap/copr/types/json"
	"github.com/pingcap/errors"
)

const jsonFlag byte = 10

// EncodeJSON appends the encoded JSON document to b. The layout is the flag
// byte, the type code, then the binary value as compact bytes.
func EncodeJSON(b []byte, j json.BinaryJSON) []byte {
	b = append(b, jsonFlag, j.TypeCode)
	return EncodeCompactBytes(b, j.Value)
}

// DecodeJSON decodes a JSON document encoded by EncodeJSON. A malformed
// binary value is reported as json.ErrInvalidJSONText.
func DecodeJSON(b []byte) ([]byte, json.BinaryJSON, error) {
	if len(b) < 2 {
		return nil, json.BinaryJSON{}, errors.New("insufficient bytes to decode value")
	}
	if b[0] != jsonFlag {
		return nil, json.BinaryJSON{}, errors.Errorf("invalid encoded key flag %v", b[0])
	}
	typeCode := b[1]
	b, value, err := DecodeCompactBytes(b[2:])
	if err != nil {
		return nil, json.BinaryJSON{}, errors.Trace(err)
	}
	j := json.BinaryJSON{TypeCode: typeCode, Value: value}
	if err = j.Validate(); err != nil {
		return nil, json.BinaryJSON{}, errors.Trace(err)
	}
	return b, j, nil
}
