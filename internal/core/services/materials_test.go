// Copyright 2025 Adify Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package services

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/adify/go-adify-backend/internal/core/model"
)

// TestFormatMaterialID verifies the shape of allocated IDs: prefix, date,
// zero-padded three-digit sequence.
func TestFormatMaterialID(t *testing.T) {
	day := time.Date(2025, 8, 30, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "C20250830001", formatMaterialID("C", day, 1))
	assert.Equal(t, "C20250830002", formatMaterialID("C", day, 2))
	assert.Equal(t, "CW20250830013", formatMaterialID("CW", day, 13))
}

// TestMaterialIDPrefix verifies the source-type to prefix mapping.
func TestMaterialIDPrefix(t *testing.T) {
	assert.Equal(t, "C", materialIDPrefix(model.SourceTypeInternal))
	assert.Equal(t, "CW", materialIDPrefix(model.SourceTypeExternal))
}

// TestMaterialSequenceRoundTrip verifies the allocation arithmetic end to
// end: reading the sequence back out of a rendered ID at the SUBSTRING
// offset the MAX query uses, incrementing it, and rendering again yields
// the next ID for the same day.
func TestMaterialSequenceRoundTrip(t *testing.T) {
	day := time.Date(2025, 8, 30, 12, 0, 0, 0, time.UTC)

	for _, prefix := range []string{"C", "CW"} {
		id := formatMaterialID(prefix, day, 1)

		// materialSequenceStart is 1-based to match SQL SUBSTRING.
		seq, err := strconv.Atoi(id[materialSequenceStart(prefix)-1:])
		assert.NoError(t, err)
		assert.Equal(t, 1, seq)

		next := formatMaterialID(prefix, day, seq+1)
		assert.Equal(t, prefix+"20250830002", next)
	}
}
