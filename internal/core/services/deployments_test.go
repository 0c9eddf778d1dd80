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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestEntriesForMaterial verifies the fan-out from one material's stored
// campaign URL list to one labeled entry per link.
func TestEntriesForMaterial(t *testing.T) {
	entries := entriesForMaterial("C20250830001", "https://a.example/1, https://a.example/2")

	assert.Len(t, entries, 2)
	for i, entry := range entries {
		assert.Equal(t, "C20250830001", entry.MaterialID)
		assert.Equal(t, defaultCampaignLabel, entry.CampaignLabel)
		assert.Contains(t, entry.CampaignURL, "a.example")
		assert.NotContains(t, entry.CampaignURL, " ", "link %d should be trimmed", i)
	}
}

// TestEntriesForMaterialSkipsBlankLinks verifies that empty list slots
// contribute no entries, so a material with no campaign URLs at all fans
// out to nothing.
func TestEntriesForMaterialSkipsBlankLinks(t *testing.T) {
	assert.Len(t, entriesForMaterial("C20250830001", "https://a.example/1,,  "), 1)
	assert.Empty(t, entriesForMaterial("C20250830001", ""))
}

// TestNewGroupID verifies the group ID shape: "P", the creation second,
// and six uppercase hex characters.
func TestNewGroupID(t *testing.T) {
	now := time.Date(2025, 8, 30, 9, 15, 42, 0, time.UTC)

	id, err := newGroupID(now)
	assert.NoError(t, err)
	assert.Len(t, id, 21)
	assert.Equal(t, "P20250830091542", id[:15])
	assert.Regexp(t, "^[0-9A-F]{6}$", id[15:])

	// The random suffix keeps IDs minted within the same second apart.
	other, err := newGroupID(now)
	assert.NoError(t, err)
	assert.NotEqual(t, id, other)
}
