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

package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/adify/go-adify-backend/internal/core/model"
	"github.com/adify/go-adify-backend/internal/testutil"
)

// TestParseAdTitleFenced verifies parsing of a response wrapped in a
// markdown code fence, the most common model output shape.
func TestParseAdTitleFenced(t *testing.T) {
	title, err := ParseAdTitle(testutil.TitleResponseFenced())
	assert.NoError(t, err)
	assert.Equal(t, "焕新出行，一路随行", title)
}

// TestParseAdTitleChatty verifies that surrounding prose does not break
// the parse as long as a JSON object with the expected key is present.
func TestParseAdTitleChatty(t *testing.T) {
	title, err := ParseAdTitle(testutil.TitleResponseChatty())
	assert.NoError(t, err)
	assert.Equal(t, "轻盈一夏", title)
}

func TestParseAdTitleBare(t *testing.T) {
	title, err := ParseAdTitle(`{"广告标题": "限时特惠"}`)
	assert.NoError(t, err)
	assert.Equal(t, "限时特惠", title)
}

// TestParseAdTitleFailures verifies that unusable responses surface as
// TitleParseError carrying the raw output for diagnostics.
func TestParseAdTitleFailures(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"no json object", "很抱歉，我无法生成标题。"},
		{"wrong key", `{"title": "wrong key"}`},
		{"empty value", `{"广告标题": ""}`},
		{"broken json", `{"广告标题": "unterminated`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseAdTitle(tc.raw)
			var parseErr *model.TitleParseError
			assert.ErrorAs(t, err, &parseErr)
			assert.Equal(t, tc.raw, parseErr.Raw)
		})
	}
}
