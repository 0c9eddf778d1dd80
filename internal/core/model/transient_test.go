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

// Package model_test contains unit tests for the transient pipeline
// models, in particular the positional image pairing and the ordering
// guarantees of segment batches.
package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/adify/go-adify-backend/internal/core/model"
)

// TestPairImages verifies that pairing is positional and that a length
// mismatch is rejected outright rather than truncated.
func TestPairImages(t *testing.T) {
	keyFrames := []string{"kf-0", "kf-1", "kf-2"}
	replacements := []string{"rp-0", "rp-1", "rp-2"}

	pairs, err := model.PairImages(keyFrames, replacements)
	assert.NoError(t, err)
	assert.Len(t, pairs, 3)
	for i, pair := range pairs {
		assert.Equal(t, keyFrames[i], pair.KeyFrameURL)
		assert.Equal(t, replacements[i], pair.ReplacementURL)
	}

	_, err = model.PairImages(keyFrames, replacements[:2])
	assert.ErrorIs(t, err, model.ErrPairMismatch)

	_, err = model.PairImages(nil, replacements)
	assert.ErrorIs(t, err, model.ErrPairMismatch)
}

// TestImagePairWireOrder verifies the wire order: key frame first,
// replacement second.
func TestImagePairWireOrder(t *testing.T) {
	pair := model.ImagePair{KeyFrameURL: "kf", ReplacementURL: "rp"}
	assert.Equal(t, []string{"kf", "rp"}, pair.URLs())
}

// TestSegmentBatchURLs verifies that a batch reports its clip URLs in
// segment order.
func TestSegmentBatchURLs(t *testing.T) {
	batch := &model.SegmentBatch{
		Segments: []model.Segment{
			{Index: 0, VideoURL: "clip-0"},
			{Index: 1, VideoURL: "clip-1"},
			{Index: 3, VideoURL: "clip-3"},
		},
		Failed: []model.SegmentFailure{{Index: 2, Reason: "timed out"}},
	}
	assert.Equal(t, []string{"clip-0", "clip-1", "clip-3"}, batch.URLs())
}
