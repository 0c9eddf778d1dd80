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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestDetectSceneStartsThreshold verifies that only frames whose score
// clears the threshold start a new scene, and that frame 0 always opens
// the first one.
func TestDetectSceneStartsThreshold(t *testing.T) {
	scores := []FrameScore{
		{Frame: 0, Score: 0},
		{Frame: 50, Score: 0.1},
		{Frame: 100, Score: 0.5},
		{Frame: 200, Score: 0.3},
	}
	starts := DetectSceneStarts(scores, 0.27, MinSceneFrames)
	assert.Equal(t, []int{0, 100, 200}, starts)
}

// TestDetectSceneStartsMergesShortScenes verifies the minimum-length rule:
// a cut landing within MinSceneFrames of the previous cut is absorbed into
// the running scene even when its score is high.
func TestDetectSceneStartsMergesShortScenes(t *testing.T) {
	scores := []FrameScore{
		{Frame: 0, Score: 0},
		{Frame: 100, Score: 0.9},
		{Frame: 120, Score: 0.9}, // 20 frames after the last cut, absorbed.
		{Frame: 141, Score: 0.9},
	}
	starts := DetectSceneStarts(scores, 0.27, 40)
	assert.Equal(t, []int{0, 100, 141}, starts)
}

// TestDetectSceneStartsNoCuts verifies that a video with no score above
// the threshold yields no scene starts at all. Frame 0 opens the first
// scene only once an actual cut exists; a cut-free video must be refused
// by the extractor, not reduced to a single whole-video scene.
func TestDetectSceneStartsNoCuts(t *testing.T) {
	scores := []FrameScore{
		{Frame: 0, Score: 0},
		{Frame: 60, Score: 0.05},
		{Frame: 120, Score: 0.12},
	}
	starts := DetectSceneStarts(scores, 0.27, 40)
	assert.Empty(t, starts)
}

// TestDetectSceneStartsSingleCut verifies that the first real cut brings
// frame 0 along with it as the start of the opening scene.
func TestDetectSceneStartsSingleCut(t *testing.T) {
	scores := []FrameScore{
		{Frame: 0, Score: 0},
		{Frame: 90, Score: 0.8},
	}
	starts := DetectSceneStarts(scores, 0.27, 40)
	assert.Equal(t, []int{0, 90}, starts)
}

// TestParseSceneScores verifies the parsing of the metadata filter's
// alternating header/value line format, including interleaved noise lines.
func TestParseSceneScores(t *testing.T) {
	raw := strings.Join([]string{
		"frame:0    pts:1      pts_time:0.04",
		"lavfi.scene_score=0.000000",
		"frame:106  pts:4416   pts_time:4.416",
		"lavfi.scene_score=0.356892",
		"some unrelated line",
		"frame:240  pts:10000  pts_time:10.0",
		"lavfi.scene_score=0.812345",
	}, "\n")

	scores, err := parseSceneScores(strings.NewReader(raw))
	assert.NoError(t, err)
	assert.Equal(t, []FrameScore{
		{Frame: 0, Score: 0},
		{Frame: 106, Score: 0.356892},
		{Frame: 240, Score: 0.812345},
	}, scores)
}
