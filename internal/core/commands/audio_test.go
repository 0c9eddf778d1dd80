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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/adify/go-adify-backend/internal/core/model"
)

// TestPlanAudioLoopsAndTruncates covers a track shorter than the video:
// it loops, and the last pass is cut.
func TestPlanAudioLoopsAndTruncates(t *testing.T) {
	plan, err := PlanAudio(37, 10)
	assert.NoError(t, err)
	assert.Equal(t, 3, plan.ExtraLoops)
	assert.InDelta(t, 37.0, plan.OutputDuration, 1e-9)
	assert.InDelta(t, 7.0, plan.FinalLoopSeconds, 1e-9)
}

// TestPlanAudioTruncatesLongTrack covers a track longer than the video: a
// single pass, cut at the video's end.
func TestPlanAudioTruncatesLongTrack(t *testing.T) {
	plan, err := PlanAudio(8, 20)
	assert.NoError(t, err)
	assert.Equal(t, 0, plan.ExtraLoops)
	assert.InDelta(t, 8.0, plan.OutputDuration, 1e-9)
	assert.InDelta(t, 8.0, plan.FinalLoopSeconds, 1e-9)
}

// TestPlanAudioExactMultiple covers the edge where the video length is an
// exact multiple of the track: the last pass plays in full.
func TestPlanAudioExactMultiple(t *testing.T) {
	plan, err := PlanAudio(20, 10)
	assert.NoError(t, err)
	assert.Equal(t, 1, plan.ExtraLoops)
	assert.InDelta(t, 10.0, plan.FinalLoopSeconds, 1e-9)
}

func TestPlanAudioRejectsNonPositiveDurations(t *testing.T) {
	_, err := PlanAudio(0, 10)
	assert.Error(t, err)
	_, err = PlanAudio(10, 0)
	assert.Error(t, err)
	_, err = PlanAudio(-5, 10)
	assert.Error(t, err)
}

// TestPickAudioTrackEmptyPool verifies that an empty pool is an assembly
// error, never a silent fallback.
func TestPickAudioTrackEmptyPool(t *testing.T) {
	dir := t.TempDir()

	_, err := PickAudioTrack(dir)
	var assemblyErr *model.AssemblyError
	assert.ErrorAs(t, err, &assemblyErr)
	assert.Equal(t, "audio-select", assemblyErr.Stage)
}

func TestPickAudioTrackFiltersByExtension(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))
	assert.NoError(t, os.WriteFile(filepath.Join(dir, "track.mp3"), []byte("x"), 0o600))

	track, err := PickAudioTrack(dir)
	assert.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "track.mp3"), track)
}
