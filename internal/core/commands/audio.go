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

// This file holds the background-music half of final assembly: choosing a
// track from the configured pool and reconciling its length with the
// video's. The reconciliation arithmetic is kept as a pure function so the
// looping and truncation rules are testable without media files.
package commands

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/adify/go-adify-backend/internal/core/model"
)

// audioExtensions are the file types accepted from the background-music
// pool directory.
var audioExtensions = map[string]bool{
	".mp3": true,
	".wav": true,
	".m4a": true,
	".aac": true,
}

// AudioPlan describes how one background track covers one video. The track
// is played ExtraLoops+1 times in total; the output is cut at
// OutputDuration, so only FinalLoopSeconds of the last pass are heard.
type AudioPlan struct {
	ExtraLoops       int     // Additional full passes after the first one.
	OutputDuration   float64 // Always exactly the video duration.
	FinalLoopSeconds float64 // Audible portion of the last pass.
}

// PlanAudio computes the loop-and-truncate plan that makes the track's
// audible length exactly match the video. A track longer than the video is
// simply cut; a shorter one is looped and its last pass cut. A 37s video
// over a 10s track plays the track four times with the last pass cut to 7s.
func PlanAudio(videoDuration, trackDuration float64) (AudioPlan, error) {
	if videoDuration <= 0 {
		return AudioPlan{}, fmt.Errorf("video duration must be positive, got %v", videoDuration)
	}
	if trackDuration <= 0 {
		return AudioPlan{}, fmt.Errorf("track duration must be positive, got %v", trackDuration)
	}

	totalLoops := int(math.Ceil(videoDuration / trackDuration))
	if totalLoops < 1 {
		totalLoops = 1
	}
	final := videoDuration - float64(totalLoops-1)*trackDuration
	return AudioPlan{
		ExtraLoops:       totalLoops - 1,
		OutputDuration:   videoDuration,
		FinalLoopSeconds: final,
	}, nil
}

// PickAudioTrack selects one track at random from the pool directory. An
// empty or unreadable pool is an assembly failure: the pipeline never
// produces a silent video as a fallback.
func PickAudioTrack(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", &model.AssemblyError{Stage: "audio-select", Err: err}
	}

	var tracks []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if audioExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			tracks = append(tracks, filepath.Join(dir, entry.Name()))
		}
	}
	if len(tracks) == 0 {
		return "", &model.AssemblyError{Stage: "audio-select", Err: errors.New("no audio tracks in pool directory " + dir)}
	}
	return tracks[rand.Intn(len(tracks))], nil
}
