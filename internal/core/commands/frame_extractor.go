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

// This file defines the command that turns a local source video into an
// ordered set of key frames, one per detected scene.
//
// Logic Flow:
//  1. Read the local video path from the COR context.
//  2. Decode the video once through ffmpeg's scene filter to obtain a
//     scene-change score for every frame.
//  3. Reduce the scores to scene start frames: a frame whose score clears
//     the threshold starts a new scene, but only if the current scene has
//     already reached the minimum length, which suppresses flicker cuts.
//     A video with no detectable scene change at all fails the command.
//  4. Grab the first frame of each scene as a JPEG into a run-private
//     directory, named by scene ordinal so lexical order equals
//     chronological order.
//  5. Publish the ordered []model.KeyFrame to the context and register the
//     frame directory for end-of-run cleanup.
package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/adify/go-adify-backend/internal/core/cor"
	"github.com/adify/go-adify-backend/internal/core/model"
)

// MinSceneFrames is the minimum scene length in frames. Cuts closer
// together than this are treated as noise (flashes, rapid camera shake)
// and folded into the running scene.
const MinSceneFrames = 40

// DetectSceneStarts reduces per-frame scene scores to the start frames of
// the detected scenes. A cut opens a new scene when its score clears the
// threshold and the running scene has reached the minimum length; frame 0
// then opens the first scene. A video with no cut at all has no detectable
// scenes and yields nil, so callers can refuse it outright instead of
// treating the whole video as one scene. The input scores must be in frame
// order.
func DetectSceneStarts(scores []FrameScore, threshold float64, minSceneFrames int) []int {
	var cuts []int
	lastCut := 0
	for _, s := range scores {
		if s.Frame == 0 {
			continue
		}
		if s.Score >= threshold && s.Frame-lastCut >= minSceneFrames {
			cuts = append(cuts, s.Frame)
			lastCut = s.Frame
		}
	}
	if len(cuts) == 0 {
		return nil
	}
	return append([]int{0}, cuts...)
}

// KeyFrameExtractor is the command that extracts one representative frame
// per scene from a local source video.
type KeyFrameExtractor struct {
	cor.BaseCommand
	ffmpeg         *FFmpeg
	sceneThreshold float64
}

// NewKeyFrameExtractor creates the command with the given toolbox and
// scene-change threshold.
func NewKeyFrameExtractor(name string, ffmpeg *FFmpeg, sceneThreshold float64) *KeyFrameExtractor {
	return &KeyFrameExtractor{
		BaseCommand:    *cor.NewBaseCommand(name),
		ffmpeg:         ffmpeg,
		sceneThreshold: sceneThreshold,
	}
}

// Execute reads the source video path from the context and writes the
// ordered key frames to the output parameter.
func (c *KeyFrameExtractor) Execute(context cor.Context) {
	videoPath := context.Get(c.GetInputParam()).(string)

	scores, err := c.ffmpeg.SceneScores(context.GetContext(), videoPath)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), &model.ExtractionError{Path: videoPath, Err: err})
		return
	}
	if len(scores) == 0 {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), &model.ExtractionError{Path: videoPath, Err: errors.New("no decodable frames found")})
		return
	}

	starts := DetectSceneStarts(scores, c.sceneThreshold, MinSceneFrames)
	if len(starts) == 0 {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), &model.ExtractionError{Path: videoPath, Err: errors.New("no scene changes detected")})
		return
	}

	frameDir := filepath.Join(os.TempDir(), "frames-"+uuid.New().String())
	if err := os.MkdirAll(frameDir, 0o750); err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), &model.ExtractionError{Path: videoPath, Err: err})
		return
	}
	context.AddTempDir(frameDir)

	keyFrames := make([]model.KeyFrame, 0, len(starts))
	for i, frame := range starts {
		framePath := filepath.Join(frameDir, fmt.Sprintf("scene-%03d.jpg", i))
		if err := c.ffmpeg.GrabFrame(context.GetContext(), videoPath, frame, framePath); err != nil {
			c.GetErrorCounter().Add(context.GetContext(), 1)
			context.AddError(c.GetName(), &model.ExtractionError{Path: videoPath, Err: err})
			return
		}
		keyFrames = append(keyFrames, model.KeyFrame{Index: i, LocalPath: framePath})
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), keyFrames)
}
