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

// This file defines the command that turns a batch of generated segments
// into one scored local video file. Assembly is all-or-nothing: any
// failure leaves no partial artifact behind, only an AssemblyError.
package commands

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/adify/go-adify-backend/internal/cloud"
	"github.com/adify/go-adify-backend/internal/core/cor"
	"github.com/adify/go-adify-backend/internal/core/model"
)

// AssemblyResult is the local artifact produced by the assembler: the
// scored video on disk and its measured duration.
type AssemblyResult struct {
	LocalPath string
	Duration  float64
}

// VideoAssembler downloads the batch's clips in key-frame order,
// concatenates them into a silent video, then loops and truncates a
// randomly chosen background track to cover it exactly.
type VideoAssembler struct {
	cor.BaseCommand
	downloader *cloud.Downloader
	ffmpeg     *FFmpeg
	audioDir   string
	frameRate  int
}

func NewVideoAssembler(name string, downloader *cloud.Downloader, ffmpeg *FFmpeg, audioDir string, frameRate int) *VideoAssembler {
	if frameRate <= 0 {
		frameRate = 24
	}
	return &VideoAssembler{
		BaseCommand: *cor.NewBaseCommand(name),
		downloader:  downloader,
		ffmpeg:      ffmpeg,
		audioDir:    audioDir,
		frameRate:   frameRate,
	}
}

func (c *VideoAssembler) fail(context cor.Context, stage string, err error) {
	c.GetErrorCounter().Add(context.GetContext(), 1)
	context.AddError(c.GetName(), &model.AssemblyError{Stage: stage, Err: err})
}

func (c *VideoAssembler) Execute(context cor.Context) {
	batch := context.Get(c.GetInputParam()).(*model.SegmentBatch)
	if len(batch.Segments) == 0 {
		c.fail(context, "validate", errors.New("no segments available for assembly"))
		return
	}

	workDir := filepath.Join(os.TempDir(), "assembly-"+uuid.New().String())
	if err := os.MkdirAll(workDir, 0o750); err != nil {
		c.fail(context, "workspace", err)
		return
	}
	context.AddTempDir(workDir)

	// Download the clips in parallel; slot assignment keeps the key-frame
	// order regardless of which download finishes first.
	clipPaths := make([]string, len(batch.Segments))
	group, groupCtx := errgroup.WithContext(context.GetContext())
	group.SetLimit(4)
	for i := range batch.Segments {
		group.Go(func() error {
			path, err := c.downloader.Fetch(groupCtx, batch.Segments[i].VideoURL)
			if err != nil {
				return err
			}
			clipPaths[i] = path
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		c.fail(context, "download", err)
		return
	}
	for _, path := range clipPaths {
		context.AddTempFile(path)
		context.AddTempDir(filepath.Dir(path))
	}

	silentPath := filepath.Join(workDir, "silent.mp4")
	if err := c.ffmpeg.Concat(context.GetContext(), clipPaths, c.frameRate, silentPath); err != nil {
		c.fail(context, "concat", err)
		return
	}

	track, err := PickAudioTrack(c.audioDir)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), err)
		return
	}

	videoDuration, err := c.ffmpeg.Duration(context.GetContext(), silentPath)
	if err != nil {
		c.fail(context, "probe-video", err)
		return
	}
	trackDuration, err := c.ffmpeg.Duration(context.GetContext(), track)
	if err != nil {
		c.fail(context, "probe-audio", err)
		return
	}
	plan, err := PlanAudio(videoDuration, trackDuration)
	if err != nil {
		c.fail(context, "audio-plan", err)
		return
	}

	finalPath := filepath.Join(workDir, "final.mp4")
	if err := c.ffmpeg.Mux(context.GetContext(), silentPath, track, plan.ExtraLoops, plan.OutputDuration, finalPath); err != nil {
		c.fail(context, "mux", err)
		return
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), &AssemblyResult{LocalPath: finalPath, Duration: videoDuration})
}
