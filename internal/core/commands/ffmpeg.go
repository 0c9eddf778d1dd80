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

// Package commands provides the concrete implementations of the Chain of
// Responsibility (COR) pattern's Command interface for the ad-video
// pipeline. This file wraps the ffmpeg and ffprobe executables behind a
// small toolbox type so the individual commands never build process
// invocations themselves.
package commands

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	DefaultFfmpegCommand  = "ffmpeg"
	DefaultFfprobeCommand = "ffprobe"
)

// FrameScore is the scene-change score ffmpeg assigned to one decoded
// frame: the likelihood (0..1) that the frame starts a new scene relative
// to the frame before it.
type FrameScore struct {
	Frame int
	Score float64
}

// FFmpeg is a thin wrapper around the ffmpeg and ffprobe executables.
type FFmpeg struct {
	ffmpegPath  string
	ffprobePath string
}

// NewFFmpeg creates the toolbox, falling back to executables on the PATH
// when the configuration leaves the paths empty.
func NewFFmpeg(ffmpegPath, ffprobePath string) *FFmpeg {
	if strings.TrimSpace(ffmpegPath) == "" {
		ffmpegPath = DefaultFfmpegCommand
	}
	if strings.TrimSpace(ffprobePath) == "" {
		ffprobePath = DefaultFfprobeCommand
	}
	return &FFmpeg{ffmpegPath: ffmpegPath, ffprobePath: ffprobePath}
}

// run executes the binary and returns a descriptive error carrying the
// tail of stderr, which is where ffmpeg reports its failures.
func run(ctx context.Context, binary string, args []string) error {
	cmd := exec.CommandContext(ctx, binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		detail := stderr.String()
		if len(detail) > 2048 {
			detail = detail[len(detail)-2048:]
		}
		return fmt.Errorf("%s failed: %w: %s", filepath.Base(binary), err, strings.TrimSpace(detail))
	}
	return nil
}

// SceneScores decodes the video once and returns the per-frame scene-change
// scores. It runs the select/metadata filter pair with the score threshold
// at zero so every frame is reported, and parses the metadata file the
// filter writes.
func (f *FFmpeg) SceneScores(ctx context.Context, videoPath string) ([]FrameScore, error) {
	metaFile, err := os.CreateTemp("", "scene-scores-")
	if err != nil {
		return nil, err
	}
	metaPath := metaFile.Name()
	_ = metaFile.Close()
	defer func() { _ = os.Remove(metaPath) }()

	args := []string{
		"-hide_banner", "-y",
		"-i", videoPath,
		"-vf", fmt.Sprintf("select='gte(scene,0)',metadata=print:file=%s", metaPath),
		"-an", "-f", "null", "-",
	}
	if err := run(ctx, f.ffmpegPath, args); err != nil {
		return nil, err
	}

	meta, err := os.Open(metaPath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = meta.Close() }()
	return parseSceneScores(meta)
}

// parseSceneScores reads the metadata filter's output, which alternates a
// "frame:N ..." header line with a "lavfi.scene_score=X" value line.
func parseSceneScores(r io.Reader) ([]FrameScore, error) {
	var scores []FrameScore
	frame := -1
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "frame:") {
			fields := strings.Fields(line)
			n, err := strconv.Atoi(strings.TrimPrefix(fields[0], "frame:"))
			if err != nil {
				continue
			}
			frame = n
			continue
		}
		if value, ok := strings.CutPrefix(line, "lavfi.scene_score="); ok && frame >= 0 {
			score, err := strconv.ParseFloat(value, 64)
			if err != nil {
				continue
			}
			scores = append(scores, FrameScore{Frame: frame, Score: score})
			frame = -1
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return scores, nil
}

// GrabFrame writes the frame with the given absolute frame number as a
// JPEG at outputPath.
func (f *FFmpeg) GrabFrame(ctx context.Context, videoPath string, frameNumber int, outputPath string) error {
	args := []string{
		"-hide_banner", "-y",
		"-i", videoPath,
		"-vf", fmt.Sprintf("select='eq(n\\,%d)'", frameNumber),
		"-vframes", "1",
		"-q:v", "2",
		outputPath,
	}
	return run(ctx, f.ffmpegPath, args)
}

// Duration returns the container duration of the media file in seconds.
func (f *FFmpeg) Duration(ctx context.Context, mediaPath string) (float64, error) {
	cmd := exec.CommandContext(ctx, f.ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		mediaPath,
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	duration, err := strconv.ParseFloat(strings.TrimSpace(stdout.String()), 64)
	if err != nil {
		return 0, fmt.Errorf("ffprobe produced an unparseable duration %q: %w", stdout.String(), err)
	}
	return duration, nil
}

// Concat joins the clips listed in order into one re-encoded video. The
// clips come from independent generation jobs and may differ in encoding
// parameters, so stream copy is not safe here. Audio is dropped; the score
// is muxed in afterwards.
func (f *FFmpeg) Concat(ctx context.Context, clipPaths []string, frameRate int, outputPath string) error {
	listFile, err := os.CreateTemp("", "concat-list-")
	if err != nil {
		return err
	}
	listPath := listFile.Name()
	defer func() { _ = os.Remove(listPath) }()

	var list strings.Builder
	for _, clip := range clipPaths {
		// Single quotes in the path terminate the quoted string for the
		// concat demuxer and must be escaped as '\''.
		escaped := strings.ReplaceAll(clip, "'", `'\''`)
		fmt.Fprintf(&list, "file '%s'\n", escaped)
	}
	if _, err := listFile.WriteString(list.String()); err != nil {
		_ = listFile.Close()
		return err
	}
	if err := listFile.Close(); err != nil {
		return err
	}

	args := []string{
		"-hide_banner", "-y",
		"-f", "concat", "-safe", "0",
		"-i", listPath,
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		"-r", strconv.Itoa(frameRate),
		"-an",
		outputPath,
	}
	return run(ctx, f.ffmpegPath, args)
}

// Mux combines the silent video with the background track. extraLoops is
// the number of additional passes over the audio file needed to cover the
// video; the output is cut to videoDuration, which trims the final loop.
func (f *FFmpeg) Mux(ctx context.Context, videoPath, audioPath string, extraLoops int, videoDuration float64, outputPath string) error {
	args := []string{
		"-hide_banner", "-y",
		"-i", videoPath,
		"-stream_loop", strconv.Itoa(extraLoops),
		"-i", audioPath,
		"-map", "0:v", "-map", "1:a",
		"-c:v", "copy",
		"-c:a", "aac",
		"-t", strconv.FormatFloat(videoDuration, 'f', 3, 64),
		outputPath,
	}
	return run(ctx, f.ffmpegPath, args)
}
