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

// This file defines the command that names the assembled video. It runs
// scene detection over the final cut, grabs the first frame of every
// scene, and sends the frames with the product description to the
// multimodal title model, then parses the structured answer. All of the
// lenient response handling lives in ParseAdTitle so the rest of the
// pipeline never touches raw model output.
package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/adify/go-adify-backend/internal/cloud"
	"github.com/adify/go-adify-backend/internal/core/cor"
	"github.com/adify/go-adify-backend/internal/core/model"
)

// CtxProductInfo is the context key under which the workflow stores the
// caller's product description for the title model.
const CtxProductInfo = "product_info"

// adTitleKey is the JSON field the title model is instructed to answer
// with.
const adTitleKey = "广告标题"

// TitledVideo couples the assembled local video with its generated title,
// ready for the final upload.
type TitledVideo struct {
	LocalPath string
	Duration  float64
	Title     string
}

// ParseAdTitle extracts the ad title from raw model output. Models wrap
// their JSON in code fences or chatter more often than not, so the parser
// accepts anything containing a JSON object with the expected key: fences
// are stripped, and the outermost braces bound the candidate object.
func ParseAdTitle(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	candidate = strings.TrimPrefix(candidate, "```json")
	candidate = strings.TrimPrefix(candidate, "```")
	candidate = strings.TrimSuffix(candidate, "```")

	start := strings.Index(candidate, "{")
	end := strings.LastIndex(candidate, "}")
	if start < 0 || end <= start {
		return "", &model.TitleParseError{Raw: raw, Err: errors.New("no JSON object in response")}
	}
	candidate = candidate[start : end+1]

	var fields map[string]string
	if err := json.Unmarshal([]byte(candidate), &fields); err != nil {
		return "", &model.TitleParseError{Raw: raw, Err: err}
	}
	title := strings.TrimSpace(fields[adTitleKey])
	if title == "" {
		return "", &model.TitleParseError{Raw: raw, Err: fmt.Errorf("JSON object carries no %q field", adTitleKey)}
	}
	return title, nil
}

// TitleGenerator generates an ad title for the assembled video.
type TitleGenerator struct {
	cor.BaseCommand
	ffmpeg         *FFmpeg
	client         *cloud.TitleClient
	sceneThreshold float64
}

func NewTitleGenerator(name string, ffmpeg *FFmpeg, client *cloud.TitleClient, sceneThreshold float64) *TitleGenerator {
	return &TitleGenerator{
		BaseCommand:    *cor.NewBaseCommand(name),
		ffmpeg:         ffmpeg,
		client:         client,
		sceneThreshold: sceneThreshold,
	}
}

func (c *TitleGenerator) Execute(context cor.Context) {
	result := context.Get(c.GetInputParam()).(*AssemblyResult)

	productInfo, _ := context.Get(CtxProductInfo).(string)

	// The final cut gets the same scene treatment as the source video:
	// one frame per detected scene, so the title model sees every segment
	// that made it into the assembly.
	scores, err := c.ffmpeg.SceneScores(context.GetContext(), result.LocalPath)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), &model.ExtractionError{Path: result.LocalPath, Err: err})
		return
	}
	starts := DetectSceneStarts(scores, c.sceneThreshold, MinSceneFrames)
	if len(starts) == 0 {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), &model.ExtractionError{Path: result.LocalPath, Err: errors.New("no scene changes detected in assembled video")})
		return
	}

	framePaths := make([]string, 0, len(starts))
	workDir := filepath.Dir(result.LocalPath)
	for i, frame := range starts {
		framePath := filepath.Join(workDir, fmt.Sprintf("title-scene-%03d.jpg", i))
		if err := c.ffmpeg.GrabFrame(context.GetContext(), result.LocalPath, frame, framePath); err != nil {
			c.GetErrorCounter().Add(context.GetContext(), 1)
			context.AddError(c.GetName(), &model.ExtractionError{Path: result.LocalPath, Err: err})
			return
		}
		context.AddTempFile(framePath)
		framePaths = append(framePaths, framePath)
	}

	raw, err := c.client.GenerateTitle(context.GetContext(), productInfo, framePaths)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), err)
		return
	}
	title, err := ParseAdTitle(raw)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), err)
		return
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), &TitledVideo{
		LocalPath: result.LocalPath,
		Duration:  result.Duration,
		Title:     title,
	})
}
