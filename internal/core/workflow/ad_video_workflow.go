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

// This file implements the two generation orchestrations. SegmentWorkflow
// runs only the submit/poll cycle and hands the per-slot results back to
// the caller. AdVideoWorkflow runs the full pipeline on top of it:
// segments, assembly with background music, title generation and the final
// upload.
package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/adify/go-adify-backend/internal/cloud"
	"github.com/adify/go-adify-backend/internal/core/commands"
	"github.com/adify/go-adify-backend/internal/core/cor"
	"github.com/adify/go-adify-backend/internal/core/model"
)

// SegmentWorkflow generates one video segment per key-frame/replacement
// pair and reports the outcome of every slot.
type SegmentWorkflow struct {
	cor.BaseCommand
	chain cor.Chain
}

func (w *SegmentWorkflow) Execute(context cor.Context) {
	w.chain.Execute(context)
}

// Run validates the pairing and executes the submit/poll cycle. A length
// mismatch between the two URL lists fails the whole run before anything
// is submitted.
func (w *SegmentWorkflow) Run(ctx context.Context, keyFrameURLs, replacementURLs []string, params model.GenerationParams) (*model.SegmentBatch, error) {
	pairs, err := model.PairImages(keyFrameURLs, replacementURLs)
	if err != nil {
		return nil, err
	}

	chainCtx := cor.NewBaseContext()
	defer chainCtx.Close()
	chainCtx.SetContext(ctx)
	chainCtx.Add(cor.CtxIn, &commands.SegmentRequest{Pairs: pairs, Params: params})

	w.Execute(chainCtx)

	if chainCtx.HasErrors() {
		return nil, firstError(chainCtx)
	}
	batch, ok := chainCtx.Get(cor.CtxIn).(*model.SegmentBatch)
	if !ok {
		return nil, fmt.Errorf("segment workflow produced no output")
	}
	return batch, nil
}

func (w *SegmentWorkflow) initializeChain(clients *cloud.ServiceClients, config *cloud.Config) {
	out := cor.NewBaseChain(w.GetName())
	out.AddCommand(newSegmentGenerator(clients, config))
	w.chain = out
}

// NewSegmentWorkflow builds the segment-only workflow.
func NewSegmentWorkflow(config *cloud.Config, clients *cloud.ServiceClients) *SegmentWorkflow {
	out := &SegmentWorkflow{BaseCommand: *cor.NewBaseCommand("segment-workflow")}
	out.initializeChain(clients, config)
	return out
}

func newSegmentGenerator(clients *cloud.ServiceClients, config *cloud.Config) *commands.SegmentGenerator {
	return commands.NewSegmentGenerator(
		"segment-generate",
		clients.Generation,
		config.Application.ThreadPoolSize,
		time.Duration(config.Generation.PollIntervalSeconds)*time.Second,
		config.Generation.MaxPollAttempts,
	)
}

// AdVideoWorkflow is the end-to-end orchestration: generate segments for
// every pair, assemble the survivors over a background track, title the
// result and publish it.
type AdVideoWorkflow struct {
	cor.BaseCommand
	chain cor.Chain
}

func (w *AdVideoWorkflow) Execute(context cor.Context) {
	w.chain.Execute(context)
}

// AdVideoResult is what a full run returns: the published video plus the
// per-slot generation report, so callers can see which key frames were
// dropped on the way.
type AdVideoResult struct {
	Video  *model.AssembledVideo  `json:"video"`
	Failed []model.SegmentFailure `json:"failed,omitempty"`
}

// Run executes the full pipeline. Generation failures of individual slots
// are tolerated and reported; everything after that is all-or-nothing.
func (w *AdVideoWorkflow) Run(ctx context.Context, keyFrameURLs, replacementURLs []string, params model.GenerationParams, productInfo string) (*AdVideoResult, error) {
	pairs, err := model.PairImages(keyFrameURLs, replacementURLs)
	if err != nil {
		return nil, err
	}

	chainCtx := cor.NewBaseContext()
	defer chainCtx.Close()
	chainCtx.SetContext(ctx)
	chainCtx.Add(cor.CtxIn, &commands.SegmentRequest{Pairs: pairs, Params: params})
	chainCtx.Add(commands.CtxProductInfo, productInfo)

	w.Execute(chainCtx)

	var failed []model.SegmentFailure
	if batch, ok := chainCtx.Get(commands.CtxSegmentBatch).(*model.SegmentBatch); ok && batch != nil {
		failed = batch.Failed
	}

	if chainCtx.HasErrors() {
		return nil, firstError(chainCtx)
	}
	video, ok := chainCtx.Get(cor.CtxIn).(*model.AssembledVideo)
	if !ok {
		return nil, fmt.Errorf("ad-video workflow produced no output")
	}
	return &AdVideoResult{Video: video, Failed: failed}, nil
}

func (w *AdVideoWorkflow) initializeChain(clients *cloud.ServiceClients, config *cloud.Config) {
	ffmpeg := commands.NewFFmpeg(config.Assembly.FFmpegPath, config.Assembly.FFprobePath)

	out := cor.NewBaseChain(w.GetName())
	out.AddCommand(newSegmentGenerator(clients, config))
	out.AddCommand(commands.NewVideoAssembler("video-assemble", clients.Downloader, ffmpeg, config.Assembly.AudioDir, config.Assembly.FrameRate))
	out.AddCommand(commands.NewTitleGenerator("title-generate", ffmpeg, clients.Title, config.Assembly.SceneThreshold))
	out.AddCommand(commands.NewFinalUpload("final-upload", clients.ObjectStore))
	w.chain = out
}

// NewAdVideoWorkflow builds the end-to-end workflow and its command chain.
func NewAdVideoWorkflow(config *cloud.Config, clients *cloud.ServiceClients) *AdVideoWorkflow {
	out := &AdVideoWorkflow{BaseCommand: *cor.NewBaseCommand("ad-video-workflow")}
	out.initializeChain(clients, config)
	return out
}
