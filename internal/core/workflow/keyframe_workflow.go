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

// Package workflow defines the high-level business orchestrations,
// combining individual commands into coherent pipelines. This file
// implements the key-frame extraction workflow: a remote source video in,
// an ordered list of durable key-frame URLs out.
package workflow

import (
	"context"
	"fmt"

	"github.com/adify/go-adify-backend/internal/cloud"
	"github.com/adify/go-adify-backend/internal/core/commands"
	"github.com/adify/go-adify-backend/internal/core/cor"
	"github.com/adify/go-adify-backend/internal/core/model"
)

// KeyFrameWorkflow orchestrates download, scene detection and frame upload
// for one source video.
type KeyFrameWorkflow struct {
	cor.BaseCommand
	chain cor.Chain
}

// Execute runs the workflow by invoking the underlying command chain.
func (w *KeyFrameWorkflow) Execute(context cor.Context) {
	w.chain.Execute(context)
}

// Run is the synchronous entry point used by the API layer. It builds a
// fresh chain context for the call, guarantees temp-file cleanup, and
// returns the uploaded key frames in scene order.
func (w *KeyFrameWorkflow) Run(ctx context.Context, sourceURL string) ([]model.KeyFrame, error) {
	chainCtx := cor.NewBaseContext()
	defer chainCtx.Close()
	chainCtx.SetContext(ctx)
	chainCtx.Add(cor.CtxIn, sourceURL)

	w.Execute(chainCtx)

	if chainCtx.HasErrors() {
		return nil, firstError(chainCtx)
	}
	keyFrames, ok := chainCtx.Get(cor.CtxIn).([]model.KeyFrame)
	if !ok {
		return nil, fmt.Errorf("key-frame workflow produced no output")
	}
	return keyFrames, nil
}

func (w *KeyFrameWorkflow) initializeChain(clients *cloud.ServiceClients, config *cloud.Config) {
	ffmpeg := commands.NewFFmpeg(config.Assembly.FFmpegPath, config.Assembly.FFprobePath)

	out := cor.NewBaseChain(w.GetName())
	out.AddCommand(commands.NewSourceDownload("source-download", clients.Downloader))
	out.AddCommand(commands.NewKeyFrameExtractor("key-frame-extract", ffmpeg, config.Assembly.SceneThreshold))
	out.AddCommand(commands.NewFrameUpload("frame-upload", clients.ObjectStore, config.Application.ThreadPoolSize))
	w.chain = out
}

// NewKeyFrameWorkflow builds the workflow and its command chain.
func NewKeyFrameWorkflow(config *cloud.Config, clients *cloud.ServiceClients) *KeyFrameWorkflow {
	out := &KeyFrameWorkflow{BaseCommand: *cor.NewBaseCommand("key-frame-workflow")}
	out.initializeChain(clients, config)
	return out
}

// firstError flattens the chain's error map into the single error the API
// layer reports. Chains stop at the first failing command, so the map
// holds one entry in practice.
func firstError(chainCtx cor.Context) error {
	for name, err := range chainCtx.GetErrors() {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}
