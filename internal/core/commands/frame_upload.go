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

// This file defines the command that publishes extracted key frames to
// object storage so the generation service can fetch them by URL.
package commands

import (
	"golang.org/x/sync/errgroup"

	"github.com/adify/go-adify-backend/internal/cloud"
	"github.com/adify/go-adify-backend/internal/core/cor"
	"github.com/adify/go-adify-backend/internal/core/model"
)

// frameUploadPrefix is the object-name prefix for extracted key frames.
const frameUploadPrefix = "keyframes"

// FrameUpload uploads every key frame in the input slice and fills in its
// durable ImageURL. Uploads run in parallel; each goroutine writes only its
// own slot, so the slice keeps key-frame order regardless of completion
// order. One failed upload fails the command.
type FrameUpload struct {
	cor.BaseCommand
	store       *cloud.ObjectStore
	parallelism int
}

func NewFrameUpload(name string, store *cloud.ObjectStore, parallelism int) *FrameUpload {
	if parallelism <= 0 {
		parallelism = 4
	}
	return &FrameUpload{
		BaseCommand: *cor.NewBaseCommand(name),
		store:       store,
		parallelism: parallelism,
	}
}

func (c *FrameUpload) Execute(context cor.Context) {
	keyFrames := context.Get(c.GetInputParam()).([]model.KeyFrame)

	group, groupCtx := errgroup.WithContext(context.GetContext())
	group.SetLimit(c.parallelism)
	for i := range keyFrames {
		group.Go(func() error {
			stored, err := c.store.Upload(groupCtx, keyFrames[i].LocalPath, frameUploadPrefix)
			if err != nil {
				return err
			}
			keyFrames[i].ImageURL = stored.PreviewURL
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), err)
		return
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), keyFrames)
}
