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

// This file defines the last command of the ad-video workflow: publishing
// the titled final cut to object storage and emitting the immutable
// AssembledVideo record.
package commands

import (
	"github.com/adify/go-adify-backend/internal/cloud"
	"github.com/adify/go-adify-backend/internal/core/cor"
	"github.com/adify/go-adify-backend/internal/core/model"
)

// videoUploadPrefix is the object-name prefix for assembled videos.
const videoUploadPrefix = "videos"

// FinalUpload uploads the assembled video and produces the
// *model.AssembledVideo that the API returns to the caller.
type FinalUpload struct {
	cor.BaseCommand
	store *cloud.ObjectStore
}

func NewFinalUpload(name string, store *cloud.ObjectStore) *FinalUpload {
	return &FinalUpload{
		BaseCommand: *cor.NewBaseCommand(name),
		store:       store,
	}
}

func (c *FinalUpload) Execute(context cor.Context) {
	titled := context.Get(c.GetInputParam()).(*TitledVideo)

	stored, err := c.store.Upload(context.GetContext(), titled.LocalPath, videoUploadPrefix)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), err)
		return
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), &model.AssembledVideo{
		VideoURL:   stored.URL,
		PreviewURL: stored.PreviewURL,
		Title:      titled.Title,
		Duration:   titled.Duration,
	})
}
