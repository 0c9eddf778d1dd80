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

// This file defines the command that brings a remote source video into the
// run's temporary workspace so the local ffmpeg tooling can operate on it.
package commands

import (
	"path/filepath"

	"github.com/adify/go-adify-backend/internal/cloud"
	"github.com/adify/go-adify-backend/internal/core/cor"
)

// SourceDownload fetches the video at the input URL to a temporary file
// and publishes the local path. Both the file and its run-private parent
// directory are registered for cleanup.
type SourceDownload struct {
	cor.BaseCommand
	downloader *cloud.Downloader
}

func NewSourceDownload(name string, downloader *cloud.Downloader) *SourceDownload {
	return &SourceDownload{
		BaseCommand: *cor.NewBaseCommand(name),
		downloader:  downloader,
	}
}

func (c *SourceDownload) Execute(context cor.Context) {
	sourceURL := context.Get(c.GetInputParam()).(string)

	localPath, err := c.downloader.Fetch(context.GetContext(), sourceURL)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), err)
		return
	}
	context.AddTempFile(localPath)
	context.AddTempDir(filepath.Dir(localPath))

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), localPath)
}
