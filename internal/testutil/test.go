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

// Package testutil provides helpers shared by the test suite: loading the
// test-runtime configuration regardless of which package directory the
// tests run from, and small fixtures for the generation pipeline.
package testutil

import (
	"log"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/adify/go-adify-backend/internal/cloud"
)

type stateManager struct {
	config *cloud.Config
}

// state caches the configuration so it loads once per test run.
var state = &stateManager{}

// configDir resolves the repository's configs directory relative to this
// source file, so tests work from any package directory.
func configDir() string {
	_, thisFile, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(thisFile), "..", "..", "configs")
}

// GetConfig loads the layered configuration with the "test" runtime
// overlay applied.
func GetConfig() *cloud.Config {
	if state.config == nil {
		if err := os.Setenv(cloud.EnvConfigPrefix, configDir()); err != nil {
			log.Fatalf("failed to set config prefix: %v\n", err)
		}
		if err := os.Setenv(cloud.EnvRuntime, "test"); err != nil {
			log.Fatalf("failed to set runtime: %v\n", err)
		}
		config, err := cloud.GetConfig()
		if err != nil {
			log.Fatalf("failed to load test configuration: %v\n", err)
		}
		state.config = config
	}
	return state.config
}

// HandleErr fails the test when err is set. Convenience to cut boilerplate
// in tests that only care about the happy path.
func HandleErr(err error, t *testing.T) {
	t.Helper()
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

// TitleResponseFenced is a representative title-model answer wrapped in a
// markdown code fence.
func TitleResponseFenced() string {
	return "```json\n{\"广告标题\": \"焕新出行，一路随行\"}\n```"
}

// TitleResponseChatty is a representative answer where the model talks
// around the JSON object.
func TitleResponseChatty() string {
	return "当然，以下是为您生成的标题：\n{\"广告标题\": \"轻盈一夏\"}\n希望有帮助！"
}
