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

package cloud

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/BurntSushi/toml"
)

const (
	// EnvConfigPrefix points at the directory holding the TOML config
	// files. Defaults to "configs" relative to the working directory.
	EnvConfigPrefix = "ADIFY_CONFIG_PREFIX"
	// EnvRuntime selects the runtime overlay file, e.g. "test" loads
	// .env.test.toml on top of .env.toml.
	EnvRuntime = "ADIFY_RUNTIME"

	baseConfigFile = ".env.toml"
)

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// GetConfig loads the layered application configuration. The base file
// .env.toml is always required; when ADIFY_RUNTIME is set, the overlay
// .env.<runtime>.toml is decoded on top of it so that later files win
// field by field. The directory is taken from ADIFY_CONFIG_PREFIX.
func GetConfig() (*Config, error) {
	prefix := os.Getenv(EnvConfigPrefix)
	if prefix == "" {
		prefix = "configs"
	}

	base := fmt.Sprintf("%s/%s", prefix, baseConfigFile)
	if !fileExists(base) {
		return nil, errors.New("base configuration file not found: " + base)
	}

	files := []string{base}
	if runtime := os.Getenv(EnvRuntime); runtime != "" {
		overlay := fmt.Sprintf("%s/.env.%s.toml", prefix, runtime)
		if fileExists(overlay) {
			files = append(files, overlay)
		} else {
			slog.Warn("runtime configuration overlay not found, using base only", "file", overlay)
		}
	}

	config := NewConfig()
	for _, file := range files {
		if _, err := toml.DecodeFile(file, config); err != nil {
			return nil, fmt.Errorf("failed to decode configuration file %s: %w", file, err)
		}
		slog.Info("loaded configuration file", "file", file)
	}
	return config, nil
}
