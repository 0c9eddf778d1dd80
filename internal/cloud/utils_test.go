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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

const baseTOML = `
[application]
name = "adify-backend"
thread_pool_size = 8

[generation]
base_url = "https://api.example.com"
poll_interval_seconds = 5
`

const overlayTOML = `
[generation]
poll_interval_seconds = 1
`

// TestGetConfigLayering verifies that the runtime overlay wins field by
// field while untouched base values survive, and that struct defaults fill
// whatever neither file mentions.
func TestGetConfigLayering(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, os.WriteFile(filepath.Join(dir, ".env.toml"), []byte(baseTOML), 0o600))
	assert.NoError(t, os.WriteFile(filepath.Join(dir, ".env.test.toml"), []byte(overlayTOML), 0o600))

	t.Setenv(EnvConfigPrefix, dir)
	t.Setenv(EnvRuntime, "test")

	config, err := GetConfig()
	assert.NoError(t, err)
	assert.Equal(t, "adify-backend", config.Application.Name)
	assert.Equal(t, 8, config.Application.ThreadPoolSize)
	// Overlay overrides the base value.
	assert.Equal(t, 1, config.Generation.PollIntervalSeconds)
	// Base value not mentioned by the overlay survives.
	assert.Equal(t, "https://api.example.com", config.Generation.BaseURL)
	// Neither file sets these, so the struct defaults apply.
	assert.Equal(t, 60, config.Generation.MaxPollAttempts)
	assert.InDelta(t, 0.27, config.Assembly.SceneThreshold, 1e-9)
}

// TestGetConfigMissingBase verifies the base file is mandatory.
func TestGetConfigMissingBase(t *testing.T) {
	t.Setenv(EnvConfigPrefix, t.TempDir())
	t.Setenv(EnvRuntime, "")

	_, err := GetConfig()
	assert.Error(t, err)
}

// TestGetConfigMissingOverlay verifies a missing overlay is tolerated and
// the base alone is used.
func TestGetConfigMissingOverlay(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, os.WriteFile(filepath.Join(dir, ".env.toml"), []byte(baseTOML), 0o600))

	t.Setenv(EnvConfigPrefix, dir)
	t.Setenv(EnvRuntime, "nonexistent")

	config, err := GetConfig()
	assert.NoError(t, err)
	assert.Equal(t, "adify-backend", config.Application.Name)
}

func TestDatabaseDSN(t *testing.T) {
	dsn := DatabaseConfig{Host: "db", Port: 3306, User: "u", Password: "p", Database: "adify"}.DSN()
	assert.Equal(t, "u:p@tcp(db:3306)/adify?parseTime=true&charset=utf8mb4", dsn)
}
