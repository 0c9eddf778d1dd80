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

// Package cloud defines the data structures for application configuration,
// loaded from TOML files, together with the clients for every external
// collaborator the pipeline talks to: the object store, the relational
// store, the generation service and the title model.
//
// This file centralizes the configuration structs so the application's
// tunable surface is visible in one place.
//
// Structs:
//   - StorageConfig:    MinIO-compatible object storage settings.
//   - DatabaseConfig:   MySQL connection settings.
//   - GenerationConfig: the asynchronous video-generation service.
//   - TitleConfig:      the multimodal title-generation model.
//   - AssemblyConfig:   ffmpeg/ffprobe paths and assembly tunables.
//   - Config:           the top-level aggregate.
package cloud

import "fmt"

// StorageConfig holds the settings for the MinIO-compatible object store
// that receives extracted frames and assembled videos.
type StorageConfig struct {
	Endpoint    string `toml:"endpoint"`     // Host:port of the object store.
	AccessKey   string `toml:"access_key"`   // Access key ID.
	SecretKey   string `toml:"secret_key"`   // Secret access key.
	UseSSL      bool   `toml:"use_ssl"`      // Whether to connect over TLS.
	Bucket      string `toml:"bucket"`       // Destination bucket for all uploads.
	PublicBase  string `toml:"public_base"`  // Public base URL used to build durable object URLs.
	PresignDays int    `toml:"presign_days"` // Validity of generated preview URLs, in days.
}

// DatabaseConfig holds the MySQL connection settings for the material and
// deployment tables.
type DatabaseConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
}

// DSN renders the config as a go-sql-driver/mysql data source name.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4", d.User, d.Password, d.Host, d.Port, d.Database)
}

// GenerationConfig holds the settings for the external reference-to-video
// generation service. The service is poll-based: submissions return a task
// id and completion must be polled for, so the polling budget lives here.
type GenerationConfig struct {
	BaseURL             string `toml:"base_url"`              // Service root, e.g. "https://api.vidu.cn".
	APIKey              string `toml:"api_key"`               // Token for the Authorization header.
	Model               string `toml:"model"`                 // Generation model name, e.g. "vidu2.0".
	RateLimit           int    `toml:"rate_limit"`            // Maximum submissions per second.
	PollIntervalSeconds int    `toml:"poll_interval_seconds"` // Delay between status polls for one task.
	MaxPollAttempts     int    `toml:"max_poll_attempts"`     // Poll budget per task before marking it failed.
	TimeoutSeconds      int    `toml:"timeout_in_seconds"`    // Per-request HTTP timeout.
}

// TitleConfig holds the settings for the multimodal model used to generate
// ad titles from the final video's key frames.
type TitleConfig struct {
	BaseURL     string  `toml:"base_url"` // OpenAI-compatible endpoint base URL.
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	Temperature float64 `toml:"temperature"`
	Prompt      string  `toml:"prompt"` // Go template for the title prompt; sees PRODUCT_INFO.
}

// AssemblyConfig holds the local tooling and tunables for frame extraction
// and final assembly.
type AssemblyConfig struct {
	FFmpegPath     string  `toml:"ffmpeg_path"`     // Path to the ffmpeg executable.
	FFprobePath    string  `toml:"ffprobe_path"`    // Path to the ffprobe executable.
	SceneThreshold float64 `toml:"scene_threshold"` // Scene-change score threshold (0..1).
	AudioDir       string  `toml:"audio_dir"`       // Directory holding the background-music pool.
	FrameRate      int     `toml:"frame_rate"`      // Output frame rate for the assembled video.
}

// Config is the overall application configuration, loaded from TOML files.
type Config struct {
	Application struct {
		Name           string `toml:"name"`             // Service name, used in telemetry resources.
		ListenAddress  string `toml:"listen_address"`   // HTTP listen address, e.g. ":8080".
		ThreadPoolSize int    `toml:"thread_pool_size"` // Worker pool size for parallel job polling.
	} `toml:"application"`
	Storage    StorageConfig    `toml:"storage"`
	Database   DatabaseConfig   `toml:"database"`
	Generation GenerationConfig `toml:"generation"`
	Title      TitleConfig      `toml:"title"`
	Assembly   AssemblyConfig   `toml:"assembly"`
}

// NewConfig creates a Config with sane defaults for the fields that must
// never be zero, so a sparse TOML file still yields a runnable service.
func NewConfig() *Config {
	c := &Config{}
	c.Application.ThreadPoolSize = 4
	c.Generation.PollIntervalSeconds = 5
	c.Generation.MaxPollAttempts = 60
	c.Generation.RateLimit = 2
	c.Assembly.SceneThreshold = 0.27
	c.Assembly.FrameRate = 24
	c.Storage.PresignDays = 7
	return c
}
