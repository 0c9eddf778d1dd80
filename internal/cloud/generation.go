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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/adify/go-adify-backend/internal/core/model"
)

const (
	submitPath = "/ent/v2/reference2video"
	pollPath   = "/ent/v2/tasks/%s/creations"
)

// generationRequest is the wire format for a reference-to-video submission.
// Images carries exactly two entries: the key frame followed by the
// replacement image.
type generationRequest struct {
	Model             string   `json:"model"`
	Images            []string `json:"images"`
	Prompt            string   `json:"prompt"`
	Duration          int      `json:"duration"`
	Seed              string   `json:"seed"`
	AspectRatio       string   `json:"aspect_ratio"`
	Resolution        string   `json:"resolution"`
	MovementAmplitude string   `json:"movement_amplitude"`
}

type submitResponse struct {
	TaskID string `json:"task_id"`
	State  string `json:"state"`
}

type creation struct {
	URL string `json:"url"`
}

type pollResponse struct {
	State     string     `json:"state"`
	Creations []creation `json:"creations"`
}

// PollResult is the outcome of a single status poll for one task.
type PollResult struct {
	Status    model.JobStatus
	ResultURL string
}

// GenerationService is the contract the pipeline depends on for segment
// generation. The concrete client and its quota-aware wrapper both satisfy
// it, which keeps the orchestrator testable without the remote service.
type GenerationService interface {
	Submit(ctx context.Context, pair model.ImagePair, params model.GenerationParams) (string, error)
	Poll(ctx context.Context, taskID string) (*PollResult, error)
}

// GenerationClient talks to the asynchronous reference-to-video service.
// Submissions return a task id immediately; completion is observed by
// polling the task's creations endpoint.
type GenerationClient struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewGenerationClient creates a client from the generation section of the
// application configuration.
func NewGenerationClient(config GenerationConfig) *GenerationClient {
	timeout := time.Duration(config.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &GenerationClient{
		baseURL:    config.BaseURL,
		apiKey:     config.APIKey,
		model:      config.Model,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Submit sends one image pair to the generation service and returns the
// task id assigned to it.
func (g *GenerationClient) Submit(ctx context.Context, pair model.ImagePair, params model.GenerationParams) (string, error) {
	payload := generationRequest{
		Model:             g.model,
		Images:            pair.URLs(),
		Prompt:            params.Prompt,
		Duration:          params.Duration,
		Seed:              params.Seed,
		AspectRatio:       params.AspectRatio,
		Resolution:        params.Resolution,
		MovementAmplitude: params.MovementAmplitude,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+submitPath, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Token "+g.apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("submission rejected with status %d: %s", resp.StatusCode, data)
	}

	var parsed submitResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode submission response: %w", err)
	}
	if parsed.TaskID == "" {
		return "", fmt.Errorf("submission response carried no task id: %s", data)
	}
	return parsed.TaskID, nil
}

// Poll queries the creations endpoint once for the given task. A missing or
// empty creations list means the task is still running and the caller
// should poll again later.
func (g *GenerationClient) Poll(ctx context.Context, taskID string) (*PollResult, error) {
	url := g.baseURL + fmt.Sprintf(pollPath, taskID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Token "+g.apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("poll rejected with status %d: %s", resp.StatusCode, data)
	}

	var parsed pollResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode poll response: %w", err)
	}

	if parsed.State == "failed" {
		return &PollResult{Status: model.JobStatusFailed}, nil
	}
	if len(parsed.Creations) == 0 || parsed.Creations[0].URL == "" {
		return &PollResult{Status: model.JobStatusPending}, nil
	}
	return &PollResult{Status: model.JobStatusReady, ResultURL: parsed.Creations[0].URL}, nil
}
