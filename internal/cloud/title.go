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
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/template"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// defaultTitlePrompt is used when the configuration carries no prompt
// template. The model is asked for a fenced JSON object keyed by the
// advertising-title field so the response can be parsed leniently.
const defaultTitlePrompt = "你是一位广告创意专家。根据以下产品信息和视频关键帧，" +
	"为这条广告视频生成一个吸引人的中文标题。产品信息：{{.PRODUCT_INFO}}。" +
	"只输出 JSON，格式为 {\"广告标题\": \"...\"}。"

// TitleClient generates ad titles for assembled videos by sending the
// product description and a handful of key frames to a multimodal model.
type TitleClient struct {
	client openai.Client
	config TitleConfig
	prompt *template.Template
}

// NewTitleClient builds a TitleClient from the title section of the
// application configuration.
func NewTitleClient(config TitleConfig) (*TitleClient, error) {
	opts := []option.RequestOption{option.WithAPIKey(config.APIKey)}
	if strings.TrimSpace(config.BaseURL) != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}

	promptText := config.Prompt
	if strings.TrimSpace(promptText) == "" {
		promptText = defaultTitlePrompt
	}
	prompt, err := template.New("title-prompt").Parse(promptText)
	if err != nil {
		return nil, fmt.Errorf("invalid title prompt template: %w", err)
	}

	return &TitleClient{
		client: openai.NewClient(opts...),
		config: config,
		prompt: prompt,
	}, nil
}

// imageDataURL base64-encodes a local image as a data URL for inline
// submission to the model.
func imageDataURL(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	mimeType := "image/jpeg"
	if strings.HasSuffix(strings.ToLower(path), ".png") {
		mimeType = "image/png"
	}
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data)), nil
}

// GenerateTitle asks the model for an ad title given the product
// description and the paths of representative frames from the assembled
// video. It returns the raw model output; parsing is the caller's concern.
func (t *TitleClient) GenerateTitle(ctx context.Context, productInfo string, framePaths []string) (string, error) {
	var promptBuf bytes.Buffer
	vocabulary := map[string]string{"PRODUCT_INFO": productInfo}
	if err := t.prompt.Execute(&promptBuf, vocabulary); err != nil {
		return "", fmt.Errorf("failed to render title prompt: %w", err)
	}

	parts := []openai.ChatCompletionContentPartUnionParam{
		openai.TextContentPart(promptBuf.String()),
	}
	for _, path := range framePaths {
		dataURL, err := imageDataURL(path)
		if err != nil {
			return "", fmt.Errorf("failed to encode frame %s: %w", path, err)
		}
		parts = append(parts, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
			URL: dataURL,
		}))
	}

	temperature := t.config.Temperature
	if temperature == 0 {
		temperature = 0.7
	}

	resp, err := t.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(parts),
		},
		Model:       t.config.Model,
		Temperature: openai.Float(temperature),
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("title model returned no choices")
	}
	raw := strings.TrimSpace(resp.Choices[0].Message.Content)
	if raw == "" {
		return "", errors.New("title model returned an empty message")
	}
	return raw, nil
}
