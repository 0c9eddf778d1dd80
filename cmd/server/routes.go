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

package main

import (
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/adify/go-adify-backend/internal/core/model"
	"github.com/adify/go-adify-backend/internal/core/services"
)

// statusForError maps domain errors to HTTP status codes. Anything not
// recognized as a caller mistake is a 500.
func statusForError(err error) int {
	switch {
	case errors.Is(err, model.ErrPairMismatch):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrMaterialNotFound),
		errors.Is(err, services.ErrGroupNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrEmptyGroup):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func fail(c *gin.Context, err error) {
	slog.ErrorContext(c.Request.Context(), "request failed",
		"path", c.FullPath(), "error", err)
	c.JSON(statusForError(err), gin.H{"error": err.Error()})
}

type generationRequestBody struct {
	ImageURLs            []string `json:"image_urls"`
	ReplacementImageURLs []string `json:"replacement_image_urls"`
	Prompt               string   `json:"prompt"`
	Duration             int      `json:"duration"`
	Resolution           string   `json:"resolution"`
	MovementAmplitude    string   `json:"movement_amplitude"`
	AspectRatio          string   `json:"aspect_ratio"`
	Seed                 string   `json:"seed"`
	ProductInfo          string   `json:"product_info"`
}

// materialAddBody registers an externally produced material. The
// deployment_links field carries the comma-separated campaign URL list,
// matching the material's own wire form.
type materialAddBody struct {
	VideoURL        string `json:"video_url" binding:"required"`
	PreviewURL      string `json:"preview_url"`
	Title           string `json:"title"`
	SourceType      int    `json:"source_type"`
	DeploymentLinks string `json:"deployment_links"`
}

// materialUpdateBody replaces one material's deployment link list.
type materialUpdateBody struct {
	MaterialID      string `json:"material_id" binding:"required"`
	DeploymentLinks string `json:"deployment_links"`
}

func (b *generationRequestBody) params() model.GenerationParams {
	return model.GenerationParams{
		Prompt:            b.Prompt,
		Duration:          b.Duration,
		Resolution:        b.Resolution,
		MovementAmplitude: b.MovementAmplitude,
		AspectRatio:       b.AspectRatio,
		Seed:              b.Seed,
	}
}

// VideoRouter registers the generation pipeline and material catalog
// routes.
func VideoRouter(r *gin.RouterGroup) {
	video := r.Group("/video")
	{
		video.POST("/keyframes", func(c *gin.Context) {
			var body struct {
				VideoURL string `json:"video_url" binding:"required"`
			}
			if err := c.ShouldBindJSON(&body); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			keyFrames, err := state.keyFrames.Run(c.Request.Context(), body.VideoURL)
			if err != nil {
				fail(c, err)
				return
			}
			urls := make([]string, 0, len(keyFrames))
			for _, frame := range keyFrames {
				urls = append(urls, frame.ImageURL)
			}
			c.JSON(http.StatusOK, gin.H{"image_urls": urls, "key_frames": keyFrames})
		})

		video.POST("/generate_video_segments", func(c *gin.Context) {
			var body generationRequestBody
			if err := c.ShouldBindJSON(&body); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			batch, err := state.segments.Run(c.Request.Context(), body.ImageURLs, body.ReplacementImageURLs, body.params())
			if err != nil {
				fail(c, err)
				return
			}
			c.JSON(http.StatusOK, batch)
		})

		video.POST("/generate_video", func(c *gin.Context) {
			var body generationRequestBody
			if err := c.ShouldBindJSON(&body); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			result, err := state.adVideos.Run(c.Request.Context(), body.ImageURLs, body.ReplacementImageURLs, body.params(), body.ProductInfo)
			if err != nil {
				fail(c, err)
				return
			}

			material, err := state.materials.Add(c.Request.Context(), &model.VideoMaterial{
				VideoURL:   result.Video.VideoURL,
				PreviewURL: result.Video.PreviewURL,
				Title:      result.Video.Title,
				SourceType: model.SourceTypeInternal,
			})
			if err != nil {
				fail(c, err)
				return
			}
			c.JSON(http.StatusOK, gin.H{
				"video":       result.Video,
				"material_id": material.MaterialID,
				"failed":      result.Failed,
			})
		})

		video.POST("/add", func(c *gin.Context) {
			var body materialAddBody
			if err := c.ShouldBindJSON(&body); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			material, err := state.materials.Add(c.Request.Context(), &model.VideoMaterial{
				VideoURL:     body.VideoURL,
				PreviewURL:   body.PreviewURL,
				Title:        body.Title,
				SourceType:   body.SourceType,
				CampaignURLs: body.DeploymentLinks,
			})
			if err != nil {
				fail(c, err)
				return
			}
			c.JSON(http.StatusOK, material)
		})

		video.POST("/update", func(c *gin.Context) {
			var body materialUpdateBody
			if err := c.ShouldBindJSON(&body); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if err := state.materials.UpdateCampaigns(c.Request.Context(), body.MaterialID, body.DeploymentLinks); err != nil {
				fail(c, err)
				return
			}
			c.JSON(http.StatusOK, gin.H{"material_id": body.MaterialID})
		})

		video.GET("/list", func(c *gin.Context) {
			page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
			size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
			out, err := state.materials.List(c.Request.Context(), c.Query("search"), page, size)
			if err != nil {
				fail(c, err)
				return
			}
			c.JSON(http.StatusOK, out)
		})
	}
}

// DeploymentRouter registers the comparison-group routes.
func DeploymentRouter(r *gin.RouterGroup) {
	deployment := r.Group("/deployment")
	{
		// The usual form names materials and lets the service fan their
		// stored campaign links out into entries. Callers that need
		// per-entry labels can pass explicit entries instead.
		deployment.POST("/add", func(c *gin.Context) {
			var body struct {
				Materials []string                   `json:"materials"`
				Entries   []services.DeploymentEntry `json:"entries"`
			}
			if err := c.ShouldBindJSON(&body); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}

			var groupID string
			var err error
			switch {
			case len(body.Materials) > 0:
				groupID, err = state.deployments.CreateFromMaterials(c.Request.Context(), body.Materials)
			case len(body.Entries) > 0:
				groupID, err = state.deployments.Create(c.Request.Context(), body.Entries)
			default:
				c.JSON(http.StatusBadRequest, gin.H{"error": "materials is null"})
				return
			}
			if err != nil {
				fail(c, err)
				return
			}
			c.JSON(http.StatusOK, gin.H{"group_id": groupID})
		})

		deployment.GET("/list", func(c *gin.Context) {
			page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
			size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
			out, err := state.deployments.List(c.Request.Context(), page, size)
			if err != nil {
				fail(c, err)
				return
			}
			c.JSON(http.StatusOK, out)
		})

		deployment.GET("/details", func(c *gin.Context) {
			groupID := c.Query("group_id")
			if groupID == "" {
				c.JSON(http.StatusBadRequest, gin.H{"error": "group_id is required"})
				return
			}
			entries, err := state.deployments.Details(c.Request.Context(), groupID)
			if err != nil {
				fail(c, err)
				return
			}
			c.JSON(http.StatusOK, gin.H{"group_id": groupID, "entries": entries})
		})
	}
}

// uploadStagePath returns a collision-free staging location for an
// uploaded file: a fresh directory under the system temp root keeps
// concurrent uploads of the same filename apart.
func uploadStagePath(filename string) (dir string, path string) {
	dir = filepath.Join(os.TempDir(), "upload-"+uuid.New().String())
	return dir, filepath.Join(dir, filepath.Base(filename))
}

// FileUpload registers the direct upload route used to stage replacement
// images and externally produced videos.
func FileUpload(r *gin.RouterGroup) {
	upload := r.Group("/upload")
	{
		upload.POST("/file", func(c *gin.Context) {
			file, err := c.FormFile("file")
			if err != nil {
				c.String(http.StatusBadRequest, "get form err: %s", err.Error())
				return
			}

			stageDir, localPath := uploadStagePath(file.Filename)
			if err := os.MkdirAll(stageDir, 0o750); err != nil {
				fail(c, err)
				return
			}
			defer func() {
				if err := os.RemoveAll(stageDir); err != nil {
					slog.Warn("failed to remove staged upload", "path", stageDir, "error", err)
				}
			}()
			if err := c.SaveUploadedFile(file, localPath); err != nil {
				c.String(http.StatusBadRequest, "upload file err: %s", err.Error())
				return
			}

			stored, err := state.cloud.ObjectStore.Upload(c.Request.Context(), localPath, "uploads")
			if err != nil {
				fail(c, err)
				return
			}
			c.JSON(http.StatusOK, stored)
		})
	}
}
