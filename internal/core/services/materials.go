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

// This file implements the material catalog: registering finished ad
// videos under human-readable material IDs, updating their deployment
// links and serving the paged listing the review UI browses.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/adify/go-adify-backend/internal/core/model"
)

// Material ID prefixes. Internal materials come out of the generation
// pipeline; external ones are imported and carry the longer prefix.
const (
	materialPrefixInternal = "C"
	materialPrefixExternal = "CW"
)

// ErrMaterialNotFound is returned when a material ID does not exist.
var ErrMaterialNotFound = errors.New("material not found")

// MaterialService owns the video_materials table.
type MaterialService struct {
	db *sql.DB
}

// NewMaterialService creates the service over an initialized pool.
func NewMaterialService(db *sql.DB) *MaterialService {
	return &MaterialService{db: db}
}

// materialIDPrefix maps a source type to its ID prefix.
func materialIDPrefix(sourceType int) string {
	if sourceType == model.SourceTypeExternal {
		return materialPrefixExternal
	}
	return materialPrefixInternal
}

// materialSequenceStart is the 1-based SUBSTRING offset of the daily
// sequence digits inside a material ID: they start right after the prefix
// and the eight date digits.
func materialSequenceStart(prefix string) int {
	return len(prefix) + len("20060102") + 1
}

// formatMaterialID renders a material ID from its parts: source prefix,
// day, and three-digit daily sequence number.
func formatMaterialID(prefix string, day time.Time, seq int) string {
	return fmt.Sprintf("%s%s%03d", prefix, day.Format("20060102"), seq)
}

// nextMaterialID allocates the next ID for the given source type on the
// given day: prefix, date, then a three-digit daily sequence starting at
// 001. The MAX scan and the insert run inside the caller's transaction so
// two concurrent adds cannot allocate the same ID.
func nextMaterialID(ctx context.Context, tx *sql.Tx, sourceType int, now time.Time) (string, error) {
	prefix := materialIDPrefix(sourceType)
	like := prefix + now.Format("20060102") + "%"

	var maxSeq int
	if err := tx.QueryRowContext(ctx, sqlMaterialMaxSequence, materialSequenceStart(prefix), like).Scan(&maxSeq); err != nil {
		return "", fmt.Errorf("failed to scan material sequence: %w", err)
	}
	return formatMaterialID(prefix, now, maxSeq+1), nil
}

// Add registers a material and returns it with its allocated material ID.
func (s *MaterialService) Add(ctx context.Context, material *model.VideoMaterial) (*model.VideoMaterial, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now()
	materialID, err := nextMaterialID(ctx, tx, material.SourceType, now)
	if err != nil {
		return nil, err
	}

	result, err := tx.ExecContext(ctx, sqlMaterialInsert,
		materialID,
		material.VideoURL,
		material.PreviewURL,
		material.Title,
		material.SourceType,
		material.CampaignURLs,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert material: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit material insert: %w", err)
	}

	material.MaterialID = materialID
	material.CreatedAt = now
	if id, err := result.LastInsertId(); err == nil {
		material.ID = id
	}

	slog.Info("material registered", "material_id", materialID, "source_type", material.SourceType)
	return material, nil
}

// UpdateCampaigns replaces the deployment links recorded for a material.
func (s *MaterialService) UpdateCampaigns(ctx context.Context, materialID string, campaignURLs string) error {
	result, err := s.db.ExecContext(ctx, sqlMaterialUpdateCampaigns, campaignURLs, materialID)
	if err != nil {
		return fmt.Errorf("failed to update material %s: %w", materialID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrMaterialNotFound
	}
	return nil
}

// Get fetches one material by its material ID.
func (s *MaterialService) Get(ctx context.Context, materialID string) (*model.VideoMaterial, error) {
	material := &model.VideoMaterial{}
	err := s.db.QueryRowContext(ctx, sqlMaterialGet, materialID).Scan(
		&material.ID,
		&material.MaterialID,
		&material.VideoURL,
		&material.PreviewURL,
		&material.Title,
		&material.SourceType,
		&material.CampaignURLs,
		&material.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMaterialNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch material %s: %w", materialID, err)
	}
	return material, nil
}

// List returns one page of materials, newest first, optionally filtered by
// a search term matched against the title and the material ID.
func (s *MaterialService) List(ctx context.Context, search string, page, size int) (*model.MaterialPage, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}
	like := "%" + search + "%"

	var total int64
	if err := s.db.QueryRowContext(ctx, sqlMaterialCount, search, like, like).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count materials: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, sqlMaterialList, search, like, like, size, (page-1)*size)
	if err != nil {
		return nil, fmt.Errorf("failed to list materials: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := &model.MaterialPage{Total: total, Page: page, Size: size, Videos: []*model.VideoMaterial{}}
	for rows.Next() {
		material := &model.VideoMaterial{}
		if err := rows.Scan(
			&material.ID,
			&material.MaterialID,
			&material.VideoURL,
			&material.PreviewURL,
			&material.Title,
			&material.SourceType,
			&material.CampaignURLs,
			&material.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan material row: %w", err)
		}
		out.Videos = append(out.Videos, material)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
