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

// This file implements comparison-group deployments: grouping several
// materials under one generated group ID so their campaign performance can
// be compared side by side.
package services

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/adify/go-adify-backend/internal/core/model"
)

// ErrGroupNotFound is returned when a comparison group ID does not exist.
var ErrGroupNotFound = errors.New("comparison group not found")

// ErrEmptyGroup is returned when a group is created with no entries.
var ErrEmptyGroup = errors.New("a comparison group needs at least one entry")

// defaultCampaignLabel is assigned to entries fanned out from a bare
// material list, where the caller supplies no label of its own.
const defaultCampaignLabel = "Default Label"

// DeploymentEntry is one slot of a new comparison group.
type DeploymentEntry struct {
	MaterialID    string `json:"material_id"`
	CampaignURL   string `json:"campaign_url"`
	CampaignLabel string `json:"campaign_label"`
}

// entriesForMaterial fans one material's comma-separated campaign URL
// list out into one entry per link, each carrying the default label.
// Blank links are skipped.
func entriesForMaterial(materialID, campaignURLs string) []DeploymentEntry {
	var entries []DeploymentEntry
	for _, link := range strings.Split(campaignURLs, ",") {
		link = strings.TrimSpace(link)
		if link == "" {
			continue
		}
		entries = append(entries, DeploymentEntry{
			MaterialID:    materialID,
			CampaignURL:   link,
			CampaignLabel: defaultCampaignLabel,
		})
	}
	return entries
}

// DeploymentService owns the material_comparison_groups table.
type DeploymentService struct {
	db *sql.DB
}

func NewDeploymentService(db *sql.DB) *DeploymentService {
	return &DeploymentService{db: db}
}

// newGroupID generates a comparison group ID: "P", the creation timestamp
// to the second, and six random hex characters to keep IDs created within
// the same second distinct.
func newGroupID(now time.Time) (string, error) {
	suffix := make([]byte, 3)
	if _, err := rand.Read(suffix); err != nil {
		return "", fmt.Errorf("failed to generate group id suffix: %w", err)
	}
	return "P" + now.Format("20060102150405") + strings.ToUpper(hex.EncodeToString(suffix)), nil
}

// Create inserts one comparison group with the given entries and returns
// the generated group ID. All entries land in a single transaction.
func (s *DeploymentService) Create(ctx context.Context, entries []DeploymentEntry) (string, error) {
	if len(entries) == 0 {
		return "", ErrEmptyGroup
	}

	now := time.Now()
	groupID, err := newGroupID(now)
	if err != nil {
		return "", err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, entry := range entries {
		if _, err := tx.ExecContext(ctx, sqlGroupInsertEntry,
			groupID,
			entry.MaterialID,
			entry.CampaignURL,
			entry.CampaignLabel,
			now,
		); err != nil {
			return "", fmt.Errorf("failed to insert group entry for material %s: %w", entry.MaterialID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit comparison group: %w", err)
	}

	slog.Info("comparison group created", "group_id", groupID, "entries", len(entries))
	return groupID, nil
}

// CreateFromMaterials builds a comparison group from a list of material
// IDs. Each material's stored campaign URLs are fanned out into one entry
// per link. A material with no campaign URLs contributes no entries; a
// list yielding none at all is rejected with ErrEmptyGroup.
func (s *DeploymentService) CreateFromMaterials(ctx context.Context, materialIDs []string) (string, error) {
	if len(materialIDs) == 0 {
		return "", ErrEmptyGroup
	}

	var entries []DeploymentEntry
	for _, materialID := range materialIDs {
		var campaignURLs sql.NullString
		err := s.db.QueryRowContext(ctx, sqlMaterialCampaigns, materialID).Scan(&campaignURLs)
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("material %s: %w", materialID, ErrMaterialNotFound)
		}
		if err != nil {
			return "", fmt.Errorf("failed to fetch campaign urls for material %s: %w", materialID, err)
		}
		entries = append(entries, entriesForMaterial(materialID, campaignURLs.String)...)
	}
	return s.Create(ctx, entries)
}

// List returns one page of comparison groups, newest first, each collapsed
// to its group ID and member materials.
func (s *DeploymentService) List(ctx context.Context, page, size int) (*model.GroupPage, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}

	var total int64
	if err := s.db.QueryRowContext(ctx, sqlGroupCount).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count comparison groups: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, sqlGroupList, size, (page-1)*size)
	if err != nil {
		return nil, fmt.Errorf("failed to list comparison groups: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := &model.GroupPage{Total: total, Page: page, Size: size, Groups: []*model.GroupSummary{}}
	for rows.Next() {
		var groupID, members string
		if err := rows.Scan(&groupID, &members); err != nil {
			return nil, fmt.Errorf("failed to scan group row: %w", err)
		}
		out.Groups = append(out.Groups, &model.GroupSummary{
			GroupID:     groupID,
			MaterialIDs: strings.Split(members, ","),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Details returns every entry of one comparison group with its engagement
// counters.
func (s *DeploymentService) Details(ctx context.Context, groupID string) ([]*model.ComparisonGroupEntry, error) {
	rows, err := s.db.QueryContext(ctx, sqlGroupEntries, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch group %s: %w", groupID, err)
	}
	defer func() { _ = rows.Close() }()

	var entries []*model.ComparisonGroupEntry
	for rows.Next() {
		entry := &model.ComparisonGroupEntry{}
		if err := rows.Scan(
			&entry.GroupID,
			&entry.MaterialID,
			&entry.CampaignURL,
			&entry.CampaignLabel,
			&entry.ClickCount,
			&entry.CompletionCount,
			&entry.LikeCount,
			&entry.CommentCount,
			&entry.ShareCount,
			&entry.IsSystemPreferred,
		); err != nil {
			return nil, fmt.Errorf("failed to scan group entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrGroupNotFound
	}
	return entries, nil
}
