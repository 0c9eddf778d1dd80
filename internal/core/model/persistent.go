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

// Package model defines the core data structures for the application.
// This file contains the models that map to rows in the relational store:
// video materials produced (or imported) by the creative team, and the
// comparison-group links used to track how each material performs across
// ad-campaign deployments.
package model

import "time"

// Material source types. Internal materials are produced by this system's
// generation pipeline; external materials are imported from outside and get
// the "CW" ID prefix so the two populations are distinguishable at a glance.
const (
	SourceTypeInternal = 0
	SourceTypeExternal = 1
)

// VideoMaterial is one row of the `video_materials` table: a finished ad
// video with its human-readable material ID. Material IDs look like
// `C20250830001` (internal) or `CW20250830001` (external): a prefix, the
// creation date and a zero-padded daily sequence number.
type VideoMaterial struct {
	ID           int64     `json:"-"`                // Surrogate primary key.
	MaterialID   string    `json:"material_id"`      // Human-readable ID, e.g. "C20250830001".
	VideoURL     string    `json:"video_url"`        // Durable URL of the video object.
	PreviewURL   string    `json:"preview_url"`      // Presigned preview URL.
	Title        string    `json:"title"`            // Ad title shown to reviewers.
	SourceType   int       `json:"source_type"`      // SourceTypeInternal or SourceTypeExternal.
	CampaignURLs string    `json:"deployment_links"` // Comma-separated deployment links.
	CreatedAt    time.Time `json:"created_at"`       // Row creation timestamp.
}

// ComparisonGroupEntry links one material into a deployment comparison
// group, one row per (group, material, campaign URL) combination, together
// with the engagement counters collected for that deployment.
type ComparisonGroupEntry struct {
	GroupID           string `json:"group_id"`     // Comparison group ID, e.g. "P20250830101500A1B2C3".
	MaterialID        string `json:"material_id"`  // The material deployed in this slot.
	CampaignURL       string `json:"campaign_url"` // Where the material was deployed.
	CampaignLabel     string `json:"campaign_label"`
	ClickCount        int64  `json:"clicks"`
	CompletionCount   int64  `json:"completes"`
	LikeCount         int64  `json:"likes"`
	CommentCount      int64  `json:"comments"`
	ShareCount        int64  `json:"shares"`
	IsSystemPreferred bool   `json:"is_preferred"` // Set when the system flags this slot as the winner.
}

// MaterialPage is one page of a material listing query.
type MaterialPage struct {
	Total  int64            `json:"total"`
	Page   int              `json:"page"`
	Size   int              `json:"size"`
	Videos []*VideoMaterial `json:"videos"`
}

// GroupPage is one page of a comparison-group listing query.
type GroupPage struct {
	Total  int64           `json:"total"`
	Page   int             `json:"page"`
	Size   int             `json:"size"`
	Groups []*GroupSummary `json:"groups"`
}

// GroupSummary is the collapsed form of a comparison group: the group ID and
// the materials linked into it.
type GroupSummary struct {
	GroupID     string   `json:"group_id"`
	MaterialIDs []string `json:"material_ids"`
}
