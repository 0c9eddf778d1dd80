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

// Package services provides the persistence layer over the MySQL store.
// This file holds every SQL statement the services execute, so the whole
// query surface can be reviewed in one place.
package services

const (
	// Materials.

	sqlMaterialMaxSequence = `
SELECT COALESCE(MAX(CAST(SUBSTRING(material_id, ?) AS UNSIGNED)), 0)
FROM video_materials
WHERE material_id LIKE ?`

	sqlMaterialInsert = `
INSERT INTO video_materials
  (material_id, video_url, preview_url, title, source_type, campaign_urls, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`

	sqlMaterialUpdateCampaigns = `
UPDATE video_materials SET campaign_urls = ? WHERE material_id = ?`

	sqlMaterialGet = `
SELECT id, material_id, video_url, preview_url, title, source_type, campaign_urls, created_at
FROM video_materials
WHERE material_id = ?`

	sqlMaterialCampaigns = `
SELECT campaign_urls
FROM video_materials
WHERE material_id = ?`

	sqlMaterialCount = `
SELECT COUNT(*) FROM video_materials
WHERE (? = '' OR title LIKE ? OR material_id LIKE ?)`

	sqlMaterialList = `
SELECT id, material_id, video_url, preview_url, title, source_type, campaign_urls, created_at
FROM video_materials
WHERE (? = '' OR title LIKE ? OR material_id LIKE ?)
ORDER BY created_at DESC, id DESC
LIMIT ? OFFSET ?`

	// Comparison groups.

	sqlGroupInsertEntry = `
INSERT INTO material_comparison_groups
  (group_id, material_id, campaign_url, campaign_label,
   click_count, completion_count, like_count, comment_count, share_count,
   is_system_preferred, created_at)
VALUES (?, ?, ?, ?, 0, 0, 0, 0, 0, FALSE, ?)`

	sqlGroupCount = `
SELECT COUNT(DISTINCT group_id) FROM material_comparison_groups`

	sqlGroupList = `
SELECT group_id, GROUP_CONCAT(material_id ORDER BY id)
FROM material_comparison_groups
GROUP BY group_id
ORDER BY MAX(created_at) DESC
LIMIT ? OFFSET ?`

	sqlGroupEntries = `
SELECT g.group_id, g.material_id, g.campaign_url, g.campaign_label,
       g.click_count, g.completion_count, g.like_count, g.comment_count, g.share_count,
       g.is_system_preferred
FROM material_comparison_groups g
WHERE g.group_id = ?
ORDER BY g.id`
)
