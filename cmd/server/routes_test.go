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
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestUploadStagePathUnique verifies that two uploads of the same
// filename stage into distinct directories, so concurrent requests never
// overwrite or delete each other's file.
func TestUploadStagePathUnique(t *testing.T) {
	dirA, pathA := uploadStagePath("ad.mp4")
	dirB, pathB := uploadStagePath("ad.mp4")

	assert.NotEqual(t, dirA, dirB)
	assert.NotEqual(t, pathA, pathB)
	assert.Equal(t, "ad.mp4", filepath.Base(pathA))
	assert.Equal(t, dirA, filepath.Dir(pathA))
}

// TestUploadStagePathStripsDirectories verifies that a filename carrying
// path segments cannot escape the staging directory.
func TestUploadStagePathStripsDirectories(t *testing.T) {
	dir, path := uploadStagePath("../../etc/passwd")
	assert.Equal(t, filepath.Join(dir, "passwd"), path)
}

// TestMaterialBodyWireNames verifies that the material routes speak the
// same wire name for the campaign URL list as the material itself:
// deployment_links.
func TestMaterialBodyWireNames(t *testing.T) {
	var add materialAddBody
	err := json.Unmarshal([]byte(`{"video_url": "https://v", "deployment_links": "https://a,https://b"}`), &add)
	assert.NoError(t, err)
	assert.Equal(t, "https://a,https://b", add.DeploymentLinks)

	var update materialUpdateBody
	err = json.Unmarshal([]byte(`{"material_id": "C20250830001", "deployment_links": "https://c"}`), &update)
	assert.NoError(t, err)
	assert.Equal(t, "https://c", update.DeploymentLinks)
}
