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
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/adify/go-adify-backend/internal/core/model"
)

func TestExtensionForContentType(t *testing.T) {
	assert.Equal(t, ".mp4", extensionForContentType("video/mp4"))
	assert.Equal(t, ".jpg", extensionForContentType("image/jpeg"))
	assert.Equal(t, ".png", extensionForContentType("image/png"))
	// Missing or junk content types default to video.
	assert.Equal(t, ".mp4", extensionForContentType(""))
	assert.Equal(t, ".mp4", extensionForContentType("not a type"))
}

// TestDownloaderFetch verifies that a download streams to a run-private
// path whose extension follows the response content type.
func TestDownloaderFetch(t *testing.T) {
	payload := strings.Repeat("frame-data", 1024)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte(payload))
	}))
	defer server.Close()

	path, err := NewDownloader().Fetch(context.Background(), server.URL)
	assert.NoError(t, err)
	defer func() { _ = os.RemoveAll(filepath.Dir(path)) }()

	assert.Equal(t, ".jpg", filepath.Ext(path))
	data, err := os.ReadFile(path)
	assert.NoError(t, err)
	assert.Equal(t, payload, string(data))
}

// TestDownloaderFetchConcurrentPathsUnique verifies that parallel
// downloads of the same URL never collide on the local path: every fetch
// lands in its own run-private directory.
func TestDownloaderFetchConcurrentPathsUnique(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "video/mp4")
		_, _ = w.Write([]byte("clip"))
	}))
	defer server.Close()

	const fetches = 8
	downloader := NewDownloader()

	var mu sync.Mutex
	paths := make([]string, 0, fetches)

	var wg sync.WaitGroup
	for i := 0; i < fetches; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			path, err := downloader.Fetch(context.Background(), server.URL)
			assert.NoError(t, err)
			mu.Lock()
			paths = append(paths, path)
			mu.Unlock()
		}()
	}
	wg.Wait()

	seen := make(map[string]bool, fetches)
	for _, path := range paths {
		assert.False(t, seen[path], "path %s handed out twice", path)
		seen[path] = true
		assert.FileExists(t, path)
		_ = os.RemoveAll(filepath.Dir(path))
	}
	assert.Len(t, seen, fetches)
}

// TestDownloaderFetchNonOK verifies that a non-200 response surfaces as a
// TransferError and leaves no file behind.
func TestDownloaderFetchNonOK(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	_, err := NewDownloader().Fetch(context.Background(), server.URL)
	var transferErr *model.TransferError
	assert.ErrorAs(t, err, &transferErr)
	assert.Equal(t, "download", transferErr.Op)
}
