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
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/h2non/filetype"
	"github.com/minio/minio-go/v7"

	"github.com/adify/go-adify-backend/internal/core/model"
)

// defaultVideoExtension is assumed when a download response carries no
// usable Content-Type. Sources in this pipeline are overwhelmingly video.
const defaultVideoExtension = ".mp4"

// extensionForContentType maps a Content-Type header to a file extension,
// falling back to .mp4 when the type is missing or unknown.
func extensionForContentType(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || mediaType == "" {
		return defaultVideoExtension
	}
	switch mediaType {
	case "video/mp4":
		return ".mp4"
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "audio/mpeg":
		return ".mp3"
	}
	exts, err := mime.ExtensionsByType(mediaType)
	if err != nil || len(exts) == 0 {
		return defaultVideoExtension
	}
	return exts[0]
}

// Downloader fetches remote media into per-run temporary files. Every
// download lands in its own uuid-named directory so that concurrent runs
// can never collide on a path.
type Downloader struct {
	httpClient *http.Client
}

// NewDownloader creates a Downloader with a long timeout suitable for
// pulling multi-minute source videos.
func NewDownloader() *Downloader {
	return &Downloader{httpClient: &http.Client{Timeout: 10 * time.Minute}}
}

// Fetch streams the object at rawURL to a new temporary file and returns
// its path. The response body is streamed straight to disk, never buffered
// in memory. Failures are reported as a model.TransferError.
func (d *Downloader) Fetch(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", &model.TransferError{Op: "download", URL: rawURL, Err: err}
	}
	resp, err := d.httpClient.Do(req)
	if err != nil {
		return "", &model.TransferError{Op: "download", URL: rawURL, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", &model.TransferError{Op: "download", URL: rawURL, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	dir := filepath.Join(os.TempDir(), uuid.New().String())
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", &model.TransferError{Op: "download", URL: rawURL, Err: err}
	}
	path := filepath.Join(dir, uuid.New().String()+extensionForContentType(resp.Header.Get("Content-Type")))

	out, err := os.Create(path)
	if err != nil {
		return "", &model.TransferError{Op: "download", URL: rawURL, Err: err}
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		_ = out.Close()
		_ = os.Remove(path)
		return "", &model.TransferError{Op: "download", URL: rawURL, Err: err}
	}
	if err := out.Close(); err != nil {
		return "", &model.TransferError{Op: "download", URL: rawURL, Err: err}
	}
	return path, nil
}

// StoredObject is the pair of URLs produced by an upload: the durable
// object URL and a time-limited presigned preview URL.
type StoredObject struct {
	ObjectName string `json:"object_name"`
	URL        string `json:"url"`
	PreviewURL string `json:"preview_url"`
}

// ObjectStore uploads local files to a MinIO-compatible bucket and issues
// presigned preview URLs for them.
type ObjectStore struct {
	client        *minio.Client
	bucket        string
	publicBase    string
	presignExpiry time.Duration
}

// NewObjectStore wraps an initialized MinIO client with the storage
// settings from the application configuration.
func NewObjectStore(client *minio.Client, config StorageConfig) *ObjectStore {
	days := config.PresignDays
	if days <= 0 {
		days = 7
	}
	return &ObjectStore{
		client:        client,
		bucket:        config.Bucket,
		publicBase:    strings.TrimRight(config.PublicBase, "/"),
		presignExpiry: time.Duration(days) * 24 * time.Hour,
	}
}

// EnsureBucket creates the configured bucket if it does not already exist.
func (s *ObjectStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return &model.TransferError{Op: "bucket-check", URL: s.bucket, Err: err}
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return &model.TransferError{Op: "bucket-create", URL: s.bucket, Err: err}
	}
	return nil
}

// detectContentType sniffs the file's magic bytes, falling back to the
// extension-based MIME type.
func detectContentType(path string) string {
	if kind, err := filetype.MatchFile(path); err == nil && kind != filetype.Unknown {
		return kind.MIME.Value
	}
	if byExt := mime.TypeByExtension(filepath.Ext(path)); byExt != "" {
		return byExt
	}
	return "application/octet-stream"
}

// Upload stores the local file under a timestamped, collision-free object
// name and returns both the durable URL and a presigned preview URL.
func (s *ObjectStore) Upload(ctx context.Context, localPath string, prefix string) (*StoredObject, error) {
	objectName := fmt.Sprintf("%s/%s-%s%s",
		strings.Trim(prefix, "/"),
		time.Now().Format("20060102150405"),
		uuid.New().String()[:8],
		filepath.Ext(localPath))

	_, err := s.client.FPutObject(ctx, s.bucket, objectName, localPath, minio.PutObjectOptions{
		ContentType: detectContentType(localPath),
	})
	if err != nil {
		return nil, &model.TransferError{Op: "upload", URL: objectName, Err: err}
	}

	presigned, err := s.client.PresignedGetObject(ctx, s.bucket, objectName, s.presignExpiry, nil)
	if err != nil {
		return nil, &model.TransferError{Op: "presign", URL: objectName, Err: err}
	}

	durable := fmt.Sprintf("%s/%s/%s", s.publicBase, s.bucket, objectName)
	return &StoredObject{
		ObjectName: objectName,
		URL:        durable,
		PreviewURL: presigned.String(),
	}, nil
}
