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
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ServiceClients aggregates every external client the application needs so
// the rest of the code receives one initialized container instead of
// constructing connections ad hoc.
type ServiceClients struct {
	Config      *Config
	Minio       *minio.Client
	ObjectStore *ObjectStore
	DB          *sql.DB
	Downloader  *Downloader
	Generation  GenerationService
	Title       *TitleClient
}

// NewCloudServiceClients initializes the object store, the database pool,
// the rate-limited generation client and the title client from the given
// configuration. All clients are validated eagerly so a misconfigured
// deployment fails at startup rather than on the first request.
func NewCloudServiceClients(ctx context.Context, config *Config) (*ServiceClients, error) {
	minioClient, err := minio.New(config.Storage.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.Storage.AccessKey, config.Storage.SecretKey, ""),
		Secure: config.Storage.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object storage client: %w", err)
	}
	store := NewObjectStore(minioClient, config.Storage)
	if err := store.EnsureBucket(ctx); err != nil {
		return nil, err
	}

	db, err := sql.Open("mysql", config.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(16)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(30 * time.Minute)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}

	title, err := NewTitleClient(config.Title)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	generation := NewQuotaAwareGenerationClient(
		NewGenerationClient(config.Generation),
		config.Generation.RateLimit,
	)

	slog.Info("cloud service clients initialized",
		"storage_endpoint", config.Storage.Endpoint,
		"bucket", config.Storage.Bucket,
		"database", config.Database.Database,
		"generation_model", config.Generation.Model,
		"title_model", config.Title.Model,
	)

	return &ServiceClients{
		Config:      config,
		Minio:       minioClient,
		ObjectStore: store,
		DB:          db,
		Downloader:  NewDownloader(),
		Generation:  generation,
		Title:       title,
	}, nil
}

// Close releases the pooled resources. HTTP-based clients hold no
// persistent connections and need no teardown.
func (s *ServiceClients) Close() {
	if s.DB != nil {
		if err := s.DB.Close(); err != nil {
			slog.Error("failed to close database pool", "error", err)
		}
	}
}
