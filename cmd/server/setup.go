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
	"context"
	"log"

	"github.com/adify/go-adify-backend/internal/cloud"
	"github.com/adify/go-adify-backend/internal/core/services"
	"github.com/adify/go-adify-backend/internal/core/workflow"
)

// StateManager holds the shared components for the application.
type StateManager struct {
	config      *cloud.Config
	cloud       *cloud.ServiceClients
	materials   *services.MaterialService
	deployments *services.DeploymentService

	keyFrames *workflow.KeyFrameWorkflow
	segments  *workflow.SegmentWorkflow
	adVideos  *workflow.AdVideoWorkflow
}

var state = &StateManager{}

// GetConfig loads the layered TOML configuration once and caches it.
func GetConfig() *cloud.Config {
	if state.config == nil {
		config, err := cloud.GetConfig()
		if err != nil {
			log.Fatalf("failed to load configuration: %v\n", err)
		}
		state.config = config
	}
	return state.config
}

// InitState wires every service and workflow the HTTP layer depends on.
func InitState(ctx context.Context) {
	config := GetConfig()

	cloudClients, err := cloud.NewCloudServiceClients(ctx, config)
	if err != nil {
		log.Fatalf("failed to initialize cloud clients: %v\n", err)
	}
	state.cloud = cloudClients

	state.materials = services.NewMaterialService(cloudClients.DB)
	state.deployments = services.NewDeploymentService(cloudClients.DB)

	state.keyFrames = workflow.NewKeyFrameWorkflow(config, cloudClients)
	state.segments = workflow.NewSegmentWorkflow(config, cloudClients)
	state.adVideos = workflow.NewAdVideoWorkflow(config, cloudClients)
}
