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
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/adify/go-adify-backend/internal/core/model"
)

// QuotaAwareGenerationClient decorates a GenerationService with a local
// rate limiter so that parallel submissions from the orchestrator never
// exceed the remote service's request quota. Polls are limited too: a
// large batch of tasks polled on the same tick would otherwise burst well
// past the quota.
type QuotaAwareGenerationClient struct {
	delegate GenerationService
	limiter  *rate.Limiter
}

// NewQuotaAwareGenerationClient wraps the given client with a limiter
// allowing requestsPerSecond sustained requests with a burst of one.
func NewQuotaAwareGenerationClient(delegate GenerationService, requestsPerSecond int) *QuotaAwareGenerationClient {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1
	}
	return &QuotaAwareGenerationClient{
		delegate: delegate,
		limiter:  rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
}

func (q *QuotaAwareGenerationClient) wait(ctx context.Context, op string) error {
	start := time.Now()
	if err := q.limiter.Wait(ctx); err != nil {
		return err
	}
	if waited := time.Since(start); waited > time.Second {
		slog.Debug("generation request delayed by local quota", "op", op, "waited", waited.String())
	}
	return nil
}

// Submit applies the rate limit, then delegates.
func (q *QuotaAwareGenerationClient) Submit(ctx context.Context, pair model.ImagePair, params model.GenerationParams) (string, error) {
	if err := q.wait(ctx, "submit"); err != nil {
		return "", err
	}
	return q.delegate.Submit(ctx, pair, params)
}

// Poll applies the rate limit, then delegates.
func (q *QuotaAwareGenerationClient) Poll(ctx context.Context, taskID string) (*PollResult, error) {
	if err := q.wait(ctx, "poll"); err != nil {
		return nil, err
	}
	return q.delegate.Poll(ctx, taskID)
}
