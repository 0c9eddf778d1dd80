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

package commands

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/adify/go-adify-backend/internal/cloud"
	"github.com/adify/go-adify-backend/internal/core/cor"
	"github.com/adify/go-adify-backend/internal/core/model"
)

// fakeGeneration is an in-memory stand-in for the generation service. Task
// behavior is keyed by the pair's key-frame URL: readyAfter controls how
// many polls a task needs, failSubmit rejects the submission, failTask
// makes the service report a terminal failure.
type fakeGeneration struct {
	mu         sync.Mutex
	polls      map[string]int
	readyAfter map[string]int
	failSubmit map[string]bool
	failTask   map[string]bool
}

func newFakeGeneration() *fakeGeneration {
	return &fakeGeneration{
		polls:      make(map[string]int),
		readyAfter: make(map[string]int),
		failSubmit: make(map[string]bool),
		failTask:   make(map[string]bool),
	}
}

func (f *fakeGeneration) Submit(_ context.Context, pair model.ImagePair, _ model.GenerationParams) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSubmit[pair.KeyFrameURL] {
		return "", errors.New("quota exceeded")
	}
	return "task-" + pair.KeyFrameURL, nil
}

func (f *fakeGeneration) Poll(_ context.Context, taskID string) (*cloud.PollResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := taskID[len("task-"):]
	if f.failTask[key] {
		return &cloud.PollResult{Status: model.JobStatusFailed}, nil
	}
	f.polls[key]++
	needed := f.readyAfter[key]
	if needed == 0 {
		needed = 1
	}
	if f.polls[key] < needed {
		return &cloud.PollResult{Status: model.JobStatusPending}, nil
	}
	return &cloud.PollResult{Status: model.JobStatusReady, ResultURL: "video-" + key}, nil
}

func pairsForTest(n int) []model.ImagePair {
	pairs := make([]model.ImagePair, n)
	for i := range pairs {
		pairs[i] = model.ImagePair{
			KeyFrameURL:    fmt.Sprintf("kf-%d", i),
			ReplacementURL: fmt.Sprintf("rp-%d", i),
		}
	}
	return pairs
}

func runGenerator(t *testing.T, fake *fakeGeneration, pairs []model.ImagePair, maxAttempts int) *model.SegmentBatch {
	t.Helper()
	generator := NewSegmentGenerator("segment-generate-test", fake, 2, time.Millisecond, maxAttempts)

	chainCtx := cor.NewBaseContext()
	defer chainCtx.Close()
	chainCtx.SetContext(context.Background())
	chainCtx.Add(generator.GetInputParam(), &SegmentRequest{Pairs: pairs})

	generator.Execute(chainCtx)
	assert.False(t, chainCtx.HasErrors())

	batch, ok := chainCtx.Get(generator.GetOutputParam()).(*model.SegmentBatch)
	assert.True(t, ok)
	return batch
}

// TestSegmentGeneratorKeepsKeyFrameOrder verifies that segments come back
// in key-frame order even when later jobs finish before earlier ones.
func TestSegmentGeneratorKeepsKeyFrameOrder(t *testing.T) {
	fake := newFakeGeneration()
	// Earlier indices need more polls, so completion order is reversed.
	fake.readyAfter["kf-0"] = 3
	fake.readyAfter["kf-1"] = 2
	fake.readyAfter["kf-2"] = 1

	batch := runGenerator(t, fake, pairsForTest(3), 10)

	assert.Empty(t, batch.Failed)
	assert.Len(t, batch.Segments, 3)
	for i, segment := range batch.Segments {
		assert.Equal(t, i, segment.Index)
		assert.Equal(t, fmt.Sprintf("video-kf-%d", i), segment.VideoURL)
	}
}

// TestSegmentGeneratorReportsSubmitFailures verifies that a rejected
// submission fails only its own slot and leaves its neighbors' indices
// untouched.
func TestSegmentGeneratorReportsSubmitFailures(t *testing.T) {
	fake := newFakeGeneration()
	fake.failSubmit["kf-1"] = true

	batch := runGenerator(t, fake, pairsForTest(3), 10)

	assert.Len(t, batch.Segments, 2)
	assert.Equal(t, 0, batch.Segments[0].Index)
	assert.Equal(t, 2, batch.Segments[1].Index)

	assert.Len(t, batch.Failed, 1)
	assert.Equal(t, 1, batch.Failed[0].Index)
	assert.Empty(t, batch.Failed[0].TaskID)
	assert.Contains(t, batch.Failed[0].Reason, "submit failed")
}

// TestSegmentGeneratorAllFailedStillPublishes verifies that the command
// records no error even when every slot fails: the all-failed batch is
// published as data and rejection is left to the consumer.
func TestSegmentGeneratorAllFailedStillPublishes(t *testing.T) {
	fake := newFakeGeneration()
	fake.failSubmit["kf-0"] = true
	fake.failSubmit["kf-1"] = true

	batch := runGenerator(t, fake, pairsForTest(2), 10)

	assert.Empty(t, batch.Segments)
	assert.Len(t, batch.Failed, 2)
	for i, failure := range batch.Failed {
		assert.Equal(t, i, failure.Index)
		assert.NotEmpty(t, failure.Reason)
	}
}

// TestSegmentGeneratorTimesOut verifies the polling budget: a job that
// never becomes ready is marked failed after maxAttempts polls and the job
// is abandoned, not retried.
func TestSegmentGeneratorTimesOut(t *testing.T) {
	fake := newFakeGeneration()
	fake.readyAfter["kf-0"] = 100

	batch := runGenerator(t, fake, pairsForTest(1), 3)

	assert.Empty(t, batch.Segments)
	assert.Len(t, batch.Failed, 1)
	assert.Equal(t, "task-kf-0", batch.Failed[0].TaskID)
	assert.Contains(t, batch.Failed[0].Reason, "3 poll attempts")
	assert.Equal(t, 3, fake.polls["kf-0"])
}

// TestSegmentGeneratorServiceFailure verifies that a service-reported task
// failure is terminal for that slot only.
func TestSegmentGeneratorServiceFailure(t *testing.T) {
	fake := newFakeGeneration()
	fake.failTask["kf-0"] = true

	batch := runGenerator(t, fake, pairsForTest(2), 10)

	assert.Len(t, batch.Segments, 1)
	assert.Equal(t, 1, batch.Segments[0].Index)
	assert.Len(t, batch.Failed, 1)
	assert.Equal(t, 0, batch.Failed[0].Index)
	assert.Contains(t, batch.Failed[0].Reason, "reported failure")
}
