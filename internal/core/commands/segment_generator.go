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

// This file defines the orchestrator command for segment generation: it
// fans a batch of image pairs out to the asynchronous generation service
// and gathers the resulting clips back into key-frame order.
//
// Logic Flow:
//  1. Submit one job per image pair in parallel. Each goroutine writes only
//     its own slot of the jobs slice, so ordering never depends on
//     completion order.
//  2. Poll the submitted jobs on a fixed-size worker pool. Each job is
//     polled on an interval until it is ready, the service reports failure,
//     or the attempt budget runs out.
//  3. Fold the jobs into a SegmentBatch: ready jobs become ordered
//     segments, everything else becomes an explicit failure entry. A failed
//     slot never shifts the indices of its neighbors.
package commands

import (
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/adify/go-adify-backend/internal/cloud"
	"github.com/adify/go-adify-backend/internal/core/cor"
	"github.com/adify/go-adify-backend/internal/core/model"
)

// CtxSegmentBatch is the named context key under which the orchestrator
// also publishes its batch, so workflows that pipe the batch onward can
// still report the failed slots at the end of the run.
const CtxSegmentBatch = "segment_batch"

// SegmentRequest is the input for one orchestration pass: the ordered
// image pairs plus the generation knobs shared by every job in the batch.
type SegmentRequest struct {
	Pairs  []model.ImagePair
	Params model.GenerationParams
}

// SegmentGenerator is the command that runs the submit/poll/collect cycle
// against the generation service.
type SegmentGenerator struct {
	cor.BaseCommand
	client       cloud.GenerationService
	workers      int
	pollInterval time.Duration
	maxAttempts  int
}

// NewSegmentGenerator creates the orchestrator. workers bounds both the
// submission fan-out and the polling pool; pollInterval and maxAttempts
// form the per-job polling budget.
func NewSegmentGenerator(name string, client cloud.GenerationService, workers int, pollInterval time.Duration, maxAttempts int) *SegmentGenerator {
	if workers <= 0 {
		workers = 4
	}
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}
	if maxAttempts <= 0 {
		maxAttempts = 60
	}
	return &SegmentGenerator{
		BaseCommand:  *cor.NewBaseCommand(name),
		client:       client,
		workers:      workers,
		pollInterval: pollInterval,
		maxAttempts:  maxAttempts,
	}
}

// Execute runs the full cycle and publishes a *model.SegmentBatch. The
// command itself never errors: every failure, up to and including all
// slots, is reported inside the batch, and an empty batch is rejected by
// whatever consumes it next.
func (c *SegmentGenerator) Execute(context cor.Context) {
	request := context.Get(c.GetInputParam()).(*SegmentRequest)

	jobs := make([]model.GenerationJob, len(request.Pairs))
	reasons := make([]string, len(request.Pairs))

	group, groupCtx := errgroup.WithContext(context.GetContext())
	group.SetLimit(c.workers)
	for i := range request.Pairs {
		group.Go(func() error {
			taskID, err := c.client.Submit(groupCtx, request.Pairs[i], request.Params)
			if err != nil {
				submitErr := &model.JobSubmitError{Index: i, Err: err}
				jobs[i] = model.GenerationJob{Index: i, Pair: request.Pairs[i], Status: model.JobStatusFailed}
				reasons[i] = submitErr.Error()
				return nil
			}
			jobs[i] = model.GenerationJob{Index: i, TaskID: taskID, Pair: request.Pairs[i], Status: model.JobStatusPending}
			return nil
		})
	}
	// Submission goroutines report failures through their slot, never
	// through the group error.
	_ = group.Wait()

	c.pollAll(context, jobs, reasons)

	batch := &model.SegmentBatch{}
	for i := range jobs {
		job := &jobs[i]
		if job.Status == model.JobStatusReady {
			batch.Segments = append(batch.Segments, model.Segment{
				Index:    job.Index,
				TaskID:   job.TaskID,
				VideoURL: job.ResultURL,
			})
			continue
		}
		batch.Failed = append(batch.Failed, model.SegmentFailure{
			Index:  job.Index,
			TaskID: job.TaskID,
			Reason: reasons[i],
		})
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(CtxSegmentBatch, batch)
	context.Add(c.GetOutputParam(), batch)
}

// pollAll drains the pending jobs through a fixed-size worker pool. Each
// worker owns one job at a time and mutates only that job's slot.
func (c *SegmentGenerator) pollAll(context cor.Context, jobs []model.GenerationJob, reasons []string) {
	pending := make(chan *model.GenerationJob, len(jobs))
	for i := range jobs {
		if jobs[i].Status == model.JobStatusPending {
			pending <- &jobs[i]
		}
	}
	close(pending)

	var wg sync.WaitGroup
	for w := 0; w < c.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range pending {
				c.pollUntilDone(context, job, reasons)
			}
		}()
	}
	wg.Wait()
}

// pollUntilDone polls one job until it reaches a terminal state or the
// attempt budget runs out. A transport failure on a single poll consumes
// an attempt but does not fail the job; budget exhaustion does.
func (c *SegmentGenerator) pollUntilDone(context cor.Context, job *model.GenerationJob, reasons []string) {
	ctx := context.GetContext()
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		result, err := c.client.Poll(ctx, job.TaskID)
		if err != nil {
			queryErr := &model.JobQueryError{TaskID: job.TaskID, Err: err}
			reasons[job.Index] = queryErr.Error()
		} else {
			switch result.Status {
			case model.JobStatusReady:
				job.Status = model.JobStatusReady
				job.ResultURL = result.ResultURL
				return
			case model.JobStatusFailed:
				job.Status = model.JobStatusFailed
				reasons[job.Index] = "generation service reported failure for task " + job.TaskID
				return
			}
		}

		select {
		case <-ctx.Done():
			job.Status = model.JobStatusFailed
			reasons[job.Index] = ctx.Err().Error()
			return
		case <-time.After(c.pollInterval):
		}
	}

	job.Status = model.JobStatusFailed
	timeoutErr := &model.JobTimeoutError{TaskID: job.TaskID, Index: job.Index, Attempts: c.maxAttempts}
	reasons[job.Index] = timeoutErr.Error()
}
