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
// This file defines the error taxonomy for the generation pipeline. Each
// stage of a run fails with its own error kind so callers (and the API
// layer) can report which stage broke without string matching:
//
//   - ExtractionError:  source video undecodable, or zero scenes detected.
//   - TransferError:    network/storage failure on a download or upload.
//   - JobSubmitError:   transport failure submitting a generation job.
//   - JobQueryError:    transport failure polling a generation job. A job
//     that is simply still pending is NOT an error.
//   - JobTimeoutError:  a job never reached ready within the polling budget.
//   - AssemblyError:    concatenation, audio reconciliation or mux failure.
//   - TitleParseError:  the title collaborator's response could not be
//     parsed as the expected structured text.
//
// All kinds are plain structs wrapping an underlying cause, usable with
// errors.Is / errors.As.
package model

import (
	"errors"
	"fmt"
)

// ErrPairMismatch is returned when the replacement-image list does not line
// up one-to-one with the extracted key frames. Pairing is positional, so a
// length mismatch is a fatal validation error rather than a truncation.
var ErrPairMismatch = errors.New("replacement image count does not match key frame count")

// ExtractionError indicates the frame extractor could not produce key
// frames: the source video failed to decode, or no scene boundaries were
// found at all.
type ExtractionError struct {
	Path string // The video file that failed.
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("frame extraction failed for %s: %v", e.Path, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// TransferError indicates a download or upload failed at the transport or
// storage layer. Transfers never retry internally; resilience is the
// caller's concern.
type TransferError struct {
	Op  string // "download" or "upload".
	URL string // The remote URL or object involved.
	Err error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("%s failed for %s: %v", e.Op, e.URL, e.Err)
}

func (e *TransferError) Unwrap() error { return e.Err }

// JobSubmitError indicates the generation service rejected, or transport
// prevented, a job submission.
type JobSubmitError struct {
	Index int // The key-frame index the submission was for.
	Err   error
}

func (e *JobSubmitError) Error() string {
	return fmt.Sprintf("generation job submit failed for index %d: %v", e.Index, e.Err)
}

func (e *JobSubmitError) Unwrap() error { return e.Err }

// JobQueryError indicates a transport failure while polling a job's status.
// It is distinct from the job being pending, which is a valid intermediate
// state and never an error.
type JobQueryError struct {
	TaskID string
	Err    error
}

func (e *JobQueryError) Error() string {
	return fmt.Sprintf("generation job query failed for task %s: %v", e.TaskID, e.Err)
}

func (e *JobQueryError) Unwrap() error { return e.Err }

// JobTimeoutError indicates a job never reached the ready state within the
// configured polling budget. The slot is marked failed; the job itself is
// abandoned, never retried.
type JobTimeoutError struct {
	TaskID   string
	Index    int
	Attempts int // Poll attempts consumed before giving up.
}

func (e *JobTimeoutError) Error() string {
	return fmt.Sprintf("generation job %s (index %d) not ready after %d poll attempts", e.TaskID, e.Index, e.Attempts)
}

// AssemblyError indicates the final concatenation, audio reconciliation,
// encode or upload failed. Assembly is all-or-nothing: no partial video is
// ever returned alongside this error.
type AssemblyError struct {
	Stage string // The assembly step that failed, e.g. "concat", "mux".
	Err   error
}

func (e *AssemblyError) Error() string {
	return fmt.Sprintf("video assembly failed at %s: %v", e.Stage, e.Err)
}

func (e *AssemblyError) Unwrap() error { return e.Err }

// TitleParseError indicates the title collaborator returned text that could
// not be coerced into the expected JSON object, even after lenient cleanup.
type TitleParseError struct {
	Raw string // The raw model output, for diagnostics.
	Err error
}

func (e *TitleParseError) Error() string {
	return fmt.Sprintf("title response not parseable: %v", e.Err)
}

func (e *TitleParseError) Unwrap() error { return e.Err }
