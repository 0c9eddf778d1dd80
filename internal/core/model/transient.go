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
// This file, `transient.go`, contains the in-memory data models that flow
// through a single orchestration run: key frames extracted from a source
// video, the generation jobs dispatched for them, the segments those jobs
// produce, and the assembled final video. None of these are persisted;
// they live only for the duration of one workflow execution and are
// discarded (together with their temporary files) when the run finishes.
package model

// KeyFrame is one representative still image for a detected scene in a
// source video. Index is the scene's ordinal position in the video; the
// chronological ordering of a run's key frames is carried entirely by this
// index, so every structure derived from key frames must preserve it.
type KeyFrame struct {
	Index     int    `json:"index"`               // Ordinal position of the scene in the source video, starting at 0.
	LocalPath string `json:"-"`                   // Path of the extracted image inside the run's temp directory.
	ImageURL  string `json:"image_url,omitempty"` // Durable URL once the frame has been uploaded to object storage.
}

// ImagePair is the strongly-typed ordered pair sent to the generation
// service. The service's wire contract is positional: the first image is the
// key frame being replaced, the second is the caller-supplied replacement.
// Representing the pair as two named fields (rather than a slice) makes a
// silent swap impossible to write without it being visible in the code.
type ImagePair struct {
	KeyFrameURL    string // URL of the key frame extracted from the source video.
	ReplacementURL string // URL of the replacement image supplied by the caller.
}

// URLs returns the pair in the wire order the generation service expects.
func (p ImagePair) URLs() []string {
	return []string{p.KeyFrameURL, p.ReplacementURL}
}

// PairImages zips the key-frame URLs with their positional replacements.
// The two lists pair by index, so a length mismatch means the caller's
// intent is unknowable and the whole run is rejected with ErrPairMismatch
// before anything is submitted.
func PairImages(keyFrameURLs, replacementURLs []string) ([]ImagePair, error) {
	if len(keyFrameURLs) != len(replacementURLs) {
		return nil, ErrPairMismatch
	}
	pairs := make([]ImagePair, len(keyFrameURLs))
	for i := range keyFrameURLs {
		pairs[i] = ImagePair{KeyFrameURL: keyFrameURLs[i], ReplacementURL: replacementURLs[i]}
	}
	return pairs, nil
}

// GenerationParams carries the caller-supplied knobs that are common to
// every generation job in a run.
type GenerationParams struct {
	Prompt            string `json:"prompt"`             // Free-text prompt describing the desired segment.
	Duration          int    `json:"duration"`           // Requested segment duration in seconds.
	Resolution        string `json:"resolution"`         // Target resolution, e.g. "720p".
	MovementAmplitude string `json:"movement_amplitude"` // Camera/subject movement hint, e.g. "auto".
	AspectRatio       string `json:"aspect_ratio"`       // Target aspect ratio, e.g. "9:16".
	Seed              string `json:"seed,omitempty"`     // Optional seed for reproducible generation.
}

// JobStatus is the state of one generation job. Jobs start in
// JobStatusPending and transition exactly once, to either JobStatusReady or
// JobStatusFailed; there is no automatic retry, so a terminal state is final.
type JobStatus string

const (
	JobStatusPending JobStatus = "pending" // Submitted, result not yet available.
	JobStatusReady   JobStatus = "ready"   // The service produced a result URL.
	JobStatusFailed  JobStatus = "failed"  // Polling budget exhausted or transport failure.
)

// GenerationJob tracks one asynchronous request to the generation service.
// It is created on submission and mutated only by the polling loop.
type GenerationJob struct {
	Index     int       `json:"index"`                // The key-frame index this job was submitted for.
	TaskID    string    `json:"task_id"`              // Opaque identifier issued by the generation service.
	Pair      ImagePair `json:"-"`                    // The image pair the job was submitted with.
	Status    JobStatus `json:"status"`               // Current state of the job.
	ResultURL string    `json:"result_url,omitempty"` // Present only when Status is JobStatusReady.
}

// Segment is one generated video clip destined for concatenation. Segments
// are ordered by their originating key-frame index, never by the order in
// which the generation service happened to complete them.
type Segment struct {
	Index    int    `json:"index"`     // Original key-frame index, preserved end to end.
	TaskID   string `json:"task_id"`   // The job that produced this clip.
	VideoURL string `json:"video_url"` // URL of the generated clip.
}

// SegmentFailure records a key-frame slot whose generation job did not
// produce a clip, and why. Failed slots are excluded from assembly but are
// never dropped silently: the batch reports them to the caller.
type SegmentFailure struct {
	Index  int    `json:"index"`             // The key-frame index that failed.
	TaskID string `json:"task_id,omitempty"` // Job identifier, empty when submission itself failed.
	Reason string `json:"reason"`            // Human-readable description of the failure.
}

// SegmentBatch is the result of one orchestration pass over a set of key
// frames: the segments that succeeded, in key-frame order, plus an explicit
// report of the indices that did not.
type SegmentBatch struct {
	Segments []Segment        `json:"segments"` // Successful clips, sorted by Index.
	Failed   []SegmentFailure `json:"failed"`   // Slots excluded from assembly, with reasons.
}

// URLs returns the ordered clip URLs for the successful segments.
func (b *SegmentBatch) URLs() []string {
	out := make([]string, 0, len(b.Segments))
	for _, s := range b.Segments {
		out = append(out, s.VideoURL)
	}
	return out
}

// AssembledVideo is the final artifact of a run: the concatenated, scored
// and uploaded video plus its generated ad title. It is immutable once
// created; a run either produces a complete AssembledVideo or fails with no
// partial output.
type AssembledVideo struct {
	VideoURL   string  `json:"video_url"`   // Durable URL of the uploaded final video.
	PreviewURL string  `json:"preview_url"` // Presigned preview URL for the same object.
	Title      string  `json:"title"`       // Generated ad title for the video.
	Duration   float64 `json:"duration"`    // Duration of the final video in seconds.
}
