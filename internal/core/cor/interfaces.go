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

// Package cor (Chain of Responsibility) provides the building blocks for
// expressing workflows as ordered sequences of commands. This file defines
// the interfaces that govern the pattern: a shared Context carrying state,
// errors and temporary-resource bookkeeping through a run, an atomic
// Command, and a Chain that sequences commands and pipes each command's
// output into the next command's input.
package cor

import (
	"context"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// CtxIn and CtxOut are the keys used to pipe the primary data flow through
// a chain: a command's value under CtxOut becomes the next command's value
// under CtxIn.
const (
	CtxIn  = "__IN__"
	CtxOut = "__OUT__"
)

// Context is the shared state object passed through a chain of commands for
// one orchestration run. It carries arbitrary key-value data, errors keyed
// by the command that produced them, and the temporary files and
// directories the run has created so they can be released on every exit
// path.
type Context interface {
	// SetContext sets the standard Go context, used for cancellation and
	// for carrying the active OpenTelemetry span.
	SetContext(context context.Context)

	// GetContext retrieves the standard Go context.
	GetContext() context.Context

	// Add stores a key-value pair; it returns the Context for chaining.
	Add(key string, value interface{}) Context

	// AddError records an error against the command name that produced it.
	AddError(key string, err error)

	// GetErrors returns all errors collected during the run.
	GetErrors() map[string]error

	// Get retrieves a value by key, or nil.
	Get(key string) interface{}

	// Remove deletes a key-value pair.
	Remove(key string)

	// HasErrors reports whether any command has recorded an error.
	HasErrors() bool

	// AddTempFile tracks a temporary file for end-of-run cleanup.
	AddTempFile(file string)

	// AddTempDir tracks a temporary directory (removed recursively) for
	// end-of-run cleanup.
	AddTempDir(dir string)

	// GetTempFiles returns all tracked temporary file paths.
	GetTempFiles() []string

	// GetTempDirs returns all tracked temporary directory paths.
	GetTempDirs() []string

	// Close removes every tracked temporary file and directory. Callers
	// defer it at the start of a run so cleanup happens on success and
	// failure alike.
	Close()
}

// Executable is anything with a core execution step.
type Executable interface {
	// Execute runs the business logic, reading inputs from and writing
	// outputs to the shared Context.
	Execute(context Context)
}

// Command is an atomic, individually testable unit of work within a chain.
type Command interface {
	Executable

	// GetName returns the command's name, used for logging, telemetry and
	// error attribution.
	GetName() string

	// GetInputParam returns the context key for this command's primary input.
	GetInputParam() string

	// GetOutputParam returns the context key for this command's primary output.
	GetOutputParam() string

	// IsExecutable is the precondition check run before Execute.
	IsExecutable(context Context) bool

	// GetTracer returns the command's OpenTelemetry tracer.
	GetTracer() trace.Tracer

	// GetMeter returns the command's OpenTelemetry meter.
	GetMeter() metric.Meter

	// GetSuccessCounter returns the counter incremented on success.
	GetSuccessCounter() metric.Int64Counter

	// GetErrorCounter returns the counter incremented on failure.
	GetErrorCounter() metric.Int64Counter
}

// Chain is a sequence of commands. A Chain is itself a Command, so chains
// can be nested (composite pattern).
type Chain interface {
	Command

	// ContinueOnFailure configures whether the chain keeps executing after
	// a command records an error. The default is to stop at the first one.
	ContinueOnFailure(bool) Chain

	// AddCommand appends a command to the execution sequence.
	AddCommand(command Command) Chain
}
