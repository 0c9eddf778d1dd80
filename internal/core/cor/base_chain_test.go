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

// Package cor_test exercises the chain mechanics: output-to-input piping,
// stop-on-error behavior and temporary-resource cleanup.
package cor_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/adify/go-adify-backend/internal/core/cor"
)

// appendCommand appends its suffix to the piped string value.
type appendCommand struct {
	cor.BaseCommand
	suffix string
}

func newAppendCommand(name, suffix string) *appendCommand {
	return &appendCommand{BaseCommand: *cor.NewBaseCommand(name), suffix: suffix}
}

func (c *appendCommand) Execute(ctx cor.Context) {
	in := ctx.Get(c.GetInputParam()).(string)
	ctx.Add(c.GetOutputParam(), in+c.suffix)
}

// failingCommand always records an error.
type failingCommand struct {
	cor.BaseCommand
}

func (c *failingCommand) Execute(ctx cor.Context) {
	ctx.AddError(c.GetName(), errors.New("boom"))
}

// TestChainPipesOutputToInput verifies the flip-flop: each command's
// output value becomes the next command's input.
func TestChainPipesOutputToInput(t *testing.T) {
	chain := cor.NewBaseChain("test-chain")
	chain.AddCommand(newAppendCommand("first", "-a"))
	chain.AddCommand(newAppendCommand("second", "-b"))

	chainCtx := cor.NewBaseContext()
	defer chainCtx.Close()
	chainCtx.SetContext(context.Background())
	chainCtx.Add(cor.CtxIn, "start")

	chain.Execute(chainCtx)

	assert.False(t, chainCtx.HasErrors())
	assert.Equal(t, "start-a-b", chainCtx.Get(cor.CtxIn))
}

// TestChainStopsOnError verifies that commands after a failure do not run
// unless ContinueOnFailure is set.
func TestChainStopsOnError(t *testing.T) {
	chain := cor.NewBaseChain("failing-chain")
	chain.AddCommand(newAppendCommand("first", "-a"))
	chain.AddCommand(&failingCommand{BaseCommand: *cor.NewBaseCommand("failing")})
	chain.AddCommand(newAppendCommand("unreached", "-c"))

	chainCtx := cor.NewBaseContext()
	defer chainCtx.Close()
	chainCtx.SetContext(context.Background())
	chainCtx.Add(cor.CtxIn, "start")

	chain.Execute(chainCtx)

	assert.True(t, chainCtx.HasErrors())
	assert.Contains(t, chainCtx.GetErrors(), "failing")
	// The third command never ran, so the piped value still holds the
	// output of the first one.
	assert.Equal(t, "start-a", chainCtx.Get(cor.CtxIn))
}

// TestContextCloseRemovesTempResources verifies that Close removes both
// tracked files and tracked directories.
func TestContextCloseRemovesTempResources(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run-workspace")
	assert.NoError(t, os.MkdirAll(dir, 0o750))
	file := filepath.Join(dir, "artifact.bin")
	assert.NoError(t, os.WriteFile(file, []byte("x"), 0o600))

	chainCtx := cor.NewBaseContext()
	chainCtx.SetContext(context.Background())
	chainCtx.AddTempFile(file)
	chainCtx.AddTempDir(dir)
	chainCtx.Close()

	_, err := os.Stat(file)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}
