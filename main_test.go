// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awsctl/awsctl/internal/config"
)

func TestHandleVersion(t *testing.T) {
	assert.True(t, handleVersion([]string{"awsctl", "--version"}))
	assert.True(t, handleVersion([]string{"awsctl", "iq", "-v"}))
	assert.False(t, handleVersion([]string{"awsctl", "iq"}))
}

func TestHandleNakedCommand(t *testing.T) {
	assert.Equal(t, []string{"awsctl", "--help"}, handleNakedCommand([]string{"awsctl"}))
	assert.Equal(t, []string{"awsctl", "iq"}, handleNakedCommand([]string{"awsctl", "iq"}))
}

func TestProcessCommandArgs_CompletionPassthrough(t *testing.T) {
	args := []string{"awsctl", "completion", "bash"}
	assert.Equal(t, args, processCommandArgs(args))
}

func TestProcessSetOnly(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "awsctl.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte(`
iq:
  prod:
    - "--regions us-east-1"
    - "--cache --titles"
`), 0o600))
	t.Setenv("AWSCTL_CFG_FILE", cfg)
	_, err := config.Load()
	require.NoError(t, err)

	got := processSetOnly([]string{"awsctl", "iq", "@prod", "--color"})

	assert.Equal(t,
		[]string{"awsctl", "iq", "--regions", "us-east-1", "--cache", "--titles", "--color"},
		got)
}

func TestProcessSetOnly_NoSet(t *testing.T) {
	args := []string{"awsctl", "iq", "--color"}
	assert.Equal(t, args, processSetOnly(args))
}

func TestProcessSetOnly_UnknownSet(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "awsctl.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("iq: {}\n"), 0o600))
	t.Setenv("AWSCTL_CFG_FILE", cfg)
	_, err := config.Load()
	require.NoError(t, err)

	// The @set argument is consumed even when the set resolves to nothing.
	got := processSetOnly([]string{"awsctl", "iq", "@nope", "--color"})
	assert.Equal(t, []string{"awsctl", "iq", "--color"}, got)
}
