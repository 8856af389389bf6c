// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTarget(t *testing.T) {
	tests := []struct {
		name         string
		target       string
		wantInstance string
		wantRegion   string
		wantErr      bool
	}{
		{
			name:         "plain instance id",
			target:       "i-0123456789abcdef0",
			wantInstance: "i-0123456789abcdef0",
		},
		{
			name:         "legacy short id",
			target:       "i-12345678",
			wantInstance: "i-12345678",
		},
		{
			name:         "instance with region override",
			target:       "i-0123456789abcdef0::eu-west-1",
			wantInstance: "i-0123456789abcdef0",
			wantRegion:   "eu-west-1",
		},
		{
			name:         "managed instance",
			target:       "mi-0123456789abcdef0",
			wantInstance: "mi-0123456789abcdef0",
		},
		{
			name:    "empty",
			target:  "",
			wantErr: true,
		},
		{
			name:    "not an instance id",
			target:  "my-host",
			wantErr: true,
		},
		{
			name:    "region only",
			target:  "::us-east-1",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			instance, region, err := ParseTarget(tt.target)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.wantInstance, instance)
			assert.Equal(t, tt.wantRegion, region)
		})
	}
}

func TestParseRemotePath(t *testing.T) {
	tests := []struct {
		name         string
		spec         string
		wantInstance string
		wantPath     string
	}{
		{
			name:         "remote spec",
			spec:         "i-0123456789abcdef0:/tmp/file.txt",
			wantInstance: "i-0123456789abcdef0",
			wantPath:     "/tmp/file.txt",
		},
		{
			name:     "local path",
			spec:     "./file.txt",
			wantPath: "./file.txt",
		},
		{
			name:     "colon but not an instance",
			spec:     "host:/tmp/file.txt",
			wantPath: "host:/tmp/file.txt",
		},
		{
			name:     "instance with empty path",
			spec:     "i-0123456789abcdef0:",
			wantPath: "i-0123456789abcdef0:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			instance, path := ParseRemotePath(tt.spec)
			assert.Equal(t, tt.wantInstance, instance)
			assert.Equal(t, tt.wantPath, path)
		})
	}
}

func TestIsInstanceID(t *testing.T) {
	assert.True(t, IsInstanceID("i-0123456789abcdef0"))
	assert.True(t, IsInstanceID("i-1234abcd"))
	assert.False(t, IsInstanceID("i-xyz"))
	assert.False(t, IsInstanceID("db-instance-1"))
}
