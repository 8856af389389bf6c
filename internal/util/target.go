// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package util

import (
	"os"
	"regexp"
	"strings"
)

// instanceIDRegex matches EC2 instance IDs (short legacy form and the
// current 17-hex-char form) and SSM managed-instance IDs.
var instanceIDRegex = regexp.MustCompile(`^(i-[0-9a-f]{8}([0-9a-f]{9})?|mi-[0-9a-f]{17})$`)

// IsInstanceID reports whether s looks like an EC2 or managed instance ID.
func IsInstanceID(s string) bool {
	return instanceIDRegex.MatchString(s)
}

// ParseTarget parses a target string and returns the instance ID and any
// optional region override. Targets take the form INSTANCE_ID or
// INSTANCE_ID::REGION. It returns an error if the instance ID is empty or
// malformed.
func ParseTarget(target string) (string, string, error) {
	if target == "" {
		return "", "", os.ErrInvalid
	}

	var instance, region string

	// First, split the spec to see if there is a ::region override.
	parts := strings.Split(target, "::")
	if len(parts) > 1 {
		region = parts[1]
	}
	instance = parts[0]

	if !IsInstanceID(instance) {
		return "", "", os.ErrInvalid
	}

	return instance, region, nil
}

// ParseRemotePath splits a cp-style file spec into its instance and path
// halves. Specs of the form INSTANCE_ID:/path are remote; anything else is
// treated as a local path and returned with an empty instance.
func ParseRemotePath(spec string) (string, string) {
	idx := strings.Index(spec, ":")
	if idx <= 0 {
		return "", spec
	}
	instance, path := spec[:idx], spec[idx+1:]
	if !IsInstanceID(instance) || path == "" {
		return "", spec
	}
	return instance, path
}
