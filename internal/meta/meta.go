// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package meta

import (
	"context"

	"github.com/awsctl/awsctl/internal/config"
)

// TargetSpec holds the resolved target instance and optional region override
// parsed from an INSTANCE_ID::REGION argument.
type TargetSpec struct {
	InstanceID string
	Region     string
}

// Meta contains runtime metadata shared by commands. It carries CLI arguments,
// loaded configuration, context, the resolved target specification, and the
// starting working directory.
type Meta struct {
	Args    []string
	Config  config.Type
	Context context.Context
	TargetSpec
	StartingDir string
}
