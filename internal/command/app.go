// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/awsctl/awsctl/internal/config"
	"github.com/awsctl/awsctl/internal/meta"
	"github.com/awsctl/awsctl/internal/util"
)

func InitApp(ctx context.Context, args []string) (*cli.Command, error) {

	// Save the CWD at startup and then defer restoring it so we're tidy.
	sd, _ := os.Getwd()
	defer func() {
		if err := os.Chdir(sd); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to restore directory: %v\n", err)
		}
	}()

	// The arg[1] immediately following the binary (arg[0]) is the awsctl
	// subcommand and also represents the namespace key to be used when retrieving
	// config values. arg[1] could be -h/--help, so ignore it if it appears to be
	// a flag.
	var ns string
	if len(args) > 1 && !strings.HasPrefix(args[1], "-") {
		ns = args[1]
	}

	// allow short if-style local cfg; no actual outer cfg
	cfg2, _ := config.Load() //nolint
	cfg2.Namespace = ns
	m := meta.Meta{
		Args:        args,
		Config:      cfg2,
		Context:     ctx,
		StartingDir: sd,
	}

	// The session commands take a target as their first positional,
	// INSTANCE_ID optionally suffixed with ::REGION. Parse it up front so the
	// actions get a resolved TargetSpec. run requires one; sh falls back to
	// the inventory picker; cp carries the instance inside its path specs.
	if (ns == "run" || ns == "sh") && len(args) > 2 && !strings.HasPrefix(args[2], "-") {
		if instance, region, err := util.ParseTarget(args[2]); err == nil {
			m.TargetSpec = meta.TargetSpec{InstanceID: instance, Region: region}
		} else if ns == "run" {
			return nil, fmt.Errorf("failed to parse target (%s): %w", args[2], err)
		}
	}

	app := &cli.Command{
		Name:  "awsctl",
		Usage: "AWS Control",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "version",
				Aliases:     []string{"v"},
				Usage:       "awsctl version info",
				HideDefault: true,
			},
		},
	}

	app.Commands = append(app.Commands,
		iqCommandBuilder(m),
		invCommandBuilder(m),
		runCommandBuilder(m),
		shCommandBuilder(m),
		cpCommandBuilder(m),
		completionCommandBuilder(m),
	)

	// Make sure flags are sorted for the --help text.
	for _, cmd := range app.Commands {
		sort.Slice(cmd.Flags, func(i, j int) bool {
			return cmd.Flags[i].Names()[0] < cmd.Flags[j].Names()[0]
		})
	}

	return app, nil
}
