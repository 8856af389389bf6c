// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	awsclient "github.com/awsctl/awsctl/internal/aws"
	"github.com/awsctl/awsctl/internal/log"
	"github.com/awsctl/awsctl/internal/meta"
	"github.com/awsctl/awsctl/internal/session"
	"github.com/awsctl/awsctl/internal/util"
)

// runCommandAction is the action handler for the "run" subcommand. It opens
// a Session Manager channel to the target, executes the command, prints the
// remote output and propagates the remote exit code.
func runCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	if ShortCircuitTLDR(ctx, cmd, "run") {
		return nil
	}

	target, region, words, err := resolveRunArgs(m, cmd.Args().Slice())
	if err != nil {
		return err
	}

	cfg, err := LoadAWSConfig(ctx, cmd, region)
	if err != nil {
		return err
	}

	opts := SessionOptions(cmd, region)
	sess, err := session.Open(ctx, awsclient.NewSSM(cfg), target, opts)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			log.Warnf("closing session to %s: %v", target, cerr)
		}
	}()

	out, rc, err := sess.Exec(ctx, strings.Join(words, " "))
	if err != nil {
		return err
	}
	fmt.Fprint(os.Stdout, out)

	if rc != 0 {
		return cli.Exit("", rc)
	}
	return nil
}

// resolveRunArgs splits the positionals into the target and the command
// words. The target may already have been parsed into meta by InitApp, in
// which case the leading positional repeats it and is dropped.
func resolveRunArgs(m meta.Meta, args []string) (string, string, []string, error) {
	target, region := m.InstanceID, m.Region

	if target == "" {
		if len(args) == 0 {
			return "", "", nil, errors.New("usage: awsctl run TARGET[::REGION] COMMAND...")
		}
		var err error
		target, region, err = util.ParseTarget(args[0])
		if err != nil {
			return "", "", nil, fmt.Errorf("failed to parse target (%s): %w", args[0], err)
		}
		args = args[1:]
	} else if len(args) > 0 && strings.HasPrefix(args[0], target) {
		args = args[1:]
	}

	if len(args) == 0 {
		return "", "", nil, errors.New("no command given")
	}

	return target, region, args, nil
}

// runCommandBuilder constructs the cli.Command for "run", wiring metadata,
// flags, and action handlers.
func runCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "execute a command on an instance through Session Manager",
		UsageText: "awsctl run TARGET[::REGION] COMMAND... [options]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags: append([]cli.Flag{
			tldrFlag,
		}, NewSSMFlags("run", meta.Config.Source)...),
		Action: runCommandAction,
	}
}
