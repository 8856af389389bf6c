// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	awsclient "github.com/awsctl/awsctl/internal/aws"
	"github.com/awsctl/awsctl/internal/log"
	"github.com/awsctl/awsctl/internal/meta"
	"github.com/awsctl/awsctl/internal/session"
	"github.com/awsctl/awsctl/internal/transfer"
	"github.com/awsctl/awsctl/internal/util"
)

// cpCommandAction is the action handler for the "cp" subcommand. It copies a
// file between the local host and an instance through the S3 staging bucket.
// Exactly one side of the copy must be remote (INSTANCE_ID:/path).
func cpCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	if ShortCircuitTLDR(ctx, cmd, "cp") {
		return nil
	}

	args := cmd.Args().Slice()
	if len(args) != 2 {
		return errors.New("usage: awsctl cp SRC DST (one side INSTANCE_ID:/path)")
	}

	bucket := cmd.String("bucket")
	if bucket == "" {
		return errors.New("cp needs --bucket (or AWSCTL_BUCKET) to stage the transfer")
	}

	srcInstance, srcPath := util.ParseRemotePath(args[0])
	dstInstance, dstPath := util.ParseRemotePath(args[1])

	var instance string
	put := false
	switch {
	case srcInstance == "" && dstInstance != "":
		instance, put = dstInstance, true
	case srcInstance != "" && dstInstance == "":
		instance = srcInstance
	default:
		return fmt.Errorf("exactly one of %q, %q must be INSTANCE_ID:/path", args[0], args[1])
	}

	cfg, err := LoadAWSConfig(ctx, cmd, "")
	if err != nil {
		return err
	}

	opts := SessionOptions(cmd, "")
	sess, err := session.Open(ctx, awsclient.NewSSM(cfg), instance, opts)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			log.Warnf("closing session to %s: %v", instance, cerr)
		}
	}()

	t := transfer.New(awsclient.NewS3(cfg), bucket)
	if put {
		return t.Put(ctx, sess, instance, srcPath, dstPath)
	}
	return t.Fetch(ctx, sess, instance, srcPath, dstPath)
}

// cpCommandBuilder constructs the cli.Command for "cp", wiring metadata,
// flags, and action handlers.
func cpCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "cp",
		Usage:     "copy a file to or from an instance through S3",
		UsageText: "awsctl cp SRC DST [options]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags: append([]cli.Flag{
			tldrFlag,
			NewBucketFlag("cp", meta.Config.Source),
		}, NewSSMFlags("cp", meta.Config.Source)...),
		Action: cpCommandAction,
	}
}
