// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	awsclient "github.com/awsctl/awsctl/internal/aws"
	"github.com/awsctl/awsctl/internal/inventory"
	"github.com/awsctl/awsctl/internal/log"
	"github.com/awsctl/awsctl/internal/meta"
	"github.com/awsctl/awsctl/internal/output"
	"github.com/awsctl/awsctl/internal/picker"
	"github.com/awsctl/awsctl/internal/session"
)

// shCommandAction is the action handler for the "sh" subcommand. It hands
// the terminal to an interactive Session Manager shell on the target. With
// no target argument, a picker over the cached inventory snapshot is
// offered.
func shCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	if ShortCircuitTLDR(ctx, cmd, "sh") {
		return nil
	}

	target, region := m.InstanceID, m.Region
	if target == "" {
		var ok bool
		target, region, ok = pickTarget(cmd)
		if !ok {
			return errors.New("no target given and nothing picked")
		}
	}

	cfg, err := LoadAWSConfig(ctx, cmd, region)
	if err != nil {
		return err
	}

	opts := SessionOptions(cmd, region)
	return session.Interactive(ctx, awsclient.NewSSM(cfg), target, opts)
}

// pickTarget offers an interactive selection over the cached inventory
// snapshot. ok is false when there is no snapshot or the user backed out.
func pickTarget(cmd *cli.Command) (string, string, bool) {
	passphrase, err := ResolvePassphrase(cmd)
	if err != nil {
		log.Warnf("reading passphrase: %v", err)
		return "", "", false
	}

	hosts, ok := inventory.ReadSnapshot(
		cmd.String("cache-prefix"), InventoryOptions(cmd), passphrase)
	if !ok {
		log.Warnf("no cached inventory snapshot under %s to pick from", cmd.String("cache-prefix"))
		return "", "", false
	}

	items := make([]picker.Item, 0, len(hosts))
	for _, host := range hosts {
		region, _ := host.Vars["region"].(string)
		items = append(items, picker.Item{
			Name:   host.Name,
			Region: region,
			Detail: fmt.Sprintf("%s %s",
				output.InterfaceToString(host.Vars["Engine"], "-"),
				output.InterfaceToString(host.Vars["DBInstanceStatus"], "-")),
		})
	}

	item, ok := picker.Pick(items)
	if !ok {
		return "", "", false
	}
	return item.Name, item.Region, true
}

// shCommandBuilder constructs the cli.Command for "sh", wiring metadata,
// flags, and action handlers.
func shCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "sh",
		Usage:     "interactive shell on an instance through Session Manager",
		UsageText: "awsctl sh [TARGET[::REGION]] [options]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags: append(append([]cli.Flag{
			tldrFlag,
		}, NewInventoryShapeFlags("sh", meta.Config.Source)...),
			NewSSMFlags("sh", meta.Config.Source)...),
		Action: shCommandAction,
	}
}
