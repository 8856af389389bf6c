// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"reflect"

	"github.com/aws/aws-sdk-go-v2/service/rds/types"
	"github.com/urfave/cli/v3"
	yamlv2 "gopkg.in/yaml.v2"

	"github.com/awsctl/awsctl/internal/inventory"
	"github.com/awsctl/awsctl/internal/log"
	"github.com/awsctl/awsctl/internal/meta"
)

// invCommandAction is the action handler for the "inv" subcommand. It builds
// the full grouped inventory document (hosts, groups, composed vars) and
// renders it as JSON or YAML.
func invCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	if ShortCircuitTLDR(ctx, cmd, "inv") {
		return nil
	}
	if DumpSchemaIfRequested(cmd, reflect.TypeOf(types.DBInstance{})) {
		return nil
	}

	hosts, cached, err := FetchHosts(ctx, cmd)
	if err != nil {
		return err
	}
	log.Debugf("hosts fetched: count=%d, cached=%t", len(hosts), cached)

	inv, err := inventory.Build(hosts, InventoryOptions(cmd))
	if err != nil {
		return err
	}

	switch cmd.String("output") {
	case "yaml":
		rendered, err := yamlv2.Marshal(inv)
		if err != nil {
			return fmt.Errorf("rendering inventory: %w", err)
		}
		_, _ = os.Stdout.Write(rendered)
	default:
		// The inventory document is a keyed structure, not a row set, so
		// text falls through to JSON.
		rendered, err := json.MarshalIndent(inv, "", "  ")
		if err != nil {
			return fmt.Errorf("rendering inventory: %w", err)
		}
		fmt.Fprintln(os.Stdout, string(rendered))
	}

	return nil
}

// invCommandBuilder constructs the cli.Command for "inv", wiring metadata,
// flags, and action handlers.
func invCommandBuilder(meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "inv",
		Usage:     "render the grouped inventory document",
		UsageText: "awsctl inv [options]",
		Flags:     NewInventoryFlags("inv", meta.Config.Source),
		Action:    invCommandAction,
		Meta:      meta,
	}).Build()
}
