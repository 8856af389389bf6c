// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"
	"reflect"

	"github.com/aws/aws-sdk-go-v2/service/rds/types"
	"github.com/urfave/cli/v3"

	"github.com/awsctl/awsctl/internal/inventory"
	"github.com/awsctl/awsctl/internal/log"
	"github.com/awsctl/awsctl/internal/meta"
)

// iqDefaultAttrs specifies the default attributes displayed for database
// hosts in the "iq" command output.
var iqDefaultAttrs = []string{
	"DBInstanceIdentifier",
	"Engine",
	"EngineVersion",
	"DBInstanceStatus",
	"region",
}

// iqCommandAction is the action handler for the "iq" subcommand. It
// enumerates RDS instances (and clusters when requested) across the
// configured regions and emits the rows through the output pipeline.
func iqCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	if ShortCircuitTLDR(ctx, cmd, "iq") {
		return nil
	}
	if DumpSchemaIfRequested(cmd, reflect.TypeOf(types.DBInstance{})) {
		return nil
	}

	al := BuildAttrs(cmd, iqDefaultAttrs...)
	log.Debugf("attrs: %v", al)

	if cmd.Bool("diff") {
		return iqDiff(ctx, cmd)
	}

	hosts, cached, err := FetchHosts(ctx, cmd)
	if err != nil {
		return err
	}
	log.Debugf("hosts fetched: count=%d, cached=%t", len(hosts), cached)

	rows := make([]map[string]interface{}, 0, len(hosts))
	for _, host := range hosts {
		rows = append(rows, host.Vars)
	}

	return EmitJSONSlice(rows, al, cmd)
}

// iqDiff reports drift between the cached inventory snapshot and the live
// dataset, then refreshes the snapshot. No output means no drift.
func iqDiff(ctx context.Context, cmd *cli.Command) error {
	opts := InventoryOptions(cmd)
	prefix := cmd.String("cache-prefix")
	passphrase, err := ResolvePassphrase(cmd)
	if err != nil {
		return err
	}

	cached, ok := inventory.ReadSnapshot(prefix, opts, passphrase)
	if !ok {
		return fmt.Errorf("no cached snapshot under %s to diff against; run with --cache first", prefix)
	}

	live, err := inventory.Fetch(ctx, RDSClientFor(ctx, cmd), opts)
	if err != nil {
		return err
	}

	report, modified, err := inventory.DiffReport(cached, live)
	if err != nil {
		return err
	}
	if modified {
		fmt.Fprint(os.Stdout, report)
	}

	if err := inventory.WriteCache(prefix, opts, live, passphrase); err != nil {
		log.Warnf("refreshing inventory snapshot: %v", err)
	}
	return nil
}

// iqCommandBuilder constructs the cli.Command for "iq", wiring metadata,
// flags, and action handlers.
func iqCommandBuilder(meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "iq",
		Usage:     "inventory query",
		UsageText: "awsctl iq [options]",
		Flags: append([]cli.Flag{
			&cli.BoolFlag{
				Name:  "diff",
				Usage: "report drift against the cached snapshot",
				Value: false,
			},
		}, NewInventoryFlags("iq", meta.Config.Source)...),
		Action: iqCommandAction,
		Meta:   meta,
	}).Build()
}
