// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"reflect"
	"strings"
	"time"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/urfave/cli/v3"

	"github.com/awsctl/awsctl/internal/attrs"
	awsclient "github.com/awsctl/awsctl/internal/aws"
	"github.com/awsctl/awsctl/internal/cacheutil"
	"github.com/awsctl/awsctl/internal/config"
	"github.com/awsctl/awsctl/internal/filters"
	"github.com/awsctl/awsctl/internal/inventory"
	"github.com/awsctl/awsctl/internal/log"
	"github.com/awsctl/awsctl/internal/meta"
	"github.com/awsctl/awsctl/internal/output"
	"github.com/awsctl/awsctl/internal/session"
)

// BuildAttrs constructs an AttrList with defaults and optional extras from
// --attrs, then applies the global transform spec.
func BuildAttrs(cmd *cli.Command, defaults ...string) (al attrs.AttrList) {
	//nolint:errcheck
	{
		for _, d := range defaults {
			al.Set(d)
		}
		if extras := cmd.String("attrs"); extras != "" {
			al.Set(extras)
		}
		al.SetGlobalTransformSpec()
	}
	return
}

// DumpSchemaIfRequested writes the schema for the provided type to stdout
// when --schema is set, and returns true if it handled the request.
func DumpSchemaIfRequested(cmd *cli.Command, t reflect.Type) bool {
	if cmd.Bool("schema") {
		output.DumpSchema("", t, nil)
		return true
	}
	return false
}

// EmitJSONSlice marshals a row slice as JSON and passes it to the common
// output routine.
func EmitJSONSlice(results any, al attrs.AttrList, cmd *cli.Command) error {
	var raw bytes.Buffer
	if err := json.NewEncoder(&raw).Encode(results); err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}
	output.SliceDiceSpit(raw, al, cmd, "", os.Stdout, nil)
	return nil
}

// GetMeta returns the meta.Meta stored in the command's Metadata. If missing
// or of an unexpected type, it returns the zero value.
func GetMeta(cmd *cli.Command) meta.Meta {
	if cmd == nil || cmd.Metadata == nil {
		return meta.Meta{}
	}
	if m, ok := cmd.Metadata["meta"].(meta.Meta); ok {
		return m
	}
	return meta.Meta{}
}

// ShortCircuitTLDR checks the --tldr flag and, if present and available,
// runs `tldr awsctl <subcmd>` and returns true so the caller can exit early.
func ShortCircuitTLDR(ctx context.Context, cmd *cli.Command, subcmd string) bool {
	if cmd.Bool("tldr") {
		if _, err := exec.LookPath("tldr"); err == nil {
			c := exec.CommandContext(ctx, "tldr", "awsctl", subcmd)
			c.Stdout = os.Stdout
			c.Stderr = os.Stderr
			_ = c.Run()
		}
		return true
	}
	return false
}

// LoadAWSConfig assembles SDK config from the command's credential flags,
// scoped to the given region. The region argument wins over --region so a
// ::REGION target override flows through.
func LoadAWSConfig(ctx context.Context, cmd *cli.Command, region string) (awsv2.Config, error) {
	if region == "" {
		region = cmd.String("region")
	}

	opts := []awsclient.Option{
		awsclient.WithRegion(region),
	}
	if id := cmd.String("access-key-id"); id != "" {
		opts = append(opts,
			awsclient.WithStaticCredentials(id,
				cmd.String("secret-access-key"), cmd.String("session-token")))
	}
	if profile := cmd.String("profile"); profile != "" {
		opts = append(opts, awsclient.WithProfile(profile))
	}

	cfg, err := awsclient.LoadAWSConfig(ctx, opts...)
	if err != nil {
		return awsv2.Config{}, err
	}

	if cmd.Bool("validate-credentials") {
		arn, err := awsclient.ValidateCredentials(ctx, cfg)
		if err != nil {
			return awsv2.Config{}, fmt.Errorf("validating credentials: %w", err)
		}
		log.Debugf("credentials validated: arn=%s", arn)
	}

	return cfg, nil
}

// SessionOptions maps the SSM flag set onto session.Options.
func SessionOptions(cmd *cli.Command, region string) session.Options {
	if region == "" {
		region = cmd.String("region")
	}
	return session.Options{
		Plugin:       cmd.String("plugin"),
		Region:       region,
		Profile:      cmd.String("profile"),
		DocumentName: cmd.String("document-name"),
		Retries:      int(cmd.Int("retries")),
		Timeout:      time.Duration(cmd.Int("ssm-timeout")) * time.Second,
	}
}

// InventoryOptions maps the inventory flag set onto inventory.Options.
// Server-side filters come from both --aws-filter pairs and the leading
// underscore entries of --filter.
func InventoryOptions(cmd *cli.Command) inventory.Options {
	regions := cmd.StringSlice("regions")
	if len(regions) == 0 {
		if region := cmd.String("region"); region != "" {
			regions = []string{region}
		}
	}

	awsFilters := filters.ServerSideFilters(cmd.String("filter"))
	for name, values := range parseAWSFilters(cmd.StringSlice("aws-filter")) {
		awsFilters[name] = append(awsFilters[name], values...)
	}

	return inventory.Options{
		Regions:           regions,
		IncludeClusters:   boolFromFlagOrConfig(cmd, "include-clusters"),
		Statuses:          cmd.StringSlice("statuses"),
		AWSFilters:        awsFilters,
		StrictPermissions: boolFromFlagOrConfig(cmd, "strict-permissions"),
		Strict:            boolFromFlagOrConfig(cmd, "strict"),
		KeyedGroups:       cmd.StringSlice("keyed-group"),
		GroupExprs:        cmd.StringSlice("group"),
		ComposeExprs:      cmd.StringSlice("compose"),
	}
}

// boolFromFlagOrConfig returns the switch value, consulting the config file
// when the flag was not set on the command line or in the environment. Bool
// flags have no YAML value source the way the string flags do.
func boolFromFlagOrConfig(cmd *cli.Command, name string) bool {
	if !cmd.IsSet(name) {
		if v, err := config.GetBool(name); err == nil {
			return v
		}
	}
	return cmd.Bool(name)
}

// parseAWSFilters splits repeatable NAME=VALUE[|VALUE...] specs into the
// map shape the describe calls take. Malformed entries are logged and
// dropped.
func parseAWSFilters(specs []string) map[string][]string {
	result := make(map[string][]string)
	for _, spec := range specs {
		name, value, found := strings.Cut(spec, "=")
		if !found || name == "" || value == "" {
			log.Warnf("ignoring malformed aws-filter %q: want NAME=VALUE", spec)
			continue
		}
		result[name] = append(result[name], strings.Split(value, "|")...)
	}
	return result
}

// RDSClientFor returns a per-region inventory client factory bound to the
// command's credential flags.
func RDSClientFor(ctx context.Context, cmd *cli.Command) func(region string) (inventory.Client, error) {
	return func(region string) (inventory.Client, error) {
		cfg, err := LoadAWSConfig(ctx, cmd, region)
		if err != nil {
			return nil, err
		}
		return awsclient.NewRDS(cfg), nil
	}
}

// ResolvePassphrase returns the snapshot passphrase, prompting on the
// terminal when the flag is the literal "-".
func ResolvePassphrase(cmd *cli.Command) (string, error) {
	passphrase := cmd.String("passphrase")
	if passphrase == "-" {
		return inventory.GetPassphrase()
	}
	return passphrase, nil
}

// FetchHosts returns the inventory host set for the command's query shape,
// serving and refreshing the snapshot cache when --cache is set. The bool
// reports whether the result came from cache.
func FetchHosts(ctx context.Context, cmd *cli.Command) ([]inventory.Host, bool, error) {
	opts := InventoryOptions(cmd)
	prefix := cmd.String("cache-prefix")
	passphrase, err := ResolvePassphrase(cmd)
	if err != nil {
		return nil, false, err
	}
	ttl := time.Duration(cmd.Int("cache-timeout")) * time.Second

	if cmd.Bool("cache") {
		if cleanHours, err := config.GetInt("cache.clean"); err == nil {
			if err := cacheutil.Purge(cleanHours); err != nil {
				log.Warnf("purging cache: %v", err)
			}
		}

		if hosts, ok := inventory.ReadCache(prefix, opts, ttl, passphrase); ok {
			log.Debugf("serving inventory from cache: prefix=%s", prefix)
			return hosts, true, nil
		}
	}

	hosts, err := inventory.Fetch(ctx, RDSClientFor(ctx, cmd), opts)
	if err != nil {
		return nil, false, err
	}

	if cmd.Bool("cache") {
		if err := inventory.WriteCache(prefix, opts, hosts, passphrase); err != nil {
			log.Warnf("writing inventory cache: %v", err)
		}
	}

	return hosts, false, nil
}
