// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"fmt"
	"os/exec"
	"strings"

	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"
)

// rawStringSlice accumulates repeated flag values verbatim. The stock slice
// flag splits each value on commas, which tears apart expression specs like
// split(".", Endpoint.Address).
type rawStringSlice struct {
	slice      *[]string
	hasBeenSet bool
}

func (rawStringSlice) Create(val []string, p *[]string, _ cli.NoConfig) cli.Value {
	*p = append([]string{}, val...)
	return &rawStringSlice{slice: p}
}

func (rawStringSlice) ToString(val []string) string {
	return strings.Join(val, " ")
}

// Set appends one occurrence, commas and all. The first explicit value
// clears any defaults.
func (s *rawStringSlice) Set(value string) error {
	if !s.hasBeenSet {
		*s.slice = []string{}
		s.hasBeenSet = true
	}
	*s.slice = append(*s.slice, value)
	return nil
}

func (s *rawStringSlice) Get() any {
	return *s.slice
}

func (s *rawStringSlice) String() string {
	if s.slice == nil {
		return ""
	}
	return fmt.Sprintf("%v", *s.slice)
}

// RawStringSliceFlag is a repeatable string flag whose values may contain
// commas. cmd.StringSlice reads it like any other slice flag.
type RawStringSliceFlag = cli.FlagBase[[]string, cli.NoConfig, rawStringSlice]

var (
	schemaFlag *cli.BoolFlag = &cli.BoolFlag{
		Name:        "schema",
		Usage:       "dump the schema",
		HideDefault: true,
	}

	tldrFlag *cli.BoolFlag = &cli.BoolFlag{
		Name:        "tldr",
		Usage:       "show tldr page",
		Hidden:      !pathHas("tldr"),
		HideDefault: true,
	}
)

func NewGlobalFlags(params ...string) (flags []cli.Flag) {
	flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "attrs",
			Aliases: []string{"a"},
			Usage:   "comma-separated list of attributes to include in results",
		},
		&cli.BoolFlag{
			Name:    "color",
			Aliases: []string{"c"},
			Usage:   "enable colored text output",
			Value:   false,
		},
		&cli.StringFlag{
			Name:    "filter",
			Aliases: []string{"f"},
			Usage:   "comma-separated list of filters to apply to results",
		},
		&cli.BoolFlag{
			Name:    "local",
			Aliases: []string{"l"},
			Usage:   "show local timestamps",
			Value:   false,
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format",
			Value:   "text",
			Validator: func(value string) error {
				return FlagValidators(value, OutputValidator)
			},
		},
		&cli.StringFlag{
			Name:    "sort",
			Aliases: []string{"s"},
			Usage:   "comma-separated list of attributes to sort the results by",
		},
		&cli.BoolFlag{
			Name:    "titles",
			Aliases: []string{"t"},
			Usage:   "show titles with text output",
			Value:   false,
		},
	}

	return
}

// NewRegionFlag constructs the "region" flag. params[0] is the command
// namespace and params[1] the config file; when both are present the flag
// additionally sources namespaced values from the config file.
func NewRegionFlag(params ...string) (flag *cli.StringFlag) {
	flag = &cli.StringFlag{
		Name:    "region",
		Aliases: []string{"r"},
		Usage:   "region to use for all commands",
		Sources: cli.NewValueSourceChain(
			cli.EnvVar("AWSCTL_REGION"),
			cli.EnvVar("AWS_REGION"),
		),
		Value: "us-east-1",
	}

	if len(params) == 2 {
		flag = NameSpacedValueChainFlagFromConfigFile(params[0], params[1], flag)
	}

	return
}

// NewProfileFlag constructs the "profile" flag. The value is handed to the
// SDK's shared config loader and to the session-manager-plugin.
func NewProfileFlag(params ...string) (flag *cli.StringFlag) {
	flag = &cli.StringFlag{
		Name:  "profile",
		Usage: "shared credentials profile. Overrides the environment",
		Sources: cli.NewValueSourceChain(
			cli.EnvVar("AWSCTL_PROFILE"),
			cli.EnvVar("AWS_PROFILE"),
		),
	}

	if len(params) == 2 {
		flag = NameSpacedValueChainFlagFromConfigFile(params[0], params[1], flag)
	}

	return
}

// NewBucketFlag constructs the "bucket" flag naming the S3 staging bucket
// used by file transfers.
func NewBucketFlag(params ...string) (flag *cli.StringFlag) {
	flag = &cli.StringFlag{
		Name:    "bucket",
		Aliases: []string{"b"},
		Usage:   "S3 bucket used to stage file transfers",
		Sources: cli.NewValueSourceChain(
			cli.EnvVar("AWSCTL_BUCKET"),
		),
	}

	if len(params) == 2 {
		flag = NameSpacedValueChainFlagFromConfigFile(params[0], params[1], flag)
	}

	return
}

// NewAWSFlags returns the credential and region flags shared by every
// command that talks to an AWS API.
func NewAWSFlags(params ...string) (flags []cli.Flag) {
	flags = []cli.Flag{
		&cli.StringFlag{
			Name:  "access-key-id",
			Usage: "static access key id. Overrides the credential chain",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("AWSCTL_ACCESS_KEY_ID"),
			),
		},
		&cli.StringFlag{
			Name:  "secret-access-key",
			Usage: "static secret access key",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("AWSCTL_SECRET_ACCESS_KEY"),
			),
		},
		&cli.StringFlag{
			Name:  "session-token",
			Usage: "static session token",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("AWSCTL_SESSION_TOKEN"),
			),
		},
		&cli.BoolFlag{
			Name:        "validate-credentials",
			Usage:       "preflight the credentials with sts:GetCallerIdentity",
			HideDefault: true,
		},
		NewRegionFlag(params...),
		NewProfileFlag(params...),
	}

	return
}

// NewSSMFlags returns the flags shared by every command that opens a Session
// Manager channel (run, sh, cp), on top of the AWS credential flags.
func NewSSMFlags(params ...string) (flags []cli.Flag) {
	pluginFlag := &cli.StringFlag{
		Name:  "plugin",
		Usage: "path to the session-manager-plugin binary",
		Sources: cli.NewValueSourceChain(
			cli.EnvVar("AWSCTL_SSM_PLUGIN"),
		),
		Value: "/usr/local/bin/session-manager-plugin",
	}
	documentFlag := &cli.StringFlag{
		Name:  "document-name",
		Usage: "SSM document backing the session",
		Sources: cli.NewValueSourceChain(
			cli.EnvVar("AWSCTL_SSM_DOCUMENT"),
		),
		Value: "SSM-SessionManagerRunShell",
	}

	if len(params) == 2 {
		pluginFlag = NameSpacedValueChainFlagFromConfigFile(params[0], params[1], pluginFlag)
		documentFlag = NameSpacedValueChainFlagFromConfigFile(params[0], params[1], documentFlag)
	}

	flags = []cli.Flag{
		pluginFlag,
		documentFlag,
		&cli.IntFlag{
			Name:  "retries",
			Usage: "attempts to open the session before giving up",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("AWSCTL_RETRIES"),
			),
			Value: 3,
		},
		&cli.IntFlag{
			Name:  "ssm-timeout",
			Usage: "seconds to wait for remote command completion",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("AWSCTL_SSM_TIMEOUT"),
			),
			Value: 60,
		},
	}
	flags = append(flags, NewAWSFlags(params...)...)

	return
}

// NewInventoryFlags returns the flags shared by the inventory commands
// (iq, inv): the query shape, grouping expressions and cache controls, plus
// the AWS credential flags.
func NewInventoryFlags(params ...string) (flags []cli.Flag) {
	flags = NewInventoryShapeFlags(params...)
	flags = append(flags, NewAWSFlags(params...)...)

	return
}

// NewInventoryShapeFlags returns the inventory query shape and cache flags
// without the AWS credential flags. Commands that already carry the SSM flag
// set (sh) use this form so the snapshot cache key lines up with iq's.
func NewInventoryShapeFlags(params ...string) (flags []cli.Flag) {
	prefixFlag := &cli.StringFlag{
		Name:  "cache-prefix",
		Usage: "cache subdirectory for inventory snapshots",
		Value: "awsctl_rds",
	}

	if len(params) == 2 {
		prefixFlag = NameSpacedValueChainFlagFromConfigFile(params[0], params[1], prefixFlag)
	}

	flags = []cli.Flag{
		&cli.StringSliceFlag{
			Name:  "regions",
			Usage: "regions to enumerate. Defaults to --region",
		},
		&cli.BoolFlag{
			Name:  "include-clusters",
			Usage: "also enumerate Aurora clusters",
			Value: false,
		},
		&cli.StringSliceFlag{
			Name:  "statuses",
			Usage: "instance statuses to include ('all' disables the filter)",
			Value: []string{"creating", "available"},
		},
		&RawStringSliceFlag{
			Name:  "aws-filter",
			Usage: "server-side describe filter NAME=VALUE[|VALUE...]",
		},
		&cli.BoolFlag{
			Name:  "strict-permissions",
			Usage: "treat AccessDenied in any region as fatal",
			Value: true,
		},
		&cli.BoolFlag{
			Name:  "strict",
			Usage: "treat group/compose expression errors as fatal",
			Value: false,
		},
		&RawStringSliceFlag{
			Name:  "keyed-group",
			Usage: "derive groups from a key path, PREFIX:KEY[:SEPARATOR]",
		},
		&RawStringSliceFlag{
			Name:  "group",
			Usage: "conditional group NAME=EXPR over hostvars",
		},
		&RawStringSliceFlag{
			Name:  "compose",
			Usage: "derived hostvar VAR=EXPR",
		},
		&cli.BoolFlag{
			Name:  "cache",
			Usage: "serve and refresh the inventory snapshot cache",
			Value: false,
		},
		&cli.IntFlag{
			Name:  "cache-timeout",
			Usage: "snapshot freshness in seconds",
			Value: 3600,
		},
		prefixFlag,
		&cli.StringFlag{
			Name:    "passphrase",
			Aliases: []string{"p"},
			Usage:   "encrypt/decrypt cached snapshots ('-' prompts)",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("AWSCTL_PASSPHRASE"),
			),
		},
	}

	return
}

// NameSpacedValueChainFlagFromConfigFile adds namespaced and global config file
// sources to the given flag's Sources chain.
func NameSpacedValueChainFlagFromConfigFile(ns string, path string, flag *cli.StringFlag) *cli.StringFlag {
	src := yaml.YAML(ns+"."+flag.Name, altsrc.StringSourcer(path))
	flag.Sources.Chain = append(flag.Sources.Chain, src)

	src = yaml.YAML(flag.Name, altsrc.StringSourcer(path))
	flag.Sources.Chain = append(flag.Sources.Chain, src)

	return flag
}

// pathHas checks if the given executable exists on PATH.
func pathHas(target string) bool {
	_, err := exec.LookPath(target)
	return err == nil
}
